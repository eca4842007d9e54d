package blocks

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessBlock runs the full per-block state transition in the fixed
// order the spec requires: header, RANDAO, eth1 vote, then the five
// operation processors. Each stage only ever sees the state the one
// before it produced.
//
// Spec pseudocode definition:
//  def process_block(state: BeaconState, block: BeaconBlock) -> None:
//    process_block_header(state, block)
//    process_randao(state, block.body)
//    process_eth1_data(state, block.body)
//    process_operations(state, block.body)
func ProcessBlock(state *pb.BeaconState, ec *epochctx.EpochsContext, block *pb.BeaconBlock, verifySignatures bool) (*pb.BeaconState, error) {
	state, err := ProcessBlockHeader(state, ec, block)
	if err != nil {
		return nil, errors.Wrap(err, "could not process block header")
	}

	state, err = ProcessRandao(state, ec, block.Body, verifySignatures)
	if err != nil {
		return nil, errors.Wrap(err, "could not process randao")
	}

	state, err = ProcessEth1DataInBlock(state, block.Body)
	if err != nil {
		return nil, errors.Wrap(err, "could not process eth1 data")
	}

	return ProcessOperations(state, ec, block.Body, verifySignatures)
}

// ProcessOperations runs the five operation processors over a block
// body's lists in the fixed order the spec requires, after checking
// that the body carries every deposit the eth1 vote window owes the
// chain.
//
// Spec pseudocode definition:
//  def process_operations(state: BeaconState, body: BeaconBlockBody) -> None:
//    assert len(body.deposits) == min(MAX_DEPOSITS, state.eth1_data.deposit_count - state.eth1_deposit_index)
//    for operations, function in (
//        (body.proposer_slashings, process_proposer_slashing),
//        (body.attester_slashings, process_attester_slashing),
//        (body.attestations, process_attestation),
//        (body.deposits, process_deposit),
//        (body.voluntary_exits, process_voluntary_exit),
//    ):
//        for operation in operations:
//            function(state, operation)
func ProcessOperations(state *pb.BeaconState, ec *epochctx.EpochsContext, body *pb.BeaconBlockBody, verifySignatures bool) (*pb.BeaconState, error) {
	outstanding := params.BeaconConfig().MaxDeposits
	if remaining := state.Eth1Data.DepositCount - state.Eth1DepositIndex; remaining < outstanding {
		outstanding = remaining
	}
	if uint64(len(body.Deposits)) != outstanding {
		return nil, errors.New("block does not include the expected number of deposits")
	}

	state, err := ProcessProposerSlashings(state, ec, body, verifySignatures)
	if err != nil {
		return nil, errors.Wrap(err, "could not process proposer slashings")
	}

	state, err = ProcessAttesterSlashings(state, ec, body, verifySignatures)
	if err != nil {
		return nil, errors.Wrap(err, "could not process attester slashings")
	}

	state, err = ProcessAttestations(state, ec, body, verifySignatures)
	if err != nil {
		return nil, errors.Wrap(err, "could not process attestations")
	}

	state, err = ProcessDeposits(state, ec, body)
	if err != nil {
		return nil, errors.Wrap(err, "could not process deposits")
	}

	return ProcessVoluntaryExits(state, body, verifySignatures)
}
