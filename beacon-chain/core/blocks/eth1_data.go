package blocks

import (
	"bytes"

	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessEth1DataInBlock appends the block's eth1 vote to the state's
// voting window and, once a strict majority of the window agrees on the
// same vote, adopts it as the canonical eth1 data.
//
// Spec pseudocode definition:
//  def process_eth1_data(state: BeaconState, body: BeaconBlockBody) -> None:
//    state.eth1_data_votes.append(body.eth1_data)
//    if state.eth1_data_votes.count(body.eth1_data) * 2 > EPOCHS_PER_ETH1_VOTING_PERIOD * SLOTS_PER_EPOCH:
//        state.eth1_data = body.eth1_data
func ProcessEth1DataInBlock(state *pb.BeaconState, body *pb.BeaconBlockBody) (*pb.BeaconState, error) {
	state.Eth1DataVotes = append(state.Eth1DataVotes, body.Eth1Data)

	voteCount := 0
	for _, vote := range state.Eth1DataVotes {
		if eth1DataEqual(vote, body.Eth1Data) {
			voteCount++
		}
	}

	votingPeriodLength := params.BeaconConfig().EpochsPerEth1VotingPeriod * params.BeaconConfig().SlotsPerEpoch
	if uint64(voteCount)*2 > votingPeriodLength {
		state.Eth1Data = body.Eth1Data
	}

	return state, nil
}

func eth1DataEqual(a, b *pb.Eth1Data) bool {
	return a.DepositCount == b.DepositCount &&
		bytes.Equal(a.DepositRoot, b.DepositRoot) &&
		bytes.Equal(a.BlockHash, b.BlockHash)
}
