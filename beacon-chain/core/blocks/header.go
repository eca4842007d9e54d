package blocks

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
)

// ProcessBlockHeader validates the block's slot, parent and proposer
// against the state it is being applied to, then advances
// state.LatestBlockHeader to describe this block. The header's StateRoot
// is left zeroed: ProcessSlot fills it in on the next slot advance, since
// a block can never include its own post-state root.
//
// Spec pseudocode definition:
//  def process_block_header(state: BeaconState, block: BeaconBlock) -> None:
//    # Verify that the slots match
//    assert block.slot == state.slot
//    # Verify that the block is newer than latest block header
//    assert block.slot > state.latest_block_header.slot
//    # Verify that proposer index is the correct index
//    assert block.proposer_index == get_beacon_proposer_index(state)
//    # Verify that the parent matches
//    assert block.parent_root == hash_tree_root(state.latest_block_header)
//    # Cache current block as the new latest block
//    state.latest_block_header = BeaconBlockHeader(
//        slot=block.slot,
//        proposer_index=block.proposer_index,
//        parent_root=block.parent_root,
//        state_root=Bytes32(),  # Overwritten in the next process_slot call
//        body_root=hash_tree_root(block.body),
//    )
//    # Verify proposer is not slashed
//    proposer = state.validators[block.proposer_index]
//    assert not proposer.slashed
func ProcessBlockHeader(state *pb.BeaconState, ec *epochctx.EpochsContext, block *pb.BeaconBlock) (*pb.BeaconState, error) {
	if block.Slot != state.Slot {
		return nil, ErrInvalidBlockSlot
	}
	if block.Slot <= state.LatestBlockHeader.Slot {
		return nil, errors.New("block is not newer than latest block header")
	}

	proposerIndex, err := ec.GetBeaconProposer(block.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute beacon proposer index")
	}
	if block.ProposerIndex != proposerIndex {
		return nil, ErrInvalidProposerIndex
	}

	parentRoot, err := ssz.HashTreeRoot(state.LatestBlockHeader)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash latest block header")
	}
	if string(block.ParentRoot) != string(parentRoot[:]) {
		return nil, ErrInvalidParentRoot
	}

	bodyRoot, err := ssz.HashTreeRoot(block.Body)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash block body")
	}
	state.LatestBlockHeader = &pb.BeaconBlockHeader{
		Slot:          block.Slot,
		ProposerIndex: block.ProposerIndex,
		ParentRoot:    block.ParentRoot,
		StateRoot:     make([]byte, 32),
		BodyRoot:      bodyRoot[:],
	}

	if int(block.ProposerIndex) >= len(state.Validators) {
		return nil, errors.New("proposer index out of bounds")
	}
	if state.Validators[block.ProposerIndex].Slashed {
		return nil, ErrSlashedProposer
	}

	return state, nil
}
