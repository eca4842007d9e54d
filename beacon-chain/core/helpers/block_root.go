package helpers

import (
	"github.com/pkg/errors"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// BlockRootAtSlot returns the block root stored in state for the given
// slot, read from the circular SlotsPerHistoricalRoot-long buffer.
//
// Spec pseudocode definition:
//  def get_block_root_at_slot(state: BeaconState, slot: Slot) -> Root:
//    """
//    Return the block root at a recent ``slot``.
//    """
//    assert slot < state.slot <= slot + SLOTS_PER_HISTORICAL_ROOT
//    return state.block_roots[slot % SLOTS_PER_HISTORICAL_ROOT]
func BlockRootAtSlot(state *pb.BeaconState, slot uint64) ([]byte, error) {
	slotsPerHistoricalRoot := params.BeaconConfig().SlotsPerHistoricalRoot
	if slot >= state.Slot || state.Slot > slot+slotsPerHistoricalRoot {
		return nil, errors.Errorf("slot %d out of bounds for state at slot %d", slot, state.Slot)
	}
	return state.BlockRoots[slot%slotsPerHistoricalRoot], nil
}

// BlockRoot returns the block root for the first slot of the given epoch.
//
// Spec pseudocode definition:
//  def get_block_root(state: BeaconState, epoch: Epoch) -> Root:
//    """
//    Return the block root at the start of a recent ``epoch``.
//    """
//    return get_block_root_at_slot(state, compute_start_slot_at_epoch(epoch))
func BlockRoot(state *pb.BeaconState, epoch uint64) ([]byte, error) {
	return BlockRootAtSlot(state, StartSlot(epoch))
}
