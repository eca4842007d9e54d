package epoch

import (
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epoch/precompute"
	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/pkg/errors"
)

// ProcessJustificationAndFinalization determines the justified and
// finalized checkpoints for the epoch about to close, from the unslashed
// target-vote balances precompute.New already tallied. It is a no-op for
// the first two epochs, since finalization needs at least two full
// epochs of justified history to evaluate.
//
// Spec pseudocode definition:
//  def process_justification_and_finalization(state: BeaconState) -> None:
//    if get_current_epoch(state) <= GENESIS_EPOCH + 1:
//        return
//
//    previous_epoch = get_previous_epoch(state)
//    current_epoch = get_current_epoch(state)
//    old_previous_justified_checkpoint = state.previous_justified_checkpoint
//    old_current_justified_checkpoint = state.current_justified_checkpoint
//
//    # Process justifications
//    state.previous_justified_checkpoint = state.current_justified_checkpoint
//    state.justification_bits[1:] = state.justification_bits[:JUSTIFICATION_BITS_LENGTH - 1]
//    state.justification_bits[0] = 0b0
//    matching_target_attestations = get_matching_target_attestations(state, previous_epoch)
//    if get_attesting_balance(state, matching_target_attestations) * 3 >= get_total_active_balance(state) * 2:
//        state.current_justified_checkpoint = Checkpoint(epoch=previous_epoch,
//                                                        root=get_block_root(state, previous_epoch))
//        state.justification_bits[1] = 0b1
//    matching_target_attestations = get_matching_target_attestations(state, current_epoch)
//    if get_attesting_balance(state, matching_target_attestations) * 3 >= get_total_active_balance(state) * 2:
//        state.current_justified_checkpoint = Checkpoint(epoch=current_epoch,
//                                                        root=get_block_root(state, current_epoch))
//        state.justification_bits[0] = 0b1
//
//    # Process finalizations
//    bits = state.justification_bits
//    # The 2nd/3rd/4th most recent epochs are justified, the 2nd using the 4th as source
//    if all(bits[1:4]) and old_previous_justified_checkpoint.epoch + 3 == current_epoch:
//        state.finalized_checkpoint = old_previous_justified_checkpoint
//    # The 2nd/3rd most recent epochs are justified, the 2nd using the 3rd as source
//    if all(bits[1:3]) and old_previous_justified_checkpoint.epoch + 2 == current_epoch:
//        state.finalized_checkpoint = old_previous_justified_checkpoint
//    # The 1st/2nd/3rd most recent epochs are justified, the 1st using the 3rd as source
//    if all(bits[0:3]) and old_current_justified_checkpoint.epoch + 2 == current_epoch:
//        state.finalized_checkpoint = old_current_justified_checkpoint
//    # The 1st/2nd most recent epochs are justified, the 1st using the 2nd as source
//    if all(bits[0:2]) and old_current_justified_checkpoint.epoch + 1 == current_epoch:
//        state.finalized_checkpoint = old_current_justified_checkpoint
func ProcessJustificationAndFinalization(state *pb.BeaconState, ep *precompute.EpochProcess) (*pb.BeaconState, error) {
	currentEpoch := ep.CurrentEpoch
	if currentEpoch <= 1 {
		return state, nil
	}
	previousEpoch := ep.PrevEpoch

	oldPrevJustified := state.PreviousJustifiedCheckpoint
	oldCurrJustified := state.CurrentJustifiedCheckpoint

	state.PreviousJustifiedCheckpoint = state.CurrentJustifiedCheckpoint

	bits := bitfieldShiftRight(state.JustificationBits)
	state.JustificationBits = bits

	totalBalance := ep.Balances.ActiveCurrentEpoch

	if 3*ep.Balances.PrevTargetAttesters >= 2*totalBalance {
		root, err := helpers.BlockRoot(state, previousEpoch)
		if err != nil {
			return nil, errors.Wrap(err, "could not get previous epoch boundary root")
		}
		state.CurrentJustifiedCheckpoint = &ethpb.Checkpoint{Epoch: previousEpoch, Root: root}
		setBit(state.JustificationBits, 1)
	}

	if 3*ep.Balances.CurrentTargetAttesters >= 2*totalBalance {
		root, err := helpers.BlockRoot(state, currentEpoch)
		if err != nil {
			return nil, errors.Wrap(err, "could not get current epoch boundary root")
		}
		state.CurrentJustifiedCheckpoint = &ethpb.Checkpoint{Epoch: currentEpoch, Root: root}
		setBit(state.JustificationBits, 0)
	}

	b := state.JustificationBits
	if allBitsSet(b, 1, 4) && oldPrevJustified.Epoch+3 == currentEpoch {
		state.FinalizedCheckpoint = oldPrevJustified
	}
	if allBitsSet(b, 1, 3) && oldPrevJustified.Epoch+2 == currentEpoch {
		state.FinalizedCheckpoint = oldPrevJustified
	}
	if allBitsSet(b, 0, 3) && oldCurrJustified.Epoch+2 == currentEpoch {
		state.FinalizedCheckpoint = oldCurrJustified
	}
	if allBitsSet(b, 0, 2) && oldCurrJustified.Epoch+1 == currentEpoch {
		state.FinalizedCheckpoint = oldCurrJustified
	}

	return state, nil
}

// bitfieldShiftRight returns a copy of bits in which each of the four
// justification bits moves from position i to i+1 (a left shift of the
// byte value, dropping the oldest bit 3), with bit 0 cleared, matching
// justification_bits[1:] = justification_bits[:-1]; justification_bits[0] = 0.
func bitfieldShiftRight(bits []byte) []byte {
	out := append([]byte{}, bits...)
	if len(out) == 0 {
		return out
	}
	out[0] = (out[0] << 1) & 0x0f
	return out
}

func setBit(bits []byte, i uint) {
	bits[0] |= 1 << i
}

// allBitsSet reports whether every bit in [from, to) of the single
// justification byte is set.
func allBitsSet(bits []byte, from, to uint) bool {
	if len(bits) == 0 {
		return false
	}
	for i := from; i < to; i++ {
		if bits[0]&(1<<i) == 0 {
			return false
		}
	}
	return true
}
