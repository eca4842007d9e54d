// Package epochctx implements the epoch-shuffling and committee cache that
// makes repeated committee/proposer lookups over the same epoch cheap: it
// computes each epoch's active set and shuffling once and hands back
// slices of it, instead of re-running the seeded shuffle on every
// get_beacon_committee call the way the uncached helpers package does.
package epochctx

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/prysmaticlabs/prysm/shared/sliceutil"
)

// ShufflingEpoch is the immutable shuffling and committee layout for one
// epoch: the active validator set, its seed-shuffled order, and that
// order sliced into fixed committees.
type ShufflingEpoch struct {
	Epoch            uint64
	ActiveIndices    []uint64
	Shuffling        []uint64
	CommitteesPerSlot uint64
}

// NewShufflingEpoch computes the active set, seed and shuffled order for
// epoch from state. It unshuffles (rather than shuffles) the active set so
// that committee k is a contiguous slice of the result, matching
// compute_committee's per-index forward shuffled_index evaluated over the
// same range.
func NewShufflingEpoch(state *pb.BeaconState, epoch uint64) (*ShufflingEpoch, error) {
	var activeIndices []uint64
	for i, v := range state.Validators {
		if helpers.IsActiveValidator(v, epoch) {
			activeIndices = append(activeIndices, uint64(i))
		}
	}

	seed, err := helpers.Seed(state, epoch, params.BeaconConfig().DomainBeaconAttester)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute shuffling seed")
	}

	shuffling := make([]uint64, len(activeIndices))
	copy(shuffling, activeIndices)
	shuffling, err = helpers.UnshuffleList(shuffling, seed)
	if err != nil {
		return nil, errors.Wrap(err, "could not unshuffle active indices")
	}

	committeesPerSlot := committeeCountPerSlot(uint64(len(activeIndices)))

	return &ShufflingEpoch{
		Epoch:             epoch,
		ActiveIndices:     activeIndices,
		Shuffling:         shuffling,
		CommitteesPerSlot: committeesPerSlot,
	}, nil
}

// committeeCountPerSlot implements get_committee_count_at_slot's clamp
// independent of any particular slot.
func committeeCountPerSlot(activeCount uint64) uint64 {
	perSlot := activeCount / params.BeaconConfig().SlotsPerEpoch / params.BeaconConfig().TargetCommitteeSize
	if perSlot > params.BeaconConfig().MaxCommitteesPerSlot {
		return params.BeaconConfig().MaxCommitteesPerSlot
	}
	if perSlot == 0 {
		return 1
	}
	return perSlot
}

// Committee returns the committee at committeeIndex for the given slot
// within this shuffling epoch, as a contiguous slice of Shuffling.
func (s *ShufflingEpoch) Committee(slot, committeeIndex uint64) ([]uint64, error) {
	slotsPerEpoch := params.BeaconConfig().SlotsPerEpoch
	slotOffset := slot % slotsPerEpoch
	committeeCount := s.CommitteesPerSlot * slotsPerEpoch
	k := committeeIndex + slotOffset*s.CommitteesPerSlot
	if k >= committeeCount {
		return nil, errors.Errorf("committee index %d out of range for slot %d (count %d)", committeeIndex, slot, s.CommitteesPerSlot)
	}

	validatorCount := uint64(len(s.Shuffling))
	start := sliceutil.SplitOffset(validatorCount, committeeCount, k)
	end := sliceutil.SplitOffset(validatorCount, committeeCount, k+1)
	return s.Shuffling[start:end], nil
}
