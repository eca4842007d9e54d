package epochctx

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bytesutil"
	"github.com/prysmaticlabs/prysm/shared/hashutil"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ErrProposerCacheMiss is returned when the current-epoch proposer slot is
// requested for a slot outside the cached current shuffling epoch.
var ErrProposerCacheMiss = errors.New("slot is not part of the cached current epoch")

// EpochsContext is a caller-owned cache of the three shufflings
// (previous/current/next epoch) and pubkey index around a state, kept up
// to date by RotateEpochs as the state advances. It exists so that
// repeated committee and proposer lookups during block/attestation
// processing don't each re-derive the shuffling from scratch.
type EpochsContext struct {
	PubkeyToIndex map[[48]byte]uint64
	IndexToPubkey [][48]byte

	PreviousShuffling *ShufflingEpoch
	CurrentShuffling  *ShufflingEpoch
	NextShuffling     *ShufflingEpoch

	Proposers []uint64
}

// LoadState builds a fresh EpochsContext from a state, computing all three
// shufflings and the current epoch's proposer schedule.
func LoadState(state *pb.BeaconState) (*EpochsContext, error) {
	ec := &EpochsContext{}
	ec.syncPubkeys(state)

	currentEpoch := helpers.CurrentEpoch(state)
	prevEpoch := helpers.PrevEpoch(state)
	nextEpoch := helpers.NextEpoch(state)

	var err error
	ec.PreviousShuffling, err = NewShufflingEpoch(state, prevEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute previous shuffling")
	}
	ec.CurrentShuffling, err = NewShufflingEpoch(state, currentEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute current shuffling")
	}
	ec.NextShuffling, err = NewShufflingEpoch(state, nextEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not compute next shuffling")
	}

	if err := ec.recomputeProposers(state); err != nil {
		return nil, errors.Wrap(err, "could not compute proposer schedule")
	}

	return ec, nil
}

// SyncPubkeys re-indexes any validators a deposit appended to state
// since the cache was last built or rotated, so a later deposit or
// operation in the same block can immediately look them up.
func (ec *EpochsContext) SyncPubkeys(state *pb.BeaconState) {
	ec.syncPubkeys(state)
}

// syncPubkeys appends any validators registered in state but not yet
// indexed; it is append-only because validator indices never change once
// assigned.
func (ec *EpochsContext) syncPubkeys(state *pb.BeaconState) {
	if ec.PubkeyToIndex == nil {
		ec.PubkeyToIndex = make(map[[48]byte]uint64, len(state.Validators))
	}
	for i := len(ec.IndexToPubkey); i < len(state.Validators); i++ {
		var pub [48]byte
		copy(pub[:], state.Validators[i].PublicKey)
		ec.PubkeyToIndex[pub] = uint64(i)
		ec.IndexToPubkey = append(ec.IndexToPubkey, pub)
	}
}

// RotateEpochs advances the cache by one epoch: the current shuffling
// becomes previous, the next shuffling becomes current, and a fresh
// shuffling is computed for the new next epoch. Call this once per epoch
// transition, after the registry mutations for that transition have been
// applied to state.
func (ec *EpochsContext) RotateEpochs(state *pb.BeaconState) error {
	ec.syncPubkeys(state)

	ec.PreviousShuffling = ec.CurrentShuffling
	ec.CurrentShuffling = ec.NextShuffling

	nextEpoch := ec.CurrentShuffling.Epoch + 1
	next, err := NewShufflingEpoch(state, nextEpoch)
	if err != nil {
		return errors.Wrap(err, "could not compute next shuffling")
	}
	ec.NextShuffling = next

	if err := ec.recomputeProposers(state); err != nil {
		return errors.Wrap(err, "could not compute proposer schedule")
	}
	return nil
}

// Copy returns a shallow copy of the context suitable for a forked branch
// of processing: the shuffling epochs are immutable once built, so only
// the container and the pubkey slice/map need duplicating.
func (ec *EpochsContext) Copy() *EpochsContext {
	cp := &EpochsContext{
		PreviousShuffling: ec.PreviousShuffling,
		CurrentShuffling:  ec.CurrentShuffling,
		NextShuffling:     ec.NextShuffling,
	}
	cp.PubkeyToIndex = make(map[[48]byte]uint64, len(ec.PubkeyToIndex))
	for k, v := range ec.PubkeyToIndex {
		cp.PubkeyToIndex[k] = v
	}
	cp.IndexToPubkey = make([][48]byte, len(ec.IndexToPubkey))
	copy(cp.IndexToPubkey, ec.IndexToPubkey)
	cp.Proposers = make([]uint64, len(ec.Proposers))
	copy(cp.Proposers, ec.Proposers)
	return cp
}

// shufflingForEpoch picks the cached shuffling matching epoch, mirroring
// get_beacon_committee's dispatch across previous/current/next epoch.
func (ec *EpochsContext) shufflingForEpoch(epoch uint64) (*ShufflingEpoch, error) {
	switch epoch {
	case ec.PreviousShuffling.Epoch:
		return ec.PreviousShuffling, nil
	case ec.CurrentShuffling.Epoch:
		return ec.CurrentShuffling, nil
	case ec.NextShuffling.Epoch:
		return ec.NextShuffling, nil
	default:
		return nil, errors.Errorf("epoch %d not in cached range [%d, %d]", epoch, ec.PreviousShuffling.Epoch, ec.NextShuffling.Epoch)
	}
}

// GetCommitteeCountAtSlot returns the number of committees active at slot.
func (ec *EpochsContext) GetCommitteeCountAtSlot(slot uint64) (uint64, error) {
	epoch := helpers.SlotToEpoch(slot)
	s, err := ec.shufflingForEpoch(epoch)
	if err != nil {
		return 0, err
	}
	return s.CommitteesPerSlot, nil
}

// GetBeaconCommittee returns the committee assigned to slot and
// committeeIndex, drawn from the already-computed shuffling for that
// slot's epoch.
func (ec *EpochsContext) GetBeaconCommittee(slot, committeeIndex uint64) ([]uint64, error) {
	epoch := helpers.SlotToEpoch(slot)
	s, err := ec.shufflingForEpoch(epoch)
	if err != nil {
		return nil, err
	}
	return s.Committee(slot, committeeIndex)
}

// GetBeaconProposer returns the proposer for slot, which must fall within
// the cached current epoch's proposer schedule.
func (ec *EpochsContext) GetBeaconProposer(slot uint64) (uint64, error) {
	epoch := helpers.SlotToEpoch(slot)
	if epoch != ec.CurrentShuffling.Epoch {
		return 0, ErrProposerCacheMiss
	}
	offset := slot % params.BeaconConfig().SlotsPerEpoch
	return ec.Proposers[offset], nil
}

// recomputeProposers fills in the proposer for every slot of the current
// shuffling epoch, following get_beacon_proposer_index but sampling over
// the epoch's active set once instead of recomputing it per slot.
func (ec *EpochsContext) recomputeProposers(state *pb.BeaconState) error {
	epoch := ec.CurrentShuffling.Epoch
	seed, err := helpers.Seed(state, epoch, params.BeaconConfig().DomainBeaconProposer)
	if err != nil {
		return errors.Wrap(err, "could not compute proposer seed")
	}

	slotsPerEpoch := params.BeaconConfig().SlotsPerEpoch
	proposers := make([]uint64, slotsPerEpoch)
	startSlot := helpers.StartSlot(epoch)
	for i := uint64(0); i < slotsPerEpoch; i++ {
		slot := startSlot + i
		seedWithSlot := append(append([]byte{}, seed[:]...), bytesutil.Bytes8(slot)...)
		seedWithSlotHash := hashutil.Hash(seedWithSlot)
		idx, err := helpers.ComputeProposerIndex(state, ec.CurrentShuffling.ActiveIndices, seedWithSlotHash)
		if err != nil {
			return errors.Wrapf(err, "could not compute proposer for slot %d", slot)
		}
		proposers[i] = idx
	}
	ec.Proposers = proposers
	return nil
}

// ValidatorIndex returns the validator index for a public key, if known.
func (ec *EpochsContext) ValidatorIndex(pubkey [48]byte) (uint64, bool) {
	idx, ok := ec.PubkeyToIndex[pubkey]
	return idx, ok
}

// ValidatorPubkey returns the public key for a validator index, if known.
func (ec *EpochsContext) ValidatorPubkey(index uint64) ([48]byte, bool) {
	if index >= uint64(len(ec.IndexToPubkey)) {
		return [48]byte{}, false
	}
	return ec.IndexToPubkey[index], true
}
