package blocks

import (
	"sort"

	"github.com/pkg/errors"
	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessAttestations verifies and records every attestation in the
// block body, in order, against the same state.
func ProcessAttestations(state *pb.BeaconState, ec *epochctx.EpochsContext, body *pb.BeaconBlockBody, verifySignatures bool) (*pb.BeaconState, error) {
	if uint64(len(body.Attestations)) > params.BeaconConfig().MaxAttestations {
		return nil, ErrTooManyAttestations
	}
	for _, att := range body.Attestations {
		var err error
		state, err = ProcessAttestation(state, ec, att, verifySignatures)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ProcessAttestation validates an attestation's target/slot bounds and
// justification source against the state, appends it as a
// PendingAttestation to the matching epoch's attestation list, and
// verifies its aggregate signature over the committee it claims to
// represent.
//
// Spec pseudocode definition:
//  def process_attestation(state: BeaconState, attestation: Attestation) -> None:
//    data = attestation.data
//    assert data.target.epoch in (get_previous_epoch(state), get_current_epoch(state))
//    assert data.target.epoch == compute_epoch_at_slot(data.slot)
//    assert data.slot + MIN_ATTESTATION_INCLUSION_DELAY <= state.slot <= data.slot + SLOTS_PER_EPOCH
//    assert data.index < get_committee_count_per_slot(state, data.target.epoch)
//
//    committee = get_beacon_committee(state, data.slot, data.index)
//    assert len(attestation.aggregation_bits) == len(committee)
//
//    pending_attestation = PendingAttestation(
//        data=data,
//        aggregation_bits=attestation.aggregation_bits,
//        inclusion_delay=state.slot - data.slot,
//        proposer_index=get_beacon_proposer_index(state),
//    )
//
//    if data.target.epoch == get_current_epoch(state):
//        assert data.source == state.current_justified_checkpoint
//        state.current_epoch_attestations.append(pending_attestation)
//    else:
//        assert data.source == state.previous_justified_checkpoint
//        state.previous_epoch_attestations.append(pending_attestation)
//
//    assert is_valid_indexed_attestation(state, get_indexed_attestation(state, attestation))
func ProcessAttestation(state *pb.BeaconState, ec *epochctx.EpochsContext, att *ethpb.Attestation, verifySignatures bool) (*pb.BeaconState, error) {
	data := att.Data
	currentEpoch := helpers.CurrentEpoch(state)
	prevEpoch := helpers.PrevEpoch(state)

	if data.Target.Epoch != currentEpoch && data.Target.Epoch != prevEpoch {
		return nil, errors.New("attestation target epoch is neither the current nor previous epoch")
	}
	if data.Target.Epoch != helpers.SlotToEpoch(data.Slot) {
		return nil, errors.New("attestation target epoch does not match data slot's epoch")
	}
	minInclusion := data.Slot + params.BeaconConfig().MinAttestationInclusionDelay
	maxInclusion := data.Slot + params.BeaconConfig().SlotsPerEpoch
	if state.Slot < minInclusion || state.Slot > maxInclusion {
		return nil, errors.New("attestation is outside inclusion window")
	}

	committeeCount, err := ec.GetCommitteeCountAtSlot(data.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not get committee count at slot")
	}
	if data.CommitteeIndex >= committeeCount {
		return nil, errors.New("attestation committee index out of range")
	}

	committee, err := ec.GetBeaconCommittee(data.Slot, data.CommitteeIndex)
	if err != nil {
		return nil, errors.Wrap(err, "could not get beacon committee")
	}
	if uint64(att.AggregationBits.Len()) != uint64(len(committee)) {
		return nil, errors.New("aggregation bits length does not match committee size")
	}

	proposerIndex, err := ec.GetBeaconProposer(state.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not get beacon proposer index")
	}
	pendingAtt := &pb.PendingAttestation{
		Data:            data,
		AggregationBits: att.AggregationBits,
		InclusionDelay:  state.Slot - data.Slot,
		ProposerIndex:   proposerIndex,
	}

	if data.Target.Epoch == currentEpoch {
		if !checkpointEqual(data.Source, state.CurrentJustifiedCheckpoint) {
			return nil, errors.New("attestation source does not match current justified checkpoint")
		}
		state.CurrentEpochAttestations = append(state.CurrentEpochAttestations, pendingAtt)
	} else {
		if !checkpointEqual(data.Source, state.PreviousJustifiedCheckpoint) {
			return nil, errors.New("attestation source does not match previous justified checkpoint")
		}
		state.PreviousEpochAttestations = append(state.PreviousEpochAttestations, pendingAtt)
	}

	attestingIndices, err := helpers.AttestingIndices(att.AggregationBits, committee)
	if err != nil {
		return nil, errors.Wrap(err, "could not get attesting indices")
	}
	sorted := append([]uint64{}, attestingIndices...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	indexed := &ethpb.IndexedAttestation{
		AttestingIndices: sorted,
		Data:             data,
		Signature:        att.Signature,
	}
	if err := VerifyIndexedAttestation(state, ec, indexed, verifySignatures); err != nil {
		return nil, errors.Wrap(err, "could not verify attestation signature")
	}

	return state, nil
}

func checkpointEqual(a, b *ethpb.Checkpoint) bool {
	return a.Epoch == b.Epoch && string(a.Root) == string(b.Root)
}
