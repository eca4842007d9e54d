package blocks

import (
	"testing"

	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/stretchr/testify/require"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

func attData(slot, committeeIdx, sourceEpoch, targetEpoch uint64) *ethpb.AttestationData {
	return &ethpb.AttestationData{
		Slot:            slot,
		CommitteeIndex:  committeeIdx,
		BeaconBlockRoot: make([]byte, 32),
		Source:          &ethpb.Checkpoint{Epoch: sourceEpoch, Root: make([]byte, 32)},
		Target:          &ethpb.Checkpoint{Epoch: targetEpoch, Root: make([]byte, 32)},
	}
}

func TestIsSlashableAttestationData_DoubleVote(t *testing.T) {
	a := attData(1, 0, 0, 1)
	b := attData(2, 0, 0, 1)
	require.Equal(t, true, IsSlashableAttestationData(a, b))
}

func TestIsSlashableAttestationData_SurroundVote(t *testing.T) {
	a := attData(1, 0, 0, 3)
	b := attData(2, 0, 1, 2)
	require.Equal(t, true, IsSlashableAttestationData(a, b))
}

func TestIsSlashableAttestationData_NotSlashable(t *testing.T) {
	a := attData(1, 0, 0, 1)
	b := attData(2, 0, 1, 2)
	require.Equal(t, false, IsSlashableAttestationData(a, b))
}

func TestVerifyIndexedAttestation_RejectsUnsorted(t *testing.T) {
	state, ec := freshTestState(t, 8)
	att := &ethpb.IndexedAttestation{
		AttestingIndices: []uint64{2, 1},
		Data:             attData(0, 0, 0, 0),
		Signature:        make([]byte, 96),
	}
	err := VerifyIndexedAttestation(state, ec, att, false)
	require.ErrorContains(t, "not sorted", err)
}

func TestVerifyIndexedAttestation_RejectsDuplicates(t *testing.T) {
	state, ec := freshTestState(t, 8)
	att := &ethpb.IndexedAttestation{
		AttestingIndices: []uint64{1, 1, 2},
		Data:             attData(0, 0, 0, 0),
		Signature:        make([]byte, 96),
	}
	err := VerifyIndexedAttestation(state, ec, att, false)
	require.ErrorContains(t, "duplicates", err)
}

func TestVerifyIndexedAttestation_RejectsEmpty(t *testing.T) {
	state, ec := freshTestState(t, 8)
	att := &ethpb.IndexedAttestation{
		AttestingIndices: []uint64{},
		Data:             attData(0, 0, 0, 0),
		Signature:        make([]byte, 96),
	}
	err := VerifyIndexedAttestation(state, ec, att, false)
	require.ErrorContains(t, "no attesting indices", err)
}

func TestVerifyIndexedAttestation_SkipsSignatureWhenDisabled(t *testing.T) {
	state, ec := freshTestState(t, 8)
	att := &ethpb.IndexedAttestation{
		AttestingIndices: []uint64{0, 1, 2},
		Data:             attData(0, 0, 0, 0),
		Signature:        make([]byte, 96),
	}
	require.NoError(t, VerifyIndexedAttestation(state, ec, att, false))
}

func TestProcessAttesterSlashing_SlashesIntersection(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.AttesterSlashing{
		Attestation_1: &ethpb.IndexedAttestation{
			AttestingIndices: []uint64{0, 1, 2},
			Data:             attData(1, 0, 0, 1),
			Signature:        make([]byte, 96),
		},
		Attestation_2: &ethpb.IndexedAttestation{
			AttestingIndices: []uint64{1, 2, 3},
			Data:             attData(2, 0, 0, 1),
			Signature:        make([]byte, 96),
		},
	}
	newState, err := ProcessAttesterSlashing(state, ec, slashing, false)
	require.NoError(t, err)
	require.Equal(t, true, newState.Validators[1].Slashed)
	require.Equal(t, true, newState.Validators[2].Slashed)
	require.Equal(t, false, newState.Validators[0].Slashed)
	require.Equal(t, false, newState.Validators[3].Slashed)
}

func TestProcessAttesterSlashing_RejectsNonSlashableData(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.AttesterSlashing{
		Attestation_1: &ethpb.IndexedAttestation{
			AttestingIndices: []uint64{0},
			Data:             attData(1, 0, 0, 1),
			Signature:        make([]byte, 96),
		},
		Attestation_2: &ethpb.IndexedAttestation{
			AttestingIndices: []uint64{0},
			Data:             attData(2, 0, 1, 2),
			Signature:        make([]byte, 96),
		},
	}
	_, err := ProcessAttesterSlashing(state, ec, slashing, false)
	require.ErrorContains(t, "not slashable", err)
}

func TestProcessAttesterSlashings_RejectsTooMany(t *testing.T) {
	state, ec := freshTestState(t, 8)
	body := &pb.BeaconBlockBody{AttesterSlashings: make([]*ethpb.AttesterSlashing, params.BeaconConfig().MaxAttesterSlashings+1)}
	_, err := ProcessAttesterSlashings(state, ec, body, false)
	require.ErrorIs(t, err, ErrTooManyAttesterSlash)
}
