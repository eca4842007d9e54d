package blocks

import (
	"testing"

	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/stretchr/testify/require"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

func header(slot, proposerIdx uint64, stateRoot byte) *ethpb.SignedBeaconBlockHeader {
	return &ethpb.SignedBeaconBlockHeader{
		Header: &ethpb.BeaconBlockHeader{
			Slot:          slot,
			ProposerIndex: proposerIdx,
			ParentRoot:    make([]byte, 32),
			StateRoot:     []byte{stateRoot, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0},
			BodyRoot:      make([]byte, 32),
		},
		Signature: make([]byte, 96),
	}
}

func TestProcessProposerSlashing_SlashesOnDistinctHeaders(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.ProposerSlashing{
		Header_1: header(0, 2, 1),
		Header_2: header(0, 2, 2),
	}
	newState, err := ProcessProposerSlashing(state, ec, slashing, false)
	require.NoError(t, err)
	require.Equal(t, true, newState.Validators[2].Slashed)
	require.NotEqual(t, params.BeaconConfig().FarFutureEpoch, newState.Validators[2].ExitEpoch)
}

func TestProcessProposerSlashing_RejectsMismatchedSlot(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.ProposerSlashing{
		Header_1: header(0, 2, 1),
		Header_2: header(1, 2, 2),
	}
	_, err := ProcessProposerSlashing(state, ec, slashing, false)
	require.ErrorContains(t, "mismatched header slots", err)
}

func TestProcessProposerSlashing_RejectsMismatchedProposer(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.ProposerSlashing{
		Header_1: header(0, 2, 1),
		Header_2: header(0, 3, 2),
	}
	_, err := ProcessProposerSlashing(state, ec, slashing, false)
	require.ErrorContains(t, "mismatched header proposer indices", err)
}

func TestProcessProposerSlashing_RejectsIdenticalHeaders(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.ProposerSlashing{
		Header_1: header(0, 2, 1),
		Header_2: header(0, 2, 1),
	}
	_, err := ProcessProposerSlashing(state, ec, slashing, false)
	require.ErrorContains(t, "identical", err)
}

func TestProcessProposerSlashing_RejectsAlreadySlashed(t *testing.T) {
	state, ec := freshTestState(t, 8)
	state.Validators[2].Slashed = true
	slashing := &ethpb.ProposerSlashing{
		Header_1: header(0, 2, 1),
		Header_2: header(0, 2, 2),
	}
	_, err := ProcessProposerSlashing(state, ec, slashing, false)
	require.ErrorContains(t, "not slashable", err)
}

func TestProcessProposerSlashing_RejectsOutOfBoundsProposer(t *testing.T) {
	state, ec := freshTestState(t, 8)
	slashing := &ethpb.ProposerSlashing{
		Header_1: header(0, 99, 1),
		Header_2: header(0, 99, 2),
	}
	_, err := ProcessProposerSlashing(state, ec, slashing, false)
	require.ErrorContains(t, "out of bounds", err)
}

func TestProcessProposerSlashings_RejectsTooMany(t *testing.T) {
	state, ec := freshTestState(t, 8)
	body := &pb.BeaconBlockBody{ProposerSlashings: make([]*ethpb.ProposerSlashing, params.BeaconConfig().MaxProposerSlashings+1)}
	_, err := ProcessProposerSlashings(state, ec, body, false)
	require.ErrorIs(t, err, ErrTooManyProposerSlash)
}
