package blocks

import (
	"testing"

	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/stretchr/testify/require"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

func exitEligibleState(t *testing.T) *pb.BeaconState {
	state, _ := freshTestState(t, 8)
	exitEpoch := params.BeaconConfig().ShardCommitteePeriod
	state.Slot = exitEpoch * params.BeaconConfig().SlotsPerEpoch
	return state
}

func TestProcessVoluntaryExit_Initiates(t *testing.T) {
	state := exitEligibleState(t)
	exit := &ethpb.SignedVoluntaryExit{
		Exit:      &ethpb.VoluntaryExit{Epoch: params.BeaconConfig().ShardCommitteePeriod, ValidatorIndex: 3},
		Signature: make([]byte, 96),
	}
	newState, err := ProcessVoluntaryExit(state, exit, false)
	require.NoError(t, err)
	require.NotEqual(t, params.BeaconConfig().FarFutureEpoch, newState.Validators[3].ExitEpoch)
}

func TestProcessVoluntaryExit_RejectsNotActiveLongEnough(t *testing.T) {
	state, _ := freshTestState(t, 8)
	exit := &ethpb.SignedVoluntaryExit{
		Exit:      &ethpb.VoluntaryExit{Epoch: 0, ValidatorIndex: 3},
		Signature: make([]byte, 96),
	}
	_, err := ProcessVoluntaryExit(state, exit, false)
	require.ErrorContains(t, "not been active long enough", err)
}

func TestProcessVoluntaryExit_RejectsAlreadyExited(t *testing.T) {
	state := exitEligibleState(t)
	state.Validators[3].ExitEpoch = params.BeaconConfig().ShardCommitteePeriod + 5
	exit := &ethpb.SignedVoluntaryExit{
		Exit:      &ethpb.VoluntaryExit{Epoch: params.BeaconConfig().ShardCommitteePeriod, ValidatorIndex: 3},
		Signature: make([]byte, 96),
	}
	_, err := ProcessVoluntaryExit(state, exit, false)
	require.ErrorContains(t, "already exited", err)
}

func TestProcessVoluntaryExit_RejectsFutureEpoch(t *testing.T) {
	state := exitEligibleState(t)
	exit := &ethpb.SignedVoluntaryExit{
		Exit:      &ethpb.VoluntaryExit{Epoch: params.BeaconConfig().ShardCommitteePeriod + 1000, ValidatorIndex: 3},
		Signature: make([]byte, 96),
	}
	_, err := ProcessVoluntaryExit(state, exit, false)
	require.ErrorContains(t, "future epoch", err)
}

func TestProcessVoluntaryExits_RejectsTooMany(t *testing.T) {
	state := exitEligibleState(t)
	body := &pb.BeaconBlockBody{VoluntaryExits: make([]*ethpb.SignedVoluntaryExit, params.BeaconConfig().MaxVoluntaryExits+1)}
	_, err := ProcessVoluntaryExits(state, body, false)
	require.ErrorIs(t, err, ErrTooManyVoluntaryExits)
}
