package epoch

import (
	"testing"

	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/stretchr/testify/require"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

func finalUpdatesTestState() *pb.BeaconState {
	randaoMixes := make([][]byte, params.BeaconConfig().EpochsPerHistoricalVector)
	for i := range randaoMixes {
		randaoMixes[i] = make([]byte, 32)
	}
	randaoMixes[0] = []byte{9, 9, 9}
	for len(randaoMixes[0]) < 32 {
		randaoMixes[0] = append(randaoMixes[0], 0)
	}

	return &pb.BeaconState{
		Validators: []*ethpb.Validator{
			{EffectiveBalance: 32 * params.BeaconConfig().EffectiveBalanceIncrement},
			{EffectiveBalance: 32 * params.BeaconConfig().EffectiveBalanceIncrement},
		},
		Balances:                  []uint64{30 * params.BeaconConfig().EffectiveBalanceIncrement, 32 * params.BeaconConfig().EffectiveBalanceIncrement},
		Slashings:                 make([]uint64, params.BeaconConfig().EpochsPerSlashingsVector),
		RandaoMixes:               randaoMixes,
		Eth1DataVotes:             []*pb.Eth1Data{{}},
		PreviousEpochAttestations: []*pb.PendingAttestation{},
		CurrentEpochAttestations:  []*pb.PendingAttestation{{}},
	}
}

func TestProcessFinalUpdates_AppliesDownwardHysteresis(t *testing.T) {
	state := finalUpdatesTestState()
	state.Slashings[0] = 123
	newState, err := ProcessFinalUpdates(state, 0)
	require.NoError(t, err)

	require.Equal(t,
		30*params.BeaconConfig().EffectiveBalanceIncrement,
		newState.Validators[0].EffectiveBalance)
	require.Equal(t,
		32*params.BeaconConfig().EffectiveBalanceIncrement,
		newState.Validators[1].EffectiveBalance)
}

func TestProcessFinalUpdates_RotatesSlashingsAndAttestations(t *testing.T) {
	state := finalUpdatesTestState()
	state.Slashings[1] = 123
	newState, err := ProcessFinalUpdates(state, 0)
	require.NoError(t, err)

	require.Equal(t, uint64(0), newState.Slashings[1])
	require.Equal(t, 1, len(newState.PreviousEpochAttestations))
	require.Equal(t, 0, len(newState.CurrentEpochAttestations))
}

func TestProcessFinalUpdates_SetsNextRandaoMixFromCurrentEpoch(t *testing.T) {
	state := finalUpdatesTestState()
	newState, err := ProcessFinalUpdates(state, 0)
	require.NoError(t, err)
	require.Equal(t, state.RandaoMixes[0], newState.RandaoMixes[1])
}
