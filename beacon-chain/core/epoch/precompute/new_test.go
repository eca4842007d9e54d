package precompute

import (
	"testing"

	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/stretchr/testify/require"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

func TestNew_SummarizesRegistryAtGenesis(t *testing.T) {
	far := params.BeaconConfig().FarFutureEpoch
	max := params.BeaconConfig().MaxEffectiveBalance
	state := &pb.BeaconState{
		Slot: 0,
		Validators: []*ethpb.Validator{
			{ // active, healthy
				ActivationEpoch: 0, ExitEpoch: far, WithdrawableEpoch: far,
				ActivationEligibilityEpoch: far, EffectiveBalance: max,
			},
			{ // active, below ejection balance
				ActivationEpoch: 0, ExitEpoch: far, WithdrawableEpoch: far,
				ActivationEligibilityEpoch: far, EffectiveBalance: params.BeaconConfig().EjectionBalance,
			},
			{ // eligible for activation queue entry
				ActivationEpoch: far, ExitEpoch: far, WithdrawableEpoch: far,
				ActivationEligibilityEpoch: 0, EffectiveBalance: max,
			},
			{ // not yet eligible for activation queue (balance too low)
				ActivationEpoch: far, ExitEpoch: far, WithdrawableEpoch: far,
				ActivationEligibilityEpoch: far, EffectiveBalance: max / 2,
			},
		},
		Balances:                  make([]uint64, 4),
		PreviousEpochAttestations: []*pb.PendingAttestation{},
		CurrentEpochAttestations:  []*pb.PendingAttestation{},
	}

	ep, err := New(state, nil)
	require.NoError(t, err)

	require.Equal(t, max+params.BeaconConfig().EjectionBalance, ep.Balances.ActiveCurrentEpoch)
	require.Equal(t, []uint64{1}, ep.IndicesToEject)
	require.Equal(t, []uint64{0}, ep.IndicesToSetActivationEligibility)
	require.Equal(t, []uint64{2}, ep.IndicesToMaybeActivate)
	require.Equal(t, uint64(2), ep.ActiveValidatorCount)
}

func TestNew_OrdersActivationQueueByIndexWhenEligibilityTies(t *testing.T) {
	far := params.BeaconConfig().FarFutureEpoch
	max := params.BeaconConfig().MaxEffectiveBalance
	state := &pb.BeaconState{
		Slot: 0,
		Validators: []*ethpb.Validator{
			{ActivationEpoch: far, ExitEpoch: far, WithdrawableEpoch: far, ActivationEligibilityEpoch: 0, EffectiveBalance: max},
			{ActivationEpoch: far, ExitEpoch: far, WithdrawableEpoch: far, ActivationEligibilityEpoch: 0, EffectiveBalance: max},
			{ActivationEpoch: far, ExitEpoch: far, WithdrawableEpoch: far, ActivationEligibilityEpoch: 0, EffectiveBalance: max},
		},
		Balances:                  make([]uint64, 3),
		PreviousEpochAttestations: []*pb.PendingAttestation{},
		CurrentEpochAttestations:  []*pb.PendingAttestation{},
	}

	ep, err := New(state, nil)
	require.NoError(t, err)
	require.Equal(t, []uint64{0, 1, 2}, ep.IndicesToMaybeActivate)
}
