package validators

import (
	"testing"

	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/stretchr/testify/require"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

func bufferOf(n uint64) [][]byte {
	out := make([][]byte, n)
	for i := range out {
		out[i] = make([]byte, 32)
	}
	return out
}

func testState(t *testing.T, n int) *pb.BeaconState {
	validators := make([]*ethpb.Validator, n)
	balances := make([]uint64, n)
	for i := 0; i < n; i++ {
		validators[i] = &ethpb.Validator{
			PublicKey:         make([]byte, 48),
			EffectiveBalance:  params.BeaconConfig().MaxEffectiveBalance,
			ActivationEpoch:   0,
			ExitEpoch:         params.BeaconConfig().FarFutureEpoch,
			WithdrawableEpoch: params.BeaconConfig().FarFutureEpoch,
		}
		balances[i] = params.BeaconConfig().MaxEffectiveBalance
	}
	return &pb.BeaconState{
		Slot:              0,
		Validators:        validators,
		Balances:          balances,
		Slashings:         make([]uint64, params.BeaconConfig().EpochsPerSlashingsVector),
		RandaoMixes:       bufferOf(params.BeaconConfig().EpochsPerHistoricalVector),
		LatestBlockHeader: &pb.BeaconBlockHeader{Slot: 0},
	}
}

func TestInitiateValidatorExit_SetsExitAndWithdrawableEpoch(t *testing.T) {
	state := testState(t, 8)
	require.NoError(t, InitiateValidatorExit(state, 2))
	require.NotEqual(t, params.BeaconConfig().FarFutureEpoch, state.Validators[2].ExitEpoch)
	require.Equal(t,
		state.Validators[2].ExitEpoch+params.BeaconConfig().MinValidatorWithdrawabilityDelay,
		state.Validators[2].WithdrawableEpoch)
}

func TestInitiateValidatorExit_IsANoopWhenAlreadyExiting(t *testing.T) {
	state := testState(t, 8)
	state.Validators[2].ExitEpoch = 10
	state.Validators[2].WithdrawableEpoch = 20
	require.NoError(t, InitiateValidatorExit(state, 2))
	require.Equal(t, uint64(10), state.Validators[2].ExitEpoch)
	require.Equal(t, uint64(20), state.Validators[2].WithdrawableEpoch)
}

func TestInitiateValidatorExit_QueuesBehindChurnLimit(t *testing.T) {
	state := testState(t, 8)
	churnLimit := params.BeaconConfig().MinPerEpochChurnLimit
	for i := uint64(0); i < churnLimit; i++ {
		require.NoError(t, InitiateValidatorExit(state, i))
	}
	firstExitEpoch := state.Validators[0].ExitEpoch
	require.NoError(t, InitiateValidatorExit(state, churnLimit))
	require.Equal(t, firstExitEpoch+1, state.Validators[churnLimit].ExitEpoch)
}

func TestSlashValidator_MarksSlashedAndAppliesPenalty(t *testing.T) {
	state := testState(t, 8)
	effectiveBalance := state.Validators[3].EffectiveBalance

	require.NoError(t, SlashValidator(state, 3, -1))

	require.Equal(t, true, state.Validators[3].Slashed)
	require.NotEqual(t, params.BeaconConfig().FarFutureEpoch, state.Validators[3].ExitEpoch)

	expectedPenalty := effectiveBalance / params.BeaconConfig().MinSlashingPenaltyQuotient
	expectedBalance := effectiveBalance - expectedPenalty
	if idx3IsProposer(t, state) {
		whistleblowerReward := effectiveBalance / params.BeaconConfig().WhistleBlowerRewardQuotient
		expectedBalance += whistleblowerReward
	}
	require.Equal(t, expectedBalance, state.Balances[3])
	require.Equal(t, effectiveBalance, state.Slashings[0])
}

func idx3IsProposer(t *testing.T, state *pb.BeaconState) bool {
	idx, err := helpers.BeaconProposerIndex(state)
	require.NoError(t, err)
	return idx == 3
}
