// Package validators contains libraries to initiate validator exits and
// apply slashing penalties outside of the epoch-boundary transition: the
// operation processors (proposer/attester slashing, voluntary exit) call
// into this package one validator at a time, unlike the precomputed,
// batch epoch-boundary registry updates in core/epoch.
package validators

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// InitiateValidatorExit sets a validator's exit epoch and withdrawable
// epoch, computing the exit queue epoch on the spot by scanning every
// other validator's exit epoch. Epoch-boundary registry updates don't
// call this: they use the churn bookkeeping already computed once by
// precompute.New.
//
// Spec pseudocode definition:
//  def initiate_validator_exit(state: BeaconState, index: ValidatorIndex) -> None:
//    """
//    Initiate the exit of the validator with index ``index``.
//    """
//    # Return if validator already initiated exit
//    validator = state.validators[index]
//    if validator.exit_epoch != FAR_FUTURE_EPOCH:
//        return
//
//    # Compute exit queue epoch
//    exit_epochs = [v.exit_epoch for v in state.validators if v.exit_epoch != FAR_FUTURE_EPOCH]
//    exit_queue_epoch = max(exit_epochs + [compute_activation_exit_epoch(get_current_epoch(state))])
//    exit_queue_churn = len([v for v in state.validators if v.exit_epoch == exit_queue_epoch])
//    if exit_queue_churn >= get_validator_churn_limit(state):
//        exit_queue_epoch += Epoch(1)
//
//    # Set validator exit epoch and withdrawable epoch
//    validator.exit_epoch = exit_queue_epoch
//    validator.withdrawable_epoch = Epoch(validator.exit_epoch + MIN_VALIDATOR_WITHDRAWABILITY_DELAY)
func InitiateValidatorExit(state *pb.BeaconState, idx uint64) error {
	validator := state.Validators[idx]
	if validator.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
		return nil
	}

	exitQueueEpoch := helpers.ComputeActivationExitEpoch(helpers.CurrentEpoch(state))
	exitQueueChurn := uint64(0)
	activeCount := uint64(0)
	for _, v := range state.Validators {
		if v.ExitEpoch != params.BeaconConfig().FarFutureEpoch && v.ExitEpoch > exitQueueEpoch {
			exitQueueEpoch = v.ExitEpoch
		}
		if helpers.IsActiveValidator(v, helpers.CurrentEpoch(state)) {
			activeCount++
		}
	}
	for _, v := range state.Validators {
		if v.ExitEpoch == exitQueueEpoch {
			exitQueueChurn++
		}
	}

	churnLimit := helpers.ValidatorChurnLimit(activeCount)
	if exitQueueChurn >= churnLimit {
		exitQueueEpoch++
	}

	validator.ExitEpoch = exitQueueEpoch
	validator.WithdrawableEpoch = exitQueueEpoch + params.BeaconConfig().MinValidatorWithdrawabilityDelay
	return nil
}

// SlashValidator initiates a validator's exit and zeroes out the portion
// of its reward path covered by the slashing: it marks the validator
// slashed, extends its withdrawable epoch, records the slashed balance
// for the slashings-vector rotation, and immediately applies the
// minimum slashing penalty (the rest of the penalty is applied once, at
// the epoch boundary, by ProcessSlashings). Splits the whistleblower
// reward between the block proposer and whoever reported the slashing;
// when no separate reporter is known the proposer receives the whole
// reward.
//
// Spec pseudocode definition:
//  def slash_validator(state: BeaconState,
//                     slashed_index: ValidatorIndex,
//                     whistleblower_index: ValidatorIndex=None) -> None:
//    """
//    Slash the validator with index ``slashed_index``.
//    """
//    epoch = get_current_epoch(state)
//    initiate_validator_exit(state, slashed_index)
//    validator = state.validators[slashed_index]
//    validator.slashed = True
//    validator.withdrawable_epoch = max(validator.withdrawable_epoch, Epoch(epoch + EPOCHS_PER_SLASHINGS_VECTOR))
//    state.slashings[epoch % EPOCHS_PER_SLASHINGS_VECTOR] += validator.effective_balance
//    decrease_balance(state, slashed_index, validator.effective_balance // MIN_SLASHING_PENALTY_QUOTIENT)
//
//    proposer_index = get_beacon_proposer_index(state)
//    if whistleblower_index is None:
//        whistleblower_index = proposer_index
//    whistleblower_reward = Gwei(validator.effective_balance // WHISTLEBLOWER_REWARD_QUOTIENT)
//    proposer_reward = Gwei(whistleblower_reward // PROPOSER_REWARD_QUOTIENT)
//    increase_balance(state, proposer_index, proposer_reward)
//    increase_balance(state, whistleblower_index, whistleblower_reward - proposer_reward)
func SlashValidator(state *pb.BeaconState, slashedIdx uint64, whistleBlowerIdx int64) error {
	currentEpoch := helpers.CurrentEpoch(state)
	if err := InitiateValidatorExit(state, slashedIdx); err != nil {
		return errors.Wrap(err, "could not initiate validator exit")
	}

	validator := state.Validators[slashedIdx]
	validator.Slashed = true
	withdrawableEpoch := currentEpoch + params.BeaconConfig().EpochsPerSlashingsVector
	if withdrawableEpoch > validator.WithdrawableEpoch {
		validator.WithdrawableEpoch = withdrawableEpoch
	}

	exitLength := params.BeaconConfig().EpochsPerSlashingsVector
	state.Slashings[currentEpoch%exitLength] += validator.EffectiveBalance
	helpers.DecreaseBalance(state, slashedIdx, validator.EffectiveBalance/params.BeaconConfig().MinSlashingPenaltyQuotient)

	proposerIdx, err := helpers.BeaconProposerIndex(state)
	if err != nil {
		return errors.Wrap(err, "could not get beacon proposer index")
	}
	whistleBlower := proposerIdx
	if whistleBlowerIdx >= 0 {
		whistleBlower = uint64(whistleBlowerIdx)
	}

	whistleblowerReward := validator.EffectiveBalance / params.BeaconConfig().WhistleBlowerRewardQuotient
	proposerReward := whistleblowerReward / params.BeaconConfig().ProposerRewardQuotient
	helpers.IncreaseBalance(state, proposerIdx, proposerReward)
	helpers.IncreaseBalance(state, whistleBlower, whistleblowerReward-proposerReward)
	return nil
}
