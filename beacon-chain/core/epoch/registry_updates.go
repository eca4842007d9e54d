package epoch

import (
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epoch/precompute"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessRegistryUpdates rotates validators in and out of the active set
// using the churn limit and exit queue state precompute.New already
// derived, rather than recomputing them per validator the way the
// operation-time InitiateValidatorExit does.
//
// Spec pseudocode definition:
//  def process_registry_updates(state: BeaconState) -> None:
//    # Process activation eligibility and ejections
//    for index, validator in enumerate(state.validators):
//        if is_eligible_for_activation_queue(validator):
//            validator.activation_eligibility_epoch = get_current_epoch(state) + 1
//        if is_active_validator(validator, get_current_epoch(state)) and validator.effective_balance <= EJECTION_BALANCE:
//            initiate_validator_exit(state, ValidatorIndex(index))
//
//    # Queue validators eligible for activation and not yet dequeued for activation
//    activation_queue = sorted([
//        index for index, validator in enumerate(state.validators)
//        if is_eligible_for_activation(state, validator)
//    ], key=lambda index: (state.validators[index].activation_eligibility_epoch, index))
//
//    # Dequeued validators for activation up to activation churn limit
//    for index in activation_queue[:get_validator_churn_limit(state)]:
//        validator = state.validators[index]
//        validator.activation_epoch = compute_activation_exit_epoch(get_current_epoch(state))
func ProcessRegistryUpdates(state *pb.BeaconState, ep *precompute.EpochProcess) (*pb.BeaconState, error) {
	exitQueueEnd := ep.ExitQueueEnd
	exitQueueEndChurn := ep.ExitQueueEndChurn

	for _, idx := range ep.IndicesToEject {
		v := state.Validators[idx]
		v.ExitEpoch = exitQueueEnd
		v.WithdrawableEpoch = exitQueueEnd + params.BeaconConfig().MinValidatorWithdrawabilityDelay

		exitQueueEndChurn++
		if exitQueueEndChurn >= ep.ChurnLimit {
			exitQueueEnd++
			exitQueueEndChurn = 0
		}
	}

	for _, idx := range ep.IndicesToSetActivationEligibility {
		state.Validators[idx].ActivationEligibilityEpoch = ep.CurrentEpoch + 1
	}

	finalizedEpoch := state.FinalizedCheckpoint.Epoch
	limit := ep.ChurnLimit
	for i, idx := range ep.IndicesToMaybeActivate {
		if uint64(i) >= limit {
			break
		}
		if state.Validators[idx].ActivationEligibilityEpoch > finalizedEpoch {
			break
		}
		state.Validators[idx].ActivationEpoch = helpers.ComputeActivationExitEpoch(ep.CurrentEpoch)
	}

	return state, nil
}
