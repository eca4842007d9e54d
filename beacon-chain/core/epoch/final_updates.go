package epoch

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessFinalUpdates closes out the epoch transition: it resets the
// eth1 vote window on its cadence, re-levels every validator's effective
// balance against an asymmetric hysteresis band (an effective balance is
// re-leveled only when the balance falls more than the downward threshold
// below it or rises more than the wider upward threshold above it, to
// damp churn from one-slot balance fluctuations), rotates the slashings
// and RANDAO-mix vectors, appends a historical batch root on its cadence,
// and rotates the pending-attestations lists.
//
// Spec pseudocode definition:
//  def process_final_updates(state: BeaconState) -> None:
//    current_epoch = get_current_epoch(state)
//    next_epoch = Epoch(current_epoch + 1)
//    # Reset eth1 data votes
//    if next_epoch % EPOCHS_PER_ETH1_VOTING_PERIOD == 0:
//        state.eth1_data_votes = []
//    # Update effective balances with hysteresis
//    for index, validator in enumerate(state.validators):
//        balance = state.balances[index]
//        HYSTERESIS_INCREMENT = EFFECTIVE_BALANCE_INCREMENT // HYSTERESIS_QUOTIENT
//        DOWNWARD_THRESHOLD = HYSTERESIS_INCREMENT * HYSTERESIS_DOWNWARD_MULTIPLIER
//        UPWARD_THRESHOLD = HYSTERESIS_INCREMENT * HYSTERESIS_UPWARD_MULTIPLIER
//        if (
//            balance + DOWNWARD_THRESHOLD < validator.effective_balance
//            or validator.effective_balance + UPWARD_THRESHOLD < balance
//        ):
//            validator.effective_balance = min(balance - balance % EFFECTIVE_BALANCE_INCREMENT, MAX_EFFECTIVE_BALANCE)
//    # Reset slashings
//    state.slashings[next_epoch % EPOCHS_PER_SLASHINGS_VECTOR] = Gwei(0)
//    # Set randao mix
//    state.randao_mixes[next_epoch % EPOCHS_PER_HISTORICAL_VECTOR] = get_randao_mix(state, current_epoch)
//    # Set historical root accumulator
//    if next_epoch % (SLOTS_PER_HISTORICAL_ROOT // SLOTS_PER_EPOCH) == 0:
//        historical_batch = HistoricalBatch(block_roots=state.block_roots, state_roots=state.state_roots)
//        state.historical_roots.append(hash_tree_root(historical_batch))
//    # Rotate current/previous epoch attestations
//    state.previous_epoch_attestations = state.current_epoch_attestations
//    state.current_epoch_attestations = []
func ProcessFinalUpdates(state *pb.BeaconState, currentEpoch uint64) (*pb.BeaconState, error) {
	nextEpoch := currentEpoch + 1

	if nextEpoch%params.BeaconConfig().EpochsPerEth1VotingPeriod == 0 {
		state.Eth1DataVotes = nil
	}

	increment := params.BeaconConfig().EffectiveBalanceIncrement
	hysteresisIncrement := increment / params.BeaconConfig().HysteresisQuotient
	downwardThreshold := hysteresisIncrement * params.BeaconConfig().HysteresisDownwardMultiplier
	upwardThreshold := hysteresisIncrement * params.BeaconConfig().HysteresisUpwardMultiplier
	for i, v := range state.Validators {
		balance := state.Balances[i]
		if balance+downwardThreshold < v.EffectiveBalance || v.EffectiveBalance+upwardThreshold < balance {
			v.EffectiveBalance = balance - balance%increment
			if v.EffectiveBalance > params.BeaconConfig().MaxEffectiveBalance {
				v.EffectiveBalance = params.BeaconConfig().MaxEffectiveBalance
			}
		}
	}

	slashingsVectorLength := params.BeaconConfig().EpochsPerSlashingsVector
	state.Slashings[nextEpoch%slashingsVectorLength] = 0

	randaoMixLength := params.BeaconConfig().EpochsPerHistoricalVector
	mix, err := helpers.RandaoMix(state, currentEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not get current epoch randao mix")
	}
	state.RandaoMixes[nextEpoch%randaoMixLength] = mix

	epochsPerHistoricalRoot := params.BeaconConfig().SlotsPerHistoricalRoot / params.BeaconConfig().SlotsPerEpoch
	if nextEpoch%epochsPerHistoricalRoot == 0 {
		batch := &pb.HistoricalBatch{BlockRoots: state.BlockRoots, StateRoots: state.StateRoots}
		root, err := ssz.HashTreeRoot(batch)
		if err != nil {
			return nil, errors.Wrap(err, "could not hash historical batch")
		}
		state.HistoricalRoots = append(state.HistoricalRoots, root[:])
	}

	state.PreviousEpochAttestations = state.CurrentEpochAttestations
	state.CurrentEpochAttestations = make([]*pb.PendingAttestation, 0)

	return state, nil
}
