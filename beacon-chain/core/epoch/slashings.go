package epoch

import (
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epoch/precompute"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessSlashings applies the epoch-boundary share of the total
// slashings penalty to every validator precompute.New flagged for it.
// Unlike the minimum penalty slash_validator applies immediately at
// slash time, this has no per-validator floor: a validator whose
// effective balance is small relative to the total slashed this
// vector pays proportionally little here.
//
// Spec pseudocode definition:
//  def process_slashings(state: BeaconState) -> None:
//    epoch = get_current_epoch(state)
//    total_balance = get_total_active_balance(state)
//    adjusted_total_slashing_balance = min(sum(state.slashings) * PROPORTIONAL_SLASHING_MULTIPLIER, total_balance)
//    for index, validator in enumerate(state.validators):
//        if validator.slashed and epoch + EPOCHS_PER_SLASHINGS_VECTOR // 2 == validator.withdrawable_epoch:
//            increment = EFFECTIVE_BALANCE_INCREMENT
//            penalty_numerator = validator.effective_balance // increment * adjusted_total_slashing_balance
//            penalty = penalty_numerator // total_balance * increment
//            decrease_balance(state, ValidatorIndex(index), penalty)
func ProcessSlashings(state *pb.BeaconState, ep *precompute.EpochProcess) (*pb.BeaconState, error) {
	totalBalance := ep.Balances.ActiveCurrentEpoch

	var totalSlashings uint64
	for _, s := range state.Slashings {
		totalSlashings += s
	}
	slashingsScale := totalSlashings * 3
	if slashingsScale > totalBalance {
		slashingsScale = totalBalance
	}

	increment := params.BeaconConfig().EffectiveBalanceIncrement
	for _, idx := range ep.IndicesToSlash {
		status := ep.Statuses[idx]
		penalty := status.EffectiveBalance / increment * slashingsScale / totalBalance * increment
		helpers.DecreaseBalance(state, idx, penalty)
	}
	return state, nil
}
