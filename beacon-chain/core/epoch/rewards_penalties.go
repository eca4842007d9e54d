package epoch

import (
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epoch/precompute"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/mathutil"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// Deltas holds one reward/penalty dimension's per-validator Gwei amounts.
type Deltas struct {
	Rewards   []uint64
	Penalties []uint64
}

func newDeltas(n int) *Deltas {
	return &Deltas{Rewards: make([]uint64, n), Penalties: make([]uint64, n)}
}

// AttestationDeltas computes the five independent reward/penalty
// dimensions used by ProcessRewardsAndPenalties: source, target, head,
// inclusion delay and inactivity. Keeping them separate (rather than
// collapsing them into a combined attestation delta and a combined
// crosslink delta) makes each dimension's condition traceable to the
// flag it reads off AttesterStatus.
//
// Spec pseudocode definition:
//  def get_source_deltas(state: BeaconState) -> Tuple[Sequence[Gwei], Sequence[Gwei]]: ...
//  def get_target_deltas(state: BeaconState) -> Tuple[Sequence[Gwei], Sequence[Gwei]]: ...
//  def get_head_deltas(state: BeaconState) -> Tuple[Sequence[Gwei], Sequence[Gwei]]: ...
//  def get_inclusion_delay_deltas(state: BeaconState) -> Tuple[Sequence[Gwei], Sequence[Gwei]]: ...
//  def get_inactivity_penalty_deltas(state: BeaconState) -> Tuple[Sequence[Gwei], Sequence[Gwei]]: ...
func AttestationDeltas(state *pb.BeaconState, ep *precompute.EpochProcess) (source, target, head, inclusionDelay, inactivity *Deltas) {
	n := len(ep.Statuses)
	source = newDeltas(n)
	target = newDeltas(n)
	head = newDeltas(n)
	inclusionDelay = newDeltas(n)
	inactivity = newDeltas(n)

	totalBalance := ep.Balances.ActiveCurrentEpoch
	balanceSqrt := mathutil.IntegerSquareRoot(totalBalance)
	if balanceSqrt == 0 {
		balanceSqrt = 1
	}
	baseRewardFactor := params.BeaconConfig().BaseRewardFactor
	baseRewardsPerEpoch := params.BeaconConfig().BaseRewardsPerEpoch
	proposerRewardQuotient := params.BeaconConfig().ProposerRewardQuotient
	increment := params.BeaconConfig().EffectiveBalanceIncrement

	finalizedEpoch := state.FinalizedCheckpoint.Epoch
	inLeak := helpers.IsInInactivityLeak(ep.PrevEpoch, finalizedEpoch)
	finalityDelay := helpers.FinalityDelay(ep.PrevEpoch, finalizedEpoch)

	totalBalanceInc := totalBalance / increment
	prevSourceInc := ep.Balances.PrevSourceAttesters / increment
	prevTargetInc := ep.Balances.PrevTargetAttesters / increment
	prevHeadInc := ep.Balances.PrevHeadAttesters / increment

	for i, status := range ep.Statuses {
		baseReward := status.EffectiveBalance * baseRewardFactor / balanceSqrt / baseRewardsPerEpoch
		proposerReward := baseReward / proposerRewardQuotient

		if status.Flags.Has(precompute.FlagPrevSourceAttester) && status.Flags.Has(precompute.FlagUnslashed) {
			inclusionDelay.Rewards[status.ProposerIndex] += proposerReward
			inclusionDelay.Rewards[i] += (baseReward - proposerReward) / status.InclusionDelay
		}

		if !status.Flags.Has(precompute.FlagEligibleAttester) {
			continue
		}

		source.Rewards[i], source.Penalties[i] = matchingDelta(status, precompute.FlagPrevSourceAttester, baseReward, prevSourceInc, totalBalanceInc, inLeak)
		target.Rewards[i], target.Penalties[i] = matchingDelta(status, precompute.FlagPrevTargetAttester, baseReward, prevTargetInc, totalBalanceInc, inLeak)
		head.Rewards[i], head.Penalties[i] = matchingDelta(status, precompute.FlagPrevHeadAttester, baseReward, prevHeadInc, totalBalanceInc, inLeak)

		if inLeak {
			inclusionDelay.Penalties[i] += baseReward*baseRewardsPerEpoch - proposerReward
			if !status.Flags.Has(precompute.FlagPrevTargetAttester) || !status.Flags.Has(precompute.FlagUnslashed) {
				inactivity.Penalties[i] += status.EffectiveBalance * finalityDelay / params.BeaconConfig().InactivityPenaltyQuotient
			}
		}
	}

	return source, target, head, inclusionDelay, inactivity
}

// matchingDelta implements one of the three matching-vote dimensions
// (source, target, head): full base_reward during the inactivity leak,
// proportional reward outside it, and a flat penalty when the validator
// missed (or was slashed out of) that vote.
func matchingDelta(status *precompute.AttesterStatus, flag precompute.Flag, baseReward, matchingInc, totalInc uint64, inLeak bool) (reward, penalty uint64) {
	if status.Flags.Has(flag) && status.Flags.Has(precompute.FlagUnslashed) {
		if inLeak {
			return baseReward, 0
		}
		return baseReward * matchingInc / totalInc, 0
	}
	return 0, baseReward
}

// ProcessRewardsAndPenalties applies all five reward dimensions and then
// all five penalty dimensions to state.balances in a single pass,
// skipping genesis (there is nothing to reward on the very first epoch).
//
// Spec pseudocode definition:
//  def process_rewards_and_penalties(state: BeaconState) -> None:
//    if get_current_epoch(state) == GENESIS_EPOCH:
//        return
//
//    deltas = [get_source_deltas(state), get_target_deltas(state), get_head_deltas(state),
//              get_inclusion_delay_deltas(state), get_inactivity_penalty_deltas(state)]
//    for (rewards, penalties) in deltas:
//        for index in range(len(state.validators)):
//            increase_balance(state, ValidatorIndex(index), rewards[index])
//            decrease_balance(state, ValidatorIndex(index), penalties[index])
func ProcessRewardsAndPenalties(state *pb.BeaconState, ep *precompute.EpochProcess) (*pb.BeaconState, error) {
	if ep.CurrentEpoch == 0 {
		return state, nil
	}

	source, target, head, inclusionDelay, inactivity := AttestationDeltas(state, ep)
	all := []*Deltas{source, target, head, inclusionDelay, inactivity}

	for i := range state.Validators {
		for _, d := range all {
			helpers.IncreaseBalance(state, uint64(i), d.Rewards[i])
			helpers.DecreaseBalance(state, uint64(i), d.Penalties[i])
		}
	}
	return state, nil
}
