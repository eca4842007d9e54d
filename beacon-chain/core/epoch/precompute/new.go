package precompute

import (
	"bytes"
	"sort"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// New walks the validator registry (once in full, then a second scan of
// exit epochs to count the exit-queue churn) and the previous/current
// epoch pending attestations once, and returns the summary every later epoch
// stage (justification, rewards/penalties, registry updates, slashings)
// reads from instead of re-deriving. ec must already reflect state (i.e.
// have been produced by epochctx.LoadState or kept current via
// RotateEpochs) so committee lookups don't recompute the shuffling.
func New(state *pb.BeaconState, ec *epochctx.EpochsContext) (*EpochProcess, error) {
	currentEpoch := helpers.CurrentEpoch(state)
	prevEpoch := helpers.PrevEpoch(state)

	ep := &EpochProcess{
		CurrentEpoch: currentEpoch,
		PrevEpoch:    prevEpoch,
		Balances:     &Balances{},
		Statuses:     make([]*AttesterStatus, len(state.Validators)),
	}

	exitQueueEnd := helpers.ComputeActivationExitEpoch(currentEpoch)
	var activeCount uint64
	var exitQueueEndChurn uint64

	for i, v := range state.Validators {
		status := &AttesterStatus{
			EffectiveBalance:           v.EffectiveBalance,
			Slashed:                    v.Slashed,
			WithdrawableEpoch:          v.WithdrawableEpoch,
			ExitEpoch:                  v.ExitEpoch,
			ActivationEligibilityEpoch: v.ActivationEligibilityEpoch,
			ActivationEpoch:            v.ActivationEpoch,
			ProposerIndex:              -1,
		}
		if !v.Slashed {
			status.Flags |= FlagUnslashed
		}

		status.ActiveCurrentEpoch = helpers.IsActiveValidator(v, currentEpoch)
		status.ActivePrevEpoch = helpers.IsActiveValidator(v, prevEpoch)
		if status.ActiveCurrentEpoch {
			ep.Balances.ActiveCurrentEpoch += v.EffectiveBalance
			activeCount++
		}
		if status.ActivePrevEpoch {
			ep.Balances.ActivePrevEpoch += v.EffectiveBalance
		}
		if status.ActivePrevEpoch || (v.Slashed && prevEpoch+1 < v.WithdrawableEpoch) {
			status.Flags |= FlagEligibleAttester
		}

		ep.Statuses[i] = status

		if v.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
			if v.ExitEpoch > exitQueueEnd {
				exitQueueEnd = v.ExitEpoch
			}
		}

		if v.ActivationEligibilityEpoch == params.BeaconConfig().FarFutureEpoch &&
			v.EffectiveBalance == params.BeaconConfig().MaxEffectiveBalance {
			ep.IndicesToSetActivationEligibility = append(ep.IndicesToSetActivationEligibility, uint64(i))
		}
		if v.ActivationEpoch == params.BeaconConfig().FarFutureEpoch &&
			v.ActivationEligibilityEpoch <= currentEpoch {
			ep.IndicesToMaybeActivate = append(ep.IndicesToMaybeActivate, uint64(i))
		}
		if status.ActiveCurrentEpoch &&
			v.EffectiveBalance <= params.BeaconConfig().EjectionBalance &&
			v.ExitEpoch == params.BeaconConfig().FarFutureEpoch {
			ep.IndicesToEject = append(ep.IndicesToEject, uint64(i))
		}

		slashingsEpoch := currentEpoch + params.BeaconConfig().EpochsPerSlashingsVector/2
		if v.Slashed && slashingsEpoch == v.WithdrawableEpoch {
			ep.IndicesToSlash = append(ep.IndicesToSlash, uint64(i))
		}
	}

	// Recompute exit_queue_end_churn by scanning once more now that
	// exit_queue_end is known: every validator already exiting at that
	// epoch counts against this epoch's churn budget.
	for _, v := range state.Validators {
		if v.ExitEpoch == exitQueueEnd {
			exitQueueEndChurn++
		}
	}

	ep.ActiveValidatorCount = activeCount
	ep.ChurnLimit = helpers.ValidatorChurnLimit(activeCount)
	if exitQueueEndChurn >= ep.ChurnLimit {
		exitQueueEnd++
		exitQueueEndChurn = 0
	}
	ep.ExitQueueEnd = exitQueueEnd
	ep.ExitQueueEndChurn = exitQueueEndChurn

	sort.Slice(ep.IndicesToMaybeActivate, func(i, j int) bool {
		a, b := ep.IndicesToMaybeActivate[i], ep.IndicesToMaybeActivate[j]
		ea, eb := ep.Statuses[a].ActivationEligibilityEpoch, ep.Statuses[b].ActivationEligibilityEpoch
		if ea == eb {
			return a < b
		}
		return ea < eb
	})

	if state.Slot != 0 {
		if err := tallyAttestations(state, ec, ep, state.PreviousEpochAttestations, prevEpoch, false); err != nil {
			return nil, errors.Wrap(err, "could not tally previous epoch attestations")
		}
	}
	if state.Slot != helpers.StartSlot(currentEpoch) {
		if err := tallyAttestations(state, ec, ep, state.CurrentEpochAttestations, currentEpoch, true); err != nil {
			return nil, errors.Wrap(err, "could not tally current epoch attestations")
		}
	}

	floor := params.BeaconConfig().EffectiveBalanceIncrement
	if ep.Balances.ActiveCurrentEpoch < floor {
		ep.Balances.ActiveCurrentEpoch = floor
	}
	if ep.Balances.ActivePrevEpoch < floor {
		ep.Balances.ActivePrevEpoch = floor
	}
	if ep.Balances.PrevSourceAttesters < floor {
		ep.Balances.PrevSourceAttesters = floor
	}
	if ep.Balances.PrevTargetAttesters < floor {
		ep.Balances.PrevTargetAttesters = floor
	}
	if ep.Balances.PrevHeadAttesters < floor {
		ep.Balances.PrevHeadAttesters = floor
	}
	if ep.Balances.CurrentTargetAttesters < floor {
		ep.Balances.CurrentTargetAttesters = floor
	}

	return ep, nil
}

// tallyAttestations marks each attesting validator's status with source,
// target and head flags for the given checkpoint (previous or current
// epoch) and accumulates the corresponding unslashed balances, covering
// both get_matching_source/target/head_attestations and
// get_unslashed_attesting_indices in a single pass per attestation.
func tallyAttestations(state *pb.BeaconState, ec *epochctx.EpochsContext, ep *EpochProcess, atts []*pb.PendingAttestation, epoch uint64, current bool) error {
	targetRoot, err := helpers.BlockRoot(state, epoch)
	if err != nil {
		return errors.Wrap(err, "could not get epoch boundary root")
	}

	for _, att := range atts {
		committee, err := ec.GetBeaconCommittee(att.Data.Slot, att.Data.CommitteeIndex)
		if err != nil {
			return errors.Wrap(err, "could not get attesting committee")
		}
		attesters, err := helpers.AttestingIndices(att.AggregationBits, committee)
		if err != nil {
			return errors.Wrap(err, "could not get attesting indices")
		}

		votedTarget := bytes.Equal(att.Data.Target.Root, targetRoot)
		var votedHead bool
		headRoot, err := helpers.BlockRootAtSlot(state, att.Data.Slot)
		if err == nil {
			votedHead = bytes.Equal(att.Data.BeaconBlockRoot, headRoot)
		}

		for _, idx := range attesters {
			status := ep.Statuses[idx]

			if !current {
				if status.ProposerIndex == -1 || status.InclusionDelay > att.InclusionDelay {
					status.ProposerIndex = int64(att.ProposerIndex)
					status.InclusionDelay = att.InclusionDelay
				}
			}

			sourceFlag, targetFlag, headFlag := FlagPrevSourceAttester, FlagPrevTargetAttester, FlagPrevHeadAttester
			if current {
				sourceFlag, targetFlag, headFlag = FlagCurrentSourceAttester, FlagCurrentTargetAttester, FlagCurrentHeadAttester
			}

			alreadySource := status.Flags.Has(sourceFlag)
			status.Flags |= sourceFlag
			if !alreadySource && status.Flags.Has(FlagUnslashed) {
				if current {
					// current-epoch source participation is not separately
					// totaled; only the current target total feeds
					// justification.
				} else {
					ep.Balances.PrevSourceAttesters += status.EffectiveBalance
				}
			}

			if votedTarget {
				alreadyTarget := status.Flags.Has(targetFlag)
				status.Flags |= targetFlag
				if !alreadyTarget && status.Flags.Has(FlagUnslashed) {
					if current {
						ep.Balances.CurrentTargetAttesters += status.EffectiveBalance
					} else {
						ep.Balances.PrevTargetAttesters += status.EffectiveBalance
					}
				}

				if votedHead {
					alreadyHead := status.Flags.Has(headFlag)
					status.Flags |= headFlag
					if !alreadyHead && !current && status.Flags.Has(FlagUnslashed) {
						ep.Balances.PrevHeadAttesters += status.EffectiveBalance
					}
				}
			}
		}
	}
	return nil
}
