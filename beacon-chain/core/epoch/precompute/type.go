// Package precompute implements the epoch-boundary summary that feeds
// every other stage of epoch processing: a walk over the validator
// registry (plus one scan of exit epochs for the exit-queue churn) and
// the previous/current pending attestations
// classifies every validator's participation and totals the balances
// justification, rewards/penalties and registry updates all depend on,
// so none of those stages re-scans the registry on its own.
package precompute

// Flag marks one fact established about a validator during the epoch
// summary pass: whether it attested, for which checkpoint, and whether
// the attestation survived the unslashed filter.
type Flag uint8

const (
	// FlagUnslashed is set for every validator that has not been slashed.
	FlagUnslashed Flag = 1 << iota
	// FlagEligibleAttester is set for validators whose rewards/penalties
	// are computed this epoch (active previous epoch, or slashed but not
	// yet withdrawable).
	FlagEligibleAttester
	// FlagPrevSourceAttester is set when the validator's previous-epoch
	// attestation matches get_matching_source_attestations.
	FlagPrevSourceAttester
	// FlagPrevTargetAttester additionally requires the target root to
	// match the previous epoch boundary block.
	FlagPrevTargetAttester
	// FlagPrevHeadAttester additionally requires the beacon block root to
	// match the canonical chain at the attested slot.
	FlagPrevHeadAttester
	// FlagCurrentSourceAttester is the current-epoch analogue of
	// FlagPrevSourceAttester.
	FlagCurrentSourceAttester
	// FlagCurrentTargetAttester is the current-epoch analogue of
	// FlagPrevTargetAttester.
	FlagCurrentTargetAttester
	// FlagCurrentHeadAttester is the current-epoch analogue of
	// FlagPrevHeadAttester.
	FlagCurrentHeadAttester
)

// Has reports whether every bit in want is set in f.
func (f Flag) Has(want Flag) bool {
	return f&want == want
}

// AttesterStatus is the per-validator record built during the epoch
// summary pass. It flattens the fields of state.Validators[i] that later
// stages need so none of them has to dereference the registry again, and
// carries the earliest proposer credit for this validator's previous
// epoch attestation.
type AttesterStatus struct {
	Flags Flag

	EffectiveBalance           uint64
	Slashed                    bool
	ActiveCurrentEpoch         bool
	ActivePrevEpoch            bool
	WithdrawableEpoch          uint64
	ExitEpoch                  uint64
	ActivationEligibilityEpoch uint64
	ActivationEpoch            uint64

	// ProposerIndex is the proposer who earliest included this
	// validator's previous-epoch attestation, or -1 if none was included
	// yet in this pass.
	ProposerIndex  int64
	InclusionDelay uint64
}

// Balances totals the unslashed effective balance of validators sharing
// each participation flag, used by justification/finalization and by the
// reward/penalty deltas. Every field is floored at
// EFFECTIVE_BALANCE_INCREMENT by New to avoid division by zero downstream.
type Balances struct {
	ActiveCurrentEpoch uint64
	ActivePrevEpoch    uint64

	PrevSourceAttesters    uint64
	PrevTargetAttesters    uint64
	PrevHeadAttesters      uint64
	CurrentTargetAttesters uint64
}

// EpochProcess bundles the full epoch-boundary summary: per-validator
// status, aggregate balances, the churn bookkeeping registry updates
// consume in one pass, and the index sets registry updates and slashings
// act on. All produced by a single call to New.
type EpochProcess struct {
	CurrentEpoch uint64
	PrevEpoch    uint64

	Statuses []*AttesterStatus
	Balances *Balances

	ActiveValidatorCount uint64

	// ChurnLimit, ExitQueueEnd and ExitQueueEndChurn are computed once
	// during the registry scan in New so registry updates can assign exit
	// epochs to every ejected validator without recomputing the churn
	// limit or re-scanning existing exits.
	ChurnLimit        uint64
	ExitQueueEnd      uint64
	ExitQueueEndChurn uint64

	// IndicesToSlash holds validators due for the slashing-penalty pass
	// (already slashed, reaching the midpoint of their withdrawable period).
	IndicesToSlash []uint64
	// IndicesToSetActivationEligibility holds validators whose effective
	// balance just reached the activation threshold.
	IndicesToSetActivationEligibility []uint64
	// IndicesToEject holds active validators whose effective balance has
	// dropped to or below the ejection threshold and have not already
	// initiated an exit.
	IndicesToEject []uint64
	// IndicesToMaybeActivate holds validators eligible for activation, in
	// the order registry updates must consider them (by
	// ActivationEligibilityEpoch, ties broken by index).
	IndicesToMaybeActivate []uint64
}
