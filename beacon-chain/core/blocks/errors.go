package blocks

import "github.com/pkg/errors"

// Sentinel errors surfaced by the block operation processors. Tests match
// on these with errors.Is / strings.Contains rather than reparsing
// formatted messages.
var (
	ErrInvalidBlockSlot      = errors.New("block slot does not match state slot")
	ErrInvalidParentRoot     = errors.New("block parent root does not match latest block header")
	ErrInvalidProposerIndex  = errors.New("block proposer index does not match computed proposer")
	ErrSlashedProposer       = errors.New("block proposer is slashed")
	ErrInvalidRandaoReveal   = errors.New("block randao reveal signature did not verify")
	ErrTooManyProposerSlash  = errors.New("too many proposer slashings in block")
	ErrTooManyAttesterSlash  = errors.New("too many attester slashings in block")
	ErrTooManyAttestations   = errors.New("too many attestations in block")
	ErrTooManyDeposits       = errors.New("too many deposits in block")
	ErrTooManyVoluntaryExits = errors.New("too many voluntary exits in block")
)
