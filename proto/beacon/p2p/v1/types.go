// Package v1 defines the wire-level state and block container types used by
// the phase 0 beacon chain core state transition. These mirror the eth2
// SSZ containers; shared validator/attestation/operation types are reused
// directly from ethpb so the core never maintains two copies of the same
// container.
package v1

import (
	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
	"github.com/prysmaticlabs/go-bitfield"
)

// BeaconState is the full canonical state of the beacon chain.
type BeaconState struct {
	GenesisTime uint64 `ssz-size:"8"`
	Slot        uint64

	Fork              *Fork
	LatestBlockHeader *BeaconBlockHeader

	BlockRoots      [][]byte `ssz-size:"8192,32"`
	StateRoots      [][]byte `ssz-size:"8192,32"`
	HistoricalRoots [][]byte `ssz-size:"?,32"`

	Eth1Data         *Eth1Data
	Eth1DataVotes    []*Eth1Data
	Eth1DepositIndex uint64

	Validators []*ethpb.Validator
	Balances   []uint64

	RandaoMixes [][]byte `ssz-size:"65536,32"`

	Slashings []uint64 `ssz-size:"8192"`

	PreviousEpochAttestations []*PendingAttestation
	CurrentEpochAttestations  []*PendingAttestation

	JustificationBits           []byte `ssz-size:"1"`
	PreviousJustifiedCheckpoint *ethpb.Checkpoint
	CurrentJustifiedCheckpoint  *ethpb.Checkpoint
	FinalizedCheckpoint         *ethpb.Checkpoint
}

// Clone returns a deep copy of the state suitable for mutation without
// aliasing the source.
func (b *BeaconState) Clone() *BeaconState {
	if b == nil {
		return nil
	}
	dst := *b
	dst.Fork = b.Fork.Clone()
	dst.LatestBlockHeader = b.LatestBlockHeader.Clone()
	dst.BlockRoots = clone2D(b.BlockRoots)
	dst.StateRoots = clone2D(b.StateRoots)
	dst.HistoricalRoots = clone2D(b.HistoricalRoots)
	dst.Eth1Data = b.Eth1Data.Clone()
	dst.Eth1DataVotes = make([]*Eth1Data, len(b.Eth1DataVotes))
	for i, v := range b.Eth1DataVotes {
		dst.Eth1DataVotes[i] = v.Clone()
	}
	dst.Validators = make([]*ethpb.Validator, len(b.Validators))
	copy(dst.Validators, b.Validators)
	dst.Balances = make([]uint64, len(b.Balances))
	copy(dst.Balances, b.Balances)
	dst.RandaoMixes = clone2D(b.RandaoMixes)
	dst.Slashings = make([]uint64, len(b.Slashings))
	copy(dst.Slashings, b.Slashings)
	dst.PreviousEpochAttestations = make([]*PendingAttestation, len(b.PreviousEpochAttestations))
	copy(dst.PreviousEpochAttestations, b.PreviousEpochAttestations)
	dst.CurrentEpochAttestations = make([]*PendingAttestation, len(b.CurrentEpochAttestations))
	copy(dst.CurrentEpochAttestations, b.CurrentEpochAttestations)
	dst.JustificationBits = append([]byte{}, b.JustificationBits...)
	return &dst
}

func clone2D(in [][]byte) [][]byte {
	out := make([][]byte, len(in))
	for i, v := range in {
		out[i] = append([]byte{}, v...)
	}
	return out
}

// Fork tracks the current and previous fork versions.
type Fork struct {
	PreviousVersion []byte `ssz-size:"4"`
	CurrentVersion  []byte `ssz-size:"4"`
	Epoch           uint64
}

// Clone returns a deep copy.
func (f *Fork) Clone() *Fork {
	if f == nil {
		return nil
	}
	return &Fork{
		PreviousVersion: append([]byte{}, f.PreviousVersion...),
		CurrentVersion:  append([]byte{}, f.CurrentVersion...),
		Epoch:           f.Epoch,
	}
}

// Eth1Data represents the eth1 deposit contract data voted into a block.
type Eth1Data struct {
	DepositRoot  []byte `ssz-size:"32"`
	DepositCount uint64
	BlockHash    []byte `ssz-size:"32"`
}

// Clone returns a deep copy.
func (e *Eth1Data) Clone() *Eth1Data {
	if e == nil {
		return nil
	}
	return &Eth1Data{
		DepositRoot:  append([]byte{}, e.DepositRoot...),
		DepositCount: e.DepositCount,
		BlockHash:    append([]byte{}, e.BlockHash...),
	}
}

// HistoricalBatch is the per-SlotsPerHistoricalRoot archival record used
// to compute HistoricalRoots entries.
type HistoricalBatch struct {
	BlockRoots [][]byte `ssz-size:"8192,32"`
	StateRoots [][]byte `ssz-size:"8192,32"`
}

// PendingAttestation is the per-epoch attestation record retained in
// state (phase 0 has no per-slot attestation pool at the state level).
type PendingAttestation struct {
	AggregationBits bitfield.Bitlist `ssz-max:"2048"`
	Data            *ethpb.AttestationData
	InclusionDelay  uint64
	ProposerIndex   uint64
}

// BeaconBlock is an unsigned beacon block.
type BeaconBlock struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	Body          *BeaconBlockBody
}

// SignedBeaconBlock wraps a BeaconBlock with its proposer signature.
type SignedBeaconBlock struct {
	Block     *BeaconBlock
	Signature []byte `ssz-size:"96"`
}

// BeaconBlockBody holds the per-slot operations bundle.
type BeaconBlockBody struct {
	RandaoReveal      []byte `ssz-size:"96"`
	Eth1Data          *Eth1Data
	Graffiti          []byte `ssz-size:"32"`
	ProposerSlashings []*ethpb.ProposerSlashing
	AttesterSlashings []*ethpb.AttesterSlashing
	Attestations      []*ethpb.Attestation
	Deposits          []*ethpb.Deposit
	VoluntaryExits    []*ethpb.SignedVoluntaryExit
}

// BeaconBlockHeader is the slim header form of a BeaconBlock, used for the
// state's LatestBlockHeader slot and for historical-root chaining.
type BeaconBlockHeader struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    []byte `ssz-size:"32"`
	StateRoot     []byte `ssz-size:"32"`
	BodyRoot      []byte `ssz-size:"32"`
}

// Clone returns a deep copy.
func (h *BeaconBlockHeader) Clone() *BeaconBlockHeader {
	if h == nil {
		return nil
	}
	return &BeaconBlockHeader{
		Slot:          h.Slot,
		ProposerIndex: h.ProposerIndex,
		ParentRoot:    append([]byte{}, h.ParentRoot...),
		StateRoot:     append([]byte{}, h.StateRoot...),
		BodyRoot:      append([]byte{}, h.BodyRoot...),
	}
}

// SignedBeaconBlockHeader wraps a BeaconBlockHeader with its signature.
type SignedBeaconBlockHeader struct {
	Header    *BeaconBlockHeader
	Signature []byte `ssz-size:"96"`
}

// SigningData binds an object's hash tree root to the domain it was signed
// under, so that the same object root can never be replayed across forks or
// message types.
type SigningData struct {
	ObjectRoot []byte `ssz-size:"32"`
	Domain     []byte `ssz-size:"8"`
}

// DepositMessage is DepositData stripped of its signature: it's what the
// signature itself actually commits to, since a signature can't sign
// over a container that includes itself.
type DepositMessage struct {
	PublicKey             []byte `ssz-size:"48"`
	WithdrawalCredentials []byte `ssz-size:"32"`
	Amount                uint64
}
