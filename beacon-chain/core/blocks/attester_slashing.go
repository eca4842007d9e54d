package blocks

import (
	"github.com/pkg/errors"
	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/validators"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bls"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/prysmaticlabs/prysm/shared/sliceutil"
)

// ProcessAttesterSlashings verifies and applies every attester slashing
// in the block body, in order, against the same state.
func ProcessAttesterSlashings(state *pb.BeaconState, ec *epochctx.EpochsContext, body *pb.BeaconBlockBody, verifySignatures bool) (*pb.BeaconState, error) {
	if uint64(len(body.AttesterSlashings)) > params.BeaconConfig().MaxAttesterSlashings {
		return nil, ErrTooManyAttesterSlash
	}
	for _, slashing := range body.AttesterSlashings {
		var err error
		state, err = ProcessAttesterSlashing(state, ec, slashing, verifySignatures)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ProcessAttesterSlashing verifies a single attester slashing: the two
// indexed attestations contest the chain (a double vote or a surround
// vote), both are individually well-formed and signed, and then slashes
// every validator both attestations attest in common.
//
// Spec pseudocode definition:
//  def process_attester_slashing(state: BeaconState, attester_slashing: AttesterSlashing) -> None:
//    attestation_1 = attester_slashing.attestation_1
//    attestation_2 = attester_slashing.attestation_2
//    assert is_slashable_attestation_data(attestation_1.data, attestation_2.data)
//    assert is_valid_indexed_attestation(state, attestation_1)
//    assert is_valid_indexed_attestation(state, attestation_2)
//
//    slashed_any = False
//    indices = set(attestation_1.attesting_indices).intersection(attestation_2.attesting_indices)
//    for index in sorted(indices):
//        if is_slashable_validator(state.validators[index], get_current_epoch(state)):
//            slash_validator(state, index)
//            slashed_any = True
//    assert slashed_any
func ProcessAttesterSlashing(state *pb.BeaconState, ec *epochctx.EpochsContext, slashing *ethpb.AttesterSlashing, verifySignatures bool) (*pb.BeaconState, error) {
	att1 := slashing.Attestation_1
	att2 := slashing.Attestation_2

	if !IsSlashableAttestationData(att1.Data, att2.Data) {
		return nil, errors.New("attestations are not slashable")
	}
	if err := VerifyIndexedAttestation(state, ec, att1, verifySignatures); err != nil {
		return nil, errors.Wrap(err, "could not verify first indexed attestation")
	}
	if err := VerifyIndexedAttestation(state, ec, att2, verifySignatures); err != nil {
		return nil, errors.Wrap(err, "could not verify second indexed attestation")
	}

	indices := sliceutil.IntersectionUint64(att1.AttestingIndices, att2.AttestingIndices)
	currentEpoch := helpers.CurrentEpoch(state)
	slashedAny := false
	for _, idx := range indices {
		if helpers.IsSlashableValidator(state.Validators[idx], currentEpoch) {
			if err := validators.SlashValidator(state, idx, -1); err != nil {
				return nil, errors.Wrap(err, "could not slash validator")
			}
			slashedAny = true
		}
	}
	if !slashedAny {
		return nil, errors.New("no validator slashed by attester slashing")
	}

	return state, nil
}

// IsSlashableAttestationData reports whether two attestation data
// describe a double vote (same target epoch, different data) or a
// surround vote (one source/target range encloses the other).
//
// Spec pseudocode definition:
//  def is_slashable_attestation_data(data_1: AttestationData, data_2: AttestationData) -> bool:
//    return (
//        (data_1 != data_2 and data_1.target.epoch == data_2.target.epoch) or
//        (data_1.source.epoch < data_2.source.epoch and data_2.target.epoch < data_1.target.epoch)
//    )
func IsSlashableAttestationData(a, b *ethpb.AttestationData) bool {
	doubleVote := !attestationDataEqual(a, b) && a.Target.Epoch == b.Target.Epoch
	surroundVote := a.Source.Epoch < b.Source.Epoch && b.Target.Epoch < a.Target.Epoch
	return doubleVote || surroundVote
}

func attestationDataEqual(a, b *ethpb.AttestationData) bool {
	if a.Slot != b.Slot || a.CommitteeIndex != b.CommitteeIndex {
		return false
	}
	if string(a.BeaconBlockRoot) != string(b.BeaconBlockRoot) {
		return false
	}
	if a.Source.Epoch != b.Source.Epoch || string(a.Source.Root) != string(b.Source.Root) {
		return false
	}
	if a.Target.Epoch != b.Target.Epoch || string(a.Target.Root) != string(b.Target.Root) {
		return false
	}
	return true
}

// VerifyIndexedAttestation checks that an indexed attestation's indices
// are non-empty, sorted and unique, and that the aggregate signature
// verifies against every listed validator's pubkey over the attestation
// data's signing root.
//
// Spec pseudocode definition:
//  def is_valid_indexed_attestation(state: BeaconState, indexed_attestation: IndexedAttestation) -> bool:
//    indices = indexed_attestation.attesting_indices
//    if len(indices) == 0 or not indices == sorted(set(indices)):
//        return False
//    pubkeys = [state.validators[i].pubkey for i in indices]
//    domain = get_domain(state, DOMAIN_BEACON_ATTESTER, indexed_attestation.data.target.epoch)
//    signing_root = compute_signing_root(indexed_attestation.data, domain)
//    return bls.Verify(bls.AggregatePKs(pubkeys), signing_root, indexed_attestation.signature)
func VerifyIndexedAttestation(state *pb.BeaconState, ec *epochctx.EpochsContext, att *ethpb.IndexedAttestation, verifySignatures bool) error {
	indices := att.AttestingIndices
	if len(indices) == 0 {
		return errors.New("indexed attestation has no attesting indices")
	}
	if !sliceutil.IsUint64Sorted(indices) {
		return errors.New("indexed attestation indices are not sorted")
	}
	for i := 1; i < len(indices); i++ {
		if indices[i] == indices[i-1] {
			return errors.New("indexed attestation indices contain duplicates")
		}
	}

	if !verifySignatures {
		return nil
	}

	pubkeys := make([]*bls.PublicKey, len(indices))
	for i, idx := range indices {
		pubkeyBytes, ok := ec.ValidatorPubkey(idx)
		if !ok {
			return errors.Errorf("no pubkey for validator index %d", idx)
		}
		pubkey, err := bls.PublicKeyFromBytes(pubkeyBytes[:])
		if err != nil {
			return errors.Wrap(err, "could not deserialize attester pubkey")
		}
		pubkeys[i] = pubkey
	}

	domain := helpers.Domain(state.Fork, att.Data.Target.Epoch, params.BeaconConfig().DomainBeaconAttester)
	signingRoot, err := helpers.ComputeSigningRoot(att.Data, domain)
	if err != nil {
		return errors.Wrap(err, "could not compute signing root")
	}

	sig, err := bls.SignatureFromBytes(att.Signature)
	if err != nil {
		return errors.Wrap(err, "could not deserialize attestation signature")
	}
	msgs := make([][32]byte, len(pubkeys))
	for i := range msgs {
		msgs[i] = signingRoot
	}
	if !sig.AggregateVerify(pubkeys, msgs) {
		return errors.New("indexed attestation signature did not verify")
	}
	return nil
}
