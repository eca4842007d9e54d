package blocks

import (
	"bytes"

	"github.com/pkg/errors"
	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/validators"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bls"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessProposerSlashings verifies and applies every proposer slashing
// in the block body, in order, against the same state.
func ProcessProposerSlashings(state *pb.BeaconState, ec *epochctx.EpochsContext, body *pb.BeaconBlockBody, verifySignatures bool) (*pb.BeaconState, error) {
	if uint64(len(body.ProposerSlashings)) > params.BeaconConfig().MaxProposerSlashings {
		return nil, ErrTooManyProposerSlash
	}
	for _, slashing := range body.ProposerSlashings {
		var err error
		state, err = ProcessProposerSlashing(state, ec, slashing, verifySignatures)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ProcessProposerSlashing verifies a single proposer slashing: both
// headers share a slot and proposer but are otherwise distinct, the
// proposer is still slashable, and both header signatures verify under
// the proposer's pubkey. It then slashes the proposer.
//
// Spec pseudocode definition:
//  def process_proposer_slashing(state: BeaconState, proposer_slashing: ProposerSlashing) -> None:
//    header_1 = proposer_slashing.signed_header_1.message
//    header_2 = proposer_slashing.signed_header_2.message
//    assert header_1.slot == header_2.slot
//    assert header_1.proposer_index == header_2.proposer_index
//    assert header_1 != header_2
//    proposer = state.validators[header_1.proposer_index]
//    assert is_slashable_validator(proposer, get_current_epoch(state))
//    for signed_header in (proposer_slashing.signed_header_1, proposer_slashing.signed_header_2):
//        domain = get_domain(state, DOMAIN_BEACON_PROPOSER, compute_epoch_at_slot(signed_header.message.slot))
//        signing_root = compute_signing_root(signed_header.message, domain)
//        assert bls.Verify(proposer.pubkey, signing_root, signed_header.signature)
//    slash_validator(state, header_1.proposer_index)
func ProcessProposerSlashing(state *pb.BeaconState, ec *epochctx.EpochsContext, slashing *ethpb.ProposerSlashing, verifySignatures bool) (*pb.BeaconState, error) {
	header1 := slashing.Header_1.Header
	header2 := slashing.Header_2.Header

	if header1.Slot != header2.Slot {
		return nil, errors.New("mismatched header slots")
	}
	if header1.ProposerIndex != header2.ProposerIndex {
		return nil, errors.New("mismatched header proposer indices")
	}
	if headersEqual(header1, header2) {
		return nil, errors.New("proposer slashing headers are identical")
	}

	if int(header1.ProposerIndex) >= len(state.Validators) {
		return nil, errors.New("proposer index out of bounds")
	}
	proposer := state.Validators[header1.ProposerIndex]
	if !helpers.IsSlashableValidator(proposer, helpers.CurrentEpoch(state)) {
		return nil, errors.New("proposer is not slashable")
	}

	if verifySignatures {
		pubkey, err := bls.PublicKeyFromBytes(proposer.PublicKey)
		if err != nil {
			return nil, errors.Wrap(err, "could not deserialize proposer pubkey")
		}
		for _, signed := range []*ethpb.SignedBeaconBlockHeader{slashing.Header_1, slashing.Header_2} {
			domain := helpers.Domain(state.Fork, helpers.SlotToEpoch(signed.Header.Slot), params.BeaconConfig().DomainBeaconProposer)
			signingRoot, err := helpers.ComputeSigningRoot(signed.Header, domain)
			if err != nil {
				return nil, errors.Wrap(err, "could not compute signing root")
			}
			sig, err := bls.SignatureFromBytes(signed.Signature)
			if err != nil {
				return nil, errors.Wrap(err, "could not deserialize header signature")
			}
			if !sig.Verify(pubkey, signingRoot[:]) {
				return nil, errors.New("proposer slashing header signature did not verify")
			}
		}
	}

	if err := validators.SlashValidator(state, header1.ProposerIndex, -1); err != nil {
		return nil, errors.Wrap(err, "could not slash proposer")
	}
	return state, nil
}

func headersEqual(a, b *ethpb.BeaconBlockHeader) bool {
	return a.Slot == b.Slot &&
		a.ProposerIndex == b.ProposerIndex &&
		bytes.Equal(a.ParentRoot, b.ParentRoot) &&
		bytes.Equal(a.StateRoot, b.StateRoot) &&
		bytes.Equal(a.BodyRoot, b.BodyRoot)
}
