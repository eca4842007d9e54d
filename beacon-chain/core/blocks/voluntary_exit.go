package blocks

import (
	"github.com/pkg/errors"
	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/validators"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bls"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessVoluntaryExits verifies and applies every voluntary exit in the
// block body, in order, against the same state.
func ProcessVoluntaryExits(state *pb.BeaconState, body *pb.BeaconBlockBody, verifySignatures bool) (*pb.BeaconState, error) {
	if uint64(len(body.VoluntaryExits)) > params.BeaconConfig().MaxVoluntaryExits {
		return nil, ErrTooManyVoluntaryExits
	}
	for _, exit := range body.VoluntaryExits {
		var err error
		state, err = ProcessVoluntaryExit(state, exit, verifySignatures)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ProcessVoluntaryExit verifies a single signed voluntary exit: the
// validator is active, hasn't already exited, has been active long
// enough, and the exit isn't for a future epoch; then verifies its
// signature and initiates the exit.
//
// Spec pseudocode definition:
//  def process_voluntary_exit(state: BeaconState, signed_voluntary_exit: SignedVoluntaryExit) -> None:
//    voluntary_exit = signed_voluntary_exit.message
//    validator = state.validators[voluntary_exit.validator_index]
//    assert is_active_validator(validator, get_current_epoch(state))
//    assert validator.exit_epoch == FAR_FUTURE_EPOCH
//    assert get_current_epoch(state) >= voluntary_exit.epoch
//    assert get_current_epoch(state) >= validator.activation_epoch + SHARD_COMMITTEE_PERIOD
//    domain = get_domain(state, DOMAIN_VOLUNTARY_EXIT, voluntary_exit.epoch)
//    signing_root = compute_signing_root(voluntary_exit, domain)
//    assert bls.Verify(validator.pubkey, signing_root, signed_voluntary_exit.signature)
//    initiate_validator_exit(state, voluntary_exit.validator_index)
func ProcessVoluntaryExit(state *pb.BeaconState, signed *ethpb.SignedVoluntaryExit, verifySignatures bool) (*pb.BeaconState, error) {
	exit := signed.Exit
	if int(exit.ValidatorIndex) >= len(state.Validators) {
		return nil, errors.New("voluntary exit validator index out of bounds")
	}
	validator := state.Validators[exit.ValidatorIndex]
	currentEpoch := helpers.CurrentEpoch(state)

	if !helpers.IsActiveValidator(validator, currentEpoch) {
		return nil, errors.New("validator is not active")
	}
	if validator.ExitEpoch != params.BeaconConfig().FarFutureEpoch {
		return nil, errors.New("validator has already exited")
	}
	if currentEpoch < exit.Epoch {
		return nil, errors.New("voluntary exit is for a future epoch")
	}
	if currentEpoch < validator.ActivationEpoch+params.BeaconConfig().ShardCommitteePeriod {
		return nil, errors.New("validator has not been active long enough to exit")
	}

	if verifySignatures {
		pubkey, err := bls.PublicKeyFromBytes(validator.PublicKey)
		if err != nil {
			return nil, errors.Wrap(err, "could not deserialize validator pubkey")
		}
		domain := helpers.Domain(state.Fork, exit.Epoch, params.BeaconConfig().DomainVoluntaryExit)
		signingRoot, err := helpers.ComputeSigningRoot(exit, domain)
		if err != nil {
			return nil, errors.Wrap(err, "could not compute signing root")
		}
		sig, err := bls.SignatureFromBytes(signed.Signature)
		if err != nil {
			return nil, errors.Wrap(err, "could not deserialize exit signature")
		}
		if !sig.Verify(pubkey, signingRoot[:]) {
			return nil, errors.New("voluntary exit signature did not verify")
		}
	}

	if err := validators.InitiateValidatorExit(state, exit.ValidatorIndex); err != nil {
		return nil, errors.Wrap(err, "could not initiate validator exit")
	}
	return state, nil
}
