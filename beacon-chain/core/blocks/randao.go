package blocks

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bls"
	"github.com/prysmaticlabs/prysm/shared/hashutil"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// ProcessRandao verifies the block proposer's RANDAO reveal against its
// registered pubkey, then mixes the reveal's hash into the randao mix of
// the current epoch. verifySignatures lets callers skip the BLS check
// (e.g. when replaying blocks already verified by the network layer).
//
// Spec pseudocode definition:
//  def process_randao(state: BeaconState, body: BeaconBlockBody) -> None:
//    epoch = get_current_epoch(state)
//    # Verify RANDAO reveal
//    proposer_index = get_beacon_proposer_index(state)
//    proposer = state.validators[proposer_index]
//    signing_root = compute_signing_root(epoch, get_domain(state, DOMAIN_RANDAO))
//    assert bls.Verify(proposer.pubkey, signing_root, body.randao_reveal)
//    # Mix it in
//    mix = xor(get_randao_mix(state, epoch), hash(body.randao_reveal))
//    state.randao_mixes[epoch % EPOCHS_PER_HISTORICAL_VECTOR] = mix
func ProcessRandao(state *pb.BeaconState, ec *epochctx.EpochsContext, body *pb.BeaconBlockBody, verifySignatures bool) (*pb.BeaconState, error) {
	epoch := helpers.CurrentEpoch(state)

	if verifySignatures {
		proposerIndex, err := ec.GetBeaconProposer(state.Slot)
		if err != nil {
			return nil, errors.Wrap(err, "could not compute beacon proposer index")
		}
		pubkeyBytes, ok := ec.ValidatorPubkey(proposerIndex)
		if !ok {
			return nil, errors.New("could not find proposer pubkey")
		}
		pubkey, err := bls.PublicKeyFromBytes(pubkeyBytes[:])
		if err != nil {
			return nil, errors.Wrap(err, "could not deserialize proposer pubkey")
		}
		sig, err := bls.SignatureFromBytes(body.RandaoReveal)
		if err != nil {
			return nil, errors.Wrap(err, "could not deserialize randao reveal")
		}
		domain := helpers.Domain(state.Fork, epoch, params.BeaconConfig().DomainRandao)
		signingRoot, err := helpers.ComputeSigningRoot(epoch, domain)
		if err != nil {
			return nil, errors.Wrap(err, "could not compute randao signing root")
		}
		if !sig.Verify(pubkey, signingRoot[:]) {
			return nil, ErrInvalidRandaoReveal
		}
	}

	mix, err := helpers.RandaoMix(state, epoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not get current randao mix")
	}
	revealHash := hashutil.Hash(body.RandaoReveal)
	newMix := xorBytes(mix, revealHash[:])

	vectorLength := params.BeaconConfig().EpochsPerHistoricalVector
	state.RandaoMixes[epoch%vectorLength] = newMix

	return state, nil
}

func xorBytes(a, b []byte) []byte {
	out := make([]byte, len(a))
	for i := range out {
		out[i] = a[i] ^ b[i]
	}
	return out
}
