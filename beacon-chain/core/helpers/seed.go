package helpers

import (
	"github.com/pkg/errors"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bytesutil"
	"github.com/prysmaticlabs/prysm/shared/hashutil"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// Seed returns the seed used for shuffling validators into committees and
// sampling proposers, mixed with domainType so attester and proposer
// selection never reuse the same randomness.
//
// Spec pseudocode definition:
//  def get_seed(state: BeaconState, epoch: Epoch, domain_type: DomainType) -> Bytes32:
//    """
//    Return the seed at ``epoch``.
//    """
//    mix = get_randao_mix(state, Epoch(epoch + EPOCHS_PER_HISTORICAL_VECTOR - MIN_SEED_LOOKAHEAD - 1))
//    return hash(domain_type + uint_to_bytes(uint64(epoch)) + mix)
func Seed(state *pb.BeaconState, epoch uint64, domainType [4]byte) ([32]byte, error) {
	lookback := epoch + params.BeaconConfig().EpochsPerHistoricalVector - params.BeaconConfig().MinSeedLookahead - 1
	mix, err := RandaoMix(state, lookback)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not get randao mix")
	}

	b := make([]byte, 0, 4+8+32)
	b = append(b, domainType[:]...)
	b = append(b, bytesutil.Bytes8(epoch)...)
	b = append(b, mix...)

	return hashutil.Hash(b), nil
}

// RandaoMix returns the randao mix (xor'ed seed) of a given epoch, read from
// the circular EpochsPerHistoricalVector-long buffer kept in state.
//
// Spec pseudocode definition:
//  def get_randao_mix(state: BeaconState, epoch: Epoch) -> Bytes32:
//    """
//    Return the randao mix at a recent ``epoch``.
//    """
//    return state.randao_mixes[epoch % EPOCHS_PER_HISTORICAL_VECTOR]
func RandaoMix(state *pb.BeaconState, epoch uint64) ([]byte, error) {
	vectorLength := params.BeaconConfig().EpochsPerHistoricalVector
	i := epoch % vectorLength
	if i >= uint64(len(state.RandaoMixes)) {
		return nil, errors.Errorf("randao mix index %d out of bounds for vector of length %d", i, len(state.RandaoMixes))
	}
	return state.RandaoMixes[i], nil
}
