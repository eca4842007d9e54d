package epoch

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epoch/precompute"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
)

// ProcessEpoch runs the full epoch-boundary transition for a state whose
// slot is the last slot of an epoch. Order is fixed and each stage only
// ever sees the output of the one before it: prepare (precompute.New),
// justify/finalize, rewards/penalties, registry updates, slashings,
// final updates. ec is rotated in place to reflect the new epoch's
// shuffling once registry updates have been applied.
func ProcessEpoch(state *pb.BeaconState, ec *epochctx.EpochsContext) (*pb.BeaconState, error) {
	start := time.Now()
	defer func() {
		epochTransitionSeconds.Observe(time.Since(start).Seconds())
	}()

	ep, err := precompute.New(state, ec)
	if err != nil {
		return nil, errors.Wrap(err, "could not prepare epoch process")
	}
	activeValidatorCount.Set(float64(ep.ActiveValidatorCount))

	state, err = ProcessJustificationAndFinalization(state, ep)
	if err != nil {
		return nil, errors.Wrap(err, "could not process justification")
	}

	state, err = ProcessRewardsAndPenalties(state, ep)
	if err != nil {
		return nil, errors.Wrap(err, "could not process rewards and penalties")
	}

	state, err = ProcessRegistryUpdates(state, ep)
	if err != nil {
		return nil, errors.Wrap(err, "could not process registry updates")
	}

	state, err = ProcessSlashings(state, ep)
	if err != nil {
		return nil, errors.Wrap(err, "could not process slashings")
	}

	state, err = ProcessFinalUpdates(state, ep.CurrentEpoch)
	if err != nil {
		return nil, errors.Wrap(err, "could not process final updates")
	}

	if err := ec.RotateEpochs(state); err != nil {
		return nil, errors.Wrap(err, "could not rotate epoch shuffling cache")
	}

	return state, nil
}
