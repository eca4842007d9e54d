// Package spectest resolves named configuration presets used by spec-vector driven tests.
package spectest

import (
	"fmt"

	"github.com/prysmaticlabs/prysm/shared/params"
)

// SetConfig overrides the global beacon chain config with the named preset, "minimal" or
// "mainnet". Spec-vector tests call this before loading their fixtures so that constants such
// as SlotsPerEpoch match the vectors they were generated from.
func SetConfig(name string) error {
	switch name {
	case "minimal":
		params.OverrideBeaconConfig(minimalSpecConfig())
	case "mainnet":
		params.OverrideBeaconConfig(params.MainnetConfig())
	default:
		return fmt.Errorf("no config found for %q", name)
	}
	return nil
}

// minimalSpecConfig returns the scaled-down preset used by the reference test suite, trading
// security margins for small enough numbers that fixtures can enumerate edge cases directly.
func minimalSpecConfig() *params.BeaconChainConfig {
	minCfg := params.MainnetConfig().Copy()
	minCfg.SlotsPerEpoch = 8
	minCfg.TargetCommitteeSize = 4
	minCfg.MaxCommitteesPerSlot = 4
	minCfg.ShuffleRoundCount = 10
	minCfg.MinGenesisActiveValidatorCount = 64
	minCfg.EpochsPerHistoricalVector = 64
	minCfg.EpochsPerSlashingsVector = 64
	minCfg.SlotsPerHistoricalRoot = 64
	minCfg.EpochsPerEth1VotingPeriod = 4
	minCfg.ShardCommitteePeriod = 64
	return minCfg
}
