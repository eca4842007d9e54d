package params

// BeaconChainConfig contains constant genesis values of the beacon chain as defined in the eth2
// phase 0 spec. This config is used for all state transition functions.
type BeaconChainConfig struct {
	// Constants (non-configurable).
	FarFutureEpoch           uint64 // FarFutureEpoch represents a epoch extremely far away in the future used as the default penalization epoch for validators.
	BaseRewardsPerEpoch      uint64 // BaseRewardsPerEpoch is used to calculate the per epoch rewards.
	DepositContractTreeDepth uint64 // DepositContractTreeDepth is the max amount of leaves defined for the deposit contract merkle tree.
	GenesisEpoch             uint64 // GenesisEpoch is used to represent the first epoch in the beacon chain.

	// Misc constants.
	TargetCommitteeSize            uint64 // TargetCommitteeSize is the number of validators in a committee when the chain is healthy.
	MaxValidatorsPerCommittee       uint64 // MaxValidatorsPerCommittee defines the upper bound of validators in a single committee.
	MaxCommitteesPerSlot           uint64 // MaxCommitteesPerSlot defines the max amount of committee in a single slot.
	MinPerEpochChurnLimit          uint64 // MinPerEpochChurnLimit is the minimum amount of validators that can enter or exit per epoch.
	ChurnLimitQuotient             uint64 // ChurnLimitQuotient is used to determine the limit of how many validators can be rotated per epoch.
	ShuffleRoundCount              uint64 // ShuffleRoundCount is used for shuffling validators during committee assignment.
	MinGenesisActiveValidatorCount uint64 // MinGenesisActiveValidatorCount defines how many validator deposits needed to kick off beacon chain genesis.
	MinGenesisTime                 uint64 // MinGenesisTime is the time that needed to pass before kicking off beacon chain with the minimum genesis active validator count.
	HysteresisQuotient             uint64 // HysteresisQuotient defines the hysteresis quotient for effective balance calculations.
	HysteresisDownwardMultiplier   uint64 // HysteresisDownwardMultiplier defines the hysteresis downward multiplier for effective balance calculations.
	HysteresisUpwardMultiplier     uint64 // HysteresisUpwardMultiplier defines the hysteresis upward multiplier for effective balance calculations.

	// Gwei value constants.
	MinDepositAmount          uint64 // MinDepositAmount is the minimum amount of Gwei a validator deposit can be.
	MaxEffectiveBalance       uint64 // MaxEffectiveBalance is the maximal amount of Gwei that is effective for staking.
	EjectionBalance           uint64 // EjectionBalance is the minimal GWei a validator needs to have before ejected.
	EffectiveBalanceIncrement uint64 // EffectiveBalanceIncrement is used for converting the high balance into the low balance for a validator.

	// Initial value constants.
	ZeroHash            [32]byte // ZeroHash is used to represent a zeroed out 32 byte array.
	EmptySignature      [96]byte // EmptySignature is used to represent a zeroed out BLS signature.
	BLSWithdrawalPrefixByte byte // BLSWithdrawalPrefixByte is used for BLS withdrawal credentials.

	// Time parameters constants.
	MinAttestationInclusionDelay     uint64 // MinAttestationInclusionDelay defines how many slots validator has to wait to include attestation for beacon block.
	SecondsPerSlot                   uint64 // SecondsPerSlot is how many seconds are in a single slot.
	SlotsPerEpoch                    uint64 // SlotsPerEpoch is the number of slots in an epoch.
	MinSeedLookahead                 uint64 // MinSeedLookahead is the duration of randao look ahead seed.
	MaxSeedLookahead                 uint64 // MaxSeedLookahead is the duration a validator has to wait for entry and exit in epoch.
	EpochsPerEth1VotingPeriod        uint64 // EpochsPerEth1VotingPeriod defines how often the merkle root of deposit receipts get updated in beacon node on per epoch basis.
	SlotsPerHistoricalRoot           uint64 // SlotsPerHistoricalRoot defines how often the historical root is saved.
	MinValidatorWithdrawabilityDelay uint64 // MinValidatorWithdrawabilityDelay is the shortest amount of time before a validator can withdraw.
	ShardCommitteePeriod             uint64 // ShardCommitteePeriod is the minimum amount of epochs a validator must participate before exiting.
	MinEpochsToInactivityPenalty     uint64 // MinEpochsToInactivityPenalty defines the minimum amount of epochs since finality to begin penalizing inactivity.

	// State vector lengths.
	EpochsPerHistoricalVector uint64 // EpochsPerHistoricalVector defines the number of epochs the randao mixes buffer covers.
	EpochsPerSlashingsVector  uint64 // EpochsPerSlashingsVector defines the number of epochs the slashings buffer covers.
	HistoricalRootsLimit      uint64 // HistoricalRootsLimit defines the max number of historical root entries in a beacon state.
	ValidatorRegistryLimit    uint64 // ValidatorRegistryLimit defines the upper bound of validators that can participate.

	// Reward and penalty quotients constants.
	BaseRewardFactor               uint64 // BaseRewardFactor is used to calculate validator per-slot reward.
	WhistleBlowerRewardQuotient    uint64 // WhistleBlowerRewardQuotient is used to calculate whistle blower reward.
	ProposerRewardQuotient         uint64 // ProposerRewardQuotient is used to calculate the reward for proposers.
	InactivityPenaltyQuotient      uint64 // InactivityPenaltyQuotient is used to calculate inactivity leak penalty.
	MinSlashingPenaltyQuotient     uint64 // MinSlashingPenaltyQuotient is used to calculate the minimum penalty to prevent DoS attacks.

	// Max operations per block constants.
	MaxProposerSlashings uint64 // MaxProposerSlashings defines the maximum number of slashings of proposers possible in a block.
	MaxAttesterSlashings uint64 // MaxAttesterSlashings defines the maximum number of casper FFG slashings possible in a block.
	MaxAttestations      uint64 // MaxAttestations defines the maximum allowed attestations in a beacon block.
	MaxDeposits          uint64 // MaxDeposits defines the maximum number of validator deposits in a block.
	MaxVoluntaryExits    uint64 // MaxVoluntaryExits defines the maximum number of validator exits in a block.

	// BLS domain values.
	DomainBeaconProposer [4]byte // DomainBeaconProposer defines the BLS signature domain for beacon proposal verification.
	DomainBeaconAttester [4]byte // DomainBeaconAttester defines the BLS signature domain for attestation verification.
	DomainRandao         [4]byte // DomainRandao defines the BLS signature domain for randao verification.
	DomainDeposit        [4]byte // DomainDeposit defines the BLS signature domain for deposit verification.
	DomainVoluntaryExit  [4]byte // DomainVoluntaryExit defines the BLS signature domain for exit verification.

	// Fork-related values.
	GenesisForkVersion []byte // GenesisForkVersion is used to track fork version between state transitions.

	// Prysm constants.
	RandBytes                     uint64 // RandBytes is the number of bytes used as entropy to shuffle validators.
	MaxRandomByte                 uint64 // MaxRandomByte is the max uint8 value.
	NetworkName                   string // NetworkName for the beacon network, used for logging/metrics only.
	SecondsPerETH1Block           uint64 // SecondsPerETH1Block is the approximate time for a single eth1 block to be produced.
}

var beaconConfig = MainnetConfig()

// BeaconConfig retrieves the beacon chain config used for state transition.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig overrides the beacon chain configuration. The provided config should
// be a complete config generated by Copy()-ing an existing one and mutating it, never a bare
// zero-valued struct.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}

// MainnetConfig returns the configuration to be used for the main network.
func MainnetConfig() *BeaconChainConfig {
	return &BeaconChainConfig{
		FarFutureEpoch:           1<<64 - 1,
		BaseRewardsPerEpoch:      4,
		DepositContractTreeDepth: 32,
		GenesisEpoch:             0,

		TargetCommitteeSize:            128,
		MaxValidatorsPerCommittee:      2048,
		MaxCommitteesPerSlot:           64,
		MinPerEpochChurnLimit:          4,
		ChurnLimitQuotient:             1 << 16,
		ShuffleRoundCount:              90,
		MinGenesisActiveValidatorCount: 16384,
		MinGenesisTime:                 1606824000,
		HysteresisQuotient:             4,
		HysteresisDownwardMultiplier:   1,
		HysteresisUpwardMultiplier:     5,

		MinDepositAmount:          1 * 1e9,
		MaxEffectiveBalance:       32 * 1e9,
		EjectionBalance:           16 * 1e9,
		EffectiveBalanceIncrement: 1 * 1e9,

		ZeroHash:                [32]byte{},
		EmptySignature:          [96]byte{},
		BLSWithdrawalPrefixByte: byte(0),

		MinAttestationInclusionDelay:     1,
		SecondsPerSlot:                   12,
		SlotsPerEpoch:                    32,
		MinSeedLookahead:                 1,
		MaxSeedLookahead:                 4,
		EpochsPerEth1VotingPeriod:        64,
		SlotsPerHistoricalRoot:           8192,
		MinValidatorWithdrawabilityDelay: 256,
		ShardCommitteePeriod:             256,
		MinEpochsToInactivityPenalty:     4,

		EpochsPerHistoricalVector: 65536,
		EpochsPerSlashingsVector:  8192,
		HistoricalRootsLimit:      16777216,
		ValidatorRegistryLimit:    1099511627776,

		BaseRewardFactor:            64,
		WhistleBlowerRewardQuotient: 512,
		ProposerRewardQuotient:      8,
		InactivityPenaltyQuotient:   1 << 26,
		MinSlashingPenaltyQuotient:  128,

		MaxProposerSlashings: 16,
		MaxAttesterSlashings: 2,
		MaxAttestations:      128,
		MaxDeposits:          16,
		MaxVoluntaryExits:    16,

		DomainBeaconProposer: [4]byte{0, 0, 0, 0},
		DomainBeaconAttester: [4]byte{1, 0, 0, 0},
		DomainRandao:         [4]byte{2, 0, 0, 0},
		DomainDeposit:        [4]byte{3, 0, 0, 0},
		DomainVoluntaryExit:  [4]byte{4, 0, 0, 0},

		GenesisForkVersion: []byte{0, 0, 0, 0},

		RandBytes:            3,
		MaxRandomByte:         1<<8 - 1,
		NetworkName:           "Mainnet",
		SecondsPerETH1Block:   14,
	}
}

// Copy returns a copy of the config object.
func (b *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *b
	genesisForkVersion := make([]byte, len(b.GenesisForkVersion))
	copy(genesisForkVersion, b.GenesisForkVersion)
	config.GenesisForkVersion = genesisForkVersion
	return &config
}
