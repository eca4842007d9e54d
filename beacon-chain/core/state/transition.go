// Package state implements the whole state transition function, which
// consists of the per-slot and per-epoch transitions, built on top of the
// block operation processors in core/blocks and the one-pass epoch
// summary in core/epoch.
package state

import (
	"bytes"
	"time"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	b "github.com/prysmaticlabs/prysm/beacon-chain/core/blocks"
	e "github.com/prysmaticlabs/prysm/beacon-chain/core/epoch"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bytesutil"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/prysmaticlabs/prysm/shared/trieutil"
	"github.com/sirupsen/logrus"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

var log = logrus.WithField("prefix", "core/state")

// TransitionConfig controls the signature verification and logging
// behavior of a state transition; production use enables both, tests
// and spec-vector replay often disable signature verification to run
// over pre-signed fixtures without a BLS keystore.
type TransitionConfig struct {
	VerifySignatures bool
	VerifyStateRoot  bool
	Logging          bool
}

// DefaultConfig turns every optional check on, the configuration a
// syncing node driving the canonical chain should use.
func DefaultConfig() *TransitionConfig {
	return &TransitionConfig{
		VerifySignatures: true,
		VerifyStateRoot:  true,
		Logging:          false,
	}
}

// ExecuteStateTransition advances state to block.Slot (processing any
// skipped slots along the way) and then applies block itself, returning
// the resulting post-state. ec is the caller-owned shuffling/proposer
// cache for state; it is mutated in place to stay valid for the
// returned state.
//
// Spec pseudocode definition:
//  def state_transition(state: BeaconState, block: BeaconBlock, validate_state_root: bool=False) -> BeaconState:
//    process_slots(state, block.slot)
//    process_block(state, block)
//    if validate_state_root:
//        assert block.state_root == hash_tree_root(state)
//    return state
func ExecuteStateTransition(state *pb.BeaconState, ec *epochctx.EpochsContext, block *pb.BeaconBlock, config *TransitionConfig) (*pb.BeaconState, error) {
	state, err := ProcessSlots(state, ec, block.Slot)
	if err != nil {
		return nil, errors.Wrap(err, "could not process slots")
	}

	blockStart := time.Now()
	state, err = b.ProcessBlock(state, ec, block, config.VerifySignatures)
	if err != nil {
		return nil, errors.Wrap(err, "could not process block")
	}
	blockTransitionSeconds.Observe(time.Since(blockStart).Seconds())

	if config.VerifyStateRoot {
		postStateRoot, err := ssz.HashTreeRoot(state)
		if err != nil {
			return nil, errors.Wrap(err, "could not hash tree root processed state")
		}
		if !bytes.Equal(postStateRoot[:], block.StateRoot) {
			return nil, errors.Errorf("validate state root failed, wanted: %#x, received: %#x",
				block.StateRoot, postStateRoot[:])
		}
	}

	if config.Logging {
		log.WithField("slot", state.Slot).Debug("Executed state transition")
	}
	return state, nil
}

// ProcessSlot runs the book-keeping that happens every slot, whether or
// not a block shows up for it: it snapshots the pre-transition state
// root into the circular state-roots buffer, backfills the previous
// block's state root into LatestBlockHeader the first time it's needed,
// and snapshots the resulting block root into the circular
// block-roots buffer.
//
// Spec pseudocode definition:
//  def process_slot(state: BeaconState) -> None:
//    previous_state_root = hash_tree_root(state)
//    state.state_roots[state.slot % SLOTS_PER_HISTORICAL_ROOT] = previous_state_root
//    if state.latest_block_header.state_root == Bytes32():
//        state.latest_block_header.state_root = previous_state_root
//    previous_block_root = hash_tree_root(state.latest_block_header)
//    state.block_roots[state.slot % SLOTS_PER_HISTORICAL_ROOT] = previous_block_root
func ProcessSlot(state *pb.BeaconState) (*pb.BeaconState, error) {
	prevStateRoot, err := ssz.HashTreeRoot(state)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash tree root state")
	}
	slotsPerHistoricalRoot := params.BeaconConfig().SlotsPerHistoricalRoot
	state.StateRoots[state.Slot%slotsPerHistoricalRoot] = prevStateRoot[:]

	zeroHash := params.BeaconConfig().ZeroHash
	if bytes.Equal(state.LatestBlockHeader.StateRoot, zeroHash[:]) {
		state.LatestBlockHeader.StateRoot = bytesutil.SafeCopyBytes(prevStateRoot[:])
	}

	prevBlockRoot, err := ssz.HashTreeRoot(state.LatestBlockHeader)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash tree root latest block header")
	}
	state.BlockRoots[state.Slot%slotsPerHistoricalRoot] = prevBlockRoot[:]
	return state, nil
}

// ProcessSlots advances state one slot at a time up to, but not
// including, slot, running the epoch-boundary transition and rotating
// ec's cached shuffling whenever a slot advance crosses into a new
// epoch. This is the only path through which an epoch transition runs:
// a block at the first slot of an epoch is still processed against the
// post-epoch-transition state, since ProcessSlots always catches the
// state up before ProcessBlock ever sees it.
//
// Spec pseudocode definition:
//  def process_slots(state: BeaconState, slot: Slot) -> None:
//    assert state.slot <= slot
//    while state.slot < slot:
//        process_slot(state)
//        if (state.slot + 1) % SLOTS_PER_EPOCH == 0:
//            process_epoch(state)
//        state.slot = Slot(state.slot + 1)
func ProcessSlots(state *pb.BeaconState, ec *epochctx.EpochsContext, slot uint64) (*pb.BeaconState, error) {
	if state.Slot > slot {
		return nil, errors.Errorf("expected state.slot %d <= slot %d", state.Slot, slot)
	}
	for state.Slot < slot {
		var err error
		state, err = ProcessSlot(state)
		if err != nil {
			return nil, errors.Wrap(err, "could not process slot")
		}
		if CanProcessEpoch(state) {
			state, err = e.ProcessEpoch(state, ec)
			if err != nil {
				return nil, errors.Wrap(err, "could not process epoch")
			}
		}
		state.Slot++
	}
	return state, nil
}

// CanProcessEpoch reports whether state.Slot is the last slot of its
// epoch, the one point in the slot clock at which the epoch-boundary
// transition runs.
//
// Spec pseudocode definition:
//  If (state.slot + 1) % SLOTS_PER_EPOCH == 0:
func CanProcessEpoch(state *pb.BeaconState) bool {
	return (state.Slot+1)%params.BeaconConfig().SlotsPerEpoch == 0
}

// GenesisBeaconState builds the state the chain starts from out of the
// eth1 deposit contract's full deposit log: every deposit is replayed
// through ProcessDeposit against a growing deposit trie (there is no
// prior eth1 vote to establish state.Eth1Data.DepositRoot incrementally,
// the way a running chain does), effective balances are leveled once at
// the end rather than waiting for the first ProcessFinalUpdates, and any
// validator that deposited the full maximum effective balance activates
// immediately rather than queueing behind the churn limit.
//
// Spec pseudocode definition:
//  def initialize_beacon_state_from_eth1(eth1_block_hash: Hash32,
//                                       eth1_timestamp: uint64,
//                                       deposits: Sequence[Deposit]) -> BeaconState:
//    fork = Fork(previous_version=GENESIS_FORK_VERSION, current_version=GENESIS_FORK_VERSION, epoch=GENESIS_EPOCH)
//    state = BeaconState(
//        genesis_time=eth1_timestamp + GENESIS_DELAY,
//        fork=fork,
//        eth1_data=Eth1Data(block_hash=eth1_block_hash, deposit_count=len(deposits)),
//        latest_block_header=BeaconBlockHeader(body_root=hash_tree_root(BeaconBlockBody())),
//        randao_mixes=[eth1_block_hash] * EPOCHS_PER_HISTORICAL_VECTOR,
//    )
//    leaves = list(map(lambda deposit: deposit.data, deposits))
//    for index, deposit in enumerate(deposits):
//        deposit_data_list = List[DepositData, 2**DEPOSIT_CONTRACT_TREE_DEPTH](*leaves[:index + 1])
//        state.eth1_data.deposit_root = hash_tree_root(deposit_data_list)
//        process_deposit(state, deposit)
//    for index, validator in enumerate(state.validators):
//        balance = state.balances[index]
//        validator.effective_balance = min(balance - balance % EFFECTIVE_BALANCE_INCREMENT, MAX_EFFECTIVE_BALANCE)
//        if validator.effective_balance == MAX_EFFECTIVE_BALANCE:
//            validator.activation_eligibility_epoch = GENESIS_EPOCH
//            validator.activation_epoch = GENESIS_EPOCH
//    return state
func GenesisBeaconState(genesisTime uint64, eth1BlockHash []byte, deposits []*ethpb.Deposit) (*pb.BeaconState, *epochctx.EpochsContext, error) {
	emptyBody := &pb.BeaconBlockBody{
		RandaoReveal: make([]byte, 96),
		Eth1Data:     &pb.Eth1Data{DepositRoot: make([]byte, 32), BlockHash: make([]byte, 32)},
		Graffiti:     make([]byte, 32),
	}
	bodyRoot, err := ssz.HashTreeRoot(emptyBody)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not hash tree root genesis block body")
	}

	randaoMixes := make([][]byte, params.BeaconConfig().EpochsPerHistoricalVector)
	for i := range randaoMixes {
		randaoMixes[i] = bytesutil.SafeCopyBytes(eth1BlockHash)
	}
	blockRoots := make([][]byte, params.BeaconConfig().SlotsPerHistoricalRoot)
	stateRoots := make([][]byte, params.BeaconConfig().SlotsPerHistoricalRoot)
	for i := range blockRoots {
		blockRoots[i] = make([]byte, 32)
		stateRoots[i] = make([]byte, 32)
	}

	state := &pb.BeaconState{
		GenesisTime: genesisTime,
		Slot:        0,
		Fork: &pb.Fork{
			PreviousVersion: params.BeaconConfig().GenesisForkVersion,
			CurrentVersion:  params.BeaconConfig().GenesisForkVersion,
			Epoch:           0,
		},
		LatestBlockHeader: &pb.BeaconBlockHeader{
			BodyRoot:   bodyRoot[:],
			ParentRoot: make([]byte, 32),
			StateRoot:  make([]byte, 32),
		},
		BlockRoots:                  blockRoots,
		StateRoots:                  stateRoots,
		HistoricalRoots:             make([][]byte, 0),
		Eth1Data:                    &pb.Eth1Data{BlockHash: eth1BlockHash, DepositRoot: make([]byte, 32), DepositCount: uint64(len(deposits))},
		Eth1DataVotes:               make([]*pb.Eth1Data, 0),
		Eth1DepositIndex:            0,
		Validators:                  make([]*ethpb.Validator, 0),
		Balances:                    make([]uint64, 0),
		RandaoMixes:                 randaoMixes,
		Slashings:                   make([]uint64, params.BeaconConfig().EpochsPerSlashingsVector),
		PreviousEpochAttestations:   make([]*pb.PendingAttestation, 0),
		CurrentEpochAttestations:    make([]*pb.PendingAttestation, 0),
		JustificationBits:           []byte{0},
		PreviousJustifiedCheckpoint: &ethpb.Checkpoint{Root: make([]byte, 32)},
		CurrentJustifiedCheckpoint:  &ethpb.Checkpoint{Root: make([]byte, 32)},
		FinalizedCheckpoint:         &ethpb.Checkpoint{Root: make([]byte, 32)},
	}

	leaves := make([][]byte, 0, len(deposits))
	// Deposits only need the pubkey index; the shufflings are loaded once
	// the registry has been filled.
	ec := &epochctx.EpochsContext{}
	for _, dep := range deposits {
		leaf, err := ssz.HashTreeRoot(dep.Data)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not hash tree root deposit data")
		}
		leaves = append(leaves, leaf[:])

		trie, err := trieutil.GenerateTrieFromItems(leaves, int(params.BeaconConfig().DepositContractTreeDepth))
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not generate deposit trie")
		}
		root := trie.Root()
		proof, err := trie.MerkleProof(len(leaves) - 1)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not generate deposit merkle proof")
		}
		state.Eth1Data.DepositRoot = root[:]

		depositWithProof := &ethpb.Deposit{Data: dep.Data, Proof: proof}
		state, err = b.ProcessDeposit(state, ec, depositWithProof)
		if err != nil {
			return nil, nil, errors.Wrap(err, "could not process genesis deposit")
		}
	}

	for i, v := range state.Validators {
		balance := state.Balances[i]
		effectiveBalance := balance - balance%params.BeaconConfig().EffectiveBalanceIncrement
		if effectiveBalance > params.BeaconConfig().MaxEffectiveBalance {
			effectiveBalance = params.BeaconConfig().MaxEffectiveBalance
		}
		v.EffectiveBalance = effectiveBalance
		if v.EffectiveBalance == params.BeaconConfig().MaxEffectiveBalance {
			v.ActivationEligibilityEpoch = 0
			v.ActivationEpoch = 0
		}
	}

	ec, err = epochctx.LoadState(state)
	if err != nil {
		return nil, nil, errors.Wrap(err, "could not load epoch context for genesis state")
	}
	return state, ec, nil
}
