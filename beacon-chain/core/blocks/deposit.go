package blocks

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/epochctx"
	"github.com/prysmaticlabs/prysm/beacon-chain/core/helpers"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/prysmaticlabs/prysm/shared/bls"
	"github.com/prysmaticlabs/prysm/shared/params"
	"github.com/prysmaticlabs/prysm/shared/trieutil"

	ethpb "github.com/prysmaticlabs/ethereumapis/eth/v1alpha1"
)

// ProcessDeposits verifies and applies every deposit in the block body,
// in order, against the same state and EpochsContext (new validators
// must be visible to ec.ValidatorIndex/ValidatorPubkey immediately, since
// a later deposit or operation in the same block may reference them).
func ProcessDeposits(state *pb.BeaconState, ec *epochctx.EpochsContext, body *pb.BeaconBlockBody) (*pb.BeaconState, error) {
	if uint64(len(body.Deposits)) > params.BeaconConfig().MaxDeposits {
		return nil, ErrTooManyDeposits
	}
	for _, dep := range body.Deposits {
		var err error
		state, err = ProcessDeposit(state, ec, dep)
		if err != nil {
			return nil, err
		}
	}
	return state, nil
}

// ProcessDeposit verifies a single deposit's Merkle proof against the
// eth1 deposit root, advances the deposit index, and applies it: either
// topping up an already-registered validator's balance or, when its
// proof-of-possession signature checks out, registering a new
// validator. A deposit with a bad signature is not an error: the eth1
// contract already accepted the deposit, so the chain must still
// consume it (advance the index) even though the funds are not
// immediately credited to a validator slot.
//
// Spec pseudocode definition:
//  def process_deposit(state: BeaconState, deposit: Deposit) -> None:
//    assert is_valid_merkle_branch(
//        leaf=hash_tree_root(deposit.data),
//        branch=deposit.proof,
//        depth=DEPOSIT_CONTRACT_TREE_DEPTH + 1,
//        index=state.eth1_deposit_index,
//        root=state.eth1_data.deposit_root,
//    )
//    state.eth1_deposit_index += 1
//    apply_deposit(state, deposit.data.pubkey, deposit.data.withdrawal_credentials,
//                   deposit.data.amount, deposit.data.signature)
func ProcessDeposit(state *pb.BeaconState, ec *epochctx.EpochsContext, dep *ethpb.Deposit) (*pb.BeaconState, error) {
	leaf, err := ssz.HashTreeRoot(dep.Data)
	if err != nil {
		return nil, errors.Wrap(err, "could not hash deposit data")
	}
	if !trieutil.VerifyMerkleProof(state.Eth1Data.DepositRoot, leaf[:], int(state.Eth1DepositIndex), dep.Proof) {
		return nil, errors.New("deposit merkle branch did not verify against eth1 deposit root")
	}
	state.Eth1DepositIndex++

	var pubkeyFixed [48]byte
	copy(pubkeyFixed[:], dep.Data.PublicKey)
	if idx, ok := ec.ValidatorIndex(pubkeyFixed); ok {
		helpers.IncreaseBalance(state, idx, dep.Data.Amount)
		return state, nil
	}

	valid, err := verifyDepositSignature(dep.Data)
	if err != nil {
		return nil, errors.Wrap(err, "could not verify deposit signature")
	}
	if !valid {
		return state, nil
	}

	effectiveBalance := dep.Data.Amount - dep.Data.Amount%params.BeaconConfig().EffectiveBalanceIncrement
	if effectiveBalance > params.BeaconConfig().MaxEffectiveBalance {
		effectiveBalance = params.BeaconConfig().MaxEffectiveBalance
	}
	state.Validators = append(state.Validators, &ethpb.Validator{
		PublicKey:                  dep.Data.PublicKey,
		WithdrawalCredentials:      dep.Data.WithdrawalCredentials,
		ActivationEligibilityEpoch: params.BeaconConfig().FarFutureEpoch,
		ActivationEpoch:            params.BeaconConfig().FarFutureEpoch,
		ExitEpoch:                  params.BeaconConfig().FarFutureEpoch,
		WithdrawableEpoch:          params.BeaconConfig().FarFutureEpoch,
		EffectiveBalance:           effectiveBalance,
	})
	state.Balances = append(state.Balances, dep.Data.Amount)
	ec.SyncPubkeys(state)

	return state, nil
}

// verifyDepositSignature checks the deposit's proof-of-possession
// signature over a fork-agnostic domain: a deposit is valid across any
// fork, since it is only ever processed once, the first time its
// validator appears.
func verifyDepositSignature(data *ethpb.DepositData) (bool, error) {
	domain := bls.Domain(params.BeaconConfig().DomainDeposit, params.BeaconConfig().GenesisForkVersion)
	msg := &pb.DepositMessage{
		PublicKey:             data.PublicKey,
		WithdrawalCredentials: data.WithdrawalCredentials,
		Amount:                data.Amount,
	}
	signingRoot, err := helpers.ComputeSigningRoot(msg, domain)
	if err != nil {
		return false, errors.Wrap(err, "could not compute signing root")
	}
	pubkey, err := bls.PublicKeyFromBytes(data.PublicKey)
	if err != nil {
		return false, nil
	}
	sig, err := bls.SignatureFromBytes(data.Signature)
	if err != nil {
		return false, nil
	}
	return sig.Verify(pubkey, signingRoot[:]), nil
}
