package blocks

import (
	"testing"

	"github.com/prysmaticlabs/go-ssz"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
	"github.com/stretchr/testify/require"
)

func TestProcessOperations_RejectsDepositCountMismatch(t *testing.T) {
	state, ec := freshTestState(t, 8)
	state.Eth1Data.DepositCount = 3
	body := &pb.BeaconBlockBody{}
	_, err := ProcessOperations(state, ec, body, false)
	require.ErrorContains(t, "expected number of deposits", err)
}

func TestProcessOperations_EmptyBodyIsANoop(t *testing.T) {
	state, ec := freshTestState(t, 8)
	body := &pb.BeaconBlockBody{}
	newState, err := ProcessOperations(state, ec, body, false)
	require.NoError(t, err)
	require.Equal(t, 8, len(newState.Validators))
}

func TestProcessBlock_RunsFullPipeline(t *testing.T) {
	state, ec := freshTestState(t, 8)
	state.Slot = 1
	proposerIndex, err := ec.GetBeaconProposer(1)
	require.NoError(t, err)
	parentRoot, err := ssz.HashTreeRoot(state.LatestBlockHeader)
	require.NoError(t, err)
	body := &pb.BeaconBlockBody{
		RandaoReveal: make([]byte, 96),
		Eth1Data:     &pb.Eth1Data{DepositRoot: make([]byte, 32), BlockHash: make([]byte, 32)},
		Graffiti:     make([]byte, 32),
	}
	block := &pb.BeaconBlock{
		Slot:          1,
		ProposerIndex: proposerIndex,
		ParentRoot:    parentRoot[:],
		Body:          body,
	}
	newState, err := ProcessBlock(state, ec, block, false)
	require.NoError(t, err)
	require.Equal(t, uint64(1), newState.LatestBlockHeader.Slot)
	require.Equal(t, 1, len(newState.Eth1DataVotes))
}
