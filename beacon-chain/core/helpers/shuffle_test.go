package helpers

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestShuffleList_CanonicalVectors(t *testing.T) {
	var list1, list2 []uint64
	seed1 := [32]byte{1, 128, 12}
	seed2 := [32]byte{2, 128, 12}
	for i := uint64(0); i < 10; i++ {
		list1 = append(list1, i)
		list2 = append(list2, i)
	}

	shuffled1, err := ShuffleList(list1, seed1)
	require.NoError(t, err)
	shuffled2, err := ShuffleList(list2, seed2)
	require.NoError(t, err)

	require.Equal(t, false, reflect.DeepEqual(shuffled1, shuffled2))
	require.Equal(t, []uint64{0, 7, 8, 6, 3, 9, 4, 5, 2, 1}, shuffled1)
	require.Equal(t, []uint64{0, 5, 2, 1, 6, 8, 7, 3, 4, 9}, shuffled2)
}

func TestShuffleList_RejectsOversizedList(t *testing.T) {
	old := maxShuffleListSize
	maxShuffleListSize = 20
	defer func() { maxShuffleListSize = old }()

	list := make([]uint64, 21)
	_, err := ShuffleList(list, [32]byte{123, 125})
	require.ErrorContains(t, "exceeds max shuffle list size", err)
}

func TestShuffleUnshuffleList_AreMutualInverses(t *testing.T) {
	seed := [32]byte{7, 9, 200}
	original := make([]uint64, 128)
	for i := range original {
		original[i] = uint64(i)
	}
	list := make([]uint64, len(original))
	copy(list, original)

	shuffled, err := ShuffleList(list, seed)
	require.NoError(t, err)
	require.Equal(t, false, reflect.DeepEqual(original, shuffled))

	roundTripped, err := UnshuffleList(shuffled, seed)
	require.NoError(t, err)
	require.Equal(t, original, roundTripped)
}

func TestComputeShuffledIndex_AgreesWithShuffleList(t *testing.T) {
	seed := [32]byte{11, 22, 33}
	count := uint64(100)
	list := make([]uint64, count)
	for i := range list {
		list[i] = uint64(i)
	}
	shuffled, err := ShuffleList(list, seed)
	require.NoError(t, err)

	for i := uint64(0); i < count; i++ {
		got, err := ComputeShuffledIndex(i, count, seed, true)
		require.NoError(t, err)
		require.Equal(t, shuffled[got], i)
	}
}

func TestComputeShuffledIndex_ForwardAndInverseRoundTrip(t *testing.T) {
	seed := [32]byte{44, 55}
	count := uint64(50)
	for i := uint64(0); i < count; i++ {
		forward, err := ComputeShuffledIndex(i, count, seed, true)
		require.NoError(t, err)
		back, err := ComputeShuffledIndex(forward, count, seed, false)
		require.NoError(t, err)
		require.Equal(t, i, back)
	}
}

func TestComputeShuffledIndex_RejectsOutOfBounds(t *testing.T) {
	_, err := ComputeShuffledIndex(10, 10, [32]byte{1}, true)
	require.ErrorContains(t, "out of bounds", err)
}
