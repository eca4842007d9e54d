package helpers

import (
	"io/ioutil"
	"testing"

	"github.com/ghodss/yaml"
	"github.com/stretchr/testify/require"
)

type shuffleVector struct {
	Seed     []byte   `json:"seed"`
	Count    uint64   `json:"count"`
	Shuffled []uint64 `json:"shuffled"`
}

type shuffleVectors struct {
	Vectors []shuffleVector `json:"vectors"`
}

// TestShuffleList_SpecVectors loads the fixed shuffle vectors the same way
// a spec-vector golden test does: constants and expected output live in a
// YAML fixture, not in the test source, so a new vector can be dropped in
// without touching Go code.
func TestShuffleList_SpecVectors(t *testing.T) {
	raw, err := ioutil.ReadFile("testdata/shuffle_vectors.yaml")
	require.NoError(t, err)

	vectors := &shuffleVectors{}
	require.NoError(t, yaml.Unmarshal(raw, vectors))
	require.Equal(t, false, len(vectors.Vectors) == 0)

	for _, v := range vectors.Vectors {
		var seed [32]byte
		copy(seed[:], v.Seed)

		list := make([]uint64, v.Count)
		for i := range list {
			list[i] = uint64(i)
		}

		shuffled, err := ShuffleList(list, seed)
		require.NoError(t, err)
		require.Equal(t, v.Shuffled, shuffled)
	}
}
