// Package hashutil wraps the SHA-256 variant of hash_eth2, the only hash function the
// consensus layer relies on, backed by an AVX2/SHA-NI accelerated implementation where the
// host supports it.
package hashutil

import (
	"github.com/minio/sha256-simd"
)

// Hash defines a function that returns the SHA-256 hash of the data passed in.
//
// Spec pseudocode definition:
//   def hash(data: bytes) -> Bytes32:
//       return Bytes32(sha256(data))
func Hash(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// CustomSHA256Hasher returns a hash closure reused across many calls, avoiding the allocation
// sha256.Sum256 performs per call. Used by Merkleization routines that hash many leaves.
func CustomSHA256Hasher() func([]byte) [32]byte {
	hasher := sha256.New()
	return func(data []byte) [32]byte {
		hasher.Reset()
		var b [32]byte
		// #nosec G104 -- hash.Hash.Write never errors, see hash.Hash doc.
		hasher.Write(data)
		hasher.Sum(b[:0])
		return b
	}
}

// MerkleRoot computes the root of a simple binary Merkle tree over a power-of-two length set
// of 32-byte leaves by repeated pairwise hashing.
func MerkleRoot(values [][32]byte) [32]byte {
	if len(values) == 0 {
		return [32]byte{}
	}
	layer := values
	for len(layer) > 1 {
		next := make([][32]byte, 0, len(layer)/2)
		for i := 0; i < len(layer); i += 2 {
			next = append(next, Hash(append(layer[i][:], layer[i+1][:]...)))
		}
		layer = next
	}
	return layer[0]
}
