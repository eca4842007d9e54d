package helpers

import (
	"encoding/binary"

	"github.com/pkg/errors"
	"github.com/prysmaticlabs/prysm/shared/hashutil"
	"github.com/prysmaticlabs/prysm/shared/params"
)

// maxShuffleListSize caps the index count ShuffleList/UnshuffleList will
// process, guarding against pathological allocation from a corrupt
// validator count. Tests shrink it to exercise the bounds check cheaply.
var maxShuffleListSize uint64 = 1 << 40

// ShuffleList returns list shuffled forward (round 0..count-1) under seed,
// using the swap-or-not algorithm (eth2 spec compute_shuffled_index,
// batched over a whole list for speed).
func ShuffleList(list []uint64, seed [32]byte) ([]uint64, error) {
	return shuffleList(list, seed, true)
}

// UnshuffleList reverses ShuffleList: given a shuffled list and its seed,
// it returns the original ordering by running the swap-or-not rounds
// backward (round count-1..0).
func UnshuffleList(list []uint64, seed [32]byte) ([]uint64, error) {
	return shuffleList(list, seed, false)
}

func shuffleList(input []uint64, seed [32]byte, forward bool) ([]uint64, error) {
	if uint64(len(input)) > maxShuffleListSize {
		return nil, errors.Errorf("list size %d exceeds max shuffle list size %d", len(input), maxShuffleListSize)
	}
	if len(input) <= 1 {
		return input, nil
	}

	rounds := int(params.BeaconConfig().ShuffleRoundCount)
	if rounds == 0 {
		return input, nil
	}

	listSize := uint64(len(input))
	buf := make([]byte, 32+1+4)
	copy(buf[:32], seed[:])

	round := 0
	if !forward {
		round = rounds - 1
	}
	for {
		buf[32] = byte(round)
		hashedSeedRound := hashutil.Hash(buf[:32+1])
		pivot := bytesToUint64(hashedSeedRound[:8]) % listSize

		mirror := (pivot + 1) >> 1
		binary.LittleEndian.PutUint32(buf[33:], uint32(pivot>>8))
		source := hashutil.Hash(buf)
		byteV := source[(pivot&0xff)>>3]
		for i, j := uint64(0), pivot; i < mirror; i, j = i+1, j-1 {
			if j&0xff == 0xff || j == pivot {
				binary.LittleEndian.PutUint32(buf[33:], uint32(j>>8))
				source = hashutil.Hash(buf)
			}
			byteV = source[(j&0xff)>>3]
			bitV := (byteV >> (j & 0x07)) & 0x01

			if bitV == 1 {
				input[i], input[j] = input[j], input[i]
			}
		}

		mirror = (pivot + listSize + 1) >> 1
		end := listSize - 1
		binary.LittleEndian.PutUint32(buf[33:], uint32(end>>8))
		source = hashutil.Hash(buf)
		byteV = source[(end&0xff)>>3]
		for i, j := pivot+1, end; i < mirror; i, j = i+1, j-1 {
			if j&0xff == 0xff || j == end {
				binary.LittleEndian.PutUint32(buf[33:], uint32(j>>8))
				source = hashutil.Hash(buf)
			}
			byteV = source[(j&0xff)>>3]
			bitV := (byteV >> (j & 0x07)) & 0x01

			if bitV == 1 {
				input[i], input[j] = input[j], input[i]
			}
		}

		if forward {
			round++
			if round == rounds {
				break
			}
		} else {
			if round == 0 {
				break
			}
			round--
		}
	}
	return input, nil
}

// ComputeShuffledIndex returns the shuffled position of index within a list
// of indexCount entries under seed, for a single index. It must agree
// bit-for-bit with ShuffleList/UnshuffleList run over the whole range.
// dir true shuffles forward (round 0..count-1), false applies the inverse
// (round count-1..0), matching the whole-list semantics above.
func ComputeShuffledIndex(index, indexCount uint64, seed [32]byte, dir bool) (uint64, error) {
	if index >= indexCount {
		return 0, errors.Errorf("index %d out of bounds for count %d", index, indexCount)
	}
	if indexCount == 0 {
		return 0, errors.New("index count must be greater than 0")
	}

	rounds := int(params.BeaconConfig().ShuffleRoundCount)
	if rounds == 0 {
		return index, nil
	}

	buf := make([]byte, 32+1+4)
	copy(buf[:32], seed[:])

	round := 0
	if !dir {
		round = rounds - 1
	}
	for {
		buf[32] = byte(round)
		hashedSeedRound := hashutil.Hash(buf[:32+1])
		pivot := bytesToUint64(hashedSeedRound[:8]) % indexCount

		flip := (pivot + indexCount - index) % indexCount
		position := index
		if flip > position {
			position = flip
		}

		binary.LittleEndian.PutUint32(buf[33:], uint32(position>>8))
		source := hashutil.Hash(buf)
		byteV := source[(position&0xff)>>3]
		bitV := (byteV >> (position & 0x07)) & 0x01

		if bitV == 1 {
			index = flip
		}

		if dir {
			round++
			if round == rounds {
				break
			}
		} else {
			if round == 0 {
				break
			}
			round--
		}
	}
	return index, nil
}

func bytesToUint64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}
