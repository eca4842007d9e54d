// Package helpers contains helper functions outlined in ETH2.0 spec beacon chain spec
package helpers

import (
	"github.com/prysmaticlabs/go-bitfield"
)

// AttestingIndices returns the attesting participants indices from a committee for a given
// bitfield, where each bit in the bitfield corresponds to a member of the committee at that
// position. Committee lookups themselves go through epochctx.EpochsContext, the sole source
// of shuffling state; this only maps a committee slice plus a bitfield into the indices that
// actually attested.
//
// Spec pseudocode definition:
//  def get_attesting_indices(state: BeaconState, data: AttestationData, bits: Bitlist) -> Set[ValidatorIndex]:
//    """
//    Return the set of attesting indices corresponding to ``data`` and ``bits``.
//    """
//    committee = get_beacon_committee(state, data.slot, data.index)
//    return set(index for i, index in enumerate(committee) if bits[i])
func AttestingIndices(bf bitfield.Bitfield, committee []uint64) ([]uint64, error) {
	indices := make([]uint64, 0, len(committee))
	indicesSet := make(map[uint64]bool)
	for i, idx := range committee {
		if !indicesSet[idx] {
			if bf.BitAt(uint64(i)) {
				indices = append(indices, idx)
			}
		}
		indicesSet[idx] = true
	}
	return indices, nil
}
