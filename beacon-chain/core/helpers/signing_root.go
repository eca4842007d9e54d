package helpers

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-ssz"
	pb "github.com/prysmaticlabs/prysm/proto/beacon/p2p/v1"
)

// ComputeSigningRoot binds an object's hash tree root to domain, so a
// signature can never be replayed against the same object under a
// different domain (a different fork, or a different message type that
// happens to hash-tree-root the same).
//
// Spec pseudocode definition:
//  def compute_signing_root(ssz_object: SSZObject, domain: Domain) -> Root:
//    """
//    Return the signing root for the corresponding signing data.
//    """
//    domain_wrapped_object = SigningData(
//        object_root=hash_tree_root(ssz_object),
//        domain=domain,
//    )
//    return hash_tree_root(domain_wrapped_object)
func ComputeSigningRoot(object interface{}, domain []byte) ([32]byte, error) {
	objectRoot, err := ssz.HashTreeRoot(object)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not hash tree root object")
	}
	container := &pb.SigningData{
		ObjectRoot: objectRoot[:],
		Domain:     domain,
	}
	root, err := ssz.HashTreeRoot(container)
	if err != nil {
		return [32]byte{}, errors.Wrap(err, "could not hash tree root signing data")
	}
	return root, nil
}
