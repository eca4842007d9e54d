// Package bls wraps the herumi BLS12-381 binding used to verify every
// signed object the core state transition touches: block proposals,
// RANDAO reveals, attestations, slashings and voluntary exits. The core
// never talks to herumi directly so that signature verification can be
// swapped or disabled (VerifySignatures=false) without touching the
// transition logic itself.
package bls

import (
	"fmt"
	"sync"

	"github.com/herumi/bls-eth-go-binary/bls"
	"github.com/pkg/errors"
)

var initOnce sync.Once

func ensureInit() {
	initOnce.Do(func() {
		if err := bls.Init(bls.BLS12_381); err != nil {
			panic(fmt.Sprintf("bls: failed to initialize curve: %v", err))
		}
		if err := bls.SetETHmode(bls.EthModeDraft07); err != nil {
			panic(fmt.Sprintf("bls: failed to set eth2 mode: %v", err))
		}
	})
}

// PublicKey is a group G1 BLS public key.
type PublicKey struct {
	p bls.PublicKey
}

// Signature is a group G2 BLS signature.
type Signature struct {
	s bls.Sign
}

// PublicKeyFromBytes deserializes a compressed 48-byte public key.
func PublicKeyFromBytes(b []byte) (*PublicKey, error) {
	ensureInit()
	if len(b) != 48 {
		return nil, errors.Errorf("public key must be 48 bytes, got %d", len(b))
	}
	pub := &PublicKey{}
	if err := pub.p.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize public key")
	}
	return pub, nil
}

// SignatureFromBytes deserializes a compressed 96-byte signature.
func SignatureFromBytes(b []byte) (*Signature, error) {
	ensureInit()
	if len(b) != 96 {
		return nil, errors.Errorf("signature must be 96 bytes, got %d", len(b))
	}
	sig := &Signature{}
	if err := sig.s.Deserialize(b); err != nil {
		return nil, errors.Wrap(err, "could not deserialize signature")
	}
	return sig, nil
}

// Marshal returns the compressed byte representation of the signature.
func (s *Signature) Marshal() []byte {
	return s.s.Serialize()
}

// Verify checks sig over msg under pub.
func (s *Signature) Verify(pub *PublicKey, msg []byte) bool {
	return s.s.Verify(&pub.p, string(msg))
}

// AggregateVerify checks an aggregated signature against one message per
// public key, as used for IndexedAttestation verification.
func (s *Signature) AggregateVerify(pubs []*PublicKey, msgs [][32]byte) bool {
	if len(pubs) != len(msgs) {
		return false
	}
	rawPubs := make([]bls.PublicKey, len(pubs))
	rawMsgs := make([]byte, 0, 32*len(msgs))
	for i, p := range pubs {
		rawPubs[i] = p.p
		rawMsgs = append(rawMsgs, msgs[i][:]...)
	}
	return s.s.AggregateVerifyNoCheck(rawPubs, rawMsgs)
}

// FastAggregateVerify checks an aggregated signature against a single
// message signed by every one of pubs, as used for plain Attestation
// verification (every attester in a committee signs the same
// AttestationData).
func (s *Signature) FastAggregateVerify(pubs []*PublicKey, msg [32]byte) bool {
	if len(pubs) == 0 {
		return false
	}
	rawPubs := make([]bls.PublicKey, len(pubs))
	for i, p := range pubs {
		rawPubs[i] = p.p
	}
	return s.s.FastAggregateVerify(rawPubs, msg[:])
}

// AggregateSignatures combines multiple signatures into one, used to
// validate an IndexedAttestation's single aggregate signature.
func AggregateSignatures(sigs []*Signature) *Signature {
	if len(sigs) == 0 {
		return nil
	}
	raw := make([]bls.Sign, len(sigs))
	for i, s := range sigs {
		raw[i] = s.s
	}
	agg := &bls.Sign{}
	agg.Aggregate(raw)
	return &Signature{s: *agg}
}

// Domain mixes a 4-byte domain type with a fork version into the 8-byte
// signing domain used to derive a signing root, matching compute_domain.
func Domain(domainType [4]byte, forkVersion []byte) []byte {
	d := make([]byte, 8)
	copy(d[:4], domainType[:])
	copy(d[4:], forkVersion)
	return d
}
