package project

import (
	"crypto/sha256"
)

// Digest is a 256-bit content hash, the same shape as source.File.Hash.
type Digest [32]byte

// Combine builds a header hash: H(content || dep1 || dep2 ...).
// deps must arrive in a deterministic order.
func Combine(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint hashes free-form settings strings together with a set of
// header digests.
func Fingerprint(settings []string, headers ...Digest) Digest {
	h := sha256.New()
	for _, s := range settings {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	for _, d := range headers {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
