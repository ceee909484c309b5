package project

import (
	"crypto/sha256"
	"encoding/binary"
)

// Digest - фиксированный 256 битный хеш (совместим с source.File.Hash)
type Digest [32]byte

// Combine builds a cache key: H(content || salt1 || salt2 ...).
// The order of salts must be deterministic.
func Combine(content Digest, salts ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range salts {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint hashes the parse limits so that cached results produced under
// different budgets never collide.
func (c ParseConfig) Fingerprint() Digest {
	var buf [24]byte
	binary.LittleEndian.PutUint64(buf[0:], uint64(max(c.MaxDepth, 0)))
	binary.LittleEndian.PutUint64(buf[8:], uint64(max(c.MaxTokens, 0)))
	binary.LittleEndian.PutUint64(buf[16:], uint64(c.MaxDiagnostics))
	return sha256.Sum256(buf[:])
}
