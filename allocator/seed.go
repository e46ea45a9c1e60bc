package allocator

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// SeedFromBytes maps |content| to a seed: its SHA-256 digest, read as a
// big-endian integer, modulo 2^32. Byte-identical content always yields the
// same seed.
func SeedFromBytes(content []byte) uint64 {
	var sum = sha256.Sum256(content)
	return uint64(binary.BigEndian.Uint32(sum[sha256.Size-4:]))
}

// NewRand returns a *rand.Rand deterministically seeded by |seed|.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// AmbientSeed draws a seed from the runtime-seeded global source.
func AmbientSeed() uint64 { return rand.Uint64() }
