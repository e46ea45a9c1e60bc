package allocator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSeedFromBytes(t *testing.T) {
	// sha256("") = e3b0...b855, and 0x7852b855 == 2018687061.
	require.Equal(t, uint64(2018687061), SeedFromBytes(nil))
	require.Equal(t, uint64(897050836), SeedFromBytes([]byte("name,id\n")))
	require.Equal(t, SeedFromBytes([]byte("abc")), SeedFromBytes([]byte("abc")))
	require.Less(t, SeedFromBytes([]byte("abc")), uint64(1)<<32)
}

func TestNewRandIsReproducible(t *testing.T) {
	var a, b = NewRand(42), NewRand(42)
	for i := 0; i != 100; i++ {
		require.Equal(t, a.Uint64(), b.Uint64())
	}
}
