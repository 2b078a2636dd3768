package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonotonicNonZeroID(t *testing.T) {
	gen, err := MonotonicNonZeroID()
	assert.Nil(t, err)
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		n := gen.Number()
		require.Greater(t, n, prev)
		prev = n
	}
	require.Equal(t, "1001", gen.Str())
}
