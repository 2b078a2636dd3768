package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderedKeyCompare(t *testing.T) {
	assert.Equal(t, int64(0), OrderedKeyCompare(uint64(7), uint64(7)))
	assert.Equal(t, int64(-1), OrderedKeyCompare(3, 5))
	assert.Equal(t, int64(1), OrderedKeyCompare("banana", "apple"))
	assert.Equal(t, int64(-1), OrderedKeyCompare(1.5, 2.5))
}
