package kv

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThreadSafeMap_CRUD(t *testing.T) {
	m := NewThreadSafeMap[string, int]()
	m.AddOrUpdate("a", 1)
	m.AddOrUpdate("b", 2)
	m.AddOrUpdate("a", 3)

	v, exists := m.Get("a")
	require.True(t, exists)
	require.Equal(t, 3, v)
	require.Equal(t, int64(2), m.Len())

	m.Delete("a")
	_, exists = m.Get("a")
	require.False(t, exists)
	m.Delete("not-present")
	require.Equal(t, int64(1), m.Len())

	m.Replace(map[string]int{"x": 7, "y": 8, "z": 9})
	keys := m.ListKeys()
	sort.Strings(keys)
	require.Equal(t, []string{"x", "y", "z"}, keys)

	odd := m.ListKeys(func(key string) bool { return key == "y" })
	require.Equal(t, []string{"y"}, odd)

	vals := m.ListValues("x", "z")
	sort.Ints(vals)
	require.Equal(t, []int{7, 9}, vals)

	require.NoError(t, m.Purge())
}
