package queue

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriorityQueue_MinValueAsHighPriority(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string](
		WithArrayPriorityQueueEnableThreadSafe[string](),
		WithArrayPriorityQueueCapacity[string](32),
	)
	require.NoError(t, err)

	require.NoError(t, pq.Push("p0", 1))
	require.NoError(t, pq.Push("p1", 101))
	require.NoError(t, pq.Push("p2", 10))
	require.NoError(t, pq.Push("p3", 200))
	require.NoError(t, pq.Push("p4", 3))
	require.NoError(t, pq.Push("p5", 5))
	require.Equal(t, int64(6), pq.Len())

	expectedPriorities := []int64{1, 3, 5, 10, 101, 200}
	for i, priority := range expectedPriorities {
		peekItem, err := pq.Peek()
		require.NoError(t, err)
		item, err := pq.Pop()
		require.NoError(t, err)
		t.Logf("%v, priority: %d", item.Value(), item.Priority())
		assert.Equal(t, peekItem.Value(), item.Value(), "peek", i)
		assert.Equal(t, priority, item.Priority(), "priority", i)
	}
	require.Equal(t, int64(0), pq.Len())
}

func TestPriorityQueue_MaxValueAsHighPriority(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string](
		WithArrayPriorityQueueCapacity[string](32),
		WithArrayPriorityQueueMaxOriented[string](),
	)
	require.NoError(t, err)

	require.NoError(t, pq.Push("p0", 1))
	require.NoError(t, pq.Push("p1", 101))
	require.NoError(t, pq.Push("p2", 10))
	require.NoError(t, pq.Push("p3", 200))
	require.NoError(t, pq.Push("p4", 3))
	require.NoError(t, pq.Push("p5", 5))
	require.NoError(t, pq.Push("p6", 201))

	expectedPriorities := []int64{201, 200, 101, 10, 5, 3, 1}
	for i, priority := range expectedPriorities {
		item, err := pq.Pop()
		require.NoError(t, err)
		t.Logf("%v, priority: %d", item.Value(), item.Priority())
		assert.Equal(t, priority, item.Priority(), "priority", i)
	}
}

func TestPriorityQueue_EqualPrioritiesDequeueInInsertionOrder(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string]()
	require.NoError(t, err)

	require.NoError(t, pq.Push("first", 7))
	require.NoError(t, pq.Push("second", 7))
	require.NoError(t, pq.Push("third", 7))
	require.NoError(t, pq.Push("ahead", 1))

	expected := []string{"ahead", "first", "second", "third"}
	for i, value := range expected {
		item, err := pq.Pop()
		require.NoError(t, err)
		assert.Equal(t, value, item.Value(), "value", i)
	}
}

func TestPriorityQueue_MaxOrientedKeepsInsertionOrderOnTies(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string](
		WithArrayPriorityQueueMaxOriented[string](),
	)
	require.NoError(t, err)

	require.NoError(t, pq.Push("first", 7))
	require.NoError(t, pq.Push("second", 7))
	require.NoError(t, pq.Push("behind", 1))
	require.NoError(t, pq.Push("third", 7))

	expected := []string{"first", "second", "third", "behind"}
	for i, value := range expected {
		item, err := pq.Pop()
		require.NoError(t, err)
		assert.Equal(t, value, item.Value(), "value", i)
	}
}

func TestPriorityQueue_DuplicateValueRejected(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string]()
	require.NoError(t, err)

	require.NoError(t, pq.Push("task1", 5))
	require.ErrorIs(t, pq.Push("task1", 3), ErrPQItemAlreadyPresent)
	require.Equal(t, int64(1), pq.Len())
	require.True(t, pq.Contains("task1"))
	require.False(t, pq.Contains("task2"))

	// Popped values can be enqueued again.
	item, err := pq.Pop()
	require.NoError(t, err)
	require.Equal(t, "task1", item.Value())
	require.NoError(t, pq.Push("task1", 3))
}

func TestPriorityQueue_Empty(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string]()
	require.NoError(t, err)

	require.Equal(t, int64(0), pq.Len())
	_, err = pq.Pop()
	require.ErrorIs(t, err, ErrPQEmpty)
	_, err = pq.Peek()
	require.ErrorIs(t, err, ErrPQEmpty)
}

func TestPriorityQueue_UpdateReordersQueue(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string]()
	require.NoError(t, err)

	require.NoError(t, pq.Push("task1", 5))
	require.NoError(t, pq.Push("task2", 3))
	require.NoError(t, pq.Push("task3", 8))

	require.NoError(t, pq.Update("task1", 1))
	require.ErrorIs(t, pq.Update("task9", 1), ErrPQItemNotFound)

	expected := []string{"task1", "task2", "task3"}
	for i, value := range expected {
		item, err := pq.Pop()
		require.NoError(t, err)
		assert.Equal(t, value, item.Value(), "value", i)
	}
}

func TestPriorityQueue_RemoveArbitraryValue(t *testing.T) {
	pq, err := NewArrayPriorityQueue[string]()
	require.NoError(t, err)

	require.NoError(t, pq.Push("task1", 5))
	require.NoError(t, pq.Push("task2", 3))
	require.NoError(t, pq.Push("task3", 8))
	require.NoError(t, pq.Push("task4", 1))

	removed, err := pq.Remove("task3")
	require.NoError(t, err)
	require.Equal(t, "task3", removed.Value())
	require.Equal(t, int64(3), pq.Len())
	require.False(t, pq.Contains("task3"))

	_, err = pq.Remove("task3")
	require.ErrorIs(t, err, ErrPQItemNotFound)

	expected := []string{"task4", "task2", "task1"}
	for i, value := range expected {
		item, err := pq.Pop()
		require.NoError(t, err)
		assert.Equal(t, value, item.Value(), "value", i)
	}
}

func TestPriorityQueue_ThreadSafePush(t *testing.T) {
	pq, err := NewArrayPriorityQueue[int](
		WithArrayPriorityQueueEnableThreadSafe[int](),
	)
	require.NoError(t, err)

	var wg sync.WaitGroup
	workers, perWorker := 8, 256
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_ = pq.Push(base+i, int64(base+i))
			}
		}(w * perWorker)
	}
	wg.Wait()
	require.Equal(t, int64(workers*perWorker), pq.Len())

	prev := int64(-1)
	for pq.Len() > 0 {
		item, err := pq.Pop()
		require.NoError(t, err)
		require.Greater(t, item.Priority(), prev)
		prev = item.Priority()
	}
}

func BenchmarkArrayPriorityQueue_Push(b *testing.B) {
	values := make([]string, 0, b.N)
	for i := 0; i < b.N; i++ {
		values = append(values, fmt.Sprintf("p%d", i))
	}
	pq, err := NewArrayPriorityQueue[string](
		WithArrayPriorityQueueCapacity[string](32),
	)
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = pq.Push(values[i], int64(i))
	}
	b.ReportAllocs()
}

func BenchmarkArrayPriorityQueue_Pop(b *testing.B) {
	pq, err := NewArrayPriorityQueue[string](
		WithArrayPriorityQueueCapacity[string](32),
	)
	if err != nil {
		b.Fatal(err)
	}
	for i := 0; i < b.N; i++ {
		_ = pq.Push(fmt.Sprintf("p%d", i), int64(i))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = pq.Pop()
	}
	b.ReportAllocs()
}
