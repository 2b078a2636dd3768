// Reference:
// https://github.com/nsqio/nsq/blob/master/internal/pqueue/pqueue.go

package queue

import "errors"

var (
	ErrPQEmpty              = errors.New("[pq] queue is empty")
	ErrPQItemAlreadyPresent = errors.New("[pq] item already present")
	ErrPQItemNotFound       = errors.New("[pq] item not found")
)

// IndexedPriorityQueue is a binary-heap priority queue that tracks the
// heap position of every value, so reprioritization and arbitrary
// removal run in O(log n). Each value may be enqueued at most once.
// Values with equal priority dequeue in insertion order.
type IndexedPriorityQueue[E comparable] interface {
	Len() int64
	// Push enqueues value with priority. A value already present is
	// rejected with ErrPQItemAlreadyPresent.
	Push(value E, priority int64) error
	// Pop dequeues the front item, ErrPQEmpty when there is none.
	Pop() (ReadOnlyPQItem[E], error)
	// Peek reports the front item without dequeueing it.
	Peek() (ReadOnlyPQItem[E], error)
	// Update assigns a new priority to an enqueued value and restores
	// the heap order, ErrPQItemNotFound for an absent value.
	Update(value E, priority int64) error
	// Remove drops an enqueued value regardless of its position.
	Remove(value E) (ReadOnlyPQItem[E], error)
	Contains(value E) bool
}

type ReadOnlyPQItem[E comparable] interface {
	Index() int64
	Value() E
	Priority() int64
}

type CmpEnum int64

const (
	iLTj CmpEnum = -1 + iota
	iEQj
	iGTj
)

// PQItemLessThenComparator
// Priority queue item comparator
// if return 1, i > j
// if return 0, i == j
// if return -1, i < j
type PQItemLessThenComparator[E comparable] func(i, j ReadOnlyPQItem[E]) CmpEnum

type PQItem[E comparable] interface {
	ReadOnlyPQItem[E]
	SetIndex(idx int64)
	SetPriority(pri int64)
}
