package queue

import (
	"container/heap"
	"sync"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/id"
)

type pqItem[E comparable] struct {
	priority int64
	index    int64
	// seq is the enqueue order, it breaks priority ties so that equal
	// priorities dequeue first-in first-out.
	seq   uint64
	value E
}

func (item *pqItem[E]) Index() int64 {
	if item == nil {
		return -1
	}
	return atomic.LoadInt64(&item.index)
}

func (item *pqItem[E]) Value() (val E) {
	if item == nil {
		// return empty value by default
		return
	}
	return item.value
}

func (item *pqItem[E]) Priority() int64 {
	if item == nil {
		return -1
	}
	return atomic.LoadInt64(&item.priority)
}

func (item *pqItem[E]) SetIndex(idx int64) {
	if item == nil {
		return
	}
	atomic.SwapInt64(&item.index, idx)
}

func (item *pqItem[E]) SetPriority(pri int64) {
	if item == nil {
		return
	}
	atomic.SwapInt64(&item.priority, pri)
}

// indexedPQ is the container/heap engine. It owns the position map, so
// heap.Push, heap.Pop and heap.Remove keep it consistent for free.
type indexedPQ[E comparable] struct {
	capacity   int
	arr        []*pqItem[E]
	pos        map[E]*pqItem[E]
	comparator PQItemLessThenComparator[E]
}

func (pq *indexedPQ[E]) Len() int { return len(pq.arr) }

func (pq *indexedPQ[E]) Less(i, j int) bool {
	switch pq.comparator(pq.arr[i], pq.arr[j]) {
	case iLTj:
		return true
	case iEQj:
		return pq.arr[i].seq < pq.arr[j].seq
	default:
	}
	return false
}

func (pq *indexedPQ[E]) Swap(i, j int) {
	pq.arr[i], pq.arr[j] = pq.arr[j], pq.arr[i]
	pq.arr[i].SetIndex(int64(i))
	pq.arr[j].SetIndex(int64(j))
}

func (pq *indexedPQ[E]) Pop() interface{} {
	prev := pq.arr
	n := len(prev)
	if n <= 0 {
		return nil
	}

	item := prev[n-1]
	item.SetIndex(-1)
	prev[n-1] = nil
	pq.arr = prev[:n-1]
	delete(pq.pos, item.value)
	return item
}

func (pq *indexedPQ[E]) Push(i interface{}) {
	item, ok := i.(*pqItem[E])
	if !ok {
		return
	}

	n := len(pq.arr)
	item.SetIndex(int64(n))
	pq.arr = append(pq.arr, item)
	pq.pos[item.value] = item
}

type ArrayPriorityQueue[E comparable] struct {
	queue       *indexedPQ[E]
	seqGen      id.UUIDGen
	lock        *sync.Mutex
	maxOriented bool
}

func (pq *ArrayPriorityQueue[E]) Len() int64 {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	return int64(len(pq.queue.arr))
}

func (pq *ArrayPriorityQueue[E]) Push(value E, priority int64) error {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	if _, ok := pq.queue.pos[value]; ok {
		return ErrPQItemAlreadyPresent
	}
	heap.Push(pq.queue, &pqItem[E]{
		priority: priority,
		value:    value,
		seq:      pq.seqGen.Number(),
	})
	return nil
}

func (pq *ArrayPriorityQueue[E]) Pop() (ReadOnlyPQItem[E], error) {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	if len(pq.queue.arr) == 0 {
		return nil, ErrPQEmpty
	}
	item := heap.Pop(pq.queue)
	return item.(ReadOnlyPQItem[E]), nil
}

func (pq *ArrayPriorityQueue[E]) Peek() (ReadOnlyPQItem[E], error) {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	if len(pq.queue.arr) == 0 {
		return nil, ErrPQEmpty
	}
	return pq.queue.arr[0], nil
}

func (pq *ArrayPriorityQueue[E]) Update(value E, priority int64) error {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	item, ok := pq.queue.pos[value]
	if !ok {
		return ErrPQItemNotFound
	}
	item.SetPriority(priority)
	heap.Fix(pq.queue, int(item.Index()))
	return nil
}

func (pq *ArrayPriorityQueue[E]) Remove(value E) (ReadOnlyPQItem[E], error) {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	item, ok := pq.queue.pos[value]
	if !ok {
		return nil, ErrPQItemNotFound
	}
	removed := heap.Remove(pq.queue, int(item.Index()))
	return removed.(ReadOnlyPQItem[E]), nil
}

func (pq *ArrayPriorityQueue[E]) Contains(value E) bool {
	if pq.lock != nil {
		pq.lock.Lock()
		defer pq.lock.Unlock()
	}
	_, ok := pq.queue.pos[value]
	return ok
}

func defaultPQItemComparator[E comparable]() PQItemLessThenComparator[E] {
	return func(i, j ReadOnlyPQItem[E]) CmpEnum {
		res := i.Priority() - j.Priority()
		if res > 0 {
			return iGTj
		} else if res < 0 {
			return iLTj
		}
		return iEQj
	}
}

type ArrayPriorityQueueOption[E comparable] func(*ArrayPriorityQueue[E])

func NewArrayPriorityQueue[E comparable](opts ...ArrayPriorityQueueOption[E]) (IndexedPriorityQueue[E], error) {
	seqGen, err := id.MonotonicNonZeroID()
	if err != nil {
		return nil, err
	}
	pq := &ArrayPriorityQueue[E]{
		queue:  new(indexedPQ[E]),
		seqGen: seqGen,
	}
	for _, o := range opts {
		if o != nil {
			o(pq)
		}
	}
	if pq.queue.capacity <= 0 {
		pq.queue.capacity = 64
	}
	if pq.queue.comparator == nil {
		pq.queue.comparator = defaultPQItemComparator[E]()
	}
	if pq.maxOriented {
		// Flip the comparator verdict. The seq tie-break stays
		// ascending, so equal priorities keep dequeueing in insertion
		// order.
		less := pq.queue.comparator
		pq.queue.comparator = func(i, j ReadOnlyPQItem[E]) CmpEnum {
			return -less(i, j)
		}
	}
	pq.queue.arr = make([]*pqItem[E], 0, pq.queue.capacity)
	pq.queue.pos = make(map[E]*pqItem[E], pq.queue.capacity)
	return pq, nil
}

func WithArrayPriorityQueueCapacity[E comparable](capacity int) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		if capacity <= 0 {
			capacity = 64
		}
		pq.queue.capacity = capacity
	}
}

func WithArrayPriorityQueueComparator[E comparable](fn PQItemLessThenComparator[E]) ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		if fn == nil {
			fn = defaultPQItemComparator[E]()
		}
		pq.queue.comparator = fn
	}
}

// WithArrayPriorityQueueMaxOriented dequeues the highest priority
// first instead of the lowest.
func WithArrayPriorityQueueMaxOriented[E comparable]() ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		pq.maxOriented = true
	}
}

func WithArrayPriorityQueueEnableThreadSafe[E comparable]() ArrayPriorityQueueOption[E] {
	return func(pq *ArrayPriorityQueue[E]) {
		pq.lock = &sync.Mutex{}
	}
}
