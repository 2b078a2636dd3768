package tree

import (
	"errors"

	"github.com/benz9527/xtree/lib/infra"
)

type RBColor uint8

const (
	Black RBColor = iota
	Red
)

func (c RBColor) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var (
	ErrRBTreeKeyNotFound        = errors.New("[rbtree] key not found")
	ErrRBTreeDuplicateKey       = errors.New("[rbtree] duplicate key, replace disabled")
	ErrRBTreeEmpty              = errors.New("[rbtree] tree is empty")
	ErrRBTreeNoSucc             = errors.New("[rbtree] key has no in-order successor")
	ErrRBTreeNoPred             = errors.New("[rbtree] key has no in-order predecessor")
	ErrRBTreeInvariantViolation = errors.New("[rbtree] invariant violation")
)

// RBNode is the read-only view of a tree entry. The tree keeps
// ownership of the node structure; callers only read through it.
type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	HasKeyVal() bool
	Color() RBColor
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// RBTree is an ordered map backed by a red-black binary search tree.
// Insert, lookup, remove and the order-statistics queries run in
// O(log n).
//
// The tree is not internally synchronized. Callers must guarantee
// exclusive access during mutation; shared access is safe only while
// no writer is active. Mutating the tree during a Foreach walk is
// undefined behavior.
type RBTree[K infra.OrderedKey, V any] interface {
	Len() int64
	Root() RBNode[K, V]
	// Insert stores key with val, overwriting the value of an existing
	// key in place. Raising ifNotPresent turns the overwrite into an
	// ErrRBTreeDuplicateKey rejection.
	Insert(key K, val V, ifNotPresent ...bool) error
	Get(key K) (V, error)
	Contains(key K) bool
	// Remove deletes the entry and returns a detached snapshot of it.
	Remove(key K) (RBNode[K, V], error)
	RemoveMin() (RBNode[K, V], error)
	Min() (RBNode[K, V], error)
	Max() (RBNode[K, V], error)
	// Succ and Pred step a single position in tree order. An absent key
	// yields ErrRBTreeKeyNotFound; stepping off the boundary yields
	// ErrRBTreeNoSucc / ErrRBTreeNoPred.
	Succ(key K) (RBNode[K, V], error)
	Pred(key K) (RBNode[K, V], error)
	Keys() []K
	Values() []V
	// Foreach walks the entries in tree order. Returning false from the
	// action stops the walk. Each call starts a fresh traversal.
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	// Validate re-checks every red-black and ordering invariant.
	// Diagnostic only, not for the hot path. It fails fast on the first
	// violation, wrapping ErrRBTreeInvariantViolation.
	Validate() error
	Release()
}
