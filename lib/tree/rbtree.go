package tree

import (
	"fmt"
	"sync/atomic"

	"github.com/benz9527/xtree/lib/infra"
)

type rbNode[K infra.OrderedKey, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	color  RBColor
	hasKV  bool
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) HasKeyVal() bool {
	if node == nil {
		return false
	}
	return node.hasKV
}

// The exported relation accessors hide the shared nil leaf: an absent
// relative is reported as a plain nil interface.

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left.isNilLeaf() {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right.isNilLeaf() {
		return nil
	}
	return node.right
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent.isNilLeaf() {
		return nil
	}
	return node.parent
}

// The shared nil leaf is the only node without a key-value pair.
func (node *rbNode[K, V]) isNilLeaf() bool {
	return node == nil || !node.hasKV
}

func (node *rbNode[K, V]) isRed() bool {
	return !node.isNilLeaf() && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node.isNilLeaf() || node.color == Black
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent.isNilLeaf()
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:

	}
	return nil
}

func (node *rbNode[K, V]) uncle() *rbNode[K, V] {
	return node.parent.sibling()
}

func (node *rbNode[K, V]) grandpa() *rbNode[K, V] {
	return node.parent.parent
}

func (node *rbNode[K, V]) minimum() *rbNode[K, V] {
	aux := node
	for ; !aux.isNilLeaf() && !aux.left.isNilLeaf(); aux = aux.left {
	}
	return aux
}

func (node *rbNode[K, V]) maximum() *rbNode[K, V] {
	aux := node
	for ; !aux.isNilLeaf() && !aux.right.isNilLeaf(); aux = aux.right {
	}
	return aux
}

// The pred node of the current node is its previous node in sorted order.
func (node *rbNode[K, V]) pred() *rbNode[K, V] {
	x := node
	if x.isNilLeaf() {
		return nil
	}
	if !x.left.isNilLeaf() {
		return x.left.maximum()
	}

	aux := x.parent
	// Backtrack to the first ancestor that keeps x in its right subtree.
	for !aux.isNilLeaf() && x == aux.left {
		x = aux
		aux = aux.parent
	}
	if aux.isNilLeaf() {
		return nil
	}
	return aux
}

// The succ node of the current node is its next node in sorted order.
func (node *rbNode[K, V]) succ() *rbNode[K, V] {
	x := node
	if x.isNilLeaf() {
		return nil
	}
	if !x.right.isNilLeaf() {
		return x.right.minimum()
	}

	aux := x.parent
	// Backtrack to the first ancestor that keeps x in its left subtree.
	for !aux.isNilLeaf() && x == aux.right {
		x = aux
		aux = aux.parent
	}
	if aux.isNilLeaf() {
		return nil
	}
	return aux
}

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// rbtree properties:
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
//
// Every absent child and the root's parent is the one shared nil leaf
// (sentinel). It is permanently black, never holds a key-value pair and
// lets the fixup loops treat "no child" as an ordinary black node. Its
// parent link is scratch space: each transplant relinks it so that the
// remove rebalance can climb through it.
type rbTree[K infra.OrderedKey, V any] struct {
	root    *rbNode[K, V]
	nilLeaf *rbNode[K, V]
	count   int64
	isDesc  bool
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	res := infra.OrderedKeyCompare[K](k1, k2)
	if tree.isDesc {
		return -res
	}
	return res
}

func (tree *rbTree[K, V]) Len() int64 {
	return atomic.LoadInt64(&tree.count)
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root.isNilLeaf() {
		return nil
	}
	return tree.root
}

/*
		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) {
	if x.isNilLeaf() || x.right.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] left rotate node x is nil or x.right is a nil leaf")
	}

	y := x.right
	dir := x.Direction()
	x.right = y.left
	if !y.left.isNilLeaf() {
		y.left.parent = x
	}
	y.parent = x.parent

	switch dir {
	case Root:
		tree.root = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.left = x
	x.parent = y
}

/*
		 |                         |
		 X                         S
		/ \     rightRotate(S)    / \
	   L   S    <============    X   R
		  / \                   / \
		Sc   Sd               Sc   Sd
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) {
	if x.isNilLeaf() || x.left.isNilLeaf() {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] right rotate node x is nil or x.left is a nil leaf")
	}

	y := x.left
	dir := x.Direction()
	x.left = y.right
	if !y.right.isNilLeaf() {
		y.right.parent = x
	}
	y.parent = x.parent

	switch dir {
	case Root:
		tree.root = y
	case Left:
		x.parent.left = y
	case Right:
		x.parent.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.right = x
	x.parent = y
}

func (tree *rbTree[K, V]) searchNode(key K) *rbNode[K, V] {
	for aux := tree.root; !aux.isNilLeaf(); {
		res := tree.keyCompare(key, aux.key)
		if /* equal */ res == 0 {
			return aux
		} else /* less */ if res < 0 {
			aux = aux.left
		} else /* greater */ {
			aux = aux.right
		}
	}
	return tree.nilLeaf
}

func (tree *rbTree[K, V]) Get(key K) (val V, err error) {
	node := tree.searchNode(key)
	if node.isNilLeaf() {
		return val, ErrRBTreeKeyNotFound
	}
	return node.val, nil
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return !tree.searchNode(key).isNilLeaf()
}

func (tree *rbTree[K, V]) Insert(key K, val V, ifNotPresent ...bool) error {
	y, x := tree.nilLeaf, tree.root
	var res int64
	for !x.isNilLeaf() {
		y = x
		res = tree.keyCompare(key, x.key)
		if /* equal */ res == 0 {
			if len(ifNotPresent) > 0 && /* replace disabled */ ifNotPresent[0] {
				return ErrRBTreeDuplicateKey
			}
			// Overwrite in place, no structural change and no fixup.
			x.val = val
			return nil
		} else /* less */ if res < 0 {
			x = x.left
		} else /* greater */ {
			x = x.right
		}
	}

	z := &rbNode[K, V]{
		parent: y,
		left:   tree.nilLeaf,
		right:  tree.nilLeaf,
		key:    key,
		val:    val,
		color:  Red,
		hasKV:  true,
	}
	if /* empty tree */ y.isNilLeaf() {
		tree.root = z
	} else if res < 0 {
		y.left = z
	} else {
		y.right = z
	}

	atomic.AddInt64(&tree.count, 1)
	tree.insertRebalance(z)
	return nil
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).

A red parent P always has a black grandpa G, so only p3 can be broken
and only between X and P.

im1: Both the parent P and the uncle U are red. (red-violation)
Repainting G red may re-violate p3 two levels up. Loop on G.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im2: The parent P is red but the uncle U is black, X is the inner
grandchild. Rotate at P to reduce to im3.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im3: The parent P is red, the uncle U is black, X is the outer
grandchild. Rotate at G against X's side and swap the P/G colors.
This terminates the loop.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(z *rbNode[K, V]) {
	for z.parent.isRed() {
		// A red parent is never the root, so the grandpa exists.
		dir := z.parent.Direction()
		uncle := z.uncle()

		if /* im1 */ uncle.isRed() {
			z.parent.color = Black
			uncle.color = Black
			z.grandpa().color = Red
			z = z.grandpa()
			continue
		}

		if /* im2 */ z.Direction() != dir {
			z = z.parent
			switch dir {
			case Left:
				tree.leftRotate(z)
			case Right:
				tree.rightRotate(z)
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] insert rebalance violate (im2)")
			}
		}

		/* im3 */
		z.parent.color = Black
		z.grandpa().color = Red
		switch dir {
		case Left:
			tree.rightRotate(z.grandpa())
		case Right:
			tree.leftRotate(z.grandpa())
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] insert rebalance violate (im3)")
		}
	}
	// Covers im1 recoloring the root red and the single red root.
	tree.root.color = Black
}

// transplant replaces the subtree rooted at u with the one rooted at v.
// v's parent link is set unconditionally: when v is the shared nil leaf
// its parent field is the scratch slot the remove rebalance climbs
// through.
func (tree *rbTree[K, V]) transplant(u, v *rbNode[K, V]) {
	switch u.Direction() {
	case Root:
		tree.root = v
	case Left:
		u.parent.left = v
	case Right:
		u.parent.right = v
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to transplant")
	}
	v.parent = u.parent
}

/*
r1: Node Z keeps both a left and a right child. Its in-order successor Y
(minimum of the right subtree, no left child by construction) donates
its key and value into Z's slot and Y itself is spliced out instead.

	  |                    |
	  Z                    Y(key/val)
	 / \                  / \
	L  ..   borrow(Y)    L  ..
	    |   =========>       |
	    Y                    X
	     \
	      X

r2: The spliced node Y has at most one real child X (if one exists it
must be red, otherwise p4 was already broken). X takes Y's slot via
transplant; X may be the shared nil leaf.

r3: If Y was black its removal shortens the black path through X by one
(black-violation). Rebalance at X.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) (RBNode[K, V], error) {
	res := &rbNode[K, V]{key: z.key, val: z.val, color: z.color, hasKV: true}

	y := z
	if /* r1 */ !z.left.isNilLeaf() && !z.right.isNilLeaf() {
		y = z.right.minimum()
		z.key, z.val = y.key, y.val
	}

	/* r2 */
	yColor := y.color
	x := y.right
	if !y.left.isNilLeaf() {
		x = y.left
	}
	tree.transplant(y, x)

	// Detach the spliced node.
	y.parent, y.left, y.right = nil, nil, nil
	y.hasKV = false

	atomic.AddInt64(&tree.count, -1)
	if /* r3 */ yColor == Black {
		tree.removeRebalance(x)
	}
	return res, nil
}

func (tree *rbTree[K, V]) Remove(key K) (RBNode[K, V], error) {
	z := tree.searchNode(key)
	if z.isNilLeaf() {
		return nil, ErrRBTreeKeyNotFound
	}
	return tree.removeNode(z)
}

func (tree *rbTree[K, V]) RemoveMin() (RBNode[K, V], error) {
	if atomic.LoadInt64(&tree.count) <= 0 {
		return nil, ErrRBTreeEmpty
	}
	return tree.removeNode(tree.root.minimum())
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

X is one black short against its sibling side ("double black"). Sc is
the near nephew (same direction as X), Sd the far nephew.

rm1: The sibling S is red, so P, Sc and Sd must be black. Rotate P
toward X's side and swap the S/P colors. X's new sibling is the old Sc,
now guaranteed black. Falls through to the remaining cases.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]

rm2: S, Sc and Sd are all black. Repaint S red to even both sides
locally and push the missing black up to P. If P is red the loop exit
repaints it black, otherwise P becomes the new double black.

	  {P}             {P}
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: S is black, the near nephew Sc is red, the far nephew Sd is black.
Rotate at S away from X's side and swap the S/Sc colors, producing a
red far nephew. Falls through to rm4.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm4: S is black, the far nephew Sd is red. Rotate P toward X's side,
give S P's old color, repaint P and Sd black. The rotation feeds one
extra black into X's path. Terminates the loop.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]
*/
func (tree *rbTree[K, V]) removeRebalance(x *rbNode[K, V]) {
	for x != tree.root && x.isBlack() {
		// x may be the shared nil leaf here, located through its
		// scratch parent link.
		p := x.parent
		dir := Left
		sibling := p.right
		if x == p.right {
			dir, sibling = Right, p.left
		}

		if /* rm1 */ sibling.isRed() {
			sibling.color = Black
			p.color = Red
			switch dir {
			case Left:
				tree.leftRotate(p)
				sibling = p.right
			case Right:
				tree.rightRotate(p)
				sibling = p.left
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove rebalance violate (rm1)")
			}
		}

		var sc, sd *rbNode[K, V]
		switch dir {
		case Left:
			sc, sd = sibling.left, sibling.right
		case Right:
			sc, sd = sibling.right, sibling.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance violate (rm2)")
		}

		if /* rm2 */ sc.isBlack() && sd.isBlack() {
			sibling.color = Red
			x = p
			continue
		}

		if /* rm3 */ sd.isBlack() {
			sc.color = Black
			sibling.color = Red
			switch dir {
			case Left:
				tree.rightRotate(sibling)
				sibling = p.right
				sd = sibling.right
			case Right:
				tree.leftRotate(sibling)
				sibling = p.left
				sd = sibling.left
			default:
				// impossible run to here
				panic( /* debug assertion */ "[rbtree] remove rebalance violate (rm3)")
			}
		}

		/* rm4 */
		sibling.color = p.color
		p.color = Black
		sd.color = Black
		switch dir {
		case Left:
			tree.leftRotate(p)
		case Right:
			tree.rightRotate(p)
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance violate (rm4)")
		}
		x = tree.root
	}
	// Covers the rm2 exit with a red P and x being the root.
	x.color = Black
}

func (tree *rbTree[K, V]) Min() (RBNode[K, V], error) {
	if atomic.LoadInt64(&tree.count) <= 0 {
		return nil, ErrRBTreeEmpty
	}
	return tree.root.minimum(), nil
}

func (tree *rbTree[K, V]) Max() (RBNode[K, V], error) {
	if atomic.LoadInt64(&tree.count) <= 0 {
		return nil, ErrRBTreeEmpty
	}
	return tree.root.maximum(), nil
}

func (tree *rbTree[K, V]) Succ(key K) (RBNode[K, V], error) {
	node := tree.searchNode(key)
	if node.isNilLeaf() {
		return nil, ErrRBTreeKeyNotFound
	}
	succ := node.succ()
	if succ == nil {
		return nil, ErrRBTreeNoSucc
	}
	return succ, nil
}

func (tree *rbTree[K, V]) Pred(key K) (RBNode[K, V], error) {
	node := tree.searchNode(key)
	if node.isNilLeaf() {
		return nil, ErrRBTreeKeyNotFound
	}
	pred := node.pred()
	if pred == nil {
		return nil, ErrRBTreeNoPred
	}
	return pred, nil
}

func (tree *rbTree[K, V]) Search(x RBNode[K, V], fn func(RBNode[K, V]) int64) RBNode[K, V] {
	if x == nil {
		return nil
	}

	for aux := x; aux != nil; {
		res := fn(aux)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.Right()
		} else {
			aux = aux.Left()
		}
	}
	return nil
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	size := atomic.LoadInt64(&tree.count)
	aux := tree.root
	if size <= 0 || aux.isNilLeaf() {
		return
	}

	stack := make([]*rbNode[K, V], 0, size>>1)
	defer func() {
		clear(stack)
	}()

	for ; !aux.isNilLeaf(); aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size = int64(len(stack)); size > 0; size = int64(len(stack)) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		if !aux.right.isNilLeaf() {
			for aux = aux.right; !aux.isNilLeaf(); aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

func (tree *rbTree[K, V]) Keys() []K {
	keys := make([]K, 0, atomic.LoadInt64(&tree.count))
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (tree *rbTree[K, V]) Values() []V {
	vals := make([]V, 0, atomic.LoadInt64(&tree.count))
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		vals = append(vals, val)
		return true
	})
	return vals
}

func (tree *rbTree[K, V]) Validate() error {
	if tree.root.isNilLeaf() {
		if n := atomic.LoadInt64(&tree.count); n != 0 {
			return fmt.Errorf("%w: empty tree reports %d entries", ErrRBTreeInvariantViolation, n)
		}
		return nil
	}
	if tree.root.isRed() {
		return fmt.Errorf("%w: root (key %v) is red", ErrRBTreeInvariantViolation, tree.root.key)
	}

	visited := int64(0)
	if _, err := tree.validateAt(tree.root, &visited); err != nil {
		return err
	}
	if n := atomic.LoadInt64(&tree.count); visited != n {
		return fmt.Errorf("%w: count is %d but %d entries are reachable", ErrRBTreeInvariantViolation, n, visited)
	}
	return nil
}

// validateAt reports the black-height of the subtree, failing fast on
// the first broken property.
func (tree *rbTree[K, V]) validateAt(node *rbNode[K, V], visited *int64) (int64, error) {
	if node.isNilLeaf() {
		// Nil leaves are black and count as height one.
		return 1, nil
	}
	*visited++

	if node.isRed() && (node.left.isRed() || node.right.isRed()) {
		return 0, fmt.Errorf("%w: red node (key %v) has a red child", ErrRBTreeInvariantViolation, node.key)
	}
	if !node.left.isNilLeaf() && tree.keyCompare(node.left.key, node.key) >= 0 {
		return 0, fmt.Errorf("%w: left child of key %v is out of order", ErrRBTreeInvariantViolation, node.key)
	}
	if !node.right.isNilLeaf() && tree.keyCompare(node.right.key, node.key) <= 0 {
		return 0, fmt.Errorf("%w: right child of key %v is out of order", ErrRBTreeInvariantViolation, node.key)
	}

	lbh, err := tree.validateAt(node.left, visited)
	if err != nil {
		return 0, err
	}
	rbh, err := tree.validateAt(node.right, visited)
	if err != nil {
		return 0, err
	}
	if lbh != rbh {
		return 0, fmt.Errorf("%w: black-height mismatch under key %v (%d vs %d)", ErrRBTreeInvariantViolation, node.key, lbh, rbh)
	}
	if node.isBlack() {
		lbh++
	}
	return lbh, nil
}

func (tree *rbTree[K, V]) Release() {
	aux := tree.root
	tree.root = tree.nilLeaf
	if aux.isNilLeaf() {
		return
	}

	stack := make([]*rbNode[K, V], 0, atomic.LoadInt64(&tree.count)>>1)
	defer func() {
		clear(stack)
	}()

	for ; !aux.isNilLeaf(); aux = aux.left {
		stack = append(stack, aux)
	}

	for size := int64(len(stack)); size > 0; size = int64(len(stack)) {
		aux = stack[size-1]
		stack = stack[:size-1]
		r := aux.right
		aux.parent, aux.left, aux.right = nil, nil, nil
		aux.hasKV = false
		atomic.AddInt64(&tree.count, -1)
		if !r.isNilLeaf() {
			for aux = r; !aux.isNilLeaf(); aux = aux.left {
				stack = append(stack, aux)
			}
		}
	}
}

type RBTreeOpt[K infra.OrderedKey, V any] func(*rbTree[K, V])

// WithRBTreeDesc flips the comparison so the tree orders keys
// descending. Succ and Pred keep following tree order.
func WithRBTreeDesc[K infra.OrderedKey, V any]() RBTreeOpt[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

func NewRBTree[K infra.OrderedKey, V any](opts ...RBTreeOpt[K, V]) RBTree[K, V] {
	sentinel := &rbNode[K, V]{color: Black}
	sentinel.parent, sentinel.left, sentinel.right = sentinel, sentinel, sentinel

	tree := &rbTree[K, V]{
		root:    sentinel,
		nilLeaf: sentinel,
		count:   0,
	}
	for _, o := range opts {
		o(tree)
	}
	return tree
}
