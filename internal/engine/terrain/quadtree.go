package terrain

// noChild marks an absent child slot.
const noChild int32 = -1

type quadNode[T any] struct {
	elem     T
	children [4]int32
}

// QuadTree is an arena-allocated 4-ary tree. Nodes refer to children by
// index, so discarding a tree is dropping the arena. Node 0 is the root.
type QuadTree[T any] struct {
	nodes []quadNode[T]
}

// NewQuadTree returns a tree whose root holds elem.
func NewQuadTree[T any](elem T) *QuadTree[T] {
	t := &QuadTree[T]{}
	t.AddNode(elem)
	return t
}

// Root returns the root node index.
func (t *QuadTree[T]) Root() int32 { return 0 }

// Len returns the number of nodes.
func (t *QuadTree[T]) Len() int { return len(t.nodes) }

// AddNode appends a childless node and returns its index.
func (t *QuadTree[T]) AddNode(elem T) int32 {
	t.nodes = append(t.nodes, quadNode[T]{
		elem:     elem,
		children: [4]int32{noChild, noChild, noChild, noChild},
	})
	return int32(len(t.nodes) - 1)
}

// SetChildren links four existing nodes under n. Subdivision is one-way.
func (t *QuadTree[T]) SetChildren(n int32, children [4]int32) {
	t.nodes[n].children = children
}

// Children returns the child indices of n.
func (t *QuadTree[T]) Children(n int32) [4]int32 { return t.nodes[n].children }

// Elem returns the element stored at n.
func (t *QuadTree[T]) Elem(n int32) T { return t.nodes[n].elem }

// IsLeaf reports whether n has no children.
func (t *QuadTree[T]) IsLeaf(n int32) bool {
	c := t.nodes[n].children
	return c[0] == noChild && c[1] == noChild && c[2] == noChild && c[3] == noChild
}

// Walk calls fn for every node in depth-first order.
func (t *QuadTree[T]) Walk(fn func(n int32, elem T)) {
	if len(t.nodes) == 0 {
		return
	}
	t.walk(0, fn)
}

func (t *QuadTree[T]) walk(n int32, fn func(int32, T)) {
	fn(n, t.nodes[n].elem)
	for _, c := range t.nodes[n].children {
		if c != noChild {
			t.walk(c, fn)
		}
	}
}

// Leaves calls fn for every leaf element in depth-first order.
func (t *QuadTree[T]) Leaves(fn func(elem T)) {
	t.Walk(func(n int32, elem T) {
		if t.IsLeaf(n) {
			fn(elem)
		}
	})
}

// AllLeaves reports whether pred holds for every leaf, stopping at the
// first failure.
func (t *QuadTree[T]) AllLeaves(pred func(elem T) bool) bool {
	if len(t.nodes) == 0 {
		return false
	}
	return t.allLeaves(0, pred)
}

func (t *QuadTree[T]) allLeaves(n int32, pred func(T) bool) bool {
	if t.IsLeaf(n) {
		return pred(t.nodes[n].elem)
	}
	for _, c := range t.nodes[n].children {
		if c != noChild && !t.allLeaves(c, pred) {
			return false
		}
	}
	return true
}
