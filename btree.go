package bstore

import (
	"errors"
	"fmt"
)

// find is spec.md §4.3's find(key): a binary search (see search) for the
// smallest index i with elements[i].key >= key, returning on an exact
// match, descending into the appropriate child otherwise.
func (n *Node[K, V]) find(s *storage[K, V], key K) (V, bool, error) {
	idx, found := n.search(key)
	if found {
		return n.elements[idx].value, true, nil
	}
	if n.isLeaf() {
		var zero V
		return zero, false, nil
	}

	child, err := n.children[idx].load(s)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return child.find(s, key)
}

// persist writes n through storage, dispatching on isRoot: a root's write
// must also move the header's root_offset, so it goes through saveRoot;
// any other node is just appended. This is what spec.md §3 means by
// isRoot "affects how writes are persisted".
func (n *Node[K, V]) persist(s *storage[K, V]) (int64, error) {
	if n.isRoot {
		return s.saveRoot(n)
	}
	return s.append(n)
}

// insertNonFull is spec.md §4.3's insertNonFull(elem). self must not be
// full and must be loaded.
func (n *Node[K, V]) insertNonFull(s *storage[K, V], key K, value V) error {
	if !n.loaded {
		return ErrNodeNotLoaded
	}

	idx, found := n.search(key)
	if found {
		return ErrDuplicateKey
	}

	if n.isLeaf() {
		n.elements = insertElementAt(n.elements, idx, element[K, V]{key: key, value: value})
		_, err := n.persist(s)
		return err
	}

	child, err := n.children[idx].load(s)
	if err != nil {
		return err
	}

	if child.isFull() {
		if err := n.split(s, idx); err != nil {
			return err
		}
		// The median element was just promoted into n.elements[idx];
		// the new element's position relative to it decides which of
		// the two post-split children to continue into.
		switch {
		case n.elements[idx].key.Less(key):
			idx++
		case key.Less(n.elements[idx].key):
			// unchanged: still the left-hand child
		default:
			return ErrDuplicateKey
		}
		child, err = n.children[idx].load(s)
		if err != nil {
			return err
		}
	}

	if err := child.insertNonFull(s, key, value); err != nil {
		return err
	}
	// child was re-persisted at a new offset by the recursive call (or by
	// its own split); n.children[idx] is the serialized form of that edge
	// and must track it, or the stale offset survives into n's own record
	// and a future decode from disk will find the pre-mutation child.
	n.children[idx].offset = child.offset
	_, err = n.persist(s)
	return err
}

// split is spec.md §4.3's split(at i). self must be loaded, internal, and
// children[i] must be full (2t-1 elements).
func (n *Node[K, V]) split(s *storage[K, V], i int) error {
	if n.isLeaf() {
		return fmt.Errorf("bstore: split called on a leaf's child index")
	}

	left, err := n.children[i].load(s)
	if err != nil {
		return err
	}
	if !left.isFull() {
		return fmt.Errorf("bstore: split(%d) called on a non-full child", i)
	}

	degree := left.minimumDegree
	median := left.elements[degree-1]

	right := &Node[K, V]{minimumDegree: degree, loaded: true}

	rightElements := make([]element[K, V], len(left.elements)-degree)
	copy(rightElements, left.elements[degree:])
	right.elements = rightElements
	left.elements = left.elements[:degree-1]

	if !left.isLeaf() {
		rightChildren := make([]*childEdge[K, V], len(left.children)-degree)
		copy(rightChildren, left.children[degree:])
		right.children = rightChildren
		left.children = left.children[:degree]
	}

	if _, err := s.append(left); err != nil {
		return err
	}
	if _, err := s.append(right); err != nil {
		return err
	}

	n.elements = insertElementAt(n.elements, i, median)
	n.children[i].offset = left.offset
	n.children = insertChildAt(n.children, i+1, &childEdge[K, V]{offset: right.offset, node: right})

	_, err = n.persist(s)
	return err
}

func insertElementAt[K Ordered[K], V any](elements []element[K, V], idx int, e element[K, V]) []element[K, V] {
	elements = append(elements, element[K, V]{})
	copy(elements[idx+1:], elements[idx:])
	elements[idx] = e
	return elements
}

func insertChildAt[K Ordered[K], V any](children []*childEdge[K, V], idx int, c *childEdge[K, V]) []*childEdge[K, V] {
	children = append(children, nil)
	copy(children[idx+1:], children[idx:])
	children[idx] = c
	return children
}

// Tree is the façade described in spec.md §4.4: the tree asks storage for
// the current root (loading on demand), walks downward splitting any full
// child before descent, writes each mutated node through storage into the
// write side, and commits on operation completion.
type Tree[K Ordered[K], V any] struct {
	storage       *storage[K, V]
	root          *Node[K, V]
	minimumDegree int
}

// Open opens the store at path, creating it with the given minimum degree
// if it does not yet exist. minimumDegree is ignored when opening an
// existing store; t is read back from the root record instead.
func Open[K Ordered[K], V any](path string, keyCodec Codec[K], valCodec Codec[V], opts ...StoreOption) (*Tree[K, V], error) {
	o := defaultStoreOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.minimumDegree < 2 {
		o.minimumDegree = 2
	}

	s, err := openStorage[K, V](path, o, keyCodec, valCodec)
	if err != nil {
		return nil, err
	}

	t := &Tree[K, V]{storage: s}

	empty, err := s.isEmpty()
	if err != nil {
		s.close()
		return nil, err
	}

	if empty {
		root := newLeaf[K, V](o.minimumDegree)
		root.isRoot = true
		if _, err := s.saveRoot(root); err != nil {
			s.close()
			return nil, err
		}
		if err := s.commit(); err != nil {
			s.close()
			return nil, err
		}
		t.root = root
		t.minimumDegree = o.minimumDegree
		return t, nil
	}

	root, err := s.readRoot()
	if err != nil {
		s.close()
		return nil, err
	}
	root.isRoot = true
	t.root = root
	t.minimumDegree = root.minimumDegree
	if root.minimumDegree != o.minimumDegree {
		o.logger.Info("minimumDegree ignored on reopen",
			"requested", o.minimumDegree, "actual", root.minimumDegree)
	}
	return t, nil
}

// Find delegates to root.find(key), as spec.md §4.4 prescribes.
func (t *Tree[K, V]) Find(key K) (V, bool, error) {
	return t.root.find(t.storage, key)
}

// Insert grows the root when full, then inserts via insertNonFull, then
// commits. Growth happens at most once per insert and always at the root,
// preserving the all-leaves-same-depth invariant.
func (t *Tree[K, V]) Insert(key K, value V) error {
	if t.root.isFull() {
		newRoot := &Node[K, V]{minimumDegree: t.minimumDegree, loaded: true, isRoot: true}
		t.root.isRoot = false
		newRoot.children = []*childEdge[K, V]{{offset: t.root.offset, node: t.root}}
		if err := newRoot.split(t.storage, 0); err != nil {
			return fmt.Errorf("%w: %w", ErrUnableToInsert, err)
		}
		t.root = newRoot
	}

	if err := t.root.insertNonFull(t.storage, key, value); err != nil {
		if errors.Is(err, ErrDuplicateKey) {
			return err
		}
		return fmt.Errorf("%w: %w", ErrUnableToInsert, err)
	}

	if err := t.storage.commit(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnableToInsert, err)
	}
	return nil
}

// Close releases the storage engine's file handles.
func (t *Tree[K, V]) Close() error {
	return t.storage.close()
}
