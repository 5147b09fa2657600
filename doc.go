// Package bstore implements an embedded, single-file, on-disk ordered
// key/value index built as a B-tree of minimum degree t (in the sense of
// Cormen et al.). A single storage file holds the entire tree, persisting
// across process restarts.
//
// The package couples two layers on purpose: the B-tree algorithm (node
// layout, proactive split-on-descent insertion, ordered search) and the
// storage engine (record framing, root pointer, node addressing, and the
// copy-file commit protocol that makes in-place-looking mutation of
// variable-length node records safe on an append-only file). Correctness
// is joint between them — see storage.go and btree.go.
//
// Concurrent access from multiple goroutines or processes, deletion, and
// range iteration are out of scope; callers must serialise their own
// calls into a *Tree.
package bstore
