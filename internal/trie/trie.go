// Package trie implements the identity-keyed trie used both by the
// expression factory's hash-consing table and by the evaluator's
// program/oracle memoization table (spec.md's "Eval trie"). Both are the
// same data structure: a path of *expr.Expr pointers leading to a
// payload, sound only because the factory hash-conses — two syntactically
// identical subterms are always the same pointer.
package trie

// Trie maps a sequence of keys (pointer identity, typically *expr.Expr)
// to a payload of type V. A node with no payload set is the "nil memo"
// used to mean "visited, not yet computed" in the evaluator.
type Trie[K comparable, V any] struct {
	children map[K]*Trie[K, V]
	data     V
	has      bool
}

// New returns an empty trie root.
func New[K comparable, V any]() *Trie[K, V] {
	return &Trie[K, V]{}
}

// Descend walks (and lazily creates) the path of child nodes for path,
// returning the trie node at the end of it.
func (t *Trie[K, V]) Descend(path ...K) *Trie[K, V] {
	cur := t
	for _, k := range path {
		if cur.children == nil {
			cur.children = make(map[K]*Trie[K, V])
		}
		next, ok := cur.children[k]
		if !ok {
			next = &Trie[K, V]{}
			cur.children[k] = next
		}
		cur = next
	}
	return cur
}

// Get returns the payload at node, and whether one was ever set.
func (t *Trie[K, V]) Get() (V, bool) { return t.data, t.has }

// Set stores the payload at node.
func (t *Trie[K, V]) Set(v V) { t.data = v; t.has = true }
