package table

import (
	"cmp"

	"github.com/google/btree"
)

// Backing is the key-to-column store behind a Table. Implementations decide
// lookup cost and iteration order; they must not change any other observable
// behavior. Range must visit every column exactly once and stop when fn
// returns false. A Table never changes the key set from inside Range.
type Backing[K comparable, V any] interface {
	Get(key K) (*Column[V], bool)
	Put(key K, col *Column[V])
	Delete(key K) (*Column[V], bool)
	Len() int
	Range(fn func(key K, col *Column[V]) bool)
}

// BackingFactory creates an empty Backing sized for about capacity columns
type BackingFactory[K comparable, V any] func(capacity int) Backing[K, V]

// HashBacking returns a Backing over a built-in Go map. It is the default.
func HashBacking[K comparable, V any](capacity int) Backing[K, V] {
	return hashBacking[K, V](make(map[K]*Column[V], capacity))
}

type hashBacking[K comparable, V any] map[K]*Column[V]

func (b hashBacking[K, V]) Get(key K) (*Column[V], bool) {
	col, ok := b[key]
	return col, ok
}

func (b hashBacking[K, V]) Put(key K, col *Column[V]) { b[key] = col }

func (b hashBacking[K, V]) Delete(key K) (*Column[V], bool) {
	col, ok := b[key]
	if ok {
		delete(b, key)
	}
	return col, ok
}

func (b hashBacking[K, V]) Len() int { return len(b) }

func (b hashBacking[K, V]) Range(fn func(key K, col *Column[V]) bool) {
	for k, col := range b {
		if !fn(k, col) {
			return
		}
	}
}

// btreeDegree matches the degree google/btree recommends for in-memory use
const btreeDegree = 32

type btreeEntry[K cmp.Ordered, V any] struct {
	key K
	col *Column[V]
}

// OrderedBacking returns a Backing over a B-tree. Range visits keys in
// ascending order. The capacity hint is ignored.
func OrderedBacking[K cmp.Ordered, V any](_ int) Backing[K, V] {
	return &orderedBacking[K, V]{
		tree: btree.NewG(btreeDegree, func(a, b btreeEntry[K, V]) bool {
			return cmp.Less(a.key, b.key)
		}),
	}
}

type orderedBacking[K cmp.Ordered, V any] struct {
	tree *btree.BTreeG[btreeEntry[K, V]]
}

func (b *orderedBacking[K, V]) Get(key K) (*Column[V], bool) {
	e, ok := b.tree.Get(btreeEntry[K, V]{key: key})
	return e.col, ok
}

func (b *orderedBacking[K, V]) Put(key K, col *Column[V]) {
	b.tree.ReplaceOrInsert(btreeEntry[K, V]{key: key, col: col})
}

func (b *orderedBacking[K, V]) Delete(key K) (*Column[V], bool) {
	e, ok := b.tree.Delete(btreeEntry[K, V]{key: key})
	return e.col, ok
}

func (b *orderedBacking[K, V]) Len() int { return b.tree.Len() }

func (b *orderedBacking[K, V]) Range(fn func(key K, col *Column[V]) bool) {
	b.tree.Ascend(func(e btreeEntry[K, V]) bool {
		return fn(e.key, e.col)
	})
}
