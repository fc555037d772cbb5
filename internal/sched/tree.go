package sched

import "github.com/emirpasic/gods/trees/redblacktree"

// treeKey orders queue entries. The primary key is the 32-bit queue key in
// plain unsigned order; seq disambiguates duplicates in insertion order.
// The key space is circular, but the tree itself stays linear: callers start
// lookups at (position - lookBack) and fall back to the tree minimum when
// the upper half is empty, which is where the wrap is absorbed.
type treeKey struct {
	key uint32
	seq uint64
}

func treeCmp(a, b any) int {
	ka, kb := a.(treeKey), b.(treeKey)
	switch {
	case ka.key < kb.key:
		return -1
	case ka.key > kb.key:
		return 1
	case ka.seq < kb.seq:
		return -1
	case ka.seq > kb.seq:
		return 1
	default:
		return 0
	}
}

// keyTree is one ordered queue (run queue or wait queue). Removal requires
// the exact treeKey handed out by insert, so callers track membership and
// never unlink an absent entry.
type keyTree struct {
	rbt *redblacktree.Tree
	seq uint64
}

func newKeyTree() *keyTree {
	return &keyTree{rbt: redblacktree.NewWith(treeCmp)}
}

func (kt *keyTree) len() int { return kt.rbt.Size() }

func (kt *keyTree) insert(key uint32, t *Task) treeKey {
	kt.seq++
	k := treeKey{key: key, seq: kt.seq}
	kt.rbt.Put(k, t)
	return k
}

func (kt *keyTree) remove(k treeKey) { kt.rbt.Remove(k) }

// first returns the minimum entry, or ok=false on an empty tree.
func (kt *keyTree) first() (treeKey, *Task, bool) {
	n := kt.rbt.Left()
	if n == nil {
		return treeKey{}, nil, false
	}
	return n.Key.(treeKey), n.Value.(*Task), true
}

// ceiling returns the lowest entry with key >= from, or ok=false when no
// such entry exists in the upper part of the key space.
func (kt *keyTree) ceiling(from uint32) (treeKey, *Task, bool) {
	n, ok := kt.rbt.Ceiling(treeKey{key: from})
	if !ok {
		return treeKey{}, nil, false
	}
	return n.Key.(treeKey), n.Value.(*Task), true
}
