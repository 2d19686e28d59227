// Package abtree implements an (a,b)-tree: an ordered key-value map with logarithmic
// Find/Add/Remove, split-on-overflow and merge-or-rotate-on-underflow. Every non-root
// node holds between a-1 and b-1 keys; all conceptual external leaves sit at the same
// depth. The tree owns its nodes strictly top-down — children never point back at their
// parent — so Remove tracks the ancestor path on a per-call stack instead.
package abtree

import (
	"LatticeDB/types"
	"fmt"
)

// Node is a single (a,b)-tree node: an ordered sequence of KeyData plus, on every
// layer above the last, exactly len(keys)+1 children. A node on the last internal
// layer has no children — its conceptual leaves are implicit and carry no data.
type Node struct {
	keys     []types.KeyData
	children []*Node
}

func (n *Node) isLeaf() bool {
	return len(n.children) == 0
}

// Tree is a (possibly empty) (a,b)-tree with immutable parameters a and b.
type Tree struct {
	root *Node
	a, b int
}

// New constructs an empty tree with the given (a,b) parameters. Construction fails if
// a < 2 or b < 2*a-1.
func New(a, b int) (*Tree, error) {
	if a < 2 {
		return nil, fmt.Errorf("abtree: a must be >= 2, got %d", a)
	}
	if b < 2*a-1 {
		return nil, fmt.Errorf("abtree: b must be >= 2*a-1 (%d), got %d", 2*a-1, b)
	}
	return &Tree{a: a, b: b}, nil
}

// A returns the tree's lower bound parameter.
func (t *Tree) A() int { return t.a }

// B returns the tree's upper bound parameter.
func (t *Tree) B() int { return t.b }

// Empty reports whether the tree holds no keys at all.
func (t *Tree) Empty() bool { return t.root == nil }

// locate performs a binary search over node.keys for key, returning the index at
// which key sits (if found) or the index of the child subtree that could contain it
// (if not). It mirrors spec section 4.4's descent rule: the smallest i such that
// key < keys[i], or len(keys) if no such i exists.
func locate(n *Node, key types.Key) (idx int, found bool) {
	lo, hi := 0, len(n.keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if n.keys[mid].Key < key {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo, lo < len(n.keys) && n.keys[lo].Key == key
}

// insertKeyAt shifts keys right starting at idx and writes kd into the gap.
func insertKeyAt(n *Node, idx int, kd types.KeyData) {
	n.keys = append(n.keys, types.KeyData{})
	copy(n.keys[idx+1:], n.keys[idx:])
	n.keys[idx] = kd
}

// removeKeyAt deletes the key at idx, shifting the remainder left.
func removeKeyAt(n *Node, idx int) types.KeyData {
	removed := n.keys[idx]
	n.keys = append(n.keys[:idx], n.keys[idx+1:]...)
	return removed
}

// insertChildPairAt replaces the child at idx with the two children left, right.
func insertChildPairAt(n *Node, idx int, left, right *Node) {
	n.children = append(n.children, nil)
	copy(n.children[idx+2:], n.children[idx+1:])
	n.children[idx] = left
	n.children[idx+1] = right
}

// removeChildAt deletes the child pointer at idx, shifting the remainder left.
func removeChildAt(n *Node, idx int) {
	n.children = append(n.children[:idx], n.children[idx+1:]...)
}
