package abtree

import "fmt"

// Validate walks the tree and checks every structural invariant from the data model:
// per-node key-count bounds, children = keys+1 on internal non-last-layer nodes,
// strict intra-node ordering, subtree range containment, and equal leaf depth. It is
// used by tests, not by any production code path.
func (t *Tree) Validate() error {
	if t.root == nil {
		return nil
	}

	leafDepth := -1
	return validateNode(t, t.root, true, nil, nil, 0, &leafDepth)
}

func validateNode(t *Tree, n *Node, isRoot bool, lo, hi *string, depth int, leafDepth *int) error {
	k := len(n.keys)

	if !isRoot {
		if k < t.a-1 || k > t.b-1 {
			return fmt.Errorf("abtree: node at depth %d has %d keys, want [%d, %d]", depth, k, t.a-1, t.b-1)
		}
	} else if k > t.b-1 {
		return fmt.Errorf("abtree: root has %d keys, want <= %d", k, t.b-1)
	}

	for i := 1; i < k; i++ {
		if !(n.keys[i-1].Key < n.keys[i].Key) {
			return fmt.Errorf("abtree: keys not strictly increasing at depth %d, index %d", depth, i)
		}
	}
	if lo != nil && k > 0 && !(*lo < n.keys[0].Key) {
		return fmt.Errorf("abtree: node's first key %q not greater than lower bound %q", n.keys[0].Key, *lo)
	}
	if hi != nil && k > 0 && !(n.keys[k-1].Key < *hi) {
		return fmt.Errorf("abtree: node's last key %q not less than upper bound %q", n.keys[k-1].Key, *hi)
	}

	if n.isLeaf() {
		if *leafDepth == -1 {
			*leafDepth = depth
		} else if *leafDepth != depth {
			return fmt.Errorf("abtree: leaf at depth %d, expected %d", depth, *leafDepth)
		}
		return nil
	}

	if len(n.children) != k+1 {
		return fmt.Errorf("abtree: node at depth %d has %d keys but %d children", depth, k, len(n.children))
	}

	for i, child := range n.children {
		var childLo, childHi *string
		if i > 0 {
			childLo = &n.keys[i-1].Key
		} else {
			childLo = lo
		}
		if i < k {
			childHi = &n.keys[i].Key
		} else {
			childHi = hi
		}
		if err := validateNode(t, child, false, childLo, childHi, depth+1, leafDepth); err != nil {
			return err
		}
	}
	return nil
}
