package abtree

import "LatticeDB/types"

// Add inserts key with value, or overwrites the existing value if key is already
// present. Insertion proceeds in three phases: descent (recording the ancestor path),
// insertion at the last internal layer, and repeated overflow-split propagation.
func (t *Tree) Add(key types.Key, value types.Value) {
	if t.root == nil {
		t.root = &Node{keys: []types.KeyData{{Key: key, Value: value}}}
		return
	}

	// Phase 1: descent, recording the ancestor path and the child slot taken at
	// each ancestor.
	var path []*Node
	var slots []int
	node := t.root
	for {
		idx, found := locate(node, key)
		if found {
			node.keys[idx].Value = value
			return
		}
		if node.isLeaf() {
			// Phase 2: insert at the last-internal-layer node.
			insertKeyAt(node, idx, types.KeyData{Key: key, Value: value})
			break
		}
		path = append(path, node)
		slots = append(slots, idx)
		node = node.children[idx]
	}

	// Phase 3: fix overflow, walking back up the recorded path.
	current := node
	for len(current.keys) >= t.b {
		left, right, mid := splitNode(current)

		if len(path) == 0 {
			t.root = &Node{
				keys:     []types.KeyData{mid},
				children: []*Node{left, right},
			}
			return
		}

		parent := path[len(path)-1]
		slot := slots[len(slots)-1]
		path = path[:len(path)-1]
		slots = slots[:len(slots)-1]

		insertKeyAt(parent, slot, mid)
		insertChildPairAt(parent, slot, left, right)

		current = parent
	}
}

// splitNode splits an overflowing node (b keys) into two halves around the
// left-biased middle key, per spec section 4.4's m = floor((k-1)/2) rule.
func splitNode(n *Node) (left, right *Node, mid types.KeyData) {
	k := len(n.keys)
	m := (k - 1) / 2
	mid = n.keys[m]

	left = &Node{keys: append([]types.KeyData{}, n.keys[:m]...)}
	right = &Node{keys: append([]types.KeyData{}, n.keys[m+1:]...)}

	if !n.isLeaf() {
		left.children = append([]*Node{}, n.children[:m+1]...)
		right.children = append([]*Node{}, n.children[m+1:]...)
	}

	return left, right, mid
}
