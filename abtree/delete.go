package abtree

import "LatticeDB/types"

// Remove deletes key if present; it is a no-op (leaving the tree byte-identical) if
// key is absent. Deletion proceeds in five phases: descent, reduction of an
// internal-node delete to a last-internal-layer delete via the in-order predecessor,
// physical removal, underflow fixup (merge-or-rotate), and root collapse.
func (t *Tree) Remove(key types.Key) {
	if t.root == nil {
		return
	}

	// Phase 1 + 2: descent, reducing an internal-node match to a leaf delete.
	var path []*Node
	var slots []int
	node := t.root
	var target *Node

	for {
		idx, found := locate(node, key)
		if found {
			if node.isLeaf() {
				target = node
				removeKeyAt(target, idx)
				break
			}

			// Phase 2: find the in-order predecessor: the left child of the
			// matched key, then always descending rightmost.
			path = append(path, node)
			slots = append(slots, idx)
			succ := node.children[idx]
			for !succ.isLeaf() {
				path = append(path, succ)
				slots = append(slots, len(succ.children)-1)
				succ = succ.children[len(succ.children)-1]
			}

			kSucc := succ.keys[len(succ.keys)-1]
			node.keys[idx] = kSucc
			target = succ
			removeKeyAt(target, len(target.keys)-1)
			break
		}

		if node.isLeaf() {
			// Key absent: no-op, tree untouched.
			return
		}

		path = append(path, node)
		slots = append(slots, idx)
		node = node.children[idx]
	}

	// Phase 4: fix underflow, walking back up the recorded path.
	fixUnderflow(t, target, path, slots)

	// Phase 5: root collapse.
	if t.root != nil && len(t.root.keys) == 0 {
		if len(t.root.children) > 0 {
			t.root = t.root.children[0]
		} else {
			t.root = nil
		}
	}
}

func fixUnderflow(t *Tree, d *Node, path []*Node, slots []int) {
	for len(path) > 0 && len(d.keys) < t.a-1 {
		parent := path[len(path)-1]
		dSlot := slots[len(slots)-1]
		path = path[:len(path)-1]
		slots = slots[:len(slots)-1]

		leftSibIdx := dSlot - 1
		useLeft := leftSibIdx >= 0
		var sibIdx, pivotIdx int
		if useLeft {
			sibIdx = leftSibIdx
			pivotIdx = leftSibIdx
		} else {
			sibIdx = dSlot + 1
			pivotIdx = dSlot
		}
		sibling := parent.children[sibIdx]

		if len(sibling.keys) == t.a-1 {
			// Merge D and its sibling through the parent's pivot key.
			var left, right *Node
			if useLeft {
				left, right = sibling, d
			} else {
				left, right = d, sibling
			}

			merged := &Node{
				keys: append(append(append([]types.KeyData{}, left.keys...), parent.keys[pivotIdx]), right.keys...),
			}
			if !left.isLeaf() {
				merged.children = append(append([]*Node{}, left.children...), right.children...)
			}

			removeKeyAt(parent, pivotIdx)
			// Both child slots collapse into one: the lower of the two indices.
			lowSlot := dSlot
			if sibIdx < dSlot {
				lowSlot = sibIdx
			}
			parent.children[lowSlot] = merged
			removeChildAt(parent, lowSlot+1)

			d = parent
			continue
		}

		// Rotate one key (and, if internal, one child) through the parent's pivot.
		if !useLeft {
			// Sibling is to the right of D.
			d.keys = append(d.keys, parent.keys[pivotIdx])
			parent.keys[pivotIdx] = sibling.keys[0]
			removeKeyAt(sibling, 0)
			if !sibling.isLeaf() {
				d.children = append(d.children, sibling.children[0])
				sibling.children = sibling.children[1:]
			}
		} else {
			// Sibling is to the left of D.
			d.keys = append([]types.KeyData{parent.keys[pivotIdx]}, d.keys...)
			parent.keys[pivotIdx] = sibling.keys[len(sibling.keys)-1]
			removeKeyAt(sibling, len(sibling.keys)-1)
			if !sibling.isLeaf() {
				last := sibling.children[len(sibling.children)-1]
				sibling.children = sibling.children[:len(sibling.children)-1]
				d.children = append([]*Node{last}, d.children...)
			}
		}
		return
	}
}
