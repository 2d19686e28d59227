package abtree

import "LatticeDB/types"

// Find returns the value stored under key, or ok=false if the key is absent.
func (t *Tree) Find(key types.Key) (value types.Value, ok bool) {
	node := t.root
	for node != nil {
		idx, found := locate(node, key)
		if found {
			return node.keys[idx].Value, true
		}
		if node.isLeaf() {
			return types.Value{}, false
		}
		node = node.children[idx]
	}
	return types.Value{}, false
}
