package btree

import (
	"pgbtree/compression"
	"pgbtree/kv"
)

// node is a single B-tree page: either a leaf holding (key, value)
// entries, or an internal page holding separator entries and child
// pointers. A page is always in exactly one of two states (invariant
// I5): materialized (entries populated, blob nil) or compressed
// (entries nil, blob + meta populated). Every operation that reads or
// mutates entries must call ensureMaterialized first.
//
// parent and nextLeaf are non-owning back-references (design note
// "Parent and sibling back-references"): the owning graph runs strictly
// parent -> children, modeled on storage/index/btree.go's btreeNode
// plus the nextSibling/prevSibling shape from bolt's node.rebalance.
type node struct {
	isLeaf   bool
	entries  []kv.Pair
	children []*node
	parent   *node
	nextLeaf *node

	compressed bool
	blob       []byte
	meta       compression.Metadata
}

// ensureMaterialized decompresses n in place if it is currently
// compressed. Idempotent: a already-materialized page is a no-op.
func (n *node) ensureMaterialized(mgr *compression.Manager) error {
	if !n.compressed {
		return nil
	}
	entries, err := mgr.Decompress(n.blob, n.meta)
	if err != nil {
		return &DecompressionError{Cause: err}
	}
	n.entries = entries
	n.blob = nil
	n.compressed = false
	return nil
}

// compress asks mgr to compress n's entries in place. A page that is
// already compressed, or whose entries don't clear the manager's
// acceptance thresholds, is left materialized — CompressionFailure is
// absorbed here, never surfaced to the caller (spec §7). The manager's
// own ByStrategy counters are the source of truth for bytes in/out
// (see CompressionReport.BytesSaved), so compress reports only whether
// it succeeded.
func (n *node) compress(mgr *compression.Manager) (ok bool) {
	if n.compressed || len(n.entries) == 0 {
		return false
	}
	blob, meta, accepted, err := mgr.Compress(n.entries)
	if err != nil || !accepted {
		return false
	}
	n.blob = blob
	n.meta = meta
	n.compressed = true
	n.entries = nil
	return true
}

// minEntries is the underflow threshold for a non-root page of the
// given order (spec §4.2: min = ceil(order/2) - 1).
func minEntries(order int) int {
	return (order+1)/2 - 1
}

// maxEntries is the overflow threshold: a page holding more than this
// many entries must split.
func maxEntries(order int) int {
	return order - 1
}

// childIndex returns the index of child within n.children, or -1 if
// child is not one of n's children. Modeled on bolt's
// node.childIndex/removeChild pair.
func (n *node) childIndex(child *node) int {
	for i, c := range n.children {
		if c == child {
			return i
		}
	}
	return -1
}

// nextSibling returns the node immediately to the right of n under the
// same parent, or nil if n is the rightmost child or has no parent.
func (n *node) nextSibling() *node {
	if n.parent == nil {
		return nil
	}
	idx := n.parent.childIndex(n)
	if idx < 0 || idx+1 >= len(n.parent.children) {
		return nil
	}
	return n.parent.children[idx+1]
}

// prevSibling returns the node immediately to the left of n under the
// same parent, or nil if n is the leftmost child or has no parent.
func (n *node) prevSibling() *node {
	if n.parent == nil {
		return nil
	}
	idx := n.parent.childIndex(n)
	if idx <= 0 {
		return nil
	}
	return n.parent.children[idx-1]
}
