package btree

import (
	"testing"

	"pgbtree/compression"
	"pgbtree/kv"
)

func TestMinMaxEntries(t *testing.T) {
	if got := maxEntries(256); got != 255 {
		t.Fatalf("maxEntries(256) = %d, want 255", got)
	}
	if got := minEntries(256); got != 127 {
		t.Fatalf("minEntries(256) = %d, want 127", got)
	}
	if got := minEntries(4); got != 1 {
		t.Fatalf("minEntries(4) = %d, want 1", got)
	}
}

func TestNode_EnsureMaterialized_RoundTrips(t *testing.T) {
	mgr := compression.NewManager(0.9, 0.95, 128)
	n := &node{
		isLeaf: true,
		entries: []kv.Pair{
			{Key: "user_001", Value: int64(1)},
			{Key: "user_002", Value: int64(2)},
			{Key: "user_003", Value: int64(3)},
			{Key: "user_004", Value: int64(4)},
		},
	}
	original := append([]kv.Pair{}, n.entries...)

	ok := n.compress(mgr)
	if !ok {
		t.Fatalf("expected compression to succeed")
	}
	if !n.compressed || n.entries != nil {
		t.Fatalf("expected page to be compressed with entries cleared")
	}

	if err := n.ensureMaterialized(mgr); err != nil {
		t.Fatalf("ensureMaterialized: %v", err)
	}
	if n.compressed {
		t.Fatalf("expected page to be materialized")
	}
	if len(n.entries) != len(original) {
		t.Fatalf("got %d entries, want %d", len(n.entries), len(original))
	}
	for i, e := range original {
		if n.entries[i].Key != e.Key || n.entries[i].Value != e.Value {
			t.Fatalf("entry %d mismatch: got %+v want %+v", i, n.entries[i], e)
		}
	}
}

func TestNode_EnsureMaterialized_NoOpWhenAlreadyMaterialized(t *testing.T) {
	mgr := compression.NewManager(0.9, 0.95, 128)
	n := &node{isLeaf: true, entries: []kv.Pair{{Key: int64(1), Value: "a"}}}
	if err := n.ensureMaterialized(mgr); err != nil {
		t.Fatalf("ensureMaterialized: %v", err)
	}
	if len(n.entries) != 1 {
		t.Fatalf("expected entries untouched")
	}
}

func TestNode_Siblings(t *testing.T) {
	parent := &node{}
	left := &node{parent: parent}
	mid := &node{parent: parent}
	right := &node{parent: parent}
	parent.children = []*node{left, mid, right}

	if mid.prevSibling() != left {
		t.Fatalf("expected left as prevSibling of mid")
	}
	if mid.nextSibling() != right {
		t.Fatalf("expected right as nextSibling of mid")
	}
	if left.prevSibling() != nil {
		t.Fatalf("expected nil prevSibling for leftmost child")
	}
	if right.nextSibling() != nil {
		t.Fatalf("expected nil nextSibling for rightmost child")
	}
}
