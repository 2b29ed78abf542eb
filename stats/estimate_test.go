package stats

import (
	"testing"

	"pgbtree/btree"
	"pgbtree/config"
)

func newTestTree(t *testing.T) *btree.Tree {
	t.Helper()
	cfg := config.Default()
	cfg.Order = 4
	tree, err := btree.New(cfg)
	if err != nil {
		t.Fatalf("btree.New: %v", err)
	}
	return tree
}

func TestEstimateBytes_GrowsWithKeys(t *testing.T) {
	tree := newTestTree(t)
	empty := EstimateBytes(tree)

	for i := int64(0); i < 50; i++ {
		if err := tree.Insert(i, i); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	full := EstimateBytes(tree)
	if full <= empty {
		t.Fatalf("expected estimate to grow with inserted keys: empty=%d full=%d", empty, full)
	}
}

func TestMeasureBytes_NonZeroForPopulatedTree(t *testing.T) {
	tree := newTestTree(t)
	for i := int64(0); i < 20; i++ {
		if err := tree.Insert(i, "value"); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	measured := MeasureBytes(tree)
	if measured <= 0 {
		t.Fatalf("expected a positive measured size, got %d", measured)
	}
}

func TestMeasureBytes_ShrinksAfterCompression(t *testing.T) {
	tree := newTestTree(t)
	for i := 1; i <= 80; i++ {
		if err := tree.Insert("user_"+pad(i), int64(i)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	before := MeasureBytes(tree)
	tree.CompressAllPages()
	after := MeasureBytes(tree)
	if after >= before {
		t.Fatalf("expected compression to shrink measured size: before=%d after=%d", before, after)
	}
}

func pad(i int) string {
	s := "000"
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if len(digits) == 0 {
		digits = []byte{'0'}
	}
	return s[:len(s)-len(digits)] + string(digits)
}
