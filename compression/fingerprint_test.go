package compression

import (
	"testing"

	"pgbtree/kv"
)

func TestComputeFingerprint_CommonPrefix(t *testing.T) {
	entries := []kv.Pair{
		{Key: "user_001", Value: int64(1)},
		{Key: "user_002", Value: int64(2)},
		{Key: "user_003", Value: int64(3)},
	}
	fp := computeFingerprint(entries)
	if !fp.keysAllString {
		t.Fatalf("expected keysAllString")
	}
	if fp.commonPrefixLen != 7 {
		t.Fatalf("expected common prefix length 7, got %d", fp.commonPrefixLen)
	}
}

func TestComputeFingerprint_Monotonic(t *testing.T) {
	entries := []kv.Pair{
		{Key: int64(1000), Value: "a"},
		{Key: int64(1001), Value: "b"},
		{Key: int64(1002), Value: "c"},
	}
	fp := computeFingerprint(entries)
	if !fp.keysAllInt {
		t.Fatalf("expected keysAllInt")
	}
	if fp.monotonicRatio != 1 {
		t.Fatalf("expected fully monotonic, got %f", fp.monotonicRatio)
	}
}

func TestComputeFingerprint_DistinctRatio(t *testing.T) {
	entries := []kv.Pair{
		{Key: int64(1), Value: "x"},
		{Key: int64(2), Value: "x"},
		{Key: int64(3), Value: "y"},
		{Key: int64(4), Value: "x"},
	}
	fp := computeFingerprint(entries)
	if fp.distinctValues != 2 {
		t.Fatalf("expected 2 distinct values, got %d", fp.distinctValues)
	}
	if fp.maxRunLen != 2 {
		t.Fatalf("expected max run length 2, got %d", fp.maxRunLen)
	}
}

func TestComputeFingerprint_Empty(t *testing.T) {
	fp := computeFingerprint(nil)
	if fp.n != 0 {
		t.Fatalf("expected n=0 for empty input")
	}
}
