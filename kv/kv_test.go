package kv

import (
	"testing"
	"time"
)

func TestCompare_Int64(t *testing.T) {
	cases := []struct {
		a, b any
		want int
	}{
		{int64(1), int64(2), -1},
		{int64(2), int64(1), 1},
		{int64(5), int64(5), 0},
	}
	for _, c := range cases {
		got, err := Compare(c.a, c.b)
		if err != nil {
			t.Fatalf("Compare(%v, %v) returned error: %v", c.a, c.b, err)
		}
		if got != c.want {
			t.Errorf("Compare(%v, %v) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestCompare_MixedNumeric(t *testing.T) {
	got, err := Compare(int64(3), float64(3.5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("Compare(3, 3.5) = %d, want -1", got)
	}
}

func TestCompare_String(t *testing.T) {
	got, err := Compare("alice", "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("Compare(alice, bob) = %d, want -1", got)
	}
}

func TestCompare_Bool(t *testing.T) {
	got, err := Compare(false, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("Compare(false, true) = %d, want -1", got)
	}
}

func TestCompare_Time(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	got, err := Compare(t1, t2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("Compare(t1, t2) = %d, want -1", got)
	}
}

func TestCompare_Bytes(t *testing.T) {
	got, err := Compare([]byte("alice"), []byte("bob"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != -1 {
		t.Errorf("Compare([]byte(alice), []byte(bob)) = %d, want -1", got)
	}
	if !Equal([]byte{1, 2, 3}, []byte{1, 2, 3}) {
		t.Error("Equal([]byte{1,2,3}, []byte{1,2,3}) = false, want true")
	}
}

func TestCompare_Incomparable(t *testing.T) {
	cases := []struct{ a, b any }{
		{nil, int64(1)},
		{int64(1), nil},
		{"x", int64(1)},
		{true, "x"},
	}
	for _, c := range cases {
		if _, err := Compare(c.a, c.b); err != ErrIncomparable {
			t.Errorf("Compare(%v, %v) error = %v, want ErrIncomparable", c.a, c.b, err)
		}
	}
}

func TestEqual(t *testing.T) {
	if !Equal(int64(5), int64(5)) {
		t.Error("Equal(5, 5) = false, want true")
	}
	if Equal(int64(5), int64(6)) {
		t.Error("Equal(5, 6) = true, want false")
	}
	if Equal("x", int64(1)) {
		t.Error("Equal(x, 1) = true, want false for incomparable pair")
	}
}
