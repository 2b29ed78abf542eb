package compression

import (
	"testing"
	"time"
)

func TestScalarCodec_RoundTrip(t *testing.T) {
	cases := []any{
		nil,
		int64(42),
		int64(-7),
		float64(3.14159),
		"hello, world",
		"",
		true,
		false,
		time.Date(2026, 8, 6, 12, 0, 0, 0, time.UTC),
		[]byte{0x01, 0x02, 0x03},
	}

	for _, v := range cases {
		buf, err := encodeScalar(nil, v)
		if err != nil {
			t.Fatalf("encodeScalar(%v): %v", v, err)
		}
		got, rest, err := decodeScalar(buf)
		if err != nil {
			t.Fatalf("decodeScalar(%v): %v", v, err)
		}
		if len(rest) != 0 {
			t.Fatalf("decodeScalar(%v) left %d trailing bytes", v, len(rest))
		}
		switch want := v.(type) {
		case []byte:
			gotBytes, ok := got.([]byte)
			if !ok || string(gotBytes) != string(want) {
				t.Fatalf("round-trip mismatch for %v: got %v", v, got)
			}
		case time.Time:
			gotTime, ok := got.(time.Time)
			if !ok || !gotTime.Equal(want) {
				t.Fatalf("round-trip mismatch for %v: got %v", v, got)
			}
		default:
			if got != v {
				t.Fatalf("round-trip mismatch: got %v (%T) want %v (%T)", got, got, v, v)
			}
		}
	}
}

func TestScalarCodec_Concatenated(t *testing.T) {
	var buf []byte
	values := []any{int64(1), "two", float64(3), true}
	for _, v := range values {
		var err error
		buf, err = encodeScalar(buf, v)
		if err != nil {
			t.Fatalf("encodeScalar(%v): %v", v, err)
		}
	}
	for _, want := range values {
		got, rest, err := decodeScalar(buf)
		if err != nil {
			t.Fatalf("decodeScalar: %v", err)
		}
		if got != want {
			t.Fatalf("got %v want %v", got, want)
		}
		buf = rest
	}
	if len(buf) != 0 {
		t.Fatalf("expected no trailing bytes, got %d", len(buf))
	}
}
