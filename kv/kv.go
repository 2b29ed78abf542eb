// Package kv defines the key/value pair shared by the B-tree and the
// compression layer, plus the total order the engine imposes on keys.
package kv

import (
	"bytes"
	"errors"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ErrIncomparable is returned by Compare when a and b are not members
// of the same totally-ordered domain (nil, or dynamic types that are
// not jointly ordered).
var ErrIncomparable = errors.New("kv: incomparable keys")

// collator orders strings the way PostgreSQL's default collation does:
// by linguistic weight rather than raw byte value, so case and accent
// variants sort next to their base letter instead of by codepoint.
// Collator is not safe for concurrent use; the engine this package
// backs is single-threaded by design and takes no locks.
var collator = collate.New(language.Und)

// Pair bundles a totally-ordered Key with an opaque Value. A page in
// the B-tree holds a sorted sequence of Pairs; the compression layer
// transforms the same sequence reversibly.
type Pair struct {
	Key   any
	Value any
}

// Compare orders two keys, returning -1, 0, or 1. Supported key kinds
// are int64, float64, string, bool, time.Time, and []byte (ordered
// lexicographically, byte by byte). A mixed int64/float64 comparison
// promotes the integer operand to float64. Returns ErrIncomparable if a
// or b is nil, or if their dynamic types are not jointly ordered.
//
// []byte is accepted here mainly so Equal can match a []byte-valued
// Delete against a []byte-valued entry; the engine's own keys are never
// []byte in practice (see valuecodec.go's value domain).
func Compare(a, b any) (int, error) {
	if a == nil || b == nil {
		return 0, ErrIncomparable
	}
	switch av := a.(type) {
	case int64:
		switch bv := b.(type) {
		case int64:
			return compareInt64(av, bv), nil
		case float64:
			return compareFloat64(float64(av), bv), nil
		}
	case float64:
		switch bv := b.(type) {
		case float64:
			return compareFloat64(av, bv), nil
		case int64:
			return compareFloat64(av, float64(bv)), nil
		}
	case string:
		if bv, ok := b.(string); ok {
			return collator.CompareString(av, bv), nil
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return compareBool(av, bv), nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1, nil
			case av.After(bv):
				return 1, nil
			default:
				return 0, nil
			}
		}
	case []byte:
		if bv, ok := b.([]byte); ok {
			return bytes.Compare(av, bv), nil
		}
	}
	return 0, ErrIncomparable
}

// Equal reports whether a and b compare equal under Compare, treating
// incomparable pairs as unequal.
func Equal(a, b any) bool {
	c, err := Compare(a, b)
	return err == nil && c == 0
}

func compareInt64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareFloat64(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}
