package compression

import "pgbtree/kv"

// fingerprint summarizes a page's payload cheaply enough to pick a
// strategy without fully encoding it, per spec §4.3 step 1.
type fingerprint struct {
	n          int
	totalBytes int

	keysAllString   bool
	commonPrefixLen int

	keysAllInt       bool
	monotonicRatio   float64 // fraction of consecutive keys non-decreasing

	distinctValues int
	distinctRatio  float64
	maxRunLen      int
}

func computeFingerprint(entries []kv.Pair) fingerprint {
	fp := fingerprint{n: len(entries)}
	if fp.n == 0 {
		return fp
	}

	fp.keysAllString = true
	fp.keysAllInt = true
	for _, e := range entries {
		fp.totalBytes += scalarSize(e.Key) + scalarSize(e.Value)
		if _, ok := e.Key.(string); !ok {
			fp.keysAllString = false
		}
		if _, ok := e.Key.(int64); !ok {
			fp.keysAllInt = false
		}
	}

	if fp.keysAllString {
		fp.commonPrefixLen = commonPrefix(entries)
	}

	if fp.n > 1 && fp.keysAllInt {
		nonDecreasing := 0
		for i := 1; i < fp.n; i++ {
			c, err := kv.Compare(entries[i].Key, entries[i-1].Key)
			if err == nil && c >= 0 {
				nonDecreasing++
			}
		}
		fp.monotonicRatio = float64(nonDecreasing) / float64(fp.n-1)
	}

	seen := make(map[string]int, fp.n)
	run, prevKey := 0, ""
	first := true
	for _, e := range entries {
		enc, err := encodeScalar(nil, e.Value)
		key := ""
		if err == nil {
			key = string(enc)
		}
		seen[key]++
		if first || key != prevKey {
			if run > fp.maxRunLen {
				fp.maxRunLen = run
			}
			run = 1
		} else {
			run++
		}
		prevKey = key
		first = false
	}
	if run > fp.maxRunLen {
		fp.maxRunLen = run
	}
	fp.distinctValues = len(seen)
	fp.distinctRatio = float64(fp.distinctValues) / float64(fp.n)

	return fp
}

// commonPrefix returns the length of the longest string shared by every
// key's leading bytes. Keys must all be strings (checked by the caller).
func commonPrefix(entries []kv.Pair) int {
	first, ok := entries[0].Key.(string)
	if !ok || len(entries) == 0 {
		return 0
	}
	n := len(first)
	for _, e := range entries[1:] {
		s := e.Key.(string)
		if len(s) < n {
			n = len(s)
		}
		for i := 0; i < n; i++ {
			if s[i] != first[i] {
				n = i
				break
			}
		}
		if n == 0 {
			break
		}
	}
	return n
}
