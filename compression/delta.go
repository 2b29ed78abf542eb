package compression

import (
	"encoding/binary"
	"fmt"

	"pgbtree/kv"
)

// deltaStrategy stores the first key as a base and every following key
// as the difference from its predecessor. It targets monotonic int64
// key runs — auto-increment IDs, timestamps — per spec scenario 5.
// Values are carried alongside unchanged; only keys are delta-encoded.
// float64 keys are out of scope: a float64 delta still costs a full
// 8-byte width, so there is no varint-width saving to model (see
// applicable).
type deltaStrategy struct{}

func (deltaStrategy) tag() StrategyTag { return TagDelta }

// applicable is int-key-only: a float64 key's delta still costs a full
// 8-byte width to store exactly (no variable-width float encoding is
// modeled), so there is never a real saving to offer over the raw
// 9-byte scalar encoding — unlike an int64 delta, whose varint shrinks
// with the gap between consecutive keys.
func (deltaStrategy) applicable(fp fingerprint) bool {
	return fp.n > 1 && fp.keysAllInt && fp.monotonicRatio >= 0.7
}

func (deltaStrategy) estimate(entries []kv.Pair, fp fingerprint) float64 {
	// Each non-base key costs scalarSize(int64) = 9 bytes (1 tag + 8
	// data) under every other strategy's accounting, matching
	// fp.totalBytes. Delta-encoding replaces that fixed 9-byte width
	// with a varint over the difference from the previous key, so the
	// per-entry saving is 9 minus that varint's length.
	const rawKeyWidth = 9
	savings := 0
	prev := entries[0].Key.(int64)
	for i := 1; i < len(entries); i++ {
		cur := entries[i].Key.(int64)
		savings += rawKeyWidth - varintLen(cur-prev)
		prev = cur
	}
	return ratioAfterSavings(fp.totalBytes, savings)
}

func (deltaStrategy) encode(entries []kv.Pair, fp fingerprint) ([]byte, Metadata, error) {
	buf := make([]byte, 0, fp.totalBytes/2+16)
	varintBuf := make([]byte, binary.MaxVarintLen64)

	base := entries[0].Key.(int64)
	n := binary.PutVarint(varintBuf, base)
	buf = append(buf, varintBuf[:n]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))
	prev := base
	for i := 1; i < len(entries); i++ {
		cur := entries[i].Key.(int64)
		n := binary.PutVarint(varintBuf, cur-prev)
		buf = append(buf, varintBuf[:n]...)
		prev = cur
	}

	for _, e := range entries {
		var err error
		buf, err = encodeScalar(buf, e.Value)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	return buf, Metadata{Tag: TagDelta, Count: len(entries)}, nil
}

func (deltaStrategy) decode(blob []byte, meta Metadata) ([]kv.Pair, error) {
	keys := make([]any, meta.Count)

	base, n := binary.Varint(blob)
	if n <= 0 {
		return nil, fmt.Errorf("compression: delta blob malformed int base")
	}
	blob = blob[n:]
	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: delta blob missing count")
	}
	blob = blob[4:]
	if meta.Count > 0 {
		keys[0] = base
	}
	prev := base
	for i := 1; i < meta.Count; i++ {
		d, n := binary.Varint(blob)
		if n <= 0 {
			return nil, fmt.Errorf("compression: delta blob malformed delta[%d]", i)
		}
		blob = blob[n:]
		prev += d
		keys[i] = prev
	}

	entries := make([]kv.Pair, meta.Count)
	for i := 0; i < meta.Count; i++ {
		val, rest, err := decodeScalar(blob)
		if err != nil {
			return nil, fmt.Errorf("compression: delta blob value[%d]: %w", i, err)
		}
		blob = rest
		entries[i] = kv.Pair{Key: keys[i], Value: val}
	}
	return entries, nil
}

// varintLen returns the number of bytes binary.PutVarint would use to
// encode v, used as the "width" term in the delta cost model.
func varintLen(v int64) int {
	buf := make([]byte, binary.MaxVarintLen64)
	return binary.PutVarint(buf, v)
}
