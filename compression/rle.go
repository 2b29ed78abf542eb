package compression

import (
	"encoding/binary"
	"fmt"

	"pgbtree/kv"
)

// rleStrategy stores runs of identical consecutive values as
// (value, count) pairs, targeting pages where one value (or a small
// rotation of values) dominates long stretches of entries.
type rleStrategy struct{}

func (rleStrategy) tag() StrategyTag { return TagRLE }

func (rleStrategy) applicable(fp fingerprint) bool {
	return fp.n > 0 && fp.maxRunLen*2 > fp.n
}

func (rleStrategy) estimate(entries []kv.Pair, fp fingerprint) float64 {
	savings := 0
	i := 0
	for i < len(entries) {
		j := i + 1
		for j < len(entries) && kv.Equal(entries[j].Value, entries[i].Value) {
			j++
		}
		run := j - i
		size := scalarSize(entries[i].Value)
		savings += (run - 1) * size
		i = j
	}
	// Measured against fp.totalBytes, the same basis every other
	// strategy's estimate uses, so selection compares ratios on equal
	// footing instead of RLE's value-only subtotal looking artificially
	// cheap next to a whole-page estimate.
	return ratioAfterSavings(fp.totalBytes, savings)
}

func (rleStrategy) encode(entries []kv.Pair, _ fingerprint) ([]byte, Metadata, error) {
	type runValue struct {
		value any
		count int
	}
	var runs []runValue
	i := 0
	for i < len(entries) {
		j := i + 1
		for j < len(entries) && kv.Equal(entries[j].Value, entries[i].Value) {
			j++
		}
		runs = append(runs, runValue{value: entries[i].Value, count: j - i})
		i = j
	}

	buf := make([]byte, 0, len(entries)*4)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(runs)))
	for _, r := range runs {
		var err error
		buf, err = encodeScalar(buf, r.value)
		if err != nil {
			return nil, Metadata{}, err
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(r.count))
	}

	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		var err error
		buf, err = encodeScalar(buf, e.Key)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	return buf, Metadata{Tag: TagRLE, Count: len(entries)}, nil
}

func (rleStrategy) decode(blob []byte, meta Metadata) ([]kv.Pair, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: rle blob missing run count")
	}
	runCount := int(binary.BigEndian.Uint32(blob[:4]))
	blob = blob[4:]

	values := make([]any, 0, meta.Count)
	for i := 0; i < runCount; i++ {
		v, rest, err := decodeScalar(blob)
		if err != nil {
			return nil, fmt.Errorf("compression: rle blob run[%d] value: %w", i, err)
		}
		blob = rest
		if len(blob) < 4 {
			return nil, fmt.Errorf("compression: rle blob run[%d] missing count", i)
		}
		count := int(binary.BigEndian.Uint32(blob[:4]))
		blob = blob[4:]
		for c := 0; c < count; c++ {
			values = append(values, v)
		}
	}

	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: rle blob missing entry count")
	}
	count := int(binary.BigEndian.Uint32(blob[:4]))
	blob = blob[4:]
	if count != len(values) {
		return nil, fmt.Errorf("compression: rle blob run total %d does not match entry count %d", len(values), count)
	}

	entries := make([]kv.Pair, count)
	for i := 0; i < count; i++ {
		k, rest, err := decodeScalar(blob)
		if err != nil {
			return nil, fmt.Errorf("compression: rle blob key[%d]: %w", i, err)
		}
		blob = rest
		entries[i] = kv.Pair{Key: k, Value: values[i]}
	}
	return entries, nil
}
