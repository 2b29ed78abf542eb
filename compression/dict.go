package compression

import (
	"encoding/binary"
	"fmt"

	"pgbtree/kv"
)

// dictStrategy stores each distinct value once in a table and replaces
// every occurrence with a table index. It targets pages where values
// repeat heavily — status flags, category codes — even though keys do
// not (distinct/N < 0.5, spec §4.3).
type dictStrategy struct{}

func (dictStrategy) tag() StrategyTag { return TagDict }

func (dictStrategy) applicable(fp fingerprint) bool {
	return fp.n > 0 && fp.distinctRatio < 0.5
}

func (dictStrategy) estimate(entries []kv.Pair, fp fingerprint) float64 {
	totalValueBytes, distinctBytes := valueByteTotals(entries)
	tableOverhead := distinctBytes + fp.n*4 // table bytes once + uint32 index per entry
	savings := totalValueBytes - tableOverhead
	return ratioAfterSavings(fp.totalBytes, savings)
}

func valueByteTotals(entries []kv.Pair) (total, distinct int) {
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		enc, err := encodeScalar(nil, e.Value)
		if err != nil {
			continue
		}
		total += len(enc)
		key := string(enc)
		if !seen[key] {
			seen[key] = true
			distinct += len(enc)
		}
	}
	return total, distinct
}

func (dictStrategy) encode(entries []kv.Pair, _ fingerprint) ([]byte, Metadata, error) {
	table := make([]any, 0)
	index := make(map[string]int)
	indices := make([]int, len(entries))

	for i, e := range entries {
		enc, err := encodeScalar(nil, e.Value)
		if err != nil {
			return nil, Metadata{}, err
		}
		key := string(enc)
		idx, ok := index[key]
		if !ok {
			idx = len(table)
			index[key] = idx
			table = append(table, e.Value)
		}
		indices[i] = idx
	}

	buf := make([]byte, 0, len(entries)*8)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(table)))
	for _, v := range table {
		var err error
		buf, err = encodeScalar(buf, v)
		if err != nil {
			return nil, Metadata{}, err
		}
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))
	for i, e := range entries {
		var err error
		buf, err = encodeScalar(buf, e.Key)
		if err != nil {
			return nil, Metadata{}, err
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(indices[i]))
	}

	return buf, Metadata{Tag: TagDict, Count: len(entries), DictSize: len(table)}, nil
}

func (dictStrategy) decode(blob []byte, meta Metadata) ([]kv.Pair, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: dict blob missing table size")
	}
	tableSize := int(binary.BigEndian.Uint32(blob[:4]))
	blob = blob[4:]

	table := make([]any, tableSize)
	for i := 0; i < tableSize; i++ {
		v, rest, err := decodeScalar(blob)
		if err != nil {
			return nil, fmt.Errorf("compression: dict blob table[%d]: %w", i, err)
		}
		table[i] = v
		blob = rest
	}

	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: dict blob missing count")
	}
	count := int(binary.BigEndian.Uint32(blob[:4]))
	blob = blob[4:]

	entries := make([]kv.Pair, 0, count)
	for i := 0; i < count; i++ {
		key, rest, err := decodeScalar(blob)
		if err != nil {
			return nil, fmt.Errorf("compression: dict blob key[%d]: %w", i, err)
		}
		blob = rest
		if len(blob) < 4 {
			return nil, fmt.Errorf("compression: dict blob missing index[%d]", i)
		}
		idx := int(binary.BigEndian.Uint32(blob[:4]))
		blob = blob[4:]
		if idx < 0 || idx >= len(table) {
			return nil, fmt.Errorf("compression: dict blob index[%d]=%d out of range", i, idx)
		}
		entries = append(entries, kv.Pair{Key: key, Value: table[idx]})
	}
	_ = meta
	return entries, nil
}
