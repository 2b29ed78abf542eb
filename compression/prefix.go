package compression

import (
	"encoding/binary"
	"fmt"

	"pgbtree/kv"
)

// prefixStrategy stores a string key prefix shared by every entry once,
// plus a per-entry tail. It targets pages like a leaf full of
// "user_001".."user_008" keys (spec scenario 4).
type prefixStrategy struct{}

func (prefixStrategy) tag() StrategyTag { return TagPrefix }

func (prefixStrategy) applicable(fp fingerprint) bool {
	return fp.n > 1 && fp.keysAllString && fp.commonPrefixLen >= 4
}

func (prefixStrategy) estimate(_ []kv.Pair, fp fingerprint) float64 {
	savings := fp.commonPrefixLen * (fp.n - 1)
	return ratioAfterSavings(fp.totalBytes, savings)
}

func (prefixStrategy) encode(entries []kv.Pair, fp fingerprint) ([]byte, Metadata, error) {
	prefix := entries[0].Key.(string)[:fp.commonPrefixLen]

	buf := make([]byte, 0, fp.totalBytes/2+8)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(prefix)))
	buf = append(buf, prefix...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))

	for _, e := range entries {
		key, ok := e.Key.(string)
		if !ok {
			return nil, Metadata{}, fmt.Errorf("compression: prefix strategy requires string keys")
		}
		tail := key[fp.commonPrefixLen:]
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(tail)))
		buf = append(buf, tail...)
		var err error
		buf, err = encodeScalar(buf, e.Value)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	return buf, Metadata{Tag: TagPrefix, Count: len(entries), Prefix: prefix}, nil
}

func (prefixStrategy) decode(blob []byte, meta Metadata) ([]kv.Pair, error) {
	if len(blob) < 2 {
		return nil, fmt.Errorf("compression: prefix blob too short")
	}
	prefixLen := int(binary.BigEndian.Uint16(blob[:2]))
	blob = blob[2:]
	if len(blob) < prefixLen {
		return nil, fmt.Errorf("compression: prefix blob truncated prefix")
	}
	prefix := string(blob[:prefixLen])
	blob = blob[prefixLen:]

	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: prefix blob missing count")
	}
	count := int(binary.BigEndian.Uint32(blob[:4]))
	blob = blob[4:]

	entries := make([]kv.Pair, 0, count)
	for i := 0; i < count; i++ {
		if len(blob) < 2 {
			return nil, fmt.Errorf("compression: prefix blob truncated tail length")
		}
		tailLen := int(binary.BigEndian.Uint16(blob[:2]))
		blob = blob[2:]
		if len(blob) < tailLen {
			return nil, fmt.Errorf("compression: prefix blob truncated tail")
		}
		tail := string(blob[:tailLen])
		blob = blob[tailLen:]

		val, rest, err := decodeScalar(blob)
		if err != nil {
			return nil, fmt.Errorf("compression: prefix blob value[%d]: %w", i, err)
		}
		blob = rest

		entries = append(entries, kv.Pair{Key: prefix + tail, Value: val})
	}
	_ = meta
	return entries, nil
}

// ratioAfterSavings returns an estimated compressed/original ratio given
// a modeled byte savings, clamped to a sane [0, 2] range so a strategy
// that actively hurts still sorts behind ones that help.
func ratioAfterSavings(totalBytes, savings int) float64 {
	if totalBytes <= 0 {
		return 1
	}
	ratio := 1 - float64(savings)/float64(totalBytes)
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 2 {
		ratio = 2
	}
	return ratio
}
