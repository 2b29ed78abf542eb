package compression

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"pgbtree/kv"
)

// generalStrategy is the fallback deflate-family codec for payloads
// that don't fit any content-aware strategy. It serializes every key
// and value through the shared scalar codec, then runs the flat buffer
// through klauspost/compress/flate — a drop-in, higher-throughput
// replacement for the standard library's compress/flate.
type generalStrategy struct {
	minPayload int
}

func (generalStrategy) tag() StrategyTag { return TagGeneral }

func (g generalStrategy) applicable(fp fingerprint) bool {
	return fp.totalBytes >= g.minPayload
}

// estimate returns a fixed 0.6 ratio (a flat 40% saving) for the
// general-purpose fallback rather than running flate speculatively.
func (generalStrategy) estimate(_ []kv.Pair, _ fingerprint) float64 {
	return 0.6
}

func (generalStrategy) encode(entries []kv.Pair, fp fingerprint) ([]byte, Metadata, error) {
	flat := make([]byte, 0, fp.totalBytes)
	for _, e := range entries {
		var err error
		flat, err = encodeScalar(flat, e.Key)
		if err != nil {
			return nil, Metadata{}, err
		}
		flat, err = encodeScalar(flat, e.Value)
		if err != nil {
			return nil, Metadata{}, err
		}
	}

	var out bytes.Buffer
	w, err := flate.NewWriter(&out, flate.DefaultCompression)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("compression: general: %w", err)
	}
	if _, err := w.Write(flat); err != nil {
		return nil, Metadata{}, fmt.Errorf("compression: general: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, Metadata{}, fmt.Errorf("compression: general: %w", err)
	}

	buf := binary.BigEndian.AppendUint32(nil, uint32(len(entries)))
	buf = append(buf, out.Bytes()...)
	return buf, Metadata{Tag: TagGeneral, Count: len(entries)}, nil
}

func (generalStrategy) decode(blob []byte, meta Metadata) ([]kv.Pair, error) {
	if len(blob) < 4 {
		return nil, fmt.Errorf("compression: general blob missing count")
	}
	count := int(binary.BigEndian.Uint32(blob[:4]))
	blob = blob[4:]

	r := flate.NewReader(bytes.NewReader(blob))
	defer r.Close()
	flat, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("compression: general: inflate: %w", err)
	}

	entries := make([]kv.Pair, count)
	for i := 0; i < count; i++ {
		key, rest, err := decodeScalar(flat)
		if err != nil {
			return nil, fmt.Errorf("compression: general blob key[%d]: %w", i, err)
		}
		val, rest2, err := decodeScalar(rest)
		if err != nil {
			return nil, fmt.Errorf("compression: general blob value[%d]: %w", i, err)
		}
		flat = rest2
		entries[i] = kv.Pair{Key: key, Value: val}
	}
	_ = meta
	return entries, nil
}
