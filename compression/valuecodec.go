package compression

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Scalar encoding: 1-byte type tag followed by type-specific data.
// Every strategy below that needs to carry a raw key or value through
// its blob reuses this codec, the way storage/row.go's encodeValue /
// decodeValue tags each field in mulldb's WAL records.
const (
	tagNull      byte = 0
	tagInteger   byte = 1
	tagFloat     byte = 2
	tagText      byte = 3
	tagBoolean   byte = 4
	tagTimestamp byte = 5
	tagBytes     byte = 6
)

// encodeScalar appends the binary encoding of v to buf.
func encodeScalar(buf []byte, v any) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return append(buf, tagNull), nil
	case int64:
		buf = append(buf, tagInteger)
		return binary.BigEndian.AppendUint64(buf, uint64(val)), nil
	case float64:
		buf = append(buf, tagFloat)
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(val)), nil
	case string:
		buf = append(buf, tagText)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(val)))
		return append(buf, val...), nil
	case bool:
		buf = append(buf, tagBoolean)
		if val {
			return append(buf, 1), nil
		}
		return append(buf, 0), nil
	case time.Time:
		buf = append(buf, tagTimestamp)
		usec := val.UnixMicro()
		return binary.BigEndian.AppendUint64(buf, uint64(usec)), nil
	case []byte:
		buf = append(buf, tagBytes)
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(val)))
		return append(buf, val...), nil
	default:
		return nil, fmt.Errorf("compression: unsupported scalar type %T", v)
	}
}

// decodeScalar reads one value from data, returning the value and the
// remaining bytes.
func decodeScalar(data []byte) (any, []byte, error) {
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("compression: empty scalar data")
	}
	tag := data[0]
	data = data[1:]

	switch tag {
	case tagNull:
		return nil, data, nil
	case tagInteger:
		if len(data) < 8 {
			return nil, nil, fmt.Errorf("compression: truncated integer scalar")
		}
		return int64(binary.BigEndian.Uint64(data[:8])), data[8:], nil
	case tagFloat:
		if len(data) < 8 {
			return nil, nil, fmt.Errorf("compression: truncated float scalar")
		}
		return math.Float64frombits(binary.BigEndian.Uint64(data[:8])), data[8:], nil
	case tagText:
		if len(data) < 4 {
			return nil, nil, fmt.Errorf("compression: truncated text length")
		}
		n := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < n {
			return nil, nil, fmt.Errorf("compression: truncated text scalar")
		}
		return string(data[:n]), data[n:], nil
	case tagBoolean:
		if len(data) < 1 {
			return nil, nil, fmt.Errorf("compression: truncated boolean scalar")
		}
		return data[0] != 0, data[1:], nil
	case tagTimestamp:
		if len(data) < 8 {
			return nil, nil, fmt.Errorf("compression: truncated timestamp scalar")
		}
		usec := int64(binary.BigEndian.Uint64(data[:8]))
		return time.UnixMicro(usec).UTC(), data[8:], nil
	case tagBytes:
		if len(data) < 4 {
			return nil, nil, fmt.Errorf("compression: truncated bytes length")
		}
		n := binary.BigEndian.Uint32(data[:4])
		data = data[4:]
		if uint32(len(data)) < n {
			return nil, nil, fmt.Errorf("compression: truncated bytes scalar")
		}
		out := make([]byte, n)
		copy(out, data[:n])
		return out, data[n:], nil
	default:
		return nil, nil, fmt.Errorf("compression: unknown scalar tag %d", tag)
	}
}

// EstimateScalarSize returns the encoded byte size of v without
// allocating. Exported for callers outside this package that need the
// same accounting the manager's fingerprint uses internally; nothing
// else in this module calls it.
func EstimateScalarSize(v any) int {
	return scalarSize(v)
}

// scalarSize returns the encoded byte size of v without allocating.
func scalarSize(v any) int {
	switch val := v.(type) {
	case nil:
		return 1
	case int64, float64:
		return 9
	case string:
		return 5 + len(val)
	case bool:
		return 2
	case time.Time:
		return 9
	case []byte:
		return 5 + len(val)
	default:
		return 1
	}
}
