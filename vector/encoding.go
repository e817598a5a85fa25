package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeEmbedding encodes a slice of float32 values into a BLOB representation
// suitable for storage in SQLite: a little-endian sequence of IEEE 754 float32
// values without a length prefix. An empty vector encodes to nil.
func EncodeEmbedding(vec []float32) ([]byte, error) {
	if len(vec) == 0 {
		return nil, nil
	}
	return appendFloats(make([]byte, 0, len(vec)*4), vec), nil
}

// DecodeEmbedding decodes a BLOB produced by EncodeEmbedding.
func DecodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	return readFloats(b, len(b)/4), nil
}

// EncodeBatch encodes a candidate batch as
//
//	count uint32 | (len uint32 | float32[len]) * count
//
// in little-endian order. Vectors may have different lengths.
func EncodeBatch(items [][]float32) ([]byte, error) {
	size := 4
	for _, v := range items {
		size += 4 + 4*len(v)
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(items)))
	for _, v := range items {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(v)))
		out = appendFloats(out, v)
	}
	return out, nil
}

// DecodeBatch decodes a BLOB produced by EncodeBatch. Truncated input and
// trailing bytes are reported as errors.
func DecodeBatch(b []byte) ([][]float32, error) {
	if len(b) < 4 {
		return nil, fmt.Errorf("vector: invalid batch blob length %d", len(b))
	}
	n := int(binary.LittleEndian.Uint32(b))
	off := 4
	items := make([][]float32, 0, min(n, len(b)/4))
	for i := 0; i < n; i++ {
		if off+4 > len(b) {
			return nil, fmt.Errorf("vector: truncated batch blob at item %d", i)
		}
		dim := int(binary.LittleEndian.Uint32(b[off:]))
		off += 4
		if dim > (len(b)-off)/4 {
			return nil, fmt.Errorf("vector: truncated batch blob: item %d wants %d floats", i, dim)
		}
		items = append(items, readFloats(b[off:], dim))
		off += 4 * dim
	}
	if off != len(b) {
		return nil, fmt.Errorf("vector: %d trailing bytes in batch blob", len(b)-off)
	}
	return items, nil
}

func appendFloats(out []byte, vec []float32) []byte {
	for _, v := range vec {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
	}
	return out
}

func readFloats(b []byte, n int) []float32 {
	vec := make([]float32, n)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec
}
