package sqlite

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// serializeVector encodes a vector as little-endian float64s.
func serializeVector(vec []float64) ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.Grow(len(vec) * 8)
	if err := binary.Write(buf, binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("failed to serialize vector: %w", err)
	}
	return buf.Bytes(), nil
}

func deserializeVector(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes is not a float64 array", len(blob))
	}
	vec := make([]float64, len(blob)/8)
	if err := binary.Read(bytes.NewReader(blob), binary.LittleEndian, vec); err != nil {
		return nil, fmt.Errorf("failed to deserialize vector: %w", err)
	}
	return vec, nil
}
