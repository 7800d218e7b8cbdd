package embedding

import (
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// Mock is a deterministic offline embedder: the vector is derived from a
// hash of the text, so equal texts always embed equally. Used in tests and
// dry runs where no embedding service is reachable.
type Mock struct {
	dimension int
}

func NewMock(dimension int) *Mock {
	if dimension <= 0 {
		dimension = 768
	}
	return &Mock{dimension: dimension}
}

func (m *Mock) Embed(texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		sum := sha256.Sum256([]byte(text))
		vec := make([]float32, m.dimension)
		var norm float64
		for j := range vec {
			seed := binary.BigEndian.Uint32(sum[(j*4)%28:])
			v := float32(int32(seed+uint32(j))) / float32(math.MaxInt32)
			vec[j] = v
			norm += float64(v) * float64(v)
		}
		if norm > 0 {
			scale := float32(1 / math.Sqrt(norm))
			for j := range vec {
				vec[j] *= scale
			}
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (m *Mock) Dimension() int {
	return m.dimension
}

func (m *Mock) ModelName() string {
	return "mock"
}
