package embed

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
)

// MockProvider returns deterministic unit vectors derived from the input
// text. Useful for local runs and tests where no embedding backend is up.
type MockProvider struct {
	defaultDim int
}

func NewMockProvider(defaultDim int) *MockProvider {
	return &MockProvider{defaultDim: defaultDim}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Embed(_ context.Context, inputs []string, dim int) ([][]float32, error) {
	if dim <= 0 {
		dim = m.defaultDim
	}
	if dim <= 0 {
		dim = 1536
	}
	out := make([][]float32, len(inputs))
	for i, text := range inputs {
		out[i] = deterministicVector(text, dim)
	}
	return out, nil
}

func deterministicVector(text string, dim int) []float32 {
	seed := sha256.Sum256([]byte(text))
	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		var buf [12]byte
		copy(buf[:8], seed[:8])
		binary.LittleEndian.PutUint32(buf[8:], uint32(i))
		h := sha256.Sum256(buf[:])
		v := float64(int32(binary.LittleEndian.Uint32(h[:4]))) / math.MaxInt32
		vec[i] = float32(v)
		norm += v * v
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}
	return vec
}
