package embedding

import (
	"math"
	"testing"
)

func TestMockDeterministic(t *testing.T) {
	m := NewMock(16)

	a, err := m.Embed([]string{"same text"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	b, err := m.Embed([]string{"same text"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	for i := range a[0] {
		if a[0][i] != b[0][i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

func TestMockDistinctTexts(t *testing.T) {
	m := NewMock(16)
	vecs, err := m.Embed([]string{"first", "second"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	same := true
	for i := range vecs[0] {
		if vecs[0][i] != vecs[1][i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts should embed differently")
	}
}

func TestMockNormalized(t *testing.T) {
	m := NewMock(768)
	vecs, err := m.Embed([]string{"normalize me"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	var norm float64
	for _, v := range vecs[0] {
		norm += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-3 {
		t.Errorf("norm = %f, want 1", math.Sqrt(norm))
	}
}

func TestMockDefaultDimension(t *testing.T) {
	if got := NewMock(0).Dimension(); got != 768 {
		t.Errorf("Dimension = %d, want 768", got)
	}
	if got := NewMock(384).Dimension(); got != 384 {
		t.Errorf("Dimension = %d, want 384", got)
	}
}
