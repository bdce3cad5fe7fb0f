package sqlite

import (
	"testing"
)

func TestVectorRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"typical", []float32{0.1, -0.5, 3.25, 0}},
		{"single", []float32{42}},
		{"empty", []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob, err := serializeVector(tt.vec)
			if err != nil {
				t.Fatalf("serialize: %v", err)
			}
			got, err := deserializeVector(blob)
			if err != nil {
				t.Fatalf("deserialize: %v", err)
			}
			if len(got) != len(tt.vec) {
				t.Fatalf("dim = %d, want %d", len(got), len(tt.vec))
			}
			for i := range got {
				if got[i] != tt.vec[i] {
					t.Errorf("vec[%d] = %f, want %f", i, got[i], tt.vec[i])
				}
			}
		})
	}
}

func TestDeserializeVector_BadLength(t *testing.T) {
	if _, err := deserializeVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for blob length not divisible by 4")
	}
}
