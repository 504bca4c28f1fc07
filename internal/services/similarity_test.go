package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 0}, []float32{1, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"scaled", []float32{1, 2, 3}, []float32{2, 4, 6}, 1},
		{"partial", []float32{1, 0}, []float32{0.6, 0.8}, 0.6},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CosineSimilarity(tc.a, tc.b)
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-6)
		})
	}
}

func TestCosineSimilarityDegenerate(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
	}{
		{"both empty", nil, nil},
		{"empty a", nil, []float32{1}},
		{"empty b", []float32{1}, nil},
		{"mismatched lengths", []float32{1, 2}, []float32{1}},
		{"zero norm a", []float32{0, 0}, []float32{1, 1}},
		{"zero norm b", []float32{1, 1}, []float32{0, 0}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CosineSimilarity(tc.a, tc.b)
			assert.ErrorIs(t, err, ErrDegenerateEmbedding)
		})
	}
}

func TestRound2(t *testing.T) {
	assert.InDelta(t, 72.53, round2(72.531), 1e-9)
	assert.InDelta(t, 72.54, round2(72.536), 1e-9)
	assert.InDelta(t, 100, round2(99.999), 1e-9)
	assert.InDelta(t, 0, round2(0.0049), 1e-9)
	assert.InDelta(t, 60, round2(60), 1e-9)
}
