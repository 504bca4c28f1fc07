package services

import "math"

// CosineSimilarity computes the cosine of the angle between two embedding
// vectors, accumulating in float64. Empty, mismatched, or zero-norm inputs
// fail with ErrDegenerateEmbedding rather than producing NaN or a silent
// zero.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0, ErrDegenerateEmbedding
	}

	var dot, normA, normB float64
	for i := range a {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, ErrDegenerateEmbedding
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// round2 rounds to two decimal places, the precision of reported scores.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
