package facerec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity_CosineSpace(t *testing.T) {
	a := []float32{1, 0, 0}

	// Identical vectors
	assert.InDelta(t, 1.0, Similarity(a, a, false), 1e-6)
	// Orthogonal vectors sit at the midpoint after [0,1] normalization
	assert.InDelta(t, 0.5, Similarity(a, []float32{0, 1, 0}, false), 1e-6)
	// Opposite vectors
	assert.InDelta(t, 0.0, Similarity(a, []float32{-1, 0, 0}, false), 1e-6)
}

func TestSimilarity_DistanceSpace(t *testing.T) {
	a := []float32{0.1, 0.2, 0.3}

	assert.InDelta(t, 1.0, Similarity(a, a, true), 1e-6)

	// Distance 0.4 -> similarity 0.6
	b := []float32{0.5, 0.2, 0.3}
	assert.InDelta(t, 0.6, Similarity(a, b, true), 1e-6)

	// Distance beyond 1 clamps to zero, never negative
	far := []float32{5, 5, 5}
	assert.Equal(t, 0.0, Similarity(a, far, true))
}

func TestSimilarity_MismatchedVectors(t *testing.T) {
	assert.Equal(t, 0.0, Similarity(nil, []float32{1}, false))
	assert.Equal(t, 0.0, Similarity([]float32{1, 2}, []float32{1}, false))
	assert.Equal(t, 0.0, Similarity([]float32{0, 0}, []float32{1, 1}, false))
}

func TestDefaultWeights_SumToOne(t *testing.T) {
	var sum float64
	for _, w := range DefaultWeights() {
		sum += w
	}
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestWeights_UnknownBackendFallback(t *testing.T) {
	w := DefaultWeights()
	assert.Equal(t, 0.35, w.For("arcface"))
	assert.Equal(t, 0.1, w.For("some_future_backend"))
}

func TestFuseMatch_WeightedAverage(t *testing.T) {
	stored := map[string][]float32{
		"arcface": {1, 0, 0},
		"facenet": {0, 1, 0},
	}
	probe := map[string][]float32{
		"arcface": {1, 0, 0}, // similarity 1.0
		"facenet": {1, 0, 0}, // similarity 0.5
	}

	res, err := FuseMatch(stored, probe, DefaultWeights(), 0.4)
	assert.NoError(t, err)

	// (0.35*1.0 + 0.25*0.5) / 0.60
	expected := (0.35 + 0.125) / 0.60
	assert.InDelta(t, expected, res.Confidence, 1e-9)
	assert.True(t, res.Match)
	assert.Len(t, res.PerBackend, 2)
}

func TestFuseMatch_IgnoresBackendsMissingFromProbe(t *testing.T) {
	stored := map[string][]float32{
		"arcface": {1, 0, 0},
		"dlib":    {0.1, 0.2},
	}
	probe := map[string][]float32{
		"arcface": {1, 0, 0},
	}

	res, err := FuseMatch(stored, probe, DefaultWeights(), 0.4)
	assert.NoError(t, err)
	assert.Len(t, res.PerBackend, 1)
	assert.InDelta(t, 1.0, res.Confidence, 1e-6)
}

func TestFuseMatch_NoOverlapFailsClosed(t *testing.T) {
	stored := map[string][]float32{"dlib": {0.1, 0.2}}
	probe := map[string][]float32{"arcface": {1, 0, 0}}

	res, err := FuseMatch(stored, probe, DefaultWeights(), 0.4)
	assert.ErrorIs(t, err, ErrUnverifiable)
	assert.False(t, res.Match)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestFuseMatch_BelowThresholdIsNoMatch(t *testing.T) {
	// Nearly orthogonal embeddings: cosine similarity ~0.5
	stored := map[string][]float32{"arcface": {1, 0, 0}}
	probe := map[string][]float32{"arcface": {0, 1, 0}}

	res, err := FuseMatch(stored, probe, DefaultWeights(), 0.6)
	assert.NoError(t, err)
	assert.False(t, res.Match)
	assert.InDelta(t, 0.5, res.Confidence, 1e-6)
}

func TestCompareLegacy(t *testing.T) {
	stored := []float32{0.1, 0.2, 0.3}

	res := CompareLegacy(stored, stored, "dlib", 0.4)
	assert.True(t, res.Match)
	assert.InDelta(t, 1.0, res.Confidence, 1e-6)
	assert.Equal(t, map[string]float64{"dlib": 1.0}, roundMap(res.PerBackend))

	far := []float32{0.9, 0.9, 0.9}
	res = CompareLegacy(stored, far, "dlib", 0.4)
	assert.False(t, res.Match)
}

func roundMap(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = math.Round(v*1e6) / 1e6
	}
	return out
}
