package facerec

import "math"

// DefaultMatchThreshold is deliberately strict: a false accept is attendance
// fraud, a false reject only forces a retry.
const DefaultMatchThreshold = 0.4

const fallbackWeight = 0.1

// Weights is the per-backend fusion weight table. Kept as explicit
// configuration rather than inline constants so weight changes are auditable
// and testable independent of detection code.
type Weights map[string]float64

// DefaultWeights mirrors the relative trust in each backend family. Known
// weights sum to 1; unknown backends fall back to a small default.
func DefaultWeights() Weights {
	return Weights{
		"arcface":  0.35,
		"facenet":  0.25,
		"dlib":     0.20,
		"vggface":  0.15,
		"openface": 0.05,
	}
}

func (w Weights) For(backend string) float64 {
	if weight, ok := w[backend]; ok {
		return weight
	}
	return fallbackWeight
}

// distanceSpaceBackends compare embeddings by Euclidean distance rather than
// angle; their similarity is max(0, 1-distance).
var distanceSpaceBackends = map[string]bool{
	"dlib": true,
}

func IsDistanceSpace(backend string) bool {
	return distanceSpaceBackends[backend]
}

// Similarity converts an embedding pair into a score in [0,1]. Vector-space
// backends use cosine similarity shifted from [-1,1]; distance-space backends
// use max(0, 1-euclidean).
func Similarity(a, b []float32, distanceSpace bool) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	if distanceSpace {
		var sum float64
		for i := range a {
			d := float64(a[i]) - float64(b[i])
			sum += d * d
		}
		return math.Max(0, 1-math.Sqrt(sum))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return (cos + 1) / 2
}

// MatchResult is the fused verdict over every backend present in both the
// stored template and the probe.
type MatchResult struct {
	Match      bool               `json:"match"`
	Confidence float64            `json:"confidence"`
	PerBackend map[string]float64 `json:"per_backend"`
	Threshold  float64            `json:"threshold"`
}

// FuseMatch compares a stored multi-backend template against probe
// embeddings. Backends missing on either side contribute nothing. If no
// backend overlaps at all the comparison is unverifiable and fails closed.
func FuseMatch(stored, probe map[string][]float32, weights Weights, threshold float64) (MatchResult, error) {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	if weights == nil {
		weights = DefaultWeights()
	}

	perBackend := make(map[string]float64)
	var weightedSum, totalWeight float64

	for backend, storedVec := range stored {
		probeVec, ok := probe[backend]
		if !ok {
			continue
		}

		sim := Similarity(storedVec, probeVec, IsDistanceSpace(backend))
		perBackend[backend] = sim

		w := weights.For(backend)
		weightedSum += sim * w
		totalWeight += w
	}

	if totalWeight == 0 {
		return MatchResult{Threshold: threshold}, ErrUnverifiable
	}

	confidence := weightedSum / totalWeight
	return MatchResult{
		Match:      confidence > threshold,
		Confidence: confidence,
		PerBackend: perBackend,
		Threshold:  threshold,
	}, nil
}

// CompareLegacy is the single-backend fallback used when the advanced path
// cannot run and a legacy embedding exists.
func CompareLegacy(stored, probe []float32, backend string, threshold float64) MatchResult {
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}

	sim := Similarity(stored, probe, IsDistanceSpace(backend))
	return MatchResult{
		Match:      sim > threshold,
		Confidence: sim,
		PerBackend: map[string]float64{backend: sim},
		Threshold:  threshold,
	}
}
