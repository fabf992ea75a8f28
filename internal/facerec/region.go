package facerec

// BBox is a face bounding box in pixel coordinates.
type BBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (b BBox) Area() int {
	if b.Width <= 0 || b.Height <= 0 {
		return 0
	}
	return b.Width * b.Height
}

// IoU computes intersection-over-union of two boxes. Non-overlapping boxes
// return 0.
func IoU(a, b BBox) float64 {
	xOverlap := min(a.X+a.Width, b.X+b.Width) - max(a.X, b.X)
	yOverlap := min(a.Y+a.Height, b.Y+b.Height) - max(a.Y, b.Y)
	if xOverlap <= 0 || yOverlap <= 0 {
		return 0
	}

	intersection := xOverlap * yOverlap
	union := a.Area() + b.Area() - intersection
	if union <= 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Region is a single backend's face detection. Embedding is present only
// when the backend computes one during detection.
type Region struct {
	BBox       BBox
	Confidence float64
	Backend    string
	Embedding  []float32
}

// ConsensusFace is one or more overlapping Regions merged across backends.
// Transient per analysis, never persisted.
type ConsensusFace struct {
	BBox           BBox
	Confidence     float64
	Backends       []string
	ConsensusCount int
	Members        []Region
}
