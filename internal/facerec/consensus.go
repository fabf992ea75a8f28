package facerec

import "math"

const DefaultIoUThreshold = 0.5

// MergeRegions clusters regions whose bounding boxes overlap beyond the IoU
// threshold into consensus faces. Greedy: each region seeds a cluster and
// absorbs every later unclaimed region it overlaps. Singletons pass through
// unmerged.
func MergeRegions(regions []Region, iouThreshold float64) []ConsensusFace {
	if len(regions) == 0 {
		return nil
	}
	if iouThreshold <= 0 {
		iouThreshold = DefaultIoUThreshold
	}

	used := make([]bool, len(regions))
	var faces []ConsensusFace

	for i, seed := range regions {
		if used[i] {
			continue
		}
		used[i] = true
		members := []Region{seed}

		for j := i + 1; j < len(regions); j++ {
			if used[j] {
				continue
			}
			if IoU(seed.BBox, regions[j].BBox) > iouThreshold {
				used[j] = true
				members = append(members, regions[j])
			}
		}

		faces = append(faces, mergeCluster(members))
	}

	return faces
}

func mergeCluster(members []Region) ConsensusFace {
	var sumX, sumY, sumW, sumH int
	var sumConf float64
	backends := make([]string, 0, len(members))
	seen := make(map[string]bool, len(members))

	for _, m := range members {
		sumX += m.BBox.X
		sumY += m.BBox.Y
		sumW += m.BBox.Width
		sumH += m.BBox.Height
		sumConf += m.Confidence
		if !seen[m.Backend] {
			seen[m.Backend] = true
			backends = append(backends, m.Backend)
		}
	}

	n := len(members)
	return ConsensusFace{
		BBox: BBox{
			X:      sumX / n,
			Y:      sumY / n,
			Width:  sumW / n,
			Height: sumH / n,
		},
		Confidence:     sumConf / float64(n),
		Backends:       backends,
		ConsensusCount: n,
		Members:        members,
	}
}

// faceComponents are the shared scoring ingredients: how big the face is
// relative to the frame (optimal around 10%), how centered it is, its
// detection confidence, and how many backends agreed on it.
type faceComponents struct {
	size       float64
	position   float64
	confidence float64
	consensus  float64
}

func components(face ConsensusFace, imgW, imgH, totalBackends int) faceComponents {
	imageArea := imgW * imgH

	var size float64
	if imageArea > 0 {
		areaRatio := float64(face.BBox.Area()) / float64(imageArea)
		size = math.Min(areaRatio*10, 1.0)
	}

	var position float64
	if imgW > 0 && imgH > 0 {
		cx := float64(face.BBox.X) + float64(face.BBox.Width)/2
		cy := float64(face.BBox.Y) + float64(face.BBox.Height)/2
		dx := cx - float64(imgW)/2
		dy := cy - float64(imgH)/2
		maxDist := math.Sqrt(float64(imgW*imgW+imgH*imgH)) / 2
		position = 1 - math.Hypot(dx, dy)/maxDist
		position = math.Max(position, 0)
	}

	var consensus float64
	if totalBackends > 0 {
		consensus = float64(face.ConsensusCount) / float64(totalBackends)
		consensus = math.Min(consensus, 1.0)
	}

	return faceComponents{
		size:       size,
		position:   position,
		confidence: face.Confidence,
		consensus:  consensus,
	}
}

// SelectionScore ranks candidate faces for the best-face choice.
func SelectionScore(face ConsensusFace, imgW, imgH, totalBackends int) float64 {
	c := components(face, imgW, imgH, totalBackends)
	return 0.4*c.confidence + 0.3*c.size + 0.2*c.position + 0.1*c.consensus
}

// QualityScore gates registration admission (reject below 0.4). Same
// components as SelectionScore with a different mix.
func QualityScore(face ConsensusFace, imgW, imgH, totalBackends int) float64 {
	c := components(face, imgW, imgH, totalBackends)
	return 0.3*c.size + 0.2*c.position + 0.4*c.confidence + 0.1*c.consensus
}

// SelectBest returns the highest-scoring consensus face.
func SelectBest(faces []ConsensusFace, imgW, imgH, totalBackends int) (ConsensusFace, float64) {
	var best ConsensusFace
	bestScore := -1.0

	for _, face := range faces {
		if score := SelectionScore(face, imgW, imgH, totalBackends); score > bestScore {
			bestScore = score
			best = face
		}
	}

	return best, bestScore
}
