package facerec

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
)

// Analysis is the outcome of running every available backend over one image.
type Analysis struct {
	FacesDetected int
	BackendsUsed  []string
	Best          ConsensusFace
	BestScore     float64
	Embeddings    map[string][]float32
	QualityScore  float64
	ImageWidth    int
	ImageHeight   int
}

// Analyzer fans an image out to the detector pool, merges the detections
// into consensus faces and extracts embeddings for the best one.
type Analyzer struct {
	pool         *Pool
	iouThreshold float64
	logger       *zap.Logger
}

func NewAnalyzer(pool *Pool, iouThreshold float64, logger *zap.Logger) *Analyzer {
	if iouThreshold <= 0 {
		iouThreshold = DefaultIoUThreshold
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Analyzer{
		pool:         pool,
		iouThreshold: iouThreshold,
		logger:       logger.Named("facerec.analyzer"),
	}
}

// DecodeImageData accepts raw bytes or a base64 payload (with or without a
// data-URL prefix) and returns the raw image bytes.
func DecodeImageData(data string) ([]byte, error) {
	if data == "" {
		return nil, ErrInvalidImage
	}
	if idx := strings.IndexByte(data, ','); idx >= 0 && strings.HasPrefix(data, "data:") {
		data = data[idx+1:]
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return raw, nil
}

// Analyze runs every registered backend over the image. A backend that
// errors degrades the pool for this request; it never upgrades another
// backend's weight to compensate. Exactly one consensus face is required.
func (a *Analyzer) Analyze(imageBytes []byte) (*Analysis, error) {
	img, err := imaging.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	if a.pool.Size() == 0 {
		return nil, ErrNoBackendsAvailable
	}

	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	var regions []Region
	var backendsUsed []string

	for _, det := range a.pool.Detectors() {
		found, err := det.Detect(img)
		if err != nil {
			a.logger.Warn("backend detect failed",
				zap.String("backend", det.Key()),
				zap.Error(err),
			)
			continue
		}
		if len(found) == 0 {
			continue
		}
		regions = append(regions, found...)
		backendsUsed = append(backendsUsed, det.Key())
	}

	if len(regions) == 0 {
		return nil, ErrNoFaceDetected
	}

	faces := MergeRegions(regions, a.iouThreshold)
	if len(faces) > 1 {
		return nil, &MultipleFacesError{Count: len(faces)}
	}

	best, score := SelectBest(faces, imgW, imgH, a.pool.Size())

	return &Analysis{
		FacesDetected: len(faces),
		BackendsUsed:  backendsUsed,
		Best:          best,
		BestScore:     score,
		Embeddings:    a.extractEmbeddings(best, img),
		QualityScore:  QualityScore(best, imgW, imgH, a.pool.Size()),
		ImageWidth:    imgW,
		ImageHeight:   imgH,
	}, nil
}

// extractEmbeddings gathers embeddings from two sources: members of the
// consensus cluster that already carry one, and every embedding-capable
// backend run against the merged bounding box.
func (a *Analyzer) extractEmbeddings(face ConsensusFace, img image.Image) map[string][]float32 {
	embeddings := make(map[string][]float32)

	for _, member := range face.Members {
		if len(member.Embedding) > 0 {
			embeddings[member.Backend] = member.Embedding
		}
	}

	for key, embedder := range a.pool.Embedders() {
		if _, ok := embeddings[key]; ok {
			continue
		}
		vec, err := embedder.Embed(face.BBox, img)
		if err != nil {
			a.logger.Warn("backend embed failed",
				zap.String("backend", key),
				zap.Error(err),
			)
			continue
		}
		if len(vec) > 0 {
			embeddings[key] = vec
		}
	}

	return embeddings
}
