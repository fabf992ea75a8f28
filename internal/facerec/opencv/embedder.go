package opencv

import (
	"fmt"
	"image"
	"math"
	"os"

	"go-attendance/internal/facerec"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Embedder extracts a face embedding with a recognition DNN (ArcFace,
// FaceNet). Input geometry and normalization follow the model family.
type Embedder struct {
	net     gocv.Net
	enabled bool
	key     string

	inputW  int
	inputH  int
	meanVal gocv.Scalar
	stdDev  float64
}

func NewEmbedder(key, modelPath string) *Embedder {
	logger := zap.L().Named("facerec.opencv")

	if modelPath == "" {
		logger.Warn("embedder model path empty, disabling backend", zap.String("backend", key))
		return &Embedder{key: key}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		logger.Warn("embedder model file missing, disabling backend",
			zap.String("backend", key),
			zap.String("path", modelPath),
		)
		return &Embedder{key: key}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		logger.Warn("embedder model failed to load, disabling backend",
			zap.String("backend", key),
			zap.String("path", modelPath),
		)
		return &Embedder{key: key}
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	e := &Embedder{
		net:     net,
		enabled: true,
		key:     key,
		meanVal: gocv.NewScalar(127.5, 127.5, 127.5, 0),
		stdDev:  128.0,
	}

	switch key {
	case "facenet":
		e.inputW, e.inputH = 160, 160
	default: // arcface family
		e.inputW, e.inputH = 112, 112
	}

	logger.Info("embedder model loaded", zap.String("backend", key), zap.String("path", modelPath))
	return e
}

func (e *Embedder) Key() string {
	return e.key
}

func (e *Embedder) Ready() bool {
	return e.enabled
}

func (e *Embedder) Close() error {
	if !e.enabled {
		return nil
	}
	return e.net.Close()
}

// Embed crops the face region, runs the recognition net and returns the
// L2-normalized embedding.
func (e *Embedder) Embed(face facerec.BBox, img image.Image) ([]float32, error) {
	if !e.enabled {
		return nil, fmt.Errorf("backend %s is disabled", e.key)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	rect := image.Rect(face.X, face.Y, face.X+face.Width, face.Y+face.Height)
	rect = rect.Intersect(image.Rect(0, 0, mat.Cols(), mat.Rows()))
	if rect.Empty() {
		return nil, fmt.Errorf("face region outside image bounds")
	}

	crop := mat.Region(rect)
	defer crop.Close()

	blob := gocv.BlobFromImage(crop,
		1.0/e.stdDev,
		image.Pt(e.inputW, e.inputH),
		e.meanVal,
		true, false,
	)
	defer blob.Close()

	e.net.SetInput(blob, "")
	out := e.net.Forward("")
	defer out.Close()

	raw, err := out.DataPtrFloat32()
	if err != nil {
		return nil, fmt.Errorf("read embedding output: %w", err)
	}

	vec := make([]float32, len(raw))
	copy(vec, raw)
	return l2Normalize(vec), nil
}

func l2Normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec
}
