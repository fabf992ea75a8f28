package opencv

import (
	"fmt"
	"image"
	"os"

	"go-attendance/internal/facerec"

	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Detector is a DNN face detector (SSD-style ONNX model). A detector whose
// model fails to load stays disabled and is skipped at pool registration.
type Detector struct {
	net     gocv.Net
	enabled bool
	key     string

	inputW        int
	inputH        int
	scaleFactor   float64
	meanVal       gocv.Scalar
	confThreshold float32
}

func NewDetector(key, modelPath string, confThreshold float32) *Detector {
	logger := zap.L().Named("facerec.opencv")

	if modelPath == "" {
		logger.Warn("detector model path empty, disabling backend", zap.String("backend", key))
		return &Detector{key: key}
	}

	if _, err := os.Stat(modelPath); os.IsNotExist(err) {
		logger.Warn("detector model file missing, disabling backend",
			zap.String("backend", key),
			zap.String("path", modelPath),
		)
		return &Detector{key: key}
	}

	net := gocv.ReadNet(modelPath, "")
	if net.Empty() {
		logger.Warn("detector model failed to load, disabling backend",
			zap.String("backend", key),
			zap.String("path", modelPath),
		)
		return &Detector{key: key}
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	if confThreshold <= 0 {
		confThreshold = 0.7
	}

	logger.Info("detector model loaded", zap.String("backend", key), zap.String("path", modelPath))

	return &Detector{
		net:           net,
		enabled:       true,
		key:           key,
		inputW:        300,
		inputH:        300,
		scaleFactor:   1.0,
		meanVal:       gocv.NewScalar(104, 177, 123, 0),
		confThreshold: confThreshold,
	}
}

func (d *Detector) Key() string {
	return d.key
}

func (d *Detector) Ready() bool {
	return d.enabled
}

func (d *Detector) Close() error {
	if !d.enabled {
		return nil
	}
	return d.net.Close()
}

// Detect runs the SSD forward pass and decodes detections above the
// confidence threshold into pixel-space regions.
func (d *Detector) Detect(img image.Image) ([]facerec.Region, error) {
	if !d.enabled {
		return nil, fmt.Errorf("backend %s is disabled", d.key)
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("convert image: %w", err)
	}
	defer mat.Close()

	blob := gocv.BlobFromImage(mat,
		d.scaleFactor,
		image.Pt(d.inputW, d.inputH),
		d.meanVal,
		false, false,
	)
	defer blob.Close()

	d.net.SetInput(blob, "")
	out := d.net.Forward("")
	defer out.Close()

	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	// SSD output: [1,1,N,7] rows of (batch, class, conf, x1, y1, x2, y2)
	detections := out.Reshape(1, out.Total()/7)
	defer detections.Close()

	var regions []facerec.Region
	for row := 0; row < detections.Rows(); row++ {
		conf := detections.GetFloatAt(row, 2)
		if conf < d.confThreshold {
			continue
		}

		x1 := int(detections.GetFloatAt(row, 3) * float32(imgW))
		y1 := int(detections.GetFloatAt(row, 4) * float32(imgH))
		x2 := int(detections.GetFloatAt(row, 5) * float32(imgW))
		y2 := int(detections.GetFloatAt(row, 6) * float32(imgH))

		x1 = clamp(x1, 0, imgW)
		y1 = clamp(y1, 0, imgH)
		x2 = clamp(x2, 0, imgW)
		y2 = clamp(y2, 0, imgH)
		if x2 <= x1 || y2 <= y1 {
			continue
		}

		regions = append(regions, facerec.Region{
			BBox: facerec.BBox{
				X:      x1,
				Y:      y1,
				Width:  x2 - x1,
				Height: y2 - y1,
			},
			Confidence: float64(conf),
			Backend:    d.key,
		})
	}

	return regions, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
