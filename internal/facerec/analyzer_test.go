package facerec

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBackend struct {
	key       string
	regions   []Region
	detectErr error
	embedding []float32
	embedErr  error
}

func (f *fakeBackend) Key() string { return f.key }

func (f *fakeBackend) Detect(img image.Image) ([]Region, error) {
	return f.regions, f.detectErr
}

func (f *fakeBackend) Embed(face BBox, img image.Image) ([]float32, error) {
	return f.embedding, f.embedErr
}

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	assert.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestPool(backends ...Detector) *Pool {
	pool := NewPool(zap.NewNop())
	for _, b := range backends {
		pool.Register(b)
	}
	return pool
}

func TestAnalyzer_InvalidImage(t *testing.T) {
	a := NewAnalyzer(newTestPool(&fakeBackend{key: "arcface"}), 0, zap.NewNop())

	_, err := a.Analyze([]byte("definitely not an image"))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestAnalyzer_EmptyPool(t *testing.T) {
	a := NewAnalyzer(newTestPool(), 0, zap.NewNop())

	_, err := a.Analyze(testImage(t, 64, 64))
	assert.ErrorIs(t, err, ErrNoBackendsAvailable)
}

func TestAnalyzer_NoFaceDetected(t *testing.T) {
	a := NewAnalyzer(newTestPool(&fakeBackend{key: "arcface"}), 0, zap.NewNop())

	_, err := a.Analyze(testImage(t, 64, 64))
	assert.ErrorIs(t, err, ErrNoFaceDetected)
}

func TestAnalyzer_ConsensusAcrossBackends(t *testing.T) {
	box := BBox{X: 200, Y: 150, Width: 180, Height: 180}
	shifted := BBox{X: 210, Y: 150, Width: 180, Height: 180}

	arcface := &fakeBackend{
		key:       "arcface",
		regions:   []Region{{BBox: box, Confidence: 0.9, Backend: "arcface", Embedding: []float32{1, 0, 0}}},
		embedding: []float32{1, 0, 0},
	}
	dlib := &fakeBackend{
		key:       "dlib",
		regions:   []Region{{BBox: shifted, Confidence: 0.8, Backend: "dlib"}},
		embedding: []float32{0.1, 0.2, 0.3},
	}

	a := NewAnalyzer(newTestPool(arcface, dlib), 0, zap.NewNop())
	analysis, err := a.Analyze(testImage(t, 640, 480))
	assert.NoError(t, err)

	assert.Equal(t, 1, analysis.FacesDetected)
	assert.Equal(t, 2, analysis.Best.ConsensusCount)
	assert.ElementsMatch(t, []string{"arcface", "dlib"}, analysis.BackendsUsed)

	// Embedding from the member region plus one extracted by the dlib embedder
	assert.Equal(t, []float32{1, 0, 0}, analysis.Embeddings["arcface"])
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, analysis.Embeddings["dlib"])
	assert.Greater(t, analysis.QualityScore, 0.4)
}

func TestAnalyzer_MultipleFaces(t *testing.T) {
	backend := &fakeBackend{
		key: "arcface",
		regions: []Region{
			{BBox: BBox{X: 10, Y: 10, Width: 100, Height: 100}, Confidence: 0.9, Backend: "arcface"},
			{BBox: BBox{X: 400, Y: 300, Width: 100, Height: 100}, Confidence: 0.85, Backend: "arcface"},
		},
	}

	a := NewAnalyzer(newTestPool(backend), 0, zap.NewNop())
	_, err := a.Analyze(testImage(t, 640, 480))

	var multiErr *MultipleFacesError
	assert.ErrorAs(t, err, &multiErr)
	assert.Equal(t, 2, multiErr.Count)
}

func TestAnalyzer_FailingBackendDegrades(t *testing.T) {
	broken := &fakeBackend{key: "facenet", detectErr: assert.AnError}
	working := &fakeBackend{
		key:     "arcface",
		regions: []Region{{BBox: BBox{X: 200, Y: 150, Width: 180, Height: 180}, Confidence: 0.9, Backend: "arcface"}},
	}

	a := NewAnalyzer(newTestPool(broken, working), 0, zap.NewNop())
	analysis, err := a.Analyze(testImage(t, 640, 480))
	assert.NoError(t, err)
	assert.Equal(t, []string{"arcface"}, analysis.BackendsUsed)
}

func TestPool_StandaloneEmbedder(t *testing.T) {
	pool := newTestPool(&fakeBackend{key: "arcface"})
	pool.RegisterEmbedder("facenet", &fakeBackend{key: "facenet", embedding: []float32{1}})

	embedders := pool.Embedders()
	assert.Contains(t, embedders, "arcface")
	assert.Contains(t, embedders, "facenet")
	// Standalone embedders do not count as detectors
	assert.Equal(t, 1, pool.Size())
}

func TestDecodeImageData(t *testing.T) {
	raw := testImage(t, 8, 8)
	encoded := base64.StdEncoding.EncodeToString(raw)

	decoded, err := DecodeImageData(encoded)
	assert.NoError(t, err)
	assert.Equal(t, raw, decoded)

	decoded, err = DecodeImageData("data:image/png;base64," + encoded)
	assert.NoError(t, err)
	assert.Equal(t, raw, decoded)

	_, err = DecodeImageData("")
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = DecodeImageData("!!!not-base64!!!")
	assert.ErrorIs(t, err, ErrInvalidImage)
}
