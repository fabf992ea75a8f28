package facerec

import (
	"errors"
	"fmt"
	"image"

	"go.uber.org/zap"
)

var (
	ErrInvalidImage        = errors.New("image could not be decoded")
	ErrNoBackendsAvailable = errors.New("no detection backends available")
	ErrNoFaceDetected      = errors.New("no face detected")
	ErrUnverifiable        = errors.New("no compatible embeddings between template and probe")
)

// MultipleFacesError reports how many consensus faces were found when
// exactly one was required.
type MultipleFacesError struct {
	Count int
}

func (e *MultipleFacesError) Error() string {
	return fmt.Sprintf("multiple faces detected: %d", e.Count)
}

// Detector is the minimum capability every backend implements. Key must be
// stable: it names the backend in weight tables and stored templates.
type Detector interface {
	Key() string
	Detect(img image.Image) ([]Region, error)
}

// Embedder is an optional capability: extracting an embedding vector for a
// face region.
type Embedder interface {
	Embed(face BBox, img image.Image) ([]float32, error)
}

// Pool holds the successfully-initialized backends. A backend that failed to
// initialize is simply absent; an empty pool is a degraded-but-defined state,
// not a startup failure.
type Pool struct {
	detectors []Detector
	embedders map[string]Embedder
	logger    *zap.Logger
}

func NewPool(logger *zap.Logger) *Pool {
	if logger == nil {
		logger = zap.L()
	}
	return &Pool{
		embedders: make(map[string]Embedder),
		logger:    logger.Named("facerec.pool"),
	}
}

// Register adds a backend to the pool. Nil or disabled backends are skipped.
func (p *Pool) Register(d Detector) {
	if d == nil {
		return
	}
	if e, ok := d.(interface{ Ready() bool }); ok && !e.Ready() {
		p.logger.Warn("backend not ready, skipping registration", zap.String("backend", d.Key()))
		return
	}
	p.detectors = append(p.detectors, d)
	p.logger.Info("backend registered", zap.String("backend", d.Key()))
}

func (p *Pool) Detectors() []Detector {
	return p.detectors
}

func (p *Pool) Size() int {
	return len(p.detectors)
}

// RegisterEmbedder adds an embed-only backend: one that cannot detect faces
// itself but can extract an embedding for a region another backend found.
func (p *Pool) RegisterEmbedder(key string, e Embedder) {
	if key == "" || e == nil {
		return
	}
	if r, ok := e.(interface{ Ready() bool }); ok && !r.Ready() {
		p.logger.Warn("embedder not ready, skipping registration", zap.String("backend", key))
		return
	}
	p.embedders[key] = e
	p.logger.Info("embedder registered", zap.String("backend", key))
}

// Embedders returns every backend capable of embedding extraction, keyed by
// backend key: detectors that also embed, plus standalone embedders.
func (p *Pool) Embedders() map[string]Embedder {
	out := make(map[string]Embedder, len(p.embedders)+len(p.detectors))
	for _, d := range p.detectors {
		if e, ok := d.(Embedder); ok {
			out[d.Key()] = e
		}
	}
	for key, e := range p.embedders {
		out[key] = e
	}
	return out
}
