package facerec

import (
	"errors"

	"go.uber.org/zap"
)

const (
	MethodAdvanced       = "advanced"
	MethodBasic          = "basic"
	MethodLegacyFallback = "legacy_fallback"
)

// Template is a person's stored biometric reference: a per-backend embedding
// map plus a legacy single embedding for backward compatibility.
type Template struct {
	Advanced      map[string][]float32
	Legacy        []float32
	LegacyBackend string
	Method        string
}

func (t Template) IsZero() bool {
	return len(t.Advanced) == 0 && len(t.Legacy) == 0
}

// VerifyOutcome is the matcher verdict plus which path produced it.
type VerifyOutcome struct {
	MatchResult
	Method   string
	Analysis *Analysis
}

// Matcher fuses multi-backend similarities into a single match decision
// against a stored template.
type Matcher struct {
	analyzer  *Analyzer
	weights   Weights
	threshold float64
	logger    *zap.Logger
}

func NewMatcher(analyzer *Analyzer, weights Weights, threshold float64, logger *zap.Logger) *Matcher {
	if weights == nil {
		weights = DefaultWeights()
	}
	if threshold <= 0 {
		threshold = DefaultMatchThreshold
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Matcher{
		analyzer:  analyzer,
		weights:   weights,
		threshold: threshold,
		logger:    logger.Named("facerec.matcher"),
	}
}

func (m *Matcher) Analyzer() *Analyzer {
	return m.analyzer
}

func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Verify analyzes the probe image and compares it against the template.
// Fusion runs whenever the template carries per-backend embeddings, however
// few; a single shared backend is still a verifiable overlap. Falling back
// to the legacy single-backend comparison is an explicit branch taken only
// when fusion is unverifiable AND a legacy embedding exists. Everything else
// fails closed.
func (m *Matcher) Verify(template Template, imageBytes []byte) (VerifyOutcome, error) {
	if template.IsZero() {
		return VerifyOutcome{}, ErrUnverifiable
	}

	analysis, err := m.analyzer.Analyze(imageBytes)
	if err != nil {
		return VerifyOutcome{}, err
	}

	if len(template.Advanced) > 0 {
		res, err := FuseMatch(template.Advanced, analysis.Embeddings, m.weights, m.threshold)
		if err == nil {
			method := template.Method
			if method == "" {
				method = MethodAdvanced
			}
			return VerifyOutcome{MatchResult: res, Method: method, Analysis: analysis}, nil
		}
		if !errors.Is(err, ErrUnverifiable) {
			return VerifyOutcome{}, err
		}

		m.logger.Warn("advanced comparison unverifiable, checking legacy fallback",
			zap.Int("template_backends", len(template.Advanced)),
			zap.Int("probe_backends", len(analysis.Embeddings)),
		)
		outcome, legacyErr := m.verifyLegacy(template, analysis)
		if legacyErr != nil {
			return VerifyOutcome{}, legacyErr
		}
		outcome.Method = MethodLegacyFallback
		return outcome, nil
	}

	outcome, err := m.verifyLegacy(template, analysis)
	if err != nil {
		return VerifyOutcome{}, err
	}
	outcome.Method = MethodBasic
	return outcome, nil
}

func (m *Matcher) verifyLegacy(template Template, analysis *Analysis) (VerifyOutcome, error) {
	if len(template.Legacy) == 0 || template.LegacyBackend == "" {
		return VerifyOutcome{}, ErrUnverifiable
	}

	probeVec, ok := analysis.Embeddings[template.LegacyBackend]
	if !ok {
		return VerifyOutcome{}, ErrUnverifiable
	}

	res := CompareLegacy(template.Legacy, probeVec, template.LegacyBackend, m.threshold)
	return VerifyOutcome{MatchResult: res, Analysis: analysis}, nil
}
