package classifier

import (
	"log/slog"
	"math"
	"slices"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
)

// Variant names reported in ModelInfo.
const (
	VariantPersisted = "persisted"
	VariantSynthetic = "synthetic"
)

// Scorer maps a feature vector to a risk and a confidence, both in [0,1].
// Implementations must be safe for concurrent use.
type Scorer interface {
	Score(v feature.Vector) (risk, confidence float64)
	Info() ModelInfo
}

// ModelInfo describes the scorer in use.
type ModelInfo struct {
	Variant    string   `json:"variant"`
	ModelType  string   `json:"model_type"`
	Accuracy   float64  `json:"accuracy"`
	Features   []string `json:"feature_names"`
	Provenance string   `json:"provenance,omitempty"`
	Degraded   bool     `json:"degraded"`
	Reason     string   `json:"reason,omitempty"`
}

// Classifier is the Scorer backed by a Model. It is immutable after
// construction.
type Classifier struct {
	model  *Model
	schema []string
	info   ModelInfo
}

var _ Scorer = (*Classifier)(nil)

// New wraps a trained model and its ordered schema.
func New(model *Model, schema []string, info ModelInfo) (*Classifier, error) {
	if err := model.validate(len(schema)); err != nil {
		return nil, err
	}
	info.ModelType = model.Type
	info.Features = slices.Clone(schema)
	return &Classifier{model: model, schema: slices.Clone(schema), info: info}, nil
}

// NewSynthetic trains the fixed-seed fallback model.
func NewSynthetic() *Classifier {
	m, acc := trainSynthetic()
	c, err := New(m, SyntheticSchema, ModelInfo{
		Variant:    VariantSynthetic,
		Accuracy:   acc,
		Provenance: "synthetic training set (seed 42, 1000 samples)",
	})
	if err != nil {
		panic("classifier: synthetic model does not match its schema: " + err.Error())
	}
	return c
}

// Load returns the persisted model in dir, or the synthetic model when it
// cannot be loaded. It never fails; the fallback is reported in Info and
// logged.
func Load(dir string, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	c, err := LoadPersisted(dir)
	if err == nil {
		logger.Info("loaded persisted model",
			"dir", dir,
			"model_type", c.info.ModelType,
			"features", len(c.schema),
			"accuracy", c.info.Accuracy,
		)
		return c
	}

	c = NewSynthetic()
	c.info.Degraded = true
	c.info.Reason = err.Error()
	logger.Warn("using synthetic model",
		"reason", c.info.Reason,
		"training_accuracy", c.info.Accuracy,
	)
	return c
}

// Score implements Scorer. risk is P(malicious) and confidence is the
// larger of the two class probabilities.
func (c *Classifier) Score(v feature.Vector) (float64, float64) {
	risk := c.model.Probability(v.Select(c.schema))
	return risk, math.Max(risk, 1-risk)
}

// Info implements Scorer.
func (c *Classifier) Info() ModelInfo {
	info := c.info
	info.Features = slices.Clone(c.info.Features)
	return info
}

// Schema returns the ordered feature names the model reads.
func (c *Classifier) Schema() []string {
	return slices.Clone(c.schema)
}
