package lexical

import (
	"context"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
)

// Name identifies the lexical collector in pipeline results.
const Name = "lexical"

// Collector exposes Analyze as a pipeline collector so lexical features are
// merged in the same order and reported the same way as the network ones.
type Collector struct{}

// NewCollector returns the lexical collector.
func NewCollector() *Collector { return &Collector{} }

// Name implements pipeline.Collector.
func (*Collector) Name() string { return Name }

// Defaults implements pipeline.Collector. It is the feature set of the
// empty string and is only used if Collect panics.
func (*Collector) Defaults() feature.Vector { return Analyze("") }

// Collect implements pipeline.Collector and never fails.
func (*Collector) Collect(_ context.Context, rawURL string) (feature.Vector, error) {
	return Analyze(rawURL), nil
}
