package classifier

import (
	"math/rand/v2"

	"github.com/leaderofARS/anti-phishing-system/internal/feature"
)

const (
	syntheticSeed    = 42
	syntheticSamples = 1000
)

// SyntheticSchema is the feature order of the synthetic model.
var SyntheticSchema = []string{
	feature.URLLength,
	feature.DomainLength,
	feature.HasIP,
	feature.NumDots,
	feature.NumHyphens,
	feature.HasHTTPS,
	feature.DomainAgeDays,
	feature.SuspiciousKeywordCount,
	feature.HasForms,
	feature.HasPasswordField,
	feature.NumExternalLinks,
	feature.HasSuspiciousTLD,
}

// column positions within SyntheticSchema
const (
	colURLLength     = 0
	colHasIP         = 2
	colDomainAgeDays = 6
	colKeywordCount  = 7
)

// syntheticData generates the labelled training set. Every column starts
// uniform on [0,1); the phishing cluster has longer URLs, some IP hosts,
// young domains and more keywords, the legitimate cluster has shorter
// URLs and much older domains.
func syntheticData() ([][]float64, []float64) {
	rng := rand.New(rand.NewPCG(syntheticSeed, syntheticSeed)) //nolint:gosec // deterministic training data
	width := len(SyntheticSchema)
	half := syntheticSamples / 2

	row := func() []float64 {
		r := make([]float64, width)
		for j := range r {
			r[j] = rng.Float64()
		}
		return r
	}

	X := make([][]float64, 0, syntheticSamples)
	y := make([]float64, 0, syntheticSamples)

	for range half {
		r := row()
		r[colURLLength] *= 100
		r[colHasIP] = 0
		if rng.Float64() < 0.3 {
			r[colHasIP] = 1
		}
		r[colDomainAgeDays] *= 100
		r[colKeywordCount] *= 5
		X = append(X, r)
		y = append(y, 1)
	}
	for range half {
		r := row()
		r[colURLLength] *= 50
		r[colDomainAgeDays] *= 1000
		X = append(X, r)
		y = append(y, 0)
	}
	return X, y
}

// trainSynthetic fits the synthetic model and returns it with its
// training accuracy.
func trainSynthetic() (*Model, float64) {
	X, y := syntheticData()
	m := Fit(X, y, defaultTraining)
	return m, m.Accuracy(X, y)
}
