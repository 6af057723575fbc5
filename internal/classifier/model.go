package classifier

import (
	"fmt"
	"math"
)

// ModelTypeLogistic identifies the logistic regression blob format.
const ModelTypeLogistic = "LogisticRegression"

// Model is a binary logistic regression over standardised inputs.
// Inputs are transformed as (x - Mean) / Scale before the dot product.
type Model struct {
	Type      string    `json:"model_type"`
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
	Mean      []float64 `json:"mean"`
	Scale     []float64 `json:"scale"`
}

// validate checks that the model can score rows of width n.
func (m *Model) validate(n int) error {
	if m.Type != ModelTypeLogistic {
		return fmt.Errorf("%w: %q", ErrUnsupportedModel, m.Type)
	}
	if n == 0 {
		return ErrEmptySchema
	}
	if len(m.Weights) != n || len(m.Mean) != n || len(m.Scale) != n {
		return fmt.Errorf("%w: %d features, %d weights, %d means, %d scales",
			ErrSchemaMismatch, n, len(m.Weights), len(m.Mean), len(m.Scale))
	}
	return nil
}

// Probability returns P(malicious) for one input row.
func (m *Model) Probability(x []float64) float64 {
	z := m.Intercept
	for i, w := range m.Weights {
		scale := m.Scale[i]
		if scale == 0 {
			scale = 1
		}
		z += w * (x[i] - m.Mean[i]) / scale
	}
	return sigmoid(z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// trainingParams controls Fit.
type trainingParams struct {
	epochs       int
	learningRate float64
	l2           float64
}

var defaultTraining = trainingParams{epochs: 800, learningRate: 0.5, l2: 1e-3}

// Fit trains a logistic regression with full-batch gradient descent.
// X rows must all have the same width and y holds 0 or 1 labels.
func Fit(X [][]float64, y []float64, p trainingParams) *Model {
	n, d := len(X), len(X[0])

	mean := make([]float64, d)
	scale := make([]float64, d)
	for _, row := range X {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}
	for _, row := range X {
		for j, v := range row {
			diff := v - mean[j]
			scale[j] += diff * diff
		}
	}
	for j := range scale {
		scale[j] = math.Sqrt(scale[j] / float64(n))
		if scale[j] == 0 {
			scale[j] = 1
		}
	}

	z := make([][]float64, n)
	for i, row := range X {
		z[i] = make([]float64, d)
		for j, v := range row {
			z[i][j] = (v - mean[j]) / scale[j]
		}
	}

	w := make([]float64, d)
	var b float64
	grad := make([]float64, d)
	for range p.epochs {
		clear(grad)
		var gradB float64
		for i, row := range z {
			s := b
			for j, v := range row {
				s += w[j] * v
			}
			e := sigmoid(s) - y[i]
			for j, v := range row {
				grad[j] += e * v
			}
			gradB += e
		}
		for j := range w {
			w[j] -= p.learningRate * (grad[j]/float64(n) + p.l2*w[j])
		}
		b -= p.learningRate * gradB / float64(n)
	}

	return &Model{
		Type:      ModelTypeLogistic,
		Weights:   w,
		Intercept: b,
		Mean:      mean,
		Scale:     scale,
	}
}

// Accuracy returns the share of rows classified correctly at 0.5.
func (m *Model) Accuracy(X [][]float64, y []float64) float64 {
	if len(X) == 0 {
		return 0
	}
	correct := 0
	for i, row := range X {
		pred := 0.0
		if m.Probability(row) >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X))
}
