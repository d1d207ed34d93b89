package ml

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

var (
	ErrDimensionMismatch    = errors.New("dimension mismatch")
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrInvalidLabel         = errors.New("invalid label")
)

// initScale bounds the random initial weights and threshold to [0, initScale).
const initScale = 0.1

// Perceptron is a single-layer binary linear classifier. It fires (predicts 1)
// when the weighted sum of the inputs reaches the threshold.
//
// A Perceptron is not safe for concurrent use: every Train call depends on the
// weights left by the previous one.
type Perceptron struct {
	weights      []float64
	threshold    float64
	learningRate float64
}

// New builds a model for inputCount features with weights and threshold drawn
// uniformly from [0, 0.1) using rng. The threshold is drawn first.
func New(inputCount int, learningRate float64, rng *rand.Rand) (*Perceptron, error) {
	if inputCount <= 0 {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "input count %d", inputCount)
	}
	if rng == nil {
		return nil, errors.WithMessage(ErrInvalidConfiguration, "nil random source")
	}
	if err := checkLearningRate(learningRate); err != nil {
		return nil, err
	}

	p := &Perceptron{
		weights:      make([]float64, inputCount),
		threshold:    rng.Float64() * initScale,
		learningRate: learningRate,
	}
	for i := range p.weights {
		p.weights[i] = rng.Float64() * initScale
	}
	return p, nil
}

// NewWithWeights builds a model from fixed parameters. weights is copied.
func NewWithWeights(weights []float64, threshold, learningRate float64) (*Perceptron, error) {
	if len(weights) == 0 {
		return nil, errors.WithMessage(ErrInvalidConfiguration, "no weights")
	}
	if err := checkLearningRate(learningRate); err != nil {
		return nil, err
	}
	w := make([]float64, len(weights))
	copy(w, weights)
	return &Perceptron{weights: w, threshold: threshold, learningRate: learningRate}, nil
}

func checkLearningRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		return errors.Wrapf(ErrInvalidConfiguration, "learning rate %g", rate)
	}
	return nil
}

// Predict returns Positive if Σ weights[i]*inputs[i] >= threshold, Negative otherwise.
func (p *Perceptron) Predict(inputs []float64) (Label, error) {
	if err := p.checkDim(inputs); err != nil {
		return Negative, err
	}
	return p.predict(inputs), nil
}

func (p *Perceptron) predict(inputs []float64) Label {
	if floats.Dot(p.weights, inputs) >= p.threshold {
		return Positive
	}
	return Negative
}

// Train applies one perceptron update for a single sample:
//
//	error = expected - Predict(inputs)
//	weights[i] += learningRate * error * inputs[i]
//	threshold -= learningRate * error
//
// A correct prediction leaves the parameters unchanged.
func (p *Perceptron) Train(inputs []float64, expected Label) error {
	if err := p.checkDim(inputs); err != nil {
		return err
	}
	if !expected.Valid() {
		return errors.Wrapf(ErrInvalidLabel, "expected output %d", expected)
	}

	step := p.learningRate * float64(expected-p.predict(inputs))
	floats.AddScaled(p.weights, step, inputs)
	p.threshold -= step
	return nil
}

func (p *Perceptron) checkDim(inputs []float64) error {
	if len(inputs) != len(p.weights) {
		return errors.Wrapf(ErrDimensionMismatch, "got %d features, model has %d", len(inputs), len(p.weights))
	}
	return nil
}

// Weights returns a copy of the current weights.
func (p *Perceptron) Weights() []float64 {
	w := make([]float64, len(p.weights))
	copy(w, p.weights)
	return w
}

func (p *Perceptron) Threshold() float64 {
	return p.threshold
}

func (p *Perceptron) LearningRate() float64 {
	return p.learningRate
}

func (p *Perceptron) Dim() int {
	return len(p.weights)
}
