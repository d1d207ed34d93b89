package ml

import (
	"math/rand"

	"github.com/pkg/errors"
)

// Label is the binary class of a sample.
type Label int

const (
	Negative Label = 0
	Positive Label = 1
)

func (l Label) Valid() bool {
	return l == Negative || l == Positive
}

type Sample struct {
	x []float64
	y Label
}

// NewSample copies x, so the sample cannot be changed through the caller's slice.
func NewSample(x []float64, y Label) Sample {
	cp := make([]float64, len(x))
	copy(cp, x)
	return Sample{x: cp, y: y}
}

// GetX returns the stored feature vector. It must not be modified.
func (s *Sample) GetX() []float64 {
	return s.x
}

func (s *Sample) GetY() Label {
	return s.y
}

// SampleSet is an ordered collection of samples of one dimension.
type SampleSet struct {
	data []Sample
	dim  int
}

func NewSampleSet(samples ...Sample) (*SampleSet, error) {
	ss := &SampleSet{}
	for _, s := range samples {
		if err := ss.Append(s); err != nil {
			return nil, err
		}
	}
	return ss, nil
}

func (ss *SampleSet) Append(s Sample) error {
	if !s.y.Valid() {
		return errors.Wrapf(ErrInvalidLabel, "label %d", s.y)
	}
	if len(ss.data) == 0 {
		ss.dim = len(s.x)
	} else if len(s.x) != ss.dim {
		return errors.Wrapf(ErrDimensionMismatch, "sample has %d features, set has %d", len(s.x), ss.dim)
	}
	ss.data = append(ss.data, s)
	return nil
}

func (ss *SampleSet) Len() int {
	return len(ss.data)
}

// Dim is the feature count shared by every sample, 0 for an empty set.
func (ss *SampleSet) Dim() int {
	return ss.dim
}

func (ss *SampleSet) At(i int) Sample {
	return ss.data[i]
}

// Shuffle reorders the set in place.
func (ss *SampleSet) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(ss.data), func(i, j int) { ss.data[i], ss.data[j] = ss.data[j], ss.data[i] })
}

// Split shuffles a copy of the set and cuts it so the first part holds
// ratio of the samples. The receiver keeps its order.
func (ss *SampleSet) Split(ratio float64, rng *rand.Rand) (*SampleSet, *SampleSet, error) {
	if ratio <= 0 || ratio >= 1 {
		return nil, nil, errors.Errorf("split ratio %g not in (0, 1)", ratio)
	}
	data := make([]Sample, len(ss.data))
	copy(data, ss.data)
	rng.Shuffle(len(data), func(i, j int) { data[i], data[j] = data[j], data[i] })

	cut := int(float64(len(data)) * ratio)
	return &SampleSet{data: data[:cut], dim: ss.dim}, &SampleSet{data: data[cut:], dim: ss.dim}, nil
}
