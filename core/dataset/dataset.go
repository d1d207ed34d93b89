// Package dataset reads labelled comma-separated samples into an ml.SampleSet.
//
// Each row holds the feature values followed by a class name:
//
//	6.3,3.3,6.0,2.5,Iris-virginica
//
// The class name is mapped to a binary label through a LabelMap.
package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"perceptron/common"
	"perceptron/core/ml"
)

var (
	ErrUnknownLabel = errors.New("unknown label")
	ErrMalformedRow = errors.New("malformed row")
	ErrEmptyDataset = errors.New("empty dataset")
)

const (
	IrisVirginica  = "Iris-virginica"
	IrisVersicolor = "Iris-versicolor"
)

// LabelMap maps class names found in the data to binary labels.
type LabelMap map[string]ml.Label

// DefaultLabels is the two-class iris subset: virginica fires, versicolor does not.
func DefaultLabels() LabelMap {
	return LabelMap{
		IrisVirginica:  ml.Positive,
		IrisVersicolor: ml.Negative,
	}
}

// NewLabelMap builds a map from the positive and negative class names.
func NewLabelMap(positive, negative string) (LabelMap, error) {
	positive, negative = strings.TrimSpace(positive), strings.TrimSpace(negative)
	if positive == "" || negative == "" || positive == negative {
		return nil, errors.Errorf("need two distinct class names, got %q and %q", positive, negative)
	}
	return LabelMap{positive: ml.Positive, negative: ml.Negative}, nil
}

func (lm LabelMap) Lookup(name string) (ml.Label, error) {
	l, ok := lm[strings.TrimSpace(name)]
	if !ok {
		return ml.Negative, errors.Wrapf(ErrUnknownLabel, "%q", name)
	}
	return l, nil
}

// Load reads the file at path.
func Load(path string, labels LabelMap) (*ml.SampleSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open data file %s", path)
	}
	defer f.Close()

	ss, err := Read(f, labels)
	if err != nil {
		return nil, errors.WithMessagef(err, "load %s", path)
	}
	common.GetLogger(common.MODULE_DATASET).Infof("loaded %d samples with %d features from %s", ss.Len(), ss.Dim(), path)
	return ss, nil
}

// Read parses rows until EOF. Blank lines are skipped; every other row must
// have the width of the first one.
func Read(r io.Reader, labels LabelMap) (*ml.SampleSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	ss := &ml.SampleSet{}
	width := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(ErrMalformedRow, err.Error())
		}
		line, _ := cr.FieldPos(0)

		if width == 0 {
			width = len(row)
			if width < 2 {
				return nil, errors.Wrapf(ErrMalformedRow, "line %d: need at least one feature and a label", line)
			}
		} else if len(row) != width {
			return nil, errors.Wrapf(ErrMalformedRow, "line %d: %d fields, expected %d", line, len(row), width)
		}

		x, err := ParseFeatures(row[:width-1])
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", line)
		}
		y, err := labels.Lookup(row[width-1])
		if err != nil {
			return nil, errors.WithMessagef(err, "line %d", line)
		}
		if err := ss.Append(ml.NewSample(x, y)); err != nil {
			return nil, errors.WithMessagef(err, "line %d", line)
		}
	}

	if ss.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	return ss, nil
}

// ParseFeatures converts text fields to float64 values.
func ParseFeatures(fields []string) ([]float64, error) {
	x := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedRow, "feature %d: %q is not a number", i+1, f)
		}
		x[i] = v
	}
	return x, nil
}
