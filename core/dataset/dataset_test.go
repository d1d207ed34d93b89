package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perceptron/common"
	"perceptron/core/ml"
)

func TestMain(m *testing.M) {
	common.SetLogConfig(&common.LogConfig{LogLevel: common.LEVEL_ERROR})
	os.Exit(m.Run())
}

const irisRows = `6.3,3.3,6.0,2.5,Iris-virginica
7.0,3.2,4.7,1.4,Iris-versicolor

5.8,2.7,5.1,1.9,Iris-virginica
6.4,3.2,4.5,1.5,Iris-versicolor
`

func TestRead(t *testing.T) {
	ss, err := Read(strings.NewReader(irisRows), DefaultLabels())
	require.NoError(t, err)
	require.Equal(t, 4, ss.Len())
	assert.Equal(t, 4, ss.Dim())

	s := ss.At(0)
	assert.Equal(t, []float64{6.3, 3.3, 6.0, 2.5}, s.GetX())
	assert.Equal(t, ml.Positive, s.GetY())
	s = ss.At(3)
	assert.Equal(t, []float64{6.4, 3.2, 4.5, 1.5}, s.GetX())
	assert.Equal(t, ml.Negative, s.GetY())
}

func TestReadTrimsSpaces(t *testing.T) {
	ss, err := Read(strings.NewReader("1.5, 2.5 , Iris-virginica\r\n"), DefaultLabels())
	require.NoError(t, err)
	s := ss.At(0)
	assert.Equal(t, []float64{1.5, 2.5}, s.GetX())
	assert.Equal(t, ml.Positive, s.GetY())
}

func TestReadUnknownLabel(t *testing.T) {
	_, err := Read(strings.NewReader("5.1,3.5,1.4,0.2,Iris-setosa\n"), DefaultLabels())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownLabel))
	assert.Contains(t, err.Error(), "line 1")
}

func TestReadMalformed(t *testing.T) {
	cases := map[string]string{
		"not a number": "6.3,abc,Iris-virginica\n",
		"ragged":       "6.3,3.3,Iris-virginica\n6.3,Iris-versicolor\n",
		"label only":   "Iris-virginica\n",
	}
	for name, in := range cases {
		_, err := Read(strings.NewReader(in), DefaultLabels())
		assert.True(t, errors.Is(err, ErrMalformedRow), name)
	}
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("\n\n"), DefaultLabels())
	assert.True(t, errors.Is(err, ErrEmptyDataset))
}

func TestNewLabelMap(t *testing.T) {
	lm, err := NewLabelMap("yes", "no")
	require.NoError(t, err)
	ss, err := Read(strings.NewReader("1,yes\n0,no\n"), lm)
	require.NoError(t, err)
	s := ss.At(1)
	assert.Equal(t, ml.Negative, s.GetY())

	_, err = NewLabelMap("same", "same")
	assert.Error(t, err)
	_, err = NewLabelMap("", "no")
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.csv")
	require.NoError(t, os.WriteFile(path, []byte(irisRows), 0644))

	ss, err := Load(path, DefaultLabels())
	require.NoError(t, err)
	assert.Equal(t, 4, ss.Len())

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), DefaultLabels())
	assert.Error(t, err)
}
