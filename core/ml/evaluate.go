package ml

import (
	"fmt"

	"github.com/pkg/errors"
)

type Accuracy struct {
	Correct int
	Total   int
}

// Ratio is Correct/Total, 0 when nothing was evaluated.
func (a Accuracy) Ratio() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Total)
}

func (a Accuracy) String() string {
	return fmt.Sprintf("%g (%d/%d)", a.Ratio(), a.Correct, a.Total)
}

// Classifier is anything that maps a feature vector to a label.
type Classifier interface {
	Predict(inputs []float64) (Label, error)
}

// Evaluate counts how many samples of ss the classifier labels correctly.
func Evaluate(c Classifier, ss *SampleSet) (Accuracy, error) {
	acc := Accuracy{Total: ss.Len()}
	for i := 0; i < ss.Len(); i++ {
		s := ss.At(i)
		y, err := c.Predict(s.GetX())
		if err != nil {
			return Accuracy{}, errors.WithMessagef(err, "evaluate sample %d", i)
		}
		if y == s.GetY() {
			acc.Correct++
		}
	}
	return acc, nil
}
