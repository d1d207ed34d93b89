// Package trainer drives a perceptron through shuffled training epochs and
// scores it on a held-out set after each one.
package trainer

import (
	"context"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"perceptron/common"
	"perceptron/core/ml"
	"perceptron/core/msgbus"
)

// Learner is a classifier that can be updated one sample at a time.
type Learner interface {
	ml.Classifier
	Train(inputs []float64, expected ml.Label) error
}

// EpochReport is published as LocalTrainMsg_Epoch after every epoch.
type EpochReport struct {
	Epoch    int // 1-based
	Accuracy ml.Accuracy
}

// Summary is published as LocalTrainMsg_Done when Run returns without error.
type Summary struct {
	Reports      []EpochReport
	MeanAccuracy float64
	Final        ml.Accuracy
}

type Trainer struct {
	model     Learner
	rng       *rand.Rand
	epochs    int
	earlyStop bool

	bus   msgbus.MessageBus
	runID string
	log   common.Logger
}

type Option func(*Trainer)

func WithEpochs(n int) Option {
	return func(t *Trainer) { t.epochs = n }
}

// WithEarlyStop ends the run after the first epoch that scores 1.0.
func WithEarlyStop(on bool) Option {
	return func(t *Trainer) { t.earlyStop = on }
}

func WithBus(bus msgbus.MessageBus, runID string) Option {
	return func(t *Trainer) { t.bus, t.runID = bus, runID }
}

func WithLogger(log common.Logger) Option {
	return func(t *Trainer) { t.log = log }
}

func New(model Learner, rng *rand.Rand, opts ...Option) (*Trainer, error) {
	if model == nil || rng == nil {
		return nil, errors.New("trainer needs a model and a random source")
	}
	t := &Trainer{model: model, rng: rng}
	for _, opt := range opts {
		opt(t)
	}
	if t.epochs < 0 {
		return nil, errors.Errorf("negative epoch count %d", t.epochs)
	}
	if t.log == nil {
		t.log = common.GetLogger(common.MODULE_TRAINER)
	}
	return t, nil
}

// Run trains for the configured number of epochs. train is shuffled in place.
// With zero epochs the model is left untouched and no report is produced.
// ctx is only checked between epochs.
func (t *Trainer) Run(ctx context.Context, train, test *ml.SampleSet) ([]EpochReport, error) {
	if train.Len() > 0 && test.Len() > 0 && train.Dim() != test.Dim() {
		return nil, errors.Wrapf(ml.ErrDimensionMismatch, "train has %d features, test has %d", train.Dim(), test.Dim())
	}

	reports := make([]EpochReport, 0, t.epochs)
	for epoch := 1; epoch <= t.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return reports, errors.Wrapf(err, "stopped before epoch %d", epoch)
		}

		if err := t.Epoch(train); err != nil {
			return reports, errors.WithMessagef(err, "epoch %d", epoch)
		}
		acc, err := ml.Evaluate(t.model, test)
		if err != nil {
			return reports, errors.WithMessagef(err, "epoch %d", epoch)
		}

		report := EpochReport{Epoch: epoch, Accuracy: acc}
		reports = append(reports, report)
		t.log.Debugf("epoch %d accuracy %s", epoch, acc)
		if err := t.publish(common.LocalTrainMsg_Epoch, report); err != nil {
			return reports, err
		}

		if t.earlyStop && acc.Total > 0 && acc.Correct == acc.Total {
			t.log.Infof("test set fully separated after epoch %d, stopping", epoch)
			break
		}
	}

	summary := Summarize(reports)
	t.log.Infof("trained %d epochs, mean accuracy %.4f, final %s", len(reports), summary.MeanAccuracy, summary.Final)
	return reports, t.publish(common.LocalTrainMsg_Done, summary)
}

// Epoch shuffles train and feeds every sample to the model once, in order.
func (t *Trainer) Epoch(train *ml.SampleSet) error {
	train.Shuffle(t.rng)
	for i := 0; i < train.Len(); i++ {
		s := train.At(i)
		if err := t.model.Train(s.GetX(), s.GetY()); err != nil {
			return errors.WithMessagef(err, "sample %d", i)
		}
	}
	return nil
}

func (t *Trainer) publish(msgType common.LocalMsgType, payload interface{}) error {
	if t.bus == nil {
		return nil
	}
	return t.bus.Publish(t.runID, msgType, payload)
}

// Summarize reduces epoch reports to the mean and final accuracy.
func Summarize(reports []EpochReport) Summary {
	s := Summary{Reports: reports}
	if len(reports) == 0 {
		return s
	}
	ratios := make([]float64, len(reports))
	for i, r := range reports {
		ratios[i] = r.Accuracy.Ratio()
	}
	s.MeanAccuracy = stat.Mean(ratios, nil)
	s.Final = reports[len(reports)-1].Accuracy
	return s
}
