package node

import (
	"context"
	"io"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"perceptron/common"
	"perceptron/core/config"
	"perceptron/core/dataset"
	"perceptron/core/ml"
	"perceptron/core/msgbus"
	"perceptron/core/prompt"
	"perceptron/core/trainer"
)

// Questions asked on the console for settings that nobody supplied.
var questions = []struct {
	key      string
	question string
}{
	{config.KeyTrainPath, "Enter the path to the training data file:"},
	{config.KeyTestPath, "Enter the path to the test data file:"},
	{config.KeyLearningRate, "Enter the learning rate:"},
	{config.KeyEpochs, "Enter the number of epochs:"},
}

// PerceptronNode is one run: it loads the data, builds the model, trains it
// and then optionally serves predictions on the console.
type PerceptronNode struct {
	conf   *config.LocalConfig
	runID  string
	seed   int64
	rng    *rand.Rand
	model  *ml.Perceptron
	train  *ml.SampleSet
	test   *ml.SampleSet
	msgBus msgbus.MessageBus

	trainer *trainer.Trainer
	prompt  *prompt.Prompt
	log     *common.ModuleLogger
}

// Init asks for missing settings on in, loads the data and builds the model
// and trainer. Epoch reports and prompts go to out.
func (n *PerceptronNode) Init(ctx context.Context, c *config.LocalConfig, in io.Reader, out io.Writer) error {
	n.conf = c

	logConfig, err := c.LogConfig()
	if err != nil {
		return errors.WithMessage(err, "get log config")
	}
	common.SetLogConfig(logConfig)

	n.runID = uuid.New().String()
	n.log = common.GetLogger(common.MODULE_NODE).With("run", n.runID)
	if c.File != "" {
		n.log.Infof("using config file %s", c.File)
	}

	n.prompt = prompt.New(in, out, common.GetLogger(common.MODULE_PROMPT).With("run", n.runID))
	if err := n.askMissing(ctx); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		return err
	}

	n.seed = c.Train.Seed
	if n.seed == 0 {
		n.seed = time.Now().UnixNano()
	}
	n.rng = rand.New(rand.NewSource(n.seed))
	n.log.Infof("random seed %d", n.seed)

	if err := n.loadData(); err != nil {
		return err
	}

	n.model, err = ml.New(n.train.Dim(), c.Train.LearningRate, n.rng)
	if err != nil {
		return err
	}
	common.GetLogger(common.MODULE_MODEL).With("run", n.runID).Debugf("initial weights %v threshold %g", n.model.Weights(), n.model.Threshold())

	n.msgBus = msgbus.NewMessageBus()
	n.msgBus.Register(common.LocalTrainMsg_Epoch, trainer.NewReporter(out))
	events := &eventLogger{log: n.log}
	n.msgBus.Register(common.LocalTrainMsg, events)
	n.msgBus.Register(common.LocalPredictMsg, events)

	n.trainer, err = trainer.New(n.model, n.rng,
		trainer.WithEpochs(c.Train.Epochs),
		trainer.WithEarlyStop(c.Train.EarlyStop),
		trainer.WithBus(n.msgBus, n.runID),
		trainer.WithLogger(common.GetLogger(common.MODULE_TRAINER).With("run", n.runID)),
	)
	return err
}

// loadData reads the training file and either the test file or, with a
// split ratio and no test path, a held-out share of the training file.
func (n *PerceptronNode) loadData() error {
	c := n.conf
	labels, err := dataset.NewLabelMap(c.Data.Positive, c.Data.Negative)
	if err != nil {
		return err
	}
	if n.train, err = dataset.Load(c.Data.TrainPath, labels); err != nil {
		return errors.WithMessage(err, "training data")
	}

	if c.Data.TestPath == "" {
		all := n.train
		if n.train, n.test, err = all.Split(c.Data.SplitRatio, n.rng); err != nil {
			return errors.WithMessage(err, "split training data")
		}
		if n.train.Len() == 0 || n.test.Len() == 0 {
			return errors.Wrapf(dataset.ErrEmptyDataset, "split %g of %d samples leaves an empty side", c.Data.SplitRatio, all.Len())
		}
		n.log.Infof("split %d samples into %d for training and %d for testing", all.Len(), n.train.Len(), n.test.Len())
		return nil
	}

	if n.test, err = dataset.Load(c.Data.TestPath, labels); err != nil {
		return errors.WithMessage(err, "test data")
	}
	if n.train.Dim() != n.test.Dim() {
		return errors.Wrapf(ml.ErrDimensionMismatch, "training data has %d features, test data has %d", n.train.Dim(), n.test.Dim())
	}
	return nil
}

func (n *PerceptronNode) askMissing(ctx context.Context) error {
	for _, q := range questions {
		if !n.conf.IsMissing(q.key) {
			continue
		}
		var (
			value interface{}
			err   error
		)
		switch q.key {
		case config.KeyLearningRate:
			value, err = n.prompt.AskFloat(ctx, q.question)
		case config.KeyEpochs:
			value, err = n.prompt.AskInt(ctx, q.question)
		default:
			value, err = n.prompt.Ask(ctx, q.question)
		}
		if err != nil {
			return errors.WithMessagef(err, "read %s", q.key)
		}
		if err := n.conf.Supply(q.key, value); err != nil {
			return err
		}
	}
	return nil
}

// Start trains the model and, when enabled, hands the console to the
// prediction loop.
func (n *PerceptronNode) Start(ctx context.Context) ([]trainer.EpochReport, error) {
	if n.trainer == nil {
		return nil, errors.New("node not initialized")
	}
	defer n.log.Sync()

	reports, err := n.trainer.Run(ctx, n.train, n.test)
	if err != nil {
		return reports, err
	}
	common.GetLogger(common.MODULE_MODEL).With("run", n.runID).Infof("trained weights %v threshold %g", n.model.Weights(), n.model.Threshold())

	if !n.conf.Train.Interactive {
		return reports, nil
	}
	return reports, n.prompt.Loop(ctx, &publishingClassifier{model: n.model, bus: n.msgBus, runID: n.runID})
}

func (n *PerceptronNode) Model() *ml.Perceptron {
	return n.model
}

func (n *PerceptronNode) RunID() string {
	return n.runID
}

func (n *PerceptronNode) Seed() int64 {
	return n.seed
}
