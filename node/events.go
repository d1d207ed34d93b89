package node

import (
	"perceptron/common"
	"perceptron/core/ml"
	"perceptron/core/msgbus"
	"perceptron/core/trainer"
)

// Prediction is published as LocalPredictMsg_Result for every console query.
type Prediction struct {
	Inputs []float64
	Label  ml.Label
}

// publishingClassifier announces every prediction on the bus.
type publishingClassifier struct {
	model *ml.Perceptron
	bus   msgbus.MessageBus
	runID string
}

func (c *publishingClassifier) Predict(inputs []float64) (ml.Label, error) {
	y, err := c.model.Predict(inputs)
	if err != nil {
		return y, err
	}
	return y, c.bus.Publish(c.runID, common.LocalPredictMsg_Result, Prediction{Inputs: inputs, Label: y})
}

type eventLogger struct {
	log common.Logger
}

func (e *eventLogger) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	switch m := msg.Msg.(type) {
	case trainer.EpochReport:
		e.log.Infof("epoch %d accuracy %s", m.Epoch, m.Accuracy)
	case trainer.Summary:
		e.log.Infof("run done after %d epochs, mean accuracy %.4f", len(m.Reports), m.MeanAccuracy)
	case Prediction:
		e.log.Debugf("predicted %d for %v", m.Label, m.Inputs)
	default:
		e.log.Warnf("unhandled msg type %#x", uint32(msg.MsgType))
	}
	return nil
}
