package trainer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"perceptron/core/msgbus"
)

// Reporter prints one "Epoch <n> Accuracy: <ratio>" line per epoch report.
type Reporter struct {
	w io.Writer
}

func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

func (r *Reporter) HandleMsgFromMsgBus(msg *msgbus.BusMessage) error {
	report, ok := msg.Msg.(EpochReport)
	if !ok {
		return nil
	}
	_, err := fmt.Fprintf(r.w, "Epoch %d Accuracy: %s\n", report.Epoch, FormatRatio(report.Accuracy.Ratio()))
	return err
}

// FormatRatio prints the shortest decimal that round-trips, always with a
// fractional part: 1 is "1.0", 0.95 is "0.95".
func FormatRatio(r float64) string {
	s := strconv.FormatFloat(r, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
