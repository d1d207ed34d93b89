// Package prompt is the line-oriented console front end: it asks for missing
// settings and classifies feature vectors typed by the user.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"perceptron/common"
	"perceptron/core/dataset"
	"perceptron/core/ml"
)

const (
	ExitCommand  = "exit"
	LoopQuestion = "Enter input features separated by commas or type 'exit':"
)

type Prompt struct {
	in  *bufio.Scanner
	out io.Writer
	log common.Logger

	// lines is fed by a single reader goroutine so a blocked read can be
	// abandoned when the context is done.
	lines   chan string
	readErr error
	once    sync.Once
}

func New(in io.Reader, out io.Writer, log common.Logger) *Prompt {
	if log == nil {
		log = common.GetLogger(common.MODULE_PROMPT)
	}
	return &Prompt{in: bufio.NewScanner(in), out: out, log: log, lines: make(chan string)}
}

func (p *Prompt) readLines() {
	defer close(p.lines)
	for p.in.Scan() {
		p.lines <- p.in.Text()
	}
	p.readErr = p.in.Err()
}

func (p *Prompt) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() { go p.readLines() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			if p.readErr != nil {
				return "", p.readErr
			}
			return "", io.ErrUnexpectedEOF
		}
		return line, nil
	}
}

// Ask prints question on its own line and returns the trimmed answer.
// io.ErrUnexpectedEOF is returned when input ends before an answer, ctx.Err()
// when ctx is done first.
func (p *Prompt) Ask(ctx context.Context, question string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprintln(p.out, question); err != nil {
		return "", err
	}
	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *Prompt) AskFloat(ctx context.Context, question string) (float64, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(answer, 64)
	if err != nil {
		return 0, errors.Errorf("%q is not a number", answer)
	}
	return v, nil
}

func (p *Prompt) AskInt(ctx context.Context, question string) (int, error) {
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(answer)
	if err != nil {
		return 0, errors.Errorf("%q is not an integer", answer)
	}
	return v, nil
}

// Loop reads comma-separated feature vectors and prints the predicted class
// of each until "exit" (any case), end of input or ctx is done. Bad lines
// are reported and skipped.
func (p *Prompt) Loop(ctx context.Context, c ml.Classifier) error {
	for {
		line, err := p.Ask(ctx, LoopQuestion)
		if err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
		if strings.EqualFold(line, ExitCommand) {
			return nil
		}

		y, err := classify(c, line)
		if err != nil {
			p.log.Warnf("rejected input %q: %s", line, err)
			if _, werr := fmt.Fprintf(p.out, "Invalid input: %s\n", err); werr != nil {
				return werr
			}
			continue
		}
		p.log.Debugf("input %q predicted %d", line, y)
		if _, err := fmt.Fprintf(p.out, "Predicted class: %d\n", y); err != nil {
			return err
		}
	}
}

func classify(c ml.Classifier, line string) (ml.Label, error) {
	x, err := dataset.ParseFeatures(strings.Split(line, ","))
	if err != nil {
		return ml.Negative, err
	}
	return c.Predict(x)
}
