package prompt

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perceptron/core/ml"
	"perceptron/test/mock"
)

func newPrompt(in string) (*Prompt, *bytes.Buffer) {
	var out bytes.Buffer
	return New(strings.NewReader(in), &out, mock.GetMockLogger("prompt")), &out
}

func TestLoop(t *testing.T) {
	model, err := ml.NewWithWeights([]float64{1, 1}, 3, 0.1)
	require.NoError(t, err)

	p, out := newPrompt("2,2\n0.5, 1\n1,x\n1\n  EXIT \n3,3\n")
	require.NoError(t, p.Loop(context.Background(), model))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Equal(t, []string{
		LoopQuestion,
		"Predicted class: 1",
		LoopQuestion,
		"Predicted class: 0",
		LoopQuestion,
		lines[5],
		LoopQuestion,
		lines[7],
		LoopQuestion,
	}, lines)
	assert.True(t, strings.HasPrefix(lines[5], "Invalid input:"))
	assert.Contains(t, lines[7], "dimension mismatch")
}

func TestLoopEOF(t *testing.T) {
	model, err := ml.NewWithWeights([]float64{1}, 0, 0.1)
	require.NoError(t, err)

	p, out := newPrompt("1\n")
	require.NoError(t, p.Loop(context.Background(), model))
	assert.Equal(t, LoopQuestion+"\nPredicted class: 1\n"+LoopQuestion+"\n", out.String())
}

func TestLoopCancelled(t *testing.T) {
	model, err := ml.NewWithWeights([]float64{1}, 0, 0.1)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p, out := newPrompt("1\n")
	assert.Equal(t, context.Canceled, p.Loop(ctx, model))
	assert.Empty(t, out.String())
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	p, out := newPrompt(" data/train.csv \n0.1\n25\nabc\n")

	path, err := p.Ask(ctx, "Enter the path to the training data file:")
	require.NoError(t, err)
	assert.Equal(t, "data/train.csv", path)

	rate, err := p.AskFloat(ctx, "Enter the learning rate:")
	require.NoError(t, err)
	assert.Equal(t, 0.1, rate)

	epochs, err := p.AskInt(ctx, "Enter the number of epochs:")
	require.NoError(t, err)
	assert.Equal(t, 25, epochs)

	_, err = p.AskInt(ctx, "Enter the number of epochs:")
	assert.Error(t, err)

	_, err = p.Ask(ctx, "anything?")
	assert.Equal(t, io.ErrUnexpectedEOF, err)

	assert.True(t, strings.HasPrefix(out.String(), "Enter the path to the training data file:\nEnter the learning rate:\n"))
}

func TestLoopCancelledWhileReading(t *testing.T) {
	model, err := ml.NewWithWeights([]float64{1}, 0, 0.1)
	require.NoError(t, err)

	r, w := io.Pipe()
	defer w.Close()
	var out bytes.Buffer
	p := New(r, &out, mock.GetMockLogger("prompt"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Loop(ctx, model) }()

	// nothing is ever written, the loop sits in a read
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.Equal(t, context.Canceled, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop still blocked after cancel")
	}
	assert.Equal(t, LoopQuestion+"\n", out.String())
}

func TestAskCancelledWhileReading(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	p := New(r, &bytes.Buffer{}, mock.GetMockLogger("prompt"))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.Ask(ctx, "Enter the path to the training data file:")
	assert.Equal(t, context.DeadlineExceeded, err)
}
