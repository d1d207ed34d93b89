package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const trainRows = `0.2,0.3,Iris-versicolor
0.8,0.6,Iris-versicolor
0.5,0.1,Iris-versicolor
0.4,0.9,Iris-versicolor
5.1,0.4,Iris-virginica
5.9,0.7,Iris-virginica
5.5,0.2,Iris-virginica
5.3,0.8,Iris-virginica
`

const testRows = `0.5,0.5,Iris-versicolor
5.5,0.5,Iris-virginica
`

func writeFiles(t *testing.T) (string, string) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.csv")
	test := filepath.Join(dir, "test.csv")
	require.NoError(t, os.WriteFile(train, []byte(trainRows), 0644))
	require.NoError(t, os.WriteFile(test, []byte(testRows), 0644))
	// keep logs off disk
	require.NoError(t, os.WriteFile(filepath.Join(dir, "perceptron_config.yaml"), []byte("log:\n  path: \"\"\n"), 0644))
	t.Setenv("PERCEPTRON_CFG_PATH", dir)
	return train, test
}

func execute(t *testing.T, in string, args ...string) (string, error) {
	resetFlags()
	cmd := newMainCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(in))
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCommand(t *testing.T) {
	train, test := writeFiles(t)

	out, err := execute(t, "5.6,0.4\nexit\n",
		"run", "--train", train, "--test", test, "--rate", "0.1", "--epochs", "40", "--seed", "1", "--log-level", "error")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 40+3)
	require.True(t, strings.HasPrefix(lines[0], "Epoch 1 Accuracy: "))
	require.Equal(t, "Epoch 40 Accuracy: 1.0", lines[39])
	require.Equal(t, "Predicted class: 1", lines[41])
}

func TestRunCommandAsks(t *testing.T) {
	train, test := writeFiles(t)

	out, err := execute(t, strings.Join([]string{train, test, "0.1", "3"}, "\n")+"\n",
		"run", "--interactive=false", "--seed", "2")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Enter the path to the training data file:\n"))
	require.Contains(t, out, "Epoch 3 Accuracy: ")
}

func TestRunCommandBadInput(t *testing.T) {
	train, _ := writeFiles(t)

	_, err := execute(t, "", "run", "--train", train, "--test", train, "--rate", "0.1", "--epochs", "-1", "--interactive=false")
	require.Error(t, err)

	_, err = execute(t, "", "run", "--train", train, "--interactive=false")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Equal(t, "perceptron dev\n", out)
}
