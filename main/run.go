package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"perceptron/core/config"
	"perceptron/node"
)

func run(cmd *cobra.Command) error {
	lc, err := config.InitLocalConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	nodeInstance := node.PerceptronNode{}
	if err := nodeInstance.Init(ctx, lc, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
		return err
	}
	_, err = nodeInstance.Start(ctx)
	return err
}

func runCMD() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "train and evaluate",
		Long:  "train the perceptron for the configured epochs, report test accuracy after each one, then classify console input",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd)
		},
	}
	flagList := []string{
		"config",
		"train",
		"test",
		"split",
		"rate",
		"epochs",
		"seed",
		"early-stop",
		"interactive",
		"log-level",
	}
	attachFlags(runCmd, flagList)
	return runCmd
}
