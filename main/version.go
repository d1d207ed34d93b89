package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var version = "dev"

func versionCMD() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "perceptron %s\n", version)
			return err
		},
	}
}
