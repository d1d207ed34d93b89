package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var flags *pflag.FlagSet

var (
	cfgPathFlag     string
	trainPathFlag   string
	testPathFlag    string
	splitFlag       float64
	rateFlag        float64
	epochsFlag      int
	seedFlag        int64
	earlyStopFlag   bool
	interactiveFlag bool
	logLevelFlag    string
)

func init() {
	resetFlags()
}

// Explicitly define a method to facilitate tests
func resetFlags() {
	flags = &pflag.FlagSet{}

	flags.StringVarP(&cfgPathFlag, "config", "c", "",
		"config file path, default perceptron_config.yaml in $PERCEPTRON_CFG_PATH or .")
	flags.StringVar(&trainPathFlag, "train", "", "training data file (asked on the console when unset)")
	flags.StringVar(&testPathFlag, "test", "", "test data file (asked on the console when unset)")
	flags.Float64Var(&splitFlag, "split", 0, "without --test, train on this share of the training file and test on the rest")
	flags.Float64VarP(&rateFlag, "rate", "r", 0, "learning rate (asked on the console when unset)")
	flags.IntVarP(&epochsFlag, "epochs", "e", 0, "number of training epochs (asked on the console when unset)")
	flags.Int64Var(&seedFlag, "seed", 0, "random seed, 0 picks one from the clock")
	flags.BoolVar(&earlyStopFlag, "early-stop", false, "stop once the test set is classified without error")
	flags.BoolVarP(&interactiveFlag, "interactive", "i", true, "classify console input after training")
	flags.StringVar(&logLevelFlag, "log-level", "INFO", "DEBUG, INFO, WARN or ERROR")
}

func attachFlags(cmd *cobra.Command, names []string) {
	cmdFlags := cmd.Flags()
	for _, name := range names {
		if flag := flags.Lookup(name); flag != nil {
			cmdFlags.AddFlag(flag)
		} else {
			panic(fmt.Errorf("Could not find flag '%s' to attach to command '%s'", name, cmd.Name()))
		}
	}
}

func newMainCmd() *cobra.Command {
	mainCmd := &cobra.Command{
		Use:           "perceptron",
		Short:         "train a perceptron on two iris classes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	mainCmd.AddCommand(runCMD())
	mainCmd.AddCommand(versionCMD())
	return mainCmd
}

func main() {
	if newMainCmd().Execute() != nil {
		os.Exit(1)
	}
}
