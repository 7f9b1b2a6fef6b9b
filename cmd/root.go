package cmd

import (
	"log/slog"

	"github.com/eerhardt/nni-mlnet/internal/nni"
	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	flagVerbose bool
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "nni-trial",
		Short:        "Exchange hyperparameters and results with an NNI orchestrator",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagVerbose {
				level = slog.LevelDebug
			}
			// Logs go to stderr: stdout carries metric lines on remote platforms.
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "nni-trial.yaml", "config file path")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	root.AddCommand(newParamsCmd())
	root.AddCommand(newReportCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newMetricsCmd())
	root.AddCommand(newListCmd())
	root.AddCommand(newStatusCmd())
	return root
}

// newClient snapshots the NNI environment for one command invocation.
func newClient(cmd *cobra.Command) *nni.Client {
	return nni.NewClient(&nni.ClientOpts{
		Env:    nni.EnvFromOS(),
		Stdout: cmd.OutOrStdout(),
		Logger: slog.Default(),
	})
}
