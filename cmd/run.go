package cmd

import (
	"log/slog"
	"time"

	"github.com/eerhardt/nni-mlnet/internal/config"
	"github.com/eerhardt/nni-mlnet/internal/runner"
	"github.com/spf13/cobra"
)

var flagTimeout time.Duration

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the training pipeline for this trial and report its metric",
		Args:  cobra.NoArgs,
		RunE:  runTrial,
	}
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "override the configured pipeline timeout")
	return cmd
}

func runTrial(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	meta, err := runner.RunTrial(cmd.Context(), &runner.TrialOpts{
		Client:  newClient(cmd),
		Config:  cfg,
		Timeout: flagTimeout,
		Output:  cmd.ErrOrStderr(),
		Logger:  slog.Default(),
	})
	if err != nil {
		return err
	}
	slog.Info("trial complete",
		"parameter_id", meta.ParameterID,
		"metric", meta.Metric,
		"duration_s", meta.DurationS)
	return nil
}
