package cmd

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/eerhardt/nni-mlnet/internal/config"
	"github.com/eerhardt/nni-mlnet/internal/report"
	"github.com/spf13/cobra"
)

var (
	flagFormat string
	flagLog    bool
)

func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics [path]",
		Short: "Summarize reported results",
		Long:  "Decode a local .nni/metrics file (default: under NNI_SYS_DIR or the working directory), or with --log a captured trial stdout, and summarize the results per trial.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) > 0 {
				path = args[0]
			} else {
				p, err := newClient(cmd).MetricsPath()
				if err != nil {
					return err
				}
				path = p
			}
			format, err := metricsFormat()
			if err != nil {
				return err
			}
			records, err := report.ReadRecords(path, flagLog)
			if err != nil {
				return err
			}
			return report.Generate(records, format, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flagFormat, "format", "", "output format (table, markdown, json); defaults to the config's metrics.format")
	cmd.Flags().BoolVar(&flagLog, "log", false, "read a captured stdout log instead of a metrics file")
	return cmd
}

func metricsFormat() (string, error) {
	if flagFormat != "" {
		if err := report.CheckFormat(flagFormat); err != nil {
			return "", fmt.Errorf("--format: %w", err)
		}
		return flagFormat, nil
	}
	cfg, err := config.Load(cfgFile)
	if errors.Is(err, fs.ErrNotExist) {
		return "table", nil
	}
	if err != nil {
		return "", err
	}
	return cfg.Metrics.Format, nil
}
