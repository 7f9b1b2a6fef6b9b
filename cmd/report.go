package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report METRIC",
		Short: "Report a final result for this trial",
		Long:  "Load this trial's parameter id from NNI_SYS_DIR/parameter.cfg, then report METRIC to the orchestrator through the channel NNI_PLATFORM selects.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			metric, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return fmt.Errorf("parsing metric %q: %w", args[0], err)
			}
			client := newClient(cmd)
			if _, err := client.GetNextParameter(); err != nil {
				return err
			}
			return client.ReportFinalResult(metric)
		},
	}
}
