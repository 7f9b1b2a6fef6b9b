package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/eerhardt/nni-mlnet/internal/result"
	"github.com/eerhardt/nni-mlnet/internal/runner"
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show how the last pipeline run of this trial ended",
		Long:  "Read the meta.json that run leaves in the trial work dir (.nni/trial under NNI_SYS_DIR or the working directory) and print its exit reason and reported metric.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := runner.TrialDir(newClient(cmd).Env())
			if err != nil {
				return err
			}
			meta, err := result.ReadTrialMeta(result.MetaPath(dir))
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("no trial has run in %s", dir)
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Trial: %s (parameter %d)\n", meta.TrialJobID, meta.ParameterID)
			fmt.Fprintf(out, "Exit: %s (code %d) after %ds\n", meta.ExitReason, meta.ExitCode, meta.DurationS)
			if meta.Reported {
				fmt.Fprintf(out, "Reported: %s\n", meta.Metric)
			} else {
				fmt.Fprintln(out, "Reported: nothing")
			}
			names := make([]string, 0, len(meta.Hyperparameters))
			for k := range meta.Hyperparameters {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Fprintf(out, "  %s = %s\n", k, meta.Hyperparameters[k])
			}
			return nil
		},
	}
}
