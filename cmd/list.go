package cmd

import (
	"fmt"

	"github.com/eerhardt/nni-mlnet/internal/config"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List declared hyperparameters and the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Pipeline: %v\n", cfg.Pipeline.Command)
			if cfg.Pipeline.Image != "" {
				fmt.Fprintf(out, "  image: %s\n", cfg.Pipeline.Image)
			}
			fmt.Fprintln(out, "\nHyperparameters:")
			for _, s := range cfg.Specs() {
				def := s.Default.String()
				if !s.Default.IsValid() {
					def = "(none)"
				}
				fmt.Fprintf(out, "  - %s (%s, default %s)\n", s.Name, s.Kind, def)
			}
			return nil
		},
	}
}
