package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"text/tabwriter"

	"github.com/eerhardt/nni-mlnet/internal/config"
	"github.com/eerhardt/nni-mlnet/internal/hparams"
	"github.com/spf13/cobra"
)

func newParamsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "params",
		Short: "Show the parameters assigned to this trial",
		Long:  "Read NNI_SYS_DIR/parameter.cfg and print the assigned parameters. When a config file is present, also show every declared hyperparameter after binding.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient(cmd)
			params, err := client.GetNextParameter()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Parameter ID: %d\n", client.ParameterID())
			names := make([]string, 0, len(params))
			for k := range params {
				names = append(names, k)
			}
			sort.Strings(names)
			for _, k := range names {
				fmt.Fprintf(out, "  %s = %s\n", k, params[k])
			}

			cfg, err := config.Load(cfgFile)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return err
			}
			set, err := hparams.Bind(cfg.Specs(), params)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "\nHyperparameters:")
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			for _, name := range set.Names() {
				v, _ := set.Get(name)
				source := "default"
				if set.Tuned(name) {
					source = "tuned"
				}
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", name, v.Kind(), v.String(), source)
			}
			for _, name := range set.Unknown() {
				fmt.Fprintf(tw, "  %s\t-\t%s\tundeclared\n", name, params[name])
			}
			return tw.Flush()
		},
	}
}
