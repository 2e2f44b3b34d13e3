package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

func newSchemaCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the expected input columns of each stage",
		RunE: func(cmd *cobra.Command, args []string) error {
			bundle, err := opts.load()
			if err != nil {
				return err
			}
			defer bundle.Close()

			out := cmd.OutOrStdout()
			schemas := bundle.Pipeline.Schemas()
			for _, name := range pipeline.StageNames {
				fmt.Fprintf(out, "%s (%d columns)\n", name, len(schemas[name]))
				for _, col := range schemas[name] {
					fmt.Fprintf(out, "  %s\n", col)
				}
			}
			return nil
		},
	}
}

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "Print the form catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "FIELD\tSECTION\tALLOWED\tDEFAULT")
			for _, f := range form.Fields {
				allowed := fmt.Sprintf("%d..%d", f.Min, f.Max)
				if f.Kind == form.KindSelect {
					allowed = fmt.Sprintf("%q", f.Options)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", f.Name, f.Section, allowed, f.Default)
			}
			return w.Flush()
		},
	}
}
