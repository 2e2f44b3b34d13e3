package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/presenter"
)

func newPredictCmd(opts *rootOptions) *cobra.Command {
	var (
		recordPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score one patient record",
		Long: `Predict reads a YAML patient record, fills any missing field with the form
default, validates it against the form catalogue and prints the risk level,
target heart rate and exercise duration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := readSubmission(recordPath)
			if err != nil {
				return err
			}

			bundle, err := opts.load()
			if err != nil {
				return err
			}
			defer bundle.Close()

			rx, err := bundle.Pipeline.Run(cmd.Context(), sub.Record())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					ID        string            `json:"id"`
					Record    map[string]any    `json:"record"`
					Panels    []presenter.Panel `json:"panels"`
					ElapsedMs float64           `json:"elapsed_ms"`
				}{
					ID:        rx.ID.String(),
					Record:    rx.Record.Map(),
					Panels:    presenter.Panels(rx),
					ElapsedMs: float64(rx.Elapsed.Microseconds()) / 1000.0,
				})
			}
			return presenter.WriteText(out, rx)
		},
	}

	cmd.Flags().StringVar(&recordPath, "record", "", "YAML patient record (omitted fields use form defaults)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output the prescription as JSON")
	return cmd
}

// readSubmission decodes a record file over the form defaults and validates it.
// An empty path yields the defaults.
func readSubmission(path string) (form.Submission, error) {
	sub := form.Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return sub, fmt.Errorf("read record: %w", err)
		}
		if err := yaml.Unmarshal(data, &sub); err != nil {
			return sub, fmt.Errorf("parse record %s: %w", path, err)
		}
	}

	if err := form.NewValidator().Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return sub, err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, form.Describe(fe.Param()))
		}
		return sub, fmt.Errorf("invalid record: %s", strings.Join(msgs, "; "))
	}
	return sub, nil
}
