// Package main is the cardiorx command line: score a patient record against the
// artifact manifest without running the server.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Skufu/CardioRx/internal/artifact"
	"github.com/Skufu/CardioRx/internal/config"
	"github.com/Skufu/CardioRx/internal/logger"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

type rootOptions struct {
	manifest string
	policy   string
	onnxLib  string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "cardiorx",
		Short: "Cardiac rehabilitation prescriptions from pre-trained models",
		Long: `cardiorx loads the risk, target heart rate and duration model artifacts named
by a manifest and scores patient records against them. The same pipeline backs
the web form served by the server binary.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init(cfg.LogLevel, cfg.LogFormat)
			logger.Log.SetOutput(cmd.ErrOrStderr())
			if !cmd.Flags().Changed("manifest") {
				opts.manifest = cfg.ArtifactManifest
			}
			if !cmd.Flags().Changed("policy") {
				opts.policy = cfg.MismatchPolicy
			}
			if !cmd.Flags().Changed("onnx-lib") {
				opts.onnxLib = cfg.ONNXRuntimeLib
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.manifest, "manifest", "models/artifacts.yaml", "artifact manifest (default from ARTIFACT_MANIFEST)")
	root.PersistentFlags().StringVar(&opts.policy, "policy", string(pipeline.ZeroFill), "mismatch policy: zero-fill or reject")
	root.PersistentFlags().StringVar(&opts.onnxLib, "onnx-lib", "", "path to the onnxruntime shared library")

	root.AddCommand(newPredictCmd(opts), newSchemaCmd(opts), newFieldsCmd())
	return root
}

func (o *rootOptions) load() (*artifact.Bundle, error) {
	policy, err := pipeline.ParsePolicy(o.policy)
	if err != nil {
		return nil, err
	}
	return artifact.Load(o.manifest, artifact.Options{Policy: policy, ONNXLibrary: o.onnxLib})
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
