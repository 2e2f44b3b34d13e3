// Package artifact loads the nine stage artifacts named by a YAML manifest and
// assembles them into a pipeline.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Skufu/CardioRx/internal/logger"
	"github.com/Skufu/CardioRx/internal/model"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

// StageFiles names one stage's artifact triple, relative to the manifest.
type StageFiles struct {
	Estimator string `yaml:"estimator"`
	Scaler    string `yaml:"scaler"`
	Encoder   string `yaml:"encoder"`
}

// Manifest is the artifacts.yaml document.
type Manifest struct {
	Stages map[string]StageFiles `yaml:"stages"`
}

type Options struct {
	Policy      pipeline.MismatchPolicy
	ONNXLibrary string
}

// Bundle is the loaded pipeline plus the resources it holds open.
type Bundle struct {
	Pipeline *pipeline.Pipeline
	closers  []io.Closer
}

// Close releases estimator resources such as onnxruntime sessions.
func (b *Bundle) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.closers = nil
	return errors.Join(errs...)
}

func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	for _, name := range pipeline.StageNames {
		files, ok := m.Stages[name]
		if !ok {
			return nil, fmt.Errorf("manifest %s: missing stage %q", path, name)
		}
		if files.Estimator == "" || files.Scaler == "" || files.Encoder == "" {
			return nil, fmt.Errorf("manifest %s: stage %q needs estimator, scaler and encoder", path, name)
		}
	}
	return &m, nil
}

// Load reads the manifest at path and every artifact it names. Any failure is
// fatal for the caller: no partial bundle is returned.
func Load(path string, opts Options) (*Bundle, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)

	b := &Bundle{}
	stages := make([]pipeline.Stage, 0, len(pipeline.StageNames))
	for _, name := range pipeline.StageNames {
		stage, err := b.loadStage(name, m.Stages[name], dir, opts)
		if err != nil {
			_ = b.Close()
			return nil, err
		}
		stages = append(stages, stage)
	}

	p, err := pipeline.New(stages[0], stages[1], stages[2], opts.Policy)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	b.Pipeline = p
	return b, nil
}

func (b *Bundle) loadStage(name string, files StageFiles, dir string, opts Options) (pipeline.Stage, error) {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	scalerPath := resolve(files.Scaler)
	data, err := os.ReadFile(scalerPath)
	if err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s scaler: %w", name, err)
	}
	scaler, err := model.DecodeScaler(data)
	if err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s scaler %s: %w", name, scalerPath, err)
	}

	encoderPath := resolve(files.Encoder)
	data, err = os.ReadFile(encoderPath)
	if err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s encoder: %w", name, err)
	}
	encoder, err := model.DecodeLabelEncoder(data)
	if err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s encoder %s: %w", name, encoderPath, err)
	}

	estimatorPath := resolve(files.Estimator)
	data, err = os.ReadFile(estimatorPath)
	if err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s estimator: %w", name, err)
	}
	est, err := model.DecodeEstimator(data, model.LoadOptions{
		BaseDir:     filepath.Dir(estimatorPath),
		ONNXLibrary: opts.ONNXLibrary,
	})
	if err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s estimator %s: %w", name, estimatorPath, err)
	}
	if c, ok := est.(io.Closer); ok {
		b.closers = append(b.closers, c)
	}

	if err := checkShapes(est, scaler, encoder); err != nil {
		return pipeline.Stage{}, fmt.Errorf("stage %s: %w", name, err)
	}

	_, probabilistic := est.(pipeline.ProbabilisticEstimator)
	logger.WithFields(map[string]interface{}{
		"stage":         name,
		"columns":       len(scaler.Columns()),
		"classes":       len(encoder.Classes()),
		"probabilistic": probabilistic,
	}).Info("Loaded stage artifacts")

	return pipeline.Stage{Name: name, Estimator: est, Scaler: scaler, Decoder: encoder}, nil
}

// checkShapes cross-checks an estimator that knows its dimensions against the
// scaler width and the encoder vocabulary.
func checkShapes(est pipeline.Estimator, scaler *model.Scaler, encoder *model.LabelEncoder) error {
	sized, ok := est.(model.Sized)
	if !ok {
		return nil
	}
	if n := sized.NumFeatures(); n > 0 && n != len(scaler.Columns()) {
		return fmt.Errorf("estimator expects %d features but scaler has %d columns", n, len(scaler.Columns()))
	}
	if n := sized.NumClasses(); n != len(encoder.Classes()) {
		return fmt.Errorf("estimator has %d classes but encoder has %d", n, len(encoder.Classes()))
	}
	return nil
}
