package model

import (
	"fmt"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

// ONNXSpec is the JSON descriptor of an exported classifier. The model file is
// resolved relative to the descriptor.
type ONNXSpec struct {
	Model             string `json:"model"`
	Input             string `json:"input"`
	LabelOutput       string `json:"label_output"`
	ProbabilityOutput string `json:"probability_output,omitempty"`
	Classes           int    `json:"n_classes"`
	Features          int    `json:"n_features,omitempty"`
}

func (s *ONNXSpec) setDefaults() {
	if s.Input == "" {
		s.Input = "float_input"
	}
	if s.LabelOutput == "" {
		s.LabelOutput = "output_label"
	}
}

// ONNX runs a classifier through onnxruntime and reports only the label.
type ONNX struct {
	spec    ONNXSpec
	session *ort.DynamicAdvancedSession
}

// ProbabilisticONNX also reads the probability output.
type ProbabilisticONNX struct {
	*ONNX
}

var (
	_ pipeline.Estimator              = (*ONNX)(nil)
	_ pipeline.ProbabilisticEstimator = ProbabilisticONNX{}
)

var (
	ortOnce sync.Once
	ortErr  error
)

// initRuntime loads the onnxruntime shared library once per process.
func initRuntime(library string) error {
	ortOnce.Do(func() {
		if library != "" {
			ort.SetSharedLibraryPath(library)
		}
		if !ort.IsInitialized() {
			ortErr = ort.InitializeEnvironment()
		}
	})
	return ortErr
}

func loadONNX(spec ONNXSpec, opts LoadOptions) (pipeline.Estimator, error) {
	spec.setDefaults()
	if spec.Model == "" {
		return nil, fmt.Errorf("onnx descriptor has no model path")
	}
	if spec.Classes < 2 {
		return nil, fmt.Errorf("onnx descriptor needs n_classes >= 2")
	}
	if err := initRuntime(opts.ONNXLibrary); err != nil {
		return nil, fmt.Errorf("initialize onnxruntime: %w", err)
	}

	path := spec.Model
	if !filepath.IsAbs(path) {
		path = filepath.Join(opts.BaseDir, path)
	}
	outputs := []string{spec.LabelOutput}
	if spec.ProbabilityOutput != "" {
		outputs = append(outputs, spec.ProbabilityOutput)
	}
	session, err := ort.NewDynamicAdvancedSession(path, []string{spec.Input}, outputs, nil)
	if err != nil {
		return nil, fmt.Errorf("load onnx model %s: %w", path, err)
	}

	m := &ONNX{spec: spec, session: session}
	if spec.ProbabilityOutput != "" {
		return ProbabilisticONNX{m}, nil
	}
	return m, nil
}

func (m *ONNX) NumFeatures() int { return m.spec.Features }

func (m *ONNX) NumClasses() int { return m.spec.Classes }

func (m *ONNX) run(features []float64) (int, []float64, error) {
	if err := checkWidth(features, m.spec.Features); err != nil {
		return 0, nil, err
	}
	in := make([]float32, len(features))
	for i, v := range features {
		in[i] = float32(v)
	}
	input, err := ort.NewTensor(ort.NewShape(1, int64(len(in))), in)
	if err != nil {
		return 0, nil, fmt.Errorf("create input tensor: %w", err)
	}
	defer input.Destroy()

	label, err := ort.NewEmptyTensor[int64](ort.NewShape(1))
	if err != nil {
		return 0, nil, fmt.Errorf("create label tensor: %w", err)
	}
	defer label.Destroy()
	outputs := []ort.Value{label}

	var probs *ort.Tensor[float32]
	if m.spec.ProbabilityOutput != "" {
		probs, err = ort.NewEmptyTensor[float32](ort.NewShape(1, int64(m.spec.Classes)))
		if err != nil {
			return 0, nil, fmt.Errorf("create probability tensor: %w", err)
		}
		defer probs.Destroy()
		outputs = append(outputs, probs)
	}

	if err := m.session.Run([]ort.Value{input}, outputs); err != nil {
		return 0, nil, fmt.Errorf("onnx inference: %w", err)
	}

	class := int(label.GetData()[0])
	if probs == nil {
		return class, nil, nil
	}
	out := make([]float64, m.spec.Classes)
	for i, p := range probs.GetData() {
		out[i] = float64(p)
	}
	return class, out, nil
}

func (m *ONNX) Predict(features []float64) (int, error) {
	class, _, err := m.run(features)
	return class, err
}

func (m ProbabilisticONNX) PredictProba(features []float64) ([]float64, error) {
	_, probs, err := m.run(features)
	return probs, err
}

// Close releases the onnxruntime session.
func (m *ONNX) Close() error {
	if m.session == nil {
		return nil
	}
	err := m.session.Destroy()
	m.session = nil
	return err
}
