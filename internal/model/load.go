package model

import (
	"encoding/json"
	"fmt"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

const (
	KindLogistic = "logistic"
	KindForest   = "forest"
	KindBoosted  = "boosted"
	KindCentroid = "centroid"
	KindONNX     = "onnx"
)

// Sized is implemented by estimators that know their input width and class
// count. A zero width means the estimator cannot tell.
type Sized interface {
	NumFeatures() int
	NumClasses() int
}

type LoadOptions struct {
	// BaseDir resolves relative paths inside an artifact.
	BaseDir string
	// ONNXLibrary is the onnxruntime shared library path, empty for the default.
	ONNXLibrary string
}

// DecodeEstimator dispatches on the artifact's "kind" field.
func DecodeEstimator(data []byte, opts LoadOptions) (pipeline.Estimator, error) {
	var head struct {
		Kind string `json:"kind"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode estimator: %w", err)
	}

	switch head.Kind {
	case KindLogistic:
		return decode(data, &Logistic{})
	case KindForest:
		return decode(data, &Forest{})
	case KindBoosted:
		return decode(data, &Boosted{})
	case KindCentroid:
		return decode(data, &Centroid{})
	case KindONNX:
		var spec ONNXSpec
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("decode onnx descriptor: %w", err)
		}
		return loadONNX(spec, opts)
	case "":
		return nil, fmt.Errorf("estimator artifact has no kind")
	default:
		return nil, fmt.Errorf("unknown estimator kind %q", head.Kind)
	}
}

type validatingEstimator interface {
	pipeline.Estimator
	validate() error
}

func decode[E validatingEstimator](data []byte, est E) (pipeline.Estimator, error) {
	if err := json.Unmarshal(data, est); err != nil {
		return nil, fmt.Errorf("decode estimator: %w", err)
	}
	if err := est.validate(); err != nil {
		return nil, err
	}
	return est, nil
}
