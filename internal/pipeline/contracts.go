// Package pipeline turns a patient record into a prescription by running three
// chained prediction stages: risk level, target heart rate and exercise duration.
//
// Each stage aligns the record to its scaler's column set, rescales it, asks the
// estimator for a class id and decodes that id to a label. The risk label is fed
// into the record for the two later stages.
package pipeline

// Estimator maps a scaled feature vector to a class id.
type Estimator interface {
	Predict(features []float64) (int, error)
}

// ProbabilisticEstimator is an Estimator that can also report class
// probabilities. It is optional: stages type-assert for it and report no
// confidence when it is absent.
type ProbabilisticEstimator interface {
	Estimator
	PredictProba(features []float64) ([]float64, error)
}

// Scaler normalises an aligned vector. Columns is the ordered schema the scaler
// was fit against and is the source of truth for alignment.
type Scaler interface {
	Columns() []string
	Transform(row []float64) ([]float64, error)
}

// Decoder maps a class id back to the label seen at training time.
type Decoder interface {
	Decode(class int) (string, error)
	Classes() []string
}

// NumericDecoder reports which classes were numbers in the training labels.
// Those labels are fed to later stages as numeric columns, not indicators.
type NumericDecoder interface {
	Decoder
	Numeric(class int) bool
}
