package pipeline

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/logger"
	"github.com/Skufu/CardioRx/internal/metrics"
)

// Stage is the artifact triple for one prediction target.
type Stage struct {
	Name      string
	Estimator Estimator
	Scaler    Scaler
	Decoder   Decoder
}

// Result is one stage's decoded output. Confidence is nil when the stage did
// not report one.
type Result struct {
	Stage      string    `json:"stage"`
	Label      string    `json:"label"`
	Confidence *float64  `json:"confidence,omitempty"`
	Alignment  Alignment `json:"-"`

	// Value is the label as a record cell: a number for numeric classes.
	Value form.Value `json:"-"`
}

func (r Result) HasConfidence() bool { return r.Confidence != nil }

func (s Stage) validate() error {
	switch {
	case s.Name == "":
		return errors.New("stage has no name")
	case s.Estimator == nil:
		return fmt.Errorf("stage %s: missing estimator", s.Name)
	case s.Scaler == nil:
		return fmt.Errorf("stage %s: missing scaler", s.Name)
	case s.Decoder == nil:
		return fmt.Errorf("stage %s: missing decoder", s.Name)
	case len(s.Scaler.Columns()) == 0:
		return fmt.Errorf("stage %s: scaler has no columns", s.Name)
	case len(s.Decoder.Classes()) == 0:
		return fmt.Errorf("stage %s: decoder has no classes", s.Name)
	}
	return nil
}

// Run aligns, scales, predicts and decodes one record. When withConfidence is
// set and the estimator is probabilistic, the max class probability is reported.
func (s Stage) Run(record form.Record, policy MismatchPolicy, withConfidence bool) (Result, error) {
	start := time.Now()
	res, err := s.run(record, policy, withConfidence)
	metrics.StageDuration.WithLabelValues(s.Name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageFailures.WithLabelValues(s.Name).Inc()
		return Result{}, fmt.Errorf("stage %s: %w", s.Name, err)
	}
	return res, nil
}

func (s Stage) run(record form.Record, policy MismatchPolicy, withConfidence bool) (Result, error) {
	a := Align(record, s.Scaler.Columns())
	for _, field := range a.Unseen {
		metrics.UnseenCategories.WithLabelValues(s.Name, field).Inc()
	}
	if len(a.Unseen) > 0 {
		logger.WithField("stage", s.Name).
			WithField("fields", a.Unseen).
			Debug("categorical values without indicator column")
	}
	if err := policy.Check(a); err != nil {
		return Result{}, err
	}

	scaled, err := s.Scaler.Transform(a.Vector)
	if err != nil {
		return Result{}, fmt.Errorf("scale: %w", err)
	}

	class, err := s.Estimator.Predict(scaled)
	if err != nil {
		return Result{}, fmt.Errorf("predict: %w", err)
	}

	label, err := s.Decoder.Decode(class)
	if err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}

	value, err := labelValue(s.Decoder, class, label)
	if err != nil {
		return Result{}, fmt.Errorf("decode: %w", err)
	}

	res := Result{Stage: s.Name, Label: label, Value: value, Alignment: a}
	if !withConfidence {
		return res, nil
	}

	pe, ok := s.Estimator.(ProbabilisticEstimator)
	if !ok {
		return res, nil
	}
	probs, err := pe.PredictProba(scaled)
	if err != nil {
		return Result{}, fmt.Errorf("predict proba: %w", err)
	}
	conf, err := maxProbability(probs)
	if err != nil {
		return Result{}, err
	}
	res.Confidence = &conf
	return res, nil
}

func maxProbability(probs []float64) (float64, error) {
	if len(probs) == 0 {
		return 0, errors.New("estimator returned no probabilities")
	}
	best := probs[0]
	for _, p := range probs[1:] {
		if p > best {
			best = p
		}
	}
	if math.IsNaN(best) || best < 0 || best > 1 {
		return 0, fmt.Errorf("probability %v outside [0, 1]", best)
	}
	return best, nil
}

func labelValue(d Decoder, class int, label string) (form.Value, error) {
	nd, ok := d.(NumericDecoder)
	if !ok || !nd.Numeric(class) {
		return form.Category(label), nil
	}
	n, err := strconv.ParseFloat(label, 64)
	if err != nil {
		return form.Value{}, fmt.Errorf("numeric label %q: %w", label, err)
	}
	return form.Number(n), nil
}
