package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skufu/CardioRx/internal/form"
)

const (
	StageRisk      = "risk"
	StageHeartRate = "heart_rate"
	StageDuration  = "duration"
)

// RiskLevelField carries the risk label into the heart rate and duration stages.
const RiskLevelField = "RiskLevel"

// StageNames lists the stages in execution order.
var StageNames = []string{StageRisk, StageHeartRate, StageDuration}

// Pipeline holds the three loaded stages. It is immutable after New and safe
// for concurrent use.
type Pipeline struct {
	risk      Stage
	heartRate Stage
	duration  Stage
	policy    MismatchPolicy
}

// Prescription is the outcome of one submission.
type Prescription struct {
	ID        uuid.UUID     `json:"id"`
	Record    form.Record   `json:"-"`
	Augmented form.Record   `json:"-"`
	Risk      Result        `json:"risk"`
	HeartRate Result        `json:"heart_rate"`
	Duration  Result        `json:"duration"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Results returns the three stage results in execution order.
func (p *Prescription) Results() []Result {
	return []Result{p.Risk, p.HeartRate, p.Duration}
}

func New(risk, heartRate, duration Stage, policy MismatchPolicy) (*Pipeline, error) {
	for _, s := range []Stage{risk, heartRate, duration} {
		if err := s.validate(); err != nil {
			return nil, err
		}
	}
	policy, err := ParsePolicy(string(policy))
	if err != nil {
		return nil, err
	}
	return &Pipeline{risk: risk, heartRate: heartRate, duration: duration, policy: policy}, nil
}

func (p *Pipeline) Policy() MismatchPolicy { return p.policy }

// Stages returns the stages in execution order.
func (p *Pipeline) Stages() []Stage {
	return []Stage{p.risk, p.heartRate, p.duration}
}

// Schemas returns each stage's expected column set keyed by stage name.
func (p *Pipeline) Schemas() map[string][]string {
	out := make(map[string][]string, 3)
	for _, s := range p.Stages() {
		cols := s.Scaler.Columns()
		out[s.Name] = append([]string(nil), cols...)
	}
	return out
}

// Run scores one record. Stages run in fixed order; the first failure aborts
// the submission and no partial prescription is returned.
func (p *Pipeline) Run(ctx context.Context, record form.Record) (*Prescription, error) {
	start := time.Now()
	rx := &Prescription{ID: uuid.New(), Record: record}

	risk, err := p.risk.Run(record, p.policy, true)
	if err != nil {
		return nil, err
	}
	rx.Risk = risk

	augmented := record.With(RiskLevelField, risk.Value)
	rx.Augmented = augmented

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rx.HeartRate, err = p.heartRate.Run(augmented, p.policy, false); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rx.Duration, err = p.duration.Run(augmented, p.policy, false); err != nil {
		return nil, err
	}

	rx.Elapsed = time.Since(start)
	return rx, nil
}
