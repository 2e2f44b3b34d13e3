package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

func TestNewEntry(t *testing.T) {
	conf := 0.75
	rx := &pipeline.Prescription{
		ID:        uuid.New(),
		Record:    form.Defaults().Record(),
		Risk:      pipeline.Result{Stage: pipeline.StageRisk, Label: "High", Confidence: &conf},
		HeartRate: pipeline.Result{Stage: pipeline.StageHeartRate, Label: "110"},
		Duration:  pipeline.Result{Stage: pipeline.StageDuration, Label: "45"},
		Elapsed:   1500 * time.Microsecond,
	}
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.FixedZone("PHT", 8*3600))

	e, err := NewEntry("api", rx, now)
	require.NoError(t, err)
	assert.Equal(t, rx.ID, e.ID)
	assert.Equal(t, "High", e.RiskLevel)
	assert.Equal(t, &conf, e.Confidence)
	assert.Equal(t, "110", e.TargetHR)
	assert.Equal(t, "45", e.Duration)
	assert.InDelta(t, 1.5, e.LatencyMs, 1e-9)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())

	var rec map[string]any
	require.NoError(t, json.Unmarshal(e.Record, &rec))
	assert.Equal(t, 50.0, rec["Age"])
	assert.Equal(t, "M", rec["Gender"])
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, ClampLimit(0))
	assert.Equal(t, DefaultLimit, ClampLimit(-3))
	assert.Equal(t, 10, ClampLimit(10))
	assert.Equal(t, MaxLimit, ClampLimit(10_000))
}
