package artifact

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

func TestLoadTestdataManifest(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "artifacts.yaml"), Options{})
	require.NoError(t, err)
	defer b.Close()

	schemas := b.Pipeline.Schemas()
	assert.Len(t, schemas[pipeline.StageRisk], 8)
	assert.Len(t, schemas[pipeline.StageHeartRate], 6)
	assert.Contains(t, schemas[pipeline.StageDuration], "RiskLevel_Moderate")
	assert.Equal(t, pipeline.ZeroFill, b.Pipeline.Policy())
}

func TestLoadedPipelineScoresDefaults(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "artifacts.yaml"), Options{})
	require.NoError(t, err)

	rx, err := b.Pipeline.Run(context.Background(), form.Defaults().Record())
	require.NoError(t, err)

	assert.Equal(t, "Low", rx.Risk.Label)
	require.NotNil(t, rx.Risk.Confidence)
	assert.InDelta(t, 0.6316, *rx.Risk.Confidence, 1e-3)
	assert.Equal(t, "120", rx.HeartRate.Label)
	assert.Equal(t, "30", rx.Duration.Label)
}

func TestCentroidRiskModelHasNoConfidence(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "artifacts_centroid.yaml"), Options{})
	require.NoError(t, err)

	rx, err := b.Pipeline.Run(context.Background(), form.Defaults().Record())
	require.NoError(t, err)

	assert.Equal(t, "Moderate", rx.Risk.Label)
	assert.False(t, rx.Risk.HasConfidence())
	assert.Equal(t, "120", rx.HeartRate.Label)
	assert.Equal(t, "30", rx.Duration.Label)
}

func TestLoadedPipelineToleratesUnseenCategory(t *testing.T) {
	b, err := Load(filepath.Join("testdata", "artifacts.yaml"), Options{})
	require.NoError(t, err)

	rec := form.Defaults().Record().With("Smoking", form.Category("vape"))
	rx, err := b.Pipeline.Run(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"Smoking"}, rx.Risk.Alignment.Unseen)
	assert.NotEmpty(t, rx.Duration.Label)

	strict, err := Load(filepath.Join("testdata", "artifacts.yaml"), Options{Policy: pipeline.Reject})
	require.NoError(t, err)
	_, err = strict.Pipeline.Run(context.Background(), rec)
	assert.ErrorIs(t, err, pipeline.ErrUnseenCategory)
}

// copyTestdata copies the fixture artifacts so a test can break one of them.
func copyTestdata(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	entries, err := os.ReadDir("testdata")
	require.NoError(t, err)
	for _, e := range entries {
		data, err := os.ReadFile(filepath.Join("testdata", e.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, e.Name()), data, 0o644))
	}
	return dir
}

func TestLoadFailsOnMissingArtifact(t *testing.T) {
	dir := copyTestdata(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "duration_labels.json")))

	_, err := Load(filepath.Join(dir, "artifacts.yaml"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage duration encoder")
}

func TestLoadFailsOnShapeMismatch(t *testing.T) {
	dir := copyTestdata(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "risk_labels.json"), []byte(`{"classes":["High","Low"]}`), 0o644))

	_, err := Load(filepath.Join(dir, "artifacts.yaml"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "3 classes but encoder has 2")
}

func TestLoadFailsOnCorruptArtifact(t *testing.T) {
	dir := copyTestdata(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "targethr_scaler.json"), []byte(`{"kind":`), 0o644))

	_, err := Load(filepath.Join(dir, "artifacts.yaml"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stage heart_rate scaler")
}

func TestReadManifestRequiresEveryStage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "artifacts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
stages:
  risk: {estimator: a.json, scaler: b.json, encoder: c.json}
  heart_rate: {estimator: a.json, scaler: b.json, encoder: c.json}
`), 0o644))

	_, err := ReadManifest(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing stage "duration"`)

	require.NoError(t, os.WriteFile(path, []byte(`
stages:
  risk: {estimator: a.json, scaler: b.json}
  heart_rate: {estimator: a.json, scaler: b.json, encoder: c.json}
  duration: {estimator: a.json, scaler: b.json, encoder: c.json}
`), 0o644))
	_, err = ReadManifest(path)
	assert.Error(t, err)

	_, err = ReadManifest(filepath.Join(dir, "nope.yaml"))
	assert.Error(t, err)
}
