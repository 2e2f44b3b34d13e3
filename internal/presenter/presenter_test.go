package presenter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

func prescription(conf *float64) *pipeline.Prescription {
	return &pipeline.Prescription{
		Record:    form.Defaults().Record(),
		Risk:      pipeline.Result{Stage: pipeline.StageRisk, Label: "Low", Confidence: conf},
		HeartRate: pipeline.Result{Stage: pipeline.StageHeartRate, Label: "120"},
		Duration:  pipeline.Result{Stage: pipeline.StageDuration, Label: "30"},
	}
}

func TestFormatConfidence(t *testing.T) {
	c := 0.6316
	assert.Equal(t, " (63.2%)", FormatConfidence(pipeline.Result{Confidence: &c}))
	one := 1.0
	assert.Equal(t, " (100.0%)", FormatConfidence(pipeline.Result{Confidence: &one}))
	assert.Equal(t, "", FormatConfidence(pipeline.Result{}))
}

func TestPanelsOrderAndSuffixes(t *testing.T) {
	c := 0.87
	panels := Panels(prescription(&c))
	require.Len(t, panels, 3)

	assert.Equal(t, "Low (87.0%)", panels[0].Text())
	assert.Equal(t, "#e8f5e9", panels[0].Background)
	assert.Equal(t, "120 bpm", panels[1].Text())
	assert.Equal(t, "#e3f2fd", panels[1].Background)
	assert.Equal(t, "30 minutes", panels[2].Text())
	assert.Equal(t, "#e8eaf6", panels[2].Background)
}

func TestPanelsWithoutConfidence(t *testing.T) {
	panels := Panels(prescription(nil))
	assert.Equal(t, "Low", panels[0].Text())
}

func TestNewViewKeepsValuesAndErrors(t *testing.T) {
	sub := form.Defaults()
	sub.Smoking = "ex-smoker"
	v := NewView(sub, map[string]string{"Age": "Age must be between 18 and 120"})

	require.Len(t, v.Sections, len(form.Sections))
	var seen int
	for _, s := range v.Sections {
		for _, f := range s.Fields {
			seen++
			switch f.Name {
			case "Smoking":
				assert.Equal(t, "ex-smoker", f.Value)
			case "Age":
				assert.NotEmpty(t, f.Error)
			}
		}
	}
	assert.Equal(t, len(form.Fields), seen)
	assert.Empty(t, v.Panels)
}

func TestTemplateRendersPanels(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	c := 0.5
	v := NewView(form.Defaults(), nil).WithPrescription(prescription(&c))
	require.Len(t, v.Preview, len(form.Fields))

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, PageTemplate, v))
	out := buf.String()
	assert.Contains(t, out, "Low (50.0%)")
	assert.Contains(t, out, "120 bpm")
	assert.Contains(t, out, "30 minutes")
	assert.Contains(t, out, `<option value="M" selected>`)
	assert.Contains(t, out, "Input Data Preview")
	assert.Contains(t, out, "<title>Personalized Exercise Prescription</title>")
	assert.Contains(t, out, "Welcome to your personalized cardiac exercise prescription app!")
	assert.Contains(t, out, "🔎 Predict Personalized Exercise Plan</button>")
}

func TestTemplateRendersFailureWithoutPanels(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	v := NewView(form.Defaults(), nil)
	v.Failure = "Prediction failed."
	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, PageTemplate, v))
	assert.Contains(t, buf.String(), "Prediction failed.")
	assert.NotContains(t, buf.String(), "bpm")
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, prescription(nil)))
	assert.Equal(t,
		"📝 Predicted Risk Level: Low\n❤️ Target Heart Rate: 120 bpm\n⏱️ Recommended Exercise Duration: 30 minutes\n",
		buf.String())
}

func TestStaticServesStylesheet(t *testing.T) {
	f, err := Static().Open("styles.css")
	require.NoError(t, err)
	f.Close()
}
