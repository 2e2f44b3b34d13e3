// Package presenter renders the intake page and the prescription panels.
package presenter

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/Skufu/CardioRx/internal/form"
	"github.com/Skufu/CardioRx/internal/pipeline"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const PageTemplate = "index.html"

// Panel is one colored result block.
type Panel struct {
	Stage      string `json:"stage"`
	Icon       string `json:"icon"`
	Title      string `json:"title"`
	Label      string `json:"label"`
	Confidence string `json:"confidence,omitempty"`
	Suffix     string `json:"suffix,omitempty"`
	Background string `json:"background"`
	Accent     string `json:"accent"`
}

// Text is the panel value as displayed, e.g. "Low (63.2%)" or "120 bpm".
func (p Panel) Text() string {
	return p.Label + p.Confidence + p.Suffix
}

type panelStyle struct {
	icon, title, suffix, background, accent string
}

var styles = map[string]panelStyle{
	pipeline.StageRisk:      {"📝", "Predicted Risk Level", "", "#e8f5e9", "#2e7d32"},
	pipeline.StageHeartRate: {"❤️", "Target Heart Rate", " bpm", "#e3f2fd", "#1565c0"},
	pipeline.StageDuration:  {"⏱️", "Recommended Exercise Duration", " minutes", "#e8eaf6", "#4527a0"},
}

// FormatConfidence renders a confidence as " (NN.N%)", or "" when the stage
// reported none.
func FormatConfidence(r pipeline.Result) string {
	if r.Confidence == nil {
		return ""
	}
	return fmt.Sprintf(" (%.1f%%)", *r.Confidence*100)
}

// Panels returns the risk, heart rate and duration panels in that order. Only
// the risk panel carries a confidence.
func Panels(rx *pipeline.Prescription) []Panel {
	out := make([]Panel, 0, 3)
	for _, r := range rx.Results() {
		st := styles[r.Stage]
		p := Panel{
			Stage:      r.Stage,
			Icon:       st.icon,
			Title:      st.title,
			Label:      r.Label,
			Suffix:     st.suffix,
			Background: st.background,
			Accent:     st.accent,
		}
		if r.Stage == pipeline.StageRisk {
			p.Confidence = FormatConfidence(r)
		}
		out = append(out, p)
	}
	return out
}

type FieldView struct {
	form.Field
	Value string
	Error string
}

type SectionView struct {
	Title  string
	Icon   string
	Fields []FieldView
}

// PreviewRow is one column of the input data preview.
type PreviewRow struct {
	Name  string
	Value string
}

// View is everything the page template needs.
type View struct {
	Sections []SectionView
	Preview  []PreviewRow
	Panels   []Panel
	Failure  string
}

// NewView lays out the form with sub's values and any per-field errors.
func NewView(sub form.Submission, fieldErrors map[string]string) View {
	v := View{}
	for _, section := range form.Sections {
		sv := SectionView{Title: section, Icon: form.SectionIcon(section)}
		for _, f := range form.InSection(section) {
			sv.Fields = append(sv.Fields, FieldView{
				Field: f,
				Value: sub.Get(f.Name),
				Error: fieldErrors[f.Name],
			})
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}

// WithPrescription adds the input preview and result panels.
func (v View) WithPrescription(rx *pipeline.Prescription) View {
	for _, e := range rx.Record.Entries() {
		v.Preview = append(v.Preview, PreviewRow{Name: e.Name, Value: e.Value.String()})
	}
	v.Panels = Panels(rx)
	return v
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"css": func(s string) template.CSS { return template.CSS(s) },
	}).ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded stylesheet directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// WriteText prints the panels as plain lines.
func WriteText(w io.Writer, rx *pipeline.Prescription) error {
	for _, p := range Panels(rx) {
		if _, err := fmt.Fprintf(w, "%s %s: %s\n", p.Icon, p.Title, p.Text()); err != nil {
			return err
		}
	}
	return nil
}
