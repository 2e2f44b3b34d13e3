// Package form holds the patient intake catalogue: every field the intake page
// renders, its vocabulary or numeric bounds, and the record a submission produces.
package form

import "strconv"

type Kind string

const (
	KindNumber Kind = "number"
	KindSelect Kind = "select"
)

const (
	SectionProfile    = "Patient Profile & Assessments"
	SectionHistory    = "Medical History / Risk Factors"
	SectionHabits     = "Exercise Habits"
	SectionTests      = "Clinical Test Results"
	SectionFunctional = "Functional & Muscle Assessments"
)

// Sections lists the form sections in render order.
var Sections = []string{
	SectionProfile,
	SectionHistory,
	SectionHabits,
	SectionTests,
	SectionFunctional,
}

var sectionIcons = map[string]string{
	SectionProfile:    "👤",
	SectionHistory:    "🩺",
	SectionHabits:     "🏃",
	SectionTests:      "🧪",
	SectionFunctional: "🦵",
}

// Field describes one input control. Select fields default to their first option.
type Field struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Section string   `json:"section"`
	Kind    Kind     `json:"kind"`
	Options []string `json:"options,omitempty"`
	Min     int      `json:"min,omitempty"`
	Max     int      `json:"max,omitempty"`
	Default string   `json:"default"`
}

var yesNo = []string{"yes", "no"}

var intensities = []string{"low intensity", "moderate intensity", "high intensity"}

// Fields is the full catalogue in form order. Record columns follow this order.
var Fields = []Field{
	number("Age", "Age", SectionProfile, 18, 120, 50),
	choice("Gender", "Gender", SectionProfile, "M", "F"),
	choice("Occupation", "Occupation", SectionProfile, "employed", "self-employed", "retired", "not working"),
	choice("MaritalStatus", "Marital Status", SectionProfile, "single", "married", "divorced", "widow"),
	choice("LivesWith", "Lives With", SectionProfile, "alone", "family", "partner"),

	choice("Smoking", "Smoking", SectionHistory, "no", "yes", "ex-smoker"),
	choice("FamilyHistory", "Family History", SectionHistory, yesNo...),
	choice("RiskFactor-HPT", "Risk Factor - HPT", SectionHistory, yesNo...),
	choice("RiskFactor-DM", "Risk Factor - DM", SectionHistory, yesNo...),
	choice("RiskFactor-HPL", "Risk Factor - HPL", SectionHistory, yesNo...),
	choice("RiskFactor-Exercise", "Risk Factor - Exercise", SectionHistory, "inactive", "moderate", "active"),
	choice("RiskFactor-Stress", "Risk Factor - Stress", SectionHistory, yesNo...),
	choice("RiskFactor-BMI", "Risk Factor - BMI", SectionHistory, "underweight", "healthy", "overweight", "obese"),
	choice("RiskFactor-ECHO-EF", "Risk Factor - ECHO - EF", SectionHistory, "normal", "borderline", "reduced"),

	choice("ExerciseHabit-Mode", "Exercise Habit - Mode", SectionHabits, "walking", "jogging", "cycling", "no", "others"),
	number("ExerciseHabit-Frequency", "Exercise Habit - Frequency (per week)", SectionHabits, 0, 14, 3),
	number("ExerciseHabit-Duration", "Exercise Habit - Duration (minutes)", SectionHabits, 0, 300, 30),

	choice("TestToday-METS", "Test Today - METS", SectionTests, intensities...),
	choice("TestToday-TerminationCause", "Test Today - Termination Cause", SectionTests,
		"Complete Test", "Fatigue", "Medical Condition", "Physical Discomfort"),
	choice("TestToday-peakHR", "Test Today - peak HR", SectionTests,
		append(append([]string{}, intensities...), "maximum intensity", "above maximum intensity")...),
	choice("ECGResting", "ECG Resting", SectionTests,
		"normal", "sinus rhythm", "T wave inversion", "ST depression", "Q wave", "ectopics"),
	choice("Diagnosis", "Diagnosis", SectionTests, "PCI", "CABG", "conservative", "surgical"),

	choice("ROM", "ROM", SectionFunctional, "normal", "abnormal"),
}

var byName = func() map[string]Field {
	m := make(map[string]Field, len(Fields))
	for _, f := range Fields {
		m[f.Name] = f
	}
	return m
}()

func number(name, label, section string, lo, hi, def int) Field {
	return Field{
		Name:    name,
		Label:   label,
		Section: section,
		Kind:    KindNumber,
		Min:     lo,
		Max:     hi,
		Default: strconv.Itoa(def),
	}
}

func choice(name, label, section string, options ...string) Field {
	return Field{
		Name:    name,
		Label:   label,
		Section: section,
		Kind:    KindSelect,
		Options: options,
		Default: options[0],
	}
}

// Lookup returns the catalogue entry for name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// SectionIcon returns the emoji shown next to a section heading.
func SectionIcon(section string) string {
	return sectionIcons[section]
}

// InSection returns the fields of one section in form order.
func InSection(section string) []Field {
	out := []Field{}
	for _, f := range Fields {
		if f.Section == section {
			out = append(out, f)
		}
	}
	return out
}

// Allows reports whether value is in the field's vocabulary.
func (f Field) Allows(value string) bool {
	for _, o := range f.Options {
		if o == value {
			return true
		}
	}
	return false
}

// InBounds reports whether n lies in the field's numeric range.
func (f Field) InBounds(n int) bool {
	return n >= f.Min && n <= f.Max
}
