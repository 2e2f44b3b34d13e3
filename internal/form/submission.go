package form

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Submission is the bound form payload. The vocab and bounds tags look the
// constraint up in the catalogue by field name, so the rendered controls and the
// server-side checks share one source.
type Submission struct {
	Age           int    `form:"Age" json:"Age" yaml:"Age" binding:"bounds=Age"`
	Gender        string `form:"Gender" json:"Gender" yaml:"Gender" binding:"vocab=Gender"`
	Occupation    string `form:"Occupation" json:"Occupation" yaml:"Occupation" binding:"vocab=Occupation"`
	MaritalStatus string `form:"MaritalStatus" json:"MaritalStatus" yaml:"MaritalStatus" binding:"vocab=MaritalStatus"`
	LivesWith     string `form:"LivesWith" json:"LivesWith" yaml:"LivesWith" binding:"vocab=LivesWith"`

	Smoking            string `form:"Smoking" json:"Smoking" yaml:"Smoking" binding:"vocab=Smoking"`
	FamilyHistory      string `form:"FamilyHistory" json:"FamilyHistory" yaml:"FamilyHistory" binding:"vocab=FamilyHistory"`
	RiskFactorHPT      string `form:"RiskFactor-HPT" json:"RiskFactor-HPT" yaml:"RiskFactor-HPT" binding:"vocab=RiskFactor-HPT"`
	RiskFactorDM       string `form:"RiskFactor-DM" json:"RiskFactor-DM" yaml:"RiskFactor-DM" binding:"vocab=RiskFactor-DM"`
	RiskFactorHPL      string `form:"RiskFactor-HPL" json:"RiskFactor-HPL" yaml:"RiskFactor-HPL" binding:"vocab=RiskFactor-HPL"`
	RiskFactorExercise string `form:"RiskFactor-Exercise" json:"RiskFactor-Exercise" yaml:"RiskFactor-Exercise" binding:"vocab=RiskFactor-Exercise"`
	RiskFactorStress   string `form:"RiskFactor-Stress" json:"RiskFactor-Stress" yaml:"RiskFactor-Stress" binding:"vocab=RiskFactor-Stress"`
	RiskFactorBMI      string `form:"RiskFactor-BMI" json:"RiskFactor-BMI" yaml:"RiskFactor-BMI" binding:"vocab=RiskFactor-BMI"`
	RiskFactorEchoEF   string `form:"RiskFactor-ECHO-EF" json:"RiskFactor-ECHO-EF" yaml:"RiskFactor-ECHO-EF" binding:"vocab=RiskFactor-ECHO-EF"`

	ExerciseMode      string `form:"ExerciseHabit-Mode" json:"ExerciseHabit-Mode" yaml:"ExerciseHabit-Mode" binding:"vocab=ExerciseHabit-Mode"`
	ExerciseFrequency int    `form:"ExerciseHabit-Frequency" json:"ExerciseHabit-Frequency" yaml:"ExerciseHabit-Frequency" binding:"bounds=ExerciseHabit-Frequency"`
	ExerciseDuration  int    `form:"ExerciseHabit-Duration" json:"ExerciseHabit-Duration" yaml:"ExerciseHabit-Duration" binding:"bounds=ExerciseHabit-Duration"`

	METS             string `form:"TestToday-METS" json:"TestToday-METS" yaml:"TestToday-METS" binding:"vocab=TestToday-METS"`
	TerminationCause string `form:"TestToday-TerminationCause" json:"TestToday-TerminationCause" yaml:"TestToday-TerminationCause" binding:"vocab=TestToday-TerminationCause"`
	PeakHR           string `form:"TestToday-peakHR" json:"TestToday-peakHR" yaml:"TestToday-peakHR" binding:"vocab=TestToday-peakHR"`
	ECGResting       string `form:"ECGResting" json:"ECGResting" yaml:"ECGResting" binding:"vocab=ECGResting"`
	Diagnosis        string `form:"Diagnosis" json:"Diagnosis" yaml:"Diagnosis" binding:"vocab=Diagnosis"`

	ROM string `form:"ROM" json:"ROM" yaml:"ROM" binding:"vocab=ROM"`
}

// Defaults returns the submission the intake page starts from.
func Defaults() Submission {
	var s Submission
	for _, f := range Fields {
		if err := s.Set(f.Name, f.Default); err != nil {
			panic(err)
		}
	}
	return s
}

var fieldIndex = func() map[string]int {
	t := reflect.TypeOf(Submission{})
	idx := make(map[string]int, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		idx[t.Field(i).Tag.Get("form")] = i
	}
	return idx
}()

func (s *Submission) field(name string) (reflect.Value, error) {
	i, ok := fieldIndex[name]
	if !ok {
		return reflect.Value{}, fmt.Errorf("unknown field %q", name)
	}
	return reflect.ValueOf(s).Elem().Field(i), nil
}

// Set assigns a raw string to the named field, parsing numbers.
func (s *Submission) Set(name, raw string) error {
	v, err := s.field(name)
	if err != nil {
		return err
	}
	switch v.Kind() {
	case reflect.Int:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("field %s: %w", name, err)
		}
		v.SetInt(int64(n))
	default:
		v.SetString(raw)
	}
	return nil
}

// Get returns the named field rendered as a string.
func (s Submission) Get(name string) string {
	v, err := s.field(name)
	if err != nil {
		return ""
	}
	if v.Kind() == reflect.Int {
		return strconv.FormatInt(v.Int(), 10)
	}
	return v.String()
}

// Record builds the single-row patient record in catalogue order.
func (s Submission) Record() Record {
	entries := make([]Entry, 0, len(Fields))
	for _, f := range Fields {
		v, _ := s.field(f.Name)
		if f.Kind == KindNumber {
			entries = append(entries, Entry{Name: f.Name, Value: Number(float64(v.Int()))})
			continue
		}
		entries = append(entries, Entry{Name: f.Name, Value: Category(v.String())})
	}
	return Record{entries: entries}
}

// RegisterValidators installs the vocab and bounds tags on v.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("vocab", validateVocab); err != nil {
		return err
	}
	return v.RegisterValidation("bounds", validateBounds)
}

// NewValidator returns a validator with the catalogue tags installed, reading
// constraints from the binding tag the way gin does.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	if err := RegisterValidators(v); err != nil {
		panic(err)
	}
	return v
}

func validateVocab(fl validator.FieldLevel) bool {
	f, ok := Lookup(fl.Param())
	return ok && f.Allows(fl.Field().String())
}

func validateBounds(fl validator.FieldLevel) bool {
	f, ok := Lookup(fl.Param())
	return ok && f.InBounds(int(fl.Field().Int()))
}

// Describe turns a failed constraint into a message for the named field.
func Describe(name string) string {
	f, ok := Lookup(name)
	if !ok {
		return "invalid value"
	}
	if f.Kind == KindNumber {
		return fmt.Sprintf("%s must be between %d and %d", f.Label, f.Min, f.Max)
	}
	return fmt.Sprintf("%s must be one of %q", f.Label, f.Options)
}
