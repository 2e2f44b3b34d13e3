package form

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsFollowCatalogue(t *testing.T) {
	s := Defaults()
	rec := s.Record()

	require.Equal(t, len(Fields), rec.Len())
	for i, e := range rec.Entries() {
		f := Fields[i]
		assert.Equal(t, f.Name, e.Name)
		assert.Equal(t, f.Default, e.Value.String())
		assert.Equal(t, f.Kind == KindSelect, e.Value.IsCategorical(), f.Name)
	}

	age, ok := rec.Get("Age")
	require.True(t, ok)
	assert.Equal(t, 50.0, age.Float())
	assert.Equal(t, "M", s.Gender)
	assert.Equal(t, "low intensity", s.PeakHR)
}

func TestEverySubmissionFieldIsInCatalogue(t *testing.T) {
	require.Len(t, fieldIndex, len(Fields))
	for _, f := range Fields {
		_, ok := fieldIndex[f.Name]
		assert.True(t, ok, f.Name)
	}
}

func TestValidatorAcceptsWholeVocabulary(t *testing.T) {
	v := NewValidator()
	for _, f := range Fields {
		if f.Kind != KindSelect {
			continue
		}
		for _, opt := range f.Options {
			s := Defaults()
			require.NoError(t, s.Set(f.Name, opt))
			assert.NoError(t, v.Struct(s), "%s=%s", f.Name, opt)
		}
	}
}

func TestValidatorRejectsOutOfVocabulary(t *testing.T) {
	v := NewValidator()
	s := Defaults()
	s.Occupation = "astronaut"
	s.Age = 17

	err := v.Struct(s)
	require.Error(t, err)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	params := map[string]bool{}
	for _, fe := range verrs {
		params[fe.Param()] = true
	}
	assert.True(t, params["Occupation"])
	assert.True(t, params["Age"])
	assert.Contains(t, Describe("Age"), "between 18 and 120")
}

func TestNumericBounds(t *testing.T) {
	v := NewValidator()
	cases := []struct {
		field string
		raw   string
		ok    bool
	}{
		{"Age", "18", true},
		{"Age", "120", true},
		{"Age", "121", false},
		{"ExerciseHabit-Frequency", "0", true},
		{"ExerciseHabit-Frequency", "15", false},
		{"ExerciseHabit-Duration", "300", true},
		{"ExerciseHabit-Duration", "-1", false},
	}
	for _, tc := range cases {
		s := Defaults()
		require.NoError(t, s.Set(tc.field, tc.raw))
		err := v.Struct(s)
		if tc.ok {
			assert.NoError(t, err, "%s=%s", tc.field, tc.raw)
		} else {
			assert.Error(t, err, "%s=%s", tc.field, tc.raw)
		}
	}
}

func TestSetRejectsUnknownFieldAndBadNumber(t *testing.T) {
	s := Defaults()
	assert.Error(t, s.Set("Shoe size", "9"))
	assert.Error(t, s.Set("Age", "fifty"))
	assert.Equal(t, "50", s.Get("Age"))
}

func TestRecordWithDoesNotMutate(t *testing.T) {
	base := Defaults().Record()
	next := base.With("RiskLevel", Category("High"))

	_, ok := base.Get("RiskLevel")
	assert.False(t, ok)
	got, ok := next.Get("RiskLevel")
	require.True(t, ok)
	assert.Equal(t, "High", got.String())
	assert.Equal(t, base.Len()+1, next.Len())

	replaced := next.With("RiskLevel", Category("Low"))
	assert.Equal(t, next.Len(), replaced.Len())
	got, _ = next.Get("RiskLevel")
	assert.Equal(t, "High", got.String())
}

func TestRecordMap(t *testing.T) {
	m := Defaults().Record().Map()
	assert.Equal(t, 50.0, m["Age"])
	assert.Equal(t, "Complete Test", m["TestToday-TerminationCause"])
}
