package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Skufu/CardioRx/internal/form"
)

// ErrUnseenCategory is returned under the Reject policy when a categorical
// value has no indicator column in the stage schema.
var ErrUnseenCategory = errors.New("categorical value not present in schema")

type MismatchPolicy string

const (
	// ZeroFill encodes unseen categories as all-zero indicators.
	ZeroFill MismatchPolicy = "zero-fill"
	// Reject fails the stage on an unseen category.
	Reject MismatchPolicy = "reject"
)

func ParsePolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", ZeroFill:
		return ZeroFill, nil
	case Reject:
		return Reject, nil
	default:
		return "", fmt.Errorf("unknown mismatch policy %q", s)
	}
}

// Alignment is the encoded vector for one schema plus what alignment had to
// reconcile to produce it.
type Alignment struct {
	Vector []float64
	// Missing lists schema columns absent from the expansion (emitted as 0).
	Missing []string
	// Dropped lists expanded columns the schema does not know.
	Dropped []string
	// Unseen lists categorical fields the schema encodes but whose value has
	// no indicator column.
	Unseen []string
}

// Check applies the policy to an alignment.
func (p MismatchPolicy) Check(a Alignment) error {
	if p == Reject && len(a.Unseen) > 0 {
		return fmt.Errorf("%w: %s", ErrUnseenCategory, strings.Join(a.Unseen, ", "))
	}
	return nil
}

// ColumnName is the one-hot column for a categorical value.
func ColumnName(field, value string) string {
	return field + "_" + value
}

// Expand one-hot encodes the record: numeric cells keep their name, categorical
// cells become a single field_value column set to 1. Column order follows the record.
func Expand(record form.Record) ([]string, map[string]float64) {
	entries := record.Entries()
	names := make([]string, 0, len(entries))
	values := make(map[string]float64, len(entries))
	for _, e := range entries {
		name := e.Name
		v := e.Value.Float()
		if e.Value.IsCategorical() {
			name = ColumnName(e.Name, e.Value.String())
			v = 1
		}
		names = append(names, name)
		values[name] = v
	}
	return names, values
}

// Align reindexes the expanded record to expected: one entry per expected
// column in order, zero where the expansion has no such column. It never fails.
func Align(record form.Record, expected []string) Alignment {
	names, values := Expand(record)

	known := make(map[string]struct{}, len(expected))
	a := Alignment{Vector: make([]float64, len(expected))}
	for i, col := range expected {
		known[col] = struct{}{}
		v, ok := values[col]
		if !ok {
			a.Missing = append(a.Missing, col)
			continue
		}
		a.Vector[i] = v
	}

	for _, name := range names {
		if _, ok := known[name]; !ok {
			a.Dropped = append(a.Dropped, name)
		}
	}

	for _, e := range record.Entries() {
		if !e.Value.IsCategorical() {
			continue
		}
		if _, ok := known[ColumnName(e.Name, e.Value.String())]; ok {
			continue
		}
		if encodesField(expected, e.Name) {
			a.Unseen = append(a.Unseen, e.Name)
		}
	}
	return a
}

func encodesField(expected []string, field string) bool {
	prefix := field + "_"
	for _, col := range expected {
		if strings.HasPrefix(col, prefix) {
			return true
		}
	}
	return false
}
