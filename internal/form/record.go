package form

import (
	"encoding/json"
	"strconv"
)

// Value is a single record cell: a number or a categorical string.
type Value struct {
	num         float64
	str         string
	categorical bool
}

func Number(n float64) Value { return Value{num: n} }

func Category(s string) Value { return Value{str: s, categorical: true} }

func (v Value) IsCategorical() bool { return v.categorical }

func (v Value) Float() float64 { return v.num }

// String renders the value as it appears in one-hot column names and previews.
func (v Value) String() string {
	if v.categorical {
		return v.str
	}
	return strconv.FormatFloat(v.num, 'f', -1, 64)
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.categorical {
		return json.Marshal(v.str)
	}
	return json.Marshal(v.num)
}

type Entry struct {
	Name  string
	Value Value
}

// Record is an ordered, single-row mapping of field name to value. Methods never
// mutate the receiver; With returns a new record.
type Record struct {
	entries []Entry
}

func NewRecord(entries ...Entry) Record {
	r := Record{entries: make([]Entry, 0, len(entries))}
	for _, e := range entries {
		r = r.With(e.Name, e.Value)
	}
	return r
}

// With returns a copy of r with name set to v. An existing column keeps its position.
func (r Record) With(name string, v Value) Record {
	out := make([]Entry, len(r.entries), len(r.entries)+1)
	copy(out, r.entries)
	for i := range out {
		if out[i].Name == name {
			out[i].Value = v
			return Record{entries: out}
		}
	}
	return Record{entries: append(out, Entry{Name: name, Value: v})}
}

func (r Record) Get(name string) (Value, bool) {
	for _, e := range r.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return Value{}, false
}

func (r Record) Len() int { return len(r.entries) }

// Entries returns a copy of the record's cells in column order.
func (r Record) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Map flattens the record for JSON payloads and audit rows.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.entries))
	for _, e := range r.entries {
		if e.Value.categorical {
			m[e.Name] = e.Value.str
		} else {
			m[e.Name] = e.Value.num
		}
	}
	return m
}
