package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Skufu/CardioRx/internal/pipeline"
)

// LabelEncoder maps class ids to the labels seen at training time, in the
// order the encoder sorted them.
type LabelEncoder struct {
	classes []string
	numeric []bool
}

var _ pipeline.NumericDecoder = (*LabelEncoder)(nil)

func NewLabelEncoder(classes ...string) *LabelEncoder {
	return &LabelEncoder{classes: append([]string(nil), classes...), numeric: make([]bool, len(classes))}
}

func (e *LabelEncoder) Classes() []string { return e.classes }

// Numeric reports whether the class was a JSON number in the artifact.
func (e *LabelEncoder) Numeric(class int) bool {
	return class >= 0 && class < len(e.numeric) && e.numeric[class]
}

func (e *LabelEncoder) Decode(class int) (string, error) {
	if class < 0 || class >= len(e.classes) {
		return "", fmt.Errorf("class id %d outside encoder range [0, %d)", class, len(e.classes))
	}
	return e.classes[class], nil
}

// DecodeLabelEncoder parses {"classes": [...]}. Numeric classes keep the
// literal text of the artifact, so 120 stays "120".
func DecodeLabelEncoder(data []byte) (*LabelEncoder, error) {
	var raw struct {
		Classes []json.RawMessage `json:"classes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode label encoder: %w", err)
	}
	if len(raw.Classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}

	classes := make([]string, 0, len(raw.Classes))
	numeric := make([]bool, len(raw.Classes))
	for i, c := range raw.Classes {
		dec := json.NewDecoder(bytes.NewReader(c))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("class %d: %w", i, err)
		}
		switch t := v.(type) {
		case string:
			classes = append(classes, t)
		case json.Number:
			classes = append(classes, t.String())
			numeric[i] = true
		case bool:
			classes = append(classes, fmt.Sprint(t))
		default:
			return nil, fmt.Errorf("class %d: unsupported label type %T", i, v)
		}
	}
	return &LabelEncoder{classes: classes, numeric: numeric}, nil
}
