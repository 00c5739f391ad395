package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// FieldType selects the value transform applied to a field
type FieldType string

const (
	TypeString   FieldType = "string"
	TypeInteger  FieldType = "integer"
	TypeBoolean  FieldType = "boolean"
	TypeDateTime FieldType = "datetime"
	TypeDate     FieldType = "date"
)

// Valid reports whether t is one of the supported field types
func (t FieldType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeBoolean, TypeDateTime, TypeDate:
		return true
	}
	return false
}

// Record is one structured record, keyed by field key
type Record map[string]any

// Spec is the raw, declarative description of a record layout. Pointer
// fields distinguish "unset" from a zero value; Compile resolves defaults.
type Spec struct {
	Encoding                    string      `yaml:"encoding,omitempty" json:"encoding,omitempty"`
	SupportsUnicode             *bool       `yaml:"supportsUnicode,omitempty" json:"supportsUnicode,omitempty"`
	RecordEnding                *Terminator `yaml:"recordEnding,omitempty" json:"recordEnding,omitempty"`
	Length                      *int        `yaml:"length,omitempty" json:"length,omitempty"`
	ZeroIndexedStartingPosition bool        `yaml:"zeroIndexedStartingPosition,omitempty" json:"zeroIndexedStartingPosition,omitempty"`
	DefaultTrueValue            *string     `yaml:"defaultTrueValue,omitempty" json:"defaultTrueValue,omitempty"`
	DefaultFalseValue           *string     `yaml:"defaultFalseValue,omitempty" json:"defaultFalseValue,omitempty"`
	Fields                      []FieldSpec `yaml:"fields" json:"fields"`
}

// FieldSpec describes one positional field
type FieldSpec struct {
	Key              string    `yaml:"key" json:"key"`
	Type             FieldType `yaml:"type" json:"type"`
	StartingPosition int       `yaml:"startingPosition" json:"startingPosition"`
	Length           int       `yaml:"length" json:"length"`
	Required         bool      `yaml:"required,omitempty" json:"required,omitempty"`
	FixedValue       any       `yaml:"fixedValue,omitempty" json:"fixedValue,omitempty"`
	DefaultValue     any       `yaml:"defaultValue,omitempty" json:"defaultValue,omitempty"`
	PossibleValues   Values    `yaml:"possibleValues,omitempty" json:"possibleValues,omitempty"`
	TrueValue        *string   `yaml:"trueValue,omitempty" json:"trueValue,omitempty"`
	FalseValue       *string   `yaml:"falseValue,omitempty" json:"falseValue,omitempty"`
}

func (s Spec) clone() Spec {
	c := s
	c.SupportsUnicode = clonePtr(s.SupportsUnicode)
	c.RecordEnding = clonePtr(s.RecordEnding)
	c.Length = clonePtr(s.Length)
	c.DefaultTrueValue = clonePtr(s.DefaultTrueValue)
	c.DefaultFalseValue = clonePtr(s.DefaultFalseValue)
	c.Fields = make([]FieldSpec, len(s.Fields))
	for i, f := range s.Fields {
		f.FixedValue = cloneValue(f.FixedValue)
		f.DefaultValue = cloneValue(f.DefaultValue)
		f.PossibleValues = cloneValues(f.PossibleValues)
		f.TrueValue = clonePtr(f.TrueValue)
		f.FalseValue = clonePtr(f.FalseValue)
		c.Fields[i] = f
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr returns a pointer to v, for filling the optional fields of Spec.
func Ptr[T any](v T) *T {
	return &v
}

// Terminator is a record ending literal. In spec documents it may also be
// given as false, which disables the ending like the empty string does.
type Terminator string

// Ending returns a record ending for use in Spec.RecordEnding
func Ending(s string) *Terminator {
	t := Terminator(s)
	return &t
}

// NoEnding returns a record ending that disables the terminator
func NoEnding() *Terminator {
	return Ending("")
}

var errRecordEndingType = errors.New("recordEnding must be a string or false")

// UnmarshalJSON accepts a string or false
func (t *Terminator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = Terminator(s)
		return nil
	}
	var on bool
	if err := json.Unmarshal(data, &on); err == nil && !on {
		*t = ""
		return nil
	}
	return errRecordEndingType
}

// UnmarshalYAML accepts a string or false
func (t *Terminator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!bool" {
		var on bool
		if err := node.Decode(&on); err != nil || on {
			return fmt.Errorf("line %d: %w", node.Line, errRecordEndingType)
		}
		*t = ""
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, errRecordEndingType)
	}
	*t = Terminator(s)
	return nil
}

// Values is the closed set of values a field accepts on generate. A nil
// Values places no restriction; an empty, non-nil one rejects everything.
type Values []any

var errPossibleValuesType = errors.New("possibleValues must be an array")

// UnmarshalJSON rejects anything but an array or null
func (v *Values) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}
	if len(data) == 0 || data[0] != '[' {
		return errPossibleValuesType
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*v = items
	return nil
}

// UnmarshalYAML rejects anything but a sequence
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: %w", node.Line, errPossibleValuesType)
	}
	var items []any
	if err := node.Decode(&items); err != nil {
		return err
	}
	if items == nil {
		items = []any{}
	}
	*v = items
	return nil
}
