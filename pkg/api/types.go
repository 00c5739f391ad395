package api

import (
	"github.com/ssargent/fixedwidth/pkg/codec"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    string      `json:"kind,omitempty"`
}

// ServerConfig holds configuration for the API server
type ServerConfig struct {
	Port         int
	Bind         string
	APIKey       string
	MaxBodyBytes int64 // request bodies above this size are rejected, 0 disables the limit
}

// LayoutCatalog is the read side of a layout registry
type LayoutCatalog interface {
	Get(name string) (*codec.Layout, bool)
	Names() []string
}

// GenerateRequest is the body of a generate call
type GenerateRequest struct {
	Record codec.Record `json:"record"`
}

// GenerateResponse carries one generated record. RecordBase64 holds the
// exact bytes for encodings that are not valid UTF-8.
type GenerateResponse struct {
	Record       string `json:"record"`
	RecordBase64 string `json:"record_base64"`
	Length       int    `json:"length"`
}

// ParseRequest is the body of a parse call. Exactly one of the two fields
// must be set.
type ParseRequest struct {
	Record       *string `json:"record,omitempty"`
	RecordBase64 *string `json:"record_base64,omitempty"`
}

// ParseResponse carries the fields of one parsed record
type ParseResponse struct {
	Fields codec.Record `json:"fields"`
}

// LayoutSummary describes a catalog entry
type LayoutSummary struct {
	Name            string `json:"name"`
	Encoding        string `json:"encoding"`
	Length          int    `json:"length"`
	TotalLength     int    `json:"total_length"`
	RecordEnding    string `json:"record_ending"`
	SupportsUnicode bool   `json:"supports_unicode"`
	FieldCount      int    `json:"field_count"`
}

// FieldInfo describes one compiled field. Start and End are 1-based and
// inclusive.
type FieldInfo struct {
	Key            string          `json:"key"`
	Type           codec.FieldType `json:"type"`
	Start          int             `json:"start"`
	End            int             `json:"end"`
	Length         int             `json:"length"`
	Required       bool            `json:"required"`
	FixedValue     any             `json:"fixed_value,omitempty"`
	DefaultValue   any             `json:"default_value,omitempty"`
	PossibleValues []any           `json:"possible_values,omitempty"`
	TrueValue      string          `json:"true_value,omitempty"`
	FalseValue     string          `json:"false_value,omitempty"`
}

// LayoutDetail is a layout summary with its fields
type LayoutDetail struct {
	LayoutSummary
	Fields []FieldInfo `json:"fields"`
}

func summarize(name string, l *codec.Layout) LayoutSummary {
	return LayoutSummary{
		Name:            name,
		Encoding:        l.Encoding(),
		Length:          l.Length(),
		TotalLength:     l.TotalLength(),
		RecordEnding:    l.RecordEnding(),
		SupportsUnicode: l.SupportsUnicode(),
		FieldCount:      len(l.Fields()),
	}
}

func describe(name string, l *codec.Layout) LayoutDetail {
	fields := l.Fields()
	detail := LayoutDetail{
		LayoutSummary: summarize(name, l),
		Fields:        make([]FieldInfo, 0, len(fields)),
	}

	for _, f := range fields {
		info := FieldInfo{
			Key:            f.Key,
			Type:           f.Type,
			Start:          f.StartIndex + 1,
			End:            f.EndIndex,
			Length:         f.Length,
			Required:       f.Required,
			FixedValue:     f.FixedValue,
			DefaultValue:   f.DefaultValue,
			PossibleValues: f.PossibleValues,
		}
		if f.Type == codec.TypeBoolean {
			info.TrueValue = f.TrueValue
			info.FalseValue = f.FalseValue
		}
		detail.Fields = append(detail.Fields, info)
	}

	return detail
}
