package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the document format of a spec file
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the spec format from a file extension. Anything that
// is not .json is read as YAML, which also accepts plain JSON.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// DecodeSpec decodes a spec document. Decoding failures are reported as
// invalid_spec errors.
func DecodeSpec(data []byte, format Format) (Spec, error) {
	var spec Spec

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&spec); err != nil {
			return Spec{}, &Error{Phase: PhaseCompile, Kind: KindInvalidSpec, Detail: "malformed JSON spec", Cause: err}
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&spec); err != nil {
			return Spec{}, &Error{Phase: PhaseCompile, Kind: KindInvalidSpec, Detail: "malformed YAML spec", Cause: err}
		}
	default:
		return Spec{}, specError("unknown spec format %q", format)
	}

	return spec, nil
}

// LoadSpec reads and decodes a spec file
func LoadSpec(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read spec file: %w", err)
	}
	return DecodeSpec(data, FormatFromPath(path))
}

// LoadLayout reads a spec file and compiles it
func LoadLayout(path string) (*Layout, error) {
	spec, err := LoadSpec(path)
	if err != nil {
		return nil, err
	}
	return Compile(spec)
}
