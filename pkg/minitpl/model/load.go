package model

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohler55/ojg/oj"
	"gopkg.in/yaml.v3"
)

// Format names a serialized model encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the model format from a file extension. Unknown
// extensions are read as YAML, which also accepts JSON documents.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// Decode parses a serialized model document.
func Decode(data []byte, format Format) (Value, error) {
	var raw any
	switch format {
	case FormatJSON:
		if err := oj.Unmarshal(data, &raw); err != nil {
			return Null(), fmt.Errorf("invalid JSON model: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return Null(), fmt.Errorf("invalid YAML model: %w", err)
		}
	default:
		return Null(), fmt.Errorf("unsupported model format %q", format)
	}
	return From(raw)
}

// Read decodes a model from r.
func Read(r io.Reader, format Format) (Value, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Null(), err
	}
	return Decode(data, format)
}

// LoadFile reads a JSON or YAML model file, choosing the decoder from the
// file extension.
func LoadFile(path string) (Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Null(), err
	}
	v, err := Decode(data, FormatForPath(path))
	if err != nil {
		return Null(), fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}
