// Package resultfile reads test results from JSON or YAML documents.
package resultfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/typebest/internal/model"
)

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a user supplied name to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported result format %q", name)
	}
}

// FormatFromPath guesses the format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode reads one result or a list of results from r.
func Decode(r io.Reader, format Format) ([]model.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("result document is empty")
	}
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported result format %q", format)
	}
}

// Load reads results from the file at path.
func Load(path string) ([]model.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open results: %w", err)
	}
	defer func() {
		// Best-effort close for read-only file.
		_ = f.Close()
	}()
	return Decode(f, FormatFromPath(path))
}

func decodeJSON(data []byte) ([]model.Result, error) {
	trimmed := bytes.TrimSpace(data)
	if trimmed[0] == '[' {
		var results []model.Result
		if err := json.Unmarshal(trimmed, &results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
		return results, nil
	}
	var result model.Result
	if err := json.Unmarshal(trimmed, &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return []model.Result{result}, nil
}

func decodeYAML(data []byte) ([]model.Result, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode results: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, fmt.Errorf("result document is empty")
	}
	root := doc.Content[0]
	if root.Kind == yaml.SequenceNode {
		var results []model.Result
		if err := root.Decode(&results); err != nil {
			return nil, fmt.Errorf("failed to decode results: %w", err)
		}
		return results, nil
	}
	var result model.Result
	if err := root.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return []model.Result{result}, nil
}
