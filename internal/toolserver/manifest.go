package toolserver

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestFile declares extra static tools served verbatim: each returns its
// configured text. Useful for wiring fixed context (runbooks, contact info)
// into the assistant without writing a handler.
type manifestFile struct {
	Tools []manifestTool `yaml:"tools"`
}

type manifestTool struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Method      string `yaml:"method"`
	Text        string `yaml:"text"`
}

// LoadManifest reads a YAML tool declaration file and returns the tools it
// defines.
func LoadManifest(path string) ([]Tool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file manifestFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	out := make([]Tool, 0, len(file.Tools))
	for _, entry := range file.Tools {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("manifest %s: tool entry missing name", path)
		}
		method := strings.ToUpper(strings.TrimSpace(entry.Method))
		if method == "" {
			method = http.MethodGet
		}
		if method != http.MethodGet && method != http.MethodPost {
			return nil, fmt.Errorf("manifest %s: tool %s: unsupported method %q", path, name, entry.Method)
		}
		text := entry.Text
		out = append(out, Tool{
			Name:        name,
			Description: entry.Description,
			Method:      method,
			Parameters: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
			Handler: func(map[string]any) (any, error) {
				return text, nil
			},
		})
	}
	return out, nil
}
