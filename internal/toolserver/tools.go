package toolserver

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// Tool is one invocable endpoint exposed by the server. The manifest entry
// for a tool carries its name, description, method, and parameters schema.
type Tool struct {
	Name        string
	Description string
	// Method is GET or POST; GET tools read arguments from query parameters.
	Method     string
	Parameters map[string]any
	// Handler returns the tool result. Strings are served as plain text,
	// everything else as JSON.
	Handler func(args map[string]any) (any, error)
}

func numberSchema(description string) map[string]any {
	return map[string]any{"type": "number", "description": description}
}

func pairSchema(first, second string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": numberSchema(first),
			"b": numberSchema(second),
		},
		"required": []any{"a", "b"},
	}
}

// BuiltinTools returns the server's default tool set: two arithmetic tools,
// a GET echo tool, and a filesystem glob tool.
func BuiltinTools() []Tool {
	return []Tool{
		{
			Name:        "add",
			Description: "Adds two numbers.",
			Method:      http.MethodPost,
			Parameters:  pairSchema("The first number", "The second number"),
			Handler: func(args map[string]any) (any, error) {
				a, b, err := numberPair(args)
				if err != nil {
					return nil, err
				}
				return map[string]any{"result": a + b}, nil
			},
		},
		{
			Name:        "multiply",
			Description: "Multiplies two numbers.",
			Method:      http.MethodPost,
			Parameters:  pairSchema("The first number", "The second number"),
			Handler: func(args map[string]any) (any, error) {
				a, b, err := numberPair(args)
				if err != nil {
					return nil, err
				}
				return map[string]any{"result": a * b}, nil
			},
		},
		{
			Name:        "echo",
			Description: "Echoes the given text back, with a timestamp.",
			Method:      http.MethodGet,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"text": map[string]any{"type": "string", "description": "Text to echo"},
				},
				"required": []any{"text"},
			},
			Handler: func(args map[string]any) (any, error) {
				text, _ := args["text"].(string)
				return fmt.Sprintf("%s (echoed at %s)", text, time.Now().UTC().Format(time.RFC3339)), nil
			},
		},
		{
			Name:        "glob",
			Description: "Lists files under a root directory matching a doublestar pattern.",
			Method:      http.MethodPost,
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"pattern": map[string]any{"type": "string", "description": "Pattern such as **/*.go"},
					"root":    map[string]any{"type": "string", "description": "Directory to search, defaults to the working directory"},
				},
				"required": []any{"pattern"},
			},
			Handler: func(args map[string]any) (any, error) {
				pattern, _ := args["pattern"].(string)
				if pattern == "" {
					return nil, fmt.Errorf("pattern is required")
				}
				root, _ := args["root"].(string)
				if root == "" {
					root = "."
				}
				matches, err := doublestar.Glob(os.DirFS(root), pattern)
				if err != nil {
					return nil, err
				}
				if matches == nil {
					matches = []string{}
				}
				return map[string]any{"matches": matches}, nil
			},
		},
	}
}

func numberPair(args map[string]any) (float64, float64, error) {
	a, err := argNumber(args, "a")
	if err != nil {
		return 0, 0, err
	}
	b, err := argNumber(args, "b")
	if err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

func argNumber(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case string:
		var f float64
		if _, err := fmt.Sscanf(x, "%g", &f); err != nil {
			return 0, fmt.Errorf("argument %q is not a number", key)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("argument %q is not a number", key)
	}
}
