package config

import (
	"fmt"
	"strings"
)

// RuntimeSettings is the persisted application configuration for the console.
type RuntimeSettings struct {
	// Endpoint is the base URL of the model backend, without a trailing slash.
	Endpoint string `json:"ollama_endpoint"`
	// Model is the default model name used when the user has not picked one.
	Model string `json:"ollama_model"`
	// ThinkingLevel is nil (off), a bool, or a level string such as "high".
	// It is normalized by ThinkArgument before being sent to the backend.
	ThinkingLevel any `json:"thinking_level,omitempty"`
	// ShowThoughts controls whether thinking output is rendered.
	ShowThoughts bool `json:"show_thoughts"`
	// Streaming selects the streaming chat path over the blocking one.
	Streaming bool `json:"enable_streaming"`
}

const (
	DefaultEndpoint = "http://localhost:11434"
	DefaultModel    = "llama3"
)

func DefaultSettings() RuntimeSettings {
	return RuntimeSettings{
		Endpoint:  DefaultEndpoint,
		Model:     DefaultModel,
		Streaming: true,
	}
}

func (s RuntimeSettings) normalized() RuntimeSettings {
	s.Endpoint = strings.TrimRight(strings.TrimSpace(s.Endpoint), "/")
	if s.Endpoint == "" {
		s.Endpoint = DefaultEndpoint
	}
	return s
}

// ThinkArgument resolves the configured thinking level into the value sent as
// the request's think parameter, or nil when it should be omitted entirely.
//
// Resolution: nil/off/none/disabled/empty -> nil; low|medium|high -> the level
// string; true/yes/on -> true; any other non-empty string passes through
// verbatim so backend-specific levels keep working without a code change.
func (s RuntimeSettings) ThinkArgument() any {
	if s.ThinkingLevel == nil {
		return nil
	}
	if b, ok := s.ThinkingLevel.(bool); ok {
		return b
	}
	raw, ok := s.ThinkingLevel.(string)
	if !ok {
		raw = fmt.Sprint(s.ThinkingLevel)
	}
	normalized := strings.ToLower(strings.TrimSpace(raw))
	switch normalized {
	case "", "none", "off", "disabled":
		return nil
	case "low", "medium", "high":
		return normalized
	case "true", "yes", "on":
		return true
	default:
		return normalized
	}
}
