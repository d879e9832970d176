package config

import "testing"

func TestThinkArgument_Resolution(t *testing.T) {
	cases := []struct {
		name  string
		level any
		want  any
	}{
		{name: "nil_omits", level: nil, want: nil},
		{name: "off_omits", level: "off", want: nil},
		{name: "none_omits", level: "none", want: nil},
		{name: "disabled_omits", level: "disabled", want: nil},
		{name: "empty_omits", level: "", want: nil},
		{name: "whitespace_omits", level: "   ", want: nil},
		{name: "low_passes", level: "low", want: "low"},
		{name: "medium_passes", level: "medium", want: "medium"},
		{name: "high_passes", level: "high", want: "high"},
		{name: "high_mixed_case", level: "High", want: "high"},
		{name: "bool_true", level: true, want: true},
		{name: "bool_false", level: false, want: false},
		{name: "true_string", level: "true", want: true},
		{name: "yes_string", level: "yes", want: true},
		{name: "on_string", level: "on", want: true},
		{name: "unknown_passes_through", level: "banana", want: "banana"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			settings := RuntimeSettings{ThinkingLevel: tc.level}
			got := settings.ThinkArgument()
			if got != tc.want {
				t.Fatalf("ThinkArgument(%v) = %v, want %v", tc.level, got, tc.want)
			}
		})
	}
}

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()
	if settings.Endpoint != DefaultEndpoint {
		t.Fatalf("endpoint: %q", settings.Endpoint)
	}
	if settings.Model != DefaultModel {
		t.Fatalf("model: %q", settings.Model)
	}
	if !settings.Streaming {
		t.Fatalf("streaming should default on")
	}
	if settings.ShowThoughts {
		t.Fatalf("show thoughts should default off")
	}
	if settings.ThinkArgument() != nil {
		t.Fatalf("thinking should default to omitted")
	}
}

func TestSettingsNormalized_TrimsEndpoint(t *testing.T) {
	settings := RuntimeSettings{Endpoint: " http://localhost:11434/ "}
	got := settings.normalized()
	if got.Endpoint != "http://localhost:11434" {
		t.Fatalf("endpoint: %q", got.Endpoint)
	}

	empty := RuntimeSettings{}.normalized()
	if empty.Endpoint != DefaultEndpoint {
		t.Fatalf("empty endpoint should fall back to default, got %q", empty.Endpoint)
	}
}
