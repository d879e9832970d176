package config

import (
	"encoding/json"
	"strings"
)

// ToolServer is one configured tool server. Name is the unique key; the
// Enabled flag gates whether the server participates in tool discovery.
type ToolServer struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Enabled     bool   `json:"enabled"`
	Description string `json:"description,omitempty"`
}

// UnmarshalJSON defaults Enabled to true when the field is absent, so a
// hand-written servers.json entry is active without spelling it out.
func (t *ToolServer) UnmarshalJSON(data []byte) error {
	type alias ToolServer
	aux := struct {
		Enabled *bool `json:"enabled"`
		*alias
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Enabled == nil {
		t.Enabled = true
	} else {
		t.Enabled = *aux.Enabled
	}
	return nil
}

func (t ToolServer) normalized() ToolServer {
	t.Name = strings.TrimSpace(t.Name)
	t.URL = strings.TrimRight(strings.TrimSpace(t.URL), "/")
	return t
}

// Valid reports whether the entry carries the minimum required fields.
func (t ToolServer) Valid() bool {
	return t.Name != "" && t.URL != ""
}

func DefaultServers() []ToolServer {
	return []ToolServer{
		{Name: "dummy-server", URL: "http://localhost:3000", Enabled: true},
	}
}
