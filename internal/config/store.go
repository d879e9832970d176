package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	settingsFile = "settings.json"
	serversFile  = "servers.json"
)

// Store persists the two configuration documents under one directory.
// Missing or malformed documents fall back to built-in defaults and are
// rewritten so the on-disk state is always loadable.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultDir places the config under the user's standard config root.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "toolchat"), nil
}

func (s *Store) SettingsPath() string { return filepath.Join(s.dir, settingsFile) }
func (s *Store) ServersPath() string  { return filepath.Join(s.dir, serversFile) }

func (s *Store) ensureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

// LoadSettings returns the persisted settings, rewriting defaults when the
// document is missing or malformed.
func (s *Store) LoadSettings() (RuntimeSettings, error) {
	if err := s.ensureDir(); err != nil {
		return DefaultSettings(), err
	}
	raw, err := os.ReadFile(s.SettingsPath())
	if err != nil {
		if os.IsNotExist(err) {
			def := DefaultSettings()
			return def, s.SaveSettings(def)
		}
		return DefaultSettings(), err
	}
	var settings RuntimeSettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		def := DefaultSettings()
		return def, s.SaveSettings(def)
	}
	return settings.normalized(), nil
}

func (s *Store) SaveSettings(settings RuntimeSettings) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	return writeJSON(s.SettingsPath(), settings.normalized())
}

// LoadServers returns all configured tool servers. Entries missing required
// fields are dropped; an empty or unreadable document yields the defaults.
func (s *Store) LoadServers() ([]ToolServer, error) {
	if err := s.ensureDir(); err != nil {
		return DefaultServers(), err
	}
	raw, err := os.ReadFile(s.ServersPath())
	if err != nil {
		if os.IsNotExist(err) {
			def := DefaultServers()
			return def, s.SaveServers(def)
		}
		return DefaultServers(), err
	}
	var entries []ToolServer
	if err := json.Unmarshal(raw, &entries); err != nil {
		def := DefaultServers()
		return def, s.SaveServers(def)
	}
	servers := make([]ToolServer, 0, len(entries))
	for _, entry := range entries {
		entry = entry.normalized()
		if !entry.Valid() {
			continue
		}
		servers = append(servers, entry)
	}
	if len(servers) == 0 {
		servers = DefaultServers()
	}
	return servers, nil
}

func (s *Store) SaveServers(servers []ToolServer) error {
	if err := s.ensureDir(); err != nil {
		return err
	}
	out := make([]ToolServer, 0, len(servers))
	for _, server := range servers {
		out = append(out, server.normalized())
	}
	return writeJSON(s.ServersPath(), out)
}

// AddServer appends or replaces the server with the same name and persists
// the result.
func (s *Store) AddServer(server ToolServer) ([]ToolServer, error) {
	server = server.normalized()
	if !server.Valid() {
		return nil, fmt.Errorf("server requires a name and a url")
	}
	servers, err := s.LoadServers()
	if err != nil {
		return nil, err
	}
	replaced := false
	for i := range servers {
		if servers[i].Name == server.Name {
			servers[i] = server
			replaced = true
			break
		}
	}
	if !replaced {
		servers = append(servers, server)
	}
	return servers, s.SaveServers(servers)
}

// RemoveServer deletes the named server, if present, and persists the result.
func (s *Store) RemoveServer(name string) ([]ToolServer, error) {
	servers, err := s.LoadServers()
	if err != nil {
		return nil, err
	}
	kept := servers[:0]
	for _, server := range servers {
		if server.Name != name {
			kept = append(kept, server)
		}
	}
	return kept, s.SaveServers(kept)
}

// SetServerEnabled toggles one server's discovery participation and persists
// the change. Unknown names leave the document untouched.
func (s *Store) SetServerEnabled(name string, enabled bool) ([]ToolServer, error) {
	servers, err := s.LoadServers()
	if err != nil {
		return nil, err
	}
	updated := false
	for i := range servers {
		if servers[i].Name == name {
			servers[i].Enabled = enabled
			updated = true
			break
		}
	}
	if !updated {
		return servers, nil
	}
	return servers, s.SaveServers(servers)
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
