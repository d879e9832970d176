package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pbelyaev/toolchat/internal/config"
)

const (
	connectTimeout = 5 * time.Second
	requestTimeout = 30 * time.Second
)

// Binding is a resolved, invocable tool. Bindings are rebuilt wholesale on
// every discovery refresh and never mutated in place.
type Binding struct {
	// Name is the globally unique binding name, "{server}-{tool}".
	Name string
	// DisplayName is the tool's own name as published by its server.
	DisplayName string
	ServerName  string
	// Endpoint is the absolute invocation URL.
	Endpoint string
	// Method is GET or POST, uppercased.
	Method string
	// Definition is the function-calling schema handed to the model backend.
	Definition map[string]any

	// schema validates call arguments before dispatch. Nil when the manifest
	// schema did not compile; validation is then skipped for this binding.
	schema *jsonschema.Schema
}

// DiscoveryResult holds the outcome of one discovery cycle: bindings from
// every reachable server and one error string per failed server.
type DiscoveryResult struct {
	Bindings []Binding
	Errors   []string
}

type manifestEntry struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
	Method      string         `json:"method"`
}

// Registry discovers tool manifests from configured servers and owns the
// current binding set. Lookup is last-registered-wins on name collision.
type Registry struct {
	client *http.Client

	mu       sync.RWMutex
	bindings []Binding
	lookup   map[string]Binding
	errors   []string
}

func NewRegistry() *Registry {
	return &Registry{
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
		lookup: map[string]Binding{},
	}
}

// Discover fetches the manifest of every enabled server and replaces the
// registry's binding set with the result. A server that fails to answer
// contributes a human-readable error and does not block the others; disabled
// servers are skipped silently.
func (r *Registry) Discover(ctx context.Context, servers []config.ToolServer) DiscoveryResult {
	var result DiscoveryResult
	for _, server := range servers {
		if !server.Enabled {
			continue
		}
		bindings, err := r.fetchServerTools(ctx, server)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: unable to fetch tools (%v)", server.Name, err))
			continue
		}
		result.Bindings = append(result.Bindings, bindings...)
	}

	lookup := make(map[string]Binding, len(result.Bindings))
	for _, binding := range result.Bindings {
		lookup[binding.Name] = binding
	}

	r.mu.Lock()
	r.bindings = result.Bindings
	r.lookup = lookup
	r.errors = result.Errors
	r.mu.Unlock()
	return result
}

func (r *Registry) fetchServerTools(ctx context.Context, server config.ToolServer) ([]Binding, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/tools", nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	var entries []manifestEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, err
	}

	bindings := make([]Binding, 0, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			name = "tool"
		}
		parameters := entry.Parameters
		if parameters == nil {
			parameters = emptyObjectSchema()
		}
		method := strings.ToUpper(strings.TrimSpace(entry.Method))
		if method == "" {
			method = http.MethodPost
		}
		unique := server.Name + "-" + name
		bindings = append(bindings, Binding{
			Name:        unique,
			DisplayName: name,
			ServerName:  server.Name,
			Endpoint:    server.URL + "/tools/" + name,
			Method:      method,
			Definition: map[string]any{
				"type": "function",
				"function": map[string]any{
					"name":        unique,
					"description": entry.Description,
					"parameters":  parameters,
				},
			},
			schema: compileSchema(parameters),
		})
	}
	return bindings, nil
}

// Bindings returns the binding set from the last discovery.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Binding, len(r.bindings))
	copy(out, r.bindings)
	return out
}

// Errors returns the per-server error strings from the last discovery.
func (r *Registry) Errors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

// Resolve looks up a binding by its unique name.
func (r *Registry) Resolve(name string) (Binding, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.lookup[name]
	return b, ok
}

// Definitions returns the function-calling definitions of every binding, in
// discovery order, for inclusion in a chat request.
func (r *Registry) Definitions() []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.bindings) == 0 {
		return nil
	}
	out := make([]map[string]any, 0, len(r.bindings))
	for _, binding := range r.bindings {
		out = append(out, binding.Definition)
	}
	return out
}

func emptyObjectSchema() map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
}

// compileSchema builds a validator for a manifest parameters document.
// Manifests come from third-party servers; a schema that does not compile
// disables validation rather than failing discovery.
func compileSchema(parameters map[string]any) *jsonschema.Schema {
	raw, err := json.Marshal(parameters)
	if err != nil {
		return nil
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", strings.NewReader(string(raw))); err != nil {
		return nil
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return nil
	}
	return schema
}
