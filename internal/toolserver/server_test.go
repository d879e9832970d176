package toolserver

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testServer(t *testing.T, tools []Tool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(New(Config{Tools: tools}).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp
}

func TestManifestEndpoint(t *testing.T) {
	srv := testServer(t, nil) // defaults to the builtin set

	var entries []map[string]any
	resp := getJSON(t, srv.URL+"/tools", &entries)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if len(entries) != 4 {
		t.Fatalf("entries: %d", len(entries))
	}

	byName := map[string]map[string]any{}
	for _, entry := range entries {
		byName[entry["name"].(string)] = entry
	}
	add, ok := byName["add"]
	if !ok {
		t.Fatalf("missing add: %v", byName)
	}
	if add["method"] != "POST" || add["description"] == "" {
		t.Fatalf("add entry: %v", add)
	}
	params, ok := add["parameters"].(map[string]any)
	if !ok || params["type"] != "object" {
		t.Fatalf("add parameters: %v", add["parameters"])
	}
	if echo := byName["echo"]; echo["method"] != "GET" {
		t.Fatalf("echo entry: %v", byName["echo"])
	}
}

func TestInvoke_PostTool(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Post(srv.URL+"/tools/add", "application/json", strings.NewReader(`{"a": 2, "b": 3}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["result"] != float64(5) {
		t.Fatalf("result: %v", out)
	}
}

func TestInvoke_GetToolReadsQuery(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Get(srv.URL + "/tools/echo?text=hello+world")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("string results are served as text: %q", ct)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.HasPrefix(string(body), "hello world (echoed at ") {
		t.Fatalf("body: %q", body)
	}
}

func TestInvoke_UnknownTool(t *testing.T) {
	srv := testServer(t, nil)
	var out map[string]any
	resp := getJSON(t, srv.URL+"/tools/nothing", &out)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	if out["error"] != "unknown tool: nothing" {
		t.Fatalf("error: %v", out)
	}
}

func TestInvoke_WrongMethod(t *testing.T) {
	srv := testServer(t, nil)
	// add is POST-only
	var out map[string]any
	resp := getJSON(t, srv.URL+"/tools/add", &out)
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestInvoke_HandlerErrorIsBadRequest(t *testing.T) {
	srv := testServer(t, nil)

	resp, err := http.Post(srv.URL+"/tools/add", "application/json", strings.NewReader(`{"a": "x"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status: %d", resp.StatusCode)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out["error"] == "" {
		t.Fatalf("error body: %v", out)
	}
}

func TestInvoke_EmptyPostBodyTolerated(t *testing.T) {
	tools := []Tool{{
		Name:   "ping",
		Method: http.MethodPost,
		Handler: func(args map[string]any) (any, error) {
			return map[string]any{"args": len(args)}, nil
		},
	}}
	srv := testServer(t, tools)

	resp, err := http.Post(srv.URL+"/tools/ping", "application/json", nil)
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("empty body must invoke with no arguments: %d", resp.StatusCode)
	}
}

func TestGlobTool(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.go", "b.go", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	srv := testServer(t, nil)

	payload := `{"pattern": "*.go", "root": ` + string(mustJSON(t, dir)) + `}`
	resp, err := http.Post(srv.URL+"/tools/glob", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	defer resp.Body.Close()
	var out struct {
		Matches []string `json:"matches"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Matches) != 2 {
		t.Fatalf("matches: %v", out.Matches)
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	raw, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestMultiplyAndStringNumbers(t *testing.T) {
	tools := BuiltinTools()
	var multiply Tool
	for _, tool := range tools {
		if tool.Name == "multiply" {
			multiply = tool
		}
	}
	result, err := multiply.Handler(map[string]any{"a": "4", "b": float64(2.5)})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if result.(map[string]any)["result"] != float64(10) {
		t.Fatalf("result: %v", result)
	}
	if _, err := multiply.Handler(map[string]any{"a": float64(1)}); err == nil {
		t.Fatalf("missing argument must error")
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tools.yaml")
	manifest := `tools:
  - name: oncall
    description: Current on-call contact.
    text: "Page ops via the usual channel."
  - name: runbook
    method: post
    text: "1. stay calm"
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}

	tools, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if len(tools) != 2 {
		t.Fatalf("tools: %d", len(tools))
	}
	if tools[0].Method != http.MethodGet {
		t.Fatalf("method defaults to GET: %q", tools[0].Method)
	}
	if tools[1].Method != http.MethodPost {
		t.Fatalf("method: %q", tools[1].Method)
	}
	result, err := tools[0].Handler(nil)
	if err != nil || result != "Page ops via the usual channel." {
		t.Fatalf("static text: %v, %v", result, err)
	}
}

func TestLoadManifest_Rejections(t *testing.T) {
	dir := t.TempDir()

	write := func(name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if _, err := LoadManifest(write("noname.yaml", "tools:\n  - text: hi\n")); err == nil {
		t.Fatalf("missing name must be rejected")
	}
	if _, err := LoadManifest(write("method.yaml", "tools:\n  - name: x\n    method: DELETE\n")); err == nil {
		t.Fatalf("unsupported method must be rejected")
	}
	if _, err := LoadManifest(filepath.Join(dir, "absent.yaml")); err == nil {
		t.Fatalf("missing file must surface an error")
	}
}
