package toolserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Config holds server configuration.
type Config struct {
	Addr string // listen address, e.g. ":3000"
	// Tools defaults to BuiltinTools when empty.
	Tools []Tool
}

// Server exposes a tool manifest at GET /tools and one invocation endpoint
// per tool at /tools/{name}.
type Server struct {
	config  Config
	tools   []Tool
	byName  map[string]Tool
	httpSrv *http.Server
	logger  *log.Logger
}

func New(cfg Config) *Server {
	tools := cfg.Tools
	if len(tools) == 0 {
		tools = BuiltinTools()
	}
	byName := make(map[string]Tool, len(tools))
	for _, tool := range tools {
		byName[tool.Name] = tool
	}
	s := &Server{
		config: cfg,
		tools:  tools,
		byName: byName,
		logger: log.New(os.Stderr, "[toolserver] ", log.LstdFlags),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /tools", s.handleManifest)
	mux.HandleFunc("GET /tools/{name}", s.handleInvoke)
	mux.HandleFunc("POST /tools/{name}", s.handleInvoke)

	s.httpSrv = &http.Server{
		Addr:         cfg.Addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler exposes the routing mux, used by tests.
func (s *Server) Handler() http.Handler { return s.httpSrv.Handler }

// ListenAndServe starts the server and blocks until SIGINT/SIGTERM.
func (s *Server) ListenAndServe() error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		s.logger.Printf("received %s, shutting down...", sig)
		_ = s.httpSrv.Close()
	}()

	s.logger.Printf("serving %d tools on %s", len(s.tools), s.config.Addr)
	err := s.httpSrv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	entries := make([]map[string]any, 0, len(s.tools))
	for _, tool := range s.tools {
		entries = append(entries, map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"parameters":  tool.Parameters,
			"method":      tool.Method,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	tool, ok := s.byName[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": fmt.Sprintf("unknown tool: %s", name)})
		return
	}
	if r.Method != tool.Method {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": fmt.Sprintf("tool %s expects %s", name, tool.Method)})
		return
	}

	args, err := requestArguments(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	result, err := tool.Handler(args)
	if err != nil {
		s.logger.Printf("tool %s failed: %v", name, err)
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
		return
	}

	if text, ok := result.(string); ok {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(text))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func requestArguments(r *http.Request) (map[string]any, error) {
	if r.Method == http.MethodGet {
		args := map[string]any{}
		for key, values := range r.URL.Query() {
			if len(values) > 0 {
				args[key] = values[0]
			}
		}
		return args, nil
	}
	args := map[string]any{}
	if r.Body == nil {
		return args, nil
	}
	if err := json.NewDecoder(r.Body).Decode(&args); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid JSON body: %v", err)
	}
	return args, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
