package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	connectTimeout = 5 * time.Second
	requestTimeout = 30 * time.Second
)

// Client talks to an Ollama-style chat backend over HTTP. Blocking and
// streaming completions share one transport; every failure surfaces as *Error.
type Client struct {
	base string

	// blocking carries a total request deadline; streaming must not, since a
	// generation legitimately outlives it. Both share the connect timeout and
	// give up if response headers do not arrive in time.
	blocking  *http.Client
	streaming *http.Client
}

func NewClient(base string) *Client {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = "http://localhost:11434"
	}
	transport := &http.Transport{
		DialContext:           (&net.Dialer{Timeout: connectTimeout}).DialContext,
		ResponseHeaderTimeout: requestTimeout,
	}
	return &Client{
		base:      base,
		blocking:  &http.Client{Transport: transport, Timeout: requestTimeout},
		streaming: &http.Client{Transport: transport},
	}
}

func (c *Client) BaseURL() string { return c.base }

// Complete runs a blocking chat completion. The request's Stream flag is
// forced off regardless of what the caller set.
func (c *Client) Complete(ctx context.Context, req ChatRequest) (ChatResponse, error) {
	req.Stream = false
	resp, err := c.postJSON(ctx, c.blocking, "/api/chat", req)
	if err != nil {
		return ChatResponse{}, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return ChatResponse{}, err
	}
	var out ChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ChatResponse{}, wrapError("decode chat response", err)
	}
	return out, nil
}

// Stream runs a streaming chat completion. Events arrive on the returned
// stream's channel until the backend closes the connection or emits its
// terminal event; the stream is finite and not restartable.
func (c *Client) Stream(ctx context.Context, req ChatRequest) (*Stream, error) {
	req.Stream = true
	sctx, cancel := context.WithCancel(ctx)
	resp, err := c.postJSON(sctx, c.streaming, "/api/chat", req)
	if err != nil {
		cancel()
		return nil, err
	}
	if err := checkStatus(resp); err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}

	s := newStream(cancel)
	go func() {
		defer cancel()
		defer resp.Body.Close()
		defer s.closeSend()

		dec := json.NewDecoder(resp.Body)
		for {
			var event ChatResponse
			if err := dec.Decode(&event); err != nil {
				if err != io.EOF && sctx.Err() == nil {
					s.fail(wrapError("decode stream event", err))
				}
				return
			}
			if !s.send(sctx, event) {
				return
			}
			if event.Done {
				return
			}
		}
	}()
	return s, nil
}

// Version probes the backend version endpoint. The probe is advisory: any
// failure is reported as an error and the caller may ignore it.
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.getJSON(ctx, "/api/version")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return "", err
	}
	var out struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", wrapError("decode version response", err)
	}
	return out.Version, nil
}

// ListModels returns the locally available models.
func (c *Client) ListModels(ctx context.Context) ([]ModelSummary, error) {
	resp, err := c.getJSON(ctx, "/api/tags")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out struct {
		Models []struct {
			Name    string `json:"name"`
			Model   string `json:"model"`
			Details struct {
				ParameterSize     string `json:"parameter_size"`
				Family            string `json:"family"`
				QuantizationLevel string `json:"quantization_level"`
			} `json:"details"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, wrapError("decode model list", err)
	}
	models := make([]ModelSummary, 0, len(out.Models))
	for _, entry := range out.Models {
		name := entry.Name
		if name == "" {
			name = entry.Model
		}
		models = append(models, ModelSummary{
			Name:              name,
			ParameterSize:     entry.Details.ParameterSize,
			Family:            entry.Details.Family,
			QuantizationLevel: entry.Details.QuantizationLevel,
		})
	}
	return models, nil
}

// ShowModel fetches the backend's full metadata record for one model.
func (c *Client) ShowModel(ctx context.Context, name string) (map[string]any, error) {
	resp, err := c.postJSON(ctx, c.blocking, "/api/show", map[string]string{"model": name})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, wrapError("decode model details", err)
	}
	return out, nil
}

func (c *Client) postJSON(ctx context.Context, client *http.Client, path string, payload any) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, wrapError("encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return nil, wrapError("build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("POST %s", path), err)
	}
	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return nil, wrapError("build request", err)
	}
	resp, err := c.blocking.Do(req)
	if err != nil {
		return nil, wrapError(fmt.Sprintf("GET %s", path), err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(snippet))
	if msg == "" {
		msg = resp.Status
	}
	return newError("status %d: %s", resp.StatusCode, msg)
}
