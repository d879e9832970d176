package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
)

// InvocationError reports one failed tool call: transport trouble, a non-2xx
// response, or arguments rejected by the binding's schema. It is isolated per
// call and recorded as a tool-result message, never aborting a turn.
type InvocationError struct {
	Binding string
	Err     error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Binding, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// Invoker executes single tool calls against their bound endpoints. It does
// not retry; the caller decides how to present failures.
type Invoker struct {
	client *http.Client
}

func NewInvoker() *Invoker {
	return &Invoker{
		client: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
			},
		},
	}
}

// Invoke calls the tool behind binding with the given arguments. GET bindings
// receive arguments as query parameters, POST bindings as a JSON body. The
// response body is parsed as JSON when possible and returned as raw text
// otherwise, since tools may legitimately answer in plain text.
func (v *Invoker) Invoke(ctx context.Context, binding Binding, args map[string]any) (any, error) {
	if args == nil {
		args = map[string]any{}
	}
	if binding.schema != nil {
		if err := binding.schema.Validate(args); err != nil {
			return nil, &InvocationError{Binding: binding.Name, Err: fmt.Errorf("arguments rejected by schema: %v", err)}
		}
	}

	req, err := v.buildRequest(ctx, binding, args)
	if err != nil {
		return nil, &InvocationError{Binding: binding.Name, Err: err}
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return nil, &InvocationError{Binding: binding.Name, Err: err}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, &InvocationError{Binding: binding.Name, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &InvocationError{Binding: binding.Name, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return string(body), nil
	}
	return parsed, nil
}

func (v *Invoker) buildRequest(ctx context.Context, binding Binding, args map[string]any) (*http.Request, error) {
	if binding.Method == http.MethodGet {
		query := url.Values{}
		for key, value := range args {
			query.Set(key, queryValue(value))
		}
		endpoint := binding.Endpoint
		if encoded := query.Encode(); encoded != "" {
			endpoint += "?" + encoded
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	}
	body, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, binding.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func queryValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool, int, int64, float64, json.Number:
		return fmt.Sprint(x)
	default:
		raw, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}

// ParseArguments normalizes the arguments attached to a model tool call.
// Backends are inconsistent here: arguments may already be a structured
// object, a JSON-encoded string, or absent. A string that is not valid JSON
// is wrapped as {"value": raw} so the tool still sees something usable.
func ParseArguments(raw any) map[string]any {
	switch x := raw.(type) {
	case map[string]any:
		return x
	case string:
		var decoded map[string]any
		if err := json.Unmarshal([]byte(x), &decoded); err != nil || decoded == nil {
			return map[string]any{"value": x}
		}
		return decoded
	default:
		return map[string]any{}
	}
}

// FormatResult renders a tool result for the conversation log: structured
// values as indented JSON, everything else as plain text.
func FormatResult(result any) string {
	switch x := result.(type) {
	case nil:
		return ""
	case string:
		return x
	default:
		raw, err := json.MarshalIndent(x, "", "  ")
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(raw)
	}
}
