package chat

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/zeebo/blake3"

	"github.com/pbelyaev/toolchat/internal/config"
	"github.com/pbelyaev/toolchat/internal/model"
	"github.com/pbelyaev/toolchat/internal/tools"
)

// Gateway is the model backend surface the orchestrator depends on.
type Gateway interface {
	Complete(ctx context.Context, req model.ChatRequest) (model.ChatResponse, error)
	Stream(ctx context.Context, req model.ChatRequest) (*model.Stream, error)
}

// Resolver is the registry surface the orchestrator depends on: the binding
// lookup map and the definitions from the last discovery.
type Resolver interface {
	Resolve(name string) (tools.Binding, bool)
	Definitions() []map[string]any
}

// ToolCaller executes one resolved tool call.
type ToolCaller interface {
	Invoke(ctx context.Context, binding tools.Binding, args map[string]any) (any, error)
}

// DefaultMaxModelRounds bounds the model round trips within one user turn so
// a model that keeps requesting tools cannot loop forever.
const DefaultMaxModelRounds = 3

type OrchestratorConfig struct {
	// MaxModelRounds overrides DefaultMaxModelRounds when positive.
	MaxModelRounds int
}

func (c *OrchestratorConfig) applyDefaults() {
	if c.MaxModelRounds <= 0 {
		c.MaxModelRounds = DefaultMaxModelRounds
	}
}

// Orchestrator drives one user turn to completion: it alternates model calls
// and sequential tool invocations until the model stops requesting tools or
// the round bound is reached. All collaborators are injected; the orchestrator
// holds no global state.
type Orchestrator struct {
	cfg      OrchestratorConfig
	gateway  Gateway
	registry Resolver
	invoker  ToolCaller
	sink     TranscriptSink
	logger   *log.Logger
}

func NewOrchestrator(gateway Gateway, registry Resolver, invoker ToolCaller, sink TranscriptSink, cfg OrchestratorConfig) *Orchestrator {
	cfg.applyDefaults()
	if sink == nil {
		sink = NopSink{}
	}
	return &Orchestrator{
		cfg:      cfg,
		gateway:  gateway,
		registry: registry,
		invoker:  invoker,
		sink:     sink,
		logger:   log.New(io.Discard, "", 0),
	}
}

// SetLogger replaces the orchestrator's logger, which is silent by default.
func (o *Orchestrator) SetLogger(logger *log.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

// RunTurn appends model and tool messages to conv until the turn reaches one
// of its terminal conditions. Only a model backend failure is returned as an
// error; tool-layer failures degrade to tool-result messages so the model can
// see and react to them on its next round trip.
func (o *Orchestrator) RunTurn(ctx context.Context, conv *Conversation, settings config.RuntimeSettings) error {
	if err := conv.beginTurn(); err != nil {
		return err
	}
	defer conv.endTurn()

	var lastFingerprint string
	for round := 0; round < o.cfg.MaxModelRounds; round++ {
		o.logger.Printf("turn round %d/%d conversation=%s", round+1, o.cfg.MaxModelRounds, conv.ID())
		req := model.ChatRequest{
			Model:    settings.Model,
			Messages: conv.Messages(),
			Think:    settings.ThinkArgument(),
			Tools:    o.registry.Definitions(),
		}

		o.setStatus(conv, StatusLoading)
		o.setStatus(conv, StatusThinking)

		assistant, err := o.dispatch(ctx, conv, settings, req)
		if err != nil {
			o.setStatus(conv, StatusError)
			o.logger.Printf("model dispatch failed: %v", err)
			return err
		}

		if len(assistant.ToolCalls) == 0 {
			o.setStatus(conv, StatusThoughts)
			assistant.Status = string(StatusThoughts)
			conv.Append(assistant)
			o.logger.Printf("turn finished after round %d: no tool calls", round+1)
			return nil
		}

		o.setStatus(conv, StatusProcessing)
		assistant.Status = string(StatusProcessing)
		conv.Append(assistant)
		o.sink.ToolCallsRequested(callNames(assistant.ToolCalls))

		fp := callsFingerprint(assistant.ToolCalls)
		if fp != "" && fp == lastFingerprint {
			o.sink.Warning("model repeated the previous tool-call batch")
		}
		lastFingerprint = fp

		o.runToolCalls(ctx, conv, assistant.ToolCalls)
	}

	// Bound reached with tool calls still pending: the turn ends without a
	// further dispatch and the unresolved calls stay visible in the log.
	o.logger.Printf("turn reached round bound %d", o.cfg.MaxModelRounds)
	return nil
}

// dispatch runs one model round trip and returns the aggregated assistant
// message. Streaming and blocking paths converge on the same message shape.
func (o *Orchestrator) dispatch(ctx context.Context, conv *Conversation, settings config.RuntimeSettings, req model.ChatRequest) (model.Message, error) {
	if settings.Streaming {
		return o.dispatchStreaming(ctx, conv, settings, req)
	}
	resp, err := o.gateway.Complete(ctx, req)
	if err != nil {
		return model.Message{}, err
	}
	msg := resp.Message
	msg.Role = model.RoleAssistant
	if msg.Content != "" {
		o.sink.ContentDelta(msg.Content)
	}
	if settings.ShowThoughts && msg.Thinking != "" {
		o.sink.ThinkingDelta(msg.Thinking)
	}
	return msg, nil
}

func (o *Orchestrator) dispatchStreaming(ctx context.Context, conv *Conversation, settings config.RuntimeSettings, req model.ChatRequest) (model.Message, error) {
	stream, err := o.gateway.Stream(ctx, req)
	if err != nil {
		return model.Message{}, err
	}
	defer stream.Close()

	var agg model.Aggregate
	for event := range stream.Events() {
		agg = agg.Fold(event)
		if event.Message.Content != "" {
			o.sink.ContentDelta(event.Message.Content)
		}
		if settings.ShowThoughts && event.Message.Thinking != "" {
			o.sink.ThinkingDelta(event.Message.Thinking)
		}
		if len(event.Message.ToolCalls) > 0 {
			o.setStatus(conv, StatusProcessing)
		}
	}
	if err := stream.Err(); err != nil {
		return model.Message{}, err
	}
	return agg.Message(), nil
}

// runToolCalls resolves and invokes every call sequentially, in the order the
// backend listed them, appending exactly one tool message per call before the
// next one is dispatched. Individual failures never stop the batch.
func (o *Orchestrator) runToolCalls(ctx context.Context, conv *Conversation, calls []model.ToolCall) {
	for _, call := range calls {
		name := call.Function.Name
		binding, ok := o.registry.Resolve(name)
		if !ok {
			content := fmt.Sprintf("Tool `%s` is not available.", name)
			msg := model.ToolResult(name, content)
			conv.Append(msg)
			o.setStatus(conv, StatusError)
			o.sink.ToolResult(msg, true)
			o.logger.Printf("tool binding missing: %s", name)
			continue
		}

		o.setStatus(conv, StatusProcessing)
		args := tools.ParseArguments(call.Function.Arguments)
		o.logger.Printf("invoking tool %s server=%s", binding.Name, binding.ServerName)

		result, err := o.invoker.Invoke(ctx, binding, args)
		if err != nil {
			msg := model.ToolResult(binding.Name, fmt.Sprintf("Tool invocation failed: %v", err))
			conv.Append(msg)
			o.setStatus(conv, StatusError)
			o.sink.ToolResult(msg, true)
			o.logger.Printf("tool invocation failed: %s: %v", binding.Name, err)
			continue
		}

		msg := model.ToolResult(binding.Name, tools.FormatResult(result))
		conv.Append(msg)
		o.sink.ToolResult(msg, false)
	}
}

func (o *Orchestrator) setStatus(conv *Conversation, status Status) {
	conv.setStatus(status)
	o.sink.Status(status)
}

func callNames(calls []model.ToolCall) []string {
	names := make([]string, 0, len(calls))
	for _, call := range calls {
		names = append(names, call.Function.Name)
	}
	return names
}

// callsFingerprint hashes a tool-call batch so repeated identical batches can
// be surfaced as a warning.
func callsFingerprint(calls []model.ToolCall) string {
	if len(calls) == 0 {
		return ""
	}
	h := blake3.New()
	for _, call := range calls {
		h.Write([]byte(call.Function.Name))
		h.Write([]byte{0})
		raw, err := json.Marshal(call.Function.Arguments)
		if err == nil {
			h.Write(raw)
		}
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum[:8])
}
