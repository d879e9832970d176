package chat

import "github.com/pbelyaev/toolchat/internal/model"

// TranscriptSink receives display events while a turn runs. Implementations
// render to a terminal, a UI, or nothing at all; the orchestrator never cares.
type TranscriptSink interface {
	// Status reports a display-status transition.
	Status(status Status)
	// ContentDelta delivers an assistant content fragment in arrival order.
	// The blocking path delivers the whole content as one fragment.
	ContentDelta(delta string)
	// ThinkingDelta delivers a reasoning fragment. Only called when the
	// settings ask for thoughts to be shown.
	ThinkingDelta(delta string)
	// ToolCallsRequested announces the binding names the model asked for.
	ToolCallsRequested(names []string)
	// ToolResult delivers one appended tool message and whether it records a
	// failure.
	ToolResult(msg model.Message, isError bool)
	// Warning surfaces a non-fatal condition, such as a repeated identical
	// tool-call batch.
	Warning(text string)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Status(Status)                  {}
func (NopSink) ContentDelta(string)            {}
func (NopSink) ThinkingDelta(string)           {}
func (NopSink) ToolCallsRequested([]string)    {}
func (NopSink) ToolResult(model.Message, bool) {}
func (NopSink) Warning(string)                 {}
