package model

// Role values carried by chat messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message is one turn in a conversation, in the backend's chat wire shape.
// Thinking and ToolCalls are only set on assistant messages; Name identifies
// the producing tool binding on tool messages. Status is a display snapshot
// taken at emission time and is ignored by the backend.
type Message struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	Thinking  string     `json:"thinking,omitempty"`
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
	Name      string     `json:"name,omitempty"`
	Status    string     `json:"status,omitempty"`
}

// ToolCall is a single function-call request emitted by the model.
type ToolCall struct {
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction carries the call target and its arguments. Arguments is
// left untyped: backends variously send a structured object, a JSON-encoded
// string, or nothing at all.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments any    `json:"arguments,omitempty"`
}

func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func ToolResult(name, content string) Message {
	return Message{Role: RoleTool, Name: name, Content: content}
}

// ChatRequest is the chat completion payload. Think must be omitted entirely
// (nil) unless a thinking argument was resolved; Tools carries the
// function-calling definitions built at discovery time.
type ChatRequest struct {
	Model    string           `json:"model"`
	Messages []Message        `json:"messages"`
	Think    any              `json:"think,omitempty"`
	Tools    []map[string]any `json:"tools,omitempty"`
	Stream   bool             `json:"stream"`
}

// ChatResponse is one chat completion object. In streaming mode the backend
// emits a sequence of these, each carrying an incremental Message delta, with
// Done set on the terminal event.
type ChatResponse struct {
	Model      string  `json:"model"`
	CreatedAt  string  `json:"created_at,omitempty"`
	Message    Message `json:"message"`
	Done       bool    `json:"done"`
	DoneReason string  `json:"done_reason,omitempty"`
}

// ModelSummary describes one locally available model.
type ModelSummary struct {
	Name              string `json:"name"`
	ParameterSize     string `json:"parameter_size,omitempty"`
	Family            string `json:"family,omitempty"`
	QuantizationLevel string `json:"quantization_level,omitempty"`
}
