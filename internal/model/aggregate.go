package model

// Aggregate folds streamed chat events into one assistant message. It is a
// pure reducer: each Fold returns a new value, leaving the receiver untouched,
// so callers can snapshot intermediate states freely.
//
// Content and thinking fragments concatenate in arrival order. Tool calls are
// not incremental on this wire: the backend emits them whole, once, so the
// last non-empty list wins.
type Aggregate struct {
	Content    string
	Thinking   string
	ToolCalls  []ToolCall
	Done       bool
	DoneReason string
}

func (a Aggregate) Fold(event ChatResponse) Aggregate {
	a.Content += event.Message.Content
	a.Thinking += event.Message.Thinking
	if len(event.Message.ToolCalls) > 0 {
		a.ToolCalls = event.Message.ToolCalls
	}
	if event.Done {
		a.Done = true
		a.DoneReason = event.DoneReason
	}
	return a
}

// Message materializes the aggregated assistant message.
func (a Aggregate) Message() Message {
	return Message{
		Role:      RoleAssistant,
		Content:   a.Content,
		Thinking:  a.Thinking,
		ToolCalls: a.ToolCalls,
	}
}
