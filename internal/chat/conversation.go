package chat

import (
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/pbelyaev/toolchat/internal/model"
)

// Status is the display status of the conversation's current request.
type Status string

const (
	StatusLoading    Status = "Loading..."
	StatusThinking   Status = "Thinking..."
	StatusProcessing Status = "Processing..."
	StatusThoughts   Status = "Thoughts..."
	StatusError      Status = "Error"
)

// Conversation owns one session's ordered message log. The log is append-only
// while a turn runs, and only one turn may be in flight at a time.
type Conversation struct {
	id string

	mu       sync.Mutex
	messages []model.Message
	status   Status
	busy     bool
}

func NewConversation() *Conversation {
	return &Conversation{
		id:     ulid.Make().String(),
		status: StatusThoughts,
	}
}

func (c *Conversation) ID() string { return c.id }

func (c *Conversation) Append(msg model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

// Messages returns a snapshot of the log.
func (c *Conversation) Messages() []model.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// Clear drops the log and resets the status. Only valid between turns.
func (c *Conversation) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return fmt.Errorf("conversation busy: a turn is in flight")
	}
	c.messages = nil
	c.status = StatusThoughts
	return nil
}

func (c *Conversation) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Conversation) setStatus(status Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = status
}

// PendingToolCalls returns the tool calls of the latest assistant message
// that have not yet been answered by a tool message. Non-empty after a turn
// means the turn ended at its iteration bound with work left visible.
func (c *Conversation) PendingToolCalls() []model.ToolCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	answered := 0
	for i := len(c.messages) - 1; i >= 0; i-- {
		msg := c.messages[i]
		switch msg.Role {
		case model.RoleTool:
			answered++
			continue
		case model.RoleAssistant:
			if answered >= len(msg.ToolCalls) {
				return nil
			}
			pending := make([]model.ToolCall, len(msg.ToolCalls)-answered)
			copy(pending, msg.ToolCalls[answered:])
			return pending
		default:
			return nil
		}
	}
	return nil
}

// beginTurn enforces the single-turn-at-a-time invariant.
func (c *Conversation) beginTurn() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return fmt.Errorf("conversation busy: a turn is in flight")
	}
	c.busy = true
	return nil
}

func (c *Conversation) endTurn() {
	c.mu.Lock()
	c.busy = false
	c.mu.Unlock()
}
