package chat

import (
	"testing"

	"github.com/pbelyaev/toolchat/internal/model"
)

func TestConversation_AppendAndSnapshot(t *testing.T) {
	conv := NewConversation()
	if conv.ID() == "" {
		t.Fatalf("conversation must carry an id")
	}
	if conv.Status() != StatusThoughts {
		t.Fatalf("initial status: %q", conv.Status())
	}

	conv.Append(model.User("hi"))
	conv.Append(model.Message{Role: model.RoleAssistant, Content: "hello"})

	snapshot := conv.Messages()
	if len(snapshot) != 2 || conv.Len() != 2 {
		t.Fatalf("log: %+v", snapshot)
	}

	// The snapshot is a copy; mutating it must not touch the log.
	snapshot[0].Content = "mutated"
	if conv.Messages()[0].Content != "hi" {
		t.Fatalf("snapshot aliased the log")
	}
}

func TestConversation_Clear(t *testing.T) {
	conv := NewConversation()
	conv.Append(model.User("hi"))
	conv.setStatus(StatusError)

	if err := conv.Clear(); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if conv.Len() != 0 || conv.Status() != StatusThoughts {
		t.Fatalf("clear did not reset: len=%d status=%q", conv.Len(), conv.Status())
	}
}

func TestConversation_ClearRefusedMidTurn(t *testing.T) {
	conv := NewConversation()
	conv.Append(model.User("hi"))
	if err := conv.beginTurn(); err != nil {
		t.Fatalf("beginTurn: %v", err)
	}
	defer conv.endTurn()

	if err := conv.Clear(); err == nil {
		t.Fatalf("Clear must refuse while a turn is in flight")
	}
	if conv.Len() != 1 {
		t.Fatalf("log must survive a refused clear")
	}
}

func TestConversation_SecondTurnRefusedWhileBusy(t *testing.T) {
	conv := NewConversation()
	if err := conv.beginTurn(); err != nil {
		t.Fatalf("beginTurn: %v", err)
	}
	if err := conv.beginTurn(); err == nil {
		t.Fatalf("overlapping turn must be refused")
	}
	conv.endTurn()
	if err := conv.beginTurn(); err != nil {
		t.Fatalf("beginTurn after endTurn: %v", err)
	}
}

func TestConversation_PendingToolCalls(t *testing.T) {
	calls := []model.ToolCall{
		{Function: model.ToolCallFunction{Name: "a"}},
		{Function: model.ToolCallFunction{Name: "b"}},
	}

	conv := NewConversation()
	conv.Append(model.User("hi"))
	if got := conv.PendingToolCalls(); got != nil {
		t.Fatalf("no assistant yet: %+v", got)
	}

	conv.Append(model.Message{Role: model.RoleAssistant, ToolCalls: calls})
	if got := conv.PendingToolCalls(); len(got) != 2 {
		t.Fatalf("both calls pending: %+v", got)
	}

	conv.Append(model.ToolResult("a", "done"))
	got := conv.PendingToolCalls()
	if len(got) != 1 || got[0].Function.Name != "b" {
		t.Fatalf("one call should remain: %+v", got)
	}

	conv.Append(model.ToolResult("b", "done"))
	if got := conv.PendingToolCalls(); got != nil {
		t.Fatalf("all answered: %+v", got)
	}

	conv.Append(model.Message{Role: model.RoleAssistant, Content: "summary"})
	if got := conv.PendingToolCalls(); got != nil {
		t.Fatalf("plain assistant message has nothing pending: %+v", got)
	}
}
