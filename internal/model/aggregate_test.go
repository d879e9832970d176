package model

import (
	"reflect"
	"testing"
)

func TestAggregate_FoldConcatenatesFragments(t *testing.T) {
	events := []ChatResponse{
		{Message: Message{Content: "The answer"}},
		{Message: Message{Content: " is 42.", Thinking: "arith"}},
		{Message: Message{Thinking: "metic"}},
		{Done: true, DoneReason: "stop"},
	}
	var agg Aggregate
	for _, event := range events {
		agg = agg.Fold(event)
	}
	if agg.Content != "The answer is 42." {
		t.Fatalf("content: %q", agg.Content)
	}
	if agg.Thinking != "arithmetic" {
		t.Fatalf("thinking: %q", agg.Thinking)
	}
	if !agg.Done || agg.DoneReason != "stop" {
		t.Fatalf("terminal: %+v", agg)
	}
}

func TestAggregate_LastToolCallListWins(t *testing.T) {
	first := []ToolCall{{Function: ToolCallFunction{Name: "one"}}}
	second := []ToolCall{
		{Function: ToolCallFunction{Name: "two"}},
		{Function: ToolCallFunction{Name: "three"}},
	}
	var agg Aggregate
	agg = agg.Fold(ChatResponse{Message: Message{ToolCalls: first}})
	agg = agg.Fold(ChatResponse{Message: Message{}}) // empty list must not clear
	agg = agg.Fold(ChatResponse{Message: Message{ToolCalls: second}})
	if !reflect.DeepEqual(agg.ToolCalls, second) {
		t.Fatalf("tool calls: %+v", agg.ToolCalls)
	}
}

func TestAggregate_FoldIsPure(t *testing.T) {
	base := Aggregate{Content: "a"}
	_ = base.Fold(ChatResponse{Message: Message{Content: "b"}})
	if base.Content != "a" {
		t.Fatalf("receiver mutated: %+v", base)
	}
}

func TestAggregate_Message(t *testing.T) {
	agg := Aggregate{
		Content:   "hi",
		Thinking:  "hm",
		ToolCalls: []ToolCall{{Function: ToolCallFunction{Name: "echo"}}},
	}
	msg := agg.Message()
	if msg.Role != RoleAssistant {
		t.Fatalf("role: %q", msg.Role)
	}
	if msg.Content != "hi" || msg.Thinking != "hm" || len(msg.ToolCalls) != 1 {
		t.Fatalf("message: %+v", msg)
	}
}
