package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pbelyaev/toolchat/internal/chat"
	"github.com/pbelyaev/toolchat/internal/model"
)

// consoleSink renders turn progress to the terminal. Content and thinking
// fragments stream as they arrive; tool results print as indented blocks.
type consoleSink struct {
	out        io.Writer
	showStatus bool

	streamedContent bool
	inThinking      bool
}

func (s *consoleSink) Status(status chat.Status) {
	if s.showStatus {
		fmt.Fprintf(s.out, "[%s]\n", status)
	}
}

func (s *consoleSink) ContentDelta(delta string) {
	s.closeThinking()
	s.streamedContent = true
	fmt.Fprint(s.out, delta)
}

func (s *consoleSink) ThinkingDelta(delta string) {
	if !s.inThinking {
		s.inThinking = true
		fmt.Fprint(s.out, "(thinking) ")
	}
	fmt.Fprint(s.out, delta)
}

func (s *consoleSink) ToolCallsRequested(names []string) {
	s.finishLine()
	fmt.Fprintf(s.out, "tool calls requested: %s\n", strings.Join(names, ", "))
}

func (s *consoleSink) ToolResult(msg model.Message, isError bool) {
	s.finishLine()
	label := "result from"
	if isError {
		label = "error from"
	}
	fmt.Fprintf(s.out, "%s %s:\n", label, msg.Name)
	for _, line := range strings.Split(msg.Content, "\n") {
		fmt.Fprintf(s.out, "  %s\n", line)
	}
}

func (s *consoleSink) Warning(text string) {
	s.finishLine()
	fmt.Fprintf(s.out, "warning: %s\n", text)
}

func (s *consoleSink) closeThinking() {
	if s.inThinking {
		s.inThinking = false
		fmt.Fprintln(s.out)
	}
}

// finishLine terminates any in-flight streamed line before a block is printed.
func (s *consoleSink) finishLine() {
	s.closeThinking()
	if s.streamedContent {
		s.streamedContent = false
		fmt.Fprintln(s.out)
	}
}
