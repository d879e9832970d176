package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/pbelyaev/toolchat/internal/chat"
	"github.com/pbelyaev/toolchat/internal/config"
	"github.com/pbelyaev/toolchat/internal/model"
	"github.com/pbelyaev/toolchat/internal/tools"
)

func chatCmd(args []string) {
	common := parseCommon(args)
	var modelOverride string
	verbose := false
	rest := common.rest
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--model":
			modelOverride = stringFlag(rest, &i, "--model")
		case "--verbose":
			verbose = true
		default:
			fail("unknown arg: %s", rest[i])
		}
	}

	store, settings, servers := loadAll(common)
	if modelOverride != "" {
		settings.Model = modelOverride
	}

	logger := log.New(io.Discard, "", 0)
	if verbose {
		logger = log.New(os.Stderr, "[toolchat] ", log.LstdFlags)
	}

	client := model.NewClient(settings.Endpoint)
	registry := tools.NewRegistry()
	invoker := tools.NewInvoker()
	sink := &consoleSink{out: os.Stdout, showStatus: verbose}
	orchestrator := chat.NewOrchestrator(client, registry, invoker, sink, chat.OrchestratorConfig{})
	orchestrator.SetLogger(logger)
	conversation := chat.NewConversation()

	discoverCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
	result := registry.Discover(discoverCtx, servers)
	cancel()
	fmt.Printf("discovered %d tools from %d servers\n", len(result.Bindings), len(servers))
	for _, errText := range result.Errors {
		fmt.Fprintf(os.Stderr, "discovery: %s\n", errText)
	}
	if version, err := client.Version(context.Background()); err == nil {
		fmt.Printf("backend version %s, model %s\n", version, settings.Model)
	} else {
		fmt.Printf("model %s (backend version unavailable)\n", settings.Model)
	}
	fmt.Println(`type a message, or /tools /models /clear /streaming /thoughts /thinking /quit`)

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			if handleSlashCommand(line, store, &settings, servers, registry, client, conversation) {
				return
			}
			continue
		}

		conversation.Append(model.User(line))
		err := orchestrator.RunTurn(context.Background(), conversation, settings)
		sink.finishLine()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if pending := conversation.PendingToolCalls(); len(pending) > 0 {
			fmt.Fprintf(os.Stderr, "turn ended with %d unresolved tool calls\n", len(pending))
		}
	}
}

// handleSlashCommand runs an in-REPL command. Returns true when the REPL
// should exit. Runtime setting changes are persisted immediately, matching
// the settings documents the other subcommands read.
func handleSlashCommand(line string, store *config.Store, settings *config.RuntimeSettings, servers []config.ToolServer, registry *tools.Registry, client *model.Client, conversation *chat.Conversation) bool {
	fields := strings.Fields(line)
	cmd := fields[0]
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/streaming", "/thoughts", "/thinking":
		if arg == "" {
			fmt.Fprintf(os.Stderr, "%s requires a value\n", cmd)
			return false
		}
		switch cmd {
		case "/streaming", "/thoughts":
			v, ok := onOff(arg)
			if !ok {
				fmt.Fprintf(os.Stderr, "%s expects on or off\n", cmd)
				return false
			}
			if cmd == "/streaming" {
				settings.Streaming = v
			} else {
				settings.ShowThoughts = v
			}
		case "/thinking":
			settings.ThinkingLevel = arg
		}
		if err := store.SaveSettings(*settings); err != nil {
			fmt.Fprintf(os.Stderr, "save settings: %v\n", err)
		} else {
			fmt.Println("settings updated")
		}
	case "/clear":
		if err := conversation.Clear(); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		} else {
			fmt.Println("conversation cleared")
		}
	case "/tools":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		result := registry.Discover(ctx, servers)
		cancel()
		for _, binding := range result.Bindings {
			fmt.Printf("  %s (%s)\n", binding.Name, binding.ServerName)
		}
		for _, errText := range result.Errors {
			fmt.Fprintf(os.Stderr, "  discovery: %s\n", errText)
		}
		if len(result.Bindings) == 0 {
			fmt.Println("  no tools discovered")
		}
	case "/models":
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		models, err := client.ListModels(ctx)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			break
		}
		for _, m := range models {
			fmt.Printf("  %s\n", m.Name)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %s\n", cmd)
	}
	return false
}
