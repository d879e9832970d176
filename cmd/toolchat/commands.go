package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pbelyaev/toolchat/internal/config"
	"github.com/pbelyaev/toolchat/internal/model"
	"github.com/pbelyaev/toolchat/internal/tools"
)

// commonArgs are the flags shared by every subcommand.
type commonArgs struct {
	configDir string
	rest      []string
}

// parseCommon splits the shared flags out of args, leaving the remainder for
// the subcommand's own parsing.
func parseCommon(args []string) commonArgs {
	var out commonArgs
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config-dir":
			i++
			if i >= len(args) {
				fail("--config-dir requires a value")
			}
			out.configDir = args[i]
		default:
			out.rest = append(out.rest, args[i])
		}
	}
	return out
}

func openStore(common commonArgs) *config.Store {
	dir := common.configDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			fail("%v", err)
		}
	}
	return config.NewStore(dir)
}

func loadAll(common commonArgs) (*config.Store, config.RuntimeSettings, []config.ToolServer) {
	store := openStore(common)
	settings, err := store.LoadSettings()
	if err != nil {
		fail("load settings: %v", err)
	}
	servers, err := store.LoadServers()
	if err != nil {
		fail("load servers: %v", err)
	}
	return store, settings, servers
}

func stringFlag(args []string, i *int, name string) string {
	*i++
	if *i >= len(args) {
		fail("%s requires a value", name)
	}
	return args[*i]
}

func serversCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	sub := args[0]
	common := parseCommon(args[1:])

	var name, url, description string
	disabled := false
	rest := common.rest
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case "--name":
			name = stringFlag(rest, &i, "--name")
		case "--url":
			url = stringFlag(rest, &i, "--url")
		case "--description":
			description = stringFlag(rest, &i, "--description")
		case "--disabled":
			disabled = true
		default:
			fail("unknown arg: %s", rest[i])
		}
	}

	store := openStore(common)
	switch sub {
	case "list":
		servers, err := store.LoadServers()
		if err != nil {
			fail("load servers: %v", err)
		}
		printServers(servers)
	case "add":
		if name == "" || url == "" {
			fail("servers add requires --name and --url")
		}
		servers, err := store.AddServer(config.ToolServer{
			Name:        name,
			URL:         url,
			Description: description,
			Enabled:     !disabled,
		})
		if err != nil {
			fail("add server: %v", err)
		}
		printServers(servers)
	case "remove":
		if name == "" {
			fail("servers remove requires --name")
		}
		servers, err := store.RemoveServer(name)
		if err != nil {
			fail("remove server: %v", err)
		}
		printServers(servers)
	case "enable", "disable":
		if name == "" {
			fail("servers %s requires --name", sub)
		}
		servers, err := store.SetServerEnabled(name, sub == "enable")
		if err != nil {
			fail("update server: %v", err)
		}
		printServers(servers)
	default:
		usage()
		os.Exit(1)
	}
}

func printServers(servers []config.ToolServer) {
	for _, server := range servers {
		state := "enabled"
		if !server.Enabled {
			state = "disabled"
		}
		line := fmt.Sprintf("%s\t%s\t%s", server.Name, server.URL, state)
		if server.Description != "" {
			line += "\t" + server.Description
		}
		fmt.Println(line)
	}
}

func settingsCmd(args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(1)
	}
	sub := args[0]
	common := parseCommon(args[1:])
	store := openStore(common)
	settings, err := store.LoadSettings()
	if err != nil {
		fail("load settings: %v", err)
	}

	switch sub {
	case "show":
		fmt.Printf("endpoint:      %s\n", settings.Endpoint)
		fmt.Printf("model:         %s\n", settings.Model)
		fmt.Printf("thinking:      %s\n", describeThink(settings.ThinkArgument()))
		fmt.Printf("streaming:     %t\n", settings.Streaming)
		fmt.Printf("show thoughts: %t\n", settings.ShowThoughts)
	case "set":
		rest := common.rest
		for i := 0; i < len(rest); i++ {
			switch rest[i] {
			case "--endpoint":
				settings.Endpoint = stringFlag(rest, &i, "--endpoint")
			case "--model":
				settings.Model = stringFlag(rest, &i, "--model")
			case "--thinking":
				settings.ThinkingLevel = stringFlag(rest, &i, "--thinking")
			case "--streaming":
				settings.Streaming = parseOnOff(stringFlag(rest, &i, "--streaming"), "--streaming")
			case "--show-thoughts":
				settings.ShowThoughts = parseOnOff(stringFlag(rest, &i, "--show-thoughts"), "--show-thoughts")
			default:
				fail("unknown arg: %s", rest[i])
			}
		}
		if err := store.SaveSettings(settings); err != nil {
			fail("save settings: %v", err)
		}
		fmt.Println("settings updated")
	default:
		usage()
		os.Exit(1)
	}
}

func parseOnOff(v, flag string) bool {
	b, ok := onOff(v)
	if !ok {
		fail("%s expects on or off, got %q", flag, v)
	}
	return b
}

func onOff(v string) (value, ok bool) {
	switch strings.ToLower(v) {
	case "on", "true", "yes":
		return true, true
	case "off", "false", "no":
		return false, true
	default:
		return false, false
	}
}

func describeThink(arg any) string {
	switch x := arg.(type) {
	case nil:
		return "disabled"
	case bool:
		if x {
			return "enabled (auto)"
		}
		return "disabled"
	default:
		return fmt.Sprint(x)
	}
}

func toolsCmd(args []string) {
	common := parseCommon(args)
	_, _, servers := loadAll(common)

	registry := tools.NewRegistry()
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	result := registry.Discover(ctx, servers)

	if len(result.Bindings) == 0 && len(result.Errors) == 0 {
		fmt.Println("no enabled servers")
		return
	}
	for _, binding := range result.Bindings {
		fmt.Printf("%s\t%s %s\t(%s)\n", binding.Name, binding.Method, binding.Endpoint, binding.ServerName)
	}
	for _, errText := range result.Errors {
		fmt.Fprintf(os.Stderr, "discovery: %s\n", errText)
	}
}

func modelsCmd(args []string) {
	common := parseCommon(args)
	_, settings, _ := loadAll(common)

	client := model.NewClient(settings.Endpoint)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	models, err := client.ListModels(ctx)
	if err != nil {
		fail("%v", err)
	}
	for _, m := range models {
		line := m.Name
		if m.ParameterSize != "" || m.Family != "" {
			line += fmt.Sprintf("\t%s %s %s", m.Family, m.ParameterSize, m.QuantizationLevel)
		}
		fmt.Println(strings.TrimRight(line, " "))
	}
}

func versionCmd(args []string) {
	common := parseCommon(args)
	_, settings, _ := loadAll(common)

	client := model.NewClient(settings.Endpoint)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	version, err := client.Version(ctx)
	if err != nil {
		// The version probe is advisory: an unreachable backend is reported,
		// not fatal.
		fmt.Printf("backend at %s unreachable: %v\n", settings.Endpoint, err)
		return
	}
	fmt.Printf("backend at %s: version %s\n", settings.Endpoint, version)
}
