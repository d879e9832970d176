package main

import (
	"fmt"
	"os"

	"github.com/pbelyaev/toolchat/internal/toolserver"
)

func main() {
	addr := ":3000"
	var manifestPath string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--addr":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--addr requires a value")
				os.Exit(1)
			}
			addr = args[i]
		case "--manifest":
			i++
			if i >= len(args) {
				fmt.Fprintln(os.Stderr, "--manifest requires a value")
				os.Exit(1)
			}
			manifestPath = args[i]
		default:
			fmt.Fprintln(os.Stderr, "usage: toolserver [--addr <addr>] [--manifest <tools.yaml>]")
			os.Exit(1)
		}
	}

	tools := toolserver.BuiltinTools()
	if manifestPath != "" {
		extra, err := toolserver.LoadManifest(manifestPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		tools = append(tools, extra...)
	}

	srv := toolserver.New(toolserver.Config{Addr: addr, Tools: tools})
	if err := srv.ListenAndServe(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
