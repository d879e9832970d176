package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chat":
		chatCmd(os.Args[2:])
	case "servers":
		serversCmd(os.Args[2:])
	case "settings":
		settingsCmd(os.Args[2:])
	case "tools":
		toolsCmd(os.Args[2:])
	case "models":
		modelsCmd(os.Args[2:])
	case "version":
		versionCmd(os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  toolchat chat [--model <name>] [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat servers list [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat servers add --name <name> --url <url> [--description <text>] [--disabled] [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat servers remove --name <name> [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat servers enable|disable --name <name> [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat settings show [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat settings set [--endpoint <url>] [--model <name>] [--thinking <level>] [--streaming on|off] [--show-thoughts on|off] [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat tools [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat models [--config-dir <dir>]")
	fmt.Fprintln(os.Stderr, "  toolchat version [--config-dir <dir>]")
}

// fail prints to stderr and exits non-zero.
func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
