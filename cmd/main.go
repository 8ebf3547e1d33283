package main

import (
	"context"
	"fmt"
	"os"

	"brainbuddy/focusws/cmd/serve"
	"brainbuddy/focusws/cmd/shared"
	"brainbuddy/focusws/cmd/token"
	"brainbuddy/focusws/cmd/version"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "[!] Error: %s\n", err)
		os.Exit(1)
	}
}

// newCommand builds the root command. Without a subcommand it serves, so
// the bare binary answers on port 9001.
func newCommand() *cli.Command {
	return &cli.Command{
		Name:   "focusws",
		Usage:  "Hello server with a realtime focus tracking WebSocket endpoint",
		Action: serve.Action,
		Flags:  shared.GetServeFlags(),
		Commands: []*cli.Command{
			serve.GetCommand(),
			token.GetCommand(),
			version.GetCommand(),
		},
	}
}
