package main

import (
	"os"
	"strings"

	"e5e/handler"
	"e5e/host"

	"github.com/spf13/cobra"
)

func newRootCmd(resolver handler.Resolver) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "e5e-example <entrypoint> <stdout-sentinel> <keepalive> <end-sentinel> | metadata",
		Short: "Example functions served through the e5e runtime",
		Long: `e5e-example is started by the e5e engine. It reads one JSON request per
line from stdin and writes the framed responses to stdout.

Registered entrypoints: ` + joinEntrypoints(resolver),
		// the sentinels commonly start with dashes
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		Args:               cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			os.Exit(host.Run(cmd.Context(), args, resolver))
			return nil
		},
	}
	return cmd
}

func joinEntrypoints(resolver handler.Resolver) string {
	r, ok := resolver.(*handler.Registry)
	if !ok {
		return "unknown"
	}
	return strings.Join(r.Entrypoints(), ", ")
}
