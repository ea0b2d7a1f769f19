// Package main provides the flowsmith CLI for inspecting workflow definition
// files.
package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowsmith/flowsmith/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "flowsmith",
		Usage:                 "Inspect and validate workflow definition files",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			log.Setup(command.String("log-level"))

			return ctx, nil
		},
		Commands: []*cli.Command{
			ValidateCommand(),
			PathsCommand(),
			LayoutCommand(),
			TokensCommand(),
			TemplatesCommand(),
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		log.WithModule("cli").Error("Command failed", "error", err)
		os.Exit(1)
	}
}
