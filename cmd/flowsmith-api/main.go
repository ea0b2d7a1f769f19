package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/flowsmith/flowsmith/pkg/cmd"
	"github.com/flowsmith/flowsmith/pkg/log"
	"github.com/flowsmith/flowsmith/pkg/otelhelper"
)

const defaultPort = 9091

func main() {
	command := &cli.Command{
		Name:                  "flowsmith-api",
		Usage:                 "Author and validate branching workflow definitions",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Storage URL (postgres://…, redis://…, or a directory path)",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces for editor operations",
				Sources: cli.EnvVars("TRACING_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger := log.WithModule("api")
			logger.InfoContext(ctx, "Initializing Flowsmith API")

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			api := NewAPI(logger, persistence, nil)

			if command.Bool("tracing") {
				tracer, err := otelhelper.NewTracer(ctx, "flowsmith-api")
				if err != nil {
					return err
				}

				api.tracer = tracer
			}

			return api.Start(command.Int("port"))
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
