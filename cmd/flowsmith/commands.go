package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	cli "github.com/urfave/cli/v3"

	"github.com/flowsmith/flowsmith/pkg/layout"
	"github.com/flowsmith/flowsmith/pkg/lint"
	"github.com/flowsmith/flowsmith/pkg/models"
	"github.com/flowsmith/flowsmith/pkg/pathindex"
	"github.com/flowsmith/flowsmith/pkg/templates"
	"github.com/flowsmith/flowsmith/pkg/tokens"
)

func loadDefinition(path string) (*models.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading definition file: %w", err)
	}

	def, err := models.UnmarshalDefinition(data)
	if err != nil {
		return nil, fmt.Errorf("parsing definition file %s: %w", path, err)
	}

	return def, nil
}

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// ValidateCommand lints a definition file and exits non-zero when any
// error-level diagnostics are present.
func ValidateCommand() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Lint a workflow definition file",
		ArgsUsage: "<definition-file>",
		Action: func(ctx context.Context, command *cli.Command) error {
			def, err := loadDefinition(command.Args().First())
			if err != nil {
				return err
			}

			diagnostics := lint.Lint(def)
			if err := printJSON(diagnostics); err != nil {
				return err
			}

			if lint.HasErrors(diagnostics) {
				return fmt.Errorf("definition has %d diagnostics", len(diagnostics))
			}

			return nil
		},
	}
}

// PathsCommand prints the id-to-path index of a definition file.
func PathsCommand() *cli.Command {
	return &cli.Command{
		Name:      "paths",
		Usage:     "Print structural paths for every step in a definition file",
		ArgsUsage: "<definition-file>",
		Action: func(ctx context.Context, command *cli.Command) error {
			def, err := loadDefinition(command.Args().First())
			if err != nil {
				return err
			}

			return printJSON(pathindex.Build(def.Steps).IDToPath)
		},
	}
}

// LayoutCommand prints canvas positions for a definition file.
func LayoutCommand() *cli.Command {
	return &cli.Command{
		Name:      "layout",
		Usage:     "Print canvas positions for a definition file",
		ArgsUsage: "<definition-file>",
		Action: func(ctx context.Context, command *cli.Command) error {
			def, err := loadDefinition(command.Args().First())
			if err != nil {
				return err
			}

			return printJSON(layout.Compute(def))
		},
	}
}

// TokensCommand prints the tokens available at a step of a definition file.
func TokensCommand() *cli.Command {
	return &cli.Command{
		Name:      "tokens",
		Usage:     "Print tokens available for insertion at a step",
		ArgsUsage: "<definition-file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "step",
				Usage: "ID of the selected step",
			},
			&cli.StringSliceFlag{
				Name:  "payload-field",
				Usage: "Trigger payload field name (repeatable)",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			def, err := loadDefinition(command.Args().First())
			if err != nil {
				return err
			}

			resolved := tokens.Resolve(def, command.String("step"), command.StringSlice("payload-field"))

			return printJSON(resolved)
		},
	}
}

// TemplatesCommand searches the step and trigger template catalog.
func TemplatesCommand() *cli.Command {
	return &cli.Command{
		Name:  "templates",
		Usage: "Search the step and trigger template catalog",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "query",
				Usage: "Search query matched against names, labels and synonyms",
			},
			&cli.StringFlag{
				Name:  "category",
				Usage: "Restrict results to a category",
			},
			&cli.BoolFlag{
				Name:  "names-only",
				Usage: "Print template names instead of full entries",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			results := templates.Search(command.String("query"), command.String("category"))

			if command.Bool("names-only") {
				names := make([]string, 0, len(results))
				for _, tpl := range results {
					names = append(names, tpl.Name)
				}

				sort.Strings(names)

				return printJSON(names)
			}

			return printJSON(results)
		},
	}
}
