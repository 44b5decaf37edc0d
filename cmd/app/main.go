package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/perthro/internal"
	"github.com/starford/perthro/internal/envfmt"
	"github.com/starford/perthro/internal/extract"
	"github.com/starford/perthro/internal/storage"
	pkgconfig "github.com/starford/perthro/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runExtract(ctx context.Context, cmd *cli.Command) error {
	inputs := cmd.StringSlice("input")
	if len(inputs) == 0 {
		return fmt.Errorf("at least one --input is required")
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, err := storage.NewFS(cmd.String("output"))
	if err != nil {
		return fmt.Errorf("init output dir: %w", err)
	}

	ex := extract.New(store, logger)
	summaries, runErr := ex.Run(ctx, inputs, int(cmd.Int("jobs")))

	for _, sum := range summaries {
		if sum == nil {
			continue
		}
		fmt.Printf("%s: %d file(s) extracted\n", sum.Source, len(sum.Files))
		if cmd.Bool("summary") {
			if err := extract.RenderSummary(os.Stdout, sum.Files); err != nil {
				return err
			}
		}
		for _, warn := range sum.Warnings {
			fmt.Fprintf(os.Stderr, "warning: %s: %s\n", sum.Source, warn)
		}
	}

	if runErr != nil {
		return fmt.Errorf("extraction incomplete: %w", runErr)
	}
	return nil
}

func runTags(_ context.Context, cmd *cli.Command) error {
	data, err := os.ReadFile(cmd.String("input"))
	if err != nil {
		return fmt.Errorf("read archive: %w", err)
	}
	tags := envfmt.AllTags(data)
	if len(tags) == 0 {
		fmt.Println("no tags found")
		return nil
	}
	fmt.Println(strings.Join(tags, "\n"))
	return nil
}

func runServe(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp run error: %w", err)
	}
	return nil
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("APP_CONFIG_FILE"),
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "perthro",
		Usage: "Recover files from tag-delimited binary .env archives",
		Commands: []*cli.Command{
			{
				Name:   "extract",
				Usage:  "Extract one or more archives into an output directory",
				Action: runExtract,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:    "input",
						Aliases: []string{"i"},
						Usage:   "Archive file to extract (repeatable)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
						Value:   "final_output",
					},
					&cli.BoolFlag{
						Name:  "summary",
						Usage: "Print a table of extracted files",
					},
					&cli.IntFlag{
						Name:  "jobs",
						Usage: "Number of archives to extract in parallel",
						Value: 4,
					},
				},
			},
			{
				Name:   "tags",
				Usage:  "List every tag-like token found in an archive",
				Action: runTags,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Archive file to scan",
						Required: true,
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Watch an intake directory and serve the catalog over HTTP",
				Action: runServe,
				Flags:  []cli.Flag{configFlag()},
			},
			{
				Name:   "mcp",
				Usage:  "Serve catalog tools over the Model Context Protocol on stdio",
				Action: runMCP,
				Flags:  []cli.Flag{configFlag()},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
