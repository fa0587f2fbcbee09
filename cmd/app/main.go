package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/wikishell/internal"
	"github.com/starford/wikishell/internal/wikifolder"
	pkgconfig "github.com/starford/wikishell/pkg/config"
)

// loadConfig reads the config file, keeping defaults when it does not
// exist, and applies command line overrides.
func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadWithDefaults(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if wiki := cmd.String("wiki"); wiki != "" {
		cfg.Wiki.Path = wiki
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func runBuild(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	out, err := internal.RunBuild(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	fmt.Println(out)
	return nil
}

func runInit(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if t := cmd.String("template"); t != "" {
		cfg.Wiki.Template = t
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	created, err := internal.RunInit(ctx, internal.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("init failed: %w", err)
	}
	if created {
		fmt.Printf("initialized %s (%s)\n", cfg.Wiki.Path, cfg.Wiki.Template)
	} else {
		fmt.Printf("%s is already a wiki\n", cfg.Wiki.Path)
	}
	return nil
}

func runMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.RunMCP(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:   "wikishell",
		Usage:  "Desktop shell that serves, switches and exports local wiki folders",
		Action: run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "wiki",
				Aliases: []string{"w"},
				Usage:   "Wiki folder (overrides wiki.path)",
				Sources: cli.EnvVars("WIKI_PATH"),
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Wiki server port (overrides app.http.port)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "build",
				Usage:  "Export the wiki to output/index.html and print its path",
				Action: runBuild,
			},
			{
				Name:  "init",
				Usage: "Bootstrap the wiki folder if it has no manifest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "template",
						Usage: "Scaffold template (" + wikifolder.TemplateServer + " or " + wikifolder.TemplateEmpty + ")",
					},
				},
				Action: runInit,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the wiki as an MCP server on stdio",
				Action: runMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
