package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/virtualta/internal"
	"github.com/starford/virtualta/internal/qaservice"
	pkgconfig "github.com/starford/virtualta/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadOptional(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Warn("config file not found, using defaults", slog.String("path", configPath))
	}
	return cfg, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	opts := []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}

	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}

	return nil
}

func ask(ctx context.Context, cmd *cli.Command) error {
	question := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if question == "" {
		return errors.New("usage: virtualta ask [--image file] <question>")
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var image string
	if path := cmd.String("image"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}
		image = base64.StdEncoding.EncodeToString(data)
	}

	logOut := io.Writer(io.Discard)
	if cmd.Bool("verbose") {
		logOut = os.Stderr
	}
	reply, err := internal.Ask(ctx, qaservice.Question{Text: question, Image: image},
		internal.WithConfig(cfg), internal.WithLogOutput(logOut))
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reply.Answer)
	}
	fmt.Println(reply.Answer.Answer)
	for _, l := range reply.Links {
		fmt.Printf("  - %s\n    %s\n", l.Text, l.URL)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, internal.WithConfig(cfg), internal.WithVersion(version))
}

func main() {
	cmd := &cli.Command{
		Name:    "virtualta",
		Usage:   "Virtual teaching assistant for the Tools in Data Science course",
		Version: version,
		Action:  run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "ask",
				Usage:     "Answer one question and exit",
				ArgsUsage: "<question>",
				Action:    ask,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "image", Usage: "Path to a screenshot to attach"},
					&cli.BoolFlag{Name: "json", Usage: "Print the API response body"},
					&cli.BoolFlag{Name: "verbose", Usage: "Log to stderr"},
				},
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
