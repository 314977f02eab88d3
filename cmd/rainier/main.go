package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/SamWheatley/rainier/internal/config"
	"github.com/SamWheatley/rainier/internal/core"
	"github.com/SamWheatley/rainier/internal/i18n"
	debuglog "github.com/SamWheatley/rainier/internal/log"
	"github.com/SamWheatley/rainier/internal/plugins/ai"
	"github.com/SamWheatley/rainier/internal/plugins/ai/anthropic"
	"github.com/SamWheatley/rainier/internal/plugins/ai/gemini"
	"github.com/SamWheatley/rainier/internal/plugins/ai/grok"
	"github.com/SamWheatley/rainier/internal/plugins/ai/ollama"
	"github.com/SamWheatley/rainier/internal/plugins/ai/openai"
	"github.com/SamWheatley/rainier/internal/plugins/ai/perplexity"
	"github.com/SamWheatley/rainier/internal/plugins/db/researchdb"
	"github.com/SamWheatley/rainier/internal/plugins/storage/lake"
	restapi "github.com/SamWheatley/rainier/internal/server"
)

type options struct {
	Config    string `short:"c" long:"config" description:"Path to YAML config file"`
	Addr      string `short:"a" long:"addr" description:"Listen address (overrides config)"`
	Verbosity int    `short:"v" long:"verbosity" description:"Debug verbosity 0-4"`
	Version   bool   `long:"version" description:"Print version and exit"`
}

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "rainier: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return nil
		}
		return err
	}
	if opts.Version {
		fmt.Println(version)
		return nil
	}

	// Missing .env is fine; deployments set real environment variables.
	_ = godotenv.Load()

	cfg, err := config.Load(opts.Config)
	if err != nil {
		return err
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}
	if opts.Verbosity > 0 {
		cfg.Verbosity = opts.Verbosity
	}
	debuglog.SetLevel(debuglog.LevelFromInt(cfg.Verbosity))

	if _, err := i18n.Init("en"); err != nil {
		return err
	}

	ctx := context.Background()

	registry, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	if len(registry.Names()) == 0 {
		return fmt.Errorf("no AI providers configured; set at least one API key")
	}
	debuglog.Log("providers: %v\n", registry.Names())

	var web core.WebSearcher
	if cfg.PerplexityKey != "" {
		web = perplexity.NewClient(cfg.PerplexityKey)
	}

	loader, err := lake.NewLoader(ctx, lake.Options{
		Region:    cfg.AWSRegion,
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Bucket:    cfg.Bucket,
	})
	if err != nil {
		return err
	}

	store, err := researchdb.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	orch := core.NewOrchestrator(registry, web)
	deps := restapi.Deps{
		Registry:     registry,
		Analyst:      core.NewAnalyst(registry, orch, store, loader, cfg.Bucket),
		Chatter:      core.NewChatter(registry, orch, store, loader, defaultModel(cfg, registry)),
		Store:        store,
		Lake:         loader,
		UploadPrefix: cfg.UploadPrefix,
		DefaultModel: defaultModel(cfg, registry),
	}

	debuglog.Log("listening on %s\n", cfg.Addr)
	return restapi.Serve(cfg.Addr, deps)
}

// buildRegistry registers every vendor whose credentials are present.
func buildRegistry(cfg *config.Config) (*ai.Registry, error) {
	registry := ai.NewRegistry()
	if cfg.OpenAIKey != "" {
		registry.Register(openai.NewClient(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		registry.Register(anthropic.NewClient(cfg.AnthropicKey))
	}
	if cfg.GrokKey != "" {
		registry.Register(grok.NewClient(cfg.GrokKey))
	}
	if cfg.GeminiKey != "" {
		registry.Register(gemini.NewClient(cfg.GeminiKey))
	}
	if cfg.OllamaHost != "" {
		client, err := ollama.NewClient(cfg.OllamaHost)
		if err != nil {
			return nil, fmt.Errorf("ollama host %s: %w", cfg.OllamaHost, err)
		}
		registry.Register(client)
	}
	return registry, nil
}

// defaultModel keeps the configured default only when that vendor actually
// registered; otherwise the first registered vendor serves.
func defaultModel(cfg *config.Config, registry *ai.Registry) string {
	if _, err := registry.Get(cfg.DefaultModel); err == nil {
		return cfg.DefaultModel
	}
	return registry.Names()[0]
}
