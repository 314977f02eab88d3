// Package config builds the one explicit configuration object the process
// uses. Keys are read here, once, at startup; nothing else in the codebase
// touches the environment.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config carries every credential and tunable the orchestration layer needs.
type Config struct {
	Addr   string `yaml:"addr"`
	DBPath string `yaml:"db_path"`

	DefaultModel string `yaml:"default_model"`
	Verbosity    int    `yaml:"verbosity"`

	OpenAIKey     string `yaml:"openai_api_key"`
	AnthropicKey  string `yaml:"anthropic_api_key"`
	GrokKey       string `yaml:"grok_api_key"`
	GeminiKey     string `yaml:"gemini_api_key"`
	PerplexityKey string `yaml:"perplexity_api_key"`
	OllamaHost    string `yaml:"ollama_host"`

	AWSRegion    string `yaml:"aws_region"`
	AWSAccessKey string `yaml:"aws_access_key"`
	AWSSecretKey string `yaml:"aws_secret_key"`
	Bucket       string `yaml:"bucket"`
	UploadPrefix string `yaml:"upload_prefix"`
}

// Load reads an optional YAML file and overlays environment variables on
// top. Env always wins so deployments can override a checked-in file.
func Load(path string) (*Config, error) {
	cfg := &Config{
		Addr:         ":8080",
		DBPath:       "rainier.db",
		DefaultModel: "openai",
		AWSRegion:    "us-east-1",
		Bucket:       "cn-rainier-data-lake",
		UploadPrefix: "uploads/",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overlay(&cfg.Addr, "RAINIER_ADDR")
	overlay(&cfg.DBPath, "RAINIER_DB_PATH")
	overlay(&cfg.DefaultModel, "RAINIER_DEFAULT_MODEL")
	overlay(&cfg.OpenAIKey, "OPENAI_API_KEY")
	overlay(&cfg.AnthropicKey, "ANTHROPIC_API_KEY")
	overlay(&cfg.GrokKey, "XAI_API_KEY")
	overlay(&cfg.GeminiKey, "GEMINI_API_KEY")
	overlay(&cfg.PerplexityKey, "PERPLEXITY_API_KEY")
	overlay(&cfg.OllamaHost, "OLLAMA_HOST")
	overlay(&cfg.AWSRegion, "AWS_DEFAULT_REGION")
	overlay(&cfg.AWSAccessKey, "AWS_ACCESS_KEY_ID_RAINIER")
	overlay(&cfg.AWSSecretKey, "AWS_SECRET_ACCESS_KEY_RAINIER")
	overlay(&cfg.Bucket, "PARTNER_BUCKET")
	overlay(&cfg.UploadPrefix, "RAINIER_UPLOAD_PREFIX")

	return cfg, nil
}

func overlay(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}
