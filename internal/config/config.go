package config

import (
	"errors"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// AzureConfig holds the Azure OpenAI deployment endpoints and key. The URLs
// are the full deployment URLs including api-version query parameters.
// All three required values may be absent at load time; the client validates
// them on first use.
type AzureConfig struct {
	EmbeddingURL string `yaml:"embedding_url" envconfig:"AZURE_OPENAI_EMBEDDING_URL"`
	ChatURL      string `yaml:"chat_url" envconfig:"AZURE_OPENAI_CHAT_URL"`
	APIKey       string `yaml:"api_key" envconfig:"AZURE_OPENAI_KEY"`
	TimeoutSecs  int    `yaml:"timeout_secs" envconfig:"AZURE_OPENAI_TIMEOUT_SECS"`
}

// RetrievalConfig configures similarity search.
type RetrievalConfig struct {
	TopK int `yaml:"top_k" envconfig:"TOP_K"`
}

// CompletionConfig configures chat completion generation parameters.
type CompletionConfig struct {
	MaxTokens   int     `yaml:"max_tokens" envconfig:"RAG_MAX_TOKENS"`
	Temperature float64 `yaml:"temperature" envconfig:"RAG_TEMPERATURE"`
}

// ServerConfig configures the HTTP service.
type ServerConfig struct {
	Addr    string `yaml:"addr" envconfig:"RAG_ADDR"`
	DataDir string `yaml:"data_dir" envconfig:"RAG_DATA_DIR"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Azure      AzureConfig      `yaml:"azure"`
	Retrieval  RetrievalConfig  `yaml:"retrieval"`
	Completion CompletionConfig `yaml:"completion"`
	Server     ServerConfig     `yaml:"server"`
	LogLevel   string           `yaml:"log_level" envconfig:"LOG_LEVEL"`
}

// Load reads a config from path, overlays environment variables, and applies
// defaults. A missing file is not an error; the environment alone is enough.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Azure.TimeoutSecs == 0 {
		cfg.Azure.TimeoutSecs = 30
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 3
	}
	if cfg.Completion.MaxTokens == 0 {
		cfg.Completion.MaxTokens = 512
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8001"
	}
	if cfg.Server.DataDir == "" {
		cfg.Server.DataDir = "data"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}
