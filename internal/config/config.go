package config

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"
)

// StoreConfig selects and configures the backing vector store.
type StoreConfig struct {
	Backend    string `yaml:"backend"` // "chromem" or "postgres"
	Path       string `yaml:"path"`
	Collection string `yaml:"collection"`
	InMemory   bool   `yaml:"in_memory"`
}

// DatabaseConfig holds Postgres connection details for the pgvector backend.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

// LLMConfig configures an embedding model endpoint.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // "ollama" or "openai"
	BaseURL   string `yaml:"base_url"`
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// AnswerConfig configures the OpenAI-compatible completion endpoint used by
// the ask command.
type AnswerConfig struct {
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// RAGConfig configures how text is split into chunks.
type RAGConfig struct {
	ChunkSize    int      `yaml:"chunk_size"`
	ChunkOverlap int      `yaml:"chunk_overlap"`
	Separators   []string `yaml:"separators"`
}

// FetchConfig configures the web page fetcher.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs"`
	UserAgent   string `yaml:"user_agent"`
}

type Config struct {
	Store     StoreConfig    `yaml:"store"`
	Database  DatabaseConfig `yaml:"database"`
	EmbedLLM  LLMConfig      `yaml:"embed_llm"`
	AnswerLLM AnswerConfig   `yaml:"answer_llm"`
	RAG       RAGConfig      `yaml:"rag"`
	Fetch     FetchConfig    `yaml:"fetch"`
}

// LoadConfig reads a yaml config from path. A missing file is not an error:
// the defaults are returned so the tool works out of the box.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func defaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Backend == "" {
		cfg.Store.Backend = "chromem"
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = "./chromemdb"
	}
	if cfg.Store.Collection == "" {
		cfg.Store.Collection = "web_content"
	}
	if cfg.EmbedLLM.Provider == "" {
		cfg.EmbedLLM.Provider = "ollama"
	}
	if cfg.EmbedLLM.BaseURL == "" {
		cfg.EmbedLLM.BaseURL = "http://localhost:11434"
	}
	if cfg.EmbedLLM.Model == "" {
		cfg.EmbedLLM.Model = "nomic-embed-text"
	}
	if cfg.AnswerLLM.BaseURL == "" {
		cfg.AnswerLLM.BaseURL = "https://openrouter.ai/api"
	}
	if cfg.AnswerLLM.Model == "" {
		cfg.AnswerLLM.Model = "meta-llama/llama-3.3-70b-instruct"
	}
	if cfg.AnswerLLM.APIKeyEnv == "" {
		cfg.AnswerLLM.APIKeyEnv = "OPENROUTER_API_KEY"
	}
	if cfg.AnswerLLM.TimeoutSecs == 0 {
		cfg.AnswerLLM.TimeoutSecs = 60
	}
	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.Fetch.TimeoutSecs == 0 {
		cfg.Fetch.TimeoutSecs = 30
	}
}
