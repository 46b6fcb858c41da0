package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type LLMConfig struct {
	Provider       string `toml:"provider"`
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
}

type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

type GraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type PipelineConfig struct {
	// DuplicateThreshold is the high-confidence similarity score above which
	// (strictly greater than) a candidate is rejected as a duplicate.
	DuplicateThreshold float64 `toml:"duplicate_threshold"`
	MaxCandidates      int     `toml:"max_candidates"`
	SearchTopK         int     `toml:"search_top_k"`
	SearchIndex        string  `toml:"search_index"`
	// DecomposeBaseURL is where the cascade fires its post-success trigger.
	DecomposeBaseURL string `toml:"decompose_base_url"`
}

type PromptsConfig struct {
	Ideas string `toml:"ideas"`
}

type Config struct {
	LLM      LLMConfig      `toml:"llm"`
	Mongo    MongoConfig    `toml:"mongo"`
	Graph    GraphConfig    `toml:"graph"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Prompts  PromptsConfig  `toml:"prompts"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyEnv() {
	override(&c.LLM.Provider, "LLM_PROVIDER")
	override(&c.LLM.Model, "LLM_MODEL")
	override(&c.LLM.EmbeddingModel, "LLM_EMBEDDING_MODEL")
	override(&c.LLM.APIKey, "LLM_API_KEY")
	override(&c.LLM.BaseURL, "LLM_BASE_URL")
	override(&c.Mongo.URI, "MONGO_URI")
	override(&c.Mongo.Database, "MONGO_DATABASE")
	override(&c.Graph.URI, "GRAPH_URI")
	override(&c.Graph.User, "GRAPH_USER")
	override(&c.Graph.Password, "GRAPH_PASSWORD")
	override(&c.Pipeline.DecomposeBaseURL, "DECOMPOSE_BASE_URL")

	if v := os.Getenv("DUPLICATE_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Pipeline.DuplicateThreshold = f
		}
	}
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
		c.LLM.BaseURL = "http://localhost:11434"
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = "mongodb://localhost:27017"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "cascade"
	}
	if c.Graph.URI == "" {
		c.Graph.URI = "bolt://localhost:7687"
	}
	if c.Pipeline.DuplicateThreshold == 0 {
		c.Pipeline.DuplicateThreshold = 0.85
	}
	if c.Pipeline.MaxCandidates == 0 {
		c.Pipeline.MaxCandidates = 8
	}
	if c.Pipeline.SearchTopK == 0 {
		c.Pipeline.SearchTopK = 5
	}
	if c.Pipeline.SearchIndex == "" {
		c.Pipeline.SearchIndex = "content_embeddings"
	}
	if c.Pipeline.DecomposeBaseURL == "" {
		c.Pipeline.DecomposeBaseURL = "http://localhost:8080"
	}
}

func override(target *string, env string) {
	if v := os.Getenv(env); v != "" {
		*target = v
	}
}
