package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/energuide/ai"
	"github.com/poiesic/energuide/intent"
	"gopkg.in/yaml.v3"
)

const (
	// FileName is the config file looked up in the working directory.
	FileName = "energuide.yaml"

	defaultAPIKeyEnv = "OPENAI_API_KEY"
)

// DatabaseConfig locates the document index.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AIConfig selects the embedding and generation services.
type AIConfig struct {
	EmbeddingHost   string  `yaml:"embedding_host"`
	EmbeddingModel  string  `yaml:"embedding_model"`
	GenerationHost  string  `yaml:"generation_host"`
	GenerationModel string  `yaml:"generation_model"`
	APIKeyEnv       string  `yaml:"api_key_env"`
	Temperature     float64 `yaml:"temperature"`
}

// RetrievalConfig tunes document lookup.
type RetrievalConfig struct {
	TopK              int     `yaml:"top_k"`
	MinSimilarity     float64 `yaml:"min_similarity"`
	MinFragmentLength int     `yaml:"min_fragment_length"`
}

// ConversationConfig bounds per-conversation memory.
type ConversationConfig struct {
	Window int `yaml:"window"`
}

// IngestionConfig tunes FAQ ingestion.
type IngestionConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	BatchSize    int `yaml:"batch_size"`
	PoolSize     int `yaml:"pool_size"`
}

// ReindexConfig tunes vector rebuilds.
type ReindexConfig struct {
	BatchSize  int           `yaml:"batch_size"`
	MaxRetries int           `yaml:"max_retries"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Workers    int           `yaml:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	SessionTTL      time.Duration `yaml:"session_ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// LogConfig configures logging. An empty File logs to the console only.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// IntentRule adds keywords to an intent or overrides keyword weights.
type IntentRule struct {
	Keywords []string           `yaml:"keywords,omitempty"`
	Weights  map[string]float64 `yaml:"weights,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Database     DatabaseConfig        `yaml:"database"`
	AI           AIConfig              `yaml:"ai"`
	Retrieval    RetrievalConfig       `yaml:"retrieval"`
	Conversation ConversationConfig    `yaml:"conversation"`
	Ingestion    IngestionConfig       `yaml:"ingestion"`
	Reindex      ReindexConfig         `yaml:"reindex"`
	Server       ServerConfig          `yaml:"server"`
	Log          LogConfig             `yaml:"log"`
	Intents      map[string]IntentRule `yaml:"intents,omitempty"`
}

// Load reads a config from path. A missing file yields the defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./energuide.yaml first, then ~/.config/energuide/config.yaml.
// If neither exists, it writes defaults to the user path and returns them
// along with the path used.
func LoadDefault() (*AppConfig, string, error) {
	if _, err := os.Stat(FileName); err == nil {
		cfg, err := Load(FileName)
		return cfg, FileName, err
	}

	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}

	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "energuide", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/index"
	}

	aiDefaults := ai.DefaultConfig()
	if cfg.AI.EmbeddingHost == "" {
		cfg.AI.EmbeddingHost = aiDefaults.EmbeddingHost
	}
	if cfg.AI.GenerationHost == "" {
		cfg.AI.GenerationHost = cfg.AI.EmbeddingHost
	}
	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = aiDefaults.EmbeddingModel
	}
	if cfg.AI.GenerationModel == "" {
		cfg.AI.GenerationModel = aiDefaults.GenerationModel
	}
	if cfg.AI.APIKeyEnv == "" {
		cfg.AI.APIKeyEnv = defaultAPIKeyEnv
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = aiDefaults.Temperature
	}

	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.MinSimilarity == 0 {
		cfg.Retrieval.MinSimilarity = 0.3
	}
	if cfg.Retrieval.MinFragmentLength == 0 {
		cfg.Retrieval.MinFragmentLength = 10
	}

	if cfg.Conversation.Window == 0 {
		cfg.Conversation.Window = 10
	}

	if cfg.Ingestion.ChunkSize == 0 {
		cfg.Ingestion.ChunkSize = 500
	}
	if cfg.Ingestion.ChunkOverlap == 0 {
		cfg.Ingestion.ChunkOverlap = 100
	}
	if cfg.Ingestion.BatchSize == 0 {
		cfg.Ingestion.BatchSize = 32
	}

	if cfg.Reindex.BatchSize == 0 {
		cfg.Reindex.BatchSize = 100
	}
	if cfg.Reindex.MaxRetries == 0 {
		cfg.Reindex.MaxRetries = 3
	}
	if cfg.Reindex.RetryDelay == 0 {
		cfg.Reindex.RetryDelay = time.Second
	}
	if cfg.Reindex.Workers == 0 {
		cfg.Reindex.Workers = 1
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = time.Hour
	}
	if cfg.Server.CleanupInterval == 0 {
		cfg.Server.CleanupInterval = 10 * time.Minute
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{"*"}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// AIConfig builds the AI service configuration, reading the API key from
// the configured environment variable.
func (c *AppConfig) AIConfig() *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.EmbeddingHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithGenerationHost(c.AI.GenerationHost),
		ai.WithGenerationModel(c.AI.GenerationModel),
		ai.WithAPIKey(os.Getenv(c.AI.APIKeyEnv)),
		ai.WithTemperature(c.AI.Temperature),
	)
}

// IntentRules converts the intents section into classifier rules keyed by
// intent label, e.g. "policy_info".
func (c *AppConfig) IntentRules() (intent.Rules, error) {
	if len(c.Intents) == 0 {
		return nil, nil
	}

	rules := make(intent.Rules, len(c.Intents))
	for label, rule := range c.Intents {
		i, err := intent.ParseIntent(label)
		if err != nil {
			return nil, fmt.Errorf("%w: intents.%s: %w", ErrInvalidConfig, label, err)
		}
		rules[i] = intent.Rule{Keywords: rule.Keywords, Weights: rule.Weights}
	}
	return rules, nil
}
