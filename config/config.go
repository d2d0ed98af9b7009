package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the HR assistant.
type Config struct {
	General      GeneralConfig      `mapstructure:"general"`
	Server       ServerConfig       `mapstructure:"server"`
	LLM          LLMConfig          `mapstructure:"llm"`
	Corpus       CorpusConfig       `mapstructure:"corpus"`
	Chunking     ChunkingConfig     `mapstructure:"chunking"`
	Retrieval    RetrievalConfig    `mapstructure:"retrieval"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Compliance   ComplianceConfig   `mapstructure:"compliance"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Telemetry    TelemetryConfig    `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// ServerConfig contains HTTP server and auth settings.
type ServerConfig struct {
	Address   string `mapstructure:"address"`
	JWTSecret string `mapstructure:"jwt_secret"` // empty disables API auth
}

// LLMConfig describes the chat-completion and embedding backend.
// The API is assumed OpenAI-compatible; BaseURL lets local gateways serve it.
type LLMConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// CorpusConfig locates the policy document set.
type CorpusConfig struct {
	DocsDir  string   `mapstructure:"docs_dir"`
	Required []string `mapstructure:"required"`
}

// ChunkingConfig controls how policy documents are split for indexing.
type ChunkingConfig struct {
	ChunkSize    int `mapstructure:"chunk_size"`
	ChunkOverlap int `mapstructure:"chunk_overlap"`
}

// RetrievalConfig controls evidence retrieval.
type RetrievalConfig struct {
	TopK   int  `mapstructure:"top_k"`
	Hybrid bool `mapstructure:"hybrid"` // fuse BM25 with vector ranking
}

// ConversationConfig controls per-session history.
type ConversationConfig struct {
	Window int           `mapstructure:"window"` // max messages kept per session
	Store  string        `mapstructure:"store"`  // inmemory or redis
	TTL    time.Duration `mapstructure:"ttl"`
	Redis  RedisConfig   `mapstructure:"redis"`
}

// RedisConfig contains Redis connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ComplianceConfig toggles answer re-validation against retrieved context.
type ComplianceConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig contains the optional turn audit store.
type StorageConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig contains Postgres connection settings.
type PostgresConfig struct {
	URL      string `mapstructure:"url"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN builds a postgres connection string, preferring an explicit URL.
func (p PostgresConfig) DSN() (string, error) {
	if p.URL != "" {
		return p.URL, nil
	}
	if p.Host == "" || p.DBName == "" {
		return "", fmt.Errorf("postgres not configured (storage.postgres.host/dbname or url)")
	}
	port := p.Port
	if port == "" {
		port = "5432"
	}
	ssl := p.SSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", p.User, p.Password, p.Host, port, p.DBName, ssl), nil
}

// Configured reports whether the audit store should be opened at all.
func (p PostgresConfig) Configured() bool {
	return p.URL != "" || p.Host != "" || p.DBName != ""
}

// TelemetryConfig contains metrics settings.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from file. A missing or unreadable config file is
// fatal: the assistant must not start on a partial configuration.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("json")

	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("server.address", ":10010")
	viper.SetDefault("llm.base_url", "https://api.openai.com/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.embedding_model", "text-embedding-3-small")
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.max_tokens", 512)
	viper.SetDefault("llm.timeout", 30*time.Second)
	viper.SetDefault("corpus.docs_dir", "docs")
	viper.SetDefault("corpus.required", []string{
		"leave_policy.txt",
		"remote_work_policy.txt",
		"expense_policy.txt",
		"code_of_conduct.txt",
		"it_security_policy.txt",
	})
	viper.SetDefault("chunking.chunk_size", 800)
	viper.SetDefault("chunking.chunk_overlap", 150)
	viper.SetDefault("retrieval.top_k", 5)
	viper.SetDefault("retrieval.hybrid", false)
	viper.SetDefault("conversation.window", 10)
	viper.SetDefault("conversation.store", "inmemory")
	viper.SetDefault("conversation.ttl", 48*time.Hour)
	viper.SetDefault("compliance.enabled", true)
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("HRDESK")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}
	return &config
}
