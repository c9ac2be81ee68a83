// Package config provides configuration loading and management for curie.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Vocabulary source kinds
const (
	SourceNone   = "none"
	SourceDir    = "dir"
	SourceHTTP   = "http"
	SourceBadger = "badger"
	SourceNATS   = "nats"
)

// Config represents the complete curie configuration
type Config struct {
	Catalog    CatalogConfig    `yaml:"catalog"`
	Vocabulary VocabularyConfig `yaml:"vocabulary"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// CatalogConfig configures the prefix registry
type CatalogConfig struct {
	// Path is a YAML prefix catalog (empty = built-in catalog)
	Path string `yaml:"path"`
}

// VocabularyConfig configures where vocabulary documents come from
type VocabularyConfig struct {
	// Source is one of none, dir, http, badger or nats
	Source string `yaml:"source"`
	// Dir holds <prefix>.nq documents for the dir source
	Dir string `yaml:"dir"`
	// URL is the catalog base URL for the http source
	URL string `yaml:"url"`
	// BadgerPath is the database directory for the badger source and for import
	BadgerPath string `yaml:"badger_path"`
	// NATSURL is the server URL for the nats source
	NATSURL string `yaml:"nats_url"`
	// NATSBucket is the key-value bucket holding the documents
	NATSBucket string `yaml:"nats_bucket"`
	// FetchTimeout bounds a single vocabulary fetch
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	// Concurrency limits parallel fetches during a bulk load (0 = unlimited)
	Concurrency int `yaml:"concurrency"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Addr is the listen address (default: :8080)
	Addr string `yaml:"addr"`
	// MaxUploadBytes caps the body of a /data upload (default: 10 MiB)
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn or error
	Level string `yaml:"level"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path: "", // Built-in catalog
		},
		Vocabulary: VocabularyConfig{
			Source:       SourceDir,
			Dir:          "vocabularies",
			BadgerPath:   "curie.db",
			NATSURL:      "nats://127.0.0.1:4222",
			NATSBucket:   "vocabularies",
			FetchTimeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			MaxUploadBytes: 10 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	switch c.Vocabulary.Source {
	case SourceNone:
	case SourceDir:
		if c.Vocabulary.Dir == "" {
			return fmt.Errorf("vocabulary.dir is required for the dir source")
		}
	case SourceHTTP:
		if c.Vocabulary.URL == "" {
			return fmt.Errorf("vocabulary.url is required for the http source")
		}
	case SourceBadger:
		if c.Vocabulary.BadgerPath == "" {
			return fmt.Errorf("vocabulary.badger_path is required for the badger source")
		}
	case SourceNATS:
		if c.Vocabulary.NATSURL == "" || c.Vocabulary.NATSBucket == "" {
			return fmt.Errorf("vocabulary.nats_url and vocabulary.nats_bucket are required for the nats source")
		}
	default:
		return fmt.Errorf("unknown vocabulary.source %q", c.Vocabulary.Source)
	}
	if c.Vocabulary.FetchTimeout < 0 {
		return fmt.Errorf("vocabulary.fetch_timeout must not be negative")
	}
	if c.Vocabulary.Concurrency < 0 {
		return fmt.Errorf("vocabulary.concurrency must not be negative")
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.max_upload_bytes must not be negative")
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file on top of the defaults
func LoadFromFile(path string) (*Config, error) {
	overlay, err := readFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Merge(overlay)
	return config, nil
}

// readFile parses a YAML file without applying defaults, so that only the
// keys it sets are merged
func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Catalog.Path != "" {
		c.Catalog.Path = other.Catalog.Path
	}

	v := other.Vocabulary
	if v.Source != "" {
		c.Vocabulary.Source = v.Source
	}
	if v.Dir != "" {
		c.Vocabulary.Dir = v.Dir
	}
	if v.URL != "" {
		c.Vocabulary.URL = v.URL
	}
	if v.BadgerPath != "" {
		c.Vocabulary.BadgerPath = v.BadgerPath
	}
	if v.NATSURL != "" {
		c.Vocabulary.NATSURL = v.NATSURL
	}
	if v.NATSBucket != "" {
		c.Vocabulary.NATSBucket = v.NATSBucket
	}
	if v.FetchTimeout != 0 {
		c.Vocabulary.FetchTimeout = v.FetchTimeout
	}
	if v.Concurrency != 0 {
		c.Vocabulary.Concurrency = v.Concurrency
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.MaxUploadBytes != 0 {
		c.Server.MaxUploadBytes = other.Server.MaxUploadBytes
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
}
