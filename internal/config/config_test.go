package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Vocabulary.Source != SourceDir {
		t.Errorf("expected default source dir, got %s", cfg.Vocabulary.Source)
	}
	if cfg.Vocabulary.FetchTimeout != 30*time.Second {
		t.Errorf("expected default fetch timeout 30s, got %s", cfg.Vocabulary.FetchTimeout)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
	if cfg.Server.MaxUploadBytes != 10<<20 {
		t.Errorf("expected default upload limit 10 MiB, got %d", cfg.Server.MaxUploadBytes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "no source",
			modify:  func(c *Config) { c.Vocabulary.Source = SourceNone },
			wantErr: false,
		},
		{
			name:    "unknown source",
			modify:  func(c *Config) { c.Vocabulary.Source = "ftp" },
			wantErr: true,
		},
		{
			name:    "http source without url",
			modify:  func(c *Config) { c.Vocabulary.Source = SourceHTTP },
			wantErr: true,
		},
		{
			name: "http source with url",
			modify: func(c *Config) {
				c.Vocabulary.Source = SourceHTTP
				c.Vocabulary.URL = "https://vocab.example.org/"
			},
			wantErr: false,
		},
		{
			name: "nats source without bucket",
			modify: func(c *Config) {
				c.Vocabulary.Source = SourceNATS
				c.Vocabulary.NATSBucket = ""
			},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			modify:  func(c *Config) { c.Vocabulary.FetchTimeout = -time.Second },
			wantErr: true,
		},
		{
			name:    "negative upload limit",
			modify:  func(c *Config) { c.Server.MaxUploadBytes = -1 },
			wantErr: true,
		},
		{
			name:    "bad log level",
			modify:  func(c *Config) { c.Log.Level = "verbose" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
vocabulary:
  source: http
  url: "https://vocab.example.org/"
  fetch_timeout: 5s
log:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Vocabulary.Source != SourceHTTP {
		t.Errorf("expected source http, got %s", cfg.Vocabulary.Source)
	}
	if cfg.Vocabulary.URL != "https://vocab.example.org/" {
		t.Errorf("expected url https://vocab.example.org/, got %s", cfg.Vocabulary.URL)
	}
	if cfg.Vocabulary.FetchTimeout != 5*time.Second {
		t.Errorf("expected fetch timeout 5s, got %s", cfg.Vocabulary.FetchTimeout)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	// untouched keys keep their defaults
	if cfg.Server.Addr != ":8080" {
		t.Errorf("expected default addr :8080, got %s", cfg.Server.Addr)
	}
}

func TestLoadFromFile_Invalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("vocabulary: [not, a, map]\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected read error")
	}
}

func TestSaveToFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Vocabulary.Source = SourceBadger
	cfg.Vocabulary.BadgerPath = "/var/lib/curie"

	if err := cfg.SaveToFile(configPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	loaded, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if loaded.Vocabulary.Source != SourceBadger {
		t.Errorf("expected source badger, got %s", loaded.Vocabulary.Source)
	}
	if loaded.Vocabulary.BadgerPath != "/var/lib/curie" {
		t.Errorf("expected badger path /var/lib/curie, got %s", loaded.Vocabulary.BadgerPath)
	}
	if loaded.Vocabulary.FetchTimeout != 30*time.Second {
		t.Errorf("expected fetch timeout 30s, got %s", loaded.Vocabulary.FetchTimeout)
	}
}

func TestConfigMerge(t *testing.T) {
	base := DefaultConfig()
	other := &Config{
		Catalog:    CatalogConfig{Path: "prefixes.yaml"},
		Vocabulary: VocabularyConfig{Dir: "/srv/vocab", Concurrency: 4},
		Server:     ServerConfig{Addr: "127.0.0.1:9000"},
	}

	base.Merge(other)

	if base.Catalog.Path != "prefixes.yaml" {
		t.Errorf("expected catalog path prefixes.yaml, got %s", base.Catalog.Path)
	}
	if base.Vocabulary.Dir != "/srv/vocab" {
		t.Errorf("expected dir /srv/vocab, got %s", base.Vocabulary.Dir)
	}
	if base.Vocabulary.Concurrency != 4 {
		t.Errorf("expected concurrency 4, got %d", base.Vocabulary.Concurrency)
	}
	if base.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("expected addr 127.0.0.1:9000, got %s", base.Server.Addr)
	}
	// zero values do not override
	if base.Vocabulary.Source != SourceDir {
		t.Errorf("expected source to remain dir, got %s", base.Vocabulary.Source)
	}
	if base.Log.Level != "info" {
		t.Errorf("expected log level to remain info, got %s", base.Log.Level)
	}

	base.Merge(nil)
}
