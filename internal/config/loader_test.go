package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoaderPrecedence(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	work := filepath.Join(project, "a", "b")
	if err := os.MkdirAll(work, 0755); err != nil {
		t.Fatalf("failed to create work dir: %v", err)
	}

	writeFile(t, filepath.Join(home, UserConfigDir, UserConfigFile), `
vocabulary:
  source: http
  url: "https://user.example.org/"
server:
  addr: ":7000"
log:
  level: warn
`)
	writeFile(t, filepath.Join(project, ProjectConfigFile), `
vocabulary:
  url: "https://project.example.org/"
server:
  addr: ":7100"
`)
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	writeFile(t, explicit, `
server:
  addr: ":7200"
`)

	l := NewLoader(nil)
	l.homeDir = home
	l.workDir = work

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vocabulary.Source != SourceHTTP {
		t.Errorf("expected source from user config, got %s", cfg.Vocabulary.Source)
	}
	if cfg.Vocabulary.URL != "https://project.example.org/" {
		t.Errorf("expected url from project config, got %s", cfg.Vocabulary.URL)
	}
	if cfg.Server.Addr != ":7100" {
		t.Errorf("expected addr from project config, got %s", cfg.Server.Addr)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level from user config, got %s", cfg.Log.Level)
	}

	cfg, err = l.Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Addr != ":7200" {
		t.Errorf("expected addr from explicit config, got %s", cfg.Server.Addr)
	}

	if _, err := l.Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoaderDefaults(t *testing.T) {
	l := NewLoader(nil)
	l.homeDir = t.TempDir()
	l.workDir = t.TempDir()

	cfg, err := l.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Vocabulary.Source != SourceDir {
		t.Errorf("expected default source, got %s", cfg.Vocabulary.Source)
	}
}

func TestLoaderInvalidResult(t *testing.T) {
	l := NewLoader(nil)
	l.homeDir = t.TempDir()
	l.workDir = t.TempDir()

	explicit := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, explicit, "vocabulary:\n  source: ftp\n")

	if _, err := l.Load(explicit); err == nil {
		t.Error("expected validation error")
	}
}

func TestEnsureUserConfig(t *testing.T) {
	l := NewLoader(nil)
	l.homeDir = t.TempDir()

	path, err := l.EnsureUserConfig()
	if err != nil {
		t.Fatalf("EnsureUserConfig() error = %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config at %s: %v", path, err)
	}

	again, err := l.EnsureUserConfig()
	if err != nil || again != path {
		t.Errorf("second call = %q, %v", again, err)
	}
}
