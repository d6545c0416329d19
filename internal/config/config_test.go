package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"
)

// isolate points HOME at an empty temp dir so no user config leaks in
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sitefind.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want %+v", cfg, want)
	}
}

func TestLoad_File(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
index:
  source: "https://example.com/search-index.json"
  timeout: 3
  watch: true
search:
  limit: 25
  threshold: 0.4
ui:
  debounce_ms: 0
site:
  base_url: "https://example.com/"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Index.Source != "https://example.com/search-index.json" {
		t.Errorf("Index.Source = %q", cfg.Index.Source)
	}
	if cfg.Index.GetTimeout() != 3*time.Second {
		t.Errorf("Index.GetTimeout() = %v, want 3s", cfg.Index.GetTimeout())
	}
	if !cfg.Index.Watch {
		t.Error("Index.Watch should be true")
	}
	if cfg.Search.Limit != 25 || cfg.Search.Threshold != 0.4 {
		t.Errorf("Search = %+v", cfg.Search)
	}
	if cfg.Search.Distance != DefaultDistance {
		t.Errorf("Search.Distance = %d, want default %d", cfg.Search.Distance, DefaultDistance)
	}
	if cfg.UI.GetDebounce() != 0 {
		t.Errorf("UI.GetDebounce() = %v, want 0", cfg.UI.GetDebounce())
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	isolate(t)

	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() should fail for a missing explicit config file")
	}
}

func TestLoad_Env(t *testing.T) {
	isolate(t)
	t.Setenv("SITEFIND_INDEX_SOURCE", "/srv/site/index.json.zst")
	t.Setenv("SITEFIND_SEARCH_LIMIT", "7")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Index.Source != "/srv/site/index.json.zst" {
		t.Errorf("Index.Source = %q", cfg.Index.Source)
	}
	if cfg.Search.Limit != 7 {
		t.Errorf("Search.Limit = %d, want 7", cfg.Search.Limit)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	isolate(t)
	path := writeConfig(t, `
index:
  source: "  "
  timeout: -1
search:
  limit: 0
  threshold: 3
  distance: -5
  min_match_length: 0
  snippet_radius: 0
ui:
  debounce_ms: -10
  recent: 0
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Default()
	if *cfg != *want {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, want)
	}
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	isolate(t)
	path := writeConfig(t, "site:\n  base_url: \"not a url\"\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		base string
		link string
		want string
	}{
		{"no base", "", "/posts/react/", "/posts/react/"},
		{"relative", "https://example.com", "/posts/react/", "https://example.com/posts/react/"},
		{"base with path", "https://example.com/blog/", "posts/react/", "https://example.com/blog/posts/react/"},
		{"fragment kept", "https://example.com", "/docs/#install", "https://example.com/docs/#install"},
		{"absolute link", "https://example.com", "https://other.dev/x", "https://other.dev/x"},
		{"empty link", "https://example.com", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := SiteConfig{BaseURL: tt.base}
			if got := site.Resolve(tt.link); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/test/home")

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"tilde alone", "~", "/test/home"},
		{"tilde with path", "~/sites/index.json", "/test/home/sites/index.json"},
		{"absolute path", "/absolute/path", "/absolute/path"},
		{"relative path", "relative/path", "relative/path"},
		{"empty path", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if runtime.GOOS == "windows" && tt.name == "tilde with path" {
				t.Skip("Skipping test on Windows: path separators differ")
			}
			if result := expandPath(tt.path); result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.path, result, tt.expected)
			}
		})
	}
}

func TestCreateExampleConfig(t *testing.T) {
	home := isolate(t)

	path, err := CreateExampleConfig()
	if err != nil {
		t.Fatalf("CreateExampleConfig() error = %v", err)
	}
	if path != filepath.Join(home, ".config", "sitefind", "config.yaml.example") {
		t.Errorf("path = %q", path)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("example config should load: %v", err)
	}
	if cfg.Index.Source != DefaultSource || cfg.Search.Limit != DefaultLimit {
		t.Errorf("example config = %+v", cfg)
	}
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := isolate(t)
	dir := filepath.Join(home, ".config", "sitefind")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("search:\n  limit: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Search.Limit != 3 {
		t.Errorf("Search.Limit = %d, want 3", cfg.Search.Limit)
	}
}
