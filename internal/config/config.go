package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrInvalidConfig is returned when a setting is present but unusable
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	DefaultSource         = "./search-index.json"
	DefaultTimeout        = 10
	DefaultLimit          = 10
	DefaultThreshold      = 0.3
	DefaultDistance       = 100
	DefaultMinMatchLength = 2
	DefaultSnippetRadius  = 75
	DefaultDebounceMS     = 200
	DefaultRecent         = 5
)

// Config holds the application configuration
type Config struct {
	Index  IndexConfig  `mapstructure:"index" yaml:"index"`
	Search SearchConfig `mapstructure:"search" yaml:"search"`
	UI     UIConfig     `mapstructure:"ui" yaml:"ui"`
	Site   SiteConfig   `mapstructure:"site" yaml:"site"`
}

// IndexConfig describes where the search index comes from
type IndexConfig struct {
	Source        string `mapstructure:"source" yaml:"source"`
	Timeout       int    `mapstructure:"timeout" yaml:"timeout"` // seconds
	Watch         bool   `mapstructure:"watch" yaml:"watch"`
	StripMarkdown bool   `mapstructure:"strip_markdown" yaml:"strip_markdown"`
}

// SearchConfig holds matcher tuning
type SearchConfig struct {
	Limit          int     `mapstructure:"limit" yaml:"limit"`
	Threshold      float64 `mapstructure:"threshold" yaml:"threshold"`
	Distance       int     `mapstructure:"distance" yaml:"distance"`
	MinMatchLength int     `mapstructure:"min_match_length" yaml:"min_match_length"`
	SnippetRadius  int     `mapstructure:"snippet_radius" yaml:"snippet_radius"`
}

// UIConfig holds interactive overlay settings
type UIConfig struct {
	DebounceMS int `mapstructure:"debounce_ms" yaml:"debounce_ms"`
	Recent     int `mapstructure:"recent" yaml:"recent"`
}

// SiteConfig describes the site the index belongs to
type SiteConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// Load reads configuration from configFile (or the default locations when
// empty), SITEFIND_* environment variables and built-in defaults.
// A missing default config file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("SITEFIND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		v.SetConfigFile(expandPath(configFile))
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Index: IndexConfig{
			Source:  DefaultSource,
			Timeout: DefaultTimeout,
		},
		Search: SearchConfig{
			Limit:          DefaultLimit,
			Threshold:      DefaultThreshold,
			Distance:       DefaultDistance,
			MinMatchLength: DefaultMinMatchLength,
			SnippetRadius:  DefaultSnippetRadius,
		},
		UI: UIConfig{
			DebounceMS: DefaultDebounceMS,
			Recent:     DefaultRecent,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("index.source", d.Index.Source)
	v.SetDefault("index.timeout", d.Index.Timeout)
	v.SetDefault("index.watch", d.Index.Watch)
	v.SetDefault("index.strip_markdown", d.Index.StripMarkdown)
	v.SetDefault("search.limit", d.Search.Limit)
	v.SetDefault("search.threshold", d.Search.Threshold)
	v.SetDefault("search.distance", d.Search.Distance)
	v.SetDefault("search.min_match_length", d.Search.MinMatchLength)
	v.SetDefault("search.snippet_radius", d.Search.SnippetRadius)
	v.SetDefault("ui.debounce_ms", d.UI.DebounceMS)
	v.SetDefault("ui.recent", d.UI.Recent)
	v.SetDefault("site.base_url", d.Site.BaseURL)
}

// normalize replaces out-of-range values with defaults and rejects
// values that cannot be repaired.
func (c *Config) normalize() error {
	c.Index.Source = strings.TrimSpace(c.Index.Source)
	if c.Index.Source == "" {
		c.Index.Source = DefaultSource
	}
	if !isRemote(c.Index.Source) {
		c.Index.Source = expandPath(c.Index.Source)
	}
	if c.Index.Timeout <= 0 {
		c.Index.Timeout = DefaultTimeout
	}

	if c.Search.Limit <= 0 {
		c.Search.Limit = DefaultLimit
	}
	if c.Search.Threshold <= 0 || c.Search.Threshold > 1 {
		c.Search.Threshold = DefaultThreshold
	}
	if c.Search.Distance <= 0 {
		c.Search.Distance = DefaultDistance
	}
	if c.Search.MinMatchLength <= 0 {
		c.Search.MinMatchLength = DefaultMinMatchLength
	}
	if c.Search.SnippetRadius <= 0 {
		c.Search.SnippetRadius = DefaultSnippetRadius
	}

	if c.UI.DebounceMS < 0 {
		c.UI.DebounceMS = DefaultDebounceMS
	}
	if c.UI.Recent <= 0 {
		c.UI.Recent = DefaultRecent
	}

	if c.Site.BaseURL != "" {
		u, err := url.Parse(c.Site.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: site.base_url %q is not an absolute URL", ErrInvalidConfig, c.Site.BaseURL)
		}
	}
	return nil
}

// GetTimeout returns the index load timeout as time.Duration
func (c *IndexConfig) GetTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// GetDebounce returns the query debounce as time.Duration
func (c *UIConfig) GetDebounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Resolve turns a document URL into an absolute one using BaseURL.
// Absolute URLs and an empty BaseURL leave the link unchanged.
func (c *SiteConfig) Resolve(link string) string {
	if c.BaseURL == "" || link == "" {
		return link
	}
	ref, err := url.Parse(link)
	if err != nil || ref.IsAbs() {
		return link
	}
	base, err := url.Parse(c.BaseURL)
	if err != nil {
		return link
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return base.ResolveReference(&url.URL{
		Path:     strings.TrimPrefix(ref.Path, "/"),
		RawQuery: ref.RawQuery,
		Fragment: ref.Fragment,
	}).String()
}

func isRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// expandPath expands ~ to home directory in paths
func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		home := os.Getenv("HOME")
		if len(path) == 1 {
			return home
		}
		return filepath.Join(home, path[1:])
	}
	return path
}

// findConfigFile returns the first existing default config path, or ""
func findConfigFile() string {
	candidates := []string{
		filepath.Join(ConfigDir(), "config.yaml"),
		"sitefind.yaml",
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ConfigDir returns ~/.config/sitefind
func ConfigDir() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "sitefind")
}

// EnsureConfigDir ensures the config directory exists
func EnsureConfigDir() error {
	return os.MkdirAll(ConfigDir(), 0755)
}

// ExampleConfigPath returns the path where the example config should be created
func ExampleConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml.example")
}

// CreateExampleConfig writes an example configuration file and returns its path
func CreateExampleConfig() (string, error) {
	if err := EnsureConfigDir(); err != nil {
		return "", err
	}

	path := ExampleConfigPath()
	if err := os.WriteFile(path, []byte(exampleConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}

const exampleConfig = `# sitefind configuration
# Place this file at ~/.config/sitefind/config.yaml

index:
  # Local path (.json, .json.gz, .json.zst) or http(s) URL of the search index
  source: "./search-index.json"

  # Seconds to wait for the index before giving up
  timeout: 10

  # Reload when a local index file changes
  watch: false

  # Treat document content as Markdown and search its plain text
  strip_markdown: false

search:
  limit: 10
  # 0 is an exact match, 1 matches anything
  threshold: 0.3
  distance: 100
  min_match_length: 2
  snippet_radius: 75

ui:
  debounce_ms: 200
  recent: 5

site:
  # Prefix for relative document URLs when opening them in a browser
  base_url: ""

# Environment variables can also be used:
# SITEFIND_INDEX_SOURCE=https://example.com/search-index.json
# SITEFIND_SEARCH_LIMIT=20
`
