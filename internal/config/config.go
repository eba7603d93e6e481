package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything cinefind reads at startup.
type Config struct {
	APIBaseURL        string
	APIToken          string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	Debounce          time.Duration
	LogDir            string
	TrendingRefresh   time.Duration
	TrendingLimit     int
	Counter           CounterConfig
}

// CounterConfig selects the search counter backend.
type CounterConfig struct {
	Backend string
	DBPath  string
	URL     string
	Project string
	APIKey  string
}

// TokenEnv overrides api_token when set.
const TokenEnv = "TMDB_API_TOKEN"

const (
	defaultConfigPath        = "~/.config/cinefind/config.toml"
	defaultAPIBaseURL        = "https://api.themoviedb.org/3"
	defaultLogDir            = "~/.local/share/cinefind/logs"
	defaultCounterDB         = "~/.local/share/cinefind/searches.db"
	defaultCounterBackend    = "sqlite"
	defaultRequestTimeout    = 10 * time.Second
	defaultRequestsPerSecond = 20
	defaultDebounce          = 500 * time.Millisecond
	defaultTrendingRefresh   = 30 * time.Second
	defaultTrendingLimit     = 5
)

type rawConfig struct {
	APIBaseURL             string  `toml:"api_base_url"`
	APIToken               string  `toml:"api_token"`
	RequestTimeoutSeconds  int     `toml:"request_timeout_seconds"`
	RequestsPerSecond      float64 `toml:"requests_per_second"`
	DebounceMS             int     `toml:"debounce_ms"`
	LogDir                 string  `toml:"log_dir"`
	TrendingRefreshSeconds int     `toml:"trending_refresh_seconds"`
	TrendingLimit          int     `toml:"trending_limit"`
	Counter                struct {
		Backend string `toml:"backend"`
		DBPath  string `toml:"db_path"`
		URL     string `toml:"url"`
		Project string `toml:"project"`
		APIKey  string `toml:"api_key"`
	} `toml:"counter"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBaseURL:        defaultAPIBaseURL,
		RequestTimeout:    defaultRequestTimeout,
		RequestsPerSecond: defaultRequestsPerSecond,
		Debounce:          defaultDebounce,
		LogDir:            mustExpand(defaultLogDir),
		TrendingRefresh:   defaultTrendingRefresh,
		TrendingLimit:     defaultTrendingLimit,
		Counter: CounterConfig{
			Backend: defaultCounterBackend,
			DBPath:  mustExpand(defaultCounterDB),
		},
	}
}

// Load locates and parses the cinefind config, falling back to defaults when
// missing. The API token from the environment wins over the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBaseURL); v != "" {
		cfg.APIBaseURL = v
	}
	cfg.APIToken = strings.TrimSpace(raw.APIToken)
	if raw.RequestTimeoutSeconds > 0 {
		cfg.RequestTimeout = time.Duration(raw.RequestTimeoutSeconds) * time.Second
	}
	if raw.RequestsPerSecond > 0 {
		cfg.RequestsPerSecond = raw.RequestsPerSecond
	}
	if raw.DebounceMS > 0 {
		cfg.Debounce = time.Duration(raw.DebounceMS) * time.Millisecond
	}
	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	if raw.TrendingRefreshSeconds > 0 {
		cfg.TrendingRefresh = time.Duration(raw.TrendingRefreshSeconds) * time.Second
	}
	if raw.TrendingLimit > 0 {
		cfg.TrendingLimit = raw.TrendingLimit
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Counter.Backend)); v != "" {
		cfg.Counter.Backend = v
	}
	if v := strings.TrimSpace(raw.Counter.DBPath); v != "" {
		cfg.Counter.DBPath = mustExpand(v)
	}
	cfg.Counter.URL = strings.TrimSpace(raw.Counter.URL)
	cfg.Counter.Project = strings.TrimSpace(raw.Counter.Project)
	cfg.Counter.APIKey = strings.TrimSpace(raw.Counter.APIKey)

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if token := strings.TrimSpace(os.Getenv(TokenEnv)); token != "" {
		cfg.APIToken = token
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
