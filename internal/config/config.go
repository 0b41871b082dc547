// Package config loads service configuration from defaults, an optional YAML file and
// the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/arpita1049/Prashikshan-final/internal/career"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	CacheMemory = "memory"
	CacheRedis  = "redis"
)

type Config struct {
	Provider   ProviderConfig   `yaml:"provider"`
	Resilience ResilienceConfig `yaml:"resilience"`
	Cache      CacheConfig      `yaml:"cache"`
	Server     ServerConfig     `yaml:"server"`
	Demo       DemoConfig       `yaml:"demo"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ProviderConfig struct {
	// Name selects the adapter: "gemini" or "openai".
	Name   string `yaml:"name"`
	APIKey string `yaml:"api_key"`
	// Model is empty to use the adapter default.
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type ResilienceConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	BaseDelay    time.Duration `yaml:"base_delay"`
	JitterMax    time.Duration `yaml:"jitter_max"`
	MaxDelay     time.Duration `yaml:"max_delay"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimitRPS float64       `yaml:"rate_limit_rps"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	TTL           time.Duration `yaml:"ttl"`
	HighWaterMark int           `yaml:"high_water_mark"`
	RedisURL      string        `yaml:"redis_url"`
	RedisPrefix   string        `yaml:"redis_prefix"`
	// SweepInterval runs a periodic sweep of the memory cache in serve mode. 0 disables it.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type DemoConfig struct {
	Delays career.DemoDelays `yaml:"delays"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Provider: ProviderConfig{Name: ProviderGemini},
		Resilience: ResilienceConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
			JitterMax:   500 * time.Millisecond,
			MaxDelay:    30 * time.Second,
			Timeout:     30 * time.Second,
		},
		Cache: CacheConfig{
			Backend:       CacheMemory,
			TTL:           10 * time.Minute,
			HighWaterMark: 50,
			RedisPrefix:   "careerai:",
		},
		Server:  ServerConfig{Addr: ":8080"},
		Demo:    DemoConfig{Delays: career.DefaultDemoDelays()},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads path (if non-empty), applies process environment overrides and validates.
func Load(path string) (Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv is Load with an explicit environment lookup.
func LoadWithEnv(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	if path = strings.TrimSpace(path); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, err
	}
	cfg.Provider.Name = strings.ToLower(strings.TrimSpace(cfg.Provider.Name))
	cfg.Provider.APIKey = normalizeKey(cfg.Provider.APIKey)
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider.Name {
	case ProviderGemini, ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("provider.name must be %q or %q, got %q", ProviderGemini, ProviderOpenAI, c.Provider.Name))
	}

	r := c.Resilience
	if r.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("resilience.max_attempts must be >= 1, got %d", r.MaxAttempts))
	}
	for name, d := range map[string]time.Duration{
		"resilience.base_delay": r.BaseDelay,
		"resilience.jitter_max": r.JitterMax,
		"resilience.max_delay":  r.MaxDelay,
		"resilience.timeout":    r.Timeout,
		"cache.sweep_interval":  c.Cache.SweepInterval,
		"demo.delays.chat":      c.Demo.Delays.Chat,
		"demo.delays.resume":    c.Demo.Delays.Resume,
		"demo.delays.interview": c.Demo.Delays.Interview,
		"demo.delays.tutor":     c.Demo.Delays.Tutor,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must be >= 0, got %s", name, d))
		}
	}
	if r.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("resilience.rate_limit_rps must be >= 0, got %g", r.RateLimitRPS))
	}

	switch c.Cache.Backend {
	case CacheMemory:
	case CacheRedis:
		if strings.TrimSpace(c.Cache.RedisURL) == "" {
			errs = append(errs, errors.New("cache.redis_url is required when cache.backend is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend must be %q or %q, got %q", CacheMemory, CacheRedis, c.Cache.Backend))
	}
	if c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be > 0, got %s", c.Cache.TTL))
	}
	if c.Cache.HighWaterMark < 1 {
		errs = append(errs, fmt.Errorf("cache.high_water_mark must be >= 1, got %d", c.Cache.HighWaterMark))
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if _, err := c.Logging.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// HasCredential reports whether a provider key is configured. Without one the service
// runs in demo mode.
func (c Config) HasCredential() bool {
	return normalizeKey(c.Provider.APIKey) != ""
}

// SlogLevel parses Level. Empty means info.
func (l LoggingConfig) SlogLevel() (slog.Level, error) {
	s := strings.TrimSpace(l.Level)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return lvl, nil
}

// normalizeKey treats the literal "undefined" (an unset variable interpolated by a
// frontend bundler) as no key.
func normalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "undefined" {
		return ""
	}
	return s
}

func applyEnv(c *Config, getenv func(string) string) error {
	str := func(name string, dst *string) {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			*dst = v
		}
	}
	str("AI_PROVIDER", &c.Provider.Name)
	str("AI_MODEL", &c.Provider.Model)
	str("AI_BASE_URL", &c.Provider.BaseURL)
	str("CACHE_BACKEND", &c.Cache.Backend)
	str("REDIS_URL", &c.Cache.RedisURL)
	str("SERVER_ADDR", &c.Server.Addr)
	str("LOG_LEVEL", &c.Logging.Level)

	keyVars := []string{"GEMINI_API_KEY", "VITE_GEMINI_API_KEY", "API_KEY"}
	if strings.EqualFold(strings.TrimSpace(c.Provider.Name), ProviderOpenAI) {
		keyVars = []string{"OPENAI_API_KEY", "API_KEY"}
	}
	for _, name := range keyVars {
		if v := normalizeKey(getenv(name)); v != "" {
			c.Provider.APIKey = v
			break
		}
	}

	var errs []error
	intVar := func(name string, dst *int) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s=%q: %w", name, v, err))
			return
		}
		*dst = n
	}
	floatVar := func(name string, dst *float64) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s=%q: %w", name, v, err))
			return
		}
		*dst = f
	}
	durationVar := func(name string, dsts ...*time.Duration) {
		v := strings.TrimSpace(getenv(name))
		if v == "" {
			return
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s=%q: %w", name, v, err))
			return
		}
		for _, dst := range dsts {
			*dst = d
		}
	}

	intVar("MAX_ATTEMPTS", &c.Resilience.MaxAttempts)
	durationVar("BASE_DELAY", &c.Resilience.BaseDelay)
	durationVar("JITTER_MAX", &c.Resilience.JitterMax)
	durationVar("MAX_DELAY", &c.Resilience.MaxDelay)
	durationVar("REQUEST_TIMEOUT", &c.Resilience.Timeout)
	floatVar("RATE_LIMIT_RPS", &c.Resilience.RateLimitRPS)
	durationVar("CACHE_TTL", &c.Cache.TTL)
	intVar("CACHE_HIGH_WATER_MARK", &c.Cache.HighWaterMark)
	durationVar("CACHE_SWEEP_INTERVAL", &c.Cache.SweepInterval)
	d := &c.Demo.Delays
	durationVar("DEMO_DELAY", &d.Chat, &d.Resume, &d.Interview, &d.Tutor)

	return errors.Join(errs...)
}
