package config

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arpita1049/Prashikshan-final/internal/cache"
	"github.com/arpita1049/Prashikshan-final/internal/provider"
	"github.com/arpita1049/Prashikshan-final/internal/provider/gemini"
	openaiprovider "github.com/arpita1049/Prashikshan-final/internal/provider/openai"
	"github.com/arpita1049/Prashikshan-final/internal/resilience"
)

// BuildProvider returns the configured provider, or nil when no credential is set.
func (c Config) BuildProvider(ctx context.Context) (provider.Provider, error) {
	if !c.HasCredential() {
		return nil, nil
	}
	p := c.Provider
	switch p.Name {
	case ProviderGemini:
		g, err := gemini.New(ctx, gemini.Config{APIKey: p.APIKey, Model: p.Model, BaseURL: p.BaseURL})
		if err != nil {
			return nil, fmt.Errorf("gemini provider: %w", err)
		}
		return g, nil
	case ProviderOpenAI:
		o, err := openaiprovider.New(openaiprovider.Config{APIKey: p.APIKey, Model: p.Model, BaseURL: p.BaseURL})
		if err != nil {
			return nil, fmt.Errorf("openai provider: %w", err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}

// OrchestratorOptions maps the resilience section onto resilience.Options.
func (c Config) OrchestratorOptions(logger *slog.Logger, observer resilience.Observer) resilience.Options {
	r := c.Resilience
	opts := resilience.DefaultOptions()
	opts.MaxAttempts = r.MaxAttempts
	opts.Timeout = r.Timeout
	opts.Backoff.Base = r.BaseDelay
	opts.Backoff.JitterMax = r.JitterMax
	opts.Backoff.Max = r.MaxDelay
	opts.RateLimitRPS = r.RateLimitRPS
	opts.Logger = logger
	opts.Observer = observer
	return opts
}

// RequestBudget is the worst-case duration of one capability call: every attempt timing
// out plus every backoff wait at full jitter. Zero when attempts are unbounded in time.
func (c Config) RequestBudget() time.Duration {
	r := c.Resilience
	if r.MaxAttempts < 1 || r.Timeout <= 0 {
		return 0
	}
	total := time.Duration(r.MaxAttempts) * r.Timeout
	for n := 0; n < r.MaxAttempts-1; n++ {
		d := r.BaseDelay << min(n, 20)
		if r.MaxDelay > 0 && d > r.MaxDelay {
			d = r.MaxDelay
		}
		total += d + r.JitterMax
	}
	return total
}

// BuildCache returns the configured response cache. The caller closes a *cache.Redis.
func (c Config) BuildCache(ctx context.Context) (cache.Store, error) {
	cc := c.Cache
	switch cc.Backend {
	case CacheMemory:
		return cache.NewMemory(cache.MemoryOptions{TTL: cc.TTL, HighWaterMark: cc.HighWaterMark}), nil
	case CacheRedis:
		r, err := cache.NewRedis(ctx, cache.RedisConfig{URL: cc.RedisURL, Prefix: cc.RedisPrefix, TTL: cc.TTL})
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cc.Backend)
	}
}
