package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryOptions configures an in-process cache.
type MemoryOptions struct {
	// TTL is the maximum entry age. Entries with age >= TTL are misses.
	TTL time.Duration
	// HighWaterMark triggers a sweep of expired entries when Put leaves more entries than this.
	HighWaterMark int

	// Now overrides the clock (tests).
	Now func() time.Time
}

func (o MemoryOptions) withDefaults() MemoryOptions {
	if o.TTL <= 0 {
		o.TTL = 10 * time.Minute
	}
	if o.HighWaterMark <= 0 {
		o.HighWaterMark = 50
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Memory is a TTL cache with lazy expiry. It is safe for concurrent use.
type Memory struct {
	ttl       time.Duration
	highWater int
	now       func() time.Time

	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemory constructs an empty in-process cache.
func NewMemory(opts MemoryOptions) *Memory {
	opts = opts.withDefaults()
	return &Memory{
		ttl:       opts.TTL,
		highWater: opts.HighWaterMark,
		now:       opts.Now,
		entries:   make(map[string]Entry),
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.expired(e, m.now()) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return e.Value, true, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.entries[key] = Entry{Key: key, Value: value, CreatedAt: now}
	if len(m.entries) > m.highWater {
		m.sweepLocked(now)
	}
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sweepLocked(m.now())
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *Memory) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			m.Sweep()
		}
	}
}

func (m *Memory) sweepLocked(now time.Time) int {
	removed := 0
	for k, e := range m.entries {
		if m.expired(e, now) {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *Memory) expired(e Entry, now time.Time) bool {
	return now.Sub(e.CreatedAt) >= m.ttl
}
