package ratelimit

import (
	"context"
	"hash/maphash"
	"sync"
	"time"
)

const shardCount = 32

type windowKey struct {
	identifier string
	action     Action
}

type window struct {
	start time.Time
	count int
}

type shard struct {
	mu      sync.Mutex
	windows map[windowKey]*window
}

// Memory is a process-local limiter. State is lost on restart. Keys are spread
// over shards so check-and-increment is atomic per key without one global lock.
type Memory struct {
	shards [shardCount]shard
	seed   maphash.Seed
	limits Limits
	window time.Duration
	now    func() time.Time
}

type Option func(*Memory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// NewMemory falls back to DefaultWindow when win is not positive.
func NewMemory(limits Limits, win time.Duration, opts ...Option) *Memory {
	if win <= 0 {
		win = DefaultWindow
	}
	m := &Memory{
		seed:   maphash.MakeSeed(),
		limits: limits,
		window: win,
		now:    time.Now,
	}
	for i := range m.shards {
		m.shards[i].windows = make(map[windowKey]*window)
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) shardFor(k windowKey) *shard {
	var h maphash.Hash
	h.SetSeed(m.seed)
	_, _ = h.WriteString(k.identifier)
	_, _ = h.WriteString(string(k.action))
	return &m.shards[h.Sum64()%shardCount]
}

// Allow never blocks on anything but the shard lock and never fails.
func (m *Memory) Allow(_ context.Context, identifier string, action Action) (Decision, error) {
	return m.Check(identifier, action), nil
}

func (m *Memory) Check(identifier string, action Action) Decision {
	k := windowKey{identifier: identifier, action: action}
	limit := m.limits.of(action)
	now := m.now()

	s := m.shardFor(k)
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[k]
	if !ok || now.After(w.start.Add(m.window)) {
		w = &window{start: now, count: 1}
		s.windows[k] = w
		return Decision{Allowed: limit >= 1, Count: 1, Limit: limit, ResetTime: now.Add(m.window)}
	}

	w.count++
	return Decision{
		Allowed:   w.count <= limit,
		Count:     w.count,
		Limit:     limit,
		ResetTime: w.start.Add(m.window),
	}
}

// Len is the number of live windows, expired ones included until Cleanup runs.
func (m *Memory) Len() int {
	n := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		n += len(s.windows)
		s.mu.Unlock()
	}
	return n
}

// Cleanup drops windows that have expired and returns how many were removed.
func (m *Memory) Cleanup() int {
	now := m.now()
	removed := 0
	for i := range m.shards {
		s := &m.shards[i]
		s.mu.Lock()
		for k, w := range s.windows {
			if now.After(w.start.Add(m.window)) {
				delete(s.windows, k)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// StartCleanup runs Cleanup every interval until ctx is cancelled. The
// returned channel closes once the goroutine has exited.
func (m *Memory) StartCleanup(ctx context.Context, interval time.Duration) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.Cleanup()
			}
		}
	}()
	return done
}
