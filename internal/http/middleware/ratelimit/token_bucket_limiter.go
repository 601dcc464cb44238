package ratelimit

import (
	"sync"
	"time"
)

// Budget is the refill rate and capacity of one route class.
type Budget struct {
	Rate  float64 // tokens per second
	Burst int     // capacity
}

// Config stores TokenBucketLimiter settings. Board polling spends Read, operator
// actions spend Write.
type Config struct {
	Read       Budget
	Write      Budget
	TTL        time.Duration // delete idle buckets (0 disables)
	MaxBuckets int           // new keys are denied once this many buckets exist (0 = unbounded)
}

func (c Config) budget(class string) Budget {
	if class == ClassWrite {
		return c.Write
	}
	return c.Read
}

// TokenBucketLimiter keeps one token bucket per client and route class.
type TokenBucketLimiter struct {
	cfg         Config
	clock       Clock
	mu          sync.RWMutex
	buckets     map[string]*bucket
	lastCleanup time.Time
}

type bucket struct {
	mu       sync.Mutex
	tokens   float64
	last     time.Time
	lastSeen time.Time
}

// NewTokenBucketLimiter creates a limiter. A zero budget becomes one request per second.
func NewTokenBucketLimiter(clock Clock, cfg Config) *TokenBucketLimiter {
	if clock == nil {
		clock = RealClock{}
	}
	cfg.Read = normalize(cfg.Read)
	cfg.Write = normalize(cfg.Write)
	if cfg.MaxBuckets < 0 {
		cfg.MaxBuckets = 0
	}
	return &TokenBucketLimiter{
		cfg:     cfg,
		clock:   clock,
		buckets: make(map[string]*bucket),
	}
}

func normalize(b Budget) Budget {
	if b.Rate <= 0 {
		b.Rate = 1
	}
	if b.Burst <= 0 {
		b.Burst = 1
	}
	return b
}

// Allow takes a token from the client's bucket for class.
func (l *TokenBucketLimiter) Allow(client, class string) (bool, time.Duration) {
	now := l.clock.Now()
	l.maybeCleanup(now)

	budget := l.cfg.budget(class)
	b := l.bucketFor(Key(client, class), budget, now)
	if b == nil {
		return false, 0
	}
	return b.take(now, budget)
}

// Len returns the number of live buckets.
func (l *TokenBucketLimiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.buckets)
}

func (l *TokenBucketLimiter) bucketFor(key string, budget Budget, now time.Time) *bucket {
	l.mu.RLock()
	b := l.buckets[key]
	l.mu.RUnlock()
	if b != nil {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if b = l.buckets[key]; b != nil {
		return b
	}
	if l.cfg.MaxBuckets > 0 && len(l.buckets) >= l.cfg.MaxBuckets {
		return nil
	}

	b = &bucket{tokens: float64(budget.Burst), last: now, lastSeen: now}
	l.buckets[key] = b
	return b
}

func (b *bucket) take(now time.Time, budget Budget) (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dt := now.Sub(b.last); dt > 0 {
		b.tokens += dt.Seconds() * budget.Rate
		if burst := float64(budget.Burst); b.tokens > burst {
			b.tokens = burst
		}
		b.last = now
	}
	b.lastSeen = now

	if b.tokens < 1 {
		missing := 1 - b.tokens
		return false, time.Duration(missing / budget.Rate * float64(time.Second))
	}
	b.tokens--
	return true, 0
}

func (l *TokenBucketLimiter) maybeCleanup(now time.Time) {
	if l.cfg.TTL <= 0 {
		return
	}

	interval := time.Minute
	if half := l.cfg.TTL / 2; half > interval {
		interval = half
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastCleanup.IsZero() && now.Sub(l.lastCleanup) < interval {
		return
	}
	l.lastCleanup = now

	for k, b := range l.buckets {
		b.mu.Lock()
		seen := b.lastSeen
		b.mu.Unlock()

		if now.Sub(seen) > l.cfg.TTL {
			delete(l.buckets, k)
		}
	}
}
