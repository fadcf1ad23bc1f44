// Package ratelimit limits requests per client with token buckets.
package ratelimit

import (
	"sync"
	"time"
)

// idleBucketTTL is how long an unused bucket is kept.
const idleBucketTTL = 2 * time.Hour

// bucket holds up to capacity tokens and refills at rate tokens per second.
type bucket struct {
	mu       sync.Mutex
	capacity float64
	rate     float64
	tokens   float64
	last     time.Time
}

func newBucket(capacity int, window time.Duration, now time.Time) *bucket {
	return &bucket{
		capacity: float64(capacity),
		rate:     float64(capacity) / window.Seconds(),
		tokens:   float64(capacity),
		last:     now,
	}
}

// take refills the bucket up to now and consumes one token when available.
// It returns whether a token was taken, the whole tokens left and the
// time until the next token.
func (b *bucket) take(now time.Time) (bool, int, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = min(b.capacity, b.tokens+now.Sub(b.last).Seconds()*b.rate)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	wait := time.Duration((1 - b.tokens) / b.rate * float64(time.Second))
	return false, 0, wait
}

func (b *bucket) idleSince(now time.Time) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return now.Sub(b.last)
}

// Info describes the limit that applied to a request.
type Info struct {
	Allowed    bool
	Limit      int
	Remaining  int
	Window     time.Duration
	RetryAfter time.Duration
}

// Limiter keeps one bucket per client and tier.
type Limiter struct {
	config  *Config
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter. A nil config uses DefaultConfig.
func NewLimiter(config *Config) *Limiter {
	if config == nil {
		config = DefaultConfig()
	}
	l := &Limiter{
		config:  config,
		buckets: make(map[string]*bucket),
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	if config.Enabled && config.CleanupInterval > 0 {
		go l.cleanupLoop(config.CleanupInterval)
	}
	return l
}

// Allow reports whether clientID may call method on path now.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.config.Enabled {
		return true, Info{Allowed: true}
	}

	tier := l.config.Match(path, method)
	if tier.Limit <= 0 {
		return true, Info{Allowed: true}
	}

	now := l.now()
	key := clientID + "|" + tier.Name
	l.mu.Lock()
	b, ok := l.buckets[key]
	if !ok {
		b = newBucket(tier.Limit, tier.Window, now)
		l.buckets[key] = b
	}
	l.mu.Unlock()

	allowed, remaining, wait := b.take(now)
	return allowed, Info{
		Allowed:    allowed,
		Limit:      tier.Limit,
		Remaining:  remaining,
		Window:     tier.Window,
		RetryAfter: wait,
	}
}

func (l *Limiter) cleanupLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops buckets that have not been used for idleBucketTTL.
func (l *Limiter) cleanup() {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if b.idleSince(now) > idleBucketTTL {
			delete(l.buckets, key)
		}
	}
}

// Stop ends the cleanup goroutine.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}
