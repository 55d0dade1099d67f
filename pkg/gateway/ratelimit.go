package gateway

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type RateLimitOptions struct {
	Enabled bool
	RPS     float64
	Burst   int
	// KeyHeader identifies a client when present. Requests without it are
	// keyed by client IP.
	KeyHeader    string
	IdleTTL      time.Duration
	CleanupEvery time.Duration
}

// limiterStore keeps one token bucket per client key and forgets idle keys.
type limiterStore struct {
	mu           sync.Mutex
	entries      map[string]*limiterEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLimiterStore(opts RateLimitOptions) *limiterStore {
	s := &limiterStore{
		entries:      map[string]*limiterEntry{},
		rps:          rate.Limit(opts.RPS),
		burst:        opts.Burst,
		idleTTL:      opts.IdleTTL,
		cleanupEvery: opts.CleanupEvery,
	}
	if s.burst <= 0 {
		s.burst = int(math.Max(1, math.Ceil(opts.RPS)))
	}
	if s.idleTTL <= 0 {
		s.idleTTL = 15 * time.Minute
	}
	if s.cleanupEvery <= 0 {
		s.cleanupEvery = 2 * time.Minute
	}
	return s
}

func (s *limiterStore) get(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *limiterStore) cleanup(now time.Time) int {
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

func (s *limiterStore) size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *limiterStore) startJanitor(ctx context.Context) {
	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-t.C:
				if n := s.cleanup(now); n > 0 {
					log.WithField("removed", n).Debug("Dropped idle rate limiters")
				}
			}
		}
	}()
}

func rateLimit(store *limiterStore, keyHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if keyHeader != "" {
			if v := strings.TrimSpace(c.GetHeader(keyHeader)); v != "" {
				key = v
			}
		}

		lim := store.get(key)
		if lim.Allow() {
			c.Next()
			return
		}

		r := lim.Reserve()
		wait := r.Delay()
		r.Cancel()
		c.Header("Retry-After", strconv.Itoa(int(math.Max(1, math.Ceil(wait.Seconds())))))
		log.WithFields(log.Fields{"key": key, "path": c.Request.URL.Path}).Warn("Rate limit exceeded")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"detail": http.StatusText(http.StatusTooManyRequests)})
	}
}
