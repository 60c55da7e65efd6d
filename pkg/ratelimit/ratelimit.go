package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lumen-atj/lumen/backend/pkg/logger"
)

var (
	// ErrRateLimited is wrapped by every rejection.
	ErrRateLimited = errors.New("rate limited")
	ErrTooFrequent = fmt.Errorf("%w: too many requests, please wait a moment", ErrRateLimited)
	ErrDailyLimit  = fmt.Errorf("%w: daily analysis limit reached, please try again tomorrow", ErrRateLimited)
)

const (
	DefaultPerMinute = 3
	DefaultPerDay    = 5
)

// Window is a fixed counting window. Buckets start at multiples of Length
// since the Unix epoch in UTC, so a day window starts at midnight UTC.
type Window struct {
	Name   string
	Limit  int
	Length time.Duration
	// TTL is how long a bucket outlives its start. It must be at least Length.
	TTL time.Duration
}

// Policy holds both windows. The short one is evaluated first.
type Policy struct {
	Short Window
	Long  Window
}

// DefaultPolicy returns the minute/day policy with the given caps. Non-positive
// caps fall back to the defaults.
func DefaultPolicy(perMinute, perDay int) Policy {
	if perMinute <= 0 {
		perMinute = DefaultPerMinute
	}
	if perDay <= 0 {
		perDay = DefaultPerDay
	}
	return Policy{
		Short: Window{Name: "min", Limit: perMinute, Length: time.Minute, TTL: 2 * time.Minute},
		Long:  Window{Name: "day", Limit: perDay, Length: 24 * time.Hour, TTL: 25 * time.Hour},
	}
}

// Bucket is one counter a Store checks and increments.
type Bucket struct {
	Key   string
	Limit int
	TTL   time.Duration
}

// Decision is the outcome of Store.Take.
type Decision struct {
	Allowed bool
	// Rejected is the index of the first bucket found at its limit, or -1.
	Rejected int
	// Counts holds the counter values after the take. Rejected takes report
	// the unchanged values.
	Counts []int
}

// Store is a counter backing. Take checks every bucket in order and, only if
// none has reached its limit, increments all of them. Both steps happen as
// one operation with respect to other callers.
type Store interface {
	Take(ctx context.Context, buckets []Bucket) (Decision, error)
}

// Result is what Check reports to the caller.
type Result struct {
	Allowed   bool
	Remaining int
}

// Limiter gates requests per client identifier.
type Limiter struct {
	store  Store
	policy Policy
	now    func() time.Time
}

func NewLimiter(store Store, policy Policy) *Limiter {
	return &Limiter{
		store:  store,
		policy: policy,
		now:    time.Now,
	}
}

// Check consumes one request for id. A rejection returns ErrTooFrequent or
// ErrDailyLimit and leaves the counters untouched. Remaining is the number of
// requests left in the long window.
func (l *Limiter) Check(ctx context.Context, id string) (Result, error) {
	now := l.now().UTC()
	buckets := []Bucket{
		bucketFor(l.policy.Short, id, now),
		bucketFor(l.policy.Long, id, now),
	}

	d, err := l.store.Take(ctx, buckets)
	if err != nil {
		return Result{}, fmt.Errorf("failed to check rate limit: %w", err)
	}

	if !d.Allowed {
		logger.Debug("[RateLimit] Rejected request", "id", id, "window", buckets[d.Rejected].Key)
		if d.Rejected == 0 {
			return Result{Allowed: false, Remaining: 0}, ErrTooFrequent
		}
		return Result{Allowed: false, Remaining: 0}, ErrDailyLimit
	}

	remaining := l.policy.Long.Limit - d.Counts[1]
	if remaining < 0 {
		remaining = 0
	}
	return Result{Allowed: true, Remaining: remaining}, nil
}

func bucketFor(w Window, id string, now time.Time) Bucket {
	start := now.Truncate(w.Length)
	ttl := w.TTL
	if ttl < w.Length {
		ttl = w.Length
	}
	return Bucket{
		Key:   fmt.Sprintf("%s:%s:%d", w.Name, id, start.Unix()),
		Limit: w.Limit,
		TTL:   ttl,
	}
}
