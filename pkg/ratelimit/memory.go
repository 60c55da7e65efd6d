package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const defaultMemoryKeys = 100_000

type counter struct {
	count   int
	expires time.Time
}

// MemoryStore keeps counters in process. It is only correct for a single
// server instance.
type MemoryStore struct {
	mu      sync.Mutex
	entries *expirable.LRU[string, counter]
	now     func() time.Time
}

// NewMemoryStore creates a store holding at most size keys. The LRU sweeps
// anything older than maxTTL; each counter additionally carries its own
// expiry.
func NewMemoryStore(size int, maxTTL time.Duration) *MemoryStore {
	if size <= 0 {
		size = defaultMemoryKeys
	}
	return &MemoryStore{
		entries: expirable.NewLRU[string, counter](size, nil, maxTTL),
		now:     time.Now,
	}
}

func (s *MemoryStore) Take(ctx context.Context, buckets []Bucket) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	counts := make([]int, len(buckets))
	for i, b := range buckets {
		if c, ok := s.entries.Get(b.Key); ok && now.Before(c.expires) {
			counts[i] = c.count
		}
	}

	for i, b := range buckets {
		if counts[i] >= b.Limit {
			return Decision{Allowed: false, Rejected: i, Counts: counts}, nil
		}
	}

	for i, b := range buckets {
		counts[i]++
		expires := now.Add(b.TTL)
		if c, ok := s.entries.Get(b.Key); ok && now.Before(c.expires) {
			expires = c.expires
		}
		s.entries.Add(b.Key, counter{count: counts[i], expires: expires})
	}

	return Decision{Allowed: true, Rejected: -1, Counts: counts}, nil
}
