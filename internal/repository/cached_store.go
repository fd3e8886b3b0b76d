package repository

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// CachedStore puts a cache-aside layer in front of another Store. Reads go
// through singleflight so concurrent misses for one key hit the backing store
// once; writes go to the backing store and then invalidate the cache entry.
//
// Every Save bumps a per-key generation. A miss only fills the cache if no
// Save ran since it read the backing store, so a slow read cannot put an old
// document back after the invalidation. Writers in other processes are not
// seen here; their stale window is bounded by the cache TTL.
type CachedStore struct {
	next  Store
	cache cache.DocumentCache
	log   *zap.Logger
	sfg   singleflight.Group

	mu   sync.Mutex
	gens map[string]uint64
}

func NewCachedStore(next Store, c cache.DocumentCache, log *zap.Logger) *CachedStore {
	return &CachedStore{next: next, cache: c, log: log, gens: make(map[string]uint64)}
}

func (s *CachedStore) generation(k string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[k]
}

func (s *CachedStore) Load(ctx context.Context, key ScopeKey) ([]byte, error) {
	k := key.String()
	gen := s.generation(k)
	// loads that start after a Save must not join a flight that read before it
	flight := k + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := s.sfg.Do(flight, func() (interface{}, error) {
		doc, err := s.cache.Get(ctx, k)
		if err == nil {
			return doc, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.Warn("cache get failed", zap.String("key", k), zap.Error(err))
		}

		doc, err = s.next.Load(ctx, key)
		if err != nil {
			return nil, err
		}

		s.fill(ctx, k, gen, doc)
		return doc, nil
	})
	if err != nil {
		return nil, err
	}

	return append([]byte(nil), v.([]byte)...), nil
}

// fill caches doc unless a Save bumped the generation after it was read. The
// lock is held across Set so a Save's invalidation always runs after it.
func (s *CachedStore) fill(ctx context.Context, k string, gen uint64, doc []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gens[k] != gen {
		return
	}
	if err := s.cache.Set(ctx, k, doc); err != nil {
		s.log.Warn("cache set failed", zap.String("key", k), zap.Error(err))
	}
}

func (s *CachedStore) Save(ctx context.Context, key ScopeKey, doc []byte) error {
	if err := s.next.Save(ctx, key, doc); err != nil {
		return err
	}
	k := key.String()
	s.mu.Lock()
	s.gens[k]++
	s.mu.Unlock()
	s.invalidate(k)
	return nil
}

func (s *CachedStore) invalidate(k string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, k); err != nil {
		s.log.Warn("cache invalidate failed", zap.String("key", k), zap.Error(err))
	}
}
