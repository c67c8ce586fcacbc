package viewstate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/cardgrid/pkg/cache"
	"github.com/matzehuels/cardgrid/pkg/observability"
)

// CacheStore keeps snapshots as JSON in a cache backend.
type CacheStore struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCacheStore wraps c. A nil keyer uses the default; ttl <= 0 uses
// cache.ViewTTL.
func NewCacheStore(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CacheStore {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = cache.ViewTTL
	}
	return &CacheStore{cache: c, keyer: keyer, ttl: ttl}
}

func (s *CacheStore) Get(ctx context.Context, id string) (Snapshot, error) {
	if err := validateID(id); err != nil {
		return Snapshot{}, err
	}
	key := s.keyer.ViewKey(id)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load view %s: %w", id, err)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, cache.KeyType(key))
		return Snapshot{}, notFound(id)
	}
	observability.Cache().OnCacheHit(ctx, cache.KeyType(key))

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode view %s: %w", id, err)
	}
	return snap, nil
}

func (s *CacheStore) Save(ctx context.Context, snap Snapshot) error {
	if err := validateID(snap.ID); err != nil {
		return err
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode view %s: %w", snap.ID, err)
	}
	key := s.keyer.ViewKey(snap.ID)
	if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
		return fmt.Errorf("save view %s: %w", snap.ID, err)
	}
	observability.Cache().OnCacheSet(ctx, cache.KeyType(key), len(data))
	return nil
}

func (s *CacheStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return s.cache.Delete(ctx, s.keyer.ViewKey(id))
}

// Close closes the underlying cache.
func (s *CacheStore) Close() error {
	return s.cache.Close()
}
