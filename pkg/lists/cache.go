package lists

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/japaniel/wordweave/pkg/dictionary"
)

// CachingResolver remembers successfully resolved lists so a configuration
// change does not refetch unchanged base lists. Failures are never cached.
type CachingResolver struct {
	next  Resolver
	cache *lru.Cache[string, []dictionary.Record]
}

// NewCachingResolver wraps next with an LRU cache of size entries.
func NewCachingResolver(next Resolver, size int) (*CachingResolver, error) {
	if size <= 0 {
		size = 8
	}
	c, err := lru.New[string, []dictionary.Record](size)
	if err != nil {
		return nil, err
	}
	return &CachingResolver{next: next, cache: c}, nil
}

func (r *CachingResolver) Resolve(ctx context.Context, id string) ([]dictionary.Record, error) {
	if records, ok := r.cache.Get(id); ok {
		return records, nil
	}
	records, err := r.next.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, records)
	return records, nil
}

// Invalidate drops a cached list, e.g. after its file changed on disk.
func (r *CachingResolver) Invalidate(id string) {
	r.cache.Remove(id)
}

// Purge drops every cached list.
func (r *CachingResolver) Purge() {
	r.cache.Purge()
}
