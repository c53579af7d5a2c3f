package render

import (
	"context"

	"github.com/minhvu/portfolio-hub/internal/domain/portfolio"
)

// CacheKeyPrefix namespaces rendered fragments in the durable local tier.
const CacheKeyPrefix = "portfolioRender:"

// Cache stores rendered fragments so page reads never pay for templating.
// The worker refills it on every document change event.
type Cache struct {
	store portfolio.LocalStore
}

func NewCache(store portfolio.LocalStore) *Cache {
	return &Cache{store: store}
}

func (c *Cache) Get(ctx context.Context, section string) (string, bool, error) {
	return c.store.Get(ctx, CacheKeyPrefix+section)
}

func (c *Cache) Put(ctx context.Context, section, html string) error {
	return c.store.Set(ctx, CacheKeyPrefix+section, html)
}

// PutAll replaces every cached fragment. Partial failure leaves earlier
// sections updated; the next refresh pass heals the rest.
func (c *Cache) PutAll(ctx context.Context, fragments map[string]string) error {
	for _, section := range Sections() {
		html, ok := fragments[section]
		if !ok {
			continue
		}
		if err := c.Put(ctx, section, html); err != nil {
			return err
		}
	}
	return nil
}
