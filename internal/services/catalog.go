package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"vacationRentalWebsite/internal/models"
	"vacationRentalWebsite/internal/utils"
)

const featuredKey = "properties:featured"

// FeaturedSource fetches the featured listings from the API
type FeaturedSource interface {
	FeaturedProperties(ctx context.Context) ([]models.Property, error)
}

// Catalog caches the featured listings shown on the home page. Concurrent
// misses share one API call. Failed fetches are not cached.
type Catalog struct {
	source FeaturedSource
	cache  *utils.Cache
	group  singleflight.Group
}

func NewCatalog(source FeaturedSource, ttl time.Duration) *Catalog {
	return &Catalog{source: source, cache: utils.NewCache(ttl)}
}

// Featured returns cached listings or fetches them
func (c *Catalog) Featured(ctx context.Context) ([]models.Property, error) {
	if v, ok := c.cache.Get(featuredKey); ok {
		return v.([]models.Property), nil
	}

	v, err, _ := c.group.Do(featuredKey, func() (interface{}, error) {
		props, err := c.source.FeaturedProperties(ctx)
		if err != nil {
			return nil, err
		}
		c.cache.Set(featuredKey, props)
		return props, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Property), nil
}

// Invalidate drops the cached listings, e.g. after an admin edits a property
func (c *Catalog) Invalidate() {
	c.cache.Delete(featuredKey)
}

func (c *Catalog) Close() {
	c.cache.Close()
}
