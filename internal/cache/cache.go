package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/S3OD177/price-monitor-sub000/internal/models"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "scrape:url:"

// ProductCache shares previously scraped records between callers, keyed by
// page URL. The scraper itself never consults it; the serving layer checks
// the cache before deciding to scrape at all. A nil cache or an
// unreachable Redis degrades to always-miss.
type ProductCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// New connects to Redis and verifies the connection. Callers treat a nil
// cache as disabled.
func New(ctx context.Context, opts Options, logger *slog.Logger) (*ProductCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &ProductCache{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "cache"),
	}, nil
}

// Get returns the cached record for a URL, or nil on miss. Redis errors
// are logged and reported as misses.
func (c *ProductCache) Get(ctx context.Context, pageURL string) *models.ScrapedProduct {
	if c == nil {
		return nil
	}

	raw, err := c.client.Get(ctx, keyPrefix+pageURL).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		c.logger.Warn("cache get failed", "url", pageURL, "error", err)
		return nil
	}

	var product models.ScrapedProduct
	if err := json.Unmarshal([]byte(raw), &product); err != nil {
		c.logger.Warn("cache entry corrupt", "url", pageURL, "error", err)
		return nil
	}
	return &product
}

// Set stores a record under its URL with the configured TTL.
func (c *ProductCache) Set(ctx context.Context, pageURL string, product *models.ScrapedProduct) {
	if c == nil {
		return
	}

	data, err := json.Marshal(product)
	if err != nil {
		c.logger.Warn("cache marshal failed", "url", pageURL, "error", err)
		return
	}
	if err := c.client.Set(ctx, keyPrefix+pageURL, data, c.ttl).Err(); err != nil {
		c.logger.Warn("cache set failed", "url", pageURL, "error", err)
	}
}

// Available reports whether Redis answers a ping.
func (c *ProductCache) Available(ctx context.Context) bool {
	if c == nil {
		return false
	}
	return c.client.Ping(ctx).Err() == nil
}

func (c *ProductCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
