package assetcache

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/at-ishikawa/toddlingo/internal/content"
)

const DefaultFetchTimeout = 20 * time.Second

// Page carries the two asset URLs of one book page. Either may be empty.
type Page struct {
	ImageURL string
	AudioURL string
}

func PagesOf(pages []content.Page) []Page {
	result := make([]Page, 0, len(pages))
	for _, page := range pages {
		result = append(result, Page{ImageURL: page.ImageURL, AudioURL: page.AudioURL})
	}
	return result
}

// ProgressFunc is called after every asset attempt with done in 1..total.
type ProgressFunc func(done, total int)

type PrefetchResult struct {
	Cached  int `json:"cached" yaml:"cached"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Failed  int `json:"failed" yaml:"failed"`
}

type outcome int

const (
	outcomeCached outcome = iota
	outcomeSkipped
	outcomeFailed
)

// Cache fronts a Store with fetching and object references.
// Clear takes the write lock; lookups and stores take the read lock.
type Cache struct {
	store        Store
	fetcher      Fetcher
	objects      *Objects
	fetchTimeout time.Duration
	logger       *slog.Logger

	mu    sync.RWMutex
	group singleflight.Group
}

type Option func(*Cache)

func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *Cache) {
		if timeout > 0 {
			c.fetchTimeout = timeout
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithObjects(objects *Objects) Option {
	return func(c *Cache) {
		if objects != nil {
			c.objects = objects
		}
	}
}

func New(store Store, fetcher Fetcher, opts ...Option) *Cache {
	if store == nil {
		store = NopStore{}
	}
	c := &Cache{
		store:        store,
		fetcher:      fetcher,
		objects:      NewObjects(),
		fetchTimeout: DefaultFetchTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) Objects() *Objects {
	return c.objects
}

// Prefetch caches the image then the audio of every page in order.
// Individual failures are counted, not returned. Cancellation is checked between pages.
func (c *Cache) Prefetch(ctx context.Context, pages []Page, onProgress ProgressFunc) (PrefetchResult, error) {
	var result PrefetchResult
	total := 2 * len(pages)
	done := 0

	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			c.logger.Info("prefetch cancelled", "page_index", i, "done", done, "total", total)
			return result, err
		}

		for _, asset := range []struct {
			partition Partition
			url       string
		}{
			{PartitionImage, page.ImageURL},
			{PartitionAudio, page.AudioURL},
		} {
			switch c.prefetchOne(ctx, asset.partition, asset.url) {
			case outcomeCached:
				result.Cached++
			case outcomeSkipped:
				result.Skipped++
			case outcomeFailed:
				result.Failed++
			}
			done++
			if onProgress != nil {
				onProgress(done, total)
			}
		}
	}
	return result, nil
}

func (c *Cache) prefetchOne(ctx context.Context, partition Partition, url string) outcome {
	if url == "" {
		return outcomeSkipped
	}
	if c.fetcher == nil {
		c.logger.Debug("no fetcher configured", "partition", partition, "url", url)
		return outcomeFailed
	}

	// concurrent prefetches of the same key share one download, so the download must
	// outlive the caller that happened to start it
	_, err, _ := c.group.Do(string(partition)+"\x00"+url, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.fetchTimeout)
		defer cancel()

		asset, err := c.fetcher.Fetch(fetchCtx, url)
		if err != nil {
			c.logger.Debug("asset fetch failed", "partition", partition, "url", url, "error", err)
			return nil, err
		}
		if err := c.Put(fetchCtx, partition, url, asset); err != nil {
			c.logger.Warn("asset store failed", "partition", partition, "url", url, "error", err)
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return outcomeFailed
	}
	return outcomeCached
}

// Put stores asset under the exact key, replacing any previous value.
func (c *Cache) Put(ctx context.Context, partition Partition, key string, asset Asset) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.store.Put(ctx, partition, Entry{
		Key:         key,
		Data:        asset.Data,
		ContentType: asset.ContentType,
		CachedAt:    time.Now(),
	}); err != nil {
		return fmt.Errorf("store.Put > %w", err)
	}
	return nil
}

func (c *Cache) ImageURL(ctx context.Context, url string) (string, bool) {
	return c.lookup(ctx, PartitionImage, url)
}

func (c *Cache) AudioURL(ctx context.Context, url string) (string, bool) {
	return c.lookup(ctx, PartitionAudio, url)
}

// Lookup returns a fresh object reference for the cached entry, or false on a miss.
func (c *Cache) Lookup(ctx context.Context, partition Partition, url string) (string, bool) {
	return c.lookup(ctx, partition, url)
}

func (c *Cache) lookup(ctx context.Context, partition Partition, url string) (string, bool) {
	if url == "" {
		return "", false
	}

	c.mu.RLock()
	entry, err := c.store.Get(ctx, partition, url)
	c.mu.RUnlock()
	if err != nil {
		c.logger.Debug("asset lookup failed", "partition", partition, "url", url, "error", err)
		return "", false
	}
	if entry == nil {
		return "", false
	}
	return c.objects.Create(entry.Data, entry.ContentType), true
}

// Clear removes every entry from both partitions. References already handed out stay valid.
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("store.Clear > %w", err)
	}
	return nil
}

// Stats reports the number of entries per partition.
func (c *Cache) Stats(ctx context.Context) (map[Partition]int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := make(map[Partition]int, len(partitionTables))
	for _, partition := range []Partition{PartitionImage, PartitionAudio} {
		count, err := c.store.Count(ctx, partition)
		if err != nil {
			return nil, fmt.Errorf("store.Count(%s) > %w", partition, err)
		}
		stats[partition] = count
	}
	return stats, nil
}
