package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DownloadMarker records that intraday history for a symbol+interval was
// fetched recently, so repeat scans skip the expensive refetch.
type DownloadMarker struct {
	Symbol   string    `json:"symbol"`
	Interval string    `json:"interval"`
	Days     int       `json:"days"`
	MarkedAt time.Time `json:"marked_at"`
}

// MarkerStats tracks cache performance metrics.
type MarkerStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
}

// DownloadMarkerCache implements the marker store on Redis. The TTL is the
// whole idempotence window: once a marker expires, the next scan refetches.
type DownloadMarkerCache struct {
	redis  *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	stats  MarkerStats
	prefix string
	logger *logrus.Logger
}

// NewDownloadMarkerCache creates a Redis-backed download marker cache.
func NewDownloadMarkerCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *DownloadMarkerCache {
	return &DownloadMarkerCache{
		redis:  redisClient,
		ttl:    ttl,
		prefix: "intraday_dl:",
		logger: logger,
	}
}

func (c *DownloadMarkerCache) key(symbol, interval string) string {
	return fmt.Sprintf("%s%s:%s", c.prefix, symbol, interval)
}

// Seen reports whether a valid marker exists for symbol+interval covering at
// least the requested number of days.
func (c *DownloadMarkerCache) Seen(ctx context.Context, symbol, interval string, days int) bool {
	data, err := c.redis.Get(ctx, c.key(symbol, interval)).Result()
	if err == redis.Nil {
		c.recordMiss()
		return false
	}
	if err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Redis error reading download marker")
		c.recordMiss()
		return false
	}

	var marker DownloadMarker
	if err := json.Unmarshal([]byte(data), &marker); err != nil {
		c.logger.WithError(err).WithField("symbol", symbol).Warn("Failed to decode download marker")
		c.recordMiss()
		return false
	}

	// A marker for a shorter window does not cover a longer request.
	if marker.Days < days {
		c.recordMiss()
		return false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	return true
}

// Mark stores a marker for symbol+interval with the configured TTL.
func (c *DownloadMarkerCache) Mark(ctx context.Context, symbol, interval string, days int) error {
	marker := DownloadMarker{
		Symbol:   symbol,
		Interval: interval,
		Days:     days,
		MarkedAt: time.Now(),
	}

	data, err := json.Marshal(marker)
	if err != nil {
		return fmt.Errorf("failed to encode download marker: %w", err)
	}

	if err := c.redis.Set(ctx, c.key(symbol, interval), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store download marker: %w", err)
	}

	c.mu.Lock()
	c.stats.Sets++
	c.mu.Unlock()
	return nil
}

func (c *DownloadMarkerCache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
}

// GetStats returns a copy of the current cache statistics.
func (c *DownloadMarkerCache) GetStats() MarkerStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
