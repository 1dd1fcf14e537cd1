// Package caching stores conversion results in memory and on disk.
package caching

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
	gocache "github.com/patrickmn/go-cache"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is a two-tier cache: an in-process go-cache in front of a directory of files.
// A zero TTL disables expiry.
type Cache struct {
	path string
	ttl  time.Duration
	mem  *gocache.Cache
}

// NewCache creates a new Cache instance.
// The cache path will be created if it doesn't exist.
func NewCache(path string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	memTTL := ttl
	if memTTL <= 0 {
		memTTL = gocache.NoExpiration
	}
	return &Cache{
		path: path,
		ttl:  ttl,
		mem:  gocache.New(memTTL, 10*time.Minute),
	}, nil
}

// Key hashes parts into a cache key. Parts are separated so ("ab","c") and ("a","bc") differ.
func Key(parts ...string) string {
	d := xxhash.New()
	for _, p := range parts {
		_, _ = d.WriteString(p)
		_, _ = d.Write([]byte{0})
	}
	return strconv.FormatUint(d.Sum64(), 16)
}

// Get returns the cached bytes for key, or ErrMiss.
func (c *Cache) Get(key string) ([]byte, error) {
	if v, ok := c.mem.Get(key); ok {
		return v.([]byte), nil
	}

	filePath := filepath.Join(c.path, key)
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, ErrMiss
	}
	if c.ttl > 0 && time.Since(info.ModTime()) > c.ttl {
		return nil, ErrMiss
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	c.mem.Set(key, data, gocache.DefaultExpiration)
	return data, nil
}

// Set writes data to both tiers.
func (c *Cache) Set(key string, data []byte) error {
	c.mem.Set(key, data, gocache.DefaultExpiration)
	filePath := filepath.Join(c.path, key)
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// Len reports the number of entries held in memory.
func (c *Cache) Len() int {
	return c.mem.ItemCount()
}
