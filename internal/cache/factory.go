// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend types.
const (
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// Config holds configuration for cache creation.
type Config struct {
	// Type is the cache backend type: "memory" or "redis"
	Type string

	// Prefix is the key prefix for Redis (only for redis type)
	Prefix string

	// DefaultTTL is the default TTL for cache entries
	DefaultTTL time.Duration

	// MaxSize is the maximum number of entries for memory cache (0 = unlimited)
	MaxSize int

	// CleanupInterval is the interval for expired entry cleanup
	CleanupInterval time.Duration
}

// DefaultConfig returns default cache configuration.
func DefaultConfig() Config {
	return Config{
		Type:            TypeMemory,
		Prefix:          "ocms:",
		DefaultTTL:      time.Hour,
		MaxSize:         10000,
		CleanupInterval: time.Minute,
	}
}

// NewCache creates a cache for cfg. A redis cache requires client; a nil
// client falls back to memory.
func NewCache(ctx context.Context, cfg Config, client redis.UniversalClient) (Cacher, error) {
	switch cfg.Type {
	case TypeRedis:
		if client == nil {
			break
		}
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return NewRedisCache(client, cfg.Prefix, cfg.DefaultTTL), nil
	case TypeMemory, "":
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}

	return NewMemoryCache(MemoryCacheOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: cfg.CleanupInterval,
	}), nil
}
