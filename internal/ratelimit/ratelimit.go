// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ratelimit provides keyed request limiters: a fixed window counter
// on Redis for multi-instance deployments, an in-memory fixed window, and an
// in-memory token bucket.
package ratelimit

import (
	"context"
	"strconv"
	"time"
)

const (
	defaultKeyPrefix = "ratelimit"
	defaultWindow    = time.Minute
	windowTTLOffset  = time.Second
)

// Limiter decides whether one more request for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
}

// Config holds fixed window settings.
type Config struct {
	// Limit is the number of requests allowed per window.
	Limit int
	// Window is the fixed window length.
	Window time.Duration
	// KeyPrefix namespaces counters in shared backends.
	KeyPrefix string
}

// normalize fills zero fields. A non-positive Limit disables limiting.
func (c Config) normalize() Config {
	if c.Window <= 0 {
		c.Window = defaultWindow
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = defaultKeyPrefix
	}
	return c
}

func windowSeconds(window time.Duration) int64 {
	s := int64(window / time.Second)
	if s <= 0 {
		return 1
	}
	return s
}

// bucketKey is prefix:key:bucket where bucket numbers the current window.
func bucketKey(prefix, key string, window time.Duration, now time.Time) string {
	bucket := now.Unix() / windowSeconds(window)

	buf := make([]byte, 0, len(prefix)+len(key)+24)
	buf = append(buf, prefix...)
	buf = append(buf, ':')
	buf = append(buf, normalizeKey(key)...)
	buf = append(buf, ':')
	buf = strconv.AppendInt(buf, bucket, 10)
	return string(buf)
}

func normalizeKey(key string) string {
	if key == "" {
		return "unknown"
	}
	return key
}
