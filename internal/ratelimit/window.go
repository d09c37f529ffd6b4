// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package ratelimit

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// WindowLimiter is a fixed window counter stored in Redis. Backend errors
// let the request through.
type WindowLimiter struct {
	client redis.UniversalClient
	cfg    Config
	now    func() time.Time
}

// NewWindowLimiter creates a Redis backed fixed window limiter.
func NewWindowLimiter(client redis.UniversalClient, cfg Config) *WindowLimiter {
	return &WindowLimiter{
		client: client,
		cfg:    cfg.normalize(),
		now:    time.Now,
	}
}

// Allow increments the counter for key in the current window.
func (l *WindowLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil || l.cfg.Limit <= 0 {
		return true
	}

	k := bucketKey(l.cfg.KeyPrefix, key, l.cfg.Window, l.now().UTC())
	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		slog.Warn("rate limiter backend unavailable", "error", err)
		return true
	}

	if count == 1 {
		_ = l.client.Expire(ctx, k, l.cfg.Window+windowTTLOffset).Err()
	}

	return count <= int64(l.cfg.Limit)
}

var _ Limiter = (*WindowLimiter)(nil)
