// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryLimiter is an in-process fixed window counter for single instance
// deployments. Counters of past windows are swept on access.
type MemoryLimiter struct {
	mu        sync.Mutex
	cfg       Config
	counts    map[string]int
	lastSweep int64
	now       func() time.Time
}

// NewMemoryLimiter creates an in-memory fixed window limiter.
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	return &MemoryLimiter{
		cfg:    cfg.normalize(),
		counts: make(map[string]int),
		now:    time.Now,
	}
}

// Allow counts one request for key in the current window.
func (l *MemoryLimiter) Allow(_ context.Context, key string) bool {
	if l.cfg.Limit <= 0 {
		return true
	}

	now := l.now().UTC()
	bucket := now.Unix() / windowSeconds(l.cfg.Window)
	k := bucketKey(l.cfg.KeyPrefix, key, l.cfg.Window, now)

	l.mu.Lock()
	defer l.mu.Unlock()

	if bucket != l.lastSweep {
		clear(l.counts)
		l.lastSweep = bucket
	}

	l.counts[k]++
	return l.counts[k] <= l.cfg.Limit
}

// Len returns the number of keys counted in the current window.
func (l *MemoryLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counts)
}

var _ Limiter = (*MemoryLimiter)(nil)
