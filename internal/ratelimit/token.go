// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultCleanupInterval = 5 * time.Minute
	defaultEntryTTL        = 10 * time.Minute
)

type tokenEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64
}

// TokenLimiter is a per-key token bucket refilling Limit tokens per Window
// with a burst of Limit. It smooths traffic instead of resetting at window
// boundaries.
type TokenLimiter struct {
	mu      sync.RWMutex
	entries map[string]*tokenEntry
	limit   rate.Limit
	burst   int

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTokenLimiter creates a token bucket limiter and starts idle key cleanup.
// Call Close to stop it.
func NewTokenLimiter(cfg Config) *TokenLimiter {
	cfg = cfg.normalize()
	l := &TokenLimiter{
		entries: make(map[string]*tokenEntry),
		limit:   rate.Limit(float64(cfg.Limit) / cfg.Window.Seconds()),
		burst:   cfg.Limit,
		stopCh:  make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

// Allow consumes a token for key.
func (l *TokenLimiter) Allow(_ context.Context, key string) bool {
	if l.burst <= 0 {
		return true
	}
	entry := l.entry(normalizeKey(key))
	entry.lastAccess.Store(time.Now().UnixNano())
	return entry.limiter.Allow()
}

// Close stops the cleanup goroutine.
func (l *TokenLimiter) Close() error {
	l.stopOnce.Do(func() { close(l.stopCh) })
	return nil
}

func (l *TokenLimiter) entry(key string) *tokenEntry {
	l.mu.RLock()
	e, ok := l.entries[key]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.entries[key]; ok {
		return e
	}
	e = &tokenEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
	l.entries[key] = e
	return e
}

func (l *TokenLimiter) cleanupLoop() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.removeIdle(time.Now().Add(-defaultEntryTTL))
		case <-l.stopCh:
			return
		}
	}
}

func (l *TokenLimiter) removeIdle(cutoff time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastAccess.Load() < cutoff.UnixNano() {
			delete(l.entries, key)
		}
	}
}

var _ Limiter = (*TokenLimiter)(nil)
