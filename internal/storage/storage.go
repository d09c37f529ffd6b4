// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package storage provides the byte-addressable content store that source
// images are read from. It is backed by a gocloud.dev bucket so the same code
// serves a local directory, memory (tests) or any cloud provider URL.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/memblob" // mem:// scheme
	"gocloud.dev/gcerrors"
)

// ErrNotFound is returned when a key does not resolve to an object.
var ErrNotFound = errors.New("storage: object not found")

// Store is a content store keyed by opaque string paths.
type Store struct {
	bucket *blob.Bucket
}

// Open opens the bucket at url. file:// directories are created when missing.
func Open(ctx context.Context, bucketURL string) (*Store, error) {
	if dir, ok := fileDir(bucketURL); ok {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating media directory: %w", err)
		}
		bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{NoTempDir: true})
		if err != nil {
			return nil, fmt.Errorf("opening media bucket: %w", err)
		}
		return New(bucket), nil
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("opening media bucket: %w", err)
	}
	return New(bucket), nil
}

// New wraps an already opened bucket.
func New(bucket *blob.Bucket) *Store {
	return &Store{bucket: bucket}
}

func fileDir(bucketURL string) (string, bool) {
	if !strings.HasPrefix(bucketURL, "file://") {
		return "", false
	}
	u, err := url.Parse(bucketURL)
	if err != nil {
		return "", false
	}
	dir := u.Host + u.Path
	if dir == "" {
		return "", false
	}
	return dir, true
}

// Open returns a reader for key. Callers must close it.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	r, err := s.bucket.NewReader(ctx, cleanKey(key), nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound || gcerrors.Code(err) == gcerrors.InvalidArgument {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading %s: %w", key, err)
	}
	return r, nil
}

// Exists reports whether key resolves to an object.
func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := s.bucket.Exists(ctx, cleanKey(key))
	if err != nil && gcerrors.Code(err) == gcerrors.InvalidArgument {
		return false, nil
	}
	return ok, err
}

// Put writes data under key.
func (s *Store) Put(ctx context.Context, key string, data []byte, contentType string) error {
	opts := &blob.WriterOptions{ContentType: contentType}
	if err := s.bucket.WriteAll(ctx, cleanKey(key), data, opts); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, cleanKey(key))
	if err != nil && gcerrors.Code(err) != gcerrors.NotFound {
		return fmt.Errorf("deleting %s: %w", key, err)
	}
	return nil
}

// Close releases the bucket.
func (s *Store) Close() error {
	return s.bucket.Close()
}

func cleanKey(key string) string {
	return strings.TrimPrefix(key, "/")
}
