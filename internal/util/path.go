// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"path"
	"strings"
)

// ErrInvalidKey is returned for object keys that are empty or escape the
// store root.
var ErrInvalidKey = errors.New("invalid object key")

// CleanObjectKey normalises a slash separated object key taken from a URL.
// Leading slashes are dropped; keys that are empty, contain NUL bytes or
// traverse upwards are rejected.
func CleanObjectKey(key string) (string, error) {
	if key == "" || strings.ContainsRune(key, 0) || ContainsPathTraversal(key) {
		return "", ErrInvalidKey
	}

	cleaned := strings.TrimLeft(path.Clean("/"+key), "/")
	if cleaned == "" || cleaned == "." {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// ContainsPathTraversal checks if a slash separated path contains a ".."
// segment.
func ContainsPathTraversal(p string) bool {
	for _, segment := range strings.Split(strings.ReplaceAll(p, "\\", "/"), "/") {
		if segment == ".." {
			return true
		}
	}
	return false
}
