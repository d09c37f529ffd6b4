// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package imaging

import (
	"regexp"
	"strings"
)

const (
	// MaxDimension bounds crop rectangles and scale targets.
	MaxDimension = 1920
	// DefaultQuality is used when q is absent or not a number.
	DefaultQuality = 80
	// DefaultFormat is used when fm is absent.
	DefaultFormat = "jpg"
)

var cropSeparator = regexp.MustCompile(`[,-]`)

// Rect is a crop rectangle: size first, then offset.
type Rect struct {
	Width  int
	Height int
	X      int
	Y      int
}

// Options are the parsed transform options.
type Options struct {
	Width   int
	Height  int
	Crop    *Rect
	Quality int
	Format  string
}

// ParseOptions parses a comma separated list of key=value tokens. Tokens
// without "=" are skipped, unknown keys ignored and a repeated key keeps its
// last value. Because the list separator is a comma, crop rectangles in an
// option string must use "-" (crop=W-H-X-Y).
func ParseOptions(s string) Options {
	raw := make(map[string]string)
	for _, token := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		raw[key] = value
	}

	opts := Options{
		Quality: DefaultQuality,
		Format:  DefaultFormat,
	}

	if v, ok := raw["w"]; ok {
		opts.Width = positive(v)
	}
	if v, ok := raw["h"]; ok {
		opts.Height = positive(v)
	}
	if v, ok := raw["crop"]; ok {
		opts.Crop = ParseCrop(v)
	}
	if v, ok := raw["q"]; ok {
		if q, ok := leadingInt(v); ok {
			opts.Quality = min(max(q, 0), 100)
		}
	}
	if v, ok := raw["fm"]; ok && v != "" {
		opts.Format = strings.ToLower(v)
	}

	return opts
}

// ParseCrop parses "W,H,X,Y" or "W-H-X-Y". It returns nil when fewer than
// four parts are given, the size is not positive, an offset is negative or
// the size exceeds MaxDimension. Non numeric parts count as 0.
func ParseCrop(s string) *Rect {
	parts := cropSeparator.Split(s, -1)
	if len(parts) < 4 {
		return nil
	}

	var n [4]int
	for i := range n {
		n[i], _ = leadingInt(parts[i])
	}

	r := Rect{Width: n[0], Height: n[1], X: n[2], Y: n[3]}
	if r.Width <= 0 || r.Height <= 0 || r.X < 0 || r.Y < 0 ||
		r.Width > MaxDimension || r.Height > MaxDimension {
		return nil
	}
	return &r
}

// HasScale reports whether a target width or height was given.
func (o Options) HasScale() bool {
	return o.Width > 0 || o.Height > 0
}

func positive(s string) int {
	n, _ := leadingInt(s)
	return max(n, 0)
}

// leadingInt reads an optionally signed run of leading digits, skipping
// leading spaces, the way "12px" reads as 12. ok is false when there are no
// digits.
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n, digits := 0, 0
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			break
		}
		if n < 1<<30 {
			n = n*10 + int(c-'0')
		}
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}
