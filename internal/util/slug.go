// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation and validation with Unicode transliteration support.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches anything that is not a lowercase letter, digit, hyphen or whitespace
	slugRegex = regexp.MustCompile(`[^a-z0-9\s-]+`)
	// separatorRegex matches runs of hyphens and whitespace
	separatorRegex = regexp.MustCompile(`[\s-]+`)
)

// Slugify converts a string to a URL-friendly slug.
// Accents are stripped, non-Latin scripts are transliterated to ASCII,
// underscores become hyphens and "@" becomes "-at-". The result is lowercase
// and contains only letters, digits and single hyphens.
func Slugify(s string) string {
	// Decompose and drop combining marks before transliteration
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	result = unidecode.Unidecode(result)

	result = strings.ReplaceAll(result, "_", "-")
	result = strings.ReplaceAll(result, "@", "-at-")
	result = strings.ToLower(result)

	result = slugRegex.ReplaceAllString(result, "")
	result = separatorRegex.ReplaceAllString(result, "-")

	return strings.Trim(result, "-")
}

// IsValidSlug checks if a string is a valid slug format.
func IsValidSlug(s string) bool {
	if s == "" {
		return false
	}

	// Check if it only contains lowercase letters, numbers, and hyphens
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-') {
			return false
		}
	}

	// Check that it doesn't start or end with a hyphen
	if s[0] == '-' || s[len(s)-1] == '-' {
		return false
	}

	// Check for consecutive hyphens
	if strings.Contains(s, "--") {
		return false
	}

	return true
}
