// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package version provides build-time version information.
package version

import "strings"

// Info contains build-time version information injected via ldflags.
type Info struct {
	Version   string // Semantic version from git tags (e.g., "v1.2.3")
	GitCommit string // Short git commit hash (e.g., "abc1234")
	BuildTime string // Build timestamp in RFC3339 format
}

// String formats the version line printed by -version. Missing values read
// as "dev" and "unknown".
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = "dev"
	}

	var b strings.Builder
	b.WriteString("ocms ")
	b.WriteString(v)
	b.WriteString(" (commit ")
	b.WriteString(orUnknown(i.GitCommit))
	b.WriteString(", built ")
	b.WriteString(orUnknown(i.BuildTime))
	b.WriteString(")")
	return b.String()
}

// LogAttrs returns the fields logged at startup.
func (i Info) LogAttrs() []any {
	return []any{"version", i.Version, "commit", i.GitCommit, "built", i.BuildTime}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
