// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package localization

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no entity owns a slug in a locale.
	ErrNotFound = errors.New("localization: not found")

	// ErrSlugExhausted is returned when every suffix up to MaxSlugSuffix is taken.
	ErrSlugExhausted = errors.New("localization: no free slug suffix")
)

// ConfigError reports a slug source field that the entity does not define.
type ConfigError struct {
	Kind  string
	Field string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("localization: you must define the field %s in %s", e.Field, e.Kind)
}
