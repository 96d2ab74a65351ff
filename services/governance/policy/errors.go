// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package policy

import (
	"errors"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrEmptyTable indicates the policy file contained no rules.
	ErrEmptyTable = errors.New("policy table contains no rules")

	// ErrCriticalAllow indicates a policy file tried to map critical
	// content to allow. Such tables are rejected at load; the decision
	// engine additionally enforces the same invariant at decide time.
	ErrCriticalAllow = errors.New("policy maps critical level to allow")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ConfigError indicates a malformed policy configuration.
type ConfigError struct {
	// Reason describes the defect.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return "policy configuration: " + e.Reason + ": " + e.Err.Error()
	}
	return "policy configuration: " + e.Reason
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// GapError indicates a (level, content type) pair with no configured
// action.
//
// A gap is a configuration defect discovered at decision time. It is
// fatal for the request and loudly logged: silently defaulting to
// allow would be a moderation bypass, the exact failure mode this
// subsystem exists to prevent.
type GapError struct {
	Level       risk.Level
	ContentType string
}

// Error implements the error interface.
func (e *GapError) Error() string {
	return "policy gap: no action configured for level " + e.Level.String() +
		" and content type " + e.ContentType
}
