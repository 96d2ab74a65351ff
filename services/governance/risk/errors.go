// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import "errors"

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrEmptyContentID indicates an assessment was requested without a
	// content reference.
	ErrEmptyContentID = errors.New("content id must not be empty")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// InvalidContextError indicates malformed caller-supplied context.
//
// This is a caller bug: the single request is rejected, the process
// continues.
type InvalidContextError struct {
	// Field is the offending ContextHints field.
	Field string

	// Reason describes why the value was rejected.
	Reason string
}

// Error implements the error interface.
func (e *InvalidContextError) Error() string {
	return "invalid assessment context: " + e.Field + ": " + e.Reason
}

// ThresholdError indicates a malformed score-to-level threshold table.
//
// Threshold tables are configuration; a malformed table is fatal at
// startup, before any content is assessed.
type ThresholdError struct {
	Reason string
}

// Error implements the error interface.
func (e *ThresholdError) Error() string {
	return "invalid risk thresholds: " + e.Reason
}
