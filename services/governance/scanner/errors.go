// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scanner

import "errors"

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrUnsupportedLanguage indicates no lexicon exists for the
	// requested language. The scanner never silently falls back to a
	// default lexicon: the same substring may be benign in one language
	// and a signal in another, so a fallback would misclassify risk.
	ErrUnsupportedLanguage = errors.New("no risk lexicon for language")

	// ErrNoLexicons indicates the lexicon file contained no entries.
	ErrNoLexicons = errors.New("lexicon configuration contains no lexicons")
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ConfigError indicates a malformed or missing lexicon configuration.
//
// Configuration errors are fatal at startup; when one surfaces during a
// scan (an unsupported language tag) the single request fails and the
// caller decides the conservative fallback.
type ConfigError struct {
	// Reason describes the defect.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return "scanner configuration: " + e.Reason + ": " + e.Err.Error()
	}
	return "scanner configuration: " + e.Reason
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
