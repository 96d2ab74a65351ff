// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package risk defines the value types and scoring engine for content
// risk assessment.
//
// A scan of one piece of content produces a sequence of Signal values,
// which the Engine aggregates into a single Assessment carrying a
// continuous score (0-100) and a discrete, ordered Level. Assessments
// are immutable once created; downstream components snapshot them
// rather than re-reading.
//
// Thread Safety:
//
//	All types in this package are immutable after construction and the
//	Engine is safe for concurrent use.
package risk

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Categories
// =============================================================================

// Category classifies a risk signal by the kind of harm it indicates.
type Category string

const (
	// CategorySelfHarm covers self-harm and suicide indicators.
	CategorySelfHarm Category = "self_harm"

	// CategoryAbuse covers harassment and abusive language.
	CategoryAbuse Category = "abuse"

	// CategoryHate covers hate speech and discriminatory content.
	CategoryHate Category = "hate"

	// CategoryIllegal covers content describing illegal activity.
	CategoryIllegal Category = "illegal"

	// CategoryPIILeak covers leaked personal identifiable information.
	CategoryPIILeak Category = "pii_leak"

	// CategoryPolicyViolation covers product policy violations that are
	// not otherwise classified.
	CategoryPolicyViolation Category = "policy_violation"

	// CategoryOther covers signals outside the named categories.
	CategoryOther Category = "other"
)

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Valid reports whether the category is one of the known values.
func (c Category) Valid() bool {
	switch c {
	case CategorySelfHarm, CategoryAbuse, CategoryHate, CategoryIllegal,
		CategoryPIILeak, CategoryPolicyViolation, CategoryOther:
		return true
	default:
		return false
	}
}

// UnmarshalYAML validates the category while decoding configuration.
func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	incoming := Category(s)
	if !incoming.Valid() {
		return fmt.Errorf("invalid value for Category: %q", incoming)
	}
	*c = incoming
	return nil
}

// =============================================================================
// Levels
// =============================================================================

// Level is a discrete, totally ordered severity classification derived
// from a continuous risk score.
//
// Ordering: LevelNone < LevelLow < LevelMedium < LevelHigh < LevelCritical.
// The integer representation exists so levels can be compared with the
// usual operators; persistence and APIs use the string form.
type Level int

const (
	// LevelNone means no risk signals were observed.
	LevelNone Level = iota

	// LevelLow means signals were observed but below review thresholds.
	LevelLow

	// LevelMedium means content warrants automated scrutiny.
	LevelMedium

	// LevelHigh means content warrants human review before release.
	LevelHigh

	// LevelCritical means content must never ship without intervention.
	LevelCritical
)

// levelNames maps levels to their canonical string form.
var levelNames = map[Level]string{
	LevelNone:     "none",
	LevelLow:      "low",
	LevelMedium:   "medium",
	LevelHigh:     "high",
	LevelCritical: "critical",
}

// String returns the canonical lowercase name of the level.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes the level as its string form.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON decodes the level from its string form.
func (l *Level) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a string to a Level.
//
// Outputs:
//
//	Level - The parsed level.
//	error - Non-nil if the string is not a known level name.
func ParseLevel(s string) (Level, error) {
	for level, name := range levelNames {
		if name == s {
			return level, nil
		}
	}
	return LevelNone, fmt.Errorf("unknown risk level: %q", s)
}

// UnmarshalYAML validates the level while decoding configuration.
func (l *Level) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// =============================================================================
// Signals and Assessments
// =============================================================================

// Signal is one matched risk indicator produced by a scan.
//
// Signals are produced fresh per scan and never persisted standalone;
// they travel inside the Assessment that aggregated them.
type Signal struct {
	// Category classifies the kind of harm indicated.
	Category Category `json:"category"`

	// MatchedTerm is the lexicon term that matched. Opaque to callers;
	// never exposed to the content's subject.
	MatchedTerm string `json:"matched_term"`

	// Weight is the category-specific severity contribution.
	Weight float64 `json:"weight"`
}

// Assessment is the immutable output of the Engine for one piece of
// content.
type Assessment struct {
	// ContentID is an opaque reference to the assessed submission.
	ContentID string `json:"content_id"`

	// Signals are the matched indicators in scan order.
	Signals []Signal `json:"signals"`

	// Score is the continuous risk score in [0, 100].
	Score float64 `json:"score"`

	// Level is the discrete severity derived from Score.
	Level Level `json:"level"`

	// CreatedAt is when the assessment was produced.
	CreatedAt time.Time `json:"created_at"`
}

// ContextHints carries optional caller-supplied modifiers for scoring.
//
// The prior violation count is passed in by the caller, never fetched
// by the engine, so the engine stays pure and testable without a
// database.
type ContextHints struct {
	// ContentType identifies what kind of content is being assessed,
	// e.g. "ai_generated_report" or "user_free_text".
	ContentType string `json:"content_type"`

	// PriorViolations is the number of prior confirmed violations by
	// the same content owner. Must be >= 0.
	PriorViolations int `json:"prior_violations"`

	// BoostFactor is the per-violation multiplicative boost applied to
	// the score for repeat offenders. Zero means "use the engine
	// default". Must be >= 0.
	BoostFactor float64 `json:"boost_factor,omitempty"`
}
