// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package risk

import (
	"sort"
	"time"
)

// =============================================================================
// Thresholds
// =============================================================================

// Thresholds maps a continuous score to a discrete Level.
//
// Each field is the minimum score (inclusive) for that level. The table
// must be strictly ascending so the mapping is monotonic: a higher
// score can never yield a lower level. Scores below LowAt map to
// LevelNone.
//
// Thresholds are configuration, not logic: they can be tuned without
// touching the aggregation algorithm.
type Thresholds struct {
	LowAt      float64 `yaml:"low_at" json:"low_at"`
	MediumAt   float64 `yaml:"medium_at" json:"medium_at"`
	HighAt     float64 `yaml:"high_at" json:"high_at"`
	CriticalAt float64 `yaml:"critical_at" json:"critical_at"`
}

// DefaultThresholds returns the production threshold table.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LowAt:      10,
		MediumAt:   25,
		HighAt:     50,
		CriticalAt: 75,
	}
}

// Validate checks that the table is strictly ascending and within range.
//
// Outputs:
//
//	error - *ThresholdError if the table is malformed, nil otherwise.
func (t Thresholds) Validate() error {
	steps := []float64{t.LowAt, t.MediumAt, t.HighAt, t.CriticalAt}
	if !sort.Float64sAreSorted(steps) || t.LowAt == t.MediumAt ||
		t.MediumAt == t.HighAt || t.HighAt == t.CriticalAt {
		return &ThresholdError{Reason: "thresholds must be strictly ascending"}
	}
	if t.LowAt <= 0 {
		return &ThresholdError{Reason: "low_at must be positive"}
	}
	if t.CriticalAt > 100 {
		return &ThresholdError{Reason: "critical_at must not exceed 100"}
	}
	return nil
}

// LevelFor maps a score to its Level under this table.
func (t Thresholds) LevelFor(score float64) Level {
	switch {
	case score >= t.CriticalAt:
		return LevelCritical
	case score >= t.HighAt:
		return LevelHigh
	case score >= t.MediumAt:
		return LevelMedium
	case score >= t.LowAt:
		return LevelLow
	default:
		return LevelNone
	}
}

// =============================================================================
// Engine Configuration
// =============================================================================

const (
	// defaultBoostFactor is the per-violation score multiplier increment
	// applied for repeat offenders.
	defaultBoostFactor = 0.1

	// maxBoostViolations caps how many prior violations contribute to
	// the boost.
	maxBoostViolations = 5

	// maxScore is the upper bound of the continuous score range.
	maxScore = 100.0

	// defaultCategoryCap bounds categories without an explicit cap.
	defaultCategoryCap = 25.0
)

// EngineConfig configures score aggregation.
type EngineConfig struct {
	// Thresholds is the score-to-level mapping table.
	Thresholds Thresholds `yaml:"thresholds"`

	// CategoryCaps bounds the total contribution of each category so a
	// single noisy lexicon cannot alone drive the score to critical.
	// Categories without an entry use a conservative default cap.
	CategoryCaps map[Category]float64 `yaml:"category_caps"`
}

// DefaultEngineConfig returns the production scoring configuration.
//
// The caps keep any one category from contributing more than roughly
// half of the critical threshold on its own; self-harm and hate carry
// the highest caps because their individual terms carry the highest
// weights.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Thresholds: DefaultThresholds(),
		CategoryCaps: map[Category]float64{
			CategorySelfHarm:        40,
			CategoryHate:            40,
			CategoryAbuse:           35,
			CategoryIllegal:         35,
			CategoryPIILeak:         25,
			CategoryPolicyViolation: 20,
			CategoryOther:           20,
		},
	}
}

// Validate checks the configuration.
func (c EngineConfig) Validate() error {
	if err := c.Thresholds.Validate(); err != nil {
		return err
	}
	for category, limit := range c.CategoryCaps {
		if !category.Valid() {
			return &ThresholdError{Reason: "unknown category in caps: " + string(category)}
		}
		if limit <= 0 {
			return &ThresholdError{Reason: "category cap must be positive: " + string(category)}
		}
	}
	return nil
}

// =============================================================================
// Engine
// =============================================================================

// Engine aggregates scan signals into a risk Assessment.
//
// The engine is pure with respect to its explicit inputs: it holds no
// hidden counters and performs no I/O. The clock is injected so tests
// can pin assessment timestamps.
//
// Thread Safety: Engine is safe for concurrent use; its state is
// read-only after construction.
type Engine struct {
	cfg EngineConfig
	now func() time.Time
}

// NewEngine creates an Engine with the given configuration.
//
// Description:
//
//	Validates the configuration eagerly so threshold defects surface at
//	startup, never mid-request.
//
// Inputs:
//
//	cfg - Scoring configuration. Use DefaultEngineConfig() for defaults.
//
// Outputs:
//
//	*Engine - The engine, ready for concurrent use.
//	error - Non-nil if the configuration is malformed.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg, now: time.Now}, nil
}

// WithClock replaces the engine's clock. Intended for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Assess aggregates signals and context into an Assessment.
//
// Description:
//
//	Sums signal weights with a per-category cap, applies the repeat
//	offender boost multiplicatively, clamps the score to [0, 100], and
//	maps it to a Level through the threshold table. Zero signals yield
//	score 0 and LevelNone; that is a normal outcome, not an error.
//
// Inputs:
//
//	contentID - Opaque reference to the assessed content. Required.
//	signals - Matched indicators in scan order. May be empty.
//	hints - Caller-supplied context modifiers.
//
// Outputs:
//
//	*Assessment - The immutable assessment.
//	error - ErrEmptyContentID or *InvalidContextError on caller bugs.
func (e *Engine) Assess(contentID string, signals []Signal, hints ContextHints) (*Assessment, error) {
	if contentID == "" {
		return nil, ErrEmptyContentID
	}
	if err := e.validateHints(hints); err != nil {
		return nil, err
	}

	// Per-category accumulation with caps. Duplicate terms were already
	// deduplicated by the scanner; distinct terms in one category all
	// count, up to the category cap.
	perCategory := make(map[Category]float64, len(signals))
	for _, sig := range signals {
		perCategory[sig.Category] += sig.Weight
	}

	var score float64
	for category, sum := range perCategory {
		limit, ok := e.cfg.CategoryCaps[category]
		if !ok {
			limit = defaultCategoryCap
		}
		if sum > limit {
			sum = limit
		}
		score += sum
	}

	// Repeat offender boost, bounded so history can raise severity but
	// never by itself without fresh signals (score 0 stays 0).
	boost := hints.BoostFactor
	if boost == 0 {
		boost = defaultBoostFactor
	}
	violations := hints.PriorViolations
	if violations > maxBoostViolations {
		violations = maxBoostViolations
	}
	score *= 1 + boost*float64(violations)

	if score > maxScore {
		score = maxScore
	}

	// Copy signals so the assessment owns its slice.
	owned := make([]Signal, len(signals))
	copy(owned, signals)

	return &Assessment{
		ContentID: contentID,
		Signals:   owned,
		Score:     score,
		Level:     e.cfg.Thresholds.LevelFor(score),
		CreatedAt: e.now().UTC(),
	}, nil
}

// validateHints rejects malformed context at the boundary, before any
// scoring math runs.
func (e *Engine) validateHints(hints ContextHints) error {
	if hints.PriorViolations < 0 {
		return &InvalidContextError{
			Field:  "prior_violations",
			Reason: "must not be negative",
		}
	}
	if hints.BoostFactor < 0 {
		return &InvalidContextError{
			Field:  "boost_factor",
			Reason: "must not be negative",
		}
	}
	if hints.ContentType == "" {
		return &InvalidContextError{
			Field:  "content_type",
			Reason: "must not be empty",
		}
	}
	return nil
}
