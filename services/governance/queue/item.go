// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package queue holds the moderation queue: flagged content awaiting a
// human disposition.
//
// Each Item is a small state machine:
//
//	pending --claim(reviewer)--> claimed --resolve--> resolved
//	pending --resolve--> resolved          (exception path, audited)
//
// resolved is terminal. Items are never deleted by this core; an
// external retention process purges them after the audit window.
//
// The transition rules live on the Item type so every Store
// implementation enforces the same machine.
package queue

import (
	"context"
	"time"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// =============================================================================
// Enums
// =============================================================================

// Status is the review state of a queue item.
type Status string

const (
	// StatusPending means the item awaits a reviewer.
	StatusPending Status = "pending"

	// StatusClaimed means a reviewer holds the item.
	StatusClaimed Status = "claimed"

	// StatusResolved is terminal.
	StatusResolved Status = "resolved"
)

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusClaimed, StatusResolved:
		return true
	default:
		return false
	}
}

// Resolution is the reviewer's disposition of a queue item.
type Resolution string

const (
	// ResolutionApproved releases the withheld content.
	ResolutionApproved Resolution = "approved"

	// ResolutionRejected permanently withholds the content.
	ResolutionRejected Resolution = "rejected"

	// ResolutionEscalated hands the item to a higher review tier.
	ResolutionEscalated Resolution = "escalated"
)

// Valid reports whether the resolution is a known value.
func (r Resolution) Valid() bool {
	switch r {
	case ResolutionApproved, ResolutionRejected, ResolutionEscalated:
		return true
	default:
		return false
	}
}

// =============================================================================
// Item
// =============================================================================

// Item is one piece of content awaiting human disposition.
//
// Invariants, maintained by the transition methods:
//   - ResolvedAt and ResolvedBy are set iff Status == resolved.
//   - ClaimedBy records the claimant and is never overwritten by a
//     different resolver.
type Item struct {
	// QueueID uniquely identifies this item.
	QueueID string `json:"queue_id"`

	// ContentID references the withheld content.
	ContentID string `json:"content_id"`

	// Assessment is the risk assessment that triggered enqueueing,
	// embedded as a snapshot.
	Assessment risk.Assessment `json:"assessment"`

	// Status is the current state machine position.
	Status Status `json:"status"`

	// ClaimedBy is the reviewer holding the item, if any.
	ClaimedBy string `json:"claimed_by,omitempty"`

	// ResolvedBy is the reviewer who resolved the item. It may differ
	// from ClaimedBy when a reviewer closes out a colleague's claim.
	ResolvedBy string `json:"resolved_by,omitempty"`

	// Resolution is the final disposition, set on resolve.
	Resolution Resolution `json:"resolution,omitempty"`

	// Notes carries the resolving reviewer's free-text notes.
	Notes string `json:"notes,omitempty"`

	// UnclaimedResolve marks the exception path where a reviewer
	// resolved the item without claiming it first.
	UnclaimedResolve bool `json:"unclaimed_resolve,omitempty"`

	// CreatedAt is when the item was enqueued.
	CreatedAt time.Time `json:"created_at"`

	// ResolvedAt is when the item reached the terminal state.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Claim transitions the item to claimed.
//
// Description:
//
//	Legal from pending, and idempotent when the same reviewer
//	re-claims. A claim by a different reviewer on a claimed item fails
//	with ErrAlreadyClaimed; any claim on a resolved item fails with
//	ErrAlreadyResolved.
//
// Inputs:
//
//	reviewer - Claiming reviewer identity. Must not be empty.
//	now - Claim time (unused in state, kept for symmetry with Resolve).
//
// Outputs:
//
//	error - Nil on success or idempotent re-claim.
func (i *Item) Claim(reviewer string, now time.Time) error {
	if reviewer == "" {
		return ErrEmptyReviewer
	}
	switch i.Status {
	case StatusResolved:
		return ErrAlreadyResolved
	case StatusClaimed:
		if i.ClaimedBy == reviewer {
			return nil
		}
		return ErrAlreadyClaimed
	case StatusPending:
		i.Status = StatusClaimed
		i.ClaimedBy = reviewer
		return nil
	default:
		return ErrNotFound
	}
}

// Resolve transitions the item to the terminal resolved state.
//
// Description:
//
//	Legal from pending or claimed. Resolving without a prior claim is
//	allowed but marked via UnclaimedResolve so the exception path stays
//	distinguishable in audit. ResolvedBy always names the resolver;
//	ClaimedBy keeps the claimant even when someone else resolves. A
//	resolve on a resolved item fails with ErrAlreadyResolved and must
//	not produce a new audit record.
//
// Inputs:
//
//	reviewer - Resolving reviewer identity. Must not be empty.
//	resolution - approved, rejected, or escalated.
//	notes - Optional reviewer notes.
//	now - Resolution timestamp.
//
// Outputs:
//
//	error - Nil on success.
func (i *Item) Resolve(reviewer string, resolution Resolution, notes string, now time.Time) error {
	if reviewer == "" {
		return ErrEmptyReviewer
	}
	if !resolution.Valid() {
		return ErrInvalidResolution
	}
	switch i.Status {
	case StatusResolved:
		return ErrAlreadyResolved
	case StatusPending:
		i.UnclaimedResolve = true
	case StatusClaimed:
		// A reviewer other than the claimant may still resolve.
	default:
		return ErrNotFound
	}

	i.Status = StatusResolved
	i.ResolvedBy = reviewer
	i.Resolution = resolution
	i.Notes = notes
	resolvedAt := now.UTC()
	i.ResolvedAt = &resolvedAt
	return nil
}

// =============================================================================
// Filters and Store
// =============================================================================

// Filter narrows a queue listing. Zero-value fields match everything.
type Filter struct {
	// Status matches items in exactly this state.
	Status Status

	// MinLevel matches items whose assessment level is at least this
	// severe. Use risk.LevelNone (the zero value) to match all.
	MinLevel risk.Level

	// From matches items created at or after this time.
	From time.Time

	// To matches items created strictly before this time.
	To time.Time
}

// Matches reports whether the item passes the filter.
func (f Filter) Matches(item *Item) bool {
	if f.Status != "" && item.Status != f.Status {
		return false
	}
	if item.Assessment.Level < f.MinLevel {
		return false
	}
	if !f.From.IsZero() && item.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !item.CreatedAt.Before(f.To) {
		return false
	}
	return true
}

// Store is the durable home of queue items.
//
// Claim and Resolve must be atomic check-and-set operations: two
// reviewers racing to claim the same pending item see exactly one
// winner, and the loser receives ErrAlreadyClaimed. Every successful
// claim or resolve must land together with exactly one audit record in
// the same transaction.
type Store interface {
	// Get returns the item, or ErrNotFound.
	Get(ctx context.Context, queueID string) (*Item, error)

	// Claim atomically claims a pending item for the reviewer.
	Claim(ctx context.Context, queueID, reviewer string) (*Item, error)

	// Resolve atomically resolves the item.
	Resolve(ctx context.Context, queueID, reviewer string, resolution Resolution, notes string) (*Item, error)

	// List returns items matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]Item, error)
}
