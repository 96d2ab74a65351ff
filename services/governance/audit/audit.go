// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package audit records every moderation decision, automated or human,
// in an append-only log.
//
// The compliance requirement this package serves: every disposition of
// a piece of content must be reconstructable from the audit log alone.
// Records are therefore written synchronously with the decision that
// produced them, carry a copied assessment snapshot (so later rescans
// cannot retroactively alter history), and are never mutated or
// deleted once written. Retention and purge are external, time-based
// processes, not part of this core.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// =============================================================================
// Actors and Actions
// =============================================================================

// Actor identifies who took an audited action: the system itself, or a
// reviewer identity supplied by the identity layer.
type Actor string

// ActorSystem is the actor for automated pipeline decisions.
const ActorSystem Actor = "system"

// Action is the audited operation type.
type Action string

const (
	// ActionAutoAllow records an automated release.
	ActionAutoAllow Action = "auto_allow"

	// ActionAutoBlock records an automated refusal.
	ActionAutoBlock Action = "auto_block"

	// ActionEnqueue records content entering the moderation queue.
	ActionEnqueue Action = "enqueue"

	// ActionClaim records a reviewer claiming a queue item.
	ActionClaim Action = "claim"

	// ActionApprove records a reviewer releasing withheld content.
	ActionApprove Action = "approve"

	// ActionReject records a reviewer refusing withheld content.
	ActionReject Action = "reject"

	// ActionEscalate records a reviewer escalating a queue item.
	ActionEscalate Action = "escalate"
)

// Valid reports whether the action is a known value.
func (a Action) Valid() bool {
	switch a {
	case ActionAutoAllow, ActionAutoBlock, ActionEnqueue,
		ActionClaim, ActionApprove, ActionReject, ActionEscalate:
		return true
	default:
		return false
	}
}

// =============================================================================
// Records
// =============================================================================

// Snapshot is the assessment state copied into a record at the time of
// the action. A copy, never a reference: later rescans must not change
// what the log says happened.
type Snapshot struct {
	// Score is the continuous risk score at action time.
	Score float64 `json:"score"`

	// Level is the discrete severity at action time.
	Level risk.Level `json:"level"`
}

// SnapshotOf copies the audit-relevant fields of an assessment.
func SnapshotOf(a *risk.Assessment) Snapshot {
	if a == nil {
		return Snapshot{}
	}
	return Snapshot{Score: a.Score, Level: a.Level}
}

// Record is one append-only log entry.
type Record struct {
	// RecordID uniquely identifies this entry.
	RecordID string `json:"record_id"`

	// Actor is who performed the action.
	Actor Actor `json:"actor"`

	// Action is what was done.
	Action Action `json:"action"`

	// ContentID references the affected content.
	ContentID string `json:"content_id"`

	// Assessment is the copied score/level at action time.
	Assessment Snapshot `json:"assessment"`

	// Timestamp is when the action happened.
	Timestamp time.Time `json:"timestamp"`

	// Notes carries optional free text, e.g. reviewer notes or the
	// marker for an unclaimed resolve.
	Notes string `json:"notes,omitempty"`
}

// NewRecord creates a record with a fresh id and the given timestamp.
func NewRecord(actor Actor, action Action, contentID string, snapshot Snapshot, notes string, now time.Time) Record {
	return Record{
		RecordID:   uuid.NewString(),
		Actor:      actor,
		Action:     action,
		ContentID:  contentID,
		Assessment: snapshot,
		Timestamp:  now.UTC(),
		Notes:      notes,
	}
}

// =============================================================================
// Log
// =============================================================================

// Log is an append-only record store.
//
// Deliberately narrow: no update, no delete. Callers in this core can
// only add records and export ranges; anything else would undermine
// the compliance invariant.
type Log interface {
	// Append durably writes one record.
	Append(ctx context.Context, record Record) error

	// Export returns records with Timestamp in [from, to), ordered by
	// timestamp ascending. A zero "to" means no upper bound.
	Export(ctx context.Context, from, to time.Time) ([]Record, error)
}
