// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package decision turns a risk assessment into a disposition: allow,
// block, or enqueue for human review.
//
// The engine itself holds no policy. It looks the action up in the
// policy table, applies the one hard-coded override (critical content
// is never released automatically, whatever the table says), and
// delegates all side effects to a Committer so the queue write and the
// audit record stay atomic.
//
// The engine fails closed: a policy gap, or a committer failure, means
// the content is not released.
package decision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// Committer applies a decision's side effects durably.
//
// CommitEnqueue must write the queue item and its audit record in one
// atomic unit, and must be idempotent per (content id, decision
// timestamp) so a replay after a partial failure cannot duplicate the
// item.
type Committer interface {
	// CommitEnqueue atomically persists a new queue item together with
	// its enqueue audit record.
	CommitEnqueue(ctx context.Context, item *queue.Item, record audit.Record) error

	// CommitAudit durably persists the audit record for an automated
	// allow or block.
	CommitAudit(ctx context.Context, record audit.Record) error
}

// Outcome is the result of dispositioning one assessment.
type Outcome struct {
	// Action is the applied disposition.
	Action policy.Action

	// QueueID is set when Action is enqueue.
	QueueID string
}

// Engine dispositions assessments against the active policy table.
//
// Thread Safety: Safe for concurrent use; all mutable state lives in
// the Provider and Committer.
type Engine struct {
	provider  policy.Provider
	committer Committer
	logger    *slog.Logger
	now       func() time.Time
}

// NewEngine creates a decision engine.
//
// Inputs:
//
//	provider - Source of the active policy table. Must not be nil.
//	committer - Side effect sink. Must not be nil.
//	logger - Logger for policy gaps and overrides. Must not be nil.
func NewEngine(provider policy.Provider, committer Committer, logger *slog.Logger) *Engine {
	return &Engine{
		provider:  provider,
		committer: committer,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the engine's clock. Intended for tests.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Decide dispositions one assessment.
//
// Description:
//
//	Looks up the action for (assessment level, content type) in the
//	active policy table and commits the matching side effects. Content
//	at LevelCritical is never released automatically: if the table
//	somehow maps it to allow, the engine coerces the action to block
//	and logs loudly. A table gap fails the request rather than
//	defaulting to allow.
//
//	Every path that returns a nil error has already durably written
//	exactly one audit record. If the commit fails, the decision fails
//	and the content stays withheld.
//
// Inputs:
//
//	ctx - Request context.
//	assessment - The scored assessment. Must not be nil.
//	contentType - The content type being dispositioned.
//
// Outputs:
//
//	*Outcome - The applied action, with the queue id when enqueued.
//	error - *policy.GapError on a table gap, or the commit error.
func (e *Engine) Decide(ctx context.Context, assessment *risk.Assessment, contentType string) (*Outcome, error) {
	if assessment == nil {
		return nil, errors.New("nil assessment")
	}

	action, err := e.provider.Current().Lookup(assessment.Level, contentType)
	if err != nil {
		var gap *policy.GapError
		if errors.As(err, &gap) {
			e.logger.Error("policy gap, failing closed",
				"content_id", assessment.ContentID,
				"level", assessment.Level.String(),
				"content_type", contentType,
			)
		}
		return nil, err
	}

	if assessment.Level == risk.LevelCritical && action == policy.ActionAllow {
		e.logger.Error("policy table maps critical to allow, overriding to block",
			"content_id", assessment.ContentID,
			"content_type", contentType,
		)
		action = policy.ActionBlock
	}

	now := e.now()
	snapshot := audit.SnapshotOf(assessment)

	switch action {
	case policy.ActionAllow:
		record := audit.NewRecord(audit.ActorSystem, audit.ActionAutoAllow,
			assessment.ContentID, snapshot, "", now)
		if err := e.committer.CommitAudit(ctx, record); err != nil {
			return nil, fmt.Errorf("commit allow audit for %s: %w", assessment.ContentID, err)
		}
		return &Outcome{Action: policy.ActionAllow}, nil

	case policy.ActionBlock:
		record := audit.NewRecord(audit.ActorSystem, audit.ActionAutoBlock,
			assessment.ContentID, snapshot, "", now)
		if err := e.committer.CommitAudit(ctx, record); err != nil {
			return nil, fmt.Errorf("commit block audit for %s: %w", assessment.ContentID, err)
		}
		return &Outcome{Action: policy.ActionBlock}, nil

	default:
		item := &queue.Item{
			QueueID:    uuid.NewString(),
			ContentID:  assessment.ContentID,
			Assessment: *assessment,
			Status:     queue.StatusPending,
			CreatedAt:  now.UTC(),
		}
		record := audit.NewRecord(audit.ActorSystem, audit.ActionEnqueue,
			assessment.ContentID, snapshot, "", now)
		if err := e.committer.CommitEnqueue(ctx, item, record); err != nil {
			return nil, fmt.Errorf("commit enqueue for %s: %w", assessment.ContentID, err)
		}
		return &Outcome{Action: policy.ActionEnqueue, QueueID: item.QueueID}, nil
	}
}
