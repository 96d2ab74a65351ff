// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decision

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

func TestRetryingCommitter_RetriesAuditCommit(t *testing.T) {
	failures := 2
	mock := &MockCommitter{
		AuditFunc: func(ctx context.Context, record audit.Record) error {
			if failures > 0 {
				failures--
				return errors.New("transient store failure")
			}
			return nil
		},
	}
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "test_commit_retries"})
	committer := NewRetryingCommitter(mock, slog.Default()).WithRetryCounter(counter)

	record := audit.NewRecord(audit.ActorSystem, audit.ActionAutoBlock, "content-1",
		audit.Snapshot{Score: 90, Level: risk.LevelCritical}, "", time.Now())

	if err := committer.CommitAudit(context.Background(), record); err != nil {
		t.Fatalf("CommitAudit failed despite retries: %v", err)
	}
	if got := len(mock.AuditCalls); got != 3 {
		t.Errorf("commit attempts = %d, want 3", got)
	}
	if got := testutil.ToFloat64(counter); got != 2 {
		t.Errorf("retry counter = %v, want 2", got)
	}
}

func TestRetryingCommitter_RetriesEnqueueCommit(t *testing.T) {
	failures := 1
	mock := &MockCommitter{
		EnqueueFunc: func(ctx context.Context, item *queue.Item, record audit.Record) error {
			if failures > 0 {
				failures--
				return errors.New("transient store failure")
			}
			return nil
		},
	}
	committer := NewRetryingCommitter(mock, slog.Default())

	item := &queue.Item{
		QueueID:   "q-1",
		ContentID: "content-2",
		Status:    queue.StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	record := audit.NewRecord(audit.ActorSystem, audit.ActionEnqueue, item.ContentID,
		audit.Snapshot{Score: 55, Level: risk.LevelHigh}, "", time.Now())

	if err := committer.CommitEnqueue(context.Background(), item, record); err != nil {
		t.Fatalf("CommitEnqueue failed despite retries: %v", err)
	}
	if got := len(mock.EnqueueCalls); got != 2 {
		t.Errorf("commit attempts = %d, want 2", got)
	}
}

func TestRetryingCommitter_GivesUpAfterMaxElapsed(t *testing.T) {
	mock := &MockCommitter{
		AuditFunc: func(ctx context.Context, record audit.Record) error {
			return errors.New("persistent store failure")
		},
	}
	committer := NewRetryingCommitter(mock, slog.Default())
	committer.maxElapsed = 100 * time.Millisecond

	record := audit.NewRecord(audit.ActorSystem, audit.ActionAutoAllow, "content-3",
		audit.Snapshot{}, "", time.Now())

	if err := committer.CommitAudit(context.Background(), record); err == nil {
		t.Fatal("CommitAudit succeeded, want error after retries exhausted")
	}
	if got := len(mock.AuditCalls); got < 2 {
		t.Errorf("commit attempts = %d, want at least 2", got)
	}
}

func TestDecideThroughRetryingCommitter(t *testing.T) {
	failures := 1
	mock := &MockCommitter{
		AuditFunc: func(ctx context.Context, record audit.Record) error {
			if failures > 0 {
				failures--
				return errors.New("transient store failure")
			}
			return nil
		},
	}
	engine := testEngine(t, NewRetryingCommitter(mock, slog.Default()))

	outcome, err := engine.Decide(context.Background(),
		testAssessment("content-4", 0, risk.LevelNone), "user_free_text")
	if err != nil {
		t.Fatalf("Decide failed despite committer retries: %v", err)
	}
	if outcome.Action != policy.ActionAllow {
		t.Errorf("action = %s, want allow", outcome.Action)
	}
	if got := len(mock.AuditCalls); got != 2 {
		t.Errorf("commit attempts = %d, want 2", got)
	}
}
