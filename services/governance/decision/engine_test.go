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

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

const testPolicy = `
policies:
  - level: none
    content_type: user_free_text
    action: allow
  - level: low
    content_type: user_free_text
    action: allow
  - level: medium
    content_type: user_free_text
    action: enqueue
  - level: high
    content_type: user_free_text
    action: enqueue
  - level: critical
    content_type: user_free_text
    action: block
`

func testEngine(t *testing.T, committer Committer) *Engine {
	t.Helper()
	table, err := policy.Load([]byte(testPolicy))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return NewEngine(policy.NewStaticProvider(table), committer, slog.Default())
}

func testAssessment(contentID string, score float64, level risk.Level) *risk.Assessment {
	return &risk.Assessment{
		ContentID: contentID,
		Score:     score,
		Level:     level,
		CreatedAt: time.Now().UTC(),
	}
}

func TestEngine_AllowWritesOneAuditRecord(t *testing.T) {
	committer := &MockCommitter{}
	engine := testEngine(t, committer)

	outcome, err := engine.Decide(context.Background(),
		testAssessment("content-1", 0, risk.LevelNone), "user_free_text")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if outcome.Action != policy.ActionAllow {
		t.Errorf("action = %s, want allow", outcome.Action)
	}
	if len(committer.AuditCalls) != 1 {
		t.Fatalf("audit calls = %d, want 1", len(committer.AuditCalls))
	}
	if got := committer.AuditCalls[0]; got.Action != audit.ActionAutoAllow || got.Actor != audit.ActorSystem {
		t.Errorf("record = %+v, want system auto_allow", got)
	}
	if len(committer.EnqueueCalls) != 0 {
		t.Errorf("enqueue calls = %d, want 0", len(committer.EnqueueCalls))
	}
}

func TestEngine_BlockWritesOneAuditRecord(t *testing.T) {
	committer := &MockCommitter{}
	engine := testEngine(t, committer)

	outcome, err := engine.Decide(context.Background(),
		testAssessment("content-2", 90, risk.LevelCritical), "user_free_text")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if outcome.Action != policy.ActionBlock {
		t.Errorf("action = %s, want block", outcome.Action)
	}
	if len(committer.AuditCalls) != 1 || committer.AuditCalls[0].Action != audit.ActionAutoBlock {
		t.Errorf("audit calls = %+v, want one auto_block", committer.AuditCalls)
	}
}

func TestEngine_EnqueueBuildsPendingItem(t *testing.T) {
	committer := &MockCommitter{}
	engine := testEngine(t, committer)

	assessment := testAssessment("content-3", 55, risk.LevelHigh)
	outcome, err := engine.Decide(context.Background(), assessment, "user_free_text")
	if err != nil {
		t.Fatalf("Decide failed: %v", err)
	}
	if outcome.Action != policy.ActionEnqueue {
		t.Errorf("action = %s, want enqueue", outcome.Action)
	}
	if len(committer.EnqueueCalls) != 1 {
		t.Fatalf("enqueue calls = %d, want 1", len(committer.EnqueueCalls))
	}

	call := committer.EnqueueCalls[0]
	if call.Item.QueueID == "" || call.Item.QueueID != outcome.QueueID {
		t.Errorf("queue id %q does not match outcome %q", call.Item.QueueID, outcome.QueueID)
	}
	if call.Item.Status != queue.StatusPending {
		t.Errorf("status = %s, want pending", call.Item.Status)
	}
	if call.Item.Assessment.Score != 55 {
		t.Errorf("embedded assessment score = %v, want 55", call.Item.Assessment.Score)
	}
	if call.Record.Action != audit.ActionEnqueue {
		t.Errorf("record action = %s, want enqueue", call.Record.Action)
	}

	// Queue item and audit record arrive in one call, which the real
	// committer writes in one transaction.
	if len(committer.AuditCalls) != 0 {
		t.Errorf("separate audit calls = %d, want 0", len(committer.AuditCalls))
	}
}

func TestEngine_PolicyGapFailsClosed(t *testing.T) {
	committer := &MockCommitter{}
	engine := testEngine(t, committer)

	_, err := engine.Decide(context.Background(),
		testAssessment("content-4", 55, risk.LevelHigh), "unknown_surface")
	var gap *policy.GapError
	if !errors.As(err, &gap) {
		t.Fatalf("error = %v, want *policy.GapError", err)
	}
	if len(committer.AuditCalls) != 0 || len(committer.EnqueueCalls) != 0 {
		t.Error("failed decision must not commit side effects")
	}
}

func TestEngine_CriticalNeverAllowed(t *testing.T) {
	// Property check over every content type the shipped table covers:
	// critical content never comes back as allow.
	table, err := policy.LoadDefault()
	if err != nil {
		t.Fatalf("LoadDefault failed: %v", err)
	}
	committer := &MockCommitter{}
	engine := NewEngine(policy.NewStaticProvider(table), committer, slog.Default())

	for _, contentType := range table.ContentTypes() {
		outcome, err := engine.Decide(context.Background(),
			testAssessment("content-critical", 95, risk.LevelCritical), contentType)
		if err != nil {
			t.Fatalf("Decide(%s) failed: %v", contentType, err)
		}
		if outcome.Action == policy.ActionAllow {
			t.Errorf("content type %s: critical content was allowed", contentType)
		}
	}
}

func TestEngine_CommitFailureFailsDecision(t *testing.T) {
	committer := &MockCommitter{
		AuditFunc: func(ctx context.Context, record audit.Record) error {
			return errors.New("store unavailable")
		},
	}
	engine := testEngine(t, committer)

	_, err := engine.Decide(context.Background(),
		testAssessment("content-5", 0, risk.LevelNone), "user_free_text")
	if err == nil {
		t.Fatal("Decide succeeded despite audit commit failure")
	}
}
