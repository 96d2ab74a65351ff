// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decision

import (
	"context"
	"sync"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
)

// EnqueueCall records one CommitEnqueue invocation on the mock.
type EnqueueCall struct {
	Item   *queue.Item
	Record audit.Record
}

// MockCommitter is a Committer for tests. Set EnqueueFunc or AuditFunc
// to inject behavior; calls are recorded either way.
//
// Thread Safety: Safe for concurrent use.
type MockCommitter struct {
	mu sync.Mutex

	EnqueueFunc func(ctx context.Context, item *queue.Item, record audit.Record) error
	AuditFunc   func(ctx context.Context, record audit.Record) error

	EnqueueCalls []EnqueueCall
	AuditCalls   []audit.Record
}

// CommitEnqueue implements Committer.
func (m *MockCommitter) CommitEnqueue(ctx context.Context, item *queue.Item, record audit.Record) error {
	m.mu.Lock()
	m.EnqueueCalls = append(m.EnqueueCalls, EnqueueCall{Item: item, Record: record})
	m.mu.Unlock()
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(ctx, item, record)
	}
	return nil
}

// CommitAudit implements Committer.
func (m *MockCommitter) CommitAudit(ctx context.Context, record audit.Record) error {
	m.mu.Lock()
	m.AuditCalls = append(m.AuditCalls, record)
	m.mu.Unlock()
	if m.AuditFunc != nil {
		return m.AuditFunc(ctx, record)
	}
	return nil
}

// Ensure MockCommitter implements Committer.
var _ Committer = (*MockCommitter)(nil)
