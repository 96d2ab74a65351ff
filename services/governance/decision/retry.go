// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package decision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
)

// RetryingCommitter wraps a Committer and retries failed commits with
// exponential backoff.
//
// Description:
//
//	A decision's audit record must be retried rather than surfaced
//	immediately: losing an audit record is worse than a brief delay in
//	content release. Both commit operations are safe to replay, since
//	enqueue is idempotent per (content id, decision timestamp) and an
//	audit record is keyed by its record id, so a retry after a commit
//	that actually landed rewrites the same entry.
//
// Thread Safety: Safe for concurrent use when the wrapped Committer is.
type RetryingCommitter struct {
	inner       Committer
	logger      *slog.Logger
	retries     prometheus.Counter
	maxElapsed  time.Duration
	maxInterval time.Duration
}

// NewRetryingCommitter wraps a Committer with retry behavior.
//
// Inputs:
//
//	inner - The committer to wrap. Must not be nil.
//	logger - Logger for retry warnings. Must not be nil.
//
// Outputs:
//
//	*RetryingCommitter - The wrapped committer.
func NewRetryingCommitter(inner Committer, logger *slog.Logger) *RetryingCommitter {
	return &RetryingCommitter{
		inner:       inner,
		logger:      logger,
		maxElapsed:  10 * time.Second,
		maxInterval: time.Second,
	}
}

// WithRetryCounter attaches a counter incremented once per retry
// attempt.
func (c *RetryingCommitter) WithRetryCounter(counter prometheus.Counter) *RetryingCommitter {
	c.retries = counter
	return c
}

// CommitEnqueue implements Committer, retrying transient failures with
// backoff.
func (c *RetryingCommitter) CommitEnqueue(ctx context.Context, item *queue.Item, record audit.Record) error {
	return c.retry(ctx, record, func() error {
		return c.inner.CommitEnqueue(ctx, item, record)
	})
}

// CommitAudit implements Committer, retrying transient failures with
// backoff.
func (c *RetryingCommitter) CommitAudit(ctx context.Context, record audit.Record) error {
	return c.retry(ctx, record, func() error {
		return c.inner.CommitAudit(ctx, record)
	})
}

func (c *RetryingCommitter) retry(ctx context.Context, record audit.Record, op func() error) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = c.maxInterval
	policy.MaxElapsedTime = c.maxElapsed

	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 && c.retries != nil {
			c.retries.Inc()
		}
		err := op()
		if err != nil && attempt > 1 {
			c.logger.Warn("decision commit retry",
				"record_id", record.RecordID,
				"attempt", attempt,
				"error", err.Error(),
			)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("decision commit exhausted retries for record %s: %w",
			record.RecordID, err)
	}
	return nil
}

// Ensure RetryingCommitter implements Committer.
var _ Committer = (*RetryingCommitter)(nil)
