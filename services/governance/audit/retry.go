// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
)

// RetryingLog wraps a Log and retries failed appends with exponential
// backoff.
//
// Audit writes are the one failure mode in this core that must be
// retried rather than surfaced immediately: losing an audit record is
// worse than a brief delay in content release. Exports are reads and
// pass through unretried.
//
// Thread Safety: Safe for concurrent use when the wrapped Log is.
type RetryingLog struct {
	inner       Log
	logger      *slog.Logger
	retries     prometheus.Counter
	maxElapsed  time.Duration
	maxInterval time.Duration
}

// NewRetryingLog wraps a Log with retry behavior.
//
// Inputs:
//
//	inner - The log to wrap. Must not be nil.
//	logger - Logger for retry warnings. Must not be nil.
//
// Outputs:
//
//	*RetryingLog - The wrapped log.
func NewRetryingLog(inner Log, logger *slog.Logger) *RetryingLog {
	return &RetryingLog{
		inner:       inner,
		logger:      logger,
		maxElapsed:  10 * time.Second,
		maxInterval: time.Second,
	}
}

// WithRetryCounter attaches a counter incremented once per retry
// attempt.
func (l *RetryingLog) WithRetryCounter(counter prometheus.Counter) *RetryingLog {
	l.retries = counter
	return l
}

// Append implements Log, retrying transient failures with backoff.
func (l *RetryingLog) Append(ctx context.Context, record Record) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxInterval = l.maxInterval
	policy.MaxElapsedTime = l.maxElapsed

	attempt := 0
	operation := func() error {
		attempt++
		if attempt > 1 && l.retries != nil {
			l.retries.Inc()
		}
		err := l.inner.Append(ctx, record)
		if err != nil && attempt > 1 {
			l.logger.Warn("audit append retry",
				"record_id", record.RecordID,
				"attempt", attempt,
				"error", err.Error(),
			)
		}
		return err
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return fmt.Errorf("audit append exhausted retries for record %s: %w",
			record.RecordID, err)
	}
	return nil
}

// Export implements Log.
func (l *RetryingLog) Export(ctx context.Context, from, to time.Time) ([]Record, error) {
	return l.inner.Export(ctx, from, to)
}

// Ensure RetryingLog implements Log.
var _ Log = (*RetryingLog)(nil)
