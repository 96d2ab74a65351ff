// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package store is the BadgerDB-backed home of the moderation queue
// and the audit log.
//
// One database holds both, which is what makes the core's atomicity
// rule cheap to honor: a queue write and its audit record land in the
// same transaction, so either both exist or neither does.
//
// Key layout:
//
//	queue/item/<queue_id>                  -> queue.Item (JSON)
//	queue/idem/<content_id>/<unixnano>     -> queue_id (enqueue idempotency)
//	audit/<unixnano, zero padded>/<record_id> -> audit.Record (JSON)
//
// Audit keys embed a zero-padded timestamp so Badger's lexicographic
// iteration order is chronological order, which makes range export a
// straight prefix walk.
//
// Thread Safety: Store is safe for concurrent use; Badger provides
// serializable transactions and reports lost races as ErrConflict,
// which this package translates into the queue's typed errors.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
	"github.com/bimsrama/relasi4warna-governance/services/governance/storage"
)

const (
	itemPrefix  = "queue/item/"
	idemPrefix  = "queue/idem/"
	auditPrefix = "audit/"

	// claimAttempts bounds the check-and-set retry loop. One retry is
	// enough: after a lost race the re-read observes the winner's
	// write and yields the typed error instead.
	claimAttempts = 2
)

// Store persists queue items and audit records in one BadgerDB.
type Store struct {
	db    *storage.DB
	now   func() time.Time
	depth prometheus.Gauge
}

// New creates a Store on the given database.
func New(db *storage.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// WithClock replaces the store's clock. Intended for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// TrackQueueDepth attaches a gauge for unresolved queue items and seeds
// it from the current store contents. Enqueues increment the gauge and
// resolves decrement it; claims leave it unchanged. Call once at
// startup, before the store takes traffic.
func (s *Store) TrackQueueDepth(ctx context.Context, gauge prometheus.Gauge) error {
	items, err := s.List(ctx, queue.Filter{})
	if err != nil {
		return fmt.Errorf("seed queue depth: %w", err)
	}
	unresolved := 0
	for i := range items {
		if items[i].Status != queue.StatusResolved {
			unresolved++
		}
	}
	gauge.Set(float64(unresolved))
	s.depth = gauge
	return nil
}

func itemKey(queueID string) []byte {
	return []byte(itemPrefix + queueID)
}

func idemKey(contentID string, at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s/%d", idemPrefix, contentID, at.UnixNano()))
}

func auditKey(record audit.Record) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", auditPrefix, record.Timestamp.UnixNano(), record.RecordID))
}

// =============================================================================
// Queue operations
// =============================================================================

// Get implements queue.Store.
func (s *Store) Get(ctx context.Context, queueID string) (*queue.Item, error) {
	var item *queue.Item
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		found, err := readItem(txn, queueID)
		if err != nil {
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Claim implements queue.Store.
//
// Description:
//
//	Atomic check-and-set: the claim succeeds only if the item is still
//	pending (or already claimed by the same reviewer, a no-op). Two
//	reviewers racing on the same item produce exactly one winner; the
//	loser's transaction conflicts, and the retry re-reads the winner's
//	state and returns ErrAlreadyClaimed. A successful claim lands
//	together with its audit record in the same transaction.
func (s *Store) Claim(ctx context.Context, queueID, reviewer string) (*queue.Item, error) {
	if reviewer == "" {
		return nil, queue.ErrEmptyReviewer
	}

	var lastErr error
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var item *queue.Item
		err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
			found, err := readItem(txn, queueID)
			if err != nil {
				return err
			}

			// Idempotent re-claim: no transition, no audit record.
			if found.Status == queue.StatusClaimed && found.ClaimedBy == reviewer {
				item = found
				return nil
			}

			now := s.now()
			if err := found.Claim(reviewer, now); err != nil {
				return err
			}
			record := audit.NewRecord(audit.Actor(reviewer), audit.ActionClaim,
				found.ContentID, audit.SnapshotOf(&found.Assessment), "", now)
			if err := writeItem(txn, found); err != nil {
				return err
			}
			if err := writeRecord(txn, record); err != nil {
				return err
			}
			item = found
			return nil
		})
		if err == nil {
			return item, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("claim conflict persisted for item %s: %w", queueID, lastErr)
}

// Resolve implements queue.Store.
//
// Description:
//
//	Atomic transition to the terminal state, with the same
//	check-and-set discipline as Claim. The resolving reviewer's audit
//	record (approve, reject, or escalate) lands in the same
//	transaction. Resolving without a prior claim is legal but marked in
//	the audit notes, since it is an exception path.
func (s *Store) Resolve(ctx context.Context, queueID, reviewer string, resolution queue.Resolution, notes string) (*queue.Item, error) {
	if reviewer == "" {
		return nil, queue.ErrEmptyReviewer
	}
	if !resolution.Valid() {
		return nil, queue.ErrInvalidResolution
	}

	var lastErr error
	for attempt := 0; attempt < claimAttempts; attempt++ {
		var item *queue.Item
		err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
			found, err := readItem(txn, queueID)
			if err != nil {
				return err
			}

			claimant := found.ClaimedBy
			now := s.now()
			if err := found.Resolve(reviewer, resolution, notes, now); err != nil {
				return err
			}

			auditNotes := notes
			if found.UnclaimedResolve {
				if auditNotes != "" {
					auditNotes += "; "
				}
				auditNotes += "resolved without prior claim"
			}
			if claimant != "" && claimant != reviewer {
				if auditNotes != "" {
					auditNotes += "; "
				}
				auditNotes += "resolved by a reviewer other than the claimant " + claimant
			}
			record := audit.NewRecord(audit.Actor(reviewer), resolutionAction(resolution),
				found.ContentID, audit.SnapshotOf(&found.Assessment), auditNotes, now)
			if err := writeItem(txn, found); err != nil {
				return err
			}
			if err := writeRecord(txn, record); err != nil {
				return err
			}
			item = found
			return nil
		})
		if err == nil {
			if s.depth != nil {
				s.depth.Dec()
			}
			return item, nil
		}
		if !errors.Is(err, badger.ErrConflict) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("resolve conflict persisted for item %s: %w", queueID, lastErr)
}

// List implements queue.Store. Results are ordered newest first.
func (s *Store) List(ctx context.Context, filter queue.Filter) ([]queue.Item, error) {
	var items []queue.Item
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(itemPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var item queue.Item
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &item)
			})
			if err != nil {
				return fmt.Errorf("decode queue item: %w", err)
			}
			if filter.Matches(&item) {
				items = append(items, item)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(a, b int) bool {
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})
	return items, nil
}

// resolutionAction maps a queue resolution to its audit action.
func resolutionAction(resolution queue.Resolution) audit.Action {
	switch resolution {
	case queue.ResolutionApproved:
		return audit.ActionApprove
	case queue.ResolutionRejected:
		return audit.ActionReject
	default:
		return audit.ActionEscalate
	}
}

// =============================================================================
// Audit operations
// =============================================================================

// Append implements audit.Log.
func (s *Store) Append(ctx context.Context, record audit.Record) error {
	return s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		return writeRecord(txn, record)
	})
}

// Export implements audit.Log. Records are returned in timestamp
// order, [from, to); a zero "to" means no upper bound.
func (s *Store) Export(ctx context.Context, from, to time.Time) ([]audit.Record, error) {
	var records []audit.Record
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		start := []byte(auditPrefix)
		if !from.IsZero() {
			start = []byte(fmt.Sprintf("%s%020d", auditPrefix, from.UnixNano()))
		}

		for it.Seek(start); it.Valid(); it.Next() {
			var record audit.Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			})
			if err != nil {
				return fmt.Errorf("decode audit record: %w", err)
			}
			if !to.IsZero() && !record.Timestamp.Before(to) {
				break
			}
			records = append(records, record)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// =============================================================================
// Decision commits
// =============================================================================

// CommitAudit durably writes one audit record for an automated allow
// or block decision.
func (s *Store) CommitAudit(ctx context.Context, record audit.Record) error {
	return s.Append(ctx, record)
}

// CommitEnqueue lands a new queue item and its enqueue audit record in
// one transaction.
//
// Description:
//
//	The write is idempotent per (content id, decision timestamp): a
//	replay after a partial failure finds the idempotency marker and
//	returns without duplicating the queue item. Either the item, the
//	marker, and the audit record all land, or none do.
func (s *Store) CommitEnqueue(ctx context.Context, item *queue.Item, record audit.Record) error {
	enqueued := false
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		marker := idemKey(item.ContentID, record.Timestamp)
		_, err := txn.Get(marker)
		if err == nil {
			// Replay of an already-committed decision.
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("read idempotency marker: %w", err)
		}

		if err := writeItem(txn, item); err != nil {
			return err
		}
		if err := txn.Set(marker, []byte(item.QueueID)); err != nil {
			return fmt.Errorf("write idempotency marker: %w", err)
		}
		enqueued = true
		return writeRecord(txn, record)
	})
	if err != nil {
		return err
	}
	if enqueued && s.depth != nil {
		s.depth.Inc()
	}
	return nil
}

// =============================================================================
// Helpers
// =============================================================================

func readItem(txn *badger.Txn, queueID string) (*queue.Item, error) {
	entry, err := txn.Get(itemKey(queueID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, queue.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read queue item %s: %w", queueID, err)
	}

	var item queue.Item
	err = entry.Value(func(val []byte) error {
		return json.Unmarshal(val, &item)
	})
	if err != nil {
		return nil, fmt.Errorf("decode queue item %s: %w", queueID, err)
	}
	return &item, nil
}

func writeItem(txn *badger.Txn, item *queue.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode queue item %s: %w", item.QueueID, err)
	}
	if err := txn.Set(itemKey(item.QueueID), data); err != nil {
		return fmt.Errorf("write queue item %s: %w", item.QueueID, err)
	}
	return nil
}

func writeRecord(txn *badger.Txn, record audit.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode audit record %s: %w", record.RecordID, err)
	}
	if err := txn.Set(auditKey(record), data); err != nil {
		return fmt.Errorf("write audit record %s: %w", record.RecordID, err)
	}
	return nil
}

// Ensure Store satisfies the interfaces it backs.
var (
	_ queue.Store = (*Store)(nil)
	_ audit.Log   = (*Store)(nil)
)
