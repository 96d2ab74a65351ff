// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package queue

import (
	"errors"
	"testing"
	"time"

	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

func pendingItem() *Item {
	return &Item{
		QueueID:   "q-1",
		ContentID: "content-1",
		Assessment: risk.Assessment{
			ContentID: "content-1",
			Score:     60,
			Level:     risk.LevelHigh,
		},
		Status:    StatusPending,
		CreatedAt: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestItem_Claim(t *testing.T) {
	now := time.Now()

	t.Run("pending to claimed", func(t *testing.T) {
		item := pendingItem()
		if err := item.Claim("reviewer-a", now); err != nil {
			t.Fatalf("Claim failed: %v", err)
		}
		if item.Status != StatusClaimed || item.ClaimedBy != "reviewer-a" {
			t.Errorf("item = %s/%s, want claimed/reviewer-a", item.Status, item.ClaimedBy)
		}
	})

	t.Run("same reviewer re-claim is idempotent", func(t *testing.T) {
		item := pendingItem()
		_ = item.Claim("reviewer-a", now)
		if err := item.Claim("reviewer-a", now); err != nil {
			t.Errorf("re-claim by same reviewer failed: %v", err)
		}
	})

	t.Run("different reviewer is rejected", func(t *testing.T) {
		item := pendingItem()
		_ = item.Claim("reviewer-a", now)
		if err := item.Claim("reviewer-b", now); !errors.Is(err, ErrAlreadyClaimed) {
			t.Errorf("Claim error = %v, want ErrAlreadyClaimed", err)
		}
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		item := pendingItem()
		_ = item.Resolve("reviewer-a", ResolutionApproved, "", now)
		if err := item.Claim("reviewer-b", now); !errors.Is(err, ErrAlreadyResolved) {
			t.Errorf("Claim error = %v, want ErrAlreadyResolved", err)
		}
	})

	t.Run("empty reviewer", func(t *testing.T) {
		item := pendingItem()
		if err := item.Claim("", now); !errors.Is(err, ErrEmptyReviewer) {
			t.Errorf("Claim error = %v, want ErrEmptyReviewer", err)
		}
	})
}

func TestItem_Resolve(t *testing.T) {
	now := time.Now()

	t.Run("claimed to resolved", func(t *testing.T) {
		item := pendingItem()
		_ = item.Claim("reviewer-a", now)
		if err := item.Resolve("reviewer-a", ResolutionRejected, "clear violation", now); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if item.Status != StatusResolved || item.Resolution != ResolutionRejected {
			t.Errorf("item = %s/%s, want resolved/rejected", item.Status, item.Resolution)
		}
		if item.ResolvedAt == nil {
			t.Error("ResolvedAt not set on resolved item")
		}
		if item.UnclaimedResolve {
			t.Error("UnclaimedResolve set on claimed resolve")
		}
		if item.ResolvedBy != "reviewer-a" {
			t.Errorf("ResolvedBy = %s, want reviewer-a", item.ResolvedBy)
		}
	})

	t.Run("resolve by another reviewer keeps the claimant", func(t *testing.T) {
		item := pendingItem()
		_ = item.Claim("reviewer-a", now)
		if err := item.Resolve("reviewer-b", ResolutionEscalated, "", now); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if item.ClaimedBy != "reviewer-a" {
			t.Errorf("ClaimedBy = %s, want reviewer-a", item.ClaimedBy)
		}
		if item.ResolvedBy != "reviewer-b" {
			t.Errorf("ResolvedBy = %s, want reviewer-b", item.ResolvedBy)
		}
		if item.UnclaimedResolve {
			t.Error("UnclaimedResolve set on a claimed item")
		}
	})

	t.Run("direct resolve from pending flags exception path", func(t *testing.T) {
		item := pendingItem()
		if err := item.Resolve("reviewer-a", ResolutionApproved, "", now); err != nil {
			t.Fatalf("Resolve failed: %v", err)
		}
		if !item.UnclaimedResolve {
			t.Error("UnclaimedResolve not set on direct resolve")
		}
		if item.ClaimedBy != "" {
			t.Errorf("ClaimedBy = %s, want empty on an unclaimed resolve", item.ClaimedBy)
		}
		if item.ResolvedBy != "reviewer-a" {
			t.Errorf("ResolvedBy = %s, want reviewer-a", item.ResolvedBy)
		}
	})

	t.Run("double resolve fails", func(t *testing.T) {
		item := pendingItem()
		_ = item.Resolve("reviewer-a", ResolutionApproved, "", now)
		err := item.Resolve("reviewer-b", ResolutionRejected, "", now)
		if !errors.Is(err, ErrAlreadyResolved) {
			t.Errorf("Resolve error = %v, want ErrAlreadyResolved", err)
		}
		if item.Resolution != ResolutionApproved {
			t.Errorf("resolution overwritten to %s", item.Resolution)
		}
	})

	t.Run("invalid resolution", func(t *testing.T) {
		item := pendingItem()
		err := item.Resolve("reviewer-a", Resolution("deferred"), "", now)
		if !errors.Is(err, ErrInvalidResolution) {
			t.Errorf("Resolve error = %v, want ErrInvalidResolution", err)
		}
	})
}

func TestFilter_Matches(t *testing.T) {
	item := pendingItem()

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"zero filter matches", Filter{}, true},
		{"status match", Filter{Status: StatusPending}, true},
		{"status mismatch", Filter{Status: StatusResolved}, false},
		{"min level at item level", Filter{MinLevel: risk.LevelHigh}, true},
		{"min level above item level", Filter{MinLevel: risk.LevelCritical}, false},
		{"created inside window", Filter{
			From: item.CreatedAt.Add(-time.Hour),
			To:   item.CreatedAt.Add(time.Hour),
		}, true},
		{"created before window", Filter{From: item.CreatedAt.Add(time.Minute)}, false},
		{"created at exclusive upper bound", Filter{To: item.CreatedAt}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(item); got != tt.want {
				t.Errorf("Matches = %v, want %v", got, tt.want)
			}
		})
	}
}
