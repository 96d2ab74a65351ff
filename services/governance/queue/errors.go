// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package queue

import "errors"

// =============================================================================
// SENTINEL ERRORS
// =============================================================================

var (
	// ErrNotFound indicates the queue id is unknown.
	ErrNotFound = errors.New("moderation queue item not found")

	// ErrAlreadyClaimed indicates another reviewer holds the claim.
	// Expected under concurrent review; the caller should re-fetch the
	// current state rather than retry blindly.
	ErrAlreadyClaimed = errors.New("queue item already claimed by another reviewer")

	// ErrAlreadyResolved indicates the item is terminal. No transition
	// is legal from resolved.
	ErrAlreadyResolved = errors.New("queue item already resolved")

	// ErrInvalidResolution indicates an unknown resolution value.
	ErrInvalidResolution = errors.New("resolution must be approved, rejected, or escalated")

	// ErrEmptyReviewer indicates a claim or resolve without a reviewer
	// identity.
	ErrEmptyReviewer = errors.New("reviewer identity must not be empty")
)
