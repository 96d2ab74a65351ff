// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the gin handlers for the governance API.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
	"github.com/bimsrama/relasi4warna-governance/services/governance/scanner"
)

// writeError maps domain errors to HTTP status codes and writes a
// sanitized JSON error body.
//
// Internal failures are logged with detail but reported generically so
// storage paths and policy internals never leak to clients.
func writeError(c *gin.Context, err error) {
	var invalidCtx *risk.InvalidContextError
	var gap *policy.GapError

	switch {
	case errors.Is(err, scanner.ErrUnsupportedLanguage),
		errors.Is(err, risk.ErrEmptyContentID),
		errors.Is(err, queue.ErrInvalidResolution),
		errors.Is(err, queue.ErrEmptyReviewer),
		errors.As(err, &invalidCtx):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, queue.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "queue item not found"})

	case errors.Is(err, queue.ErrAlreadyClaimed):
		c.JSON(http.StatusConflict, gin.H{"error": "item already claimed by another reviewer"})

	case errors.Is(err, queue.ErrAlreadyResolved):
		c.JSON(http.StatusConflict, gin.H{"error": "item already resolved"})

	case errors.As(err, &gap):
		slog.Error("policy gap surfaced to handler",
			"level", gap.Level.String(), "content_type", gap.ContentType)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "no policy configured for this content"})

	default:
		slog.Error("request failed", "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
