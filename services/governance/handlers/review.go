// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/datatypes"
	"github.com/bimsrama/relasi4warna-governance/services/governance/queue"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

// itemView converts a queue item into the API shape.
func itemView(item *queue.Item) datatypes.QueueItemView {
	return datatypes.QueueItemView{
		QueueID:          item.QueueID,
		ContentID:        item.ContentID,
		Status:           string(item.Status),
		Score:            item.Assessment.Score,
		Level:            item.Assessment.Level.String(),
		ClaimedBy:        item.ClaimedBy,
		ResolvedBy:       item.ResolvedBy,
		Resolution:       string(item.Resolution),
		Notes:            item.Notes,
		UnclaimedResolve: item.UnclaimedResolve,
		CreatedAt:        item.CreatedAt,
		ResolvedAt:       item.ResolvedAt,
	}
}

// HandleListQueue lists queue items, newest first.
//
// Query parameters: status (pending|claimed|resolved), min_level
// (none|low|medium|high|critical), from and to (RFC 3339).
func HandleListQueue(store queue.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter queue.Filter

		if status := c.Query("status"); status != "" {
			parsed := queue.Status(status)
			if !parsed.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status " + status})
				return
			}
			filter.Status = parsed
		}
		if minLevel := c.Query("min_level"); minLevel != "" {
			level, err := risk.ParseLevel(minLevel)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			filter.MinLevel = level
		}
		var err error
		if filter.From, filter.To, err = parseTimeRange(c); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		items, err := store.List(c.Request.Context(), filter)
		if err != nil {
			writeError(c, err)
			return
		}

		resp := datatypes.ListQueueResponse{Items: make([]datatypes.QueueItemView, len(items))}
		for i := range items {
			resp.Items[i] = itemView(&items[i])
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleGetQueueItem returns one queue item.
func HandleGetQueueItem(store queue.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		item, err := store.Get(c.Request.Context(), c.Param("queueId"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemView(item))
	}
}

// HandleClaimQueueItem claims a queue item for a reviewer.
func HandleClaimQueueItem(store queue.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ClaimRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := store.Claim(c.Request.Context(), c.Param("queueId"), req.Reviewer)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemView(item))
	}
}

// HandleResolveQueueItem resolves a queue item.
func HandleResolveQueueItem(store queue.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.ResolveRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := store.Resolve(c.Request.Context(), c.Param("queueId"),
			req.Reviewer, queue.Resolution(req.Resolution), req.Notes)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemView(item))
	}
}

// HandleExportAudit exports audit records in a time range.
//
// Query parameters: from and to (RFC 3339). "to" is exclusive; both
// are optional.
func HandleExportAudit(log audit.Log) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := parseTimeRange(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		records, err := log.Export(c.Request.Context(), from, to)
		if err != nil {
			writeError(c, err)
			return
		}

		resp := datatypes.ExportAuditResponse{
			Records: make([]datatypes.AuditRecordView, len(records)),
		}
		for i, record := range records {
			resp.Records[i] = datatypes.AuditRecordView{
				RecordID:  record.RecordID,
				Actor:     string(record.Actor),
				Action:    string(record.Action),
				ContentID: record.ContentID,
				Score:     record.Assessment.Score,
				Level:     record.Assessment.Level.String(),
				Timestamp: record.Timestamp,
				Notes:     record.Notes,
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// parseTimeRange reads optional from/to RFC 3339 query parameters.
func parseTimeRange(c *gin.Context) (from, to time.Time, err error) {
	if raw := c.Query("from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if raw := c.Query("to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
