// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"

	"github.com/bimsrama/relasi4warna-governance/services/governance/datatypes"
	"github.com/bimsrama/relasi4warna-governance/services/governance/oracle"
	"github.com/bimsrama/relasi4warna-governance/services/governance/pipeline"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
)

var evalTracer = otel.Tracer("governance.handlers")

// HealthCheck reports service liveness.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// toContent converts a validated request into pipeline input.
func toContent(req *datatypes.EvaluateRequest) pipeline.Content {
	return pipeline.Content{
		ContentID:   req.ContentID,
		Text:        req.Text,
		Language:    req.Language,
		ContentType: req.ContentType,
		Hints: risk.ContextHints{
			ContentType:     req.ContentType,
			PriorViolations: req.PriorViolations,
		},
	}
}

// toResponse converts a pipeline outcome into the API shape.
func toResponse(contentID string, outcome *pipeline.Outcome) datatypes.EvaluateResponse {
	resp := datatypes.EvaluateResponse{
		ContentID: contentID,
		Action:    outcome.Action.String(),
		QueueID:   outcome.QueueID,
		Score:     outcome.Assessment.Score,
		Level:     outcome.Assessment.Level.String(),
	}
	for _, signal := range outcome.Assessment.Signals {
		resp.Signals = append(resp.Signals, datatypes.SignalView{
			Category:    signal.Category.String(),
			MatchedTerm: signal.MatchedTerm,
			Weight:      signal.Weight,
		})
	}
	return resp
}

// HandleEvaluate evaluates one piece of submitted content.
func HandleEvaluate(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := evalTracer.Start(c.Request.Context(), "HandleEvaluate")
		defer span.End()

		var req datatypes.EvaluateRequest
		if err := c.BindJSON(&req); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		req.EnsureDefaults()

		outcome, err := p.Evaluate(ctx, toContent(&req))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "evaluation failed")
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toResponse(req.ContentID, outcome))
	}
}

// HandleEvaluateBatch evaluates up to 50 contents in one call.
func HandleEvaluateBatch(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := evalTracer.Start(c.Request.Context(), "HandleEvaluateBatch")
		defer span.End()

		var req datatypes.BatchEvaluateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		contents := make([]pipeline.Content, len(req.Contents))
		for i := range req.Contents {
			req.Contents[i].EnsureDefaults()
			contents[i] = toContent(&req.Contents[i])
		}

		outcomes, err := p.EvaluateBatch(ctx, contents)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "batch evaluation failed")
			writeError(c, err)
			return
		}

		resp := datatypes.BatchEvaluateResponse{
			Results: make([]datatypes.EvaluateResponse, len(outcomes)),
		}
		for i, outcome := range outcomes {
			resp.Results[i] = toResponse(contents[i].ContentID, outcome)
		}
		c.JSON(http.StatusOK, resp)
	}
}

// HandleGenerate generates report text and screens it before release.
//
// The response carries the generated text only when the disposition is
// allow; otherwise the text stays withheld pending review.
func HandleGenerate(p *pipeline.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, span := evalTracer.Start(c.Request.Context(), "HandleGenerate")
		defer span.End()

		var req datatypes.GenerateRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if err := req.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		contentID := uuid.NewString()
		outcome, err := p.EvaluateGenerated(ctx, oracle.Request{
			SystemPrompt: req.SystemPrompt,
			UserPrompt:   req.Prompt,
		}, contentID, req.Language, risk.ContextHints{
			ContentType:     "ai_generated_report",
			PriorViolations: req.PriorViolations,
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "generation failed")
			slog.Error("generation pipeline failed", "content_id", contentID, "error", err.Error())
			writeError(c, err)
			return
		}

		c.JSON(http.StatusOK, datatypes.GenerateResponse{
			ContentID: contentID,
			Action:    outcome.Action.String(),
			QueueID:   outcome.QueueID,
			Score:     outcome.Assessment.Score,
			Level:     outcome.Assessment.Level.String(),
			Text:      outcome.Text,
		})
	}
}
