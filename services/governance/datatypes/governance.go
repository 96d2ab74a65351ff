// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides request and response types for the
// governance HTTP API.
package datatypes

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// =============================================================================
// Size Limits
// =============================================================================

const (
	// MaxContentBytes is the maximum size of submitted content text.
	// Byte length, not rune count, so oversized payloads are rejected
	// before they reach the scanner.
	MaxContentBytes = 64 * 1024 // 64KB

	// MaxNotesBytes is the maximum size of reviewer notes.
	MaxNotesBytes = 8 * 1024 // 8KB

	// MaxPromptBytes is the maximum size of a generation prompt.
	MaxPromptBytes = 16 * 1024 // 16KB
)

// =============================================================================
// Shared Validator Instance
// =============================================================================

// validate is the validator instance for governance datatypes.
// Initialized in init() with custom validators.
var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("maxcontentbytes", maxBytes(MaxContentBytes))
	_ = validate.RegisterValidation("maxnotesbytes", maxBytes(MaxNotesBytes))
	_ = validate.RegisterValidation("maxpromptbytes", maxBytes(MaxPromptBytes))
}

// maxBytes builds a validator that bounds a string field's byte
// length.
func maxBytes(limit int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= limit
	}
}

// =============================================================================
// Evaluation
// =============================================================================

// EvaluateRequest submits one piece of content for evaluation.
type EvaluateRequest struct {
	// ContentID identifies the content. Generated when absent.
	ContentID string `json:"content_id" validate:"omitempty,max=128"`

	// Text is the content body. May be empty.
	Text string `json:"text" validate:"maxcontentbytes"`

	// Language is the lexicon language tag, e.g. "en" or "id".
	Language string `json:"language" validate:"required,max=16"`

	// ContentType is the policy content type.
	ContentType string `json:"content_type" validate:"required,max=64"`

	// PriorViolations is the submitter's confirmed violation count.
	PriorViolations int `json:"prior_violations" validate:"gte=0"`
}

// Validate validates the request fields.
func (r *EvaluateRequest) Validate() error {
	return validate.Struct(r)
}

// EnsureDefaults populates the content id when the client omitted it.
func (r *EvaluateRequest) EnsureDefaults() {
	if r.ContentID == "" {
		r.ContentID = uuid.NewString()
	}
}

// SignalView is one matched risk signal in a response.
type SignalView struct {
	Category    string  `json:"category"`
	MatchedTerm string  `json:"matched_term"`
	Weight      float64 `json:"weight"`
}

// EvaluateResponse reports the committed disposition.
//
// The text itself is never echoed back: allowed content is released by
// the caller, withheld content stays inside the system.
type EvaluateResponse struct {
	ContentID string       `json:"content_id"`
	Action    string       `json:"action"`
	QueueID   string       `json:"queue_id,omitempty"`
	Score     float64      `json:"score"`
	Level     string       `json:"level"`
	Signals   []SignalView `json:"signals,omitempty"`
}

// BatchEvaluateRequest submits multiple contents in one call.
type BatchEvaluateRequest struct {
	Contents []EvaluateRequest `json:"contents" validate:"required,min=1,max=50,dive"`
}

// Validate validates the request and every element.
func (r *BatchEvaluateRequest) Validate() error {
	return validate.Struct(r)
}

// BatchEvaluateResponse holds per-content outcomes in input order.
type BatchEvaluateResponse struct {
	Results []EvaluateResponse `json:"results"`
}

// =============================================================================
// Generation
// =============================================================================

// GenerateRequest asks for a screened AI-generated report.
type GenerateRequest struct {
	// Prompt is the report prompt. Required.
	Prompt string `json:"prompt" validate:"required,maxpromptbytes"`

	// SystemPrompt frames the assistant persona. Optional.
	SystemPrompt string `json:"system_prompt" validate:"maxpromptbytes"`

	// Language is the lexicon language for screening the output.
	Language string `json:"language" validate:"required,max=16"`

	// PriorViolations is the requesting account's confirmed violation
	// count.
	PriorViolations int `json:"prior_violations" validate:"gte=0"`
}

// Validate validates the request fields.
func (r *GenerateRequest) Validate() error {
	return validate.Struct(r)
}

// GenerateResponse reports the screening outcome. Text is present only
// when the disposition is allow.
type GenerateResponse struct {
	ContentID string  `json:"content_id"`
	Action    string  `json:"action"`
	QueueID   string  `json:"queue_id,omitempty"`
	Score     float64 `json:"score"`
	Level     string  `json:"level"`
	Text      string  `json:"text,omitempty"`
}

// =============================================================================
// Queue Review
// =============================================================================

// ClaimRequest claims a queue item for review.
type ClaimRequest struct {
	// Reviewer is the reviewer identity from the identity layer.
	Reviewer string `json:"reviewer" validate:"required,max=128"`
}

// Validate validates the request fields.
func (r *ClaimRequest) Validate() error {
	return validate.Struct(r)
}

// ResolveRequest resolves a queue item.
type ResolveRequest struct {
	Reviewer   string `json:"reviewer" validate:"required,max=128"`
	Resolution string `json:"resolution" validate:"required,oneof=approved rejected escalated"`
	Notes      string `json:"notes" validate:"maxnotesbytes"`
}

// Validate validates the request fields.
func (r *ResolveRequest) Validate() error {
	return validate.Struct(r)
}

// QueueItemView is one queue item in a response.
type QueueItemView struct {
	QueueID          string     `json:"queue_id"`
	ContentID        string     `json:"content_id"`
	Status           string     `json:"status"`
	Score            float64    `json:"score"`
	Level            string     `json:"level"`
	ClaimedBy        string     `json:"claimed_by,omitempty"`
	ResolvedBy       string     `json:"resolved_by,omitempty"`
	Resolution       string     `json:"resolution,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	UnclaimedResolve bool       `json:"unclaimed_resolve,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

// ListQueueResponse lists queue items newest first.
type ListQueueResponse struct {
	Items []QueueItemView `json:"items"`
}

// =============================================================================
// Audit Export
// =============================================================================

// AuditRecordView is one audit record in an export response.
type AuditRecordView struct {
	RecordID  string    `json:"record_id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	ContentID string    `json:"content_id"`
	Score     float64   `json:"score"`
	Level     string    `json:"level"`
	Timestamp time.Time `json:"timestamp"`
	Notes     string    `json:"notes,omitempty"`
}

// ExportAuditResponse holds records in timestamp order.
type ExportAuditResponse struct {
	Records []AuditRecordView `json:"records"`
}
