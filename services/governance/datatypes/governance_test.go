// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"strings"
	"testing"
)

func TestEvaluateRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     EvaluateRequest
		wantErr bool
	}{
		{
			name: "valid",
			req:  EvaluateRequest{Text: "hello", Language: "en", ContentType: "user_free_text"},
		},
		{
			name: "empty text is valid",
			req:  EvaluateRequest{Language: "en", ContentType: "user_free_text"},
		},
		{
			name:    "missing language",
			req:     EvaluateRequest{Text: "hello", ContentType: "user_free_text"},
			wantErr: true,
		},
		{
			name:    "missing content type",
			req:     EvaluateRequest{Text: "hello", Language: "en"},
			wantErr: true,
		},
		{
			name: "oversized text",
			req: EvaluateRequest{
				Text:        strings.Repeat("a", MaxContentBytes+1),
				Language:    "en",
				ContentType: "user_free_text",
			},
			wantErr: true,
		},
		{
			name: "negative prior violations",
			req: EvaluateRequest{
				Text: "hello", Language: "en", ContentType: "user_free_text",
				PriorViolations: -1,
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEvaluateRequestEnsureDefaults(t *testing.T) {
	req := EvaluateRequest{Language: "en", ContentType: "user_free_text"}
	req.EnsureDefaults()
	if req.ContentID == "" {
		t.Error("content id not generated")
	}

	pinned := EvaluateRequest{ContentID: "content-1", Language: "en", ContentType: "user_free_text"}
	pinned.EnsureDefaults()
	if pinned.ContentID != "content-1" {
		t.Errorf("content id overwritten: %s", pinned.ContentID)
	}
}

func TestResolveRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     ResolveRequest
		wantErr bool
	}{
		{
			name: "approved",
			req:  ResolveRequest{Reviewer: "reviewer-a", Resolution: "approved"},
		},
		{
			name: "escalated with notes",
			req:  ResolveRequest{Reviewer: "reviewer-a", Resolution: "escalated", Notes: "needs tier 2"},
		},
		{
			name:    "unknown resolution",
			req:     ResolveRequest{Reviewer: "reviewer-a", Resolution: "shredded"},
			wantErr: true,
		},
		{
			name:    "missing reviewer",
			req:     ResolveRequest{Resolution: "approved"},
			wantErr: true,
		},
		{
			name: "oversized notes",
			req: ResolveRequest{
				Reviewer: "reviewer-a", Resolution: "approved",
				Notes: strings.Repeat("n", MaxNotesBytes+1),
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBatchEvaluateRequestValidate(t *testing.T) {
	valid := BatchEvaluateRequest{Contents: []EvaluateRequest{
		{Text: "hello", Language: "en", ContentType: "user_free_text"},
	}}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid batch rejected: %v", err)
	}

	empty := BatchEvaluateRequest{}
	if err := empty.Validate(); err == nil {
		t.Error("empty batch accepted")
	}

	nested := BatchEvaluateRequest{Contents: []EvaluateRequest{
		{Text: "hello", Language: "", ContentType: "user_free_text"},
	}}
	if err := nested.Validate(); err == nil {
		t.Error("batch with invalid element accepted")
	}
}
