// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bimsrama/relasi4warna-governance/services/governance/datatypes"
	"github.com/bimsrama/relasi4warna-governance/services/governance/decision"
	"github.com/bimsrama/relasi4warna-governance/services/governance/metrics"
	"github.com/bimsrama/relasi4warna-governance/services/governance/oracle"
	"github.com/bimsrama/relasi4warna-governance/services/governance/pipeline"
	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
	"github.com/bimsrama/relasi4warna-governance/services/governance/routes"
	"github.com/bimsrama/relasi4warna-governance/services/governance/scanner"
	"github.com/bimsrama/relasi4warna-governance/services/governance/storage"
	"github.com/bimsrama/relasi4warna-governance/services/governance/store"
)

func newTestRouter(t *testing.T, generator oracle.Generator) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := storage.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	st := store.New(db)

	sc, err := scanner.NewDefault()
	require.NoError(t, err)
	engine, err := risk.NewEngine(risk.DefaultEngineConfig())
	require.NoError(t, err)
	table, err := policy.LoadDefault()
	require.NoError(t, err)
	decider := decision.NewEngine(policy.NewStaticProvider(table), st, slog.Default())
	m := metrics.New(prometheus.NewRegistry())
	p := pipeline.New(sc, engine, decider, generator, m, slog.Default())

	router := gin.New()
	routes.SetupRoutes(router, p, st, st, nil)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequestWithContext(context.Background(), method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter(t, nil)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEvaluate_EmptyTextAllowed(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/evaluate", datatypes.EvaluateRequest{
		ContentID:   "content-empty",
		Language:    "en",
		ContentType: "user_free_text",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[datatypes.EvaluateResponse](t, rec)
	assert.Equal(t, "allow", resp.Action)
	assert.Equal(t, float64(0), resp.Score)
	assert.Equal(t, "none", resp.Level)

	// The automated allow left exactly one audit record.
	auditRec := doJSON(t, router, http.MethodGet, "/v1/audit/export", nil)
	require.Equal(t, http.StatusOK, auditRec.Code)
	export := decode[datatypes.ExportAuditResponse](t, auditRec)
	require.Len(t, export.Records, 1)
	assert.Equal(t, "auto_allow", export.Records[0].Action)
	assert.Equal(t, "system", export.Records[0].Actor)
}

func TestEvaluate_ValidationFailures(t *testing.T) {
	router := newTestRouter(t, nil)

	// Missing language.
	rec := doJSON(t, router, http.MethodPost, "/v1/evaluate", datatypes.EvaluateRequest{
		Text: "hello", ContentType: "user_free_text",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unsupported language reaches the scanner and comes back 400.
	rec = doJSON(t, router, http.MethodPost, "/v1/evaluate", datatypes.EvaluateRequest{
		Text: "hello", Language: "xx", ContentType: "user_free_text",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Malformed JSON body.
	req := httptest.NewRequestWithContext(context.Background(),
		http.MethodPost, "/v1/evaluate", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReviewLifecycleOverHTTP(t *testing.T) {
	router := newTestRouter(t, nil)

	// Risky English free text: two self-harm terms put it at medium,
	// which the shipped table maps to enqueue.
	rec := doJSON(t, router, http.MethodPost, "/v1/evaluate", datatypes.EvaluateRequest{
		ContentID:   "content-risky",
		Text:        "I want to kill myself, suicide feels close",
		Language:    "en",
		ContentType: "user_free_text",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	evalResp := decode[datatypes.EvaluateResponse](t, rec)
	require.Equal(t, "enqueue", evalResp.Action)
	require.NotEmpty(t, evalResp.QueueID)

	// It shows up in the pending listing.
	rec = doJSON(t, router, http.MethodGet, "/v1/queue?status=pending", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[datatypes.ListQueueResponse](t, rec)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "content-risky", list.Items[0].ContentID)

	// Claim it.
	rec = doJSON(t, router, http.MethodPost, "/v1/queue/"+evalResp.QueueID+"/claim",
		datatypes.ClaimRequest{Reviewer: "reviewer-a"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// A second reviewer's claim conflicts.
	rec = doJSON(t, router, http.MethodPost, "/v1/queue/"+evalResp.QueueID+"/claim",
		datatypes.ClaimRequest{Reviewer: "reviewer-b"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Resolve it.
	rec = doJSON(t, router, http.MethodPost, "/v1/queue/"+evalResp.QueueID+"/resolve",
		datatypes.ResolveRequest{Reviewer: "reviewer-a", Resolution: "approved", Notes: "context is a quote"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resolved := decode[datatypes.QueueItemView](t, rec)
	assert.Equal(t, "resolved", resolved.Status)
	assert.Equal(t, "approved", resolved.Resolution)

	// Resolving again conflicts.
	rec = doJSON(t, router, http.MethodPost, "/v1/queue/"+evalResp.QueueID+"/resolve",
		datatypes.ResolveRequest{Reviewer: "reviewer-b", Resolution: "rejected"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The audit trail reconstructs the full lifecycle.
	rec = doJSON(t, router, http.MethodGet, "/v1/audit/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	export := decode[datatypes.ExportAuditResponse](t, rec)
	require.Len(t, export.Records, 3)
	assert.Equal(t, "enqueue", export.Records[0].Action)
	assert.Equal(t, "claim", export.Records[1].Action)
	assert.Equal(t, "approve", export.Records[2].Action)
}

func TestQueueNotFound(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodGet, "/v1/queue/no-such-item", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/v1/queue/no-such-item/claim",
		datatypes.ClaimRequest{Reviewer: "reviewer-a"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerate_WithholdsFlaggedReport(t *testing.T) {
	generator := &oracle.MockGenerator{
		GenerateFunc: func(ctx context.Context, req oracle.Request) (string, error) {
			return "the report mentions suicide and self-harm repeatedly, suicide", nil
		},
	}
	router := newTestRouter(t, generator)

	rec := doJSON(t, router, http.MethodPost, "/v1/generate", datatypes.GenerateRequest{
		Prompt:   "write the relationship report",
		Language: "en",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[datatypes.GenerateResponse](t, rec)
	assert.NotEqual(t, "allow", resp.Action)
	assert.Empty(t, resp.Text, "withheld report must not include text")
	assert.NotEmpty(t, resp.ContentID)
}

func TestEvaluateBatch(t *testing.T) {
	router := newTestRouter(t, nil)

	rec := doJSON(t, router, http.MethodPost, "/v1/evaluate/batch", datatypes.BatchEvaluateRequest{
		Contents: []datatypes.EvaluateRequest{
			{ContentID: "batch-0", Text: "", Language: "en", ContentType: "user_free_text"},
			{ContentID: "batch-1", Text: "halo", Language: "id", ContentType: "user_free_text"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[datatypes.BatchEvaluateResponse](t, rec)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "batch-0", resp.Results[0].ContentID)
	assert.Equal(t, "batch-1", resp.Results[1].ContentID)
}
