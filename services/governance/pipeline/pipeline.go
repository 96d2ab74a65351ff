// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package pipeline runs the end-to-end evaluation path: scan the text,
// score the signals, disposition the result.
//
// The pipeline is the only caller that sees all three stages; each
// stage stays independently testable behind its own package. Every
// evaluation produces a risk assessment and exactly one committed
// disposition, or an error with nothing released.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/bimsrama/relasi4warna-governance/services/governance/decision"
	"github.com/bimsrama/relasi4warna-governance/services/governance/metrics"
	"github.com/bimsrama/relasi4warna-governance/services/governance/oracle"
	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
	"github.com/bimsrama/relasi4warna-governance/services/governance/scanner"
)

var tracer = otel.Tracer("governance.pipeline")

// batchConcurrency bounds concurrent evaluations in EvaluateBatch.
const batchConcurrency = 8

// Content is one piece of text submitted for evaluation.
type Content struct {
	// ContentID uniquely identifies the content. Required.
	ContentID string

	// Text is the content body. May be empty; empty text carries no
	// signals and flows through the normal decision path.
	Text string

	// Language is the lexicon language code, e.g. "en" or "id".
	Language string

	// ContentType is the policy content type, e.g. "user_free_text".
	ContentType string

	// Hints carries submitter context for scoring.
	Hints risk.ContextHints
}

// Outcome is the committed result of one evaluation.
type Outcome struct {
	// Action is the applied disposition.
	Action policy.Action

	// QueueID is set when Action is enqueue.
	QueueID string

	// Assessment is the scored assessment behind the decision.
	Assessment *risk.Assessment
}

// GeneratedOutcome is the result of evaluating freshly generated text.
type GeneratedOutcome struct {
	Outcome

	// Text holds the generated content, populated only when the
	// disposition is allow. Withheld or blocked text never leaves the
	// pipeline.
	Text string
}

// Pipeline wires scanner, risk engine, and decision engine into one
// evaluation path.
//
// Thread Safety: Safe for concurrent use.
type Pipeline struct {
	scanner   *scanner.Scanner
	engine    *risk.Engine
	decider   *decision.Engine
	generator oracle.Generator
	metrics   *metrics.PipelineMetrics
	logger    *slog.Logger
}

// New creates a pipeline. The generator may be nil when generated
// content evaluation is not used.
func New(sc *scanner.Scanner, engine *risk.Engine, decider *decision.Engine,
	generator oracle.Generator, m *metrics.PipelineMetrics, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		scanner:   sc,
		engine:    engine,
		decider:   decider,
		generator: generator,
		metrics:   m,
		logger:    logger,
	}
}

// Evaluate runs one piece of content through scan, score, and decide.
//
// Description:
//
//	The three stages run in order; a failure at any stage fails the
//	evaluation with nothing committed and nothing released. On success
//	the returned outcome's side effects (queue item, audit record) are
//	already durable.
//
// Inputs:
//
//	ctx - Request context.
//	content - The content to evaluate.
//
// Outputs:
//
//	*Outcome - The committed disposition and its assessment.
//	error - Scanner config errors, assessment validation errors,
//	policy gaps, or commit failures.
func (p *Pipeline) Evaluate(ctx context.Context, content Content) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "pipeline.Evaluate",
		trace.WithAttributes(
			attribute.String("content.id", content.ContentID),
			attribute.String("content.type", content.ContentType),
			attribute.String("content.language", content.Language),
		),
	)
	defer span.End()

	start := time.Now()
	outcome, err := p.evaluate(ctx, content)
	p.metrics.RecordEvaluation(time.Since(start).Seconds(), err == nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		return nil, err
	}

	span.SetAttributes(
		attribute.String("decision.action", outcome.Action.String()),
		attribute.Float64("risk.score", outcome.Assessment.Score),
		attribute.String("risk.level", outcome.Assessment.Level.String()),
	)
	return outcome, nil
}

func (p *Pipeline) evaluate(ctx context.Context, content Content) (*Outcome, error) {
	signals, err := p.scanner.Scan(content.Text, content.Language)
	if err != nil {
		return nil, fmt.Errorf("scan content %s: %w", content.ContentID, err)
	}

	hints := content.Hints
	if hints.ContentType == "" {
		hints.ContentType = content.ContentType
	}

	assessment, err := p.engine.Assess(content.ContentID, signals, hints)
	if err != nil {
		return nil, fmt.Errorf("assess content %s: %w", content.ContentID, err)
	}

	categories := make([]string, 0, len(assessment.Signals))
	for _, signal := range assessment.Signals {
		categories = append(categories, signal.Category.String())
	}
	p.metrics.RecordAssessment(assessment.Score, categories)

	result, err := p.decider.Decide(ctx, assessment, content.ContentType)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordDecision(result.Action.String(), content.ContentType)

	p.logger.Info("content evaluated",
		"content_id", content.ContentID,
		"content_type", content.ContentType,
		"score", assessment.Score,
		"level", assessment.Level.String(),
		"action", result.Action.String(),
	)

	return &Outcome{
		Action:     result.Action,
		QueueID:    result.QueueID,
		Assessment: assessment,
	}, nil
}

// EvaluateBatch evaluates contents concurrently, bounded by a worker
// limit.
//
// Description:
//
//	Outcomes are returned in input order. The batch fails closed as a
//	unit: the first error cancels the remaining evaluations and is
//	returned. Evaluations already committed before the failure keep
//	their audit records; content is only released by its own
//	successful outcome.
func (p *Pipeline) EvaluateBatch(ctx context.Context, contents []Content) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(contents))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(batchConcurrency)
	for i, content := range contents {
		group.Go(func() error {
			outcome, err := p.Evaluate(ctx, content)
			if err != nil {
				return err
			}
			outcomes[i] = outcome
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// EvaluateGenerated generates report text and screens it before
// release.
//
// Description:
//
//	Runs the generator, then the full evaluation path over the
//	generated text. The text is returned to the caller only when the
//	disposition is allow; enqueued or blocked text stays withheld
//	inside the system pending review.
//
// Inputs:
//
//	ctx - Request context.
//	req - The generation request.
//	contentID - Identity for the generated content.
//	language - Lexicon language for the scan.
//	hints - Submitter context for scoring.
//
// Outputs:
//
//	*GeneratedOutcome - Disposition plus the text when allowed.
//	error - Generation or evaluation failure.
func (p *Pipeline) EvaluateGenerated(ctx context.Context, req oracle.Request,
	contentID, language string, hints risk.ContextHints) (*GeneratedOutcome, error) {
	if p.generator == nil {
		return nil, fmt.Errorf("no generator configured")
	}

	ctx, span := tracer.Start(ctx, "pipeline.EvaluateGenerated",
		trace.WithAttributes(attribute.String("content.id", contentID)),
	)
	defer span.End()

	text, err := p.generator.Generate(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return nil, fmt.Errorf("generate content %s: %w", contentID, err)
	}

	outcome, err := p.Evaluate(ctx, Content{
		ContentID:   contentID,
		Text:        text,
		Language:    language,
		ContentType: "ai_generated_report",
		Hints:       hints,
	})
	if err != nil {
		return nil, err
	}

	generated := &GeneratedOutcome{Outcome: *outcome}
	if outcome.Action == policy.ActionAllow {
		generated.Text = text
	}
	return generated, nil
}
