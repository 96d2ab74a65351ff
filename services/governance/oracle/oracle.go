// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package oracle generates the AI-written report text that the
// governance pipeline screens before release.
//
// The pipeline only ever sees generated text through the Generator
// interface, so the model provider behind it is swappable and tests
// run against MockGenerator without network access.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"
)

// ErrNoAPIKey means no OpenAI credential was found in the environment
// or the secrets mount.
var ErrNoAPIKey = errors.New("openai api key not configured")

// Request describes one generation call.
type Request struct {
	// SystemPrompt frames the assistant persona. Optional.
	SystemPrompt string

	// UserPrompt is the report prompt. Required.
	UserPrompt string

	// MaxTokens caps the completion length. Zero means provider
	// default.
	MaxTokens int
}

// Generator produces report text for a generation request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// =============================================================================
// OpenAI adapter
// =============================================================================

// OpenAIGenerator is a Generator backed by the OpenAI chat completion
// API.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

// NewOpenAIGenerator builds a generator from the environment.
//
// Description:
//
//	Reads OPENAI_API_KEY from the environment, falling back to the
//	container secrets mount at /run/secrets/openai_api_key. The model
//	comes from OPENAI_MODEL, defaulting to gpt-4o-mini.
//
// Outputs:
//
//	*OpenAIGenerator - The configured generator.
//	error - ErrNoAPIKey when no credential is available.
func NewOpenAIGenerator(logger *slog.Logger) (*OpenAIGenerator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		data, err := os.ReadFile("/run/secrets/openai_api_key")
		if err != nil {
			logger.Error("no openai credential in environment or secrets mount")
			return nil, ErrNoAPIKey
		}
		apiKey = strings.TrimSpace(string(data))
		logger.Info("read openai api key from secrets mount")
	}

	model := os.Getenv("OPENAI_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
		logger.Warn("OPENAI_MODEL not set, defaulting to gpt-4o-mini")
	}

	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
		logger: logger,
	}, nil
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	completion := openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	}
	if req.MaxTokens > 0 {
		completion.MaxCompletionTokens = req.MaxTokens
	}

	resp, err := g.client.CreateChatCompletion(ctx, completion)
	if err != nil {
		g.logger.Error("openai completion failed", "error", err.Error())
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// =============================================================================
// Mock
// =============================================================================

// MockGenerator is a Generator for tests. Set GenerateFunc to inject
// behavior; calls are recorded either way.
//
// Thread Safety: Safe for concurrent use.
type MockGenerator struct {
	mu sync.Mutex

	GenerateFunc func(ctx context.Context, req Request) (string, error)

	Calls []Request
}

// Generate implements Generator.
func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, req)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// Ensure both implementations satisfy Generator.
var (
	_ Generator = (*OpenAIGenerator)(nil)
	_ Generator = (*MockGenerator)(nil)
)
