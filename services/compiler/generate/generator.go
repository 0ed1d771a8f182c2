// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/llm"
)

var tracer = otel.Tracer("blueprint.compiler.generate")

var (
	// ErrUnknownCategory indicates a task category with no generator.
	ErrUnknownCategory = errors.New("generate: no generator for category")

	// ErrEmptyResponse indicates the collaborator returned no usable code.
	ErrEmptyResponse = errors.New("generate: collaborator returned no code")
)

// Generator produces one artifact for one task.
type Generator interface {
	Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error)
}

// Dispatcher routes tasks to the generator for their category and applies
// the stub fallback when generation fails. Dispatch is a tagged switch
// over the closed category set; an unknown category is an error, never a
// silent skip.
type Dispatcher struct {
	generators map[planner.TaskCategory]Generator
	logger     *slog.Logger
}

// NewDispatcher wires a generator for every task category.
func NewDispatcher(client llm.LLMClient, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		logger: logger,
		generators: map[planner.TaskCategory]Generator{
			planner.CategoryBackend:  &BackendGenerator{client: client, logger: logger},
			planner.CategoryFrontend: &FrontendGenerator{client: client, logger: logger},
			planner.CategoryShared:   &SharedGenerator{client: client, logger: logger},
			planner.CategoryTest:     &TestGenerator{client: client, logger: logger},
			planner.CategoryBuild:    &BuildGenerator{logger: logger},
			planner.CategoryDeploy:   &DeployGenerator{logger: logger},
		},
	}
}

// Generate runs the category generator for the task. A generation failure
// degrades to the deterministic stub and the run continues; only a task
// that has no stub shape either propagates the error.
func (d *Dispatcher) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	ctx, span := tracer.Start(ctx, "Dispatcher.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("task.id", task.ID),
		attribute.String("task.category", string(task.Category)),
	)

	gen, ok := d.generators[task.Category]
	if !ok {
		return nil, fmt.Errorf("%w: %q (task %s)", ErrUnknownCategory, task.Category, task.ID)
	}

	a, err := gen.Generate(ctx, task, g)
	if err == nil {
		return a, nil
	}

	d.logger.Warn("generation failed, falling back to stub",
		slog.String("task", task.ID),
		slog.String("error", err.Error()),
	)
	if stub := StubFor(task, g); stub != nil {
		return stub, nil
	}
	return nil, fmt.Errorf("task %s: %w", task.ID, err)
}

// generateParams is the shared collaborator tuning for code generation.
func generateParams() llm.GenerationParams {
	temp := float32(0.2)
	maxTokens := 8192
	return llm.GenerationParams{
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
}

// callCollaborator runs one generation round-trip and sanitizes the
// response. An empty sanitized result is an error so the dispatcher can
// fall back to a stub.
func callCollaborator(ctx context.Context, client llm.LLMClient, prompt string) (string, error) {
	raw, err := client.Generate(ctx, prompt, generateParams())
	if err != nil {
		return "", err
	}
	content := Sanitize(raw)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}
