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
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/parser"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/llm"
)

// SharedGenerator generates the shared-types module and shared utility
// units. Shared types are the cross-boundary interface definitions both
// server and client import.
type SharedGenerator struct {
	client llm.LLMClient
	logger *slog.Logger
}

func (s *SharedGenerator) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	if task.UnitName != "" {
		return s.generateUtility(ctx, task, g)
	}
	if task.ID == planner.TaskSharedTypes {
		return s.generateSharedTypes(ctx, task, g)
	}
	return nil, fmt.Errorf("shared task %s: nothing to generate", task.ID)
}

func (s *SharedGenerator) generateUtility(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	u := g.Model.Unit(task.UnitName)
	if u == nil {
		return nil, fmt.Errorf("shared task %s: unit %q not in model", task.ID, task.UnitName)
	}

	prompt := fmt.Sprintf(`Generate the complete TypeScript source file for the shared utility %s.
Target path: %s

Rules:
- The utility must be importable from both server and client code, so use no runtime-specific APIs.
- Implement the declared contract exactly.
- Respond with the complete file content only, no explanations.

%s`, u.Name, u.FilePath, g.PromptContext(task))

	content, err := callCollaborator(ctx, s.client, prompt)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Path:     u.FilePath,
		Content:  content,
		Category: task.Category,
		UnitName: u.Name,
	}, nil
}

func (s *SharedGenerator) generateSharedTypes(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	path := parser.SharedRoot + "/types/index.ts"

	var entities []string
	var contracts strings.Builder
	for _, u := range g.Model.Units {
		if u.Kind != model.KindDataEntity {
			continue
		}
		entities = append(entities, u.Name)
		if contract, ok := g.Registry.DataContract(u.Name); ok {
			contracts.WriteString(contract.Render())
			contracts.WriteString("\n")
		}
	}

	prompt := fmt.Sprintf(`Generate the shared TypeScript types module at %s.
Export one interface per data entity: %s.

Rules:
- Each interface carries exactly the properties declared in its contract.
- No classes, no runtime code, interfaces and type aliases only.
- Respond with the complete file content only, no explanations.

%s`, path, strings.Join(entities, ", "), contracts.String())

	content, err := callCollaborator(ctx, s.client, prompt)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("shared types generated", slog.String("path", path))
	return &Artifact{
		Path:     path,
		Content:  content,
		Category: task.Category,
	}, nil
}
