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

	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/llm"
)

// BackendGenerator generates server-side units: entities, services,
// controllers, repositories, and middleware.
type BackendGenerator struct {
	client llm.LLMClient
	logger *slog.Logger
}

func (b *BackendGenerator) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	u := g.Model.Unit(task.UnitName)
	if u == nil {
		return nil, fmt.Errorf("backend task %s: unit %q not in model", task.ID, task.UnitName)
	}

	prompt := fmt.Sprintf(`Generate the complete TypeScript source file for the %s class %s.
Target path: %s

Rules:
- Implement every property and method declared in the contract with the exact signatures shown.
- Reference existing files by the class and function names they export.
- Do not invent endpoints, methods, or fields beyond the contract.
- Respond with the complete file content only, no explanations.

%s`, u.Kind, u.Name, u.FilePath, g.PromptContext(task))

	content, err := callCollaborator(ctx, b.client, prompt)
	if err != nil {
		return nil, err
	}

	b.logger.Debug("backend unit generated",
		slog.String("unit", u.Name), slog.String("path", u.FilePath))
	return &Artifact{
		Path:     u.FilePath,
		Content:  content,
		Category: task.Category,
		UnitName: u.Name,
	}, nil
}
