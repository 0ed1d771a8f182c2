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

	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/llm"
)

// FrontendGenerator generates client-side units: components, pages, and
// hooks. React function components are the house convention for the
// generated tree.
type FrontendGenerator struct {
	client llm.LLMClient
	logger *slog.Logger
}

func (f *FrontendGenerator) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	u := g.Model.Unit(task.UnitName)
	if u == nil {
		return nil, fmt.Errorf("frontend task %s: unit %q not in model", task.ID, task.UnitName)
	}

	form := "React function component"
	if u.Kind == model.KindHook {
		form = "React hook"
	}

	prompt := fmt.Sprintf(`Generate the complete TypeScript source file for the %s %s.
Target path: %s

Rules:
- Export %s as the primary export, implementing the declared contract.
- Import shared entity types from the shared types module rather than redeclaring them.
- Reference existing files by the names they export.
- Respond with the complete file content only, no explanations.

%s`, form, u.Name, u.FilePath, u.Name, g.PromptContext(task))

	content, err := callCollaborator(ctx, f.client, prompt)
	if err != nil {
		return nil, err
	}

	f.logger.Debug("frontend unit generated",
		slog.String("unit", u.Name), slog.String("path", u.FilePath))
	return &Artifact{
		Path:     u.FilePath,
		Content:  content,
		Category: task.Category,
		UnitName: u.Name,
	}, nil
}
