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

// TestGenerator generates the API test suite against the boundary units.
type TestGenerator struct {
	client llm.LLMClient
	logger *slog.Logger
}

func (t *TestGenerator) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	path := parser.ServerRoot + "/__tests__/api.test.ts"

	var controllers []string
	for _, u := range g.Model.Units {
		if u.Kind == model.KindController {
			controllers = append(controllers, u.Name)
		}
	}
	if len(controllers) == 0 {
		return nil, fmt.Errorf("test task %s: no boundary units in model", task.ID)
	}

	prompt := fmt.Sprintf(`Generate the vitest API test suite at %s covering: %s.

Rules:
- One describe block per controller, one test per declared method.
- Exercise the controllers through their public methods with the exact signatures shown.
- Respond with the complete file content only, no explanations.

%s`, path, strings.Join(controllers, ", "), g.PromptContext(task))

	content, err := callCollaborator(ctx, t.client, prompt)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("API tests generated", slog.String("path", path))
	return &Artifact{
		Path:     path,
		Content:  content,
		Category: task.Category,
	}, nil
}
