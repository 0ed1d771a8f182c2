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
)

// BuildGenerator emits the project build configuration. Build descriptors
// are rendered deterministically from the model rather than asked of the
// collaborator: there is nothing creative about a package manifest, and a
// hallucinated dependency list is worse than a fixed one.
type BuildGenerator struct {
	logger *slog.Logger
}

func (b *BuildGenerator) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	projectID := g.Model.ProjectID
	if projectID == "" {
		projectID = "generated-project"
	}

	content := fmt.Sprintf(`{
  "name": "%s",
  "private": true,
  "workspaces": ["server", "client", "shared"],
  "scripts": {
    "build": "tsc -b",
    "test": "vitest run",
    "dev": "concurrently \"npm:dev:*\""
  },
  "devDependencies": {
    "typescript": "^5.6.0",
    "vitest": "^2.1.0"
  }
}
`, projectID)

	b.logger.Debug("build configuration generated", slog.String("project", projectID))
	return &Artifact{
		Path:     "package.json",
		Content:  content,
		Category: task.Category,
	}, nil
}
