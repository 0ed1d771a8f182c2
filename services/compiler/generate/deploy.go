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
	"sort"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/planner"
)

// DeployGenerator emits deployment descriptors for the generated project.
// Like build configuration these are rendered deterministically; the
// model's infra context keys surface as container environment variables.
type DeployGenerator struct {
	logger *slog.Logger
}

func (d *DeployGenerator) Generate(ctx context.Context, task *planner.Task, g *Grounding) (*Artifact, error) {
	var env strings.Builder
	keys := make([]string, 0, len(g.Model.InfraContext))
	for k := range g.Model.InfraContext {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&env, "ENV %s=%s\n", k, g.Model.InfraContext[k])
	}

	content := fmt.Sprintf(`FROM node:22-alpine
WORKDIR /app
COPY . .
RUN npm ci && npm run build
%sEXPOSE 3000
CMD ["node", "server/dist/index.js"]
`, env.String())

	d.logger.Debug("deployment descriptor generated")
	return &Artifact{
		Path:     "deploy/Dockerfile",
		Content:  content,
		Category: task.Category,
	}, nil
}
