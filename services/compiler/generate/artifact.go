// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package generate turns planned tasks into source artifacts. Each task
// category has its own generator; all of them consult the grounding
// context (symbol contracts plus previously generated artifacts) so that
// later artifacts reference earlier ones by their real names and paths.
//
// A collaborator failure is never fatal to the run: the dispatcher falls
// back to a deterministic stub that satisfies the unit's declared shape.
package generate

import "github.com/AleutianAI/blueprint/services/compiler/planner"

// Artifact is one generated source file, not yet written to disk.
type Artifact struct {
	// Path is the project-relative destination, e.g. "server/src/models/Order.ts".
	Path string `json:"path"`

	// Content is the full file content.
	Content string `json:"content"`

	// Category is the task category that produced this artifact.
	Category planner.TaskCategory `json:"category"`

	// UnitName names the model unit, if the artifact maps to one.
	UnitName string `json:"unit_name,omitempty"`

	// Stub is true when the collaborator failed and the deterministic
	// fallback produced this content instead.
	Stub bool `json:"stub,omitempty"`
}
