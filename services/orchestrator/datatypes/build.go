// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package datatypes holds the request and response shapes of the
// orchestrator's HTTP API.
package datatypes

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// BuildRequest submits a set of diagrams for compilation.
//
// Structural is the only diagram a build strictly needs; component and
// sequence diagrams refine the model when present. Infra entries become
// environment configuration in the deploy artifacts.
type BuildRequest struct {
	ProjectID  string            `json:"project_id" binding:"required" validate:"required,min=1,max=64,excludesall= /\\"`
	Structural string            `json:"structural" binding:"required" validate:"required"`
	Component  string            `json:"component,omitempty"`
	Sequence   string            `json:"sequence,omitempty"`
	Infra      map[string]string `json:"infra,omitempty"`

	// Validate and Deploy opt in to the collaborator phases. Both
	// default to false; the build still completes without them.
	Validate bool `json:"validate,omitempty"`
	Deploy   bool `json:"deploy,omitempty"`
}

// Check runs struct-level validation beyond gin's binding tags.
func (r *BuildRequest) Check() error {
	return validate.Struct(r)
}

// BuildAccepted is the response to a submitted build.
type BuildAccepted struct {
	RunID     string `json:"run_id"`
	ProjectID string `json:"project_id"`
	Status    string `json:"status"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
