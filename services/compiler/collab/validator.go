// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package collab holds the clients for external run collaborators: the
// build validator and the deployer. Both are optional; a run configured
// without them skips the corresponding phase.
package collab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ValidationReport is the validator's verdict on a generated project.
type ValidationReport struct {
	Passed   bool     `json:"passed"`
	Messages []string `json:"messages,omitempty"`
}

// BuildValidator checks whether a generated project builds.
type BuildValidator interface {
	Validate(ctx context.Context, projectRoot string) (*ValidationReport, error)
}

// HTTPValidator calls an external validation service.
type HTTPValidator struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewHTTPValidator creates a validator client for the given base URL.
func NewHTTPValidator(baseURL string, logger *slog.Logger) *HTTPValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPValidator{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		baseURL:    baseURL,
		logger:     logger,
	}
}

type validateRequest struct {
	ProjectRoot string `json:"project_root"`
}

// Validate implements BuildValidator.
func (v *HTTPValidator) Validate(ctx context.Context, projectRoot string) (*ValidationReport, error) {
	body, err := json.Marshal(validateRequest{ProjectRoot: projectRoot})
	if err != nil {
		return nil, fmt.Errorf("marshaling validate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+"/validate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("validator call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading validator response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("validator returned status %d: %s", resp.StatusCode, respBody)
	}

	var report ValidationReport
	if err := json.Unmarshal(respBody, &report); err != nil {
		return nil, fmt.Errorf("parsing validator response: %w", err)
	}
	v.logger.Info("validation completed", slog.Bool("passed", report.Passed))
	return &report, nil
}
