// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

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

// DeployReceipt describes where a deployed project ended up.
type DeployReceipt struct {
	Endpoint string `json:"endpoint,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Deployer hands a validated project to the deployment collaborator.
type Deployer interface {
	Deploy(ctx context.Context, projectRoot string, infra map[string]string) (*DeployReceipt, error)
}

// HTTPDeployer calls an external deployment service.
type HTTPDeployer struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewHTTPDeployer creates a deployer client for the given base URL.
func NewHTTPDeployer(baseURL string, logger *slog.Logger) *HTTPDeployer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPDeployer{
		httpClient: &http.Client{Timeout: 15 * time.Minute},
		baseURL:    baseURL,
		logger:     logger,
	}
}

type deployRequest struct {
	ProjectRoot string            `json:"project_root"`
	Infra       map[string]string `json:"infra,omitempty"`
}

// Deploy implements Deployer.
func (d *HTTPDeployer) Deploy(ctx context.Context, projectRoot string, infra map[string]string) (*DeployReceipt, error) {
	body, err := json.Marshal(deployRequest{ProjectRoot: projectRoot, Infra: infra})
	if err != nil {
		return nil, fmt.Errorf("marshaling deploy request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/deploy", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating deploy request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("deployer call failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading deployer response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deployer returned status %d: %s", resp.StatusCode, respBody)
	}

	var receipt DeployReceipt
	if err := json.Unmarshal(respBody, &receipt); err != nil {
		return nil, fmt.Errorf("parsing deployer response: %w", err)
	}
	d.logger.Info("deployment completed", slog.String("endpoint", receipt.Endpoint))
	return &receipt, nil
}
