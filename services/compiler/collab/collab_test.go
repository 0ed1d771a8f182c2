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
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPValidatorValidate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/validate", r.URL.Path)

		var req validateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "/tmp/out", req.ProjectRoot)

		json.NewEncoder(w).Encode(ValidationReport{Passed: true, Messages: []string{"tsc ok"}})
	}))
	defer srv.Close()

	v := NewHTTPValidator(srv.URL, nil)
	report, err := v.Validate(context.Background(), "/tmp/out")
	require.NoError(t, err)
	assert.True(t, report.Passed)
	assert.Equal(t, []string{"tsc ok"}, report.Messages)
}

func TestHTTPValidatorErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	v := NewHTTPValidator(srv.URL, nil)
	_, err := v.Validate(context.Background(), "/tmp/out")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
}

func TestHTTPDeployerDeploy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/deploy", r.URL.Path)

		var req deployRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "staging", req.Infra["environment"])

		json.NewEncoder(w).Encode(DeployReceipt{Endpoint: "https://app.example.com"})
	}))
	defer srv.Close()

	d := NewHTTPDeployer(srv.URL, nil)
	receipt, err := d.Deploy(context.Background(), "/tmp/out", map[string]string{"environment": "staging"})
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com", receipt.Endpoint)
}
