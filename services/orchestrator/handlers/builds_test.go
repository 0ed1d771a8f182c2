// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/blueprint/services/compiler/pipeline"
	"github.com/AleutianAI/blueprint/services/llm"
	"github.com/AleutianAI/blueprint/services/orchestrator/datatypes"
)

type stubLLM struct{}

func (s *stubLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	return "", errors.New("collaborator unavailable")
}

func testRouter(t *testing.T) (*gin.Engine, *BuildService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := &BuildService{
		Client:    &stubLLM{},
		Store:     pipeline.NewMemoryStore(),
		Publisher: pipeline.NewPublisher(),
		Workspace: t.TempDir(),
	}

	router := gin.New()
	router.POST("/v1/builds", CreateBuild(svc))
	router.GET("/v1/builds/:runId", GetBuild(svc))
	return router, svc
}

func postBuild(t *testing.T, router *gin.Engine, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/builds", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateBuildAccepted(t *testing.T) {
	router, svc := testRouter(t)

	w := postBuild(t, router, datatypes.BuildRequest{
		ProjectID:  "shop",
		Structural: "classDiagram\n  class Order {\n    <<entity>>\n    +id: string\n  }\n",
	})
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp datatypes.BuildAccepted
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, "shop", resp.ProjectID)

	// The run is asynchronous; poll the store until the record lands.
	deadline := time.Now().Add(10 * time.Second)
	for {
		rec, err := pipeline.LoadRecord(context.Background(), svc.Store, resp.RunID)
		if err == nil && rec.Phase.Terminal() {
			assert.Equal(t, pipeline.PhaseDone, rec.Phase)
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("run record never reached a terminal phase")
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestCreateBuildRejectsMissingFields(t *testing.T) {
	router, _ := testRouter(t)

	w := postBuild(t, router, map[string]string{"project_id": "shop"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postBuild(t, router, map[string]string{"structural": "classDiagram"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBuildRejectsPathologicalProjectID(t *testing.T) {
	router, _ := testRouter(t)

	w := postBuild(t, router, datatypes.BuildRequest{
		ProjectID:  "../escape",
		Structural: "classDiagram\n  class Order {\n    +id: string\n  }\n",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBuildUnknownRun(t *testing.T) {
	router, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/builds/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetBuildReturnsRecord(t *testing.T) {
	router, svc := testRouter(t)

	rec := &pipeline.PlanRecord{
		RunID:     "run-1",
		ProjectID: "shop",
		Phase:     pipeline.PhaseDone,
		Order:     []string{"backend_entity_Order"},
	}
	require.NoError(t, pipeline.SaveRecord(context.Background(), svc.Store, rec))

	req := httptest.NewRequest(http.MethodGet, "/v1/builds/run-1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var got pipeline.PlanRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "shop", got.ProjectID)
	assert.Equal(t, pipeline.PhaseDone, got.Phase)
}
