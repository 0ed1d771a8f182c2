// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package handlers implements the orchestrator's HTTP endpoints.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/blueprint/services/compiler/collab"
	"github.com/AleutianAI/blueprint/services/compiler/parser"
	"github.com/AleutianAI/blueprint/services/compiler/pipeline"
	"github.com/AleutianAI/blueprint/services/llm"
	"github.com/AleutianAI/blueprint/services/orchestrator/datatypes"
	"github.com/AleutianAI/blueprint/services/orchestrator/observability"
)

// BuildService bundles the collaborators the build endpoints need. One
// instance is shared across requests; per-request runners are cheap and
// carry only the phases the request opted into.
type BuildService struct {
	Client    llm.LLMClient
	Store     pipeline.Store
	Publisher *pipeline.Publisher
	Validator collab.BuildValidator
	Deployer  collab.Deployer
	Workspace string
	Metrics   *observability.CompileMetrics
	Logger    *slog.Logger
}

// CreateBuild accepts a diagram set and starts an asynchronous compile
// run. The response carries the run ID; progress is available on the
// events endpoint and the final record on the status endpoint.
func CreateBuild(svc *BuildService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req datatypes.BuildRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}
		if err := req.Check(); err != nil {
			c.JSON(http.StatusBadRequest, datatypes.ErrorResponse{Error: err.Error()})
			return
		}

		opts := []pipeline.Option{pipeline.WithPublisher(svc.Publisher)}
		if req.Validate && svc.Validator != nil {
			opts = append(opts, pipeline.WithValidator(svc.Validator))
		}
		if req.Deploy && svc.Deployer != nil {
			opts = append(opts, pipeline.WithDeployer(svc.Deployer))
		}
		runner := pipeline.NewRunner(svc.Client, svc.Store, svc.Logger, opts...)

		runID := pipeline.NewRunID()
		span := trace.SpanFromContext(c.Request.Context())
		span.SetAttributes(
			attribute.String("build.run_id", runID),
			attribute.String("build.project_id", req.ProjectID),
		)

		input := parser.DiagramInput{
			ProjectID:  req.ProjectID,
			Structural: req.Structural,
			Component:  req.Component,
			Sequence:   req.Sequence,
			Infra:      req.Infra,
		}
		outputRoot := filepath.Join(svc.Workspace, req.ProjectID)

		slog.Info("build accepted",
			"run_id", runID, "project_id", req.ProjectID,
			"validate", req.Validate, "deploy", req.Deploy)

		go runBuild(svc, runner, runID, input, outputRoot)

		c.JSON(http.StatusAccepted, datatypes.BuildAccepted{
			RunID:     runID,
			ProjectID: req.ProjectID,
			Status:    "accepted",
		})
	}
}

// runBuild executes the compile run detached from the request context
// and records run metrics.
func runBuild(svc *BuildService, runner *pipeline.Runner, runID string,
	input parser.DiagramInput, outputRoot string) {

	if svc.Metrics != nil {
		svc.Metrics.RunStarted()
		defer svc.Metrics.RunEnded()
	}

	start := time.Now()
	result, err := runner.RunWithID(context.Background(), runID, input, outputRoot)

	status := "done"
	if err != nil {
		status = "failed"
		slog.Error("build failed", "run_id", runID, "error", err.Error())
	}
	if svc.Metrics == nil {
		return
	}
	svc.Metrics.RecordRun(status, time.Since(start).Seconds())
	if result == nil || result.Record == nil {
		return
	}
	for _, task := range result.Record.Tasks {
		if a, ok := result.Record.Artifacts[task.ID]; ok {
			svc.Metrics.RecordArtifact(string(task.Category), a.Stub)
		}
	}
	for range result.Record.Cycles {
		svc.Metrics.CyclesDetectedTotal.Inc()
	}
}

// GetBuild returns the plan record for a run.
func GetBuild(svc *BuildService) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID := c.Param("runId")
		rec, err := pipeline.LoadRecord(c.Request.Context(), svc.Store, runID)
		if err != nil {
			if errors.Is(err, pipeline.ErrKeyNotFound) {
				c.JSON(http.StatusNotFound, datatypes.ErrorResponse{Error: "unknown run"})
				return
			}
			slog.Error("loading plan record failed", "run_id", runID, "error", err.Error())
			c.JSON(http.StatusInternalServerError, datatypes.ErrorResponse{Error: "failed to load run record"})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}
