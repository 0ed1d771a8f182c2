// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/blueprint/pkg/validation"
	"github.com/AleutianAI/blueprint/services/compiler/collab"
	"github.com/AleutianAI/blueprint/services/compiler/compose"
	"github.com/AleutianAI/blueprint/services/compiler/consistency"
	"github.com/AleutianAI/blueprint/services/compiler/generate"
	"github.com/AleutianAI/blueprint/services/compiler/linker"
	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/parser"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/compiler/registry"
	"github.com/AleutianAI/blueprint/services/llm"
)

var tracer = otel.Tracer("blueprint.compiler.pipeline")

// RunResult is the outcome of one compile run.
type RunResult struct {
	RunID   string                    `json:"run_id"`
	Phase   Phase                     `json:"phase"`
	Record  *PlanRecord               `json:"record"`
	Report  *collab.ValidationReport  `json:"report,omitempty"`
	Receipt *collab.DeployReceipt     `json:"receipt,omitempty"`
}

// Option configures a Runner.
type Option func(*Runner)

// WithValidator enables the validating phase.
func WithValidator(v collab.BuildValidator) Option {
	return func(r *Runner) { r.validator = v }
}

// WithDeployer enables the deploying phase.
func WithDeployer(d collab.Deployer) Option {
	return func(r *Runner) { r.deployer = d }
}

// WithPublisher attaches a progress event publisher.
func WithPublisher(p *Publisher) Option {
	return func(r *Runner) { r.publisher = p }
}

// Runner executes compile runs. Each run gets its own registry, grounding,
// and composer; the runner itself holds only shared collaborators and may
// serve many runs.
type Runner struct {
	parser    *parser.Parser
	planner   *planner.Planner
	client    llm.LLMClient
	store     Store
	publisher *Publisher
	validator collab.BuildValidator
	deployer  collab.Deployer
	logger    *slog.Logger
}

// NewRunner creates a Runner. The store receives every run's plan record;
// validator and deployer phases run only when configured.
func NewRunner(client llm.LLMClient, store Store, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		parser:  parser.New(logger),
		planner: planner.New(logger),
		client:  client,
		store:   store,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewRunID mints a run identifier. Callers that need the ID before the
// run finishes (async APIs) mint one and pass it to RunWithID.
func NewRunID() string {
	return uuid.NewString()
}

// Run compiles one diagram set into a project tree at outputRoot.
//
// The only terminal input condition is an empty model; every other anomaly
// degrades (stub artifacts, excluded cycles, partial linking) and is
// recorded on the plan record.
func (r *Runner) Run(ctx context.Context, input parser.DiagramInput, outputRoot string) (*RunResult, error) {
	return r.RunWithID(ctx, NewRunID(), input, outputRoot)
}

// RunWithID compiles one diagram set under a caller-supplied run ID.
func (r *Runner) RunWithID(ctx context.Context, runID string, input parser.DiagramInput, outputRoot string) (*RunResult, error) {
	ctx, span := tracer.Start(ctx, "Runner.Run")
	defer span.End()

	span.SetAttributes(
		attribute.String("run.id", runID),
		attribute.String("run.project", input.ProjectID),
	)
	logger := r.logger.With(slog.String("run_id", runID))
	logger.Info("compile run started", slog.String("project", input.ProjectID))

	sm := NewStateMachine()
	rec := &PlanRecord{
		RunID:     runID,
		ProjectID: input.ProjectID,
		CreatedAt: time.Now(),
		Artifacts: make(map[string]ArtifactRecord),
		Failures:  make(map[string]string),
	}
	result := &RunResult{RunID: runID, Record: rec}

	if err := validation.ValidateProjectID(input.ProjectID); err != nil {
		return r.fail(ctx, result, sm, rec, fmt.Errorf("validating input: %w", err))
	}

	r.emit(runID, sm.Current(), "", "parsing diagrams")
	m, err := r.parser.Parse(input)
	if err != nil {
		return r.fail(ctx, result, sm, rec, fmt.Errorf("parsing: %w", err))
	}

	reg := registry.New(logger)
	if err := reg.BuildFromModel(m); err != nil {
		return r.fail(ctx, result, sm, rec, fmt.Errorf("building symbol registry: %w", err))
	}
	engine := consistency.New(reg, logger)
	rec.Drifts = engine.Check(m)

	if err := sm.Transition(PhasePlanning); err != nil {
		return r.fail(ctx, result, sm, rec, err)
	}
	r.emit(runID, PhasePlanning, "", "planning tasks")
	plan, err := r.planner.Plan(m)
	if err != nil {
		return r.fail(ctx, result, sm, rec, fmt.Errorf("planning: %w", err))
	}
	rec.Tasks = plan.Tasks
	rec.Graph = plan.Graph
	rec.Order = plan.Order
	rec.Cycles = plan.Cycles
	rec.Warnings = plan.Warnings

	if err := sm.Transition(PhaseGenerating); err != nil {
		return r.fail(ctx, result, sm, rec, err)
	}
	r.emit(runID, PhaseGenerating, "", fmt.Sprintf("generating %d tasks", len(plan.Order)))

	grounding := generate.NewGrounding(m, reg)
	composer := compose.New(outputRoot, logger)
	lk := linker.New(reg, composer, generate.NewDispatcher(r.client, logger), logger)

	genRes := lk.GenerateAll(ctx, plan, grounding)
	mergeFailures(rec, genRes)
	for taskID, a := range grounding.Artifacts() {
		rec.Artifacts[taskID] = ArtifactRecord{Path: a.Path, Stub: a.Stub}
	}

	if err := sm.Transition(PhaseLinking); err != nil {
		return r.fail(ctx, result, sm, rec, err)
	}
	r.emit(runID, PhaseLinking, "", "reconciling references")
	linkRes := lk.LinkAll(ctx, grounding)
	mergeFailures(rec, linkRes)
	rec.Drifts = append(rec.Drifts, r.repairGenerated(m, engine, grounding, composer, logger)...)

	if r.validator != nil {
		if err := sm.Transition(PhaseValidating); err != nil {
			return r.fail(ctx, result, sm, rec, err)
		}
		r.emit(runID, PhaseValidating, "", "validating build")
		report, err := r.validator.Validate(ctx, outputRoot)
		if err != nil {
			logger.Error("validation collaborator failed", slog.String("error", err.Error()))
			rec.Failures["validate"] = err.Error()
		} else {
			result.Report = report
		}
	}

	if r.deployer != nil {
		if err := sm.Transition(PhaseDeploying); err != nil {
			return r.fail(ctx, result, sm, rec, err)
		}
		r.emit(runID, PhaseDeploying, "", "deploying project")
		receipt, err := r.deployer.Deploy(ctx, outputRoot, m.InfraContext)
		if err != nil {
			logger.Error("deployment collaborator failed", slog.String("error", err.Error()))
			rec.Failures["deploy"] = err.Error()
		} else {
			result.Receipt = receipt
		}
	}

	if err := sm.Transition(PhaseDone); err != nil {
		return r.fail(ctx, result, sm, rec, err)
	}
	rec.Phase = PhaseDone
	rec.PhaseHistory = sm.History()
	result.Phase = PhaseDone

	r.persistRecord(ctx, rec, outputRoot, logger)
	r.emit(runID, PhaseDone, "", "run complete")
	logger.Info("compile run finished",
		slog.Int("generated", genRes.Generated),
		slog.Int("stubbed", genRes.Stubbed),
		slog.Int("rewritten", linkRes.Rewritten),
		slog.Int("cycles", len(plan.Cycles)),
	)
	return result, nil
}

// repairGenerated re-checks cross-layer signatures against the source that
// was actually generated and repairs drift the prompts did not prevent.
func (r *Runner) repairGenerated(m *model.ArchitectureModel, engine *consistency.Engine,
	g *generate.Grounding, composer *compose.Composer, logger *slog.Logger) []consistency.Drift {

	var drifts []consistency.Drift
	for taskID, a := range g.Artifacts() {
		dependent := m.Unit(a.UnitName)
		if dependent == nil {
			continue
		}

		var entity *model.Unit
		switch dependent.Kind {
		case model.KindService:
			entity = m.Unit(strings.TrimSuffix(dependent.Name, "Service"))
		case model.KindController:
			entity = m.Unit(strings.TrimSuffix(dependent.Name, "Controller"))
		}
		if entity == nil || entity == dependent {
			continue
		}

		repaired, ds := engine.RepairSource(entity, dependent, a.Content)
		if len(ds) == 0 {
			continue
		}
		drifts = append(drifts, ds...)

		updated := *a
		updated.Content = repaired
		if err := composer.Write(&updated); err != nil {
			logger.Error("writing repaired artifact failed",
				slog.String("path", a.Path), slog.String("error", err.Error()))
			continue
		}
		g.Record(taskID, &updated)
	}
	return drifts
}

// fail transitions to the failed phase, persists what is known, and
// returns the error.
func (r *Runner) fail(ctx context.Context, result *RunResult, sm *StateMachine, rec *PlanRecord, err error) (*RunResult, error) {
	if terr := sm.Transition(PhaseFailed); terr != nil {
		r.logger.Error("failed-phase transition rejected", slog.String("error", terr.Error()))
	}
	rec.Phase = PhaseFailed
	rec.PhaseHistory = sm.History()
	rec.Failures["run"] = err.Error()
	result.Phase = PhaseFailed

	if serr := SaveRecord(ctx, r.store, rec); serr != nil {
		r.logger.Error("saving failed-run record", slog.String("error", serr.Error()))
	}
	r.emit(rec.RunID, PhaseFailed, "", err.Error())
	r.logger.Error("compile run failed",
		slog.String("run_id", rec.RunID), slog.String("error", err.Error()))
	return result, err
}

// persistRecord saves the plan record to the store and writes the replay
// copy at the output root.
func (r *Runner) persistRecord(ctx context.Context, rec *PlanRecord, outputRoot string, logger *slog.Logger) {
	if err := SaveRecord(ctx, r.store, rec); err != nil {
		logger.Error("saving plan record", slog.String("error", err.Error()))
	}
	data, err := rec.Marshal()
	if err != nil {
		logger.Error("marshaling plan record", slog.String("error", err.Error()))
		return
	}
	path := filepath.Join(outputRoot, RecordFileName)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		logger.Error("writing plan record file",
			slog.String("path", path), slog.String("error", err.Error()))
	}
}

func (r *Runner) emit(runID string, phase Phase, taskID, message string) {
	if r.publisher == nil {
		return
	}
	r.publisher.Publish(Event{RunID: runID, Phase: phase, TaskID: taskID, Message: message})
}

// mergeFailures copies a linker result's failures onto the record.
func mergeFailures(rec *PlanRecord, res *linker.Result) {
	for k, v := range res.Failures {
		rec.Failures[k] = v
	}
}
