// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package planner expands an Architecture Model into a generation task
// list, computes inter-task dependencies, detects cycles, and emits one
// valid total generation order.
//
// Dependencies are assigned by convention (a boundary task depends on its
// service task, a service task on its entity task) plus any declared
// relationship edges. The planner owns the task DAG; cycles are reported
// with their full path and the offending tasks excluded, while the
// remaining acyclic portion is still ordered.
package planner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

// Well-known non-unit task IDs.
const (
	TaskSharedTypes = "shared_types"
	TaskAPITests    = "test_api"
	TaskBuild       = "build_project"
	TaskDeploy      = "deploy_project"
)

// Planner expands models into plans.
//
// Thread Safety:
//
//	Planner is stateless apart from its logger; each Plan call builds a
//	fresh plan. Safe for concurrent use across runs.
type Planner struct {
	logger *slog.Logger
}

// New creates a Planner. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{logger: logger}
}

// Plan expands the model into tasks across the six categories, assigns
// dependencies, and computes the generation order. An empty model is the
// caller's terminal precondition; Plan returns ErrNoTasks in that case.
func (p *Planner) Plan(m *model.ArchitectureModel) (*Plan, error) {
	if m == nil || m.Empty() {
		return nil, ErrNoTasks
	}

	plan := &Plan{
		Graph: make(map[string][]string),
		byID:  make(map[string]*Task),
	}

	// Shared types task first: frontend units reference the shared
	// interface definitions it produces.
	if hasEntities(m) {
		plan.add(&Task{
			ID:            TaskSharedTypes,
			Category:      CategoryShared,
			ComponentName: "types",
			Priority:      1,
			Description:   "shared interface definitions for all data entities",
		})
	}

	// One task per unit, in model discovery order.
	for _, u := range m.Units {
		plan.add(p.unitTask(u))
	}

	// Conventional layer dependencies plus declared relationship edges.
	p.assignConventionalDeps(m, plan)
	p.assignDeclaredDeps(m, plan)

	// Test, build, and deploy tasks close out the plan.
	p.addClosingTasks(m, plan)

	// Mirror task dependency lists into the graph.
	for _, t := range plan.Tasks {
		plan.Graph[t.ID] = append([]string(nil), t.Dependencies...)
	}

	order, cycles, warnings := computeOrder(plan)
	plan.Order = order
	plan.Cycles = cycles
	plan.Warnings = append(plan.Warnings, warnings...)

	for _, cycle := range cycles {
		cerr := NewCycleError(cycle)
		plan.Warnings = append(plan.Warnings, cerr.Error())
		p.logger.Error("planning cycle detected, tasks excluded from order",
			slog.String("error", cerr.Error()))
	}
	p.logger.Info("task plan computed",
		slog.Int("tasks", len(plan.Tasks)),
		slog.Int("ordered", len(plan.Order)),
		slog.Int("cycles", len(plan.Cycles)),
	)

	return plan, nil
}

// unitTask creates the generation task for one unit.
func (p *Planner) unitTask(u *model.Unit) *Task {
	category := CategoryBackend
	if u.Kind.Frontend() {
		category = CategoryFrontend
	} else if u.Kind == model.KindUtility {
		category = CategoryShared
	}

	return &Task{
		ID:          TaskID(category, u),
		Category:    category,
		UnitName:    u.Name,
		Priority:    layerPriority(u.Kind),
		Description: fmt.Sprintf("generate %s %s at %s", u.Kind, u.Name, u.FilePath),
	}
}

// TaskID returns the task ID convention "<category>_<layer>_<name>".
func TaskID(category TaskCategory, u *model.Unit) string {
	return fmt.Sprintf("%s_%s_%s", category, u.Kind.Layer(), u.Name)
}

// assignConventionalDeps wires the suffix-convention layer chain:
// RController depends on RService depends on R, repositories depend on
// their entity, and frontend tasks depend on shared types.
func (p *Planner) assignConventionalDeps(m *model.ArchitectureModel, plan *Plan) {
	for _, u := range m.Units {
		t := plan.Task(TaskID(taskCategory(u), u))
		if t == nil {
			continue
		}

		switch u.Kind {
		case model.KindService:
			if base := strings.TrimSuffix(u.Name, "Service"); base != u.Name {
				p.dependOnUnit(m, plan, t, base)
			}
		case model.KindController:
			if base := strings.TrimSuffix(u.Name, "Controller"); base != u.Name {
				p.dependOnUnit(m, plan, t, base+"Service")
				p.dependOnUnit(m, plan, t, base)
			}
		case model.KindRepository:
			if base := strings.TrimSuffix(u.Name, "Repository"); base != u.Name {
				p.dependOnUnit(m, plan, t, base)
			}
		}

		if u.Kind.Frontend() && plan.Task(TaskSharedTypes) != nil {
			t.DependsOn(TaskSharedTypes)
		}
	}
}

// assignDeclaredDeps adds edges for every declared relationship whose
// endpoints both have tasks. Inheritance and realization point at the
// parent; everything else points source → target.
func (p *Planner) assignDeclaredDeps(m *model.ArchitectureModel, plan *Plan) {
	for _, rel := range m.Relationships {
		src := m.Unit(rel.Source)
		tgt := m.Unit(rel.Target)
		if src == nil || tgt == nil {
			continue
		}
		srcTask := plan.Task(TaskID(taskCategory(src), src))
		tgtTask := plan.Task(TaskID(taskCategory(tgt), tgt))
		if srcTask == nil || tgtTask == nil || srcTask == tgtTask {
			continue
		}
		srcTask.DependsOn(tgtTask.ID)
	}
}

// addClosingTasks appends the test, build, and deploy tasks.
func (p *Planner) addClosingTasks(m *model.ArchitectureModel, plan *Plan) {
	test := &Task{
		ID:            TaskAPITests,
		Category:      CategoryTest,
		ComponentName: "api",
		Priority:      5,
		Description:   "generate API tests for all boundary units",
	}
	for _, u := range m.Units {
		if u.Kind == model.KindController {
			test.DependsOn(TaskID(CategoryBackend, u))
		}
	}
	if len(test.Dependencies) > 0 {
		plan.add(test)
	}

	build := &Task{
		ID:            TaskBuild,
		Category:      CategoryBuild,
		ComponentName: "project",
		Priority:      6,
		Description:   "generate project build configuration",
	}
	for _, t := range plan.Tasks {
		build.DependsOn(t.ID)
	}
	plan.add(build)

	deploy := &Task{
		ID:            TaskDeploy,
		Category:      CategoryDeploy,
		ComponentName: "project",
		Priority:      7,
		Description:   "generate deployment descriptors",
	}
	deploy.DependsOn(TaskBuild)
	plan.add(deploy)
}

// dependOnUnit adds a dependency on the named unit's task, if it exists.
func (p *Planner) dependOnUnit(m *model.ArchitectureModel, plan *Plan, t *Task, unitName string) {
	u := m.Unit(unitName)
	if u == nil {
		return
	}
	if dep := plan.Task(TaskID(taskCategory(u), u)); dep != nil && dep != t {
		t.DependsOn(dep.ID)
	}
}

// add appends a task in discovery order.
func (p *Plan) add(t *Task) {
	p.Tasks = append(p.Tasks, t)
	p.byID[t.ID] = t
}

func taskCategory(u *model.Unit) TaskCategory {
	if u.Kind.Frontend() {
		return CategoryFrontend
	}
	if u.Kind == model.KindUtility {
		return CategoryShared
	}
	return CategoryBackend
}

func layerPriority(kind model.UnitKind) int {
	switch kind {
	case model.KindDataEntity:
		return 1
	case model.KindRepository, model.KindService:
		return 2
	case model.KindController, model.KindMiddleware:
		return 3
	default:
		return 4
	}
}

func hasEntities(m *model.ArchitectureModel) bool {
	for _, u := range m.Units {
		if u.Kind == model.KindDataEntity {
			return true
		}
	}
	return false
}
