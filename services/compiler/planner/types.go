// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package planner

import "fmt"

// TaskCategory is the closed set of generation task categories. Dispatch
// over categories is a tagged switch with an error default; the closed set
// is enforced by AllCategories and its exhaustiveness test.
type TaskCategory string

const (
	CategoryBackend  TaskCategory = "backend"
	CategoryFrontend TaskCategory = "frontend"
	CategoryShared   TaskCategory = "shared"
	CategoryTest     TaskCategory = "test"
	CategoryBuild    TaskCategory = "build"
	CategoryDeploy   TaskCategory = "deploy"
)

// AllCategories returns every task category. Keep in sync with the
// constants above; the generate package's dispatch test iterates this.
func AllCategories() []TaskCategory {
	return []TaskCategory{
		CategoryBackend,
		CategoryFrontend,
		CategoryShared,
		CategoryTest,
		CategoryBuild,
		CategoryDeploy,
	}
}

// Valid reports whether the category is one of the closed set.
func (c TaskCategory) Valid() bool {
	switch c {
	case CategoryBackend, CategoryFrontend, CategoryShared,
		CategoryTest, CategoryBuild, CategoryDeploy:
		return true
	default:
		return false
	}
}

// Task is one unit of generation work. Created once by the planner;
// Dependencies may gain edges if reconciliation discovers them, otherwise
// the task is immutable after planning.
type Task struct {
	// ID uniquely identifies the task, e.g. "backend_service_OrderService".
	ID string `json:"id"`

	// Category selects the generator.
	Category TaskCategory `json:"category"`

	// UnitName names the model unit this task generates, if any.
	UnitName string `json:"unit_name,omitempty"`

	// ComponentName names the coarse component for non-unit tasks.
	ComponentName string `json:"component_name,omitempty"`

	// Dependencies are task IDs that must be generated first.
	Dependencies []string `json:"dependencies,omitempty"`

	// Priority is advisory metadata only. Scheduling ties break on stable
	// discovery order, never on priority.
	Priority int `json:"priority"`

	// Description is a human-readable summary for logs and the plan record.
	Description string `json:"description,omitempty"`
}

// DependsOn adds a dependency edge if not already present.
func (t *Task) DependsOn(id string) {
	for _, dep := range t.Dependencies {
		if dep == id {
			return
		}
	}
	t.Dependencies = append(t.Dependencies, id)
}

// Plan is the planner output: tasks in stable discovery order, the
// dependency graph, one valid total order over the acyclic portion, and
// any reported cycles.
type Plan struct {
	// Tasks in discovery order.
	Tasks []*Task `json:"tasks"`

	// Graph maps each task ID to its dependency IDs.
	Graph map[string][]string `json:"graph"`

	// Order is a valid total generation order over the acyclic portion.
	Order []string `json:"order"`

	// Cycles holds each detected cycle's full path. Tasks on a cycle are
	// excluded from Order, never silently included.
	Cycles [][]string `json:"cycles,omitempty"`

	// Warnings records non-fatal planning anomalies (dangling edges etc.).
	Warnings []string `json:"warnings,omitempty"`

	byID map[string]*Task
}

// Task returns the task with the given ID, or nil.
func (p *Plan) Task(id string) *Task {
	return p.byID[id]
}

// HasCycles reports whether any planning cycle was detected.
func (p *Plan) HasCycles() bool {
	return len(p.Cycles) > 0
}

// CycleError reports a dependency cycle with its full path. It is recorded
// as a planning error; the remainder of the plan is still produced.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %v", e.Path)
}

// NewCycleError creates a CycleError.
func NewCycleError(path []string) *CycleError {
	return &CycleError{Path: path}
}
