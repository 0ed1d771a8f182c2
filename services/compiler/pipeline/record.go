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
	"encoding/json"
	"fmt"
	"time"

	"github.com/AleutianAI/blueprint/services/compiler/consistency"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
)

// RecordFileName is the plan record artifact written at the output root.
const RecordFileName = "blueprint.plan.json"

// ArtifactRecord is the per-task generation outcome kept for audit.
type ArtifactRecord struct {
	Path string `json:"path"`
	Stub bool   `json:"stub,omitempty"`
}

// PlanRecord is the durable audit record of one run: what was planned, in
// what order it was generated, what each task produced, and every
// correction and failure along the way. It is stored in the run store and
// written beside the generated project for replay.
type PlanRecord struct {
	RunID     string    `json:"run_id"`
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	Phase     Phase     `json:"phase"`

	Tasks    []*planner.Task     `json:"tasks"`
	Graph    map[string][]string `json:"graph"`
	Order    []string            `json:"order"`
	Cycles   [][]string          `json:"cycles,omitempty"`
	Warnings []string            `json:"warnings,omitempty"`

	Artifacts map[string]ArtifactRecord `json:"artifacts,omitempty"`
	Drifts    []consistency.Drift       `json:"drifts,omitempty"`
	Failures  map[string]string         `json:"failures,omitempty"`

	PhaseHistory []PhaseChange `json:"phase_history,omitempty"`
}

// recordKey namespaces plan records in the store by run ID.
func recordKey(runID string) string {
	return "run:" + runID + ":plan"
}

// SaveRecord persists the record in the store.
func SaveRecord(ctx context.Context, store Store, rec *PlanRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling plan record: %w", err)
	}
	if err := store.Set(ctx, recordKey(rec.RunID), data); err != nil {
		return fmt.Errorf("storing plan record for run %s: %w", rec.RunID, err)
	}
	return nil
}

// LoadRecord reads a run's plan record back from the store.
func LoadRecord(ctx context.Context, store Store, runID string) (*PlanRecord, error) {
	data, err := store.Get(ctx, recordKey(runID))
	if err != nil {
		return nil, err
	}
	var rec PlanRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parsing plan record for run %s: %w", runID, err)
	}
	return &rec, nil
}

// Marshal renders the record as the JSON written at the output root.
func (r *PlanRecord) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
