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
	"testing"
	"time"
)

func TestStateMachineLegalPath(t *testing.T) {
	sm := NewStateMachine()
	for _, next := range []Phase{PhasePlanning, PhaseGenerating, PhaseLinking, PhaseValidating, PhaseDeploying, PhaseDone} {
		if err := sm.Transition(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
	if !sm.Current().Terminal() {
		t.Error("done should be terminal")
	}
	if len(sm.History()) != 6 {
		t.Errorf("expected 6 recorded transitions, got %d", len(sm.History()))
	}
}

func TestStateMachineSkipsOptionalPhases(t *testing.T) {
	sm := NewStateMachine()
	for _, next := range []Phase{PhasePlanning, PhaseGenerating, PhaseLinking, PhaseDone} {
		if err := sm.Transition(next); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}
}

func TestStateMachineRejectsIllegalTransition(t *testing.T) {
	sm := NewStateMachine()
	if err := sm.Transition(PhaseDeploying); err == nil {
		t.Error("parsing -> deploying should be rejected")
	}
	if sm.Current() != PhaseParsing {
		t.Errorf("rejected transition changed state to %s", sm.Current())
	}

	if err := sm.Transition(PhaseFailed); err != nil {
		t.Fatalf("any phase may fail: %v", err)
	}
	if err := sm.Transition(PhasePlanning); err == nil {
		t.Error("failed is terminal, transition out should be rejected")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); err != ErrKeyNotFound {
		t.Errorf("Get missing = %v, want ErrKeyNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Fatalf("Get = %q, %v", got, err)
	}

	// Mutating the returned slice must not affect the stored value.
	got[0] = 'x'
	again, _ := s.Get(ctx, "k")
	if string(again) != "v" {
		t.Error("store returned aliased slice")
	}
}

func TestMemoryStoreExpire(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Expire(ctx, "missing", time.Minute); err != ErrKeyNotFound {
		t.Errorf("Expire missing = %v, want ErrKeyNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := s.Expire(ctx, "k", -time.Second); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Get(ctx, "k"); err != ErrKeyNotFound {
		t.Errorf("expired key Get = %v, want ErrKeyNotFound", err)
	}
}

func TestPlanRecordRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	rec := &PlanRecord{
		RunID:     "run-1",
		ProjectID: "shop",
		CreatedAt: time.Now().UTC(),
		Phase:     PhaseDone,
		Order:     []string{"a", "b"},
		Artifacts: map[string]ArtifactRecord{"a": {Path: "server/src/a.ts"}},
	}
	if err := SaveRecord(ctx, s, rec); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadRecord(ctx, s, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if loaded.ProjectID != "shop" || loaded.Phase != PhaseDone {
		t.Errorf("loaded record mismatch: %+v", loaded)
	}
	if len(loaded.Order) != 2 || loaded.Artifacts["a"].Path != "server/src/a.ts" {
		t.Errorf("loaded record lost fields: %+v", loaded)
	}
}

func TestPublisherFanOut(t *testing.T) {
	p := NewPublisher()
	ch, cancel := p.Subscribe()
	defer cancel()

	p.Publish(Event{RunID: "r", Phase: PhasePlanning})

	select {
	case e := <-ch:
		if e.RunID != "r" || e.Phase != PhasePlanning {
			t.Errorf("unexpected event %+v", e)
		}
		if e.Timestamp.IsZero() {
			t.Error("publish should stamp the event time")
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}
}

func TestPublisherCancelIsIdempotent(t *testing.T) {
	p := NewPublisher()
	_, cancel := p.Subscribe()
	cancel()
	cancel()
	p.Publish(Event{RunID: "r"})
}
