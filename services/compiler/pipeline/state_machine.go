// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline drives one compile run through its phases and owns the
// run-scoped state: the phase machine, the run store, the plan record, and
// progress events.
package pipeline

import (
	"fmt"
	"sync"
	"time"
)

// Phase is one stage of a compile run.
type Phase string

const (
	PhaseParsing    Phase = "parsing"
	PhasePlanning   Phase = "planning"
	PhaseGenerating Phase = "generating"
	PhaseLinking    Phase = "linking"
	PhaseValidating Phase = "validating"
	PhaseDeploying  Phase = "deploying"
	PhaseDone       Phase = "done"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the phase ends the run.
func (p Phase) Terminal() bool {
	return p == PhaseDone || p == PhaseFailed
}

// transitions is the legal phase graph. Any phase may fail; validating and
// deploying may each be skipped when the run has no collaborator for them.
var transitions = map[Phase][]Phase{
	PhaseParsing:    {PhasePlanning, PhaseFailed},
	PhasePlanning:   {PhaseGenerating, PhaseFailed},
	PhaseGenerating: {PhaseLinking, PhaseFailed},
	PhaseLinking:    {PhaseValidating, PhaseDeploying, PhaseDone, PhaseFailed},
	PhaseValidating: {PhaseDeploying, PhaseDone, PhaseFailed},
	PhaseDeploying:  {PhaseDone, PhaseFailed},
	PhaseDone:       {},
	PhaseFailed:     {},
}

// PhaseChange is one recorded transition.
type PhaseChange struct {
	From Phase     `json:"from"`
	To   Phase     `json:"to"`
	At   time.Time `json:"at"`
}

// StateMachine tracks a run's phase and enforces legal transitions.
//
// Thread Safety:
//
//	Safe for concurrent use; progress readers may poll Current while the
//	runner advances phases.
type StateMachine struct {
	mu      sync.RWMutex
	current Phase
	history []PhaseChange
}

// NewStateMachine starts a machine in the parsing phase.
func NewStateMachine() *StateMachine {
	return &StateMachine{current: PhaseParsing}
}

// Current returns the current phase.
func (s *StateMachine) Current() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Transition advances to the next phase. Illegal transitions are rejected
// and leave the machine unchanged.
func (s *StateMachine) Transition(to Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, allowed := range transitions[s.current] {
		if allowed == to {
			s.history = append(s.history, PhaseChange{From: s.current, To: to, At: time.Now()})
			s.current = to
			return nil
		}
	}
	return fmt.Errorf("illegal phase transition %s -> %s", s.current, to)
}

// History returns a copy of the recorded transitions.
func (s *StateMachine) History() []PhaseChange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]PhaseChange, len(s.history))
	copy(out, s.history)
	return out
}
