// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"

	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/compiler/registry"
)

// Per-dependency cap on quoted artifact text in prompts.
const maxExcerptChars = 4000

// Grounding carries everything a generator may reference: the model, the
// symbol registry, and every artifact generated so far in this run. It is
// filled in generation order, so a task's dependencies are always present
// before the task itself is generated.
//
// Thread Safety:
//
//	Grounding is owned by one run's generation loop and is not safe for
//	concurrent mutation.
type Grounding struct {
	Model    *model.ArchitectureModel
	Registry *registry.Registry

	byTask   map[string]*Artifact
	splitter textsplitter.RecursiveCharacter
}

// NewGrounding creates the grounding context for one run.
func NewGrounding(m *model.ArchitectureModel, reg *registry.Registry) *Grounding {
	return &Grounding{
		Model:    m,
		Registry: reg,
		byTask:   make(map[string]*Artifact),
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(maxExcerptChars),
			textsplitter.WithChunkOverlap(0),
		),
	}
}

// Record stores a finished artifact under its task ID.
func (g *Grounding) Record(taskID string, a *Artifact) {
	g.byTask[taskID] = a
}

// Artifact returns the artifact generated for the given task, or nil.
func (g *Grounding) Artifact(taskID string) *Artifact {
	return g.byTask[taskID]
}

// Artifacts returns every recorded artifact keyed by task ID.
func (g *Grounding) Artifacts() map[string]*Artifact {
	out := make(map[string]*Artifact, len(g.byTask))
	for k, v := range g.byTask {
		out[k] = v
	}
	return out
}

// PromptContext renders the grounding block for one task: the unit's own
// contract, the contracts of its model dependencies, and capped excerpts
// of the artifacts its task dependencies produced.
func (g *Grounding) PromptContext(task *planner.Task) string {
	var b strings.Builder

	if task.UnitName != "" {
		if contract, ok := g.Registry.DataContract(task.UnitName); ok {
			b.WriteString("## Contract\n")
			b.WriteString(contract.Render())
			b.WriteString("\n")
		}
		if u := g.Model.Unit(task.UnitName); u != nil {
			for _, rel := range u.Relationships {
				if contract, ok := g.Registry.DataContract(rel.Target); ok {
					b.WriteString("## Related contract\n")
					b.WriteString(contract.Render())
					b.WriteString("\n")
				}
			}
		}
	}

	for _, depID := range task.Dependencies {
		dep := g.byTask[depID]
		if dep == nil || dep.Content == "" {
			continue
		}
		b.WriteString(fmt.Sprintf("## Existing file: %s\n", dep.Path))
		b.WriteString("```\n")
		b.WriteString(g.excerpt(dep.Content))
		b.WriteString("\n```\n")
	}

	if len(g.Model.InfraContext) > 0 {
		b.WriteString("## Infrastructure\n")
		keys := make([]string, 0, len(g.Model.InfraContext))
		for k := range g.Model.InfraContext {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "%s: %s\n", k, g.Model.InfraContext[k])
		}
	}

	return b.String()
}

// excerpt caps quoted artifact text at one splitter chunk so prompts stay
// within the collaborator's context window.
func (g *Grounding) excerpt(content string) string {
	if len(content) <= maxExcerptChars {
		return content
	}
	chunks, err := g.splitter.SplitText(content)
	if err != nil || len(chunks) == 0 {
		return content[:maxExcerptChars]
	}
	return chunks[0]
}
