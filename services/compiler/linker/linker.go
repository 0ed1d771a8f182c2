// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package linker runs the two-pass linking phase over a run's artifacts.
//
// Pass A walks the plan's generation order, produces each artifact,
// persists it, and registers its exported identifiers. Pass B re-scans
// every artifact for identifiers whose defining file is known to the
// registry, injects the missing imports, and drops internal imports that
// are no longer referenced. Pass B is idempotent: a file it has already
// normalized comes out byte-identical.
//
// A failure on one task or one file is isolated: it is recorded on the
// result and the pass continues with the rest.
package linker

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/AleutianAI/blueprint/pkg/validation"
	"github.com/AleutianAI/blueprint/services/compiler/compose"
	"github.com/AleutianAI/blueprint/services/compiler/generate"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/compiler/registry"
)

var tracer = otel.Tracer("blueprint.compiler.linker")

// Result summarizes one linking run.
type Result struct {
	// Generated counts artifacts produced in Pass A.
	Generated int `json:"generated"`

	// Rewritten counts artifacts whose imports Pass B changed.
	Rewritten int `json:"rewritten"`

	// Stubbed counts artifacts that fell back to deterministic stubs.
	Stubbed int `json:"stubbed"`

	// Failures maps task IDs (Pass A) or artifact paths (Pass B) to the
	// error that sidelined them.
	Failures map[string]string `json:"failures,omitempty"`
}

func (r *Result) fail(key string, err error) {
	if r.Failures == nil {
		r.Failures = make(map[string]string)
	}
	r.Failures[key] = err.Error()
}

// Linker drives generation and reference reconciliation for one run.
type Linker struct {
	registry   *registry.Registry
	composer   *compose.Composer
	dispatcher *generate.Dispatcher
	logger     *slog.Logger
}

// New creates a Linker bound to one run's registry, composer, and
// generator dispatch.
func New(reg *registry.Registry, c *compose.Composer, d *generate.Dispatcher, logger *slog.Logger) *Linker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Linker{
		registry:   reg,
		composer:   c,
		dispatcher: d,
		logger:     logger,
	}
}

// GenerateAll is Pass A: generate every task in plan order, persist each
// artifact, and register its exports so later tasks and Pass B can
// reference them by name.
func (l *Linker) GenerateAll(ctx context.Context, plan *planner.Plan, g *generate.Grounding) *Result {
	ctx, span := tracer.Start(ctx, "Linker.GenerateAll")
	defer span.End()

	res := &Result{}
	for _, taskID := range plan.Order {
		task := plan.Task(taskID)
		if task == nil {
			res.fail(taskID, planner.ErrTaskNotFound)
			continue
		}

		a, err := l.dispatcher.Generate(ctx, task, g)
		if err != nil {
			l.logger.Error("task generation failed",
				slog.String("task", taskID), slog.String("error", err.Error()))
			res.fail(taskID, err)
			continue
		}
		if err := l.composer.Write(a); err != nil {
			l.logger.Error("artifact write failed",
				slog.String("task", taskID), slog.String("path", a.Path),
				slog.String("error", err.Error()))
			res.fail(taskID, err)
			continue
		}

		g.Record(taskID, a)
		l.registerExports(a)
		res.Generated++
		if a.Stub {
			res.Stubbed++
		}
	}

	span.SetAttributes(
		attribute.Int("linker.generated", res.Generated),
		attribute.Int("linker.stubbed", res.Stubbed),
	)
	return res
}

// registerExports records every exported identifier of the artifact, plus
// the unit name itself, against the path actually written. Generated
// output is untrusted; names that are not clean identifiers are dropped.
func (l *Linker) registerExports(a *generate.Artifact) {
	for _, name := range Exports(a.Content) {
		if err := validation.ValidateUnitName(name); err != nil {
			l.logger.Warn("skipping unsafe export name",
				slog.String("path", a.Path), slog.String("error", err.Error()))
			continue
		}
		l.registry.RegisterExport(name, a.Path)
	}
	if a.UnitName != "" {
		l.registry.RegisterExport(a.UnitName, a.Path)
	}
}

// LinkAll is Pass B: reconcile imports across every artifact produced by
// Pass A. Each file is rewritten independently; one bad file never stops
// the others.
func (l *Linker) LinkAll(ctx context.Context, g *generate.Grounding) *Result {
	ctx, span := tracer.Start(ctx, "Linker.LinkAll")
	defer span.End()

	res := &Result{}
	for taskID, a := range g.Artifacts() {
		if !linkable(a.Path) {
			continue
		}

		rewritten, changed, err := l.Rewrite(ctx, a.Path, a.Content)
		if err != nil {
			l.logger.Error("artifact left unlinked",
				slog.String("path", a.Path), slog.String("error", err.Error()))
			res.fail(a.Path, err)
			continue
		}
		if !changed {
			continue
		}

		updated := *a
		updated.Content = rewritten
		if err := l.composer.Write(&updated); err != nil {
			l.logger.Error("linked artifact write failed",
				slog.String("path", a.Path), slog.String("error", err.Error()))
			res.fail(a.Path, err)
			continue
		}
		g.Record(taskID, &updated)
		res.Rewritten++
	}

	span.SetAttributes(attribute.Int("linker.rewritten", res.Rewritten))
	return res
}

// Rewrite normalizes one file's imports: referenced project symbols gain
// imports pointing at their defining files, unreferenced internal imports
// are dropped, and external imports pass through untouched. A file whose
// import block cannot be parsed is returned unchanged with the error.
func (l *Linker) Rewrite(ctx context.Context, path, content string) (string, bool, error) {
	decls, body, err := parseImports(content)
	if err != nil {
		return content, false, err
	}
	ids := Identifiers(ctx, path, body)
	locals := localDeclarations(body)

	var externals []*importDecl
	internal := make(map[string][]string)
	imported := make(map[string]bool)

	for _, d := range decls {
		if !d.internal() {
			externals = append(externals, d)
			if d.defName != "" {
				imported[d.defName] = true
			}
			for _, n := range d.names {
				imported[n.name] = true
			}
			continue
		}
		// Internal import: keep only the names the body still uses,
		// type-only names staying type-only.
		for _, n := range d.names {
			if ids[n.name] {
				entry := n.name
				if n.typed {
					entry = "type " + n.name
				}
				internal[d.source] = appendUnique(internal[d.source], entry)
				imported[n.name] = true
			}
		}
	}

	// Inject imports for referenced symbols whose defining file is known.
	for name := range ids {
		if imported[name] || locals[name] {
			continue
		}
		sym, ok := l.registry.ResolveIdentifier(name)
		if !ok || sym.FilePath == "" || sym.FilePath == path {
			continue
		}
		spec := moduleSpecifier(path, sym.FilePath)
		internal[spec] = appendUnique(internal[spec], name)
		imported[name] = true
	}

	rebuilt := renderImports(externals, internal)
	var result string
	switch {
	case rebuilt == "" && body == "":
		result = content
	case rebuilt == "":
		result = body
	case body == "":
		result = rebuilt
	default:
		result = rebuilt + "\n" + body
	}

	return result, result != content, nil
}

// linkable reports whether the path holds TypeScript source Pass B should
// touch. Build and deploy descriptors are never rewritten.
func linkable(path string) bool {
	return hasAnySuffix(path, ".ts", ".tsx")
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if len(s) >= len(suf) && s[len(s)-len(suf):] == suf {
			return true
		}
	}
	return false
}

func appendUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}
