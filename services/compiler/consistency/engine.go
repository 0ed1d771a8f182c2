// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package consistency validates and auto-repairs method-signature drift
// between the layers of one resource: entity R, service RService, and
// boundary RController (suffix convention).
//
// The entity's method list is canonical. The engine never invents a method
// on a layer that lacks it entirely — that is the sequence backfill's job.
// Return types are normalized before comparison by stripping one level of a
// configured async wrapper (Promise<X> ≡ X, Future<X> ≡ X), so a service
// returning Promise<number> is consistent with an entity returning number.
//
// The engine runs twice per build: once on the raw model to steer prompts,
// and once after the linking pass to catch drift the prompts did not
// prevent. Drift is always auto-corrected and logged, never silently
// ignored, never fatal.
package consistency

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/registry"
)

// Default async-wrapper configuration.
var defaultWrappers = []string{"Promise", "Future", "Task"}

const defaultServiceWrapper = "Promise"

// Drift records one auto-corrected cross-layer mismatch.
type Drift struct {
	ClassName  string `json:"class_name"`
	MethodName string `json:"method_name"`
	From       string `json:"from"`
	To         string `json:"to"`
}

func (d Drift) String() string {
	return fmt.Sprintf("%s.%s: %s -> %s", d.ClassName, d.MethodName, d.From, d.To)
}

// Option configures an Engine.
type Option func(*Engine)

// WithWrappers replaces the async-wrapper equivalence table.
func WithWrappers(wrappers []string) Option {
	return func(e *Engine) { e.wrappers = wrappers }
}

// WithServiceWrapper sets the wrapper applied when rewriting a drifted
// service-layer return type.
func WithServiceWrapper(w string) Option {
	return func(e *Engine) { e.serviceWrapper = w }
}

// Engine is the cross-layer consistency engine.
//
// Thread Safety:
//
//	Engine holds no mutable state of its own; it mutates the model and the
//	registry it is given. One engine per run, used from that run only.
type Engine struct {
	registry       *registry.Registry
	logger         *slog.Logger
	wrappers       []string
	serviceWrapper string
}

// New creates an Engine bound to one run's registry.
func New(reg *registry.Registry, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		registry:       reg,
		logger:         logger,
		wrappers:       defaultWrappers,
		serviceWrapper: defaultServiceWrapper,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Check validates every entity's dependent layers against the canonical
// method list, repairing drift in place. Returns the drift records.
func (e *Engine) Check(m *model.ArchitectureModel) []Drift {
	var drifts []Drift
	for _, u := range m.Units {
		if u.Kind != model.KindDataEntity {
			continue
		}
		for _, dependent := range []*model.Unit{
			m.Unit(u.Name + "Service"),
			m.Unit(u.Name + "Controller"),
		} {
			if dependent == nil {
				continue
			}
			drifts = append(drifts, e.checkPair(u, dependent)...)
		}
	}
	return drifts
}

// checkPair compares one dependent unit against the canonical entity and
// overwrites drifted signatures with the canonical form.
func (e *Engine) checkPair(entity, dependent *model.Unit) []Drift {
	var drifts []Drift

	for _, canonical := range entity.Methods {
		dep := dependent.Method(canonical.Name)
		if dep == nil {
			// Absent entirely on the dependent layer: not this engine's
			// job to invent it.
			continue
		}

		if e.Normalize(dep.ReturnType) == e.Normalize(canonical.ReturnType) &&
			paramsEqual(dep.Parameters, canonical.Parameters) {
			e.registry.MarkConsistent(entity.Name, canonical.Name, true)
			e.registry.MarkConsistent(dependent.Name, canonical.Name, true)
			continue
		}

		from := dep.Signature()
		dep.Parameters = cloneParams(canonical.Parameters)
		dep.ReturnType = e.expectedReturn(dependent.Kind, canonical.ReturnType)
		to := dep.Signature()

		e.registry.UpdateSignature(dependent.Name, canonical.Name, dep.Parameters, dep.ReturnType)
		e.registry.MarkConsistent(entity.Name, canonical.Name, true)
		e.registry.MarkConsistent(dependent.Name, canonical.Name, true)

		drift := Drift{
			ClassName:  dependent.Name,
			MethodName: canonical.Name,
			From:       from,
			To:         to,
		}
		drifts = append(drifts, drift)
		e.logger.Warn("signature drift corrected",
			slog.String("class", drift.ClassName),
			slog.String("method", drift.MethodName),
			slog.String("from", drift.From),
			slog.String("to", drift.To),
		)
	}

	return drifts
}

// Normalize strips one level of a known async wrapper: Promise<X> → X.
// An empty type normalizes to void.
func (e *Engine) Normalize(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return "void"
	}
	for _, w := range e.wrappers {
		prefix := w + "<"
		if strings.HasPrefix(t, prefix) && strings.HasSuffix(t, ">") {
			return strings.TrimSpace(t[len(prefix) : len(t)-1])
		}
	}
	return t
}

// expectedReturn is the return type a dependent layer should carry for a
// canonical return: services wrap in the configured async wrapper,
// boundary layers use the canonical type directly.
func (e *Engine) expectedReturn(kind model.UnitKind, canonical string) string {
	if kind == model.KindService {
		return e.serviceWrapper + "<" + e.Normalize(canonical) + ">"
	}
	return e.Normalize(canonical)
}

// tsMethodDecl matches a TypeScript class method declaration line, capturing
// indentation+modifiers, name, parameter list, and return type.
var tsMethodDecl = regexp.MustCompile(`(?m)^(\s*(?:public\s+|private\s+|protected\s+)?(?:async\s+)?)([A-Za-z_]\w*)\s*\(([^)]*)\)\s*:\s*([^{;]+?)\s*\{`)

// RepairSource re-applies the canonical signatures to generated source for
// a dependent unit. Each declaration of a canonical method is parsed out of
// the text, normalized, and rewritten when drifted. The repair is
// idempotent: repaired text compares equal on the second pass.
func (e *Engine) RepairSource(entity, dependent *model.Unit, content string) (string, []Drift) {
	var drifts []Drift

	repaired := tsMethodDecl.ReplaceAllStringFunc(content, func(decl string) string {
		match := tsMethodDecl.FindStringSubmatch(decl)
		name := match[2]

		canonical := entity.Method(name)
		if canonical == nil {
			return decl
		}

		declaredRet := strings.TrimSpace(match[4])
		expectedRet := e.expectedReturn(dependent.Kind, canonical.ReturnType)
		expectedParams := renderParams(canonical.Parameters)

		if e.Normalize(declaredRet) == e.Normalize(canonical.ReturnType) &&
			normalizeSpace(match[3]) == normalizeSpace(expectedParams) {
			return decl
		}

		drift := Drift{
			ClassName:  dependent.Name,
			MethodName: name,
			From:       fmt.Sprintf("%s(%s): %s", name, strings.TrimSpace(match[3]), declaredRet),
			To:         fmt.Sprintf("%s(%s): %s", name, expectedParams, expectedRet),
		}
		drifts = append(drifts, drift)
		e.logger.Warn("generated source drift corrected",
			slog.String("class", drift.ClassName),
			slog.String("method", drift.MethodName),
			slog.String("from", drift.From),
			slog.String("to", drift.To),
		)

		e.registry.UpdateSignature(dependent.Name, name, canonical.Parameters, expectedRet)

		return fmt.Sprintf("%s%s(%s): %s {", match[1], name, expectedParams, expectedRet)
	})

	return repaired, drifts
}

// renderParams renders params in TypeScript declaration form.
func renderParams(params []model.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		opt := ""
		if !p.Required {
			opt = "?"
		}
		parts[i] = fmt.Sprintf("%s%s: %s", p.Name, opt, p.Type)
	}
	return strings.Join(parts, ", ")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func paramsEqual(a, b []model.Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name || a[i].Type != b[i].Type || a[i].Required != b[i].Required {
			return false
		}
	}
	return true
}

func cloneParams(params []model.Param) []model.Param {
	out := make([]model.Param, len(params))
	copy(out, params)
	return out
}
