// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package parser turns raw diagram text into an Architecture Model.
//
// Parsing is deliberately line-oriented and tolerant rather than a full
// grammar: unit declarations, typed member lines, method lines, six
// relationship arrow shapes, and sequence interactions are recognized;
// everything else is skipped. An unparseable line is a ParseAnomaly in the
// error taxonomy — it is counted and ignored, never fatal. The only error
// the parser returns is an input set that yields no units at all.
//
// The DiagramParser interface exists so a stricter grammar-based parser can
// be substituted without touching the rest of the pipeline.
package parser

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

// ErrEmptyModel is returned when the diagram set yields no units.
// This is the one terminal precondition failure of a run.
var ErrEmptyModel = errors.New("diagram input produced an empty architecture model")

// DiagramInput carries the free-text diagram blocks for one project plus
// the opaque infra-context record passed through to deployment.
type DiagramInput struct {
	ProjectID  string            `json:"project_id"`
	Structural string            `json:"structural"`
	Component  string            `json:"component"`
	Sequence   string            `json:"sequence"`
	Infra      map[string]string `json:"infra,omitempty"`
}

// DiagramParser converts diagram text into a typed Architecture Model.
type DiagramParser interface {
	Parse(input DiagramInput) (*model.ArchitectureModel, error)
}

// Parser is the default line-oriented DiagramParser.
//
// Thread Safety:
//
//	Parser is stateless apart from its logger and safe for concurrent use.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

var _ DiagramParser = (*Parser)(nil)

// Parse runs the three sub-parsers in order (structural, component,
// sequence) over the input and assembles the model. Sequence steps backfill
// methods implied by an interaction trace but absent from the owner's
// declared methods, so downstream layers see them.
func (p *Parser) Parse(input DiagramInput) (*model.ArchitectureModel, error) {
	m := &model.ArchitectureModel{
		ProjectID:    input.ProjectID,
		InfraContext: input.Infra,
	}

	anomalies := 0
	anomalies += p.parseStructural(input.Structural, m)
	anomalies += p.parseComponent(input.Component, m)
	anomalies += p.parseSequence(input.Sequence, m)

	p.backfillSequenceMethods(m)
	p.assignFilePaths(m)

	if m.Empty() {
		return nil, ErrEmptyModel
	}

	p.logger.Info("diagram parsing complete",
		slog.String("project_id", input.ProjectID),
		slog.Int("units", len(m.Units)),
		slog.Int("relationships", len(m.Relationships)),
		slog.Int("sequence_steps", len(m.SequenceSteps)),
		slog.Int("ignored_lines", anomalies),
	)

	return m, nil
}

// ensureUnit returns the named unit, creating it with the given kind if it
// does not exist yet. An existing unit keeps its original kind: the
// structural diagram is more specific than the component diagram.
func (p *Parser) ensureUnit(m *model.ArchitectureModel, name string, kind model.UnitKind) *model.Unit {
	if u := m.Unit(name); u != nil {
		return u
	}
	u := &model.Unit{Name: name, Kind: kind}
	m.Units = append(m.Units, u)
	return u
}

// backfillSequenceMethods appends methods that appear only in sequence
// steps to the receiving unit, so the registry and generators see them.
func (p *Parser) backfillSequenceMethods(m *model.ArchitectureModel) {
	for _, step := range m.SequenceSteps {
		u := m.Unit(step.To)
		if u == nil || u.HasMethod(step.Action) {
			continue
		}
		ret := step.ReturnType
		if ret == "" {
			ret = "void"
		}
		u.Methods = append(u.Methods, model.MethodSpec{
			Name:       step.Action,
			Parameters: step.Parameters,
			ReturnType: ret,
			Visibility: model.VisibilityPublic,
		})
		p.logger.Debug("backfilled sequence-implied method",
			slog.String("unit", u.Name),
			slog.String("method", step.Action),
		)
	}
}

// assignFilePaths fills in the destination path for every unit that does
// not already declare one.
func (p *Parser) assignFilePaths(m *model.ArchitectureModel) {
	for _, u := range m.Units {
		if u.FilePath == "" {
			u.FilePath = FilePathFor(u.Name, u.Kind)
		}
	}
}

// cleanLines splits text into trimmed lines, dropping blanks and comment
// lines (%% and //).
func cleanLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") || strings.HasPrefix(line, "//") {
			continue
		}
		out = append(out, line)
	}
	return out
}
