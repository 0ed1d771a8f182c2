// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package parser

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

var (
	reSubgraph      = regexp.MustCompile(`^subgraph\s+([\w-]+)\s*$`)
	reComponentNode = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*\[([\w-]+)\]\s*$`)
	reComponentEdge = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*-->\s*([A-Za-z_][A-Za-z0-9_]*)\s*$`)
	reBareNode      = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// parseComponent consumes the component/boundary diagram: subgraph blocks
// declare the backend/frontend boundary, bracketed nodes declare component
// kinds, and "A --> B" edges become dependency relationships used for
// cross-file dependency derivation. Returns the ignored line count.
func (p *Parser) parseComponent(text string, m *model.ArchitectureModel) int {
	anomalies := 0
	boundary := ""

	for _, line := range cleanLines(text) {
		if strings.HasPrefix(line, "graph") || strings.HasPrefix(line, "flowchart") {
			continue
		}

		if match := reSubgraph.FindStringSubmatch(line); match != nil {
			boundary = strings.ToLower(match[1])
			continue
		}
		if line == "end" {
			boundary = ""
			continue
		}

		if match := reComponentNode.FindStringSubmatch(line); match != nil {
			name := match[1]
			kind, ok := stereotypeKinds[match[2]]
			if !ok {
				kind = boundaryDefault(boundary, name)
			}
			p.ensureUnit(m, name, kind)
			continue
		}

		if match := reComponentEdge.FindStringSubmatch(line); match != nil {
			rel := model.Relationship{
				Source: match[1],
				Kind:   model.RelDependency,
				Target: match[2],
			}
			m.Relationships = append(m.Relationships, rel)
			src := p.ensureUnit(m, rel.Source, boundaryDefault(boundary, rel.Source))
			p.ensureUnit(m, rel.Target, boundaryDefault(boundary, rel.Target))
			src.Relationships = append(src.Relationships, rel)
			continue
		}

		// Bare node names declare a component with an inferred kind.
		if reBareNode.MatchString(line) {
			p.ensureUnit(m, line, boundaryDefault(boundary, line))
			continue
		}

		anomalies++
		p.logger.Debug("ignoring unparseable component line", slog.String("line", line))
	}

	return anomalies
}

// boundaryDefault picks a kind for a component declared without a bracket
// annotation: frontend boundary defaults to ui-component, everything else
// falls back to name-convention inference.
func boundaryDefault(boundary, name string) model.UnitKind {
	kind := inferKind(name)
	if boundary == "frontend" && !kind.Frontend() {
		return model.KindUIComponent
	}
	return kind
}
