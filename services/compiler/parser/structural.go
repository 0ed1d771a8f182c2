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
	reClassDecl  = regexp.MustCompile(`^class\s+([A-Za-z_][A-Za-z0-9_]*)\s*\{?\s*$`)
	reStereotype = regexp.MustCompile(`^<<([\w-]+)>>$`)
	reMethodLine = regexp.MustCompile(`^([+\-#])?\s*([A-Za-z_][A-Za-z0-9_]*)\s*\(([^)]*)\)\s*(?::\s*(.+))?$`)
	rePropLine   = regexp.MustCompile(`^([+\-#])?\s*([A-Za-z_][A-Za-z0-9_]*)(\?)?\s*:\s*(.+)$`)

	// Arrow shapes checked longest-first so "--|>" is not misread as "-->".
	reRelation = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*(--\|>|\.\.\|>|\*--|o--|\.\.>|-->)\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?::\s*(.+))?$`)
)

// arrowKinds maps the six recognized arrow shapes to relationship kinds.
var arrowKinds = map[string]model.RelationshipKind{
	"*--":  model.RelComposition,
	"o--":  model.RelAggregation,
	"-->":  model.RelAssociation,
	"..>":  model.RelDependency,
	"..|>": model.RelRealization,
	"--|>": model.RelInheritance,
}

// stereotypeKinds maps explicit <<stereotype>> annotations to unit kinds.
var stereotypeKinds = map[string]model.UnitKind{
	"entity":       model.KindDataEntity,
	"service":      model.KindService,
	"controller":   model.KindController,
	"repository":   model.KindRepository,
	"middleware":   model.KindMiddleware,
	"ui-component": model.KindUIComponent,
	"ui-page":      model.KindUIPage,
	"hook":         model.KindHook,
	"utility":      model.KindUtility,
}

// parseStructural consumes the class-diagram block: unit declarations with
// typed member and method lines, plus relationship arrows. Returns the
// count of ignored (unparseable) lines.
func (p *Parser) parseStructural(text string, m *model.ArchitectureModel) int {
	anomalies := 0
	var current *model.Unit

	for _, line := range cleanLines(text) {
		if line == "classDiagram" {
			continue
		}

		if match := reClassDecl.FindStringSubmatch(line); match != nil {
			name := match[1]
			current = p.ensureUnit(m, name, inferKind(name))
			continue
		}

		if line == "}" {
			current = nil
			continue
		}

		if current != nil {
			if match := reStereotype.FindStringSubmatch(line); match != nil {
				if kind, ok := stereotypeKinds[match[1]]; ok {
					current.Kind = kind
				}
				continue
			}

			// Method lines before property lines: "name(): T" also matches
			// the property pattern.
			if match := reMethodLine.FindStringSubmatch(line); match != nil {
				current.Methods = append(current.Methods, model.MethodSpec{
					Name:       match[2],
					Parameters: parseParams(match[3]),
					ReturnType: orVoid(match[4]),
					Visibility: model.VisibilityFromMarker(match[1]),
				})
				continue
			}

			if match := rePropLine.FindStringSubmatch(line); match != nil {
				current.Properties = append(current.Properties, model.Property{
					Name:       match[2],
					Type:       normalizeGenerics(strings.TrimSpace(match[4])),
					Visibility: model.VisibilityFromMarker(match[1]),
					Required:   match[3] != "?",
				})
				continue
			}
		}

		if match := reRelation.FindStringSubmatch(line); match != nil {
			rel := model.Relationship{
				Source:      match[1],
				Kind:        arrowKinds[match[2]],
				Target:      match[3],
				Description: strings.TrimSpace(match[4]),
			}
			m.Relationships = append(m.Relationships, rel)
			src := p.ensureUnit(m, rel.Source, inferKind(rel.Source))
			p.ensureUnit(m, rel.Target, inferKind(rel.Target))
			src.Relationships = append(src.Relationships, rel)
			continue
		}

		anomalies++
		p.logger.Debug("ignoring unparseable structural line", slog.String("line", line))
	}

	return anomalies
}

// inferKind derives a unit kind from the naming convention when no
// stereotype is declared. Entities are the default.
func inferKind(name string) model.UnitKind {
	switch {
	case strings.HasSuffix(name, "Service"):
		return model.KindService
	case strings.HasSuffix(name, "Controller"):
		return model.KindController
	case strings.HasSuffix(name, "Repository"):
		return model.KindRepository
	case strings.HasSuffix(name, "Middleware"):
		return model.KindMiddleware
	case strings.HasPrefix(name, "use"):
		return model.KindHook
	case strings.HasSuffix(name, "Page"):
		return model.KindUIPage
	default:
		return model.KindDataEntity
	}
}

// parseParams splits "a: T, b?: U" into typed params. A bare name gets
// type "any"; a trailing "?" on the name marks the param optional.
func parseParams(raw string) []model.Param {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	params := make([]model.Param, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, typ := part, "any"
		if idx := strings.Index(part, ":"); idx >= 0 {
			name = strings.TrimSpace(part[:idx])
			typ = normalizeGenerics(strings.TrimSpace(part[idx+1:]))
		}
		required := true
		if strings.HasSuffix(name, "?") {
			name = strings.TrimSuffix(name, "?")
			required = false
		}
		params = append(params, model.Param{Name: name, Type: typ, Required: required})
	}
	return params
}

func orVoid(ret string) string {
	ret = strings.TrimSpace(ret)
	if ret == "" {
		return "void"
	}
	return normalizeGenerics(ret)
}

// normalizeGenerics rewrites tilde-delimited generics to angle brackets:
// "Promise~number~" becomes "Promise<number>". Tildes alternate between
// opening and closing.
func normalizeGenerics(t string) string {
	if !strings.Contains(t, "~") {
		return t
	}
	var b strings.Builder
	open := false
	for _, r := range t {
		if r != '~' {
			b.WriteRune(r)
			continue
		}
		if open {
			b.WriteRune('>')
		} else {
			b.WriteRune('<')
		}
		open = !open
	}
	return b.String()
}
