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
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/parser"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
)

// StubFor produces the deterministic fallback artifact for a task. The
// stub satisfies the unit's declared shape so dependents can still link
// against it; method bodies throw until regenerated.
func StubFor(task *planner.Task, g *Grounding) *Artifact {
	var path, content string

	switch {
	case task.UnitName != "":
		u := g.Model.Unit(task.UnitName)
		if u == nil {
			return nil
		}
		path = u.FilePath
		content = stubUnit(u)
	case task.ID == planner.TaskSharedTypes:
		path = parser.SharedRoot + "/types/index.ts"
		content = stubSharedTypes(g.Model)
	case task.ID == planner.TaskAPITests:
		path = parser.ServerRoot + "/__tests__/api.test.ts"
		content = stubAPITests(g.Model)
	case task.ID == planner.TaskBuild:
		path = "package.json"
		content = stubPackageJSON(g.Model.ProjectID)
	case task.ID == planner.TaskDeploy:
		path = "deploy/Dockerfile"
		content = stubDockerfile()
	default:
		return nil
	}

	return &Artifact{
		Path:     path,
		Content:  content,
		Category: task.Category,
		UnitName: task.UnitName,
		Stub:     true,
	}
}

func stubUnit(u *model.Unit) string {
	switch u.Kind {
	case model.KindUIComponent, model.KindUIPage:
		return fmt.Sprintf(`import React from 'react';

export function %s() {
  return <div>%s</div>;
}
`, u.Name, u.Name)
	case model.KindHook:
		var b strings.Builder
		fmt.Fprintf(&b, "export function %s() {\n", u.Name)
		fmt.Fprintf(&b, "  throw new Error('%s not implemented');\n}\n", u.Name)
		return b.String()
	default:
		return stubClass(u)
	}
}

func stubClass(u *model.Unit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "export class %s {\n", u.Name)

	for _, p := range u.Properties {
		opt := ""
		if !p.Required {
			opt = "?"
		}
		mod := ""
		if p.Visibility == model.VisibilityPrivate {
			mod = "private "
		} else if p.Visibility == model.VisibilityProtected {
			mod = "protected "
		}
		fmt.Fprintf(&b, "  %s%s%s: %s;\n", mod, p.Name, opt, p.Type)
	}
	if len(u.Properties) > 0 && len(u.Methods) > 0 {
		b.WriteString("\n")
	}

	for i, m := range u.Methods {
		if i > 0 {
			b.WriteString("\n")
		}
		params := make([]string, len(m.Parameters))
		for j, p := range m.Parameters {
			opt := ""
			if !p.Required {
				opt = "?"
			}
			params[j] = fmt.Sprintf("%s%s: %s", p.Name, opt, p.Type)
		}
		ret := m.ReturnType
		if ret == "" {
			ret = "void"
		}
		fmt.Fprintf(&b, "  %s(%s): %s {\n", m.Name, strings.Join(params, ", "), ret)
		fmt.Fprintf(&b, "    throw new Error('%s.%s not implemented');\n  }\n", u.Name, m.Name)
	}

	b.WriteString("}\n")
	return b.String()
}

func stubSharedTypes(m *model.ArchitectureModel) string {
	var b strings.Builder
	for i, u := range m.Units {
		if u.Kind != model.KindDataEntity {
			continue
		}
		if i > 0 && b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "export interface %s {\n", u.Name)
		for _, p := range u.Properties {
			opt := ""
			if !p.Required {
				opt = "?"
			}
			fmt.Fprintf(&b, "  %s%s: %s;\n", p.Name, opt, p.Type)
		}
		b.WriteString("}\n")
	}
	if b.Len() == 0 {
		b.WriteString("export {};\n")
	}
	return b.String()
}

func stubAPITests(m *model.ArchitectureModel) string {
	var b strings.Builder
	b.WriteString("import { describe, it } from 'vitest';\n\n")
	for _, u := range m.Units {
		if u.Kind != model.KindController {
			continue
		}
		fmt.Fprintf(&b, "describe('%s', () => {\n", u.Name)
		for _, meth := range u.Methods {
			fmt.Fprintf(&b, "  it.todo('%s');\n", meth.Name)
		}
		b.WriteString("});\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func stubPackageJSON(projectID string) string {
	if projectID == "" {
		projectID = "generated-project"
	}
	return fmt.Sprintf(`{
  "name": "%s",
  "private": true,
  "scripts": {
    "build": "tsc -b",
    "test": "vitest run"
  }
}
`, projectID)
}

func stubDockerfile() string {
	return `FROM node:22-alpine
WORKDIR /app
COPY . .
RUN npm ci && npm run build
CMD ["node", "server/dist/index.js"]
`
}
