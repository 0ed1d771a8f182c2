// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package linker

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/parser"
)

// clientAlias maps the "@/" import alias onto the client source root,
// mirroring the generated tsconfig path mapping.
const clientAlias = "@/"

// reImport matches one import declaration line: named imports, a default
// import, or both are tolerated; only the named list is rewritten.
var reImport = regexp.MustCompile(`^import\s+(type\s+)?(?:([A-Za-z_]\w*)\s*,\s*)?(?:\{\s*([^}]*?)\s*\})?\s*(?:([A-Za-z_]\w*))?\s+?from\s+['"]([^'"]+)['"];?\s*$`)

// importName is one entry of a named import list. typed marks names
// imported with the "type" keyword, either inline or on the whole
// declaration; rewrites must not demote them to value imports.
type importName struct {
	name  string
	typed bool
}

// importDecl is one parsed import declaration.
type importDecl struct {
	raw     string
	names   []importName
	source  string
	defName string
}

// internal reports whether the import points into the generated project
// (relative path or client alias) as opposed to an external package.
func (d *importDecl) internal() bool {
	return strings.HasPrefix(d.source, ".") || strings.HasPrefix(d.source, clientAlias)
}

// reImportEnd matches a completed import statement: the quoted module
// specifier, optionally followed by a semicolon, closes the declaration.
var reImportEnd = regexp.MustCompile(`['"][^'"]+['"]\s*;?\s*$`)

// parseImports splits content into its import declarations and the
// remaining body. Declarations spanning multiple lines are joined before
// matching. An import that never closes is an error; the caller must leave
// the whole file untouched rather than rewrite around a half-parsed block.
func parseImports(content string) (decls []*importDecl, body string, err error) {
	lines := strings.Split(content, "\n")
	var bodyLines []string

	for i := 0; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(trimmed, "import ") && trimmed != "import" {
			bodyLines = append(bodyLines, lines[i])
			continue
		}

		// Join continuation lines until the module specifier closes the
		// statement. A blank line or EOF before that is a malformed import.
		stmt := trimmed
		for !reImportEnd.MatchString(stmt) {
			if i+1 >= len(lines) {
				return nil, "", fmt.Errorf("unterminated import declaration %q", trimmed)
			}
			next := strings.TrimSpace(lines[i+1])
			if next == "" {
				return nil, "", fmt.Errorf("unterminated import declaration %q", trimmed)
			}
			i++
			stmt += " " + next
		}

		if m := reImport.FindStringSubmatch(stmt); m != nil {
			d := &importDecl{
				raw:    stmt,
				source: m[5],
			}
			declTyped := m[1] != ""
			if m[2] != "" {
				d.defName = m[2]
			} else if m[4] != "" {
				d.defName = m[4]
			}
			if m[3] != "" {
				for _, n := range strings.Split(m[3], ",") {
					n = strings.TrimSpace(n)
					if n == "" {
						continue
					}
					typed := declTyped
					if rest := strings.TrimPrefix(n, "type "); rest != n {
						typed = true
						n = strings.TrimSpace(rest)
					}
					d.names = append(d.names, importName{name: n, typed: typed})
				}
			}
			decls = append(decls, d)
			continue
		}
		// Star and side-effect imports pass through untouched.
		decls = append(decls, &importDecl{raw: stmt})
	}

	return decls, strings.TrimLeft(strings.Join(bodyLines, "\n"), "\n"), nil
}

// moduleSpecifier computes the import source one project file uses to
// reference another. Client-internal references use the "@/" alias; all
// other internal references are relative, extension stripped.
func moduleSpecifier(fromPath, toPath string) string {
	stripped := strings.TrimSuffix(strings.TrimSuffix(toPath, ".tsx"), ".ts")

	clientRoot := parser.ClientRoot + "/"
	if strings.HasPrefix(fromPath, clientRoot) && strings.HasPrefix(stripped, clientRoot) {
		return clientAlias + strings.TrimPrefix(stripped, clientRoot)
	}

	rel, err := relPath(path.Dir(fromPath), stripped)
	if err != nil {
		return stripped
	}
	if !strings.HasPrefix(rel, ".") {
		rel = "./" + rel
	}
	return rel
}

// relPath is filepath.Rel over slash paths.
func relPath(base, target string) (string, error) {
	baseParts := strings.Split(path.Clean(base), "/")
	targetParts := strings.Split(path.Clean(target), "/")

	common := 0
	for common < len(baseParts) && common < len(targetParts) && baseParts[common] == targetParts[common] {
		common++
	}

	var parts []string
	for i := common; i < len(baseParts); i++ {
		if baseParts[i] == "." {
			continue
		}
		parts = append(parts, "..")
	}
	parts = append(parts, targetParts[common:]...)
	if len(parts) == 0 {
		return "", fmt.Errorf("relPath: %s and %s are the same path", base, target)
	}
	return strings.Join(parts, "/"), nil
}

// renderImports produces the normalized import block: external imports in
// their original order, then internal imports grouped per source with
// sorted name lists.
func renderImports(externals []*importDecl, internal map[string][]string) string {
	var b strings.Builder

	for _, d := range externals {
		b.WriteString(d.raw)
		b.WriteString("\n")
	}

	sources := make([]string, 0, len(internal))
	for src := range internal {
		sources = append(sources, src)
	}
	sort.Strings(sources)

	for _, src := range sources {
		names := internal[src]
		sort.Strings(names)
		fmt.Fprintf(&b, "import { %s } from '%s';\n", strings.Join(names, ", "), src)
	}

	return b.String()
}
