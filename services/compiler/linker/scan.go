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
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// reExport matches exported top-level declarations in generated source.
var reExport = regexp.MustCompile(`(?m)^export\s+(?:default\s+)?(?:abstract\s+)?(?:class|function|const|let|interface|enum|type)\s+([A-Za-z_]\w*)`)

// reIdent is the fallback identifier scan used when tree-sitter cannot
// parse the file.
var reIdent = regexp.MustCompile(`\b[A-Za-z_]\w*\b`)

// tsKeywords are skipped by the fallback scan; tree-sitter distinguishes
// them structurally.
var tsKeywords = map[string]bool{
	"abstract": true, "any": true, "as": true, "async": true, "await": true,
	"boolean": true, "break": true, "case": true, "catch": true, "class": true,
	"const": true, "constructor": true, "continue": true, "default": true,
	"delete": true, "do": true, "else": true, "enum": true, "export": true,
	"extends": true, "false": true, "finally": true, "for": true, "from": true,
	"function": true, "if": true, "implements": true, "import": true, "in": true,
	"instanceof": true, "interface": true, "let": true, "new": true, "null": true,
	"number": true, "of": true, "private": true, "protected": true, "public": true,
	"readonly": true, "return": true, "static": true, "string": true, "super": true,
	"switch": true, "this": true, "throw": true, "true": true, "try": true,
	"type": true, "typeof": true, "undefined": true, "var": true, "void": true,
	"while": true, "yield": true,
}

// Exports returns the exported top-level identifiers of a generated file,
// in declaration order.
func Exports(content string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range reExport.FindAllStringSubmatch(content, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Identifiers returns every identifier referenced in the file. Tree-sitter
// parses TypeScript and TSX structurally; if parsing fails, a keyword-
// filtered lexical scan stands in so linking degrades rather than stops.
func Identifiers(ctx context.Context, path, content string) map[string]bool {
	ids, err := treeSitterIdentifiers(ctx, path, content)
	if err == nil {
		return ids
	}
	return fallbackIdentifiers(content)
}

func treeSitterIdentifiers(ctx context.Context, path, content string) (map[string]bool, error) {
	parser := sitter.NewParser()
	if strings.HasSuffix(path, ".tsx") {
		parser.SetLanguage(tsx.GetLanguage())
	} else {
		parser.SetLanguage(typescript.GetLanguage())
	}

	tree, err := parser.ParseCtx(ctx, nil, []byte(content))
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	ids := make(map[string]bool)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		switch n.Type() {
		case "identifier", "type_identifier":
			ids[n.Content([]byte(content))] = true
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return ids, nil
}

func fallbackIdentifiers(content string) map[string]bool {
	ids := make(map[string]bool)
	for _, m := range reIdent.FindAllString(content, -1) {
		if !tsKeywords[m] {
			ids[m] = true
		}
	}
	return ids
}

// localDeclarations returns identifiers declared at the top level of the
// file itself, exported or not. References to these never need imports.
var reLocalDecl = regexp.MustCompile(`(?m)^(?:export\s+)?(?:default\s+)?(?:abstract\s+)?(?:class|function|const|let|var|interface|enum|type)\s+([A-Za-z_]\w*)`)

func localDeclarations(content string) map[string]bool {
	decls := make(map[string]bool)
	for _, m := range reLocalDecl.FindAllStringSubmatch(content, -1) {
		decls[m[1]] = true
	}
	return decls
}
