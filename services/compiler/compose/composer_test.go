// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package compose

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/AleutianAI/blueprint/services/compiler/generate"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
)

func writeArtifact(t *testing.T, c *Composer, path, content string) {
	t.Helper()
	err := c.Write(&generate.Artifact{
		Path:     path,
		Content:  content,
		Category: planner.CategoryBackend,
	})
	if err != nil {
		t.Fatalf("Write %s: %v", path, err)
	}
}

func TestComposerWritesArtifacts(t *testing.T) {
	root := t.TempDir()
	c := New(root, nil)

	writeArtifact(t, c, "server/src/models/Order.ts", "export class Order {}\n")

	data, err := os.ReadFile(filepath.Join(root, "server/src/models/Order.ts"))
	if err != nil {
		t.Fatalf("artifact not written: %v", err)
	}
	if string(data) != "export class Order {}\n" {
		t.Errorf("unexpected content %q", data)
	}
}

// Artifacts from a previous run must not survive a re-run with fewer units.
func TestComposerClearsStaleArtifacts(t *testing.T) {
	root := t.TempDir()

	first := New(root, nil)
	writeArtifact(t, first, "server/src/models/Order.ts", "export class Order {}\n")
	writeArtifact(t, first, "server/src/models/Customer.ts", "export class Customer {}\n")

	second := New(root, nil)
	writeArtifact(t, second, "server/src/models/Order.ts", "export class Order { id: string; }\n")

	if _, err := os.Stat(filepath.Join(root, "server/src/models/Customer.ts")); !os.IsNotExist(err) {
		t.Error("stale artifact Customer.ts survived the re-run")
	}
	data, err := os.ReadFile(filepath.Join(root, "server/src/models/Order.ts"))
	if err != nil {
		t.Fatalf("regenerated artifact missing: %v", err)
	}
	if string(data) != "export class Order { id: string; }\n" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestComposerPreservesListedPaths(t *testing.T) {
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "server/src"), 0o755); err != nil {
		t.Fatal(err)
	}
	envPath := filepath.Join(root, "server/src/.env")
	if err := os.WriteFile(envPath, []byte("SECRET=1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(root, nil, WithPreserve([]string{"server/src/.env"}))
	writeArtifact(t, c, "server/src/index.ts", "export {};\n")

	data, err := os.ReadFile(envPath)
	if err != nil {
		t.Fatalf("preserved file deleted: %v", err)
	}
	if string(data) != "SECRET=1\n" {
		t.Errorf("preserved file modified: %q", data)
	}
}

func TestComposerRejectsEscapingPaths(t *testing.T) {
	c := New(t.TempDir(), nil)
	err := c.Write(&generate.Artifact{Path: "../outside.ts", Content: "x"})
	if err == nil {
		t.Fatal("expected error for path escaping the output root")
	}
}

func TestComposerCleanRunsOnce(t *testing.T) {
	root := t.TempDir()
	c := New(root, nil)

	writeArtifact(t, c, "server/src/a.ts", "a\n")
	writeArtifact(t, c, "server/src/b.ts", "b\n")

	// The second Write in the same run must not wipe the first artifact.
	if _, err := os.Stat(filepath.Join(root, "server/src/a.ts")); err != nil {
		t.Errorf("first artifact removed by later write: %v", err)
	}
}

// The default preserve list names scaffolding under each managed root, the
// only trees Clean ever walks.
func TestComposerDefaultPreserveScopedToManagedRoots(t *testing.T) {
	root := t.TempDir()

	if err := os.MkdirAll(filepath.Join(root, "server/node_modules/express"), 0o755); err != nil {
		t.Fatal(err)
	}
	pkgPath := filepath.Join(root, "server/package.json")
	if err := os.WriteFile(pkgPath, []byte("{}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	modPath := filepath.Join(root, "server/node_modules/express/index.js")
	if err := os.WriteFile(modPath, []byte("x\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(root, "server/stale.ts")
	if err := os.WriteFile(stale, []byte("old\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := New(root, nil)
	writeArtifact(t, c, "server/src/index.ts", "export {};\n")

	if _, err := os.Stat(pkgPath); err != nil {
		t.Errorf("default-preserved package.json deleted: %v", err)
	}
	if _, err := os.Stat(modPath); err != nil {
		t.Errorf("default-preserved node_modules cleared: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("unlisted file inside a managed root survived the clean")
	}
}
