// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package compose materializes generated artifacts as a project tree.
//
// The composer owns the managed roots of the output directory: before a
// run's artifacts are written, every managed root is cleared so artifacts
// from deleted units cannot survive a re-run. Paths on the preserve list
// are never deleted, only ever overwritten by a regenerated artifact.
package compose

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/AleutianAI/blueprint/services/compiler/generate"
	"github.com/AleutianAI/blueprint/services/compiler/parser"
)

// ManagedRoots are the output subtrees the composer owns outright.
func ManagedRoots() []string {
	return []string{
		parser.ServerRoot,
		parser.ClientRoot,
		parser.SharedRoot,
		"deploy",
	}
}

// preserveNames are the scaffolding entries kept through a clean.
var preserveNames = []string{
	"package.json",
	"package-lock.json",
	"tsconfig.json",
	".env",
	".gitignore",
	"node_modules",
}

// DefaultPreserve is the default set of paths never deleted by a clean,
// relative to the output root. Clean only ever walks the managed roots, so
// the defaults name the scaffolding under each of them; root-level files
// outside the managed roots are never touched in the first place.
func DefaultPreserve() []string {
	var paths []string
	for _, root := range ManagedRoots() {
		for _, name := range preserveNames {
			paths = append(paths, filepath.Join(root, name))
		}
	}
	return paths
}

// Option configures a Composer.
type Option func(*Composer)

// WithPreserve replaces the preserve list.
func WithPreserve(paths []string) Option {
	return func(c *Composer) {
		c.preserve = make(map[string]bool, len(paths))
		for _, p := range paths {
			c.preserve[filepath.Clean(p)] = true
		}
	}
}

// Composer writes one run's artifacts under an output root.
//
// Thread Safety:
//
//	A Composer is used by one run's linking loop; Write calls are not
//	safe to interleave from multiple goroutines.
type Composer struct {
	outputRoot string
	preserve   map[string]bool
	logger     *slog.Logger
	cleaned    bool
}

// New creates a Composer for the given output root.
func New(outputRoot string, logger *slog.Logger, opts ...Option) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Composer{
		outputRoot: outputRoot,
		logger:     logger,
	}
	WithPreserve(DefaultPreserve())(c)
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean clears every managed root, skipping preserve-listed paths. It runs
// at most once per Composer; Write triggers it lazily so a run that
// produces no artifacts leaves the output untouched.
func (c *Composer) Clean() error {
	if c.cleaned {
		return nil
	}
	for _, root := range ManagedRoots() {
		if c.preserve[filepath.Clean(root)] {
			continue
		}
		abs := filepath.Join(c.outputRoot, root)
		if err := c.removeTree(abs, root); err != nil {
			return fmt.Errorf("cleaning managed root %s: %w", root, err)
		}
	}
	c.cleaned = true
	c.logger.Info("managed output roots cleared", slog.String("output", c.outputRoot))
	return nil
}

// removeTree deletes everything under abs except preserve-listed entries.
func (c *Composer) removeTree(abs, rel string) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		entryRel := filepath.Join(rel, entry.Name())
		if c.preserve[entryRel] {
			continue
		}
		if entry.IsDir() {
			if err := c.removeTree(filepath.Join(abs, entry.Name()), entryRel); err != nil {
				return err
			}
			// Leave the directory in place if a preserved child survives.
			if remaining, err := os.ReadDir(filepath.Join(abs, entry.Name())); err == nil && len(remaining) == 0 {
				if err := os.Remove(filepath.Join(abs, entry.Name())); err != nil {
					return err
				}
			}
			continue
		}
		if err := os.Remove(filepath.Join(abs, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// Write materializes one artifact, creating parent directories on demand.
// The first Write of a run triggers the managed-root clean.
func (c *Composer) Write(a *generate.Artifact) error {
	if err := c.Clean(); err != nil {
		return err
	}
	if !filepath.IsLocal(a.Path) {
		return fmt.Errorf("artifact path %q escapes the output root", a.Path)
	}

	abs := filepath.Join(c.outputRoot, a.Path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", a.Path, err)
	}
	if err := os.WriteFile(abs, []byte(a.Content), 0o644); err != nil {
		return fmt.Errorf("writing artifact %s: %w", a.Path, err)
	}

	c.logger.Debug("artifact written",
		slog.String("path", a.Path),
		slog.Int("bytes", len(a.Content)),
		slog.Bool("stub", a.Stub),
	)
	return nil
}

// Read returns the current content of an artifact path, for the linking
// pass's rewrite cycle.
func (c *Composer) Read(path string) (string, error) {
	data, err := os.ReadFile(filepath.Join(c.outputRoot, path))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// OutputRoot returns the configured output root.
func (c *Composer) OutputRoot() string {
	return c.outputRoot
}
