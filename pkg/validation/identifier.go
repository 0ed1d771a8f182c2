// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided identifiers that end
// up in file paths, store keys, or generated source. Using these validators
// prevents path traversal and injection through diagram-supplied names.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// projectIDPattern matches valid project identifiers.
// Allows: letters, digits, hyphens, underscores. Max length: 64.
var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_\-]{0,63}$`)

// unitNamePattern matches valid diagram unit names: a TypeScript-safe
// identifier. Max length: 128.
var unitNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,127}$`)

// ValidateProjectID validates a project identifier before it is used as
// a directory name or store key component.
//
// Returns an error naming the offending input when validation fails.
func ValidateProjectID(id string) error {
	if id == "" {
		return fmt.Errorf("project id is empty")
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return fmt.Errorf("project id %q contains path characters", id)
	}
	if !projectIDPattern.MatchString(id) {
		return fmt.Errorf("project id %q is not a valid identifier", id)
	}
	return nil
}

// ValidateUnitName validates a diagram unit name before it becomes a
// class name and a file path segment in the generated tree.
func ValidateUnitName(name string) error {
	if name == "" {
		return fmt.Errorf("unit name is empty")
	}
	if !unitNamePattern.MatchString(name) {
		return fmt.Errorf("unit name %q is not a valid identifier", name)
	}
	return nil
}
