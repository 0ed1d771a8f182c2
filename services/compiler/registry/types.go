// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package registry

import (
	"fmt"
	"strings"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

// SymbolType classifies what a registry symbol represents.
type SymbolType string

const (
	// SymbolUnit is a class-like unit (entity, service, controller, ...).
	SymbolUnit SymbolType = "unit"

	// SymbolProperty is a data member of a unit.
	SymbolProperty SymbolType = "property"

	// SymbolMethod is a method of a unit.
	SymbolMethod SymbolType = "method"

	// SymbolExport is an exported identifier registered from a generated
	// artifact during Pass A, available for Pass B reference resolution.
	SymbolExport SymbolType = "export"
)

// Symbol is one indexed entry in the registry.
//
// Invariant: there is exactly one Symbol per (owner, member) pair, enforced
// by the ID convention "<layer>_<owner>_<member>". Dependency and dependent
// edge lists are kept mutually consistent by Registry.AddDependency.
type Symbol struct {
	// ID is the unique identifier, "<layer>_<owner>_<member>" for members
	// and "<layer>_<name>" for units.
	ID string `json:"id"`

	// Name is the identifier as it appears in generated source.
	Name string `json:"name"`

	// Type classifies the symbol (unit, property, method, export).
	Type SymbolType `json:"type"`

	// FilePath is the artifact path that defines this symbol.
	FilePath string `json:"file_path"`

	// Layer is the architectural layer tag (entity, service, controller, ui, ...).
	Layer string `json:"layer"`

	// Visibility is the declared access level.
	Visibility model.Visibility `json:"visibility"`

	// Dependencies are IDs of symbols this symbol depends on.
	Dependencies []string `json:"dependencies,omitempty"`

	// Dependents are IDs of symbols that depend on this symbol.
	Dependents []string `json:"dependents,omitempty"`
}

// Validate checks the symbol's required fields.
func (s *Symbol) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: empty ID", ErrInvalidSymbol)
	}
	if s.Name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidSymbol)
	}
	if s.Type == "" {
		return fmt.Errorf("%w: empty type", ErrInvalidSymbol)
	}
	return nil
}

// UnitID returns the symbol ID for a unit.
func UnitID(layer, name string) string {
	return layer + "_" + name
}

// MemberID returns the symbol ID for a unit member.
func MemberID(layer, owner, member string) string {
	return layer + "_" + owner + "_" + member
}

// MethodSignature is the per-(className, methodName) signature projection.
// CrossLayerConsistent is recomputed by the consistency engine on every run.
type MethodSignature struct {
	ClassName            string           `json:"class_name"`
	MethodName           string           `json:"method_name"`
	Parameters           []model.Param    `json:"parameters"`
	ReturnType           string           `json:"return_type"`
	Visibility           model.Visibility `json:"visibility"`
	CrossLayerConsistent bool             `json:"cross_layer_consistent"`
}

// String renders the signature in declaration form.
func (s *MethodSignature) String() string {
	spec := model.MethodSpec{
		Name:       s.MethodName,
		Parameters: s.Parameters,
		ReturnType: s.ReturnType,
		Visibility: s.Visibility,
	}
	return s.ClassName + "." + spec.Signature()
}

// DataContract is the per-unit contract view handed to generators:
// the unit's shape plus what it depends on and what uses it.
type DataContract struct {
	UnitName     string   `json:"unit_name"`
	Layer        string   `json:"layer"`
	FilePath     string   `json:"file_path"`
	Properties   []string `json:"properties"`
	Methods      []string `json:"methods"`
	Dependencies []string `json:"dependencies"`
	UsedBy       []string `json:"used_by"`
}

// Render returns the contract as prompt-ready text.
func (c *DataContract) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Unit %s (layer %s, file %s)\n", c.UnitName, c.Layer, c.FilePath)
	if len(c.Properties) > 0 {
		b.WriteString("Properties:\n")
		for _, p := range c.Properties {
			fmt.Fprintf(&b, "  - %s\n", p)
		}
	}
	if len(c.Methods) > 0 {
		b.WriteString("Methods:\n")
		for _, m := range c.Methods {
			fmt.Fprintf(&b, "  - %s\n", m)
		}
	}
	if len(c.Dependencies) > 0 {
		fmt.Fprintf(&b, "Depends on: %s\n", strings.Join(c.Dependencies, ", "))
	}
	if len(c.UsedBy) > 0 {
		fmt.Fprintf(&b, "Used by: %s\n", strings.Join(c.UsedBy, ", "))
	}
	return b.String()
}
