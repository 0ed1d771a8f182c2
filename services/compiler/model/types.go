// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package model defines the Architecture Model: the typed representation of
// an architecture diagram set (structural, component, sequence) that the
// rest of the compiler operates on.
//
// The model is produced once by the parser, may have method lists mutated by
// the consistency engine, and is treated as immutable once generation starts.
package model

import (
	"fmt"
	"strings"
)

// UnitKind classifies the architectural role of a Unit.
type UnitKind string

const (
	// KindDataEntity is a persistence-layer data entity (canonical for signatures).
	KindDataEntity UnitKind = "data-entity"

	// KindService is a business-logic service unit.
	KindService UnitKind = "service"

	// KindController is a boundary/controller unit exposed at the API edge.
	KindController UnitKind = "controller"

	// KindRepository is a data-access repository unit.
	KindRepository UnitKind = "repository"

	// KindMiddleware is a cross-cutting request middleware unit.
	KindMiddleware UnitKind = "middleware"

	// KindUIComponent is a frontend presentational component.
	KindUIComponent UnitKind = "ui-component"

	// KindUIPage is a frontend routed page.
	KindUIPage UnitKind = "ui-page"

	// KindHook is a frontend reusable state/effect hook.
	KindHook UnitKind = "hook"

	// KindUtility is a shared utility unit.
	KindUtility UnitKind = "utility"
)

// Layer returns the architectural layer tag used in symbol IDs.
//
// The layer is a coarser grouping than the kind: entities map to "entity",
// services to "service", boundary units to "controller", and the frontend
// kinds to "ui". Everything else maps to "shared".
func (k UnitKind) Layer() string {
	switch k {
	case KindDataEntity:
		return "entity"
	case KindService:
		return "service"
	case KindController:
		return "controller"
	case KindRepository:
		return "repository"
	case KindMiddleware:
		return "middleware"
	case KindUIComponent, KindUIPage, KindHook:
		return "ui"
	case KindUtility:
		return "shared"
	default:
		return "shared"
	}
}

// Frontend reports whether the kind belongs to the frontend boundary.
func (k UnitKind) Frontend() bool {
	switch k {
	case KindUIComponent, KindUIPage, KindHook:
		return true
	default:
		return false
	}
}

// Visibility is the declared access level of a member.
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityPrivate   Visibility = "private"
	VisibilityProtected Visibility = "protected"
)

// VisibilityFromMarker maps a diagram marker (+, -, #) to a Visibility.
// Unknown markers default to public, matching the tolerant parsing policy.
func VisibilityFromMarker(marker string) Visibility {
	switch marker {
	case "-":
		return VisibilityPrivate
	case "#":
		return VisibilityProtected
	default:
		return VisibilityPublic
	}
}

// Property is a typed data member of a Unit.
type Property struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Visibility Visibility `json:"visibility"`
	Required   bool       `json:"required"`
}

// Param is a single method parameter.
type Param struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Required bool   `json:"required"`
}

// MethodSpec describes a method on a Unit. Identity is (owner, Name);
// the owner is implicit in the containing Unit.
type MethodSpec struct {
	Name       string     `json:"name"`
	Parameters []Param    `json:"parameters"`
	ReturnType string     `json:"return_type"`
	Visibility Visibility `json:"visibility"`
}

// Signature renders the method as "name(p1: t1, p2: t2): ret" for logs,
// prompts, and drift reports.
func (m MethodSpec) Signature() string {
	params := make([]string, len(m.Parameters))
	for i, p := range m.Parameters {
		params[i] = fmt.Sprintf("%s: %s", p.Name, p.Type)
	}
	ret := m.ReturnType
	if ret == "" {
		ret = "void"
	}
	return fmt.Sprintf("%s(%s): %s", m.Name, strings.Join(params, ", "), ret)
}

// RelationshipKind classifies a directed relationship between units.
type RelationshipKind string

const (
	RelComposition RelationshipKind = "composition"
	RelAggregation RelationshipKind = "aggregation"
	RelAssociation RelationshipKind = "association"
	RelDependency  RelationshipKind = "dependency"
	RelRealization RelationshipKind = "realization"
	RelInheritance RelationshipKind = "inheritance"
)

// Relationship is a directed edge from Source to Target. The graph is not
// required to be acyclic; cycle handling is the planner's concern.
type Relationship struct {
	Source      string           `json:"source"`
	Kind        RelationshipKind `json:"kind"`
	Target      string           `json:"target"`
	Description string           `json:"description,omitempty"`
}

// SequenceStep is one interaction from a sequence diagram. Steps backfill
// methods that are implied by an interaction trace but absent from the
// owning unit's declared methods.
type SequenceStep struct {
	From       string  `json:"from"`
	To         string  `json:"to"`
	Action     string  `json:"action"`
	Parameters []Param `json:"parameters,omitempty"`
	ReturnType string  `json:"return_type,omitempty"`
}

// Unit is a named class/component-equivalent with properties, methods, and
// a layer tag. FilePath is the destination path the generators will write.
type Unit struct {
	Name          string         `json:"name"`
	Kind          UnitKind       `json:"kind"`
	Properties    []Property     `json:"properties"`
	Methods       []MethodSpec   `json:"methods"`
	Relationships []Relationship `json:"relationships"`
	FilePath      string         `json:"file_path"`
}

// Method returns the method with the given name, or nil if absent.
func (u *Unit) Method(name string) *MethodSpec {
	for i := range u.Methods {
		if u.Methods[i].Name == name {
			return &u.Methods[i]
		}
	}
	return nil
}

// HasMethod reports whether the unit declares a method with the given name.
func (u *Unit) HasMethod(name string) bool {
	return u.Method(name) != nil
}

// ArchitectureModel is the typed parser output: units, relationships, and
// sequence steps, plus the opaque infra context passed through to the
// deployment collaborator.
type ArchitectureModel struct {
	ProjectID     string            `json:"project_id"`
	Units         []*Unit           `json:"units"`
	Relationships []Relationship    `json:"relationships"`
	SequenceSteps []SequenceStep    `json:"sequence_steps"`
	InfraContext  map[string]string `json:"infra_context,omitempty"`
}

// Unit returns the unit with the given name, or nil if absent.
func (m *ArchitectureModel) Unit(name string) *Unit {
	for _, u := range m.Units {
		if u.Name == name {
			return u
		}
	}
	return nil
}

// Empty reports whether the model carries no units at all. An empty model
// is a terminal precondition failure for a run.
func (m *ArchitectureModel) Empty() bool {
	return m == nil || len(m.Units) == 0
}
