// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package registry implements the Symbol Registry: the single shared
// per-run source of truth for symbol and signature facts.
//
// The registry indexes one Symbol per unit, property, and method of the
// Architecture Model, maintains the (className, methodName) signature
// projection, and derives cross-file dependency edges from declared
// relationships. Every generator reads it; the consistency engine and the
// linking pass read and write it. A registry instance is private to one
// run and never shared across runs.
package registry

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

// sigKey identifies a method signature by (className, methodName).
type sigKey struct {
	class  string
	method string
}

// Registry provides O(1) lookups of symbols by ID, exact name, and owning
// file, plus the method-signature projection.
//
// Thread Safety:
//
//	Registry is safe for concurrent use. All state is guarded by an RWMutex.
type Registry struct {
	mu sync.RWMutex

	// Primary index: ID → Symbol
	byID map[string]*Symbol

	// Secondary indexes
	byName map[string][]*Symbol
	byFile map[string][]*Symbol

	// Method-signature projection
	signatures map[sigKey]*MethodSignature

	// Unit shapes retained for data-contract rendering
	units map[string]*model.Unit

	logger *slog.Logger
}

// New creates an empty Registry. A nil logger falls back to slog.Default().
func New(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byID:       make(map[string]*Symbol),
		byName:     make(map[string][]*Symbol),
		byFile:     make(map[string][]*Symbol),
		signatures: make(map[sigKey]*MethodSignature),
		units:      make(map[string]*model.Unit),
		logger:     logger,
	}
}

// BuildFromModel indexes every unit, property, and method of the model and
// derives dependency edges from declared relationships.
//
// A duplicate (owner, member) pair keeps the first symbol and logs a
// warning: the uniqueness invariant wins over tolerant input.
func (r *Registry) BuildFromModel(m *model.ArchitectureModel) error {
	if m == nil {
		return ErrNilModel
	}

	for _, u := range m.Units {
		layer := u.Kind.Layer()

		unitSym := &Symbol{
			ID:         UnitID(layer, u.Name),
			Name:       u.Name,
			Type:       SymbolUnit,
			FilePath:   u.FilePath,
			Layer:      layer,
			Visibility: model.VisibilityPublic,
		}
		if err := r.Add(unitSym); err != nil {
			r.logger.Warn("skipping duplicate unit symbol",
				slog.String("id", unitSym.ID), slog.String("error", err.Error()))
		}

		for _, prop := range u.Properties {
			sym := &Symbol{
				ID:         MemberID(layer, u.Name, prop.Name),
				Name:       prop.Name,
				Type:       SymbolProperty,
				FilePath:   u.FilePath,
				Layer:      layer,
				Visibility: prop.Visibility,
			}
			if err := r.Add(sym); err != nil {
				r.logger.Warn("skipping duplicate property symbol",
					slog.String("id", sym.ID), slog.String("error", err.Error()))
			}
		}

		for _, meth := range u.Methods {
			sym := &Symbol{
				ID:         MemberID(layer, u.Name, meth.Name),
				Name:       meth.Name,
				Type:       SymbolMethod,
				FilePath:   u.FilePath,
				Layer:      layer,
				Visibility: meth.Visibility,
			}
			if err := r.Add(sym); err != nil {
				r.logger.Warn("skipping duplicate method symbol",
					slog.String("id", sym.ID), slog.String("error", err.Error()))
				continue
			}
			r.setSignature(u.Name, meth)
		}

		r.mu.Lock()
		r.units[u.Name] = u
		r.mu.Unlock()
	}

	// Dependency edges from declared relationships: the source unit symbol
	// depends on the target unit symbol.
	for _, rel := range m.Relationships {
		src := m.Unit(rel.Source)
		tgt := m.Unit(rel.Target)
		if src == nil || tgt == nil {
			continue
		}
		fromID := UnitID(src.Kind.Layer(), src.Name)
		toID := UnitID(tgt.Kind.Layer(), tgt.Name)
		if err := r.AddDependency(fromID, toID); err != nil {
			r.logger.Warn("dropping dependency edge",
				slog.String("from", fromID), slog.String("to", toID),
				slog.String("error", err.Error()))
		}
	}

	return nil
}

// Add registers a single symbol. Duplicate IDs are rejected.
func (r *Registry) Add(sym *Symbol) error {
	if sym == nil {
		return fmt.Errorf("%w: symbol is nil", ErrInvalidSymbol)
	}
	if err := sym.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[sym.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateSymbol, sym.ID)
	}

	r.byID[sym.ID] = sym
	r.byName[sym.Name] = append(r.byName[sym.Name], sym)
	if sym.FilePath != "" {
		r.byFile[sym.FilePath] = append(r.byFile[sym.FilePath], sym)
	}
	return nil
}

// GetByID retrieves a symbol by its unique ID.
func (r *Registry) GetByID(id string) (*Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sym, ok := r.byID[id]
	return sym, ok
}

// GetByName retrieves all symbols with the given exact name. The returned
// slice is a defensive copy.
func (r *Registry) GetByName(name string) []*Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copySymbols(r.byName[name])
}

// GetByFile retrieves all symbols defined in the given file. The returned
// slice is a defensive copy.
func (r *Registry) GetByFile(filePath string) []*Symbol {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copySymbols(r.byFile[filePath])
}

// ResolveIdentifier finds the defining symbol for an identifier seen in
// generated source. Unit and export symbols are preferred over members so
// reference injection points at files, not methods.
func (r *Registry) ResolveIdentifier(name string) (*Symbol, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	candidates := r.byName[name]
	if len(candidates) == 0 {
		return nil, false
	}
	for _, sym := range candidates {
		if sym.Type == SymbolUnit || sym.Type == SymbolExport {
			return sym, true
		}
	}
	return nil, false
}

// GetMethodSignature returns the signature for (className, methodName).
func (r *Registry) GetMethodSignature(className, methodName string) (*MethodSignature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sig, ok := r.signatures[sigKey{className, methodName}]
	return sig, ok
}

// UpdateSignature overwrites the parameters and return type for an
// existing signature, or creates the entry if absent. Used by the
// consistency engine when repairing drift.
func (r *Registry) UpdateSignature(className, methodName string, params []model.Param, returnType string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sigKey{className, methodName}
	sig, ok := r.signatures[key]
	if !ok {
		sig = &MethodSignature{
			ClassName:  className,
			MethodName: methodName,
			Visibility: model.VisibilityPublic,
		}
		r.signatures[key] = sig
	}
	sig.Parameters = params
	sig.ReturnType = returnType
}

// MarkConsistent sets the cross-layer consistency flag for a signature.
func (r *Registry) MarkConsistent(className, methodName string, consistent bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if sig, ok := r.signatures[sigKey{className, methodName}]; ok {
		sig.CrossLayerConsistent = consistent
	}
}

// AddDependency records that from depends on to, keeping both the
// dependency and dependent edge lists consistent. Adding an edge twice is
// a no-op.
func (r *Registry) AddDependency(fromID, toID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.byID[fromID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, fromID)
	}
	to, ok := r.byID[toID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, toID)
	}

	if !contains(from.Dependencies, toID) {
		from.Dependencies = append(from.Dependencies, toID)
	}
	if !contains(to.Dependents, fromID) {
		to.Dependents = append(to.Dependents, fromID)
	}
	return nil
}

// RegisterExport records an exported identifier from a generated artifact
// so later Pass A tasks and Pass B resolution can reference it. If the
// name already has a unit symbol, its file path is updated to the artifact
// actually written; otherwise a new export symbol is created.
func (r *Registry) RegisterExport(name, filePath string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sym := range r.byName[name] {
		if sym.Type == SymbolUnit {
			if sym.FilePath != filePath {
				r.reindexFileLocked(sym, filePath)
			}
			return
		}
		if sym.Type == SymbolExport {
			return
		}
	}

	sym := &Symbol{
		ID:         UnitID("generated", name),
		Name:       name,
		Type:       SymbolExport,
		FilePath:   filePath,
		Layer:      "generated",
		Visibility: model.VisibilityPublic,
	}
	if _, exists := r.byID[sym.ID]; exists {
		return
	}
	r.byID[sym.ID] = sym
	r.byName[name] = append(r.byName[name], sym)
	r.byFile[filePath] = append(r.byFile[filePath], sym)
}

// DataContract builds the per-unit contract view: properties, methods,
// dependencies, and used-by, rendered from registry state.
func (r *Registry) DataContract(unitName string) (*DataContract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.units[unitName]
	if !ok {
		return nil, false
	}

	c := &DataContract{
		UnitName: u.Name,
		Layer:    u.Kind.Layer(),
		FilePath: u.FilePath,
	}
	for _, p := range u.Properties {
		req := ""
		if !p.Required {
			req = "?"
		}
		c.Properties = append(c.Properties, fmt.Sprintf("%s%s: %s", p.Name, req, p.Type))
	}
	for _, m := range u.Methods {
		c.Methods = append(c.Methods, m.Signature())
	}

	if unitSym, ok := r.byID[UnitID(u.Kind.Layer(), u.Name)]; ok {
		for _, depID := range unitSym.Dependencies {
			if dep, ok := r.byID[depID]; ok {
				c.Dependencies = append(c.Dependencies, dep.Name)
			}
		}
		for _, depID := range unitSym.Dependents {
			if dep, ok := r.byID[depID]; ok {
				c.UsedBy = append(c.UsedBy, dep.Name)
			}
		}
	}

	return c, true
}

// Unit returns the retained model unit by name.
func (r *Registry) Unit(name string) (*model.Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[name]
	return u, ok
}

// SymbolCount returns the total number of registered symbols.
func (r *Registry) SymbolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// setSignature records the signature projection for one method.
func (r *Registry) setSignature(className string, meth model.MethodSpec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.signatures[sigKey{className, meth.Name}] = &MethodSignature{
		ClassName:  className,
		MethodName: meth.Name,
		Parameters: meth.Parameters,
		ReturnType: meth.ReturnType,
		Visibility: meth.Visibility,
	}
}

// reindexFileLocked moves a symbol to a new file path. Caller holds r.mu.
func (r *Registry) reindexFileLocked(sym *Symbol, filePath string) {
	old := r.byFile[sym.FilePath]
	for i, s := range old {
		if s == sym {
			r.byFile[sym.FilePath] = append(old[:i], old[i+1:]...)
			break
		}
	}
	if len(r.byFile[sym.FilePath]) == 0 {
		delete(r.byFile, sym.FilePath)
	}
	sym.FilePath = filePath
	r.byFile[filePath] = append(r.byFile[filePath], sym)
}

func copySymbols(src []*Symbol) []*Symbol {
	if len(src) == 0 {
		return nil
	}
	out := make([]*Symbol, len(src))
	copy(out, src)
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
