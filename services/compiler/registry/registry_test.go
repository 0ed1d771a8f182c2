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
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

func shopModel() *model.ArchitectureModel {
	order := &model.Unit{
		Name:     "Order",
		Kind:     model.KindDataEntity,
		FilePath: "server/src/models/Order.ts",
		Properties: []model.Property{
			{Name: "id", Type: "string", Visibility: model.VisibilityPublic, Required: true},
			{Name: "total", Type: "number", Visibility: model.VisibilityPublic, Required: true},
		},
		Methods: []model.MethodSpec{
			{Name: "calculateTotal", ReturnType: "number", Visibility: model.VisibilityPublic},
		},
	}
	svc := &model.Unit{
		Name:     "OrderService",
		Kind:     model.KindService,
		FilePath: "server/src/services/OrderService.ts",
		Methods: []model.MethodSpec{
			{Name: "calculateTotal", ReturnType: "Promise<number>", Visibility: model.VisibilityPublic},
		},
	}
	return &model.ArchitectureModel{
		ProjectID: "shop",
		Units:     []*model.Unit{order, svc},
		Relationships: []model.Relationship{
			{Source: "OrderService", Kind: model.RelAssociation, Target: "Order"},
		},
	}
}

func TestBuildFromModelIndexes(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatalf("BuildFromModel: %v", err)
	}

	// 2 units + 2 properties + 2 methods.
	if got := r.SymbolCount(); got != 6 {
		t.Errorf("SymbolCount = %d, want 6", got)
	}

	sym, ok := r.GetByID("entity_Order_id")
	if !ok {
		t.Fatal("property symbol missing")
	}
	if sym.Type != SymbolProperty || sym.FilePath != "server/src/models/Order.ts" {
		t.Errorf("property symbol = %+v", sym)
	}

	if syms := r.GetByFile("server/src/services/OrderService.ts"); len(syms) != 2 {
		t.Errorf("file symbols = %d, want 2", len(syms))
	}
}

func TestBuildFromModelNil(t *testing.T) {
	if err := New(nil).BuildFromModel(nil); !errors.Is(err, ErrNilModel) {
		t.Errorf("err = %v, want ErrNilModel", err)
	}
}

func TestDuplicateMemberKeepsFirst(t *testing.T) {
	m := shopModel()
	// Same method declared twice on the same unit.
	m.Units[0].Methods = append(m.Units[0].Methods, model.MethodSpec{
		Name: "calculateTotal", ReturnType: "string",
	})

	r := New(nil)
	if err := r.BuildFromModel(m); err != nil {
		t.Fatalf("BuildFromModel: %v", err)
	}

	sig, ok := r.GetMethodSignature("Order", "calculateTotal")
	if !ok {
		t.Fatal("signature missing")
	}
	if sig.ReturnType != "number" {
		t.Errorf("duplicate overwrote the first signature: %q", sig.ReturnType)
	}
}

func TestDependencyEdgesFromRelationships(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatal(err)
	}

	svc, _ := r.GetByID("service_OrderService")
	if len(svc.Dependencies) != 1 || svc.Dependencies[0] != "entity_Order" {
		t.Errorf("service dependencies = %v", svc.Dependencies)
	}
	order, _ := r.GetByID("entity_Order")
	if len(order.Dependents) != 1 || order.Dependents[0] != "service_OrderService" {
		t.Errorf("entity dependents = %v", order.Dependents)
	}

	// Adding the same edge twice is a no-op.
	if err := r.AddDependency("service_OrderService", "entity_Order"); err != nil {
		t.Fatal(err)
	}
	svc, _ = r.GetByID("service_OrderService")
	if len(svc.Dependencies) != 1 {
		t.Errorf("duplicate edge recorded: %v", svc.Dependencies)
	}
}

func TestResolveIdentifierPrefersUnits(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatal(err)
	}

	// "calculateTotal" names two method symbols but no unit; methods are
	// not resolution targets.
	if _, ok := r.ResolveIdentifier("calculateTotal"); ok {
		t.Error("method name should not resolve to a file")
	}

	sym, ok := r.ResolveIdentifier("Order")
	if !ok || sym.Type != SymbolUnit {
		t.Fatalf("ResolveIdentifier(Order) = %+v, %t", sym, ok)
	}
}

func TestRegisterExportReindexesUnit(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatal(err)
	}

	// Pass A wrote Order somewhere other than the conventional path.
	r.RegisterExport("Order", "server/src/domain/Order.ts")

	sym, _ := r.ResolveIdentifier("Order")
	if sym.FilePath != "server/src/domain/Order.ts" {
		t.Errorf("unit not reindexed: %q", sym.FilePath)
	}
	if syms := r.GetByFile("server/src/models/Order.ts"); len(syms) != 3 {
		// The two property symbols and the method symbol keep the old
		// path; only the unit symbol moves.
		t.Errorf("old file index = %d symbols", len(syms))
	}
	if syms := r.GetByFile("server/src/domain/Order.ts"); len(syms) != 1 {
		t.Errorf("new file index = %d symbols", len(syms))
	}
}

func TestRegisterExportCreatesExportSymbol(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatal(err)
	}

	r.RegisterExport("formatCurrency", "shared/src/utils/formatCurrency.ts")
	r.RegisterExport("formatCurrency", "shared/src/utils/other.ts") // no-op

	sym, ok := r.ResolveIdentifier("formatCurrency")
	if !ok || sym.Type != SymbolExport {
		t.Fatalf("export symbol = %+v, %t", sym, ok)
	}
	if sym.FilePath != "shared/src/utils/formatCurrency.ts" {
		t.Errorf("second registration moved the export: %q", sym.FilePath)
	}
}

func TestUpdateSignatureAndMarkConsistent(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatal(err)
	}

	params := []model.Param{{Name: "taxRate", Type: "number", Required: true}}
	r.UpdateSignature("OrderService", "calculateTotal", params, "Promise<number>")
	r.MarkConsistent("OrderService", "calculateTotal", true)

	sig, ok := r.GetMethodSignature("OrderService", "calculateTotal")
	if !ok {
		t.Fatal("signature missing")
	}
	if len(sig.Parameters) != 1 || sig.Parameters[0].Name != "taxRate" {
		t.Errorf("parameters = %+v", sig.Parameters)
	}
	if !sig.CrossLayerConsistent {
		t.Error("consistency flag not set")
	}
}

func TestDataContract(t *testing.T) {
	r := New(nil)
	if err := r.BuildFromModel(shopModel()); err != nil {
		t.Fatal(err)
	}

	c, ok := r.DataContract("Order")
	if !ok {
		t.Fatal("contract missing")
	}
	if len(c.Properties) != 2 || len(c.Methods) != 1 {
		t.Errorf("contract shape = %+v", c)
	}
	if len(c.UsedBy) != 1 || c.UsedBy[0] != "OrderService" {
		t.Errorf("contract used-by = %v", c.UsedBy)
	}

	text := c.Render()
	for _, want := range []string{"Unit Order", "id: string", "calculateTotal", "Used by: OrderService"} {
		if !strings.Contains(text, want) {
			t.Errorf("rendered contract missing %q:\n%s", want, text)
		}
	}

	if _, ok := r.DataContract("Nothing"); ok {
		t.Error("unknown unit should have no contract")
	}
}
