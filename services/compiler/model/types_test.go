// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package model

import "testing"

func TestUnitKindLayer(t *testing.T) {
	cases := map[UnitKind]string{
		KindDataEntity:     "entity",
		KindService:        "service",
		KindController:     "controller",
		KindRepository:     "repository",
		KindMiddleware:     "middleware",
		KindUIComponent:    "ui",
		KindUIPage:         "ui",
		KindHook:           "ui",
		KindUtility:        "shared",
		UnitKind("widget"): "shared",
	}
	for kind, want := range cases {
		if got := kind.Layer(); got != want {
			t.Errorf("%s.Layer() = %q, want %q", kind, got, want)
		}
	}
}

func TestUnitKindFrontend(t *testing.T) {
	for _, kind := range []UnitKind{KindUIComponent, KindUIPage, KindHook} {
		if !kind.Frontend() {
			t.Errorf("%s should be frontend", kind)
		}
	}
	for _, kind := range []UnitKind{KindDataEntity, KindService, KindController, KindUtility} {
		if kind.Frontend() {
			t.Errorf("%s should not be frontend", kind)
		}
	}
}

func TestVisibilityFromMarker(t *testing.T) {
	cases := map[string]Visibility{
		"+": VisibilityPublic,
		"-": VisibilityPrivate,
		"#": VisibilityProtected,
		"":  VisibilityPublic,
		"~": VisibilityPublic, // unknown markers stay public
	}
	for marker, want := range cases {
		if got := VisibilityFromMarker(marker); got != want {
			t.Errorf("VisibilityFromMarker(%q) = %s, want %s", marker, got, want)
		}
	}
}

func TestMethodSignature(t *testing.T) {
	m := MethodSpec{
		Name: "placeOrder",
		Parameters: []Param{
			{Name: "order", Type: "Order", Required: true},
			{Name: "notify", Type: "boolean"},
		},
		ReturnType: "Promise<Receipt>",
	}
	want := "placeOrder(order: Order, notify: boolean): Promise<Receipt>"
	if got := m.Signature(); got != want {
		t.Errorf("Signature() = %q, want %q", got, want)
	}

	empty := MethodSpec{Name: "reset"}
	if got := empty.Signature(); got != "reset(): void" {
		t.Errorf("Signature() = %q", got)
	}
}

func TestUnitMethodLookup(t *testing.T) {
	u := &Unit{
		Name: "Order",
		Kind: KindDataEntity,
		Methods: []MethodSpec{
			{Name: "calculateTotal", ReturnType: "number"},
		},
	}

	m := u.Method("calculateTotal")
	if m == nil {
		t.Fatal("declared method not found")
	}
	// Method returns a pointer into the slice so callers can repair in place.
	m.ReturnType = "string"
	if u.Methods[0].ReturnType != "string" {
		t.Error("Method should alias the stored spec")
	}

	if u.Method("missing") != nil || u.HasMethod("missing") {
		t.Error("absent method should not resolve")
	}
}

func TestModelUnitAndEmpty(t *testing.T) {
	var nilModel *ArchitectureModel
	if !nilModel.Empty() {
		t.Error("nil model should be empty")
	}
	if !(&ArchitectureModel{ProjectID: "shop"}).Empty() {
		t.Error("unitless model should be empty")
	}

	m := &ArchitectureModel{
		Units: []*Unit{{Name: "Order", Kind: KindDataEntity}},
	}
	if m.Empty() {
		t.Error("populated model should not be empty")
	}
	if m.Unit("Order") == nil || m.Unit("Nope") != nil {
		t.Error("unit lookup by name broken")
	}
}
