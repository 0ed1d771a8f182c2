// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package parser

import (
	"errors"
	"testing"

	"github.com/AleutianAI/blueprint/services/compiler/model"
)

func parse(t *testing.T, input DiagramInput) *model.ArchitectureModel {
	t.Helper()
	m, err := New(nil).Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestParseStructuralUnits(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  class Order {
    <<entity>>
    +id: string
    +total: number
    -secret: string
    +calculateTotal(items: LineItem[]): number
  }
  class OrderService {
    <<service>>
    +calculateTotal(items: LineItem[]): Promise~number~
  }
  OrderService --> Order
`,
	})

	order := m.Unit("Order")
	if order == nil {
		t.Fatal("Order unit missing")
	}
	if order.Kind != model.KindDataEntity {
		t.Errorf("Order kind = %s", order.Kind)
	}
	if len(order.Properties) != 3 {
		t.Fatalf("Order properties = %d", len(order.Properties))
	}
	if order.Properties[2].Visibility != model.VisibilityPrivate {
		t.Error("minus marker should parse as private")
	}
	if len(order.Methods) != 1 || order.Methods[0].ReturnType != "number" {
		t.Errorf("Order methods = %+v", order.Methods)
	}

	svc := m.Unit("OrderService")
	if svc == nil || svc.Kind != model.KindService {
		t.Fatal("OrderService missing or wrong kind")
	}
	// Tilde generics are rewritten to angle brackets.
	if got := svc.Methods[0].ReturnType; got != "Promise<number>" {
		t.Errorf("service return type = %q", got)
	}

	if len(m.Relationships) != 1 {
		t.Fatalf("relationships = %d", len(m.Relationships))
	}
	rel := m.Relationships[0]
	if rel.Source != "OrderService" || rel.Target != "Order" || rel.Kind != model.RelAssociation {
		t.Errorf("relationship = %+v", rel)
	}
}

func TestParseArrowKinds(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  Invoice *-- LineItem
  Cart o-- Product
  Checkout ..> Payment
  Payment ..|> Gateway
  AdminPage --|> BasePage
`,
	})

	want := map[string]model.RelationshipKind{
		"Invoice":   model.RelComposition,
		"Cart":      model.RelAggregation,
		"Checkout":  model.RelDependency,
		"Payment":   model.RelRealization,
		"AdminPage": model.RelInheritance,
	}
	for _, rel := range m.Relationships {
		if kind, ok := want[rel.Source]; ok && rel.Kind != kind {
			t.Errorf("%s arrow parsed as %s, want %s", rel.Source, rel.Kind, kind)
		}
	}
	if len(m.Relationships) != 5 {
		t.Errorf("relationships = %d, want 5", len(m.Relationships))
	}
}

func TestParseInferredKinds(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  class OrderController {
  }
  class OrderRepository {
  }
  class AuthMiddleware {
  }
  class useCart {
  }
  class CheckoutPage {
  }
  class Order {
  }
`,
	})

	cases := map[string]model.UnitKind{
		"OrderController": model.KindController,
		"OrderRepository": model.KindRepository,
		"AuthMiddleware":  model.KindMiddleware,
		"useCart":         model.KindHook,
		"CheckoutPage":    model.KindUIPage,
		"Order":           model.KindDataEntity,
	}
	for name, kind := range cases {
		u := m.Unit(name)
		if u == nil {
			t.Errorf("unit %s missing", name)
			continue
		}
		if u.Kind != kind {
			t.Errorf("%s kind = %s, want %s", name, u.Kind, kind)
		}
	}
}

func TestParseComponentBoundary(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Component: `
graph TD
  subgraph frontend
    OrderList[ui-component]
    CartBadge
  end
  subgraph backend
    OrderService
  end
  OrderList --> OrderService
`,
	})

	if u := m.Unit("OrderList"); u == nil || u.Kind != model.KindUIComponent {
		t.Error("bracketed frontend node should be a ui-component")
	}
	if u := m.Unit("CartBadge"); u == nil || u.Kind != model.KindUIComponent {
		t.Error("bare frontend node should default to ui-component")
	}
	if u := m.Unit("OrderService"); u == nil || u.Kind != model.KindService {
		t.Error("backend node should keep name-convention kind")
	}
	if len(m.Relationships) != 1 || m.Relationships[0].Kind != model.RelDependency {
		t.Errorf("component edge = %+v", m.Relationships)
	}
}

func TestParseSequenceBackfill(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  class OrderService {
    <<service>>
  }
  class OrderController {
    <<controller>>
  }
`,
		Sequence: `
sequenceDiagram
  participant OrderController
  participant OrderService
  OrderController->>OrderService: placeOrder(order: Order)
  OrderService-->>OrderController: Promise~Receipt~
  OrderController->>OrderService: listOrders()
`,
	})

	svc := m.Unit("OrderService")
	placed := svc.Method("placeOrder")
	if placed == nil {
		t.Fatal("sequence-implied method not backfilled")
	}
	if placed.ReturnType != "Promise<Receipt>" {
		t.Errorf("backfilled return = %q", placed.ReturnType)
	}
	if len(placed.Parameters) != 1 || placed.Parameters[0].Name != "order" {
		t.Errorf("backfilled params = %+v", placed.Parameters)
	}

	// No paired return arrow: void.
	listed := svc.Method("listOrders")
	if listed == nil || listed.ReturnType != "void" {
		t.Errorf("unpaired step = %+v", listed)
	}
}

func TestParseBackfillKeepsDeclaredMethod(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  class OrderService {
    <<service>>
    +placeOrder(order: Order): Promise~Receipt~
  }
`,
		Sequence: `
sequenceDiagram
  Client->>OrderService: placeOrder(o: any)
`,
	})

	svc := m.Unit("OrderService")
	if len(svc.Methods) != 1 {
		t.Fatalf("declared method duplicated: %+v", svc.Methods)
	}
	if svc.Methods[0].Parameters[0].Name != "order" {
		t.Error("declared signature should win over the sequence step")
	}
}

func TestParseAssignsFilePaths(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  class Order {
    <<entity>>
  }
  class OrderList {
    <<ui-component>>
  }
  class formatMoney {
    <<utility>>
  }
`,
	})

	cases := map[string]string{
		"Order":       "server/src/models/Order.ts",
		"OrderList":   "client/src/components/OrderList.tsx",
		"formatMoney": "shared/src/utils/formatMoney.ts",
	}
	for name, want := range cases {
		if got := m.Unit(name).FilePath; got != want {
			t.Errorf("%s path = %q, want %q", name, got, want)
		}
	}
}

func TestParseEmptyModel(t *testing.T) {
	_, err := New(nil).Parse(DiagramInput{
		ProjectID:  "empty",
		Structural: "classDiagram\n  %% nothing but comments\n",
	})
	if !errors.Is(err, ErrEmptyModel) {
		t.Errorf("err = %v, want ErrEmptyModel", err)
	}
}

func TestParseToleratesGarbage(t *testing.T) {
	m := parse(t, DiagramInput{
		ProjectID: "shop",
		Structural: `
classDiagram
  !!! not a diagram line !!!
  class Order {
    <<entity>>
    +id: string
    @@@ noise
  }
`,
	})
	if m.Unit("Order") == nil {
		t.Error("valid units should survive garbage lines")
	}
}

func TestNormalizeGenerics(t *testing.T) {
	cases := map[string]string{
		"Promise~number~":    "Promise<number>",
		"Map~string, Order~": "Map<string, Order>",
		"number":             "number",
	}
	for in, want := range cases {
		if got := normalizeGenerics(in); got != want {
			t.Errorf("normalizeGenerics(%q) = %q, want %q", in, got, want)
		}
	}
}
