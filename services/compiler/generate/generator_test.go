// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/AleutianAI/blueprint/services/compiler/model"
	"github.com/AleutianAI/blueprint/services/compiler/planner"
	"github.com/AleutianAI/blueprint/services/compiler/registry"
	"github.com/AleutianAI/blueprint/services/llm"
)

type fakeLLM struct {
	response string
	err      error
	prompts  []string
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func testModel() *model.ArchitectureModel {
	return &model.ArchitectureModel{
		ProjectID: "shop",
		Units: []*model.Unit{
			{
				Name: "Order", Kind: model.KindDataEntity,
				FilePath: "server/src/models/Order.ts",
				Properties: []model.Property{
					{Name: "id", Type: "string", Visibility: model.VisibilityPublic, Required: true},
					{Name: "total", Type: "number", Visibility: model.VisibilityPublic, Required: true},
				},
				Methods: []model.MethodSpec{
					{Name: "calculateTotal", ReturnType: "number", Visibility: model.VisibilityPublic},
				},
			},
			{
				Name: "OrderController", Kind: model.KindController,
				FilePath: "server/src/controllers/OrderController.ts",
				Methods: []model.MethodSpec{
					{Name: "getOrder", ReturnType: "Order", Visibility: model.VisibilityPublic},
				},
			},
			{
				Name: "OrderList", Kind: model.KindUIComponent,
				FilePath: "client/src/components/OrderList.tsx",
			},
		},
	}
}

func testGrounding(t *testing.T) *Grounding {
	t.Helper()
	m := testModel()
	reg := registry.New(nil)
	if err := reg.BuildFromModel(m); err != nil {
		t.Fatalf("BuildFromModel: %v", err)
	}
	return NewGrounding(m, reg)
}

func taskForCategory(c planner.TaskCategory) *planner.Task {
	switch c {
	case planner.CategoryBackend:
		return &planner.Task{ID: "backend_entity_Order", Category: c, UnitName: "Order"}
	case planner.CategoryFrontend:
		return &planner.Task{ID: "frontend_ui_OrderList", Category: c, UnitName: "OrderList"}
	case planner.CategoryShared:
		return &planner.Task{ID: planner.TaskSharedTypes, Category: c, ComponentName: "types"}
	case planner.CategoryTest:
		return &planner.Task{ID: planner.TaskAPITests, Category: c, ComponentName: "api"}
	case planner.CategoryBuild:
		return &planner.Task{ID: planner.TaskBuild, Category: c, ComponentName: "project"}
	case planner.CategoryDeploy:
		return &planner.Task{ID: planner.TaskDeploy, Category: c, ComponentName: "project"}
	default:
		return nil
	}
}

// Every category in the closed set must dispatch to a generator.
func TestDispatcherCoversAllCategories(t *testing.T) {
	client := &fakeLLM{response: "```ts\nexport class Order {}\n```"}
	d := NewDispatcher(client, nil)
	g := testGrounding(t)

	for _, c := range planner.AllCategories() {
		task := taskForCategory(c)
		if task == nil {
			t.Fatalf("no test task for category %q", c)
		}
		a, err := d.Generate(context.Background(), task, g)
		if err != nil {
			t.Errorf("category %q: %v", c, err)
			continue
		}
		if a.Path == "" || a.Content == "" {
			t.Errorf("category %q: incomplete artifact %+v", c, a)
		}
	}
}

func TestDispatcherUnknownCategory(t *testing.T) {
	d := NewDispatcher(&fakeLLM{response: "x"}, nil)
	task := &planner.Task{ID: "weird", Category: planner.TaskCategory("database")}

	_, err := d.Generate(context.Background(), task, testGrounding(t))
	if !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("got %v, want ErrUnknownCategory", err)
	}
}

// A collaborator failure degrades to a stub; the run must not fail.
func TestDispatcherStubFallback(t *testing.T) {
	client := &fakeLLM{err: errors.New("collaborator down")}
	d := NewDispatcher(client, nil)
	g := testGrounding(t)

	task := &planner.Task{ID: "backend_entity_Order", Category: planner.CategoryBackend, UnitName: "Order"}
	a, err := d.Generate(context.Background(), task, g)
	if err != nil {
		t.Fatalf("expected stub fallback, got error %v", err)
	}
	if !a.Stub {
		t.Error("artifact should be marked as stub")
	}
	if a.Path != "server/src/models/Order.ts" {
		t.Errorf("stub path = %q", a.Path)
	}
	for _, want := range []string{"export class Order", "calculateTotal", "not implemented"} {
		if !strings.Contains(a.Content, want) {
			t.Errorf("stub missing %q:\n%s", want, a.Content)
		}
	}
}

// An empty collaborator response is a failure, not an empty file.
func TestDispatcherEmptyResponseFallsBack(t *testing.T) {
	client := &fakeLLM{response: "Sure, here you go!"}
	d := NewDispatcher(client, nil)
	g := testGrounding(t)

	// No fences and pure prose still sanitizes to the prose itself, so use
	// a truly empty response to force the fallback.
	client.response = "   "
	task := &planner.Task{ID: "backend_entity_Order", Category: planner.CategoryBackend, UnitName: "Order"}
	a, err := d.Generate(context.Background(), task, g)
	if err != nil {
		t.Fatalf("expected stub fallback, got error %v", err)
	}
	if !a.Stub {
		t.Error("artifact should be marked as stub")
	}
}

func TestPromptContextIncludesDependencies(t *testing.T) {
	g := testGrounding(t)
	g.Record("backend_entity_Order", &Artifact{
		Path:    "server/src/models/Order.ts",
		Content: "export class Order { id: string; }",
	})

	task := &planner.Task{
		ID: "backend_controller_OrderController", Category: planner.CategoryBackend,
		UnitName: "OrderController", Dependencies: []string{"backend_entity_Order"},
	}
	prompt := g.PromptContext(task)
	if !strings.Contains(prompt, "server/src/models/Order.ts") {
		t.Error("prompt missing dependency artifact path")
	}
	if !strings.Contains(prompt, "export class Order") {
		t.Error("prompt missing dependency artifact content")
	}
	if !strings.Contains(prompt, "OrderController") {
		t.Error("prompt missing own contract")
	}
}

func TestStubSharedTypes(t *testing.T) {
	g := testGrounding(t)
	a := StubFor(&planner.Task{ID: planner.TaskSharedTypes, Category: planner.CategoryShared}, g)
	if a == nil {
		t.Fatal("expected shared types stub")
	}
	if !strings.Contains(a.Content, "export interface Order") {
		t.Errorf("shared types stub missing entity interface:\n%s", a.Content)
	}
	if !strings.Contains(a.Content, "total: number;") {
		t.Errorf("shared types stub missing property:\n%s", a.Content)
	}
}
