// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"strings"
	"testing"
)

func TestRenderSummaryDone(t *testing.T) {
	passed := true
	out := RenderSummary(RunSummary{
		RunID:     "run-1",
		Phase:     "done",
		Ordered:   5,
		Cycles:    1,
		Artifacts: 5,
		Stubbed:   2,
		Repairs:   1,
		Warnings:  []string{"task depends on unknown id"},
		Validated: &passed,
	})

	for _, want := range []string{
		"run-1",
		"5 ordered, 1 cycles excluded",
		"5 written, 2 stubbed",
		"drift repairs: 1",
		"unknown id",
		"validation passed: true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryFailedOmitsOptionals(t *testing.T) {
	out := RenderSummary(RunSummary{RunID: "run-2", Phase: "failed"})
	if strings.Contains(out, "drift repairs") {
		t.Error("zero repairs should be omitted")
	}
	if strings.Contains(out, "validation passed") {
		t.Error("nil validation should be omitted")
	}
	if strings.Contains(out, "deployed at") {
		t.Error("empty endpoint should be omitted")
	}
}

func TestIconRender(t *testing.T) {
	if IconArrow.Render() != string(IconArrow) {
		t.Error("neutral icons render unstyled")
	}
	if !strings.Contains(IconSuccess.Render(), string(IconSuccess)) {
		t.Error("styled icon lost its glyph")
	}
}
