// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/blueprint/cmd/blueprint/config"
	"github.com/AleutianAI/blueprint/pkg/ux"
	"github.com/AleutianAI/blueprint/services/compiler/parser"
	"github.com/AleutianAI/blueprint/services/compiler/pipeline"
)

func runCompile(cmd *cobra.Command, args []string) {
	result, err := compileOnce(cmd.Context())
	if err != nil {
		appLogger.Error("compile failed", "error", err.Error())
		os.Exit(1)
	}
	printSummary(result)
}

// compileOnce runs a single compile using a one-shot in-memory store.
// The durable audit copy is the plan record file in the output tree.
func compileOnce(ctx context.Context) (*pipeline.RunResult, error) {
	input, err := readDiagrams()
	if err != nil {
		return nil, err
	}

	client, err := newLLMClient()
	if err != nil {
		return nil, fmt.Errorf("configuring LLM backend: %w", err)
	}

	out := outputDir
	if out == "" {
		out = filepath.Join(config.Global.Server.Workspace, projectID)
	}

	store := pipeline.NewMemoryStore()
	defer store.Close()

	opts := []pipeline.Option{}
	if withValidate && config.Global.Server.ValidatorURL != "" {
		opts = append(opts, pipeline.WithValidator(newValidator()))
	}
	if withDeploy && config.Global.Server.DeployerURL != "" {
		opts = append(opts, pipeline.WithDeployer(newDeployer()))
	}

	runner := pipeline.NewRunner(client, store, appLogger.Slog(), opts...)
	return runner.Run(ctx, input, out)
}

// readDiagrams loads the diagram files named by the flags and folds the
// --infra pairs into the input.
func readDiagrams() (parser.DiagramInput, error) {
	input := parser.DiagramInput{ProjectID: projectID}

	structural, err := os.ReadFile(structuralPath)
	if err != nil {
		return input, fmt.Errorf("reading structural diagram: %w", err)
	}
	input.Structural = string(structural)

	if componentPath != "" {
		data, err := os.ReadFile(componentPath)
		if err != nil {
			return input, fmt.Errorf("reading component diagram: %w", err)
		}
		input.Component = string(data)
	}
	if sequencePath != "" {
		data, err := os.ReadFile(sequencePath)
		if err != nil {
			return input, fmt.Errorf("reading sequence diagram: %w", err)
		}
		input.Sequence = string(data)
	}

	if len(infraPairs) > 0 {
		input.Infra = make(map[string]string, len(infraPairs))
		for _, pair := range infraPairs {
			key, value, ok := strings.Cut(pair, "=")
			if !ok {
				return input, fmt.Errorf("invalid --infra entry %q (want key=value)", pair)
			}
			input.Infra[key] = value
		}
	}
	return input, nil
}

func printSummary(result *pipeline.RunResult) {
	rec := result.Record
	var stubbed int
	for _, a := range rec.Artifacts {
		if a.Stub {
			stubbed++
		}
	}

	summary := ux.RunSummary{
		RunID:     result.RunID,
		Phase:     string(result.Phase),
		Ordered:   len(rec.Order),
		Cycles:    len(rec.Cycles),
		Artifacts: len(rec.Artifacts),
		Stubbed:   stubbed,
		Repairs:   len(rec.Drifts),
		Warnings:  rec.Warnings,
	}
	if result.Report != nil {
		summary.Validated = &result.Report.Passed
	}
	if result.Receipt != nil {
		summary.Endpoint = result.Receipt.Endpoint
	}
	fmt.Println(ux.RenderSummary(summary))
}
