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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/blueprint/cmd/blueprint/config"
	"github.com/AleutianAI/blueprint/services/compiler/pipeline"
	"github.com/AleutianAI/blueprint/services/orchestrator"
)

func runServe(cmd *cobra.Command, args []string) {
	client, err := newLLMClient()
	if err != nil {
		appLogger.Error("configuring LLM backend failed", "error", err.Error())
		os.Exit(1)
	}

	store, err := newStore()
	if err != nil {
		appLogger.Error("opening run store failed", "error", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	srv, err := orchestrator.New(orchestrator.Config{
		Port:         config.Global.Server.Port,
		Workspace:    config.Global.Server.Workspace,
		OTLPEndpoint: config.Global.Server.OTLPEndpoint,
		ValidatorURL: config.Global.Server.ValidatorURL,
		DeployerURL:  config.Global.Server.DeployerURL,
	}, client, store, appLogger.Slog())
	if err != nil {
		appLogger.Error("assembling orchestrator failed", "error", err.Error())
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		appLogger.Error("orchestrator exited with error", "error", err.Error())
		os.Exit(1)
	}
}

// newStore opens the configured plan record store. The serve command
// defaults to Badger so records survive restarts.
func newStore() (pipeline.Store, error) {
	if config.Global.Store.Backend == "memory" {
		return pipeline.NewMemoryStore(), nil
	}
	return pipeline.NewBadgerStore(config.Global.Store.Path, appLogger.Slog())
}
