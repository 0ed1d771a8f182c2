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
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/blueprint/cmd/blueprint/config"
	"github.com/AleutianAI/blueprint/pkg/logging"
	"github.com/AleutianAI/blueprint/services/compiler/collab"
	"github.com/AleutianAI/blueprint/services/llm"
)

// --- Global Command Variables ---
var (
	projectID      string
	structuralPath string
	componentPath  string
	sequencePath   string
	outputDir      string
	infraPairs     []string
	withValidate   bool
	withDeploy     bool

	appLogger *logging.Logger

	rootCmd = &cobra.Command{
		Use:   "blueprint",
		Short: "A cli to compile architecture diagrams into project source trees",
		Long: `Blueprint turns structural, component, and sequence diagrams
				into a dependency-ordered TypeScript project with consistent
				cross-layer contracts.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if err := config.Load(); err != nil {
				log.Fatalf("Error loading config: %v", err)
			}
			appLogger = newLogger()
		},
	}

	compileCmd = &cobra.Command{
		Use:   "compile",
		Short: "Compile a diagram set into a project tree once and exit",
		Run:   runCompile, // Defined in cmd_compile.go
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the orchestrator HTTP service",
		Run:   runServe, // Defined in cmd_serve.go
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Recompile whenever the diagram files change",
		Run:   runWatch, // Defined in cmd_watch.go
	}
)

func init() {
	for _, cmd := range []*cobra.Command{compileCmd, watchCmd} {
		cmd.Flags().StringVarP(&projectID, "project", "p", "", "Project identifier (required)")
		cmd.Flags().StringVarP(&structuralPath, "structural", "s", "", "Path to the structural (class) diagram (required)")
		cmd.Flags().StringVarP(&componentPath, "component", "c", "", "Path to the component diagram")
		cmd.Flags().StringVarP(&sequencePath, "sequence", "q", "", "Path to the sequence diagram")
		cmd.Flags().StringVarP(&outputDir, "out", "o", "", "Output directory (default: <workspace>/<project>)")
		cmd.Flags().StringArrayVar(&infraPairs, "infra", nil, "Infra context entries as key=value (repeatable)")
		cmd.Flags().BoolVar(&withValidate, "validate", false, "Run the build validation collaborator")
		cmd.Flags().BoolVar(&withDeploy, "deploy", false, "Run the deployment collaborator")
		_ = cmd.MarkFlagRequired("project")
		_ = cmd.MarkFlagRequired("structural")
	}

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
}

// newLogger builds the CLI logger. Interactive terminals get text
// output; pipes and CI get JSON unless the config says otherwise.
func newLogger() *logging.Logger {
	level := logging.LevelInfo
	switch config.Global.Logging.Level {
	case "debug":
		level = logging.LevelDebug
	case "warn":
		level = logging.LevelWarn
	case "error":
		level = logging.LevelError
	}

	useJSON := config.Global.Logging.JSON
	if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		useJSON = true
	}

	return logging.New(logging.Config{
		Level:   level,
		LogDir:  config.Global.Logging.Dir,
		Service: "cli",
		JSON:    useJSON,
	})
}

// newValidator and newDeployer build the HTTP collaborator clients from
// the configured base URLs.
func newValidator() *collab.HTTPValidator {
	return collab.NewHTTPValidator(config.Global.Server.ValidatorURL, appLogger.Slog())
}

func newDeployer() *collab.HTTPDeployer {
	return collab.NewHTTPDeployer(config.Global.Server.DeployerURL, appLogger.Slog())
}

// newLLMClient builds the configured backend wrapped in the rate-limited
// retry client.
func newLLMClient() (llm.LLMClient, error) {
	var inner llm.LLMClient
	var err error
	switch config.Global.LLM.Backend {
	case "openai":
		inner, err = llm.NewOpenAIClient()
	default:
		inner, err = llm.NewOllamaClient()
	}
	if err != nil {
		return nil, err
	}
	return llm.NewRetryClient(inner,
		config.Global.LLM.RequestsPerSecond,
		config.Global.LLM.MaxAttempts), nil
}
