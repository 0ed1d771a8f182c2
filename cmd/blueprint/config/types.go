// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the Blueprint CLI and service configuration from
// ~/.blueprint/blueprint.yaml.
package config

import (
	"github.com/go-playground/validator/v10"
)

// BlueprintConfig is the top-level configuration document.
type BlueprintConfig struct {
	Server  ServerConfig  `yaml:"server"`
	LLM     LLMConfig     `yaml:"llm"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the orchestrator HTTP service.
type ServerConfig struct {
	Port      string `yaml:"port" validate:"required,numeric"`
	Workspace string `yaml:"workspace" validate:"required"`

	// OTLPEndpoint is the trace collector address. Empty sends spans
	// to stdout.
	OTLPEndpoint string `yaml:"otlp_endpoint"`

	// ValidatorURL and DeployerURL point at the optional build
	// collaborator services. Empty disables the phase.
	ValidatorURL string `yaml:"validator_url" validate:"omitempty,url"`
	DeployerURL  string `yaml:"deployer_url" validate:"omitempty,url"`
}

// LLMConfig configures the generation backend.
type LLMConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=ollama openai"`

	// RequestsPerSecond and MaxAttempts tune the retry wrapper around
	// the backend client.
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gt=0"`
	MaxAttempts       int     `yaml:"max_attempts" validate:"gte=1,lte=10"`
}

// StoreConfig configures plan record persistence.
type StoreConfig struct {
	Backend string `yaml:"backend" validate:"required,oneof=memory badger"`
	Path    string `yaml:"path" validate:"required_if=Backend badger"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"required,oneof=debug info warn error"`
	Dir   string `yaml:"dir"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() BlueprintConfig {
	return BlueprintConfig{
		Server: ServerConfig{
			Port:      "12310",
			Workspace: "~/.blueprint/workspace",
		},
		LLM: LLMConfig{
			Backend:           "ollama",
			RequestsPerSecond: 1,
			MaxAttempts:       3,
		},
		Store: StoreConfig{
			Backend: "badger",
			Path:    "~/.blueprint/runs",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

var validate = validator.New()

// Validate checks the loaded document against the field constraints.
func (c *BlueprintConfig) Validate() error {
	return validate.Struct(c)
}
