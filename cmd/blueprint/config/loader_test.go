// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, cfg BlueprintConfig) string {
	t.Helper()
	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "blueprint.yaml")
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestLoadFromValid(t *testing.T) {
	path := writeConfig(t, DefaultConfig())

	var cfg BlueprintConfig
	require.NoError(t, LoadFrom(path, &cfg))
	assert.Equal(t, "12310", cfg.Server.Port)
	assert.Equal(t, "ollama", cfg.LLM.Backend)
	assert.Equal(t, "badger", cfg.Store.Backend)
}

func TestLoadFromExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	cfg := DefaultConfig()
	cfg.Server.Workspace = "~/.blueprint/workspace"
	path := writeConfig(t, cfg)

	var loaded BlueprintConfig
	require.NoError(t, LoadFrom(path, &loaded))
	assert.Equal(t, filepath.Join(home, ".blueprint/workspace"), loaded.Server.Workspace)
}

func TestLoadFromRejectsBadBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Backend = "carrier-pigeon"
	path := writeConfig(t, cfg)

	var loaded BlueprintConfig
	err := LoadFrom(path, &loaded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backend")
}

func TestLoadFromRejectsBadgerWithoutPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Path = ""
	path := writeConfig(t, cfg)

	var loaded BlueprintConfig
	require.Error(t, LoadFrom(path, &loaded))
}

func TestLoadFromMissingFile(t *testing.T) {
	var loaded BlueprintConfig
	require.Error(t, LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"), &loaded))
}

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}
