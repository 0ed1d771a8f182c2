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
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

// debounceWindow coalesces editor save bursts into one recompile.
const debounceWindow = 500 * time.Millisecond

func runWatch(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		appLogger.Error("creating file watcher failed", "error", err.Error())
		os.Exit(1)
	}
	defer watcher.Close()

	watched := []string{structuralPath}
	if componentPath != "" {
		watched = append(watched, componentPath)
	}
	if sequencePath != "" {
		watched = append(watched, sequencePath)
	}
	for _, path := range watched {
		if err := watcher.Add(path); err != nil {
			appLogger.Error("watching diagram failed", "path", path, "error", err.Error())
			os.Exit(1)
		}
	}

	// Compile once up front so the tree exists before the first edit.
	recompile(ctx)

	var debounce *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			appLogger.Info("watch stopped")
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			appLogger.Debug("diagram changed", "path", event.Name, "op", event.Op.String())

			// Editors often replace files on save; re-add dropped watches.
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				_ = watcher.Add(event.Name)
			}

			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceWindow, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})

		case <-fire:
			recompile(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			appLogger.Warn("watcher error", "error", err.Error())
		}
	}
}

func recompile(ctx context.Context) {
	appLogger.Info("compiling diagram set", "project", projectID)
	result, err := compileOnce(ctx)
	if err != nil {
		appLogger.Error("compile failed", "error", err.Error())
		return
	}
	printSummary(result)
}
