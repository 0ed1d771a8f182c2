// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides Prometheus metrics for compile runs.
//
// # Description
//
// Metrics cover the run lifecycle (accepted, completed, failed), artifact
// generation (generated vs stubbed, by task category), linker activity,
// and signature drift repairs. They are exposed on the /metrics endpoint
// for Prometheus scraping.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "blueprint"

const compilerSubsystem = "compiler"

// CompileMetrics holds all Prometheus metrics for the compile pipeline.
// Initialize once at startup via InitMetrics().
type CompileMetrics struct {
	// RunsTotal counts compile runs by final status.
	// Labels: status (done, failed)
	RunsTotal *prometheus.CounterVec

	// ArtifactsTotal counts artifacts written by category and mode.
	// Labels: category (backend, frontend, ...), mode (generated, stub)
	ArtifactsTotal *prometheus.CounterVec

	// RunDurationSeconds measures total run duration by status.
	RunDurationSeconds *prometheus.HistogramVec

	// ActiveRuns tracks runs currently in flight.
	ActiveRuns prometheus.Gauge

	// ImportRewritesTotal counts files rewritten by the linking pass.
	ImportRewritesTotal prometheus.Counter

	// DriftRepairsTotal counts cross-layer signature repairs.
	DriftRepairsTotal prometheus.Counter

	// CyclesDetectedTotal counts dependency cycles excluded from plans.
	CyclesDetectedTotal prometheus.Counter
}

// DefaultMetrics is the singleton instance, set by InitMetrics().
var DefaultMetrics *CompileMetrics

// InitMetrics creates and registers all compile metrics on the default
// Prometheus registry. Call once at startup; a second call panics on
// duplicate registration.
func InitMetrics() *CompileMetrics {
	DefaultMetrics = &CompileMetrics{
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "runs_total",
				Help:      "Total compile runs by final status",
			},
			[]string{"status"},
		),

		ArtifactsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "artifacts_total",
				Help:      "Artifacts written by task category and generation mode",
			},
			[]string{"category", "mode"},
		),

		RunDurationSeconds: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "run_duration_seconds",
				Help:      "Total compile run duration in seconds",
				Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"status"},
		),

		ActiveRuns: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "active_runs",
				Help:      "Compile runs currently in flight",
			},
		),

		ImportRewritesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "import_rewrites_total",
				Help:      "Files rewritten by the reference linking pass",
			},
		),

		DriftRepairsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "drift_repairs_total",
				Help:      "Cross-layer signature drift repairs applied",
			},
		),

		CyclesDetectedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: compilerSubsystem,
				Name:      "cycles_detected_total",
				Help:      "Dependency cycles excluded from generation plans",
			},
		),
	}

	return DefaultMetrics
}

// RecordRun records a finished run with its duration.
func (m *CompileMetrics) RecordRun(status string, seconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDurationSeconds.WithLabelValues(status).Observe(seconds)
}

// RecordArtifact records one written artifact.
func (m *CompileMetrics) RecordArtifact(category string, stub bool) {
	mode := "generated"
	if stub {
		mode = "stub"
	}
	m.ArtifactsTotal.WithLabelValues(category, mode).Inc()
}

// RunStarted increments the active run gauge.
func (m *CompileMetrics) RunStarted() {
	m.ActiveRuns.Inc()
}

// RunEnded decrements the active run gauge.
func (m *CompileMetrics) RunEnded() {
	m.ActiveRuns.Dec()
}
