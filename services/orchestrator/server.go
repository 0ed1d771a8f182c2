// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package orchestrator assembles the Blueprint compile service: HTTP
// surface, tracing, metrics, and the shared build collaborators.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/AleutianAI/blueprint/services/compiler/collab"
	"github.com/AleutianAI/blueprint/services/compiler/pipeline"
	"github.com/AleutianAI/blueprint/services/llm"
	"github.com/AleutianAI/blueprint/services/orchestrator/handlers"
	"github.com/AleutianAI/blueprint/services/orchestrator/observability"
	"github.com/AleutianAI/blueprint/services/orchestrator/routes"
)

// Config configures the orchestrator server.
type Config struct {
	// Port the HTTP server listens on.
	Port string

	// Workspace is the root directory where project trees are composed.
	Workspace string

	// OTLPEndpoint is the trace collector address. When empty, spans
	// go to stdout instead of a collector.
	OTLPEndpoint string

	// ValidatorURL and DeployerURL configure the optional collaborator
	// services. Empty disables the corresponding phase.
	ValidatorURL string
	DeployerURL  string
}

// Server is the assembled orchestrator.
type Server struct {
	cfg     Config
	engine  *gin.Engine
	service *handlers.BuildService
	cleanup func(context.Context)
	logger  *slog.Logger
}

// New assembles a Server around the given LLM client and run store.
func New(cfg Config, client llm.LLMClient, store pipeline.Store, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Port == "" {
		cfg.Port = "12310"
	}
	if cfg.Workspace == "" {
		cfg.Workspace = "./workspace"
	}

	cleanup, err := initTracer(cfg.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}

	svc := &handlers.BuildService{
		Client:    client,
		Store:     store,
		Publisher: pipeline.NewPublisher(),
		Workspace: cfg.Workspace,
		Metrics:   observability.InitMetrics(),
		Logger:    logger,
	}
	if cfg.ValidatorURL != "" {
		svc.Validator = collab.NewHTTPValidator(cfg.ValidatorURL, logger)
	}
	if cfg.DeployerURL != "" {
		svc.Deployer = collab.NewHTTPDeployer(cfg.DeployerURL, logger)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware("blueprint-orchestrator"))
	routes.SetupRoutes(engine, svc)

	return &Server{
		cfg:     cfg,
		engine:  engine,
		service: svc,
		cleanup: cleanup,
		logger:  logger,
	}, nil
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run serves HTTP until the context is canceled, then shuts down
// gracefully and flushes the trace exporter.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("orchestrator listening", slog.String("port", s.cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("orchestrator shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if s.cleanup != nil {
		s.cleanup(context.Background())
	}
	return err
}

// initTracer installs the global trace provider. With an OTLP endpoint
// spans are exported over gRPC; without one they go to stdout, which
// keeps local runs traceable without a collector.
func initTracer(endpoint string) (func(context.Context), error) {
	ctx := context.Background()

	var exporter sdktrace.SpanExporter
	var err error
	if endpoint != "" {
		conn, cerr := grpc.NewClient(endpoint,
			grpc.WithTransportCredentials(insecure.NewCredentials()))
		if cerr != nil {
			return nil, cerr
		}
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("blueprint-orchestrator")))
	if err != nil {
		return nil, err
	}

	bsp := sdktrace.NewBatchSpanProcessor(exporter)
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(provider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := exporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown trace exporter", "error", err)
		}
	}, nil
}
