// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/bimsrama/relasi4warna-governance/pkg/logging"
	"github.com/bimsrama/relasi4warna-governance/services/governance/audit"
	"github.com/bimsrama/relasi4warna-governance/services/governance/decision"
	"github.com/bimsrama/relasi4warna-governance/services/governance/metrics"
	"github.com/bimsrama/relasi4warna-governance/services/governance/middleware"
	"github.com/bimsrama/relasi4warna-governance/services/governance/oracle"
	"github.com/bimsrama/relasi4warna-governance/services/governance/pipeline"
	"github.com/bimsrama/relasi4warna-governance/services/governance/policy"
	"github.com/bimsrama/relasi4warna-governance/services/governance/risk"
	"github.com/bimsrama/relasi4warna-governance/services/governance/routes"
	"github.com/bimsrama/relasi4warna-governance/services/governance/scanner"
	"github.com/bimsrama/relasi4warna-governance/services/governance/storage"
	"github.com/bimsrama/relasi4warna-governance/services/governance/store"
)

var (
	listenAddr       string
	dataDir          string
	policyPath       string
	watchPolicy      bool
	lexiconPath      string
	logDir           string
	logLevel         string
	rateRPS          float64
	rateBurst        int
	enableGeneration bool
	debugMode        bool

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start the governance HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
)

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", ":8085", "Listen address")
	serveCmd.Flags().StringVar(&dataDir, "data-dir", "./data/governd", "BadgerDB data directory")
	serveCmd.Flags().StringVar(&policyPath, "policy", "", "Policy table YAML (default: embedded table)")
	serveCmd.Flags().BoolVar(&watchPolicy, "watch-policy", false, "Hot-reload the policy file on change")
	serveCmd.Flags().StringVar(&lexiconPath, "lexicons", "", "Lexicon YAML (default: embedded lexicons)")
	serveCmd.Flags().StringVar(&logDir, "log-dir", "", "Enable JSON file logging in this directory")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().Float64Var(&rateRPS, "rate-rps", 20, "Per-client requests per second")
	serveCmd.Flags().IntVar(&rateBurst, "rate-burst", 40, "Per-client burst size")
	serveCmd.Flags().BoolVar(&enableGeneration, "enable-generation", false,
		"Enable the /v1/generate endpoint (requires OPENAI_API_KEY)")
	serveCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable gin debug mode")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	logger, err := logging.New(logging.Config{
		Level:   logging.ParseLevel(logLevel),
		LogDir:  logDir,
		Service: "governd",
	})
	if err != nil {
		return err
	}
	defer logger.Close()
	slogger := logger.Slog()

	if debugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Durable store for the queue and audit log.
	cfg := storage.DefaultConfig(dataDir)
	cfg.Logger = slogger
	db, err := storage.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	st := store.New(db)
	m := metrics.New(nil)
	if err := st.TrackQueueDepth(context.Background(), m.QueueDepth); err != nil {
		return fmt.Errorf("seed queue depth gauge: %w", err)
	}
	auditLog := audit.NewRetryingLog(st, slogger).WithRetryCounter(m.AuditRetriesTotal)

	// Scanner and risk engine.
	var sc *scanner.Scanner
	if lexiconPath != "" {
		sc, err = scanner.NewFromFile(lexiconPath)
	} else {
		sc, err = scanner.NewDefault()
	}
	if err != nil {
		return fmt.Errorf("load lexicons: %w", err)
	}
	logger.Info("lexicons loaded", "languages", sc.Languages())

	engine, err := risk.NewEngine(risk.DefaultEngineConfig())
	if err != nil {
		return fmt.Errorf("configure risk engine: %w", err)
	}

	// Policy provider, optionally hot-reloading.
	var provider policy.Provider
	switch {
	case policyPath != "" && watchPolicy:
		watcher, err := policy.NewWatcher(policyPath, slogger)
		if err != nil {
			return fmt.Errorf("watch policy: %w", err)
		}
		defer watcher.Close()
		provider = watcher
	case policyPath != "":
		table, err := policy.LoadFile(policyPath)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
		provider = policy.NewStaticProvider(table)
	default:
		table, err := policy.LoadDefault()
		if err != nil {
			return fmt.Errorf("load embedded policy: %w", err)
		}
		provider = policy.NewStaticProvider(table)
	}

	var generator oracle.Generator
	if enableGeneration {
		generator, err = oracle.NewOpenAIGenerator(slogger)
		if err != nil {
			return fmt.Errorf("configure generator: %w", err)
		}
	}

	// Audit-bearing commits on the evaluate path retry with backoff
	// before a decision is failed.
	committer := decision.NewRetryingCommitter(st, slogger).WithRetryCounter(m.AuditRetriesTotal)
	decider := decision.NewEngine(provider, committer, slogger)
	p := pipeline.New(sc, engine, decider, generator, m, slogger)
	limiter := middleware.NewRateLimiter(rateRPS, rateBurst)

	router := gin.New()
	router.Use(gin.Recovery())
	routes.SetupRoutes(router, p, st, auditLog, limiter)

	server := &http.Server{
		Addr:              listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("governance api listening", "addr", listenAddr, "data_dir", dataDir)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("shutdown complete")
	return nil
}
