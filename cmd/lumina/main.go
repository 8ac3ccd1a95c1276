// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Lumina API server.
// It loads configuration, connects to services, sets up routing, and starts
// the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lumina/internal/cache"
	"lumina/internal/config"
	"lumina/internal/database"
	"lumina/internal/handlers"
	"lumina/internal/middleware"
	"lumina/internal/notify"
	"lumina/internal/router"
	"lumina/internal/session"
	"lumina/internal/store"
)

func main() {
	// Structured logger — outputs JSON in production, text in development.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// Load a local .env if present; real deployments set env vars directly.
	_ = godotenv.Load()

	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Run pending migrations.
	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Seed development data (no-op if data already exists).
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			slog.Error("failed to seed database", "error", err)
			os.Exit(1)
		}
	}

	// Connect to Valkey (Redis-compatible cache + session store).
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		slog.Error("failed to connect to valkey", "error", err)
		os.Exit(1)
	}
	defer valkeyClient.Close()

	// Initialize session store backed by Valkey.
	// In non-development environments, mark session cookies as Secure (HTTPS-only).
	secureCookies := !cfg.IsDev()
	sessionStore := session.NewStore(valkeyClient, secureCookies)

	// Cached category tree, invalidated on taxonomy writes.
	treeCache := cache.NewTaxonomyCache(valkeyClient, cache.DefaultTreeTTL)

	// Connect to RabbitMQ for lifecycle notifications (optional — the
	// app works without it, events are simply dropped).
	var notifier notify.Notifier = notify.Nop{}
	if cfg.AMQPURL != "" {
		amqpNotifier, err := notify.NewAMQPNotifier(cfg.AMQPURL)
		if err != nil {
			slog.Error("failed to connect to amqp broker", "error", err)
			os.Exit(1)
		}
		defer amqpNotifier.Close()
		notifier = amqpNotifier
		slog.Info("amqp notifier connected")
	} else {
		slog.Warn("amqp broker not configured — lifecycle events disabled")
	}

	// Initialize data stores.
	userStore := store.NewUserStore(db)
	categoryStore := store.NewCategoryStore(db)
	tagStore := store.NewTagStore(db)
	postStore := store.NewPostStore(db)
	commentStore := store.NewCommentStore(db)
	invitationStore := store.NewInvitationStore(db)
	auditStore := store.NewAuditStore(db)

	// Rate limit login attempts per client IP.
	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()

	// Create handler groups with their dependencies.
	authHandlers := handlers.NewAuth(sessionStore, userStore, auditStore)
	userHandlers := handlers.NewUsers(userStore, notifier)
	postHandlers := handlers.NewPosts(postStore, userStore, tagStore, notifier)
	taxonomyHandlers := handlers.NewTaxonomy(categoryStore, tagStore, treeCache)
	commentHandlers := handlers.NewComments(commentStore, userStore)
	invitationHandlers := handlers.NewInvitations(invitationStore, userStore, notifier)
	auditHandlers := handlers.NewAudit(auditStore)

	// Set up the Chi router with all middleware and routes.
	r := router.New(sessionStore, loginLimiter,
		authHandlers, userHandlers, postHandlers, taxonomyHandlers,
		commentHandlers, invitationHandlers, auditHandlers)

	// Create the HTTP server with sensible timeouts.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start the server in a goroutine so we can listen for shutdown signals.
	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	// Give active requests up to 30 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
