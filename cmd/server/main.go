// Package main initializes and starts the auth service, setting up
// configuration, logging, the database connection, repositories,
// services, handlers and the HTTP server.
package main

import (
	"cmp"
	"context"
	"fmt"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/matthewvu2719/Journey-sub002/internal/config"
	"github.com/matthewvu2719/Journey-sub002/internal/db"
	"github.com/matthewvu2719/Journey-sub002/internal/logger"
	"github.com/matthewvu2719/Journey-sub002/internal/repository"
	"github.com/matthewvu2719/Journey-sub002/internal/server/handler/http"
	"github.com/matthewvu2719/Journey-sub002/internal/service"
	"github.com/matthewvu2719/Journey-sub002/internal/token"
)

// tokenTTL bounds how long issued bearer tokens stay valid.
const tokenTTL = 30 * 24 * time.Hour

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options := config.Parse()
	addr := options.Port
	dbName := options.DatabaseDSN

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	if options.JWTSecret == "" {
		zapLogger.Fatal("JWT secret is required (-secret or JWT_SECRET)")
	}

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(dbName)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}

	// Reap guest accounts that have gone quiet.
	db.StartStaleGuestCleaner(context.Background(), postgresDB,
		time.Hour,       // interval
		90*24*time.Hour, // retention: 90 days
		zapLogger,
	)

	// Initialize the repository and business-logic service.
	userRepo := repository.NewPostgresUserRepository(postgresDB)
	authService := service.NewAuthService(userRepo)

	// Token manager signs and validates bearer tokens.
	tokens := token.New(options.JWTSecret, tokenTTL)

	// Create HTTP handlers for the auth endpoints.
	authHandler := &http.AuthHandler{AuthService: authService, Tokens: tokens}

	// Build the router with middleware and routes.
	router := http.NewRouter(authHandler, tokens, zapLogger)

	// Create and start the HTTP server.
	server := &nethttp.Server{
		Addr:    addr,
		Handler: router,
	}

	zapLogger.Info("starting HTTP server", zap.String("addr", addr))
	if err := server.ListenAndServe(); err != nil {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
