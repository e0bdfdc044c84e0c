// Package main initializes and starts the CMS HTTP server, setting up
// configuration, logging, the document store, credentials, sessions and
// handlers.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/gophcms/internal/config"
	"github.com/atinyakov/gophcms/internal/db"
	"github.com/atinyakov/gophcms/internal/logger"
	"github.com/atinyakov/gophcms/internal/render"
	"github.com/atinyakov/gophcms/internal/repository"
	"github.com/atinyakov/gophcms/internal/server/handler/http"
	"github.com/atinyakov/gophcms/internal/service"
	"github.com/atinyakov/gophcms/internal/session"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line and environment configuration.
	options, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	zapLogger := log.Log

	if options.UsesDefaultSecret() {
		zapLogger.Warn("using the development session secret; set SESSION_SECRET in production")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize the document store and clean up after interrupted writes.
	docRepo, err := repository.NewFileDocumentRepository(options.DataDir)
	if err != nil {
		zapLogger.Fatal("cannot init document root", zap.Error(err))
	}
	repository.StartTempFileSweeper(ctx, docRepo,
		10*time.Minute, // interval
		time.Hour,      // temp files older than this are abandoned
		zapLogger,
	)

	// Credentials come from PostgreSQL when a DSN is configured, otherwise
	// from the YAML file.
	var authRepo service.AuthRepository
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()
		authRepo = repository.NewPostgresAuthRepository(postgresDB)
	} else {
		authRepo = repository.NewFileAuthRepository(options.UsersFile)
	}

	sessions, err := session.NewManager(options.SessionSecret, options.TLSCert != "")
	if err != nil {
		zapLogger.Fatal("cannot init sessions", zap.Error(err))
	}
	pages, err := http.NewPages(sessions, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot load templates", zap.Error(err))
	}

	documentHandler := &http.DocumentHandler{
		Documents: service.NewDocumentService(docRepo),
		Renderer:  render.New(),
		Pages:     pages,
	}
	authHandler := &http.AuthHandler{
		AuthService: service.NewAuthService(authRepo),
		Pages:       pages,
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(documentHandler, authHandler, sessions, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server",
		zap.String("addr", options.Port),
		zap.String("data_dir", options.DataDir),
		zap.Bool("tls", options.TLSCert != ""),
	)

	if options.TLSCert != "" && options.TLSKey != "" {
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
}
