package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"vigil/internal/audit"
	"vigil/internal/auth"
	userstore "vigil/internal/auth/store/user"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/metrics"
	"vigil/internal/post"
	poststore "vigil/internal/post/store/post"
	"vigil/internal/storage"
	httptransport "vigil/internal/transport/http"
	"vigil/internal/user"
)

// main wires dependencies and keeps the server lifecycle small. Business
// logic lives in the internal service packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx := context.Background()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	keyring, err := audit.OpenKeyring(cfg.AuditDir)
	if err != nil {
		log.Error("failed to open audit keyring", "error", err)
		os.Exit(1)
	}
	auditSvc := audit.NewService(audit.NewLog(keyring, m), log)

	var users user.Store
	var posts post.Store
	if cfg.DatabaseURL != "" {
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := storage.Migrate(ctx, db); err != nil {
			log.Error("failed to migrate schema", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgres(db)
		posts = poststore.NewPostgres(db)
	} else {
		log.Warn("no database configured, using in-memory stores")
		users = userstore.NewInMemoryStore()
		posts = poststore.NewInMemoryStore()
	}

	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.TokenTTL)
	authSvc := auth.NewService(users, tokens, auditSvc, log, m)
	userSvc := user.NewService(users, auditSvc, log, m)
	postSvc := post.NewService(posts, users, auditSvc, log, m)

	if err := authSvc.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Error("failed to seed admin account", "error", err)
		os.Exit(1)
	}

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Auth:     httptransport.NewAuthHandler(authSvc, log),
		Users:    httptransport.NewUserHandler(userSvc, log),
		Posts:    httptransport.NewPostHandler(postSvc, log),
		Audit:    httptransport.NewAuditHandler(auditSvc, log),
		Resolver: authSvc,
		Logger:   log,
		Registry: registry,
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting vigil", "addr", cfg.Addr, "audit_dir", cfg.AuditDir)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
