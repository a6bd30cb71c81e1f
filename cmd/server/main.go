package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/anonto42/socialgraph/backend/internal/auth"
	"github.com/anonto42/socialgraph/backend/internal/engagement"
	"github.com/anonto42/socialgraph/backend/internal/metrics"
	"github.com/anonto42/socialgraph/backend/internal/router"
	"github.com/anonto42/socialgraph/backend/internal/validators"
	"github.com/anonto42/socialgraph/backend/pkg/config"
	"github.com/anonto42/socialgraph/backend/pkg/firebase"
	"github.com/anonto42/socialgraph/backend/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	log := logger.New(cfg.Env, cfg.LogLevel)
	logrus.SetFormatter(log.Formatter)
	logrus.SetLevel(log.GetLevel())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Firebase is optional unless it backs the document store.
	var fb *firebase.App
	if cfg.FirebaseCredentialsPath != "" {
		fb, err = firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID)
		if err != nil {
			log.Fatalf("Failed to initialize Firebase: %v", err)
		}
	}

	db, err := config.InitDB(ctx, cfg, fb)
	if err != nil {
		log.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	mode, err := engagement.ParseMode(cfg.ConsistencyMode)
	if err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	resolverOpts := []auth.ResolverOption{auth.WithUserLookup(db.Store), auth.WithResolverLogger(log)}
	if fb != nil {
		resolverOpts = append(resolverOpts, auth.WithProvider(fb.AuthClient))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	config.SetupMiddleware(e, cfg, log)

	router.SetupRoutes(e, router.Dependencies{
		Store:         db.Store,
		Notifications: db.Notifications,
		Tokens:        tokens,
		Resolver:      auth.NewResolver(tokens, resolverOpts...),
		Engagement:    engagement.NewService(db.Store, mode, engagement.WithLogger(log), engagement.WithMetrics(m)),
		Metrics:       m,
		Logger:        log,
		CookieSecure:  cfg.CookieSecure,
		AdminUserIDs:  cfg.AdminUserIDs,
	})

	var metricsServer *http.Server
	if cfg.MetricsPort != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			log.WithField("port", cfg.MetricsPort).Info("Serving metrics")
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.WithError(err).Error("metrics server stopped")
			}
		}()
	}

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("metrics shutdown failed")
		}
	}
}
