package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/farmhand-io/farmhand/pkg/api"
	"github.com/farmhand-io/farmhand/pkg/auth"
	"github.com/farmhand-io/farmhand/pkg/config"
	"github.com/farmhand-io/farmhand/pkg/farms"
	"github.com/farmhand-io/farmhand/pkg/mail"
	"github.com/farmhand-io/farmhand/pkg/middleware"
	"github.com/farmhand-io/farmhand/pkg/observability"
	"github.com/farmhand-io/farmhand/pkg/rbac"
	"github.com/farmhand-io/farmhand/pkg/storage/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	db, err := postgres.Connect(cfg.Database)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to database")
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := postgres.Migrate(ctx, db, logger, rbac.GetMigrations(), farms.GetMigrations()); err != nil {
		logger.WithError(err).Error("Failed to run migrations")
		os.Exit(1)
	}

	metrics := observability.NewMetrics(nil)
	if cfg.Observability.MetricsEnabled {
		postgres.StartPoolStatsRoutine(ctx, db, metrics, 15*time.Second)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unreachable at startup, rate limiting will fail open")
		}
		defer redisClient.Close()
	}

	var mailer mail.Mailer
	mailLog := logrus.New()
	if cfg.Mail.Enabled {
		mailer = mail.NewSMTPMailer(mail.SMTPConfig{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			From:     cfg.Mail.From,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
		}, mailLog)
	} else {
		mailer = mail.NewLogMailer(mailLog)
	}

	tokens := auth.NewInviteTokenIssuer(cfg.Invitations.TokenSecret, cfg.Invitations.TokenTTL)
	service := farms.NewPostgresService(db, tokens, mailer, logger, metrics, cfg.Invitations.JoinBaseURL)

	store := rbac.NewStore(db)
	resolver := rbac.NewPermissionResolver(store, metrics)
	server := api.NewServer(service, store, resolver, logger)

	if cfg.Invitations.JanitorEnabled {
		janitor, err := farms.NewJanitor(service, logger, cfg.Invitations.JanitorSchedule)
		if err != nil {
			logger.WithError(err).Error("Failed to configure invitation janitor")
			os.Exit(1)
		}
		janitor.Start()
		defer janitor.Stop()
	}

	handler := buildHandlerChain(server, cfg, redisClient, logger, metrics)

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	var exposedMetrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		exposedMetrics = metrics
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: buildHealthHandler(db, redisClient, exposedMetrics),
	}

	shutdown := observability.NewShutdownManager(logger, apiServer, cfg.Server.ShutdownTimeout)
	shutdown.RegisterShutdownFunc(func(ctx context.Context) error {
		return healthServer.Shutdown(ctx)
	})
	shutdown.RegisterShutdownFunc(func(context.Context) error {
		cancel()
		return nil
	})

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("Farmhand API listening on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		logger.Infof("Health and metrics listening on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return shutdown.WaitForShutdown()
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

// buildHandlerChain wraps the API router with the request middleware
// stack, outermost first. Middleware that needs route matching (metrics
// path templates, farm path vars) registers on the router itself.
func buildHandlerChain(server *api.Server, cfg *config.Config, redisClient *redis.Client, logger *observability.Logger, metrics *observability.Metrics) http.Handler {
	if metrics != nil {
		server.Router().Use(middleware.Metrics(metrics))
	}
	server.Router().Use(middleware.NewIdentityMiddleware(true).Handler)
	server.Router().Use(middleware.FarmContext)

	var handler http.Handler = server

	if redisClient != nil {
		limiter := middleware.NewRedisRateLimiter(redisClient, &middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Redis.RateLimitRequests,
			WindowDuration:    cfg.Redis.RateLimitWindow,
		}, "farmhand", logger)
		handler = limiter.Handler(handler)
	}

	handler = middleware.Recovery(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}

// buildHealthHandler serves liveness, readiness and metrics on the
// secondary port.
func buildHealthHandler(db *sql.DB, redisClient *redis.Client, metrics *observability.Metrics) http.Handler {
	checker := observability.NewHealthChecker(db, redisClient)

	r := mux.NewRouter()
	r.HandleFunc("/healthz", checker.Liveness).Methods("GET")
	r.HandleFunc("/readyz", checker.Readiness).Methods("GET")
	if metrics != nil {
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
	}
	return r
}
