package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	grpcprom "github.com/grpc-ecosystem/go-grpc-middleware/providers/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"
	gRPC "google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/vendorrisk/golang_services/internal/campaign_service/adapters/email"
	grpcadapter "github.com/vendorrisk/golang_services/internal/campaign_service/adapters/grpc"
	"github.com/vendorrisk/golang_services/internal/campaign_service/app"
	"github.com/vendorrisk/golang_services/internal/campaign_service/middleware"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository"
	mongorepo "github.com/vendorrisk/golang_services/internal/campaign_service/repository/mongodb"
	"github.com/vendorrisk/golang_services/internal/campaign_service/repository/postgres"
	httptransport "github.com/vendorrisk/golang_services/internal/campaign_service/transport/http"
	"github.com/vendorrisk/golang_services/internal/platform/config"
	"github.com/vendorrisk/golang_services/internal/platform/database"
	"github.com/vendorrisk/golang_services/internal/platform/logger"
	"github.com/vendorrisk/golang_services/internal/platform/messagebroker"
)

const serviceName = "campaign-service"

// httpLogger is a middleware that logs HTTP requests using slog.
func httpLogger(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.LogAttrs(r.Context(), slog.LevelInfo, "HTTP request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status_code", ww.Status()),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.String("request_id", chiMiddleware.GetReqID(r.Context())),
				slog.String("remote_ip", r.RemoteAddr),
			)
		}
		return http.HandlerFunc(fn)
	}
}

func main() {
	if len(os.Args) > 1 {
		if err := runCLI(os.Args[1:]); err != nil {
			slog.Error("command failed", "error", err)
			os.Exit(1)
		}
		return
	}

	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Campaign service starting...",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"metrics_port", cfg.MetricsPort,
		"log_level", cfg.LogLevel,
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN, database.WithApplicationName(serviceName))
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Successfully connected to PostgreSQL")

	healthChecks := []grpcadapter.Check{{Name: "postgres", Ping: dbPool.Ping}}

	var auditLogs repository.AuditLogRepository
	if cfg.MongoURI != "" {
		mongoClient, err := database.NewMongoClient(mainCtx, cfg.MongoURI)
		if err != nil {
			appLogger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
		coll := mongoClient.Database(cfg.MongoDatabase).Collection(mongorepo.AuditLogCollection)
		if err := mongorepo.EnsureIndexes(mainCtx, coll); err != nil {
			appLogger.Warn("Failed to ensure audit log indexes", "error", err)
		}
		auditLogs = mongorepo.NewAuditLogRepository(coll)
		healthChecks = append(healthChecks, grpcadapter.Check{Name: "mongo", Ping: mongoPing(mongoClient)})
		appLogger.Info("Audit log backed by MongoDB", "database", cfg.MongoDatabase)
	} else {
		auditLogs = mongorepo.NewLogAuditLogRepository(appLogger)
		appLogger.Warn("MONGO_URI not set; audit entries go to the service log")
	}

	var publisher messagebroker.Publisher
	if cfg.NATSUrl != "" {
		natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
		if err != nil {
			appLogger.Warn("Failed to connect to NATS; campaign events disabled", "error", err)
		} else {
			defer natsClient.Close()
			publisher = natsClient
		}
	}

	var rateStore middleware.RateLimitStore
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer func() {
			_ = redisClient.Close()
		}()
		rateStore = middleware.NewRedisRateLimitStore(redisClient)
		healthChecks = append(healthChecks, grpcadapter.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	} else {
		rateStore = middleware.NewMemoryRateLimitStore()
		appLogger.Info("REDIS_ADDR not set; send rate limit is process local")
	}

	repos := app.Repositories{
		Campaigns:      postgres.NewPgCampaignRepository(),
		Vendors:        postgres.NewPgVendorRepository(),
		Clients:        postgres.NewPgClientRepository(),
		Users:          postgres.NewPgUserRepository(),
		EmailTemplates: postgres.NewPgEmailTemplateRepository(),
		Files:          postgres.NewPgFileRepository(),
		References:     postgres.NewPgReferenceRepository(),
		Instances:      postgres.NewPgCampaignInstanceRepository(),
		Emails:         postgres.NewPgCampaignInstanceEmailRepository(),
		AuditLogs:      auditLogs,
	}
	tx := database.NewTransactor(dbPool)
	sender := email.NewSender(cfg.Email, appLogger)

	campaignApp := app.NewCampaignService(dbPool, tx, repos, sender, publisher, appLogger)
	instanceApp := app.NewCampaignInstanceService(dbPool, repos.Instances)
	instanceEmailApp := app.NewCampaignInstanceEmailService(dbPool, tx, repos.Emails, repos.Campaigns, auditLogs, appLogger)
	appLogger.Info("Campaign application services initialized", "email_configured", sender.IsConfigured())

	g, groupCtx := errgroup.WithContext(mainCtx)

	// --- gRPC health server ---
	grpcMetrics := grpcprom.NewServerMetrics(grpcprom.WithServerHandlingTimeHistogram())
	if err := prometheus.DefaultRegisterer.Register(grpcMetrics); err != nil {
		appLogger.Warn("Failed to register gRPC Prometheus metrics", "error", err)
	}
	grpcServer := gRPC.NewServer(
		gRPC.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()),
		gRPC.ChainStreamInterceptor(grpcMetrics.StreamServerInterceptor()),
	)
	healthServer := grpcadapter.NewHealthServer(appLogger, cfg.HealthCheckInterval, healthChecks...)
	healthServer.Register(grpcServer)
	reflection.Register(grpcServer)
	grpcMetrics.InitializeMetrics(grpcServer)
	if err := healthServer.Start(groupCtx); err != nil {
		appLogger.Error("Failed to start health probe", "error", err)
		os.Exit(1)
	}

	grpcListenAddress := fmt.Sprintf(":%d", cfg.GRPCPort)
	grpcListener, err := net.Listen("tcp", grpcListenAddress)
	if err != nil {
		appLogger.Error("Failed to listen for gRPC", "address", grpcListenAddress, "error", err)
		os.Exit(1)
	}
	g.Go(func() error {
		appLogger.Info("gRPC server starting", "address", grpcListenAddress)
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, gRPC.ErrServerStopped) {
			appLogger.Error("gRPC server failed to serve", "error", err)
			return err
		}
		appLogger.Info("gRPC server shut down gracefully.")
		return nil
	})

	// --- REST API ---
	validate := validator.New(validator.WithRequiredStructEnabled())
	router := chi.NewRouter()
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Recoverer)
	router.Use(httpLogger(appLogger))
	router.Use(middleware.PrometheusMetricsMiddleware)
	router.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	httptransport.RegisterRoutes(router,
		httptransport.NewCampaignHandler(campaignApp, validate, appLogger),
		httptransport.NewCampaignInstanceHandler(instanceApp, instanceEmailApp, validate, appLogger),
		httptransport.RouteConfig{
			JWTSecret:   []byte(cfg.JWTAccessSecret),
			SendLimiter: middleware.RateLimitMiddleware(rateStore, "campaign:send", cfg.SendRateLimit, cfg.SendRateWindow, middleware.TenantKey, appLogger),
			Logger:      appLogger,
		},
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}
	g.Go(func() error {
		appLogger.Info("HTTP server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("HTTP server ListenAndServe error", "error", err)
			return err
		}
		appLogger.Info("HTTP server shut down gracefully.")
		return nil
	})

	// --- Metrics ---
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           metricsMux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	g.Go(func() error {
		appLogger.Info("Metrics HTTP server starting", "address", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("Metrics HTTP server ListenAndServe error", "error", err)
			return err
		}
		return nil
	})

	// --- Graceful shutdown ---
	stopSignal := make(chan os.Signal, 1)
	signal.Notify(stopSignal, syscall.SIGINT, syscall.SIGTERM)

	g.Go(func() error {
		select {
		case sig := <-stopSignal:
			appLogger.Info("Received termination signal", "signal", sig.String())
			mainCancel()
		case <-groupCtx.Done():
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		appLogger.Info("Initiating graceful shutdown of servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		var shutdownErrors error
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = errors.Join(shutdownErrors, fmt.Errorf("http shutdown: %w", err))
		}
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			shutdownErrors = errors.Join(shutdownErrors, fmt.Errorf("metrics shutdown: %w", err))
		}
		healthServer.Stop()
		grpcServer.GracefulStop()
		return shutdownErrors
	})

	appLogger.Info("Campaign service is ready and running.")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Service group encountered an error during run/shutdown", "error", err)
	}
	appLogger.Info("Campaign service shut down.")
}

func mongoPing(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}
}
