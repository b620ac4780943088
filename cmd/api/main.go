package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"example.com/stableops/internal/api"
	"example.com/stableops/internal/auth"
	"example.com/stableops/internal/config"
	"example.com/stableops/internal/domain"
	"example.com/stableops/internal/feed"
	"example.com/stableops/internal/outbox"
	persistence "example.com/stableops/internal/persistence/postgres"
	"example.com/stableops/internal/remote"
	httptransport "example.com/stableops/internal/transport/http"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repo := persistence.NewRepository(pool)
	producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
	defer producer.Close()

	registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
	dispatcher := outbox.NewDispatcher(pool, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize)

	go dispatcher.Start(ctx)

	service := domain.NewService(repo, persistence.RoutineRepository{Repository: repo})

	handler := api.NewHandler(service, feedSources(cfg, service))
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authMiddleware := auth.NewMiddleware(auth.Config{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer})
	requestLog := log.New(log.Writer(), "[http] ", log.LstdFlags)

	server := httptransport.NewServer(httptransport.ServerConfig{
		Address:      cfg.HTTPAddress,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, httptransport.WithRequestLog(requestLog, httptransport.WithCORS(cfg.CORSOrigin, authMiddleware.Wrap(mux))))

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("stableops-api listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-shutdownCh
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	dispatcher.Wait()
}

// feedSources serves the feed from the local Postgres-backed service unless
// upstream base URLs are configured, in which case each request fetches from
// the remote stable-management backends.
func feedSources(cfg config.Config, service *domain.Service) api.FeedSourceFactory {
	if cfg.ActivitiesBaseURL == "" || cfg.RoutinesBaseURL == "" {
		return api.NewLocalFeedSources(service)
	}
	return func() api.FeedSources {
		store := feed.NewStore[[]domain.ActivityInstance](nil)
		return api.FeedSources{
			Activities: remote.NewActivityClient(cfg.ActivitiesBaseURL, cfg.UpstreamToken, cfg.UpstreamTimeout, store),
			Routines:   remote.NewRoutineClient(cfg.RoutinesBaseURL, cfg.UpstreamToken, cfg.UpstreamTimeout),
			Store:      store,
		}
	}
}
