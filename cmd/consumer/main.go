package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"

	"example.com/stableops/internal/config"
	"example.com/stableops/internal/consumer"
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

	// Every topic runs both handlers: the audit log first, then the
	// progress projection. Chain aborts on the first failure so the offset
	// is only committed once both effects landed.
	handler := consumer.Chain{
		consumer.NewEventLogHandler(pool),
		consumer.NewProgressHandler(pool),
	}

	metricsSrv := serveMetrics(cfg.MetricsAddress)

	var wg sync.WaitGroup
	for _, topic := range cfg.ConsumerTopics {
		wg.Add(1)
		go func(topic string) {
			defer wg.Done()
			consumeTopic(ctx, cfg, topic, handler)
		}(topic)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("consumer shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown error: %v", err)
	}

	wg.Wait()
}

// consumeTopic runs one reader in the shared consumer group until ctx ends.
func consumeTopic(ctx context.Context, cfg config.Config, topic string, handler consumer.Handler) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:         cfg.KafkaBrokers,
		GroupID:         cfg.ConsumerGroupID,
		Topic:           topic,
		MinBytes:        1e3,
		MaxBytes:        10e6,
		CommitInterval:  time.Second,
		RetentionTime:   24 * time.Hour,
		ReadLagInterval: -1,
	})
	defer reader.Close()

	log.Printf("consumer started (topic=%s, group=%s)", topic, cfg.ConsumerGroupID)
	if err := consumer.NewProcessor(reader, handler).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Printf("consumer stopped with error (topic=%s): %v", topic, err)
	}
}

func serveMetrics(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: promhttp.Handler()}
	go func() {
		log.Printf("consumer metrics listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server error: %v", err)
		}
	}()
	return srv
}
