package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"ble-visibility-map/internal/api"
	"ble-visibility-map/internal/cache"
	"ble-visibility-map/internal/config"
	"ble-visibility-map/internal/db"
	"ble-visibility-map/internal/fingerprint"
	"ble-visibility-map/internal/logging"
	"ble-visibility-map/internal/notifier"
	"ble-visibility-map/internal/pipeline"
	"ble-visibility-map/internal/processors/ingestor"
	"ble-visibility-map/internal/processors/packer"
	"ble-visibility-map/internal/registry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, logCloser, err := logging.New(logging.Config{
		Level:      cfg.Logs.Level,
		File:       cfg.Logs.File,
		MaxSize:    cfg.Logs.MaxSize,
		MaxBackups: cfg.Logs.MaxBackups,
		MaxAge:     cfg.Logs.MaxAge,
		Compress:   cfg.Logs.Compress,
	})
	if err != nil {
		panic(err)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	slog.InfoContext(ctx, "Starting service...", "version", api.Version)

	var store registry.Store
	var apiCfg api.Config
	if cfg.Database.DSN != "" {
		database, err := db.Init(ctx, db.Config{
			ConnString:     cfg.Database.DSN,
			MigrationsPath: cfg.Database.MigrationsPath,
			MaxConns:       cfg.Database.MaxConns,
		})
		if err != nil {
			panic(err)
		}
		defer database.Close()
		store = database
		apiCfg.Store = database
		slog.InfoContext(ctx, "Using postgres store")
	} else {
		memory := cache.New(cache.Config{
			Brokers:       cfg.Kafka.Brokers,
			ConsumerTopic: cfg.Kafka.ProfilesTopic,
			AuditTopic:    cfg.Kafka.AuditTopic,
		})
		memory.Hydrate(ctx)
		slog.InfoContext(ctx, "Cache hydrated with initial data")
		memory.Dump()
		store = memory
	}

	sinks := []notifier.Sink{notifier.LogSink{}}
	var changelog registry.Changelog
	if cfg.KafkaEnabled() {
		wPacker := packer.New(packer.Config{
			Brokers:        cfg.Kafka.Brokers,
			PublisherTopic: cfg.Kafka.ProfilesTopic,
			AuditTopic:     cfg.Kafka.AuditTopic,
		})
		defer wPacker.Close(ctx)
		changelog = wPacker

		alerts := notifier.NewKafkaSink(notifier.KafkaSinkConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.AlertsTopic,
			Breaker: notifier.BreakerConfig{
				MaxFailures: cfg.Notifier.Breaker.MaxFailures,
				Timeout:     cfg.Notifier.Breaker.Timeout,
				Interval:    cfg.Notifier.Breaker.Interval,
			},
		})
		defer alerts.Close(ctx)
		sinks = append(sinks, alerts)
	}

	reg := registry.New(registry.Config{Store: store, Changelog: changelog})
	dispatcher := notifier.NewDispatcher(notifier.Config{
		Sinks:           sinks,
		Buffer:          cfg.Notifier.Buffer,
		DeliveryTimeout: cfg.Notifier.DeliveryTimeout,
	})
	pipe := pipeline.New(pipeline.Config{
		Registry:   reg,
		Classifier: fingerprint.New(fingerprint.Config{}),
		Dispatcher: dispatcher,
	})

	wg := sync.WaitGroup{}
	wg.Go(func() {
		dispatcher.Run(ctx)
	})

	if cfg.KafkaEnabled() {
		wIngestor := ingestor.New(ingestor.Config{
			Brokers:         cfg.Kafka.Brokers,
			ConsumerGroupID: cfg.Kafka.GroupID,
			ConsumerTopic:   cfg.Kafka.ObservationsTopic,
			Pipeline:        pipe,
		})
		defer wIngestor.Close(ctx)
		wg.Go(func() {
			wIngestor.Run(ctx)
		})
	}

	apiCfg.Pipeline = pipe
	apiCfg.Registry = reg
	server := &http.Server{
		Addr:    cfg.ListenAddr(),
		Handler: api.New(apiCfg).Routes(),
	}
	wg.Go(func() {
		slog.InfoContext(ctx, "HTTP server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.ErrorContext(ctx, "HTTP server error", "error", err)
			cancel()
		}
	})

	go func() {
		select {
		case <-sigs:
		case <-ctx.Done():
		}
		cancel()
	}()

	<-ctx.Done()
	slog.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown failed", "error", err)
	}

	wg.Wait()
	slog.Info("Dispatcher stats",
		"attempted", dispatcher.Attempted(),
		"delivered", dispatcher.Delivered(),
		"dropped", dispatcher.Dropped(),
	)
}
