package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-hub/internal/api"
	"restaurant-hub/internal/app"
	"restaurant-hub/internal/config"
	"restaurant-hub/internal/logger"
	"restaurant-hub/internal/messaging"
	"restaurant-hub/internal/notification"
)

func main() {
	var (
		mode       = flag.String("mode", "hub", "Service mode (hub, notification-subscriber)")
		configPath = flag.String("config", "config.yaml", "Path to the YAML config file")
		port       = flag.Int("port", 0, "HTTP port (overrides http.port)")
		prefetch   = flag.Int("prefetch", 10, "RabbitMQ prefetch count")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.HTTP.Port = *port
	}

	log := logger.New(*mode, cfg.Log.Level)
	defer log.Sync()
	requestID := logger.GenerateRequestID()

	log.Info("service_started", fmt.Sprintf("Starting %s", *mode), requestID, map[string]interface{}{
		"mode": *mode,
		"port": cfg.HTTP.Port,
		"feed": cfg.Feed.Driver,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "hub":
		err = runHub(ctx, cfg, log)
	case "notification-subscriber":
		err = runNotificationSubscriber(ctx, cfg, log, *prefetch)
	default:
		err = fmt.Errorf("unknown mode: %s", *mode)
	}
	if err != nil {
		log.Error("service_failed", fmt.Sprintf("%s failed", *mode), requestID, err, nil)
		log.Sync()
		os.Exit(1)
	}

	log.Info("service_stopped", "Service stopped gracefully", requestID, nil)
}

func runHub(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	requestID := logger.GenerateRequestID()

	restaurant, err := app.Build(ctx, cfg, log)
	if err != nil {
		return err
	}

	handler := api.NewHandler(restaurant.Hub, log, restaurant.HealthChecks())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("service_started", fmt.Sprintf("Restaurant hub listening on port %d", cfg.HTTP.Port), requestID, map[string]interface{}{
			"port": cfg.HTTP.Port,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("graceful_shutdown", "Received shutdown signal", requestID, nil)
	case err = <-serveErr:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return errors.Join(
		err,
		server.Shutdown(shutdownCtx),
		restaurant.Shutdown(shutdownCtx),
	)
}

func runNotificationSubscriber(ctx context.Context, cfg *config.Config, log *logger.Logger, prefetch int) error {
	var source notification.Source
	switch cfg.Feed.Driver {
	case config.FeedAMQP:
		conn, err := messaging.New(ctx, cfg.RabbitMQURL(), log)
		if err != nil {
			return fmt.Errorf("failed to initialize messaging: %w", err)
		}
		consumer := messaging.NewConsumer(conn, log, messaging.NotificationsQueue, "notification-subscriber", prefetch)
		defer consumer.Close()
		source = consumer
	case config.FeedNATS:
		feed, err := messaging.NewNATSFeed(cfg.NATS.URL, log)
		if err != nil {
			return err
		}
		defer feed.Close()
		source = feed
	default:
		return fmt.Errorf("notification-subscriber needs feed.driver amqp or nats, got %s", cfg.Feed.Driver)
	}

	return notification.NewSubscriber(source, os.Stdout, log).Start(ctx)
}
