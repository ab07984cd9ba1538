package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/tatylu/storefront/internal/config"
	"github.com/tatylu/storefront/internal/events"
	"github.com/tatylu/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	if cfg.Events.AMQPURL == "" {
		log.Error("AMQP_URL is required for the warehouse consumer")
		os.Exit(1)
	}

	log.Info("starting warehouse consumer",
		"workers", cfg.Events.Workers,
		"queue", cfg.Events.QueueName,
	)

	conn, err := amqp.Dial(cfg.Events.AMQPURL)
	if err != nil {
		log.Error("failed to connect to RabbitMQ", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	// Declare the queue up front so workers never race its creation.
	ch, err := conn.Channel()
	if err != nil {
		log.Error("failed to open a channel", "error", err)
		os.Exit(1)
	}
	if _, err := ch.QueueDeclare(cfg.Events.QueueName, true, false, false, false, nil); err != nil {
		log.Error("failed to declare queue", "error", err)
		os.Exit(1)
	}
	ch.Close()

	tracker := events.NewFulfillmentTracker()

	var wg sync.WaitGroup
	for i := 0; i < cfg.Events.Workers; i++ {
		worker, err := events.NewWorker(i+1, conn, cfg.Events.QueueName, tracker, log)
		if err != nil {
			log.Error("failed to create worker", "worker", i+1, "error", err)
			os.Exit(1)
		}

		wg.Add(1)
		go worker.Start(&wg)
	}

	log.Info("all workers started", "count", cfg.Events.Workers)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Info("shutdown signal received, stopping workers...")

	// Closing the connection closes all channels and ends each worker's
	// consume loop.
	conn.Close()
	wg.Wait()

	orders, units, duplicates, revenue := tracker.Snapshot()
	log.Info("warehouse consumer stopped",
		"orders_processed", orders,
		"units_picked", units,
		"duplicates", duplicates,
		"revenue", revenue,
	)
}
