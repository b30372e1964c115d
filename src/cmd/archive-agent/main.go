// Package main provides the standalone archive agent binary. It consumes
// documents from the configured topic and persists them into Postgres.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"runbridge/src/archive"
	"runbridge/src/broker"
	"runbridge/src/codec"
	"runbridge/src/config"
	"runbridge/src/logger"
	"runbridge/src/store"
)

func main() {
	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	if cfg.PostgresDSN == "" {
		fmt.Fprintln(os.Stderr, "ERROR: RUNBRIDGE_POSTGRES_DSN environment variable is required for the archive agent")
		fmt.Fprintln(os.Stderr, "Example: export RUNBRIDGE_POSTGRES_DSN=postgres://localhost/runbridge?sslmode=disable")
		os.Exit(1)
	}

	cdc, err := codec.ByName(cfg.Codec)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Create logger
	log := logger.NewConsoleLogger()

	log.Info("Starting runbridge archive agent")
	log.Info("Brokers: %v", cfg.Brokers)
	log.Info("Topic: %s (codec: %s)", cfg.Topic, cdc.Name())

	// Connect the archive database
	st, err := store.NewPostgresStore(cfg.PostgresDSN)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to Postgres: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	// Setup context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := st.EnsureSchema(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to prepare schema: %v\n", err)
		os.Exit(1)
	}

	// Create the broker client. Earliest offset reset so a freshly started
	// agent archives documents published before it joined the group.
	groupID := cfg.GroupID
	if groupID == "" {
		groupID = "runbridge-archive"
	}
	client, err := broker.NewKafkaConsumer(cfg.Brokers, groupID, "earliest", nil, logger.Prefixed("kafka", log))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create consumer: %v\n", err)
		os.Exit(1)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutdown signal received, stopping agent...")
		cancel()
	}()

	// Run agent
	agent := archive.NewAgent(st, log)
	if err := agent.Run(ctx, client, cdc, []string{cfg.Topic}); err != nil {
		fmt.Fprintf(os.Stderr, "Agent error: %v\n", err)
		os.Exit(1)
	}

	log.Info("Archive agent stopped")
}
