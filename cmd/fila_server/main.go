package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/morfien101/fila/pkg/config"
	"github.com/morfien101/fila/pkg/desk"
	"github.com/morfien101/fila/pkg/fila"
	"github.com/morfien101/fila/pkg/gateway"
	"github.com/morfien101/fila/pkg/history"
	log "github.com/sirupsen/logrus"
)

// Notes for the reader:
// Backend credentials are loaded from the environment (AWS, GCP, DSNs).
// Startup order: history sink, publisher, queue, gRPC, REST.
// Shutdown happens on SIGINT/SIGTERM or the Shutdown RPC, in reverse order,
// so every served record reaches the publisher before it drains.

var (
	version = "development"
)

func printVersion() {
	fmt.Println(version)
}

func main() {
	cfg, err := config.Load(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if cfg.ShowHelp {
		os.Exit(0)
	}
	if cfg.ShowVersion {
		printVersion()
		os.Exit(0)
	}

	// Set the log level
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Println("Invalid log level")
		os.Exit(1)
	}
	log.SetLevel(level)
	if cfg.LogFormat == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	}

	os.Exit(run(cfg))
}

func run(cfg config.Config) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.WithFields(log.Fields{"queueName": cfg.History.Queue, "backend": cfg.History.Backend}).Info("Starting fila server...")

	sink, err := history.NewSink(ctx, cfg.History)
	if err != nil {
		log.Fatalf("Failed to initialize history backend: %v", err)
	}
	publisher := history.NewPublisher(sink, cfg.Publisher)
	publisher.Start()

	d := desk.New(fila.NewStore(), publisher)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatalf("Failed to load timezone: %v", err)
	}
	gw, err := gateway.New(d, gateway.Options{
		AppEnv:   cfg.Environment,
		Location: loc,
		RateLimit: gateway.RateLimitOptions{
			Enabled:   cfg.RateLimitEnabled,
			RPS:       cfg.RateLimitRPS,
			Burst:     cfg.RateLimitBurst,
			KeyHeader: cfg.RateLimitKeyHeader,
		},
	})
	if err != nil {
		log.Fatalf("Failed to build REST gateway: %v", err)
	}

	shutdownRequest := make(chan bool, 1)
	qs := newQueueServer(d, shutdownRequest)
	if err := qs.StartServer(cfg.GRPCAddress()); err != nil {
		log.Fatalf("Failed to start gRPC server: %v", err)
	}

	httpErrChan := make(chan error, 1)
	go func() {
		httpErrChan <- gw.Serve(ctx, cfg.HTTPAddr)
	}()

	// Set up channel to receive OS signals
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-signals:
		log.Info("Received shutdown signal")
	case <-shutdownRequest:
		log.Info("Received shutdown request")
	case err := <-httpErrChan:
		log.WithFields(log.Fields{"error": err}).Error("REST server stopped")
		httpErrChan = nil
		exitCode = 1
	}

	if code := attemptCleanExit(cancel, httpErrChan, qs, publisher, sink); code != 0 {
		exitCode = code
	}
	return exitCode
}

func attemptCleanExit(cancel context.CancelFunc, httpErrChan chan error, qs *QueueServer, publisher *history.Publisher, sink history.Sink) int {
	exitCode := 0

	// Stop taking requests first so no record is served after the drain.
	cancel()
	if httpErrChan != nil {
		if err := <-httpErrChan; err != nil {
			exitCode = 1
			log.WithFields(log.Fields{"error": err}).Error("REST server shutdown failed")
		}
	}
	qs.Stop()

	publisher.Stop()
	if err := sink.Close(); err != nil {
		exitCode = 1
		log.WithFields(log.Fields{"error": err}).Warn("Failed to close history backend")
	}

	log.Info("fila server stopped")
	return exitCode
}
