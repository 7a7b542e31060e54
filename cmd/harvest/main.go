package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rxacademy/harvest/internal/app"
	"github.com/rxacademy/harvest/internal/common"
	"github.com/rxacademy/harvest/internal/server"
)

var (
	configFile  = flag.String("config", "", "Configuration file path")
	serverPort  = flag.Int("port", 0, "Server port (overrides config)")
	showVersion = flag.Bool("version", false, "Print version information")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("Harvest version %s\n", common.GetFullVersion())
		os.Exit(0)
	}

	// Auto-discover config file if not specified
	path := *configFile
	if path == "" {
		if _, err := os.Stat("harvest.toml"); err == nil {
			path = "harvest.toml"
		}
	}

	config, err := common.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *serverPort != 0 {
		config.Server.Port = *serverPort
	}

	logger := common.InitLogger(config)
	common.PrintBanner(common.GetVersion())

	application, err := app.New(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize application")
	}

	if err := application.Scheduler.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	httpServer := server.New(application)
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := application.Close(); err != nil {
		logger.Warn().Err(err).Msg("Application close failed")
	}

	logger.Info().Msg("Shutdown complete")
}
