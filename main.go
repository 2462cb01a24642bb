package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"rentkart_server/api"
	"rentkart_server/config"
	"rentkart_server/database"
	"rentkart_server/jobs"
	"rentkart_server/services"
	"rentkart_server/structs"
	"syscall"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/joho/godotenv"
)

var logger *gecho.Logger
var cfg *structs.Config

// init function to load environment variables and initialize logger and database
func init() {
	envErr := godotenv.Load()

	cfg = config.GetConfig()
	logger = config.InitializeLogger()

	if envErr != nil {
		logger.Warn("No .env file found or error loading .env file, proceeding with system environment variables")
	}

	if err := database.Initialize(); err != nil {
		logger.Fatal("Failed to initialize database", gecho.Field("error", err))
	}
}

func main() {
	sm := services.NewServiceManager(logger, cfg, database.GetInstance())

	scheduler := jobs.NewScheduler(logger, cfg, sm.OrderService, sm.OTPService)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", gecho.Field("error", err))
	}

	server := &http.Server{
		Addr:           cfg.Server.Port,
		Handler:        api.App(sm),
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	go setupGracefulShutdown(logger, server, scheduler)

	logger.Info(fmt.Sprintf("Starting server (%s) on %s", cfg.Server.AppName, cfg.Server.Port))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Failed to start server", gecho.Field("error", err))
	}
}

// setupGracefulShutdown drains in-flight requests and stops the scheduler
// before the process exits.
func setupGracefulShutdown(logger *gecho.Logger, server *http.Server, scheduler *jobs.Scheduler) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	logger.Info("Received shutdown signal", gecho.Field("signal", sig.String()))

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", gecho.Field("error", err))
	}

	if err := database.CloseInstance(); err != nil {
		logger.Error("Failed to close database", gecho.Field("error", err))
	}

	os.Exit(0)
}
