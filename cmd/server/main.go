package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/food-delivery-platform/backend/internal/app"
	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/food-delivery-platform/backend/internal/handlers"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}
	log := app.NewLogger(cfg.Log)
	log.Info("Food delivery API starting...")

	backend, err := app.New(cfg, log)
	if err != nil {
		log.Fatalf("Startup error: %v", err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.WithError(err).Error("Shutdown cleanup failed")
		}
	}()

	server := handlers.NewApp(backend)

	// Graceful shutdown setup
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Info("Food delivery API closing...")
		if err := server.Shutdown(); err != nil {
			log.WithError(err).Error("Shutdown error")
		}
	}()

	log.WithField("storage", cfg.StorageDriver).Infof("Food delivery API listening on http://localhost:%s", cfg.Port)
	if err := server.Listen(":" + cfg.Port); err != nil {
		log.Errorf("Server start error: %v", err)
	}
}
