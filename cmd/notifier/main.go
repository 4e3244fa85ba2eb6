package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/food-delivery-platform/backend/internal/app"
	"github.com/food-delivery-platform/backend/internal/config"
	"github.com/food-delivery-platform/backend/internal/notification"
	"github.com/food-delivery-platform/backend/internal/shared/messaging"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}
	log := app.NewLogger(cfg.Log)
	log.Info("Notifier starting...")

	rabbitClient := messaging.NewRabbitMQClient(cfg.RabbitMQ, log)
	if err := rabbitClient.Connect(); err != nil {
		log.Fatalf("RabbitMQ connection error: %v", err)
	}
	defer rabbitClient.Close()

	consumer := messaging.NewConsumer(rabbitClient, log, "notifier-queue", "notifier")
	notifier := notification.NewNotifier(log)

	log.Info("Starting RabbitMQ event consumption...")
	if err := consumer.ConsumeEvents(notification.RoutingKeys, notifier.Handle); err != nil {
		log.Fatalf("RabbitMQ consumption error: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info("Notifier shutting down...")
}
