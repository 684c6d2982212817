package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/consumer/worker"
	infraPkg "github.com/tnqbao/gau-travel-service/infra"
)

func main() {
	err := godotenv.Load("../staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobConsumer := worker.NewBlobConsumer(infra.RabbitMQ.Channel, infra, cfg.EnvConfig.RabbitMQ.SigningSecret, cfg.EnvConfig.RabbitMQ.MessageMaxAge)
	if err := blobConsumer.Start(ctx); err != nil {
		infra.Logger.ErrorWithContextf(ctx, err, "Failed to start Blob consumer: %v", err)
		log.Fatalf("Failed to start Blob consumer: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	infra.Logger.InfoWithContextf(ctx, "Shutting down consumer...")
	cancel()

	infra.Logger.InfoWithContextf(ctx, "Consumer exited properly")
	infra.Close(context.Background())
}
