package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/http/controller"
	"github.com/tnqbao/gau-travel-service/http/route"
	infraPkg "github.com/tnqbao/gau-travel-service/infra"
	"github.com/tnqbao/gau-travel-service/repository"
)

func main() {
	err := godotenv.Load("staging.env")
	if err != nil {
		log.Println("No .env file found, continuing with environment variables")
	}

	cfg := config.NewConfig()
	infra := infraPkg.InitInfra(cfg)
	if err := infraPkg.MigrateSchema(infra.Postgres.DB); err != nil {
		log.Fatalf("Failed to migrate schema: %v", err)
	}
	repo := repository.InitRepository(infra)

	ctrl := controller.NewController(cfg, infra, repo)

	router := routes.SetupRouter(ctrl)

	server := &http.Server{
		Addr:    ":" + cfg.EnvConfig.Port,
		Handler: router,
	}

	go func() {
		log.Printf("HTTP Server started on :%s", cfg.EnvConfig.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	infra.Logger.InfoWithContextf(ctx, "Shutting down HTTP server...")
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	infra.Close(ctx)
}
