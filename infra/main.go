package infra

import (
	"context"
	"log"

	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/infra/produce"
)

// Infra holds every external client. It is built once in main and passed
// explicitly to the controller and consumers; there is no package-level instance.
type Infra struct {
	Redis         *RedisClient
	Postgres      *PostgresClient
	Logger        *LoggerClient
	RabbitMQ      *RabbitMQClient
	Produce       *produce.Produce
	Storage       ObjectStorage
	Sessions      SessionStore
	Speech        SpeechProvider
	ContentSafety ImageClassifier
	Telemetry     *Telemetry
	Metrics       *Metrics
}

func InitInfra(cfg *config.Config) *Infra {
	telemetry, err := InitTelemetry(context.Background(), cfg.EnvConfig)
	if err != nil {
		log.Printf("Warning: Failed to initialize telemetry: %v (continuing without export)", err)
		telemetry = &Telemetry{}
	}

	logger := InitLoggerClient(cfg.EnvConfig)
	if logger == nil {
		panic("Failed to initialize Logger service")
	}

	redis := InitRedisClient(cfg.EnvConfig)
	if redis == nil {
		panic("Failed to initialize Redis service")
	}

	postgres := InitPostgresClient(cfg.EnvConfig)
	if postgres == nil {
		panic("Failed to initialize Postgres service")
	}

	rabbitMQ := InitRabbitMQClient(cfg.EnvConfig)
	if rabbitMQ == nil {
		panic("Failed to initialize RabbitMQ service")
	}

	produceService := produce.InitProduce(rabbitMQ.Channel, cfg.EnvConfig.RabbitMQ.SigningSecret)
	if produceService == nil {
		panic("Failed to initialize Produce service")
	}

	minio := InitMinioClient(cfg.EnvConfig)
	if minio == nil {
		panic("Failed to initialize MinIO service")
	}

	speech := InitSpeechService(cfg.EnvConfig)
	contentSafety := InitContentSafetyService(cfg.EnvConfig)

	return &Infra{
		Redis:         redis,
		Postgres:      postgres,
		Logger:        logger,
		RabbitMQ:      rabbitMQ,
		Produce:       produceService,
		Storage:       minio,
		Sessions:      redis,
		Speech:        speech,
		ContentSafety: contentSafety,
		Telemetry:     telemetry,
		Metrics:       DefaultMetrics(),
	}
}

func (i *Infra) Close(ctx context.Context) {
	if i.RabbitMQ != nil {
		if err := i.RabbitMQ.Close(); err != nil {
			log.Printf("Failed to close RabbitMQ: %v", err)
		}
	}
	if i.Redis != nil {
		if err := i.Redis.Close(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		}
	}
	if i.Postgres != nil {
		if sqlDB, err := i.Postgres.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if err := i.Telemetry.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown telemetry: %v", err)
	}
	if i.Logger != nil {
		_ = i.Logger.Shutdown(ctx)
	}
}
