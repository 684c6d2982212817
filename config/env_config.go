package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type EnvConfig struct {
	Postgres struct {
		HOST     string
		Database string
		Username string
		Password string
		Port     string
		SSLMode  string
	}
	JWT struct {
		SecretKey string
		Algorithm string
		Expire    int
	}
	CORS struct {
		AllowDomains string
		GlobalDomain string
	}
	Redis struct {
		Password  string
		Database  int
		RedisHost string
		RedisPort string
	}
	RabbitMQ struct {
		Host          string
		Port          string
		Username      string
		Password      string
		SigningSecret string
		MessageMaxAge time.Duration
	}
	Minio struct {
		Endpoint      string
		RootUser      string
		RootPassword  string
		Bucket        string
		UseSSL        bool
		PresignExpiry time.Duration
	}
	Speech struct {
		Endpoint    string
		TTSEndpoint string
		Key         string
		Region      string
		Timeout     time.Duration
	}
	ContentSafety struct {
		Endpoint  string
		Key       string
		Threshold int
	}
	Upload struct {
		MaxImageSize int64 // bytes
		MaxAudioSize int64 // bytes
	}
	Grafana struct {
		OTLPEndpoint string
		ServiceName  string
	}

	Environment struct {
		Mode  string
		Group string
	}
	Port string
}

func LoadEnvConfig() *EnvConfig {
	var config EnvConfig

	// Postgres
	config.Postgres.HOST = os.Getenv("PGPOOL_HOST")
	config.Postgres.Database = os.Getenv("PGPOOL_DB")
	config.Postgres.Username = os.Getenv("PGPOOL_USER")
	config.Postgres.Password = os.Getenv("PGPOOL_PASSWORD")
	config.Postgres.Port = os.Getenv("PGPOOL_PORT")
	if config.Postgres.Port == "" {
		config.Postgres.Port = "5432"
	}
	config.Postgres.SSLMode = os.Getenv("PGPOOL_SSLMODE")
	if config.Postgres.SSLMode == "" {
		config.Postgres.SSLMode = "disable"
	}

	// JWT
	config.JWT.SecretKey = os.Getenv("JWT_SECRET_KEY")
	config.JWT.Algorithm = os.Getenv("JWT_ALGORITHM")
	if config.JWT.Algorithm == "" {
		config.JWT.Algorithm = "HS256"
	}

	if val := os.Getenv("JWT_EXPIRE"); val != "" {
		fmt.Sscanf(val, "%d", &config.JWT.Expire)
	} else {
		config.JWT.Expire = 3600 * 24 * 7
	}

	config.CORS.AllowDomains = os.Getenv("ALLOWED_DOMAINS")
	config.CORS.GlobalDomain = os.Getenv("GLOBAL_DOMAIN")

	config.Redis.Password = os.Getenv("REDIS_PASSWORD")
	config.Redis.Database, _ = strconv.Atoi(os.Getenv("REDIS_DB"))
	config.Redis.RedisHost = os.Getenv("REDIS_HOST")
	if config.Redis.RedisHost == "" {
		config.Redis.RedisHost = "localhost"
	}
	config.Redis.RedisPort = os.Getenv("REDIS_PORT")
	if config.Redis.RedisPort == "" {
		config.Redis.RedisPort = "6379"
	}

	// RabbitMQ
	config.RabbitMQ.Host = os.Getenv("RABBITMQ_HOST")
	if config.RabbitMQ.Host == "" {
		config.RabbitMQ.Host = "localhost"
	}
	config.RabbitMQ.Port = os.Getenv("RABBITMQ_PORT")
	if config.RabbitMQ.Port == "" {
		config.RabbitMQ.Port = "5672"
	}
	config.RabbitMQ.Username = os.Getenv("RABBITMQ_USER")
	if config.RabbitMQ.Username == "" {
		config.RabbitMQ.Username = "guest"
	}
	config.RabbitMQ.Password = os.Getenv("RABBITMQ_PASSWORD")
	if config.RabbitMQ.Password == "" {
		config.RabbitMQ.Password = "guest"
	}
	config.RabbitMQ.SigningSecret = os.Getenv("RABBITMQ_SIGNING_SECRET")
	config.RabbitMQ.MessageMaxAge = time.Hour
	if val := os.Getenv("RABBITMQ_MESSAGE_MAX_AGE_MINUTES"); val != "" {
		if minutes, err := strconv.Atoi(val); err == nil && minutes > 0 {
			config.RabbitMQ.MessageMaxAge = time.Duration(minutes) * time.Minute
		}
	}

	// Object storage
	config.Minio.Endpoint = os.Getenv("MINIO_ENDPOINT")
	config.Minio.RootUser = os.Getenv("MINIO_ROOT_USER")
	config.Minio.RootPassword = os.Getenv("MINIO_ROOT_PASSWORD")
	config.Minio.Bucket = os.Getenv("MINIO_BUCKET")
	if config.Minio.Bucket == "" {
		config.Minio.Bucket = "travel-assets"
	}
	config.Minio.UseSSL = os.Getenv("MINIO_USE_SSL") == "true"
	config.Minio.PresignExpiry = 30 * time.Minute
	if val := os.Getenv("MINIO_PRESIGN_EXPIRE_MINUTES"); val != "" {
		if minutes, err := strconv.Atoi(val); err == nil && minutes > 0 {
			config.Minio.PresignExpiry = time.Duration(minutes) * time.Minute
		}
	}

	// Speech (STT / TTS)
	config.Speech.Endpoint = os.Getenv("SPEECH_SERVICE_ENDPOINT")
	config.Speech.Key = os.Getenv("SPEECH_SERVICE_KEY")
	config.Speech.Region = os.Getenv("SPEECH_REGION")
	config.Speech.TTSEndpoint = os.Getenv("TTS_SERVICE_ENDPOINT")
	if config.Speech.TTSEndpoint == "" && config.Speech.Region != "" {
		config.Speech.TTSEndpoint = fmt.Sprintf("https://%s.tts.speech.microsoft.com", config.Speech.Region)
	}
	config.Speech.Timeout = 30 * time.Second
	if val := os.Getenv("SPEECH_TIMEOUT_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil && seconds > 0 {
			config.Speech.Timeout = time.Duration(seconds) * time.Second
		}
	}

	// Content safety
	config.ContentSafety.Endpoint = os.Getenv("CONTENT_SAFETY_ENDPOINT")
	config.ContentSafety.Key = os.Getenv("CONTENT_SAFETY_KEY")
	config.ContentSafety.Threshold = 3
	if val := os.Getenv("CONTENT_SAFETY_THRESHOLD"); val != "" {
		if threshold, err := strconv.Atoi(val); err == nil {
			config.ContentSafety.Threshold = threshold
		}
	}

	// Upload limits
	config.Upload.MaxImageSize = 10 << 20 // Default 10MB
	if val := os.Getenv("MAX_IMAGE_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Upload.MaxImageSize = size
		}
	}
	config.Upload.MaxAudioSize = 25 << 20 // Default 25MB
	if val := os.Getenv("MAX_AUDIO_SIZE"); val != "" {
		if size, err := strconv.ParseInt(val, 10, 64); err == nil {
			config.Upload.MaxAudioSize = size
		}
	}

	// Grafana/OpenTelemetry
	grafanaEndpoint := os.Getenv("GRAFANA_OTLP_ENDPOINT")
	// Remove protocol for OpenTelemetry client to avoid duplicate protocols
	if strings.HasPrefix(grafanaEndpoint, "https://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "https://")
	} else if strings.HasPrefix(grafanaEndpoint, "http://") {
		config.Grafana.OTLPEndpoint = strings.TrimPrefix(grafanaEndpoint, "http://")
	} else {
		config.Grafana.OTLPEndpoint = grafanaEndpoint
	}
	config.Grafana.ServiceName = os.Getenv("SERVICE_NAME")
	if config.Grafana.ServiceName == "" {
		config.Grafana.ServiceName = "gau-travel-service"
	}

	config.Environment.Mode = os.Getenv("DEPLOY_ENV")
	if config.Environment.Mode == "" {
		config.Environment.Mode = "development"
	}

	config.Environment.Group = os.Getenv("GROUP_NAME")
	if config.Environment.Group == "" {
		config.Environment.Group = "local"
	}

	config.Port = os.Getenv("PORT")
	if config.Port == "" {
		config.Port = "8080"
	}

	return &config
}
