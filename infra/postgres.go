package infra

import (
	"fmt"
	"log"

	"github.com/tnqbao/gau-travel-service/config"
	"github.com/tnqbao/gau-travel-service/entity"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type PostgresClient struct {
	DB *gorm.DB
}

func InitPostgresClient(cfg *config.EnvConfig) *PostgresClient {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		cfg.Postgres.HOST,
		cfg.Postgres.Username,
		cfg.Postgres.Password,
		cfg.Postgres.Database,
		cfg.Postgres.Port,
		cfg.Postgres.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Postgres connection failed: %v", err)
	}

	if err := MigrateSchema(db); err != nil {
		log.Fatalf("Postgres migration failed: %v", err)
	}

	log.Println("Connected to Postgres:", cfg.Postgres.HOST+":"+cfg.Postgres.Port)

	return &PostgresClient{DB: db}
}

// MigrateSchema creates the tables in dependency order. Foreign keys are
// plain references without ON DELETE CASCADE; deletes are ordered by the
// repositories.
func MigrateSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Article{},
		&entity.Comment{},
		&entity.Like{},
	)
}
