package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"alfredoptarigan/admission-tracker/internal/logger"
	"alfredoptarigan/admission-tracker/internal/models"
)

func InitDatabase(cfg *Config, log logger.Logger) (*gorm.DB, error) {
	dsn := cfg.GetDatabaseDSN()

	logLevel := gormlogger.Silent
	if cfg.Server.Env == "development" {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Default.LogMode(logLevel),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("database connected", map[string]interface{}{"host": cfg.Database.Host, "db": cfg.Database.DBName})

	if err := db.AutoMigrate(
		&models.Applicant{},
		&models.ApplicationRecord{},
		&models.Document{},
		&models.CVAnalysis{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database migration completed", nil)

	return db, nil
}

// InitRedis returns nil when no address is configured; callers fall back to
// an in-process lock.
func InitRedis(cfg *Config, log logger.Logger) (*redis.Client, error) {
	if cfg.Redis.Address == "" {
		log.Warn("redis address not configured, using in-process locks", nil)
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Address,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	log.Info("redis connected", map[string]interface{}{"address": cfg.Redis.Address})
	return client, nil
}
