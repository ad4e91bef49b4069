package database

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Neuro316/Neuro-progeny-university/config"
	"github.com/Neuro316/Neuro-progeny-university/models"
)

var ErrNotConfigured = errors.New("database not configured")

const connectAttempts = 10

// Connect opens the Postgres pool, retrying with a linear backoff while the
// database comes up. Unique violations surface as gorm.ErrDuplicatedKey.
func Connect(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	if !cfg.DatabaseConfigured() {
		return nil, ErrNotConfigured
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error
	for i := 0; i < connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormCfg)
		if err == nil {
			sqlDB, poolErr := db.DB()
			if poolErr == nil {
				sqlDB.SetMaxOpenConns(25)
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
			}
			logger.Info("Connected to PostgreSQL successfully")
			return db, nil
		}

		logger.Warn("DB connection failed, retrying",
			zap.Int("attempt", i+1),
			zap.Error(err),
		)
		time.Sleep(time.Duration(i+1) * 2 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to PostgreSQL after retries: %w", err)
}

// AutoMigrate creates or alters every table the service reads or writes.
// Intended for local development; deployments run the SQL migrations.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Course{},
		&models.Cohort{},
		&models.Profile{},
		&models.Paywall{},
		&models.Payment{},
		&models.PendingEnrollment{},
		&models.CohortMember{},
		&models.ScheduledCharge{},
		&models.EmailLog{},
	); err != nil {
		return fmt.Errorf("AutoMigrate failed: %w", err)
	}
	return nil
}
