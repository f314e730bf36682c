package pkg

import (
	"fmt"

	"github.com/SAP-F-2025/exam-delivery-service/internal/config"
	"github.com/SAP-F-2025/exam-delivery-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	var logLevel logger.LogLevel
	if cfg.IsProduction() {
		logLevel = logger.Error
	} else {
		logLevel = logger.Warn
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// AutoMigrate creates or updates the tables used by the delivery service.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Assessment{},
		&models.Part{},
		&models.Passage{},
		&models.EssayPart{},
		&models.QuestionGroup{},
		&models.Question{},
		&models.Choice{},
		&models.StatementKey{},
		&models.Result{},
		&models.ListeningResult{},
		&models.Essay{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
