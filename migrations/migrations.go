package migrations

import (
	"SocialPulse/models"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RunMigrations creates or updates every table the service owns.
func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running migrations...")

	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("failed to migrate User: %w", err)
	}

	if err := db.AutoMigrate(&models.SocialAccount{}); err != nil {
		return fmt.Errorf("failed to migrate SocialAccount: %w", err)
	}

	if err := db.AutoMigrate(&models.Post{}); err != nil {
		return fmt.Errorf("failed to migrate Post: %w", err)
	}

	if err := db.AutoMigrate(&models.Analysis{}); err != nil {
		return fmt.Errorf("failed to migrate Analysis: %w", err)
	}

	if err := db.AutoMigrate(&models.Comment{}); err != nil {
		return fmt.Errorf("failed to migrate Comment: %w", err)
	}

	logrus.Info("Migrations completed successfully")
	return nil
}
