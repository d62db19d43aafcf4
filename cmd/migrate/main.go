package main

import (
	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/models"
	"github.com/sirupsen/logrus"
)

// Brings the database at DB_PATH up to the latest schema version. Safe to run
// repeatedly; an already-migrated database is a no-op.
func main() {
	logger := config.GetLogger()
	logger.SetLevel(logrus.InfoLevel)

	if err := config.ConnectDatabase(); err != nil {
		config.LogError(logger, "cmd/migrate", "main", "connect database", nil, err)
		logger.Exit(1)
	}

	db := config.GetDB()
	if err := models.RunMigrations(db); err != nil {
		config.LogError(logger, "cmd/migrate", "main", "apply migrations", nil, err)
		logger.Exit(1)
	}

	version, err := models.SchemaVersion(db)
	if err != nil {
		config.LogError(logger, "cmd/migrate", "main", "read schema version", nil, err)
		logger.Exit(1)
	}
	logger.WithField("version", version).Info("schema up to date")
}
