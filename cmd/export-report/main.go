package main

import (
	"context"
	"flag"
	"time"

	"github.com/salesbookhq/salesbook_backend/config"
	"github.com/salesbookhq/salesbook_backend/models"
	"github.com/salesbookhq/salesbook_backend/models/reports"
	"github.com/sirupsen/logrus"
)

// Exports the monthly performance report to an xlsx file. Defaults to the
// current month.
func main() {
	now := time.Now()
	year := flag.Int("year", now.Year(), "report year")
	month := flag.Int("month", int(now.Month()), "report month (1-12)")
	out := flag.String("out", "monthly-performance.xlsx", "output file path")
	flag.Parse()

	logger := config.GetLogger()
	logger.SetLevel(logrus.InfoLevel)

	if err := config.ConnectDatabase(); err != nil {
		config.LogError(logger, "cmd/export-report", "main", "connect database", nil, err)
		logger.Exit(1)
	}
	if err := models.RunMigrations(config.GetDB()); err != nil {
		config.LogError(logger, "cmd/export-report", "main", "apply migrations", nil, err)
		logger.Exit(1)
	}

	ctx := context.Background()
	if err := reports.ExportMonthlyPerformanceExcel(ctx, *year, *month, *out); err != nil {
		config.LogError(logger, "cmd/export-report", "main", "export report", map[string]int{"year": *year, "month": *month}, err)
		logger.Exit(1)
	}
	logger.WithFields(logrus.Fields{"year": *year, "month": *month, "file": *out}).Info("report exported")
}
