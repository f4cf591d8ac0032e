package main

import (
	"wallet_booking/internal/config" // Configuration
	"wallet_booking/internal/db"     // Database connection and migrations
	"wallet_booking/internal/utils"  // Logger

	"github.com/sirupsen/logrus"
)

// Main entry point for migration
func main() {
	cfg, err := config.LoadConfig() // Load configuration
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}
	utils.SetupLogger(cfg.LogLevel, cfg.IsProd)

	gdb, err := db.Connect(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("%v", err)
	}
}
