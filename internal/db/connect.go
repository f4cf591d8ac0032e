package db

import (
	"fmt"  // Error wrapping
	"time" // Pool lifetimes

	"wallet_booking/internal/config" // Application configuration

	"github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"    // MySQL driver for GORM
	"gorm.io/driver/postgres" // PostgreSQL driver for GORM
	"gorm.io/gorm"            // GORM ORM library
	gormLogger "gorm.io/gorm/logger"
)

// Dialector returns the GORM dialector for the configured driver
func Dialector(cfg *config.Config) gorm.Dialector {
	if cfg.DBDriver == "postgres" {
		return postgres.New(postgres.Config{DSN: cfg.DSN(), PreferSimpleProtocol: true})
	}
	return mysql.Open(cfg.DSN())
}

// Connect opens the database and tunes the connection pool
func Connect(cfg *config.Config) (*gorm.DB, error) {
	level := gormLogger.Warn
	if cfg.IsProd {
		level = gormLogger.Error
	}
	db, err := gorm.Open(Dialector(cfg), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(level),
		TranslateError: true, // duplicate keys surface as gorm.ErrDuplicatedKey
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.DBDriver, err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)
	logrus.WithField("driver", cfg.DBDriver).Info("Database connected")
	return db, nil
}
