// Package db opens the candle/symbol store. PostgreSQL is the production
// driver; SQLite serves local runs and the CLI's offline mode.
package db

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	candleadapters "stock_backtest/internal/feature/candles/adapters"
	symbolentity "stock_backtest/internal/feature/symbollist/domain/entity"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	// DefaultConnectTimeout bounds how long Open keeps retrying a refused connection.
	DefaultConnectTimeout = 60 * time.Second

	retryInterval = 3 * time.Second
)

// ErrUnknownDriver is returned for a DB_DRIVER value other than postgres or sqlite.
var ErrUnknownDriver = errors.New("unknown database driver")

// Config holds connection settings read from the environment.
type Config struct {
	Driver        string
	User          string
	Password      string
	Name          string
	Host          string
	Port          string
	SSLMode       string
	InstanceName  string // Cloud SQL instance; connects over the /cloudsql unix socket when set
	SQLitePath    string
	RunMigrations bool
}

// LoadConfigFromEnv reads DB_* variables. DB_DRIVER defaults to postgres.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:        strings.ToLower(os.Getenv("DB_DRIVER")),
		User:          os.Getenv("DB_USER"),
		Password:      os.Getenv("DB_PASSWORD"),
		Name:          os.Getenv("DB_NAME"),
		Host:          os.Getenv("DB_HOST"),
		Port:          os.Getenv("DB_PORT"),
		SSLMode:       os.Getenv("DB_SSLMODE"),
		InstanceName:  os.Getenv("INSTANCE_CONNECTION_NAME"),
		SQLitePath:    os.Getenv("SQLITE_PATH"),
		RunMigrations: os.Getenv("RUN_MIGRATIONS") == "true",
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverPostgres
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.SQLitePath == "" {
		cfg.SQLitePath = "backtest.db"
	}
	return cfg
}

// BuildDSN returns the PostgreSQL keyword/value DSN for cfg.
func BuildDSN(cfg Config) string {
	host, port := cfg.Host, cfg.Port
	if cfg.InstanceName != "" {
		host = "/cloudsql/" + cfg.InstanceName
		port = ""
	}
	parts := []string{
		"host=" + host,
		"user=" + cfg.User,
		"password=" + cfg.Password,
		"dbname=" + cfg.Name,
	}
	if port != "" {
		parts = append(parts, "port="+port)
	}
	parts = append(parts, "sslmode="+cfg.SSLMode, "TimeZone=UTC")
	return strings.Join(parts, " ")
}

// Opener opens a gorm connection for a DSN. Swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// ConnectWithRetry calls open until it succeeds or timeout elapses.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		if time.Now().Add(retryInterval).After(deadline) {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err, "retry_in", retryInterval)
		time.Sleep(retryInterval)
	}
}

func openPostgres(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.Open(dsn), &gorm.Config{})
}

func openSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}

// Open connects according to cfg.Driver and migrates when cfg.RunMigrations is set.
// A local SQLite file is always migrated since nothing else would create its schema.
func Open(cfg Config) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case DriverPostgres:
		db, err = ConnectWithRetry(BuildDSN(cfg), DefaultConnectTimeout, openPostgres)
	case DriverSQLite:
		db, err = openSQLite(cfg.SQLitePath)
		cfg.RunMigrations = true
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.RunMigrations {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}
	slog.Info("database ready", "driver", cfg.Driver)
	return db, nil
}

// Migrate creates or updates the candles and symbols tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&candleadapters.CandleModel{},
		&symbolentity.Symbol{},
	); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
