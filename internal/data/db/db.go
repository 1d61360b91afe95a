package db

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/enrollment-backend/internal/platform/envutil"
	"github.com/yungbote/enrollment-backend/internal/platform/logger"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver     string
	SQLitePath string

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresName     string
	PostgresSSLMode  string

	SlowThreshold time.Duration
}

// ConfigFromEnv reads the SQL connection settings for driver.
func ConfigFromEnv(driver string, logg *logger.Logger) Config {
	return Config{
		Driver:           driver,
		SQLitePath:       envutil.String("SQLITE_PATH", "enrollment.db", logg),
		PostgresHost:     envutil.String("POSTGRES_HOST", "localhost", logg),
		PostgresPort:     envutil.String("POSTGRES_PORT", "5432", logg),
		PostgresUser:     envutil.String("POSTGRES_USER", "postgres", logg),
		PostgresPassword: envutil.String("POSTGRES_PASSWORD", "", logg),
		PostgresName:     envutil.String("POSTGRES_NAME", "enrollment", logg),
		PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable", logg),
		SlowThreshold:    envutil.Duration("DB_SLOW_THRESHOLD_MS", time.Second, logg),
	}
}

func (c Config) PostgresDSN() string {
	ssl := c.PostgresSSLMode
	if ssl == "" {
		ssl = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresName,
		ssl,
	)
}

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the configured SQL database.
func Open(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService", "driver", cfg.Driver)

	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverSQLite:
		path := cfg.SQLitePath
		if path == "" {
			path = "file::memory:?cache=shared"
		}
		dialector = sqlite.Open(path)
	case DriverPostgres:
		dialector = postgres.Open(cfg.PostgresDSN())
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", cfg.Driver)
	}

	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = time.Second
	}
	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             slow,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	if strings.Contains(cfg.SQLitePath, ":memory:") || (cfg.Driver == DriverSQLite && cfg.SQLitePath == "") {
		if err := singleConn(db); err != nil {
			return nil, err
		}
	}
	serviceLog.Info("database connected")
	return &Service{db: db, log: serviceLog}, nil
}

// OpenMemory returns a private in-memory sqlite database, used by tests.
func OpenMemory() (*Service, error) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open in-memory sqlite: %w", err)
	}
	if err := singleConn(db); err != nil {
		return nil, err
	}
	return &Service{db: db, log: logger.Nop()}, nil
}

// singleConn pins the pool to one connection; every sqlite memory connection
// is its own database.
func singleConn(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

func (s *Service) DB() *gorm.DB { return s.db }

func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
