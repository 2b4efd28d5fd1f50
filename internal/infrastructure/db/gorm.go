package db

import (
	"fmt"
	"strings"
	"time"

	applog "atm-ledger/internal/logger"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Options struct {
	Driver     string
	MySQLDSN   string
	SQLitePath string
	// LogLevel is one of silent, error, warn, info.
	LogLevel string
}

func ParseLogLevel(s string) (logger.LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent, nil
	case "error":
		return logger.Error, nil
	case "", "warn":
		return logger.Warn, nil
	case "info":
		return logger.Info, nil
	}
	return 0, fmt.Errorf("unknown DB_LOG_LEVEL %q", s)
}

// Open connects to the configured driver and pings it.
func Open(opts Options) (*gorm.DB, error) {
	level, err := ParseLogLevel(opts.LogLevel)
	if err != nil {
		return nil, err
	}

	var dial gorm.Dialector
	switch opts.Driver {
	case DriverMySQL:
		dial = mysql.Open(opts.MySQLDSN)
	case DriverSQLite:
		dial = sqlite.Open(opts.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", opts.Driver)
	}

	db, err := openWith(dial, level)
	if err != nil {
		return nil, err
	}
	if opts.Driver == DriverSQLite {
		// one writer at a time; ":memory:" also needs every query on the same connection
		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenGormWithDialector opens dial with the default log level.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return openWith(dial, logger.Warn)
}

func openWith(dial gorm.Dialector, level logger.LogLevel) (*gorm.DB, error) {
	cfg := &gorm.Config{
		Logger:               logger.Default.LogMode(level),
		TranslateError:       true,
		DisableAutomaticPing: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	applog.Info("gorm connected", applog.Fields{"dialect": dial.Name()})
	return db, nil
}
