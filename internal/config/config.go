// Package config loads service settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"atm-ledger/internal/logger"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	DBDriver   string `mapstructure:"DB_DRIVER"`
	SQLitePath string `mapstructure:"SQLITE_PATH"`
	DBLogLevel string `mapstructure:"DB_LOG_LEVEL"`

	MySQLHost string `mapstructure:"MYSQL_HOST"`
	MySQLPort string `mapstructure:"MYSQL_PORT"`
	MySQLDB   string `mapstructure:"MYSQL_DB"`
	MySQLUser string `mapstructure:"MYSQL_USER"`
	MySQLPass string `mapstructure:"MYSQL_PASS"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`
	RedisDB   int    `mapstructure:"REDIS_DB"`

	IdempTTLSecs int `mapstructure:"IDEMPOTENCY_TTL_SECONDS"`

	FieldSecret string `mapstructure:"FIELD_SECRET"`
	AdminUser   string `mapstructure:"ADMIN_USER"`
	AdminPass   string `mapstructure:"ADMIN_PASS"`
	AutoMigrate bool   `mapstructure:"AUTO_MIGRATE"`
}

var defaults = map[string]any{
	"APP_PORT":                "8080",
	"DB_DRIVER":               "mysql",
	"SQLITE_PATH":             "atm.db",
	"DB_LOG_LEVEL":            "warn",
	"MYSQL_HOST":              "mysql",
	"MYSQL_PORT":              "3306",
	"MYSQL_DB":                "atm",
	"MYSQL_USER":              "atm",
	"MYSQL_PASS":              "atm",
	"REDIS_ADDR":              "redis:6379",
	"REDIS_DB":                0,
	"IDEMPOTENCY_TTL_SECONDS": 300,
	"FIELD_SECRET":            "",
	"ADMIN_USER":              "admin",
	"ADMIN_PASS":              "",
	"AUTO_MIGRATE":            true,
}

// Load reads settings from the environment, falling back to a .env file in
// path and then to defaults. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	for k, d := range defaults {
		v.SetDefault(k, d)
		// AutomaticEnv alone does not feed Unmarshal
		_ = v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			logger.Warn("failed to read config file; using environment values", logger.Fields{
				"path":  path,
				"error": err.Error(),
			})
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	if c.IdempTTLSecs <= 0 {
		c.IdempTTLSecs = 300
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want mysql or sqlite)", c.DBDriver)
	}
	if c.FieldSecret == "" {
		return errors.New("missing FIELD_SECRET")
	}
	if c.AdminUser == "" || c.AdminPass == "" {
		return errors.New("missing admin credentials (ADMIN_USER/ADMIN_PASS)")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
