package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	httpadp "atm-ledger/internal/adapter/http"
	"atm-ledger/internal/adapter/repository/mysql"
	"atm-ledger/internal/config"
	"atm-ledger/internal/infrastructure/cache"
	"atm-ledger/internal/infrastructure/codec"
	"atm-ledger/internal/infrastructure/db"
	"atm-ledger/internal/logger"
	"atm-ledger/internal/usecase/access"
	accountuc "atm-ledger/internal/usecase/account"
	"atm-ledger/internal/usecase/ledger"
	loanuc "atm-ledger/internal/usecase/loan"
	"atm-ledger/internal/usecase/session"
	"atm-ledger/pkg/id"
)

func main() {
	if err := run(); err != nil {
		logger.Error("service stopped", err, nil)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	gdb, err := db.Open(db.Options{
		Driver:     cfg.DBDriver,
		MySQLDSN:   cfg.MySQLDSN(),
		SQLitePath: cfg.SQLitePath,
		LogLevel:   cfg.DBLogLevel,
	})
	if err != nil {
		return err
	}
	if cfg.AutoMigrate {
		if err := mysql.Migrate(gdb); err != nil {
			return err
		}
		logger.Info("schema migrated", logger.Fields{"driver": cfg.DBDriver})
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	fields, err := codec.New([]byte(cfg.FieldSecret))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rdb, err := cache.OpenRedis(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	accounts := mysql.NewAccountRepository(gdb, fields)
	loans := mysql.NewLoanRepository(gdb, fields)
	tx := mysql.NewGormUoW(gdb, fields)

	gate := session.NewGate(
		accountuc.NewUsecase(accounts, tx),
		access.NewUsecase(accounts),
		ledger.NewUsecase(accounts),
		loanuc.NewUsecase(accounts, loans, tx),
	)

	e := echo.New()
	e.HideBanner = true
	e.Use(
		middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: id.NewID32}),
		middleware.Logger(),
		middleware.Recover(),
	)

	httpadp.Register(e, gate, rdb, httpadp.RouteConfig{
		AdminUser:      cfg.AdminUser,
		AdminPass:      cfg.AdminPass,
		IdempotencyTTL: cfg.IdempotencyTTL(),
		HealthChecks: []httpadp.HealthCheck{
			{Name: "db", Ping: sqlDB.PingContext},
			{Name: "redis", Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() }},
		},
	})

	addr := ":" + cfg.AppPort
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logger.Fields{"addr": addr, "db_driver": cfg.DBDriver})
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
