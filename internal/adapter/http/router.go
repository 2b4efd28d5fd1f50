package http

import (
	"crypto/subtle"
	"time"

	"atm-ledger/internal/adapter/middleware"
	"atm-ledger/internal/usecase/session"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
)

type RouteConfig struct {
	AdminUser      string
	AdminPass      string
	IdempotencyTTL time.Duration
	HealthChecks   []HealthCheck
}

// Register mounts health, admin and client routes on e. Client routes
// authenticate first, then pass mutating requests through the idempotency store.
func Register(e *echo.Echo, gate *session.Gate, rdb *redis.Client, cfg RouteConfig) {
	e.Validator = NewValidator()

	h := NewHandler(cfg.HealthChecks...)
	e.GET("/health", h.Health)

	admin := NewAdminHandler(gate.Admin())
	ag := e.Group("/admin", echomw.BasicAuth(func(user, pass string, _ echo.Context) (bool, error) {
		okUser := subtle.ConstantTimeCompare([]byte(user), []byte(cfg.AdminUser)) == 1
		okPass := subtle.ConstantTimeCompare([]byte(pass), []byte(cfg.AdminPass)) == 1
		return okUser && okPass, nil
	}))
	ag.POST("/accounts", admin.Enroll)
	ag.GET("/accounts", admin.ListAccounts)
	ag.DELETE("/accounts", admin.RemoveAllAccounts)
	ag.GET("/accounts/locked", admin.ListLocked)
	ag.GET("/accounts/:account_number", admin.GetAccount)
	ag.DELETE("/accounts/:account_number", admin.RemoveAccount)
	ag.POST("/accounts/:account_number/unlock", admin.Unlock)
	ag.GET("/loans", admin.ListLoans)
	ag.DELETE("/loans", admin.RemoveAllLoans)
	ag.POST("/loans/:account_number/:loan_number/approve", admin.ApproveLoan)
	ag.POST("/loans/:account_number/:loan_number/decline", admin.DeclineLoan)
	ag.DELETE("/loans/:account_number/:loan_number", admin.RemoveLoan)

	client := NewClientHandler()
	cg := e.Group("/client", ClientAuth(gate), middleware.Idempotency(rdb, cfg.IdempotencyTTL))
	cg.GET("/account", client.Account)
	cg.POST("/deposits", client.Deposit)
	cg.POST("/withdrawals", client.Withdraw)
	cg.POST("/loans", client.RequestLoan)
	cg.GET("/loans", client.Loans)
	cg.GET("/messages", client.Messages)
}
