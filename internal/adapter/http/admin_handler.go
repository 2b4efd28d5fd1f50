package http

import (
	"net/http"
	"strconv"
	"time"

	"atm-ledger/internal/domain/account"
	accountuc "atm-ledger/internal/usecase/account"
	"atm-ledger/internal/usecase/ledger"
	"atm-ledger/internal/usecase/session"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type AdminHandler struct{ s *session.AdminSession }

func NewAdminHandler(s *session.AdminSession) *AdminHandler { return &AdminHandler{s: s} }

type enrollReq struct {
	AccountNumber string `json:"account_number" validate:"omitempty,acctno"`
	PIN           string `json:"pin"            validate:"required,pin6"`
	FirstName     string `json:"first_name"     validate:"required,max=100"`
	LastName      string `json:"last_name"      validate:"required,max=100"`
	Gender        string `json:"gender"         validate:"required,oneof=MALE FEMALE PREFER_NOT_TO_SAY"`
	Address       string `json:"address"        validate:"max=255"`
	BirthDate     string `json:"birth_date"     validate:"required,datetime=2006-01-02"`
	// Initial balance as a decimal string; defaults to 0.
	Balance string `json:"balance" validate:"omitempty,money"`
}

func accountParam(c echo.Context) (string, bool) {
	n := c.Param("account_number")
	return n, account.ValidNumber(n)
}

func loanParam(c echo.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("loan_number"))
	return n, err == nil && n > 0
}

func (h *AdminHandler) Enroll(c echo.Context) error {
	var req enrollReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	birth, _ := time.Parse("2006-01-02", req.BirthDate)
	balance := decimal.Zero
	if req.Balance != "" {
		balance, _ = ledger.ParseAmount(req.Balance)
	}

	dto, err := h.s.Enroll(c.Request().Context(), accountuc.EnrollInput{
		AccountNumber: req.AccountNumber,
		PIN:           req.PIN,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Gender:        account.Gender(req.Gender),
		Address:       req.Address,
		BirthDate:     birth,
		Balance:       balance,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *AdminHandler) ListAccounts(c echo.Context) error {
	out, err := h.s.Accounts(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) GetAccount(c echo.Context) error {
	n, ok := accountParam(c)
	if !ok {
		return badRequest(c, "account_number must be 9 digits")
	}
	dto, err := h.s.Account(c.Request().Context(), n)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) RemoveAccount(c echo.Context) error {
	n, ok := accountParam(c)
	if !ok {
		return badRequest(c, "account_number must be 9 digits")
	}
	if err := h.s.RemoveAccount(c.Request().Context(), n); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) RemoveAllAccounts(c echo.Context) error {
	if err := h.s.RemoveAllAccounts(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListLocked(c echo.Context) error {
	out, err := h.s.LockedAccounts(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminHandler) Unlock(c echo.Context) error {
	n, ok := accountParam(c)
	if !ok {
		return badRequest(c, "account_number must be 9 digits")
	}
	if err := h.s.Unlock(c.Request().Context(), n); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"account_number":     n,
		"remaining_attempts": account.MaxAttempts,
	})
}

// ListLoans returns every loan grouped by account, or the flat review queue with ?state=pending.
func (h *AdminHandler) ListLoans(c echo.Context) error {
	ctx := c.Request().Context()
	switch c.QueryParam("state") {
	case "":
		out, err := h.s.Loans(ctx)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	case "pending":
		out, err := h.s.PendingLoans(ctx)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, out)
	default:
		return badRequest(c, "state must be pending or omitted")
	}
}

func (h *AdminHandler) ApproveLoan(c echo.Context) error {
	n, ok := accountParam(c)
	if !ok {
		return badRequest(c, "account_number must be 9 digits")
	}
	ln, ok := loanParam(c)
	if !ok {
		return badRequest(c, "loan_number must be a positive integer")
	}
	dto, err := h.s.Approve(c.Request().Context(), n, ln)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) DeclineLoan(c echo.Context) error {
	n, ok := accountParam(c)
	if !ok {
		return badRequest(c, "account_number must be 9 digits")
	}
	ln, ok := loanParam(c)
	if !ok {
		return badRequest(c, "loan_number must be a positive integer")
	}
	dto, err := h.s.Decline(c.Request().Context(), n, ln)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *AdminHandler) RemoveLoan(c echo.Context) error {
	n, ok := accountParam(c)
	if !ok {
		return badRequest(c, "account_number must be 9 digits")
	}
	ln, ok := loanParam(c)
	if !ok {
		return badRequest(c, "loan_number must be a positive integer")
	}
	if err := h.s.RemoveLoan(c.Request().Context(), n, ln); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) RemoveAllLoans(c echo.Context) error {
	if err := h.s.RemoveAllLoans(c.Request().Context()); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
