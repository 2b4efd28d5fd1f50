package http

import (
	"errors"
	"net/http"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"
	"atm-ledger/internal/logger"
	"atm-ledger/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
)

// Sentinel → status. First match wins.
var errorStatus = []struct {
	err  error
	code int
}{
	{account.ErrNotFound, http.StatusNotFound},
	{loan.ErrNotFound, http.StatusNotFound},
	{loan.ErrNoMessages, http.StatusNotFound},
	{account.ErrLocked, http.StatusLocked},
	{account.ErrIncorrectPIN, http.StatusUnauthorized},
	{account.ErrDuplicate, http.StatusConflict},
	{account.ErrNotLocked, http.StatusConflict},
	{account.ErrStale, http.StatusConflict},
	{loan.ErrAlreadyResolved, http.StatusConflict},
	{loan.ErrStillPending, http.StatusConflict},
	{loan.ErrNumberTaken, http.StatusConflict},
	{loan.ErrCannotPerform, http.StatusConflict},
	{account.ErrInsufficientFunds, http.StatusUnprocessableEntity},
	{account.ErrInvalid, http.StatusUnprocessableEntity},
	{ledger.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{loan.ErrInvalidAmount, http.StatusUnprocessableEntity},
}

func statusFor(err error) int {
	for _, m := range errorStatus {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return http.StatusInternalServerError
}

// respondError maps a use-case error to its status. Unknown errors are logged
// and reported without detail.
func respondError(c echo.Context, err error) error {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("http request failed", err, logger.Fields{"method": c.Request().Method, "path": c.Path()})
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
}

// bindAndValidate writes the 400/422 response itself and reports whether the handler should continue.
func bindAndValidate(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	return true, nil
}
