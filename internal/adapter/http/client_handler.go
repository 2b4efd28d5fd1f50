package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/usecase/ledger"
	"atm-ledger/internal/usecase/session"

	"github.com/labstack/echo/v4"
)

const (
	HeaderAccountNumber = "Ax-Account-Number"
	HeaderPIN           = "Ax-Pin"

	clientSessionKey = "client_session"
)

// ClientAuth authenticates every request with the Ax-Account-Number and Ax-Pin
// headers and stores the resulting session on the context.
func ClientAuth(gate *session.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			n := strings.TrimSpace(c.Request().Header.Get(HeaderAccountNumber))
			pin := strings.TrimSpace(c.Request().Header.Get(HeaderPIN))
			if !account.ValidNumber(n) || !account.ValidPIN(pin) {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or malformed Ax-Account-Number / Ax-Pin"})
			}

			cs, res, err := gate.Login(c.Request().Context(), n, pin)
			if err != nil {
				if errors.Is(err, account.ErrIncorrectPIN) && res != nil {
					return c.JSON(http.StatusUnauthorized, ErrorResponse{
						Error:   err.Error(),
						Details: []FieldError{{Field: HeaderPIN, Message: strconv.Itoa(res.RemainingAttempts) + " attempts remaining"}},
					})
				}
				return respondError(c, err)
			}
			c.Set(clientSessionKey, cs)
			return next(c)
		}
	}
}

func clientSession(c echo.Context) *session.ClientSession {
	cs, _ := c.Get(clientSessionKey).(*session.ClientSession)
	return cs
}

type ClientHandler struct{}

func NewClientHandler() *ClientHandler { return &ClientHandler{} }

type amountReq struct {
	Amount string `json:"amount" validate:"required,money"`
}

func (h *ClientHandler) Account(c echo.Context) error {
	cs := clientSession(c)
	if cs == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	dto, err := cs.Profile(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClientHandler) Deposit(c echo.Context) error {
	cs := clientSession(c)
	if cs == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	var req amountReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := ledger.ParseAmount(req.Amount)
	dto, err := cs.Deposit(c.Request().Context(), amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClientHandler) Withdraw(c echo.Context) error {
	cs := clientSession(c)
	if cs == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	var req amountReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := ledger.ParseAmount(req.Amount)
	dto, err := cs.Withdraw(c.Request().Context(), amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *ClientHandler) RequestLoan(c echo.Context) error {
	cs := clientSession(c)
	if cs == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	var req amountReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	amount, _ := ledger.ParseAmount(req.Amount)
	dto, err := cs.RequestLoan(c.Request().Context(), amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *ClientHandler) Loans(c echo.Context) error {
	cs := clientSession(c)
	if cs == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	out, err := cs.Loans(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *ClientHandler) Messages(c echo.Context) error {
	cs := clientSession(c)
	if cs == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated"})
	}
	out, err := cs.Messages(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
