// Package ledger moves money in and out of account balances.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/logger"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// MinimumDeposit is the smallest amount accepted by Deposit.
var MinimumDeposit = decimal.NewFromInt(100)

type Usecase struct{ accounts account.Repository }

func NewUsecase(r account.Repository) *Usecase { return &Usecase{accounts: r} }

type BalanceDTO struct {
	AccountNumber string          `json:"account_number"`
	Balance       decimal.Decimal `json:"balance"`
}

// ParseAmount parses a decimal amount with at most two fractional digits.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%q is not a number: %w", raw, ErrInvalidAmount)
	}
	if d.Exponent() < -2 && !d.Equal(d.Round(2)) {
		return decimal.Zero, fmt.Errorf("%q has more than two decimal places: %w", raw, ErrInvalidAmount)
	}
	return d, nil
}

func (u *Usecase) Balance(ctx context.Context, accountNumber string) (*BalanceDTO, error) {
	a, err := u.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	return &BalanceDTO{AccountNumber: a.AccountNumber, Balance: a.Balance}, nil
}

func (u *Usecase) Deposit(ctx context.Context, accountNumber string, amount decimal.Decimal) (*BalanceDTO, error) {
	if amount.LessThan(MinimumDeposit) {
		return nil, fmt.Errorf("deposit of %s is below the minimum of %s: %w", amount, MinimumDeposit, ErrInvalidAmount)
	}
	dto, err := u.apply(ctx, accountNumber, amount)
	if err != nil {
		logger.Error("ledger deposit failed", err, logger.Fields{"account_number": accountNumber, "amount": amount.String()})
		return nil, err
	}
	logger.Info("ledger deposit success", logger.Fields{"account_number": accountNumber, "amount": amount.String()})
	return dto, nil
}

func (u *Usecase) Withdraw(ctx context.Context, accountNumber string, amount decimal.Decimal) (*BalanceDTO, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("withdrawal of %s: %w", amount, ErrInvalidAmount)
	}
	dto, err := u.apply(ctx, accountNumber, amount.Neg())
	if err != nil {
		logger.Error("ledger withdraw failed", err, logger.Fields{"account_number": accountNumber, "amount": amount.String()})
		return nil, err
	}
	logger.Info("ledger withdraw success", logger.Fields{"account_number": accountNumber, "amount": amount.String()})
	return dto, nil
}

func (u *Usecase) apply(ctx context.Context, accountNumber string, delta decimal.Decimal) (*BalanceDTO, error) {
	a, err := u.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if a.Locked() {
		return nil, account.ErrLocked
	}
	next := a.Balance.Add(delta)
	if next.IsNegative() {
		return nil, account.ErrInsufficientFunds
	}
	if err := u.accounts.UpdateBalance(ctx, accountNumber, next, a.Version); err != nil {
		return nil, err
	}
	return &BalanceDTO{AccountNumber: accountNumber, Balance: next}, nil
}

// Credit adds a positive amount to the balance through repo using the version
// check, regardless of lock state. It returns the new balance.
func Credit(ctx context.Context, repo account.Repository, accountNumber string, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("credit of %s: %w", amount, ErrInvalidAmount)
	}
	a, err := repo.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return decimal.Zero, err
	}
	next := a.Balance.Add(amount)
	if err := repo.UpdateBalance(ctx, accountNumber, next, a.Version); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
