// Package access verifies PINs and drives the lockout state machine.
package access

import (
	"context"
	"crypto/subtle"
	"errors"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/logger"
)

type Status string

const (
	StatusAuthenticated Status = "AUTHENTICATED"
	StatusAwaitingPIN   Status = "AWAITING_PIN"
	StatusLocked        Status = "LOCKED"
)

type AuthResult struct {
	Status            Status `json:"status"`
	RemainingAttempts int    `json:"remaining_attempts"`
	// Account is set only when Status is StatusAuthenticated.
	Account *account.Account `json:"-"`
}

type Usecase struct{ accounts account.Repository }

func NewUsecase(r account.Repository) *Usecase { return &Usecase{accounts: r} }

// Authenticate checks pin against the stored one. A mismatch consumes one
// attempt and returns account.ErrIncorrectPIN, or account.ErrLocked when it
// was the last one. A locked account fails without consuming anything.
// A match leaves the attempt counter untouched.
func (u *Usecase) Authenticate(ctx context.Context, accountNumber, pin string) (*AuthResult, error) {
	a, err := u.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if a.Locked() {
		return &AuthResult{Status: StatusLocked}, account.ErrLocked
	}

	if subtle.ConstantTimeCompare([]byte(a.PIN), []byte(pin)) == 1 {
		return &AuthResult{Status: StatusAuthenticated, RemainingAttempts: a.RemainingAttempts, Account: a}, nil
	}

	left, err := u.accounts.DecrementAttempts(ctx, accountNumber)
	switch {
	case errors.Is(err, account.ErrLocked):
		return &AuthResult{Status: StatusLocked}, account.ErrLocked
	case err != nil:
		return nil, err
	}
	if left == 0 {
		logger.Warn("access account locked", logger.Fields{"account_number": accountNumber})
		return &AuthResult{Status: StatusLocked}, account.ErrLocked
	}
	return &AuthResult{Status: StatusAwaitingPIN, RemainingAttempts: left}, account.ErrIncorrectPIN
}

// Unlock restores a locked account's attempts to account.MaxAttempts.
func (u *Usecase) Unlock(ctx context.Context, accountNumber string) error {
	a, err := u.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return err
	}
	if !a.Locked() {
		return account.ErrNotLocked
	}
	if err := u.accounts.UpdateAttempts(ctx, accountNumber, a.RemainingAttempts, account.MaxAttempts); err != nil {
		if errors.Is(err, account.ErrStale) {
			return account.ErrNotLocked
		}
		return err
	}
	logger.Info("access account unlocked", logger.Fields{"account_number": accountNumber})
	return nil
}
