package account

import (
	"context"

	"github.com/shopspring/decimal"
)

type Repository interface {
	// Create fails with ErrDuplicate when the account number is taken.
	Create(ctx context.Context, a *Account) error
	GetByAccountNumber(ctx context.Context, accountNumber string) (*Account, error)
	List(ctx context.Context) (map[string]*Account, error)
	Delete(ctx context.Context, accountNumber string) error
	DeleteAll(ctx context.Context) error

	// UpdateBalance writes newBalance only if the stored version still equals
	// expectedVersion. ErrStale on mismatch, ErrNotFound if the row is gone.
	UpdateBalance(ctx context.Context, accountNumber string, newBalance decimal.Decimal, expectedVersion uint64) error
	// UpdateAttempts sets the attempt counter if it still equals expected.
	UpdateAttempts(ctx context.Context, accountNumber string, expected, attempts int) error
	// DecrementAttempts atomically takes one attempt and returns what is left.
	// ErrLocked if nothing was left to take.
	DecrementAttempts(ctx context.Context, accountNumber string) (int, error)
}
