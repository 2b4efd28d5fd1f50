package accountmock

import (
	"context"

	domain "atm-ledger/internal/domain/account"

	"github.com/shopspring/decimal"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads with no Fn set return domain.ErrNotFound; writes succeed.
type Repo struct {
	CreateFn             func(ctx context.Context, a *domain.Account) error
	GetByAccountNumberFn func(ctx context.Context, accountNumber string) (*domain.Account, error)
	ListFn               func(ctx context.Context) (map[string]*domain.Account, error)
	DeleteFn             func(ctx context.Context, accountNumber string) error
	DeleteAllFn          func(ctx context.Context) error
	UpdateBalanceFn      func(ctx context.Context, accountNumber string, newBalance decimal.Decimal, expectedVersion uint64) error
	UpdateAttemptsFn     func(ctx context.Context, accountNumber string, expected, attempts int) error
	DecrementAttemptsFn  func(ctx context.Context, accountNumber string) (int, error)
}

func (m *Repo) Create(ctx context.Context, a *domain.Account) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return nil
}

func (m *Repo) GetByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	if m.GetByAccountNumberFn != nil {
		return m.GetByAccountNumberFn(ctx, accountNumber)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) List(ctx context.Context) (map[string]*domain.Account, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return map[string]*domain.Account{}, nil
}

func (m *Repo) Delete(ctx context.Context, accountNumber string) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, accountNumber)
	}
	return nil
}

func (m *Repo) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	return nil
}

func (m *Repo) UpdateBalance(ctx context.Context, accountNumber string, newBalance decimal.Decimal, expectedVersion uint64) error {
	if m.UpdateBalanceFn != nil {
		return m.UpdateBalanceFn(ctx, accountNumber, newBalance, expectedVersion)
	}
	return nil
}

func (m *Repo) UpdateAttempts(ctx context.Context, accountNumber string, expected, attempts int) error {
	if m.UpdateAttemptsFn != nil {
		return m.UpdateAttemptsFn(ctx, accountNumber, expected, attempts)
	}
	return nil
}

func (m *Repo) DecrementAttempts(ctx context.Context, accountNumber string) (int, error) {
	if m.DecrementAttemptsFn != nil {
		return m.DecrementAttemptsFn(ctx, accountNumber)
	}
	return 0, nil
}
