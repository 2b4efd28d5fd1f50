package loanmock

import (
	"context"

	domain "atm-ledger/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
// Reads with no Fn set return domain.ErrNotFound or empty results; writes succeed.
type Repo struct {
	CreateFn          func(ctx context.Context, l *domain.Loan) error
	GetFn             func(ctx context.Context, accountNumber string, loanNumber int) (*domain.Loan, error)
	ListByAccountFn   func(ctx context.Context, accountNumber string) ([]*domain.Loan, error)
	ListFn            func(ctx context.Context) (map[string][]*domain.Loan, error)
	MaxLoanNumberFn   func(ctx context.Context, accountNumber string) (int, error)
	ResolveFn         func(ctx context.Context, accountNumber string, loanNumber int, to domain.State) error
	DeleteFn          func(ctx context.Context, accountNumber string, loanNumber int) error
	DeleteByAccountFn func(ctx context.Context, accountNumber string) error
	DeleteAllFn       func(ctx context.Context) error
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Get(ctx context.Context, accountNumber string, loanNumber int) (*domain.Loan, error) {
	if m.GetFn != nil {
		return m.GetFn(ctx, accountNumber, loanNumber)
	}
	return nil, domain.ErrNotFound
}

func (m *Repo) ListByAccount(ctx context.Context, accountNumber string) ([]*domain.Loan, error) {
	if m.ListByAccountFn != nil {
		return m.ListByAccountFn(ctx, accountNumber)
	}
	return nil, nil
}

func (m *Repo) List(ctx context.Context) (map[string][]*domain.Loan, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return map[string][]*domain.Loan{}, nil
}

func (m *Repo) MaxLoanNumber(ctx context.Context, accountNumber string) (int, error) {
	if m.MaxLoanNumberFn != nil {
		return m.MaxLoanNumberFn(ctx, accountNumber)
	}
	return 0, nil
}

func (m *Repo) Resolve(ctx context.Context, accountNumber string, loanNumber int, to domain.State) error {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, accountNumber, loanNumber, to)
	}
	return nil
}

func (m *Repo) Delete(ctx context.Context, accountNumber string, loanNumber int) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, accountNumber, loanNumber)
	}
	return nil
}

func (m *Repo) DeleteByAccount(ctx context.Context, accountNumber string) error {
	if m.DeleteByAccountFn != nil {
		return m.DeleteByAccountFn(ctx, accountNumber)
	}
	return nil
}

func (m *Repo) DeleteAll(ctx context.Context) error {
	if m.DeleteAllFn != nil {
		return m.DeleteAllFn(ctx)
	}
	return nil
}
