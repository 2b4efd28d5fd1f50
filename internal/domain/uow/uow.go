package uow

import (
	"context"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"
)

// Repos are bound to one transaction; writes through them commit or roll back together.
type Repos struct {
	Accounts account.Repository
	Loans    loan.Repository
}

type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// WithinLoanTx loads the loan first and fails with loan.ErrNotFound before fn runs.
	WithinLoanTx(ctx context.Context, accountNumber string, loanNumber int, fn func(r Repos, l *loan.Loan) error) error
}
