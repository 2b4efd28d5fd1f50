package loan

import "context"

type Repository interface {
	// Create fails with ErrNumberTaken if (account, loan number) exists.
	Create(ctx context.Context, l *Loan) error
	Get(ctx context.Context, accountNumber string, loanNumber int) (*Loan, error)
	ListByAccount(ctx context.Context, accountNumber string) ([]*Loan, error)
	// List groups every loan by account number.
	List(ctx context.Context) (map[string][]*Loan, error)
	// MaxLoanNumber is 0 when the account has no loans.
	MaxLoanNumber(ctx context.Context, accountNumber string) (int, error)

	// Resolve moves a PENDING loan to a terminal state.
	// ErrAlreadyResolved when the loan is no longer pending.
	Resolve(ctx context.Context, accountNumber string, loanNumber int, to State) error
	// Delete removes a resolved loan; ErrStillPending for pending ones.
	Delete(ctx context.Context, accountNumber string, loanNumber int) error
	DeleteByAccount(ctx context.Context, accountNumber string) error
	DeleteAll(ctx context.Context) error
}
