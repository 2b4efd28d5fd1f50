package memory

import (
	"context"
	"fmt"
	"sort"

	"atm-ledger/internal/domain/loan"
)

type LoanRepository struct {
	s    *Store
	inTx bool
}

var _ loan.Repository = (*LoanRepository)(nil)

func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := loanKey{l.AccountNumber, l.LoanNumber}
	r.s.holdLoan(r.inTx, k)
	if _, ok := r.s.loans[k]; ok {
		return loan.ErrNumberTaken
	}
	now := r.s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	r.s.loans[k] = *l
	return nil
}

func (r *LoanRepository) Get(ctx context.Context, accountNumber string, loanNumber int) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	l, ok := r.s.loans[loanKey{accountNumber, loanNumber}]
	if !ok {
		return nil, loan.ErrNotFound
	}
	return &l, nil
}

func (r *LoanRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*loan.Loan
	for k, v := range r.s.loans {
		if k.account == accountNumber {
			v := v
			out = append(out, &v)
		}
	}
	sortByNumber(out)
	return out, nil
}

func (r *LoanRepository) List(ctx context.Context) (map[string][]*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string][]*loan.Loan)
	for k, v := range r.s.loans {
		v := v
		out[k.account] = append(out[k.account], &v)
	}
	for _, ls := range out {
		sortByNumber(ls)
	}
	return out, nil
}

func sortByNumber(ls []*loan.Loan) {
	sort.Slice(ls, func(i, j int) bool { return ls[i].LoanNumber < ls[j].LoanNumber })
}

func (r *LoanRepository) MaxLoanNumber(ctx context.Context, accountNumber string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	max := 0
	for k := range r.s.loans {
		if k.account == accountNumber && k.number > max {
			max = k.number
		}
	}
	return max, nil
}

func (r *LoanRepository) Resolve(ctx context.Context, accountNumber string, loanNumber int, to loan.State) error {
	if !to.Terminal() {
		return fmt.Errorf("resolve to %s: %w", to, loan.ErrCannotPerform)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := loanKey{accountNumber, loanNumber}
	r.s.holdLoan(r.inTx, k)
	l, ok := r.s.loans[k]
	if !ok {
		return loan.ErrNotFound
	}
	if l.State != loan.StatePending {
		return loan.ErrAlreadyResolved
	}
	l.State = to
	l.UpdatedAt = r.s.now()
	r.s.loans[k] = l
	return nil
}

func (r *LoanRepository) Delete(ctx context.Context, accountNumber string, loanNumber int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	k := loanKey{accountNumber, loanNumber}
	r.s.holdLoan(r.inTx, k)
	l, ok := r.s.loans[k]
	if !ok {
		return loan.ErrNotFound
	}
	if l.State == loan.StatePending {
		return loan.ErrStillPending
	}
	delete(r.s.loans, k)
	return nil
}

func (r *LoanRepository) DeleteByAccount(ctx context.Context, accountNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdLoansOf(r.inTx, accountNumber)

	for k := range r.s.loans {
		if k.account == accountNumber {
			delete(r.s.loans, k)
		}
	}
	return nil
}

func (r *LoanRepository) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAllLoans(r.inTx)
	r.s.loans = make(map[loanKey]loan.Loan)
	return nil
}
