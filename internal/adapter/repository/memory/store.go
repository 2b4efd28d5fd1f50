// Package memory is a process-local implementation of the account and loan
// repositories, used by the use-case and HTTP tests.
package memory

import (
	"context"
	"sync"
	"time"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"
	"atm-ledger/internal/domain/uow"
)

type loanKey struct {
	account string
	number  int
}

type Store struct {
	mu       sync.Mutex
	released *sync.Cond // broadcast when the open transaction ends
	txMu     sync.Mutex
	accounts map[string]account.Account
	loans    map[loanKey]loan.Loan
	tx       *undoLog // open transaction, guarded by mu
	now      func() time.Time
}

func NewStore() *Store {
	s := &Store{
		accounts: make(map[string]account.Account),
		loans:    make(map[loanKey]loan.Loan),
		now:      func() time.Time { return time.Now().UTC() },
	}
	s.released = sync.NewCond(&s.mu)
	return s
}

func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }
func (s *Store) Loans() *LoanRepository       { return &LoanRepository{s: s} }
func (s *Store) UnitOfWork() *UoW             { return &UoW{s: s} }

// undoLog keeps the pre-transaction value of every row the transaction wrote.
// A nil value means the row did not exist.
type undoLog struct {
	accounts map[string]*account.Account
	loans    map[loanKey]*loan.Loan
}

func (l *undoLog) holdsLoansOf(accountNumber string) bool {
	for k := range l.loans {
		if k.account == accountNumber {
			return true
		}
	}
	return false
}

// The hold* helpers run with mu held before a write. Inside the transaction
// they record the prior row value; outside it they wait until the open
// transaction no longer owns the row.

func (s *Store) holdAccount(inTx bool, n string) {
	if inTx && s.tx != nil {
		if _, seen := s.tx.accounts[n]; !seen {
			var prior *account.Account
			if a, ok := s.accounts[n]; ok {
				prior = &a
			}
			s.tx.accounts[n] = prior
		}
		return
	}
	for s.tx != nil {
		if _, held := s.tx.accounts[n]; !held {
			return
		}
		s.released.Wait()
	}
}

func (s *Store) holdAllAccounts(inTx bool) {
	if inTx && s.tx != nil {
		for n := range s.accounts {
			s.holdAccount(true, n)
		}
		return
	}
	for s.tx != nil && len(s.tx.accounts) > 0 {
		s.released.Wait()
	}
}

func (s *Store) holdLoan(inTx bool, k loanKey) {
	if inTx && s.tx != nil {
		if _, seen := s.tx.loans[k]; !seen {
			var prior *loan.Loan
			if l, ok := s.loans[k]; ok {
				prior = &l
			}
			s.tx.loans[k] = prior
		}
		return
	}
	for s.tx != nil {
		if _, held := s.tx.loans[k]; !held {
			return
		}
		s.released.Wait()
	}
}

func (s *Store) holdLoansOf(inTx bool, accountNumber string) {
	if inTx && s.tx != nil {
		for k := range s.loans {
			if k.account == accountNumber {
				s.holdLoan(true, k)
			}
		}
		return
	}
	for s.tx != nil && s.tx.holdsLoansOf(accountNumber) {
		s.released.Wait()
	}
}

func (s *Store) holdAllLoans(inTx bool) {
	if inTx && s.tx != nil {
		for k := range s.loans {
			s.holdLoan(true, k)
		}
		return
	}
	for s.tx != nil && len(s.tx.loans) > 0 {
		s.released.Wait()
	}
}

func (s *Store) begin() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tx = &undoLog{
		accounts: make(map[string]*account.Account),
		loans:    make(map[loanKey]*loan.Loan),
	}
}

// end reverts the rows the transaction wrote unless it committed, then wakes
// writers waiting on those rows.
func (s *Store) end(commit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !commit {
		for n, prior := range s.tx.accounts {
			if prior == nil {
				delete(s.accounts, n)
			} else {
				s.accounts[n] = *prior
			}
		}
		for k, prior := range s.tx.loans {
			if prior == nil {
				delete(s.loans, k)
			} else {
				s.loans[k] = *prior
			}
		}
	}
	s.tx = nil
	s.released.Broadcast()
}

// UoW serializes transactions and rolls back the rows a failed one wrote.
// Writes outside the transaction to rows it has not touched are kept.
type UoW struct{ s *Store }

var _ uow.UnitOfWork = (*UoW)(nil)

func (u *UoW) repos() uow.Repos {
	return uow.Repos{
		Accounts: &AccountRepository{s: u.s, inTx: true},
		Loans:    &LoanRepository{s: u.s, inTx: true},
	}
}

func (u *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) (err error) {
	u.s.txMu.Lock()
	defer u.s.txMu.Unlock()

	u.s.begin()
	committed := false
	defer func() { u.s.end(committed) }()

	if err = fn(u.repos()); err != nil {
		return err
	}
	committed = true
	return nil
}

func (u *UoW) WithinLoanTx(ctx context.Context, accountNumber string, loanNumber int, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.WithinTx(ctx, func(r uow.Repos) error {
		l, err := r.Loans.Get(ctx, accountNumber, loanNumber)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
