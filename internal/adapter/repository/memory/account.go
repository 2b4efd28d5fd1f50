package memory

import (
	"context"

	"atm-ledger/internal/domain/account"

	"github.com/shopspring/decimal"
)

type AccountRepository struct {
	s    *Store
	inTx bool
}

var _ account.Repository = (*AccountRepository)(nil)

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAccount(r.inTx, a.AccountNumber)

	if _, ok := r.s.accounts[a.AccountNumber]; ok {
		return account.ErrDuplicate
	}
	now := r.s.now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.accounts[a.AccountNumber] = *a
	return nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a, ok := r.s.accounts[accountNumber]
	if !ok {
		return nil, account.ErrNotFound
	}
	return &a, nil
}

func (r *AccountRepository) List(ctx context.Context) (map[string]*account.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := make(map[string]*account.Account, len(r.s.accounts))
	for k, v := range r.s.accounts {
		v := v
		out[k] = &v
	}
	return out, nil
}

func (r *AccountRepository) Delete(ctx context.Context, accountNumber string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAccount(r.inTx, accountNumber)

	if _, ok := r.s.accounts[accountNumber]; !ok {
		return account.ErrNotFound
	}
	delete(r.s.accounts, accountNumber)
	return nil
}

func (r *AccountRepository) DeleteAll(ctx context.Context) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAllAccounts(r.inTx)
	r.s.accounts = make(map[string]account.Account)
	return nil
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, accountNumber string, newBalance decimal.Decimal, expectedVersion uint64) error {
	if newBalance.IsNegative() {
		return account.ErrInsufficientFunds
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAccount(r.inTx, accountNumber)

	a, ok := r.s.accounts[accountNumber]
	if !ok {
		return account.ErrNotFound
	}
	if a.Version != expectedVersion {
		return account.ErrStale
	}
	a.Balance = newBalance
	a.Version++
	a.UpdatedAt = r.s.now()
	r.s.accounts[accountNumber] = a
	return nil
}

func (r *AccountRepository) UpdateAttempts(ctx context.Context, accountNumber string, expected, attempts int) error {
	if attempts < 0 || attempts > account.MaxAttempts {
		return account.ErrInvalid
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAccount(r.inTx, accountNumber)

	a, ok := r.s.accounts[accountNumber]
	if !ok {
		return account.ErrNotFound
	}
	if a.RemainingAttempts != expected {
		return account.ErrStale
	}
	a.RemainingAttempts = attempts
	a.UpdatedAt = r.s.now()
	r.s.accounts[accountNumber] = a
	return nil
}

func (r *AccountRepository) DecrementAttempts(ctx context.Context, accountNumber string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.holdAccount(r.inTx, accountNumber)

	a, ok := r.s.accounts[accountNumber]
	if !ok {
		return 0, account.ErrNotFound
	}
	if a.RemainingAttempts <= 0 {
		return 0, account.ErrLocked
	}
	a.RemainingAttempts--
	a.UpdatedAt = r.s.now()
	r.s.accounts[accountNumber] = a
	return a.RemainingAttempts, nil
}
