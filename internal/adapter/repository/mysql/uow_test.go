package mysql

import (
	"context"
	"errors"
	"testing"

	"atm-ledger/internal/domain/account"
	loanDomain "atm-ledger/internal/domain/loan"
	"atm-ledger/internal/domain/uow"

	"github.com/shopspring/decimal"
)

func TestGormUoW_WithinTx_Commit(t *testing.T) {
	db := openTestDB(t)
	c := testCodec(t)
	ctx := context.Background()

	guow := NewGormUoW(db, c)
	accounts := NewAccountRepository(db, c)
	loans := NewLoanRepository(db, c)

	err := guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Accounts.Create(ctx, makeAccount("123123123", 100)); err != nil {
			return err
		}
		return r.Loans.Create(ctx, makeLoan("123123123", 1, 500))
	})
	if err != nil {
		t.Fatalf("WithinTx commit err: %v", err)
	}

	if _, err := accounts.GetByAccountNumber(ctx, "123123123"); err != nil {
		t.Fatalf("account not visible after commit: %v", err)
	}
	if _, err := loans.Get(ctx, "123123123", 1); err != nil {
		t.Fatalf("loan not visible after commit: %v", err)
	}
}

func TestGormUoW_WithinTx_Rollback(t *testing.T) {
	db := openTestDB(t)
	c := testCodec(t)
	ctx := context.Background()

	guow := NewGormUoW(db, c)
	accounts := NewAccountRepository(db, c)
	loans := NewLoanRepository(db, c)

	sentinel := errors.New("boom")
	_ = guow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Accounts.Create(ctx, makeAccount("123123123", 100)); err != nil {
			return err
		}
		if err := r.Loans.Create(ctx, makeLoan("123123123", 1, 500)); err != nil {
			return err
		}
		return sentinel // force rollback
	})

	if _, err := accounts.GetByAccountNumber(ctx, "123123123"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("expected account not found after rollback, got %v", err)
	}
	if _, err := loans.Get(ctx, "123123123", 1); !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected loan not found after rollback, got %v", err)
	}
}

func TestGormUoW_WithinLoanTx_CreditRollsBackWithState(t *testing.T) {
	db := openTestDB(t)
	c := testCodec(t)
	ctx := context.Background()

	guow := NewGormUoW(db, c)
	accounts := NewAccountRepository(db, c)
	loans := NewLoanRepository(db, c)

	_ = accounts.Create(ctx, makeAccount("123123123", 5_000_000))
	_ = loans.Create(ctx, makeLoan("123123123", 1, 10_000))

	sentinel := errors.New("stop")
	_ = guow.WithinLoanTx(ctx, "123123123", 1, func(r uow.Repos, l *loanDomain.Loan) error {
		if l.State != loanDomain.StatePending {
			t.Fatalf("unexpected loan passed to fn: %+v", l)
		}
		a, err := r.Accounts.GetByAccountNumber(ctx, l.AccountNumber)
		if err != nil {
			return err
		}
		if err := r.Accounts.UpdateBalance(ctx, a.AccountNumber, a.Balance.Add(l.Amount), a.Version); err != nil {
			return err
		}
		if err := r.Loans.Resolve(ctx, l.AccountNumber, l.LoanNumber, loanDomain.StateApproved); err != nil {
			return err
		}
		return sentinel
	})

	a, _ := accounts.GetByAccountNumber(ctx, "123123123")
	if !a.Balance.Equal(decimal.NewFromInt(5_000_000)) {
		t.Fatalf("balance = %s after rollback", a.Balance)
	}
	l, _ := loans.Get(ctx, "123123123", 1)
	if l.State != loanDomain.StatePending {
		t.Fatalf("expected pending after rollback, got %s", l.State)
	}
}

func TestGormUoW_WithinLoanTx_LoanNotFound(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	guow := NewGormUoW(db, testCodec(t))
	err := guow.WithinLoanTx(ctx, "123123123", 7, func(uow.Repos, *loanDomain.Loan) error {
		t.Fatalf("callback should not be called when loan missing")
		return nil
	})
	if !errors.Is(err, loanDomain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
