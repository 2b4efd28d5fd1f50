package uowmock

import (
	"context"
	"errors"
	"testing"

	"atm-ledger/internal/domain/loan"
	"atm-ledger/internal/domain/uow"
	"atm-ledger/internal/testutil/accountmock"
	"atm-ledger/internal/testutil/loanmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	accts := &accountmock.Repo{}
	loans := &loanmock.Repo{}
	repos := uow.Repos{Accounts: accts, Loans: loans}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			// simulate transaction body
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Accounts != accts || r.Loans != loans {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("boom")

	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_Default_Unimplemented(t *testing.T) {
	ctx := context.Background()
	m := &UoW{} // no funcs set
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
	if err := m.WithinLoanTx(ctx, "123123123", 1, func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_WithinLoanTx_Happy(t *testing.T) {
	ctx := context.Background()

	repos := uow.Repos{Accounts: &accountmock.Repo{}, Loans: &loanmock.Repo{}}
	held := &loan.Loan{LoanNumber: 7, AccountNumber: "123123123"}

	m := &UoW{
		WithinLoanTxFn: func(gotCtx context.Context, acct string, n int, fn func(r uow.Repos, l *loan.Loan) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinLoanTx: ctx mismatch")
			}
			if acct != "123123123" || n != 7 {
				t.Fatalf("WithinLoanTx: key mismatch, got %s/%d", acct, n)
			}
			return fn(repos, held)
		},
	}

	innerCalled := false
	err := m.WithinLoanTx(ctx, "123123123", 7, func(r uow.Repos, l *loan.Loan) error {
		innerCalled = true
		if l != held {
			t.Fatalf("WithinLoanTx: loan not forwarded correctly: %+v", l)
		}
		return nil
	})
	if err != nil || !innerCalled {
		t.Fatalf("WithinLoanTx: err=%v called=%v", err, innerCalled)
	}
}

func TestPassthrough(t *testing.T) {
	ctx := context.Background()
	held := &loan.Loan{LoanNumber: 1, AccountNumber: "123123123"}
	loans := &loanmock.Repo{
		GetFn: func(context.Context, string, int) (*loan.Loan, error) { return held, nil },
	}
	m := Passthrough(uow.Repos{Accounts: &accountmock.Repo{}, Loans: loans})

	var got *loan.Loan
	if err := m.WithinLoanTx(ctx, "123123123", 1, func(_ uow.Repos, l *loan.Loan) error {
		got = l
		return nil
	}); err != nil {
		t.Fatalf("WithinLoanTx: %v", err)
	}
	if got != held {
		t.Fatalf("Passthrough did not load loan")
	}

	empty := Passthrough(uow.Repos{Accounts: &accountmock.Repo{}, Loans: &loanmock.Repo{}})
	if err := empty.WithinLoanTx(ctx, "123123123", 9, func(uow.Repos, *loan.Loan) error {
		t.Fatal("body must not run")
		return nil
	}); !errors.Is(err, loan.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUoW_FluentSetters_And_Reset(t *testing.T) {
	m := New()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("New should start with nil funcs")
	}

	m.WithWithinTx(func(context.Context, func(uow.Repos) error) error { return nil }).
		WithWithinLoanTx(func(context.Context, string, int, func(uow.Repos, *loan.Loan) error) error { return nil })

	if m.WithinTxFn == nil || m.WithinLoanTxFn == nil {
		t.Fatalf("fluent setters didn't assign funcs")
	}

	m.Reset()
	if m.WithinTxFn != nil || m.WithinLoanTxFn != nil {
		t.Fatalf("Reset should clear function fields")
	}
}
