package access

import (
	"context"
	"errors"
	"sync"
	"testing"

	"atm-ledger/internal/adapter/repository/memory"
	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/testutil/accountmock"

	"github.com/shopspring/decimal"
)

func seeded(t *testing.T, attempts int) (*memory.Store, *Usecase) {
	t.Helper()
	s := memory.NewStore()
	if err := s.Accounts().Create(context.Background(), &account.Account{
		AccountNumber:     "123123123",
		PIN:               "123456",
		Balance:           decimal.NewFromInt(100),
		RemainingAttempts: attempts,
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s, NewUsecase(s.Accounts())
}

func attemptsOf(t *testing.T, s *memory.Store) int {
	t.Helper()
	a, err := s.Accounts().GetByAccountNumber(context.Background(), "123123123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	return a.RemainingAttempts
}

func TestAuthenticate_Match(t *testing.T) {
	s, uc := seeded(t, 3)
	res, err := uc.Authenticate(context.Background(), "123123123", "123456")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if res.Status != StatusAuthenticated || res.Account == nil || res.RemainingAttempts != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if attemptsOf(t, s) != 3 {
		t.Fatalf("successful match must not reset attempts")
	}
}

func TestAuthenticate_LockoutSequence(t *testing.T) {
	s, uc := seeded(t, account.MaxAttempts)
	ctx := context.Background()

	for i := account.MaxAttempts - 1; i > 0; i-- {
		res, err := uc.Authenticate(ctx, "123123123", "000000")
		if !errors.Is(err, account.ErrIncorrectPIN) {
			t.Fatalf("want ErrIncorrectPIN, got %v", err)
		}
		if res.Status != StatusAwaitingPIN || res.RemainingAttempts != i {
			t.Fatalf("unexpected result: %+v", res)
		}
	}

	res, err := uc.Authenticate(ctx, "123123123", "000000")
	if !errors.Is(err, account.ErrLocked) || res.Status != StatusLocked {
		t.Fatalf("last miss: %+v, %v", res, err)
	}
	if attemptsOf(t, s) != 0 {
		t.Fatalf("account not locked")
	}

	// N+1th attempt, even with the right pin, fails without decrementing.
	if _, err := uc.Authenticate(ctx, "123123123", "123456"); !errors.Is(err, account.ErrLocked) {
		t.Fatalf("want ErrLocked, got %v", err)
	}
	if attemptsOf(t, s) != 0 {
		t.Fatalf("attempts went below zero")
	}
}

func TestAuthenticate_NotFound(t *testing.T) {
	_, uc := seeded(t, 5)
	if _, err := uc.Authenticate(context.Background(), "999999999", "123456"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestAuthenticate_ConcurrentMisses(t *testing.T) {
	s, uc := seeded(t, account.MaxAttempts)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 3*account.MaxAttempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.Authenticate(ctx, "123123123", "000000")
		}()
	}
	wg.Wait()

	if got := attemptsOf(t, s); got != 0 {
		t.Fatalf("attempts = %d, want 0", got)
	}
}

func TestAuthenticate_RaceLosesToLock(t *testing.T) {
	repo := &accountmock.Repo{
		GetByAccountNumberFn: func(context.Context, string) (*account.Account, error) {
			return &account.Account{AccountNumber: "123123123", PIN: "123456", RemainingAttempts: 1}, nil
		},
		DecrementAttemptsFn: func(context.Context, string) (int, error) {
			return 0, account.ErrLocked
		},
	}
	res, err := NewUsecase(repo).Authenticate(context.Background(), "123123123", "111111")
	if !errors.Is(err, account.ErrLocked) || res.Status != StatusLocked {
		t.Fatalf("got %+v, %v", res, err)
	}
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()

	s, uc := seeded(t, 0)
	if err := uc.Unlock(ctx, "123123123"); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
	if attemptsOf(t, s) != account.MaxAttempts {
		t.Fatalf("attempts not restored")
	}
	if err := uc.Unlock(ctx, "123123123"); !errors.Is(err, account.ErrNotLocked) {
		t.Fatalf("want ErrNotLocked, got %v", err)
	}
	if err := uc.Unlock(ctx, "999999999"); !errors.Is(err, account.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUnlock_ConcurrentUnlockReportsNotLocked(t *testing.T) {
	repo := &accountmock.Repo{
		GetByAccountNumberFn: func(context.Context, string) (*account.Account, error) {
			return &account.Account{AccountNumber: "123123123", RemainingAttempts: 0}, nil
		},
		UpdateAttemptsFn: func(_ context.Context, _ string, expected, attempts int) error {
			if expected != 0 || attempts != account.MaxAttempts {
				t.Fatalf("UpdateAttempts(%d, %d)", expected, attempts)
			}
			return account.ErrStale
		},
	}
	if err := NewUsecase(repo).Unlock(context.Background(), "123123123"); !errors.Is(err, account.ErrNotLocked) {
		t.Fatalf("want ErrNotLocked, got %v", err)
	}
}
