package account

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"atm-ledger/internal/adapter/repository/memory"
	domain "atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

func validInput() EnrollInput {
	return EnrollInput{
		AccountNumber: "123123123",
		PIN:           "123456",
		FirstName:     "Peter",
		LastName:      "Arceo",
		Gender:        domain.GenderMale,
		Address:       "Earth",
		BirthDate:     time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
		Balance:       decimal.NewFromInt(5_000_000),
	}
}

func TestEnroll(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*EnrollInput)
		wantErr error
	}{
		{"ok", func(*EnrollInput) {}, nil},
		{"zero balance", func(in *EnrollInput) { in.Balance = decimal.Zero }, nil},
		{"short number", func(in *EnrollInput) { in.AccountNumber = "1234" }, domain.ErrInvalid},
		{"alpha pin", func(in *EnrollInput) { in.PIN = "12a456" }, domain.ErrInvalid},
		{"missing name", func(in *EnrollInput) { in.LastName = " " }, domain.ErrInvalid},
		{"bad gender", func(in *EnrollInput) { in.Gender = "OTHER" }, domain.ErrInvalid},
		{"negative balance", func(in *EnrollInput) { in.Balance = decimal.NewFromInt(-1) }, domain.ErrInvalid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := memory.NewStore()
			uc := NewUsecase(s.Accounts(), s.UnitOfWork())
			in := validInput()
			tc.mutate(&in)

			dto, err := uc.Enroll(context.Background(), in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("want %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Enroll: %v", err)
			}
			if dto.RemainingAttempts != domain.MaxAttempts || dto.Locked || dto.BirthDate != "2000-01-02" {
				t.Fatalf("unexpected dto: %+v", dto)
			}
		})
	}
}

func TestEnroll_Duplicate(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()

	if _, err := uc.Enroll(ctx, validInput()); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if _, err := uc.Enroll(ctx, validInput()); !errors.Is(err, domain.ErrDuplicate) {
		t.Fatalf("want ErrDuplicate, got %v", err)
	}
}

func TestEnroll_GeneratesNumber(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()

	in := validInput()
	in.AccountNumber = ""
	dto, err := uc.Enroll(ctx, in)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if !regexp.MustCompile(`^[0-9]{9}$`).MatchString(dto.AccountNumber) {
		t.Fatalf("generated number %q", dto.AccountNumber)
	}
}

func TestEnroll_RetriesGeneratedCollision(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()
	if _, err := uc.Enroll(ctx, validInput()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	numbers := []string{"123123123", "123123123", "555555555"}
	uc.newNumber = func() string {
		n := numbers[0]
		numbers = numbers[1:]
		return n
	}
	in := validInput()
	in.AccountNumber = ""
	dto, err := uc.Enroll(ctx, in)
	if err != nil || dto.AccountNumber != "555555555" {
		t.Fatalf("Enroll = %+v, %v", dto, err)
	}
}

func TestListAndLocked(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()

	for _, n := range []string{"333333333", "111111111", "222222222"} {
		in := validInput()
		in.AccountNumber = n
		if _, err := uc.Enroll(ctx, in); err != nil {
			t.Fatalf("Enroll: %v", err)
		}
	}
	if err := s.Accounts().UpdateAttempts(ctx, "222222222", domain.MaxAttempts, 0); err != nil {
		t.Fatalf("lock: %v", err)
	}

	all, _ := uc.List(ctx)
	if len(all) != 3 || all[0].AccountNumber != "111111111" || !all[1].Locked {
		t.Fatalf("List = %+v", all)
	}

	locked, err := uc.ListLocked(ctx)
	if err != nil {
		t.Fatalf("ListLocked: %v", err)
	}
	want := domain.LockedView{AccountNumber: "222222222", Name: "Peter Arceo", Gender: domain.GenderMale}
	if len(locked) != 1 || locked[0] != want {
		t.Fatalf("ListLocked = %+v", locked)
	}
}

func TestRemove_CascadesLoans(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()

	if _, err := uc.Enroll(ctx, validInput()); err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	_ = s.Loans().Create(ctx, &loan.Loan{LoanNumber: 1, AccountNumber: "123123123", Amount: decimal.NewFromInt(10), State: loan.StatePending})
	_ = s.Loans().Create(ctx, &loan.Loan{LoanNumber: 1, AccountNumber: "999999999", Amount: decimal.NewFromInt(10), State: loan.StatePending})

	if err := uc.Remove(ctx, "123123123"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := uc.Get(ctx, "123123123"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if ls, _ := s.Loans().ListByAccount(ctx, "123123123"); len(ls) != 0 {
		t.Fatalf("loans survived removal: %+v", ls)
	}
	if ls, _ := s.Loans().ListByAccount(ctx, "999999999"); len(ls) != 1 {
		t.Fatalf("unrelated loans removed")
	}
}

func TestRemove_MissingRollsBack(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()
	_ = s.Loans().Create(ctx, &loan.Loan{LoanNumber: 1, AccountNumber: "123123123", State: loan.StatePending})

	if err := uc.Remove(ctx, "123123123"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if ls, _ := s.Loans().ListByAccount(ctx, "123123123"); len(ls) != 1 {
		t.Fatalf("orphan loan deleted despite rollback")
	}
}

func TestRemoveAll(t *testing.T) {
	s := memory.NewStore()
	uc := NewUsecase(s.Accounts(), s.UnitOfWork())
	ctx := context.Background()
	_, _ = uc.Enroll(ctx, validInput())
	_ = s.Loans().Create(ctx, &loan.Loan{LoanNumber: 1, AccountNumber: "123123123", State: loan.StatePending})

	if err := uc.RemoveAll(ctx); err != nil {
		t.Fatalf("RemoveAll: %v", err)
	}
	if all, _ := uc.List(ctx); len(all) != 0 {
		t.Fatalf("accounts remain: %+v", all)
	}
	if all, _ := s.Loans().List(ctx); len(all) != 0 {
		t.Fatalf("loans remain: %+v", all)
	}
}
