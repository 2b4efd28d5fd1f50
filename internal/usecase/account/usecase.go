// Package account holds the administrator's account operations.
package account

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	domain "atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/uow"
	"atm-ledger/internal/logger"
	"atm-ledger/pkg/id"
)

// generated numbers are retried this many times on collision
const enrollAttempts = 3

type Usecase struct {
	accounts  domain.Repository
	uow       uow.UnitOfWork
	newNumber func() string
}

func NewUsecase(accounts domain.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{accounts: accounts, uow: tx, newNumber: id.NewAccountNumber}
}

func validate(in EnrollInput) error {
	switch {
	case in.AccountNumber != "" && !domain.ValidNumber(in.AccountNumber):
		return fmt.Errorf("account number must be 9 digits: %w", domain.ErrInvalid)
	case !domain.ValidPIN(in.PIN):
		return fmt.Errorf("pin must be 6 digits: %w", domain.ErrInvalid)
	case strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "":
		return fmt.Errorf("first and last name are required: %w", domain.ErrInvalid)
	case !in.Gender.Valid():
		return fmt.Errorf("unknown gender %q: %w", in.Gender, domain.ErrInvalid)
	case in.Balance.IsNegative():
		return fmt.Errorf("initial balance must not be negative: %w", domain.ErrInvalid)
	}
	return nil
}

func (u *Usecase) Enroll(ctx context.Context, in EnrollInput) (*AccountDTO, error) {
	if err := validate(in); err != nil {
		logger.Error("account enroll validation failed", err, nil)
		return nil, err
	}

	a := &domain.Account{
		AccountNumber: in.AccountNumber,
		PIN:           in.PIN,
		Holder: domain.Holder{
			FirstName: strings.TrimSpace(in.FirstName),
			LastName:  strings.TrimSpace(in.LastName),
			Gender:    in.Gender,
			Address:   in.Address,
			BirthDate: in.BirthDate,
		},
		Balance:           in.Balance,
		RemainingAttempts: domain.MaxAttempts,
	}

	var err error
	if in.AccountNumber != "" {
		err = u.accounts.Create(ctx, a)
	} else {
		for i := 0; i < enrollAttempts; i++ {
			a.AccountNumber = u.newNumber()
			if err = u.accounts.Create(ctx, a); !errors.Is(err, domain.ErrDuplicate) {
				break
			}
		}
	}
	if err != nil {
		logger.Error("account enroll failed", err, logger.Fields{"account_number": a.AccountNumber})
		return nil, err
	}

	logger.Info("account enroll success", logger.Fields{"account_number": a.AccountNumber})
	dto := toDTO(a)
	return &dto, nil
}

func (u *Usecase) Get(ctx context.Context, accountNumber string) (*AccountDTO, error) {
	a, err := u.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	dto := toDTO(a)
	return &dto, nil
}

// List returns every account ordered by account number.
func (u *Usecase) List(ctx context.Context) ([]AccountDTO, error) {
	all, err := u.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountDTO, 0, len(all))
	for _, a := range all {
		out = append(out, toDTO(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}

func (u *Usecase) ListLocked(ctx context.Context) ([]domain.LockedView, error) {
	all, err := u.accounts.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.LockedView{}
	for _, a := range all {
		if a.Locked() {
			out = append(out, a.LockedView())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AccountNumber < out[j].AccountNumber })
	return out, nil
}

// Remove deletes the account and all of its loans in one transaction.
func (u *Usecase) Remove(ctx context.Context, accountNumber string) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.DeleteByAccount(ctx, accountNumber); err != nil {
			return err
		}
		return r.Accounts.Delete(ctx, accountNumber)
	})
	if err != nil {
		logger.Error("account remove failed", err, logger.Fields{"account_number": accountNumber})
		return err
	}
	logger.Info("account removed", logger.Fields{"account_number": accountNumber})
	return nil
}

// RemoveAll clears every account and loan.
func (u *Usecase) RemoveAll(ctx context.Context) error {
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Loans.DeleteAll(ctx); err != nil {
			return err
		}
		return r.Accounts.DeleteAll(ctx)
	})
	if err != nil {
		logger.Error("account remove all failed", err, nil)
		return err
	}
	logger.Warn("all accounts removed", nil)
	return nil
}
