package loan

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"
	"atm-ledger/internal/domain/uow"
	"atm-ledger/internal/logger"
	"atm-ledger/internal/usecase/ledger"
	"atm-ledger/internal/usecase/notification"
)

type Usecase struct {
	accounts account.Repository
	loans    loan.Repository
	uow      uow.UnitOfWork
	now      func() time.Time
}

// NewUsecase: pass both repos and a UoW for tx flows.
func NewUsecase(accounts account.Repository, loans loan.Repository, tx uow.UnitOfWork) *Usecase {
	return &Usecase{accounts: accounts, loans: loans, uow: tx, now: time.Now}
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextLoanNumber returns 1 for an account with no loans, else the highest
// existing loan number plus one.
func (u *Usecase) NextLoanNumber(ctx context.Context, accountNumber string) (int, error) {
	return nextLoanNumber(ctx, u.loans, accountNumber)
}

func nextLoanNumber(ctx context.Context, repo loan.Repository, accountNumber string) (int, error) {
	n, err := repo.MaxLoanNumber(ctx, accountNumber)
	if err != nil {
		return 0, err
	}
	return n + 1, nil
}

func (u *Usecase) Request(ctx context.Context, in RequestLoanInput) (*LoanDTO, error) {
	if !in.Amount.IsPositive() {
		return nil, loan.ErrInvalidAmount
	}
	date := in.Date
	if date.IsZero() {
		date = u.now()
	}

	var created *loan.Loan
	err := u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if _, err := r.Accounts.GetByAccountNumber(ctx, in.AccountNumber); err != nil {
			return err
		}
		n, err := nextLoanNumber(ctx, r.Loans, in.AccountNumber)
		if err != nil {
			return err
		}
		l := &loan.Loan{
			LoanNumber:    n,
			AccountNumber: in.AccountNumber,
			DateRequested: day(date),
			Amount:        in.Amount,
			State:         loan.StatePending,
		}
		if err := r.Loans.Create(ctx, l); err != nil {
			return err
		}
		created = l
		return nil
	})
	if err != nil {
		logger.Error("loan request failed", err, logger.Fields{"account_number": in.AccountNumber})
		return nil, err
	}

	logger.Info("loan request success", logger.Fields{
		"account_number": created.AccountNumber,
		"loan_number":    created.LoanNumber,
		"amount":         created.Amount.String(),
	})
	dto := toDTO(created)
	return &dto, nil
}

// Approve credits the loan amount to its account and marks it APPROVED in one
// transaction. If the credit fails the loan stays PENDING and the error wraps
// loan.ErrCannotPerform.
func (u *Usecase) Approve(ctx context.Context, accountNumber string, loanNumber int) (*ResolutionDTO, error) {
	var out *ResolutionDTO
	err := u.uow.WithinLoanTx(ctx, accountNumber, loanNumber, func(r uow.Repos, l *loan.Loan) error {
		// State guard: only pending → approved
		if l.State.Terminal() {
			return loan.ErrAlreadyResolved
		}
		balance, err := ledger.Credit(ctx, r.Accounts, accountNumber, l.Amount)
		if err != nil {
			return fmt.Errorf("credit loan %d: %w: %w", loanNumber, loan.ErrCannotPerform, err)
		}
		if err := r.Loans.Resolve(ctx, accountNumber, loanNumber, loan.StateApproved); err != nil {
			return err
		}
		l.State = loan.StateApproved
		out = &ResolutionDTO{Loan: toDTO(l), Balance: &balance}
		return nil
	})
	if err != nil {
		logger.Error("loan approve failed", err, logger.Fields{"account_number": accountNumber, "loan_number": loanNumber})
		return nil, err
	}
	logger.Info("loan approve success", logger.Fields{"account_number": accountNumber, "loan_number": loanNumber})
	return out, nil
}

func (u *Usecase) Decline(ctx context.Context, accountNumber string, loanNumber int) (*ResolutionDTO, error) {
	var out *ResolutionDTO
	err := u.uow.WithinLoanTx(ctx, accountNumber, loanNumber, func(r uow.Repos, l *loan.Loan) error {
		if l.State.Terminal() {
			return loan.ErrAlreadyResolved
		}
		if err := r.Loans.Resolve(ctx, accountNumber, loanNumber, loan.StateDeclined); err != nil {
			return err
		}
		l.State = loan.StateDeclined
		out = &ResolutionDTO{Loan: toDTO(l)}
		return nil
	})
	if err != nil {
		logger.Error("loan decline failed", err, logger.Fields{"account_number": accountNumber, "loan_number": loanNumber})
		return nil, err
	}
	logger.Info("loan decline success", logger.Fields{"account_number": accountNumber, "loan_number": loanNumber})
	return out, nil
}

// Remove deletes a resolved loan; pending loans yield loan.ErrStillPending.
func (u *Usecase) Remove(ctx context.Context, accountNumber string, loanNumber int) error {
	if err := u.loans.Delete(ctx, accountNumber, loanNumber); err != nil {
		return err
	}
	logger.Info("loan removed", logger.Fields{"account_number": accountNumber, "loan_number": loanNumber})
	return nil
}

func (u *Usecase) RemoveAll(ctx context.Context) error {
	if err := u.loans.DeleteAll(ctx); err != nil {
		return err
	}
	logger.Warn("loan ledger cleared", nil)
	return nil
}

func (u *Usecase) Get(ctx context.Context, accountNumber string, loanNumber int) (*LoanDTO, error) {
	l, err := u.loans.Get(ctx, accountNumber, loanNumber)
	if err != nil {
		return nil, err
	}
	dto := toDTO(l)
	return &dto, nil
}

func (u *Usecase) ListByAccount(ctx context.Context, accountNumber string) ([]LoanDTO, error) {
	if _, err := u.accounts.GetByAccountNumber(ctx, accountNumber); err != nil {
		return nil, err
	}
	ls, err := u.loans.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	out := make([]LoanDTO, 0, len(ls))
	for _, l := range ls {
		out = append(out, toDTO(l))
	}
	return out, nil
}

func (u *Usecase) ListAll(ctx context.Context) (map[string][]LoanDTO, error) {
	all, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]LoanDTO, len(all))
	for acct, ls := range all {
		dtos := make([]LoanDTO, 0, len(ls))
		for _, l := range ls {
			dtos = append(dtos, toDTO(l))
		}
		out[acct] = dtos
	}
	return out, nil
}

// ListPending returns every PENDING loan ordered by account then loan number.
func (u *Usecase) ListPending(ctx context.Context) ([]LoanDTO, error) {
	all, err := u.loans.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []LoanDTO
	for _, ls := range all {
		for _, l := range ls {
			if l.State == loan.StatePending {
				out = append(out, toDTO(l))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AccountNumber != out[j].AccountNumber {
			return out[i].AccountNumber < out[j].AccountNumber
		}
		return out[i].LoanNumber < out[j].LoanNumber
	})
	return out, nil
}

// ListMessages projects the account's resolved loans into messages. An account
// whose loans are all pending, or that has none, yields loan.ErrNoMessages.
func (u *Usecase) ListMessages(ctx context.Context, accountNumber string) ([]notification.Message, error) {
	a, err := u.accounts.GetByAccountNumber(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	ls, err := u.loans.ListByAccount(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	var out []notification.Message
	for _, l := range ls {
		m, err := notification.Build(l, a)
		if errors.Is(err, loan.ErrStillPending) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil, loan.ErrNoMessages
	}
	return out, nil
}
