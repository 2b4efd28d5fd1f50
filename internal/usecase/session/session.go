// Package session groups use cases into the capabilities of each role.
// An administrator manages accounts and resolves loans; a client acts only
// on the account it authenticated against.
package session

import (
	"context"

	domain "atm-ledger/internal/domain/account"
	"atm-ledger/internal/usecase/access"
	accountuc "atm-ledger/internal/usecase/account"
	"atm-ledger/internal/usecase/ledger"
	loanuc "atm-ledger/internal/usecase/loan"
	"atm-ledger/internal/usecase/notification"

	"github.com/shopspring/decimal"
)

type AdminSession struct {
	accounts *accountuc.Usecase
	access   *access.Usecase
	loans    *loanuc.Usecase
}

func (s *AdminSession) Enroll(ctx context.Context, in accountuc.EnrollInput) (*accountuc.AccountDTO, error) {
	return s.accounts.Enroll(ctx, in)
}

func (s *AdminSession) Account(ctx context.Context, accountNumber string) (*accountuc.AccountDTO, error) {
	return s.accounts.Get(ctx, accountNumber)
}

func (s *AdminSession) Accounts(ctx context.Context) ([]accountuc.AccountDTO, error) {
	return s.accounts.List(ctx)
}

func (s *AdminSession) LockedAccounts(ctx context.Context) ([]domain.LockedView, error) {
	return s.accounts.ListLocked(ctx)
}

func (s *AdminSession) RemoveAccount(ctx context.Context, accountNumber string) error {
	return s.accounts.Remove(ctx, accountNumber)
}

func (s *AdminSession) RemoveAllAccounts(ctx context.Context) error {
	return s.accounts.RemoveAll(ctx)
}

func (s *AdminSession) Unlock(ctx context.Context, accountNumber string) error {
	return s.access.Unlock(ctx, accountNumber)
}

func (s *AdminSession) Loans(ctx context.Context) (map[string][]loanuc.LoanDTO, error) {
	return s.loans.ListAll(ctx)
}

func (s *AdminSession) PendingLoans(ctx context.Context) ([]loanuc.LoanDTO, error) {
	return s.loans.ListPending(ctx)
}

func (s *AdminSession) Approve(ctx context.Context, accountNumber string, loanNumber int) (*loanuc.ResolutionDTO, error) {
	return s.loans.Approve(ctx, accountNumber, loanNumber)
}

func (s *AdminSession) Decline(ctx context.Context, accountNumber string, loanNumber int) (*loanuc.ResolutionDTO, error) {
	return s.loans.Decline(ctx, accountNumber, loanNumber)
}

func (s *AdminSession) RemoveLoan(ctx context.Context, accountNumber string, loanNumber int) error {
	return s.loans.Remove(ctx, accountNumber, loanNumber)
}

func (s *AdminSession) RemoveAllLoans(ctx context.Context) error {
	return s.loans.RemoveAll(ctx)
}

// ClientSession is bound to one authenticated account.
type ClientSession struct {
	accountNumber string
	accounts      *accountuc.Usecase
	ledger        *ledger.Usecase
	loans         *loanuc.Usecase
}

func (s *ClientSession) AccountNumber() string { return s.accountNumber }

func (s *ClientSession) Profile(ctx context.Context) (*accountuc.AccountDTO, error) {
	return s.accounts.Get(ctx, s.accountNumber)
}

func (s *ClientSession) Balance(ctx context.Context) (*ledger.BalanceDTO, error) {
	return s.ledger.Balance(ctx, s.accountNumber)
}

func (s *ClientSession) Deposit(ctx context.Context, amount decimal.Decimal) (*ledger.BalanceDTO, error) {
	return s.ledger.Deposit(ctx, s.accountNumber, amount)
}

func (s *ClientSession) Withdraw(ctx context.Context, amount decimal.Decimal) (*ledger.BalanceDTO, error) {
	return s.ledger.Withdraw(ctx, s.accountNumber, amount)
}

func (s *ClientSession) RequestLoan(ctx context.Context, amount decimal.Decimal) (*loanuc.LoanDTO, error) {
	return s.loans.Request(ctx, loanuc.RequestLoanInput{AccountNumber: s.accountNumber, Amount: amount})
}

func (s *ClientSession) Loans(ctx context.Context) ([]loanuc.LoanDTO, error) {
	return s.loans.ListByAccount(ctx, s.accountNumber)
}

func (s *ClientSession) Messages(ctx context.Context) ([]notification.Message, error) {
	return s.loans.ListMessages(ctx, s.accountNumber)
}

// Gate hands out role sessions.
type Gate struct {
	admin    *AdminSession
	access   *access.Usecase
	accounts *accountuc.Usecase
	ledger   *ledger.Usecase
	loans    *loanuc.Usecase
}

func NewGate(accounts *accountuc.Usecase, acc *access.Usecase, l *ledger.Usecase, loans *loanuc.Usecase) *Gate {
	return &Gate{
		admin:    &AdminSession{accounts: accounts, access: acc, loans: loans},
		access:   acc,
		accounts: accounts,
		ledger:   l,
		loans:    loans,
	}
}

// Admin returns the administrator session. Authenticating the administrator
// is the caller's job.
func (g *Gate) Admin() *AdminSession { return g.admin }

// Login authenticates pin against accountNumber and opens a client session.
// The AuthResult is returned on PIN failures too so callers can report the
// remaining attempts.
func (g *Gate) Login(ctx context.Context, accountNumber, pin string) (*ClientSession, *access.AuthResult, error) {
	res, err := g.access.Authenticate(ctx, accountNumber, pin)
	if err != nil {
		return nil, res, err
	}
	return &ClientSession{
		accountNumber: accountNumber,
		accounts:      g.accounts,
		ledger:        g.ledger,
		loans:         g.loans,
	}, res, nil
}
