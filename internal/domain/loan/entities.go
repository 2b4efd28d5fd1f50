package loan

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

type State string

const (
	StatePending  State = "PENDING"
	StateApproved State = "APPROVED"
	StateDeclined State = "DECLINED"
)

// Terminal states accept no further transitions.
func (s State) Terminal() bool { return s == StateApproved || s == StateDeclined }

var (
	ErrNotFound        = errors.New("loan not found")
	ErrInvalidAmount   = errors.New("loan amount must be greater than zero")
	ErrAlreadyResolved = errors.New("loan already resolved")
	ErrStillPending    = errors.New("loan is still pending")
	ErrNoMessages      = errors.New("there are no messages at the moment")
	ErrCannotPerform   = errors.New("cannot perform operation")
	ErrNumberTaken     = errors.New("loan number already taken")
)

type Loan struct {
	// LoanNumber is unique per account, not globally.
	LoanNumber    int
	AccountNumber string
	DateRequested time.Time
	Amount        decimal.Decimal
	State         State
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DueDate is two months after the request date.
func (l *Loan) DueDate() time.Time { return l.DateRequested.AddDate(0, 2, 0) }
