package loan

import (
	"time"

	domain "atm-ledger/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type RequestLoanInput struct {
	AccountNumber string
	Amount        decimal.Decimal
	// Date is truncated to a calendar day; zero means today.
	Date time.Time
}

type LoanDTO struct {
	LoanNumber    int             `json:"loan_number"`
	AccountNumber string          `json:"account_number"`
	DateRequested string          `json:"date_requested"`
	Amount        decimal.Decimal `json:"amount"`
	State         string          `json:"state"`
	DueDate       string          `json:"due_date,omitempty"`
}

type ResolutionDTO struct {
	Loan LoanDTO `json:"loan"`
	// Balance is the account balance after an approval credit.
	Balance *decimal.Decimal `json:"balance,omitempty"`
}

const dateFormat = "2006-01-02"

func toDTO(l *domain.Loan) LoanDTO {
	dto := LoanDTO{
		LoanNumber:    l.LoanNumber,
		AccountNumber: l.AccountNumber,
		DateRequested: l.DateRequested.Format(dateFormat),
		Amount:        l.Amount,
		State:         string(l.State),
	}
	if l.State == domain.StateApproved {
		dto.DueDate = l.DueDate().Format(dateFormat)
	}
	return dto
}
