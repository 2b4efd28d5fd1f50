package account

import (
	"time"

	domain "atm-ledger/internal/domain/account"

	"github.com/shopspring/decimal"
)

type EnrollInput struct {
	// AccountNumber is generated when empty.
	AccountNumber string
	PIN           string
	FirstName     string
	LastName      string
	Gender        domain.Gender
	Address       string
	BirthDate     time.Time
	Balance       decimal.Decimal
}

type AccountDTO struct {
	AccountNumber     string          `json:"account_number"`
	FirstName         string          `json:"first_name"`
	LastName          string          `json:"last_name"`
	Gender            domain.Gender   `json:"gender"`
	Address           string          `json:"address"`
	BirthDate         string          `json:"birth_date"`
	Balance           decimal.Decimal `json:"balance"`
	RemainingAttempts int             `json:"remaining_attempts"`
	Locked            bool            `json:"locked"`
	CreatedAt         time.Time       `json:"created_at"`
}

func toDTO(a *domain.Account) AccountDTO {
	return AccountDTO{
		AccountNumber:     a.AccountNumber,
		FirstName:         a.Holder.FirstName,
		LastName:          a.Holder.LastName,
		Gender:            a.Holder.Gender,
		Address:           a.Holder.Address,
		BirthDate:         a.Holder.BirthDate.Format("2006-01-02"),
		Balance:           a.Balance,
		RemainingAttempts: a.RemainingAttempts,
		Locked:            a.Locked(),
		CreatedAt:         a.CreatedAt,
	}
}
