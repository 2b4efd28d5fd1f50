package account

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MaxAttempts is the PIN attempt budget an account starts with and is reset to on unlock.
const MaxAttempts = 5

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicate         = errors.New("account already exists")
	ErrLocked            = errors.New("account is locked")
	ErrNotLocked         = errors.New("account is not locked")
	ErrIncorrectPIN      = errors.New("incorrect pin")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStale             = errors.New("account was modified concurrently")
	ErrInvalid           = errors.New("invalid account data")
)

type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderPreferNotToSay:
		return true
	}
	return false
}

// Holder is the personal data of the account owner. Opaque to the ledger.
type Holder struct {
	FirstName string
	LastName  string
	Gender    Gender
	Address   string
	BirthDate time.Time
}

func (h Holder) FullName() string {
	return strings.TrimSpace(h.FirstName + " " + h.LastName)
}

type Account struct {
	AccountNumber     string
	PIN               string
	Holder            Holder
	Balance           decimal.Decimal
	RemainingAttempts int
	// Version increments on every balance write; used for compare-and-swap.
	Version   uint64
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) Locked() bool { return a.RemainingAttempts <= 0 }

// LockedView is the administrator's projection of a locked account.
type LockedView struct {
	AccountNumber string `json:"account_number"`
	Name          string `json:"name"`
	Gender        Gender `json:"gender"`
}

func (a *Account) LockedView() LockedView {
	return LockedView{AccountNumber: a.AccountNumber, Name: a.Holder.FullName(), Gender: a.Holder.Gender}
}

// ValidNumber reports whether s is a 9-digit account number.
func ValidNumber(s string) bool { return allDigits(s, 9) }

// ValidPIN reports whether s is a 6-digit pin.
func ValidPIN(s string) bool { return allDigits(s, 6) }

func allDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
