package mysql

import (
	"fmt"
	"strconv"
	"time"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/domain/loan"
	"atm-ledger/internal/infrastructure/codec"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Table: clients. Every string column except gender holds codec output.
type clientRow struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	AccountNumber string    `gorm:"column:account_number;size:128;not null;uniqueIndex:ux_clients_account_number"`
	PIN           string    `gorm:"column:pin;size:128;not null"`
	FirstName     string    `gorm:"column:first_name;size:512;not null"`
	LastName      string    `gorm:"column:last_name;size:512;not null"`
	Gender        string    `gorm:"column:gender;size:32;not null"`
	Address       string    `gorm:"column:address;type:text"`
	DateOfBirth   time.Time `gorm:"column:date_of_birth"`
	Savings       string    `gorm:"column:savings;size:255;not null"`
	Attempts      int       `gorm:"column:attempts;not null"`
	Version       uint64    `gorm:"column:version;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (clientRow) TableName() string { return "clients" }

// Table: loans. (account_number, loan_number) is unique.
type loanRow struct {
	ID            uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	LoanNumber    int       `gorm:"column:loan_number;not null;uniqueIndex:ux_loans_account_loan,priority:2"`
	AccountNumber string    `gorm:"column:account_number;size:128;not null;uniqueIndex:ux_loans_account_loan,priority:1"`
	DateOfLoan    time.Time `gorm:"column:date_of_loan;not null"`
	Amount        string    `gorm:"column:amount;size:255;not null"`
	Pending       string    `gorm:"column:pending;size:128;not null"`
	Declined      string    `gorm:"column:declined;size:128;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (loanRow) TableName() string { return "loans" }

// Migrate creates or updates both tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&clientRow{}, &loanRow{})
}

// decoder keeps the first decode failure so row mapping reads straight through.
type decoder struct {
	c   codec.Codec
	err error
}

func (d *decoder) str(field, v string) string {
	if d.err != nil {
		return ""
	}
	out, err := d.c.Decode(v)
	if err != nil {
		d.err = fmt.Errorf("decode %s: %w", field, err)
	}
	return out
}

func (d *decoder) money(field, v string) decimal.Decimal {
	s := d.str(field, v)
	if d.err != nil {
		return decimal.Zero
	}
	m, err := decimal.NewFromString(s)
	if err != nil {
		d.err = fmt.Errorf("decode %s: %w", field, codec.ErrCorrupt)
	}
	return m
}

func (d *decoder) flag(field, v string) bool {
	s := d.str(field, v)
	if d.err != nil {
		return false
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		d.err = fmt.Errorf("decode %s: %w", field, codec.ErrCorrupt)
	}
	return b
}

func encodeBool(c codec.Codec, b bool) string { return c.Encode(strconv.FormatBool(b)) }

func toClientRow(c codec.Codec, a *account.Account) *clientRow {
	return &clientRow{
		AccountNumber: c.Encode(a.AccountNumber),
		PIN:           c.Encode(a.PIN),
		FirstName:     c.Encode(a.Holder.FirstName),
		LastName:      c.Encode(a.Holder.LastName),
		Gender:        string(a.Holder.Gender),
		Address:       c.Encode(a.Holder.Address),
		DateOfBirth:   a.Holder.BirthDate.UTC(),
		Savings:       c.Encode(a.Balance.String()),
		Attempts:      a.RemainingAttempts,
		Version:       a.Version,
	}
}

func fromClientRow(c codec.Codec, row *clientRow) (*account.Account, error) {
	d := &decoder{c: c}
	a := &account.Account{
		AccountNumber: d.str("account_number", row.AccountNumber),
		PIN:           d.str("pin", row.PIN),
		Holder: account.Holder{
			FirstName: d.str("first_name", row.FirstName),
			LastName:  d.str("last_name", row.LastName),
			Gender:    account.Gender(row.Gender),
			Address:   d.str("address", row.Address),
			BirthDate: row.DateOfBirth.UTC(),
		},
		Balance:           d.money("savings", row.Savings),
		RemainingAttempts: row.Attempts,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if d.err != nil {
		return nil, d.err
	}
	return a, nil
}

func toLoanRow(c codec.Codec, l *loan.Loan) *loanRow {
	return &loanRow{
		LoanNumber:    l.LoanNumber,
		AccountNumber: c.Encode(l.AccountNumber),
		DateOfLoan:    l.DateRequested.UTC(),
		Amount:        c.Encode(l.Amount.String()),
		Pending:       encodeBool(c, l.State == loan.StatePending),
		Declined:      encodeBool(c, l.State == loan.StateDeclined),
	}
}

func fromLoanRow(c codec.Codec, row *loanRow) (*loan.Loan, error) {
	d := &decoder{c: c}
	l := &loan.Loan{
		LoanNumber:    row.LoanNumber,
		AccountNumber: d.str("account_number", row.AccountNumber),
		DateRequested: row.DateOfLoan.UTC(),
		Amount:        d.money("amount", row.Amount),
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
	pending := d.flag("pending", row.Pending)
	declined := d.flag("declined", row.Declined)
	if d.err != nil {
		return nil, d.err
	}
	switch {
	case pending:
		l.State = loan.StatePending
	case declined:
		l.State = loan.StateDeclined
	default:
		l.State = loan.StateApproved
	}
	return l, nil
}
