package mysql

import (
	"context"

	"atm-ledger/internal/domain/loan"
	"atm-ledger/internal/domain/uow"
	"atm-ledger/internal/infrastructure/codec"

	"gorm.io/gorm"
)

// GormUoW runs repository work inside one gorm transaction. Every repository
// it hands out shares the codec, so encoded columns stay comparable.
type GormUoW struct {
	db    *gorm.DB
	codec codec.Codec
}

var _ uow.UnitOfWork = (*GormUoW)(nil)

func NewGormUoW(db *gorm.DB, c codec.Codec) *GormUoW { return &GormUoW{db: db, codec: c} }

func (u *GormUoW) repos(tx *gorm.DB) uow.Repos {
	return uow.Repos{
		Accounts: &AccountRepository{db: tx, codec: u.codec},
		Loans:    &LoanRepository{db: tx, codec: u.codec},
	}
}

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(u.repos(tx))
	})
}

func (u *GormUoW) WithinLoanTx(ctx context.Context, accountNumber string, loanNumber int, fn func(r uow.Repos, l *loan.Loan) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := u.repos(tx)
		l, err := r.Loans.Get(ctx, accountNumber, loanNumber)
		if err != nil {
			return err
		}
		return fn(r, l)
	})
}
