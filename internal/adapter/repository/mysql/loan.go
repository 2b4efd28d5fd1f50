package mysql

import (
	"context"
	"errors"
	"fmt"

	loanDomain "atm-ledger/internal/domain/loan"
	"atm-ledger/internal/infrastructure/codec"

	"gorm.io/gorm"
)

type LoanRepository struct {
	db    *gorm.DB
	codec codec.Codec
}

var _ loanDomain.Repository = (*LoanRepository)(nil)

func NewLoanRepository(db *gorm.DB, c codec.Codec) *LoanRepository {
	return &LoanRepository{db: db, codec: c}
}

func (r *LoanRepository) one(ctx context.Context, accountNumber string, loanNumber int) *gorm.DB {
	return r.db.WithContext(ctx).Model(&loanRow{}).
		Where("account_number = ? AND loan_number = ?", r.codec.Encode(accountNumber), loanNumber)
}

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	var n int64
	if err := r.one(ctx, l.AccountNumber, l.LoanNumber).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return loanDomain.ErrNumberTaken
	}

	row := toLoanRow(r.codec, l)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return loanDomain.ErrNumberTaken
		}
		return err
	}
	l.CreatedAt, l.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *LoanRepository) Get(ctx context.Context, accountNumber string, loanNumber int) (*loanDomain.Loan, error) {
	var row loanRow
	err := r.one(ctx, accountNumber, loanNumber).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanDomain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromLoanRow(r.codec, &row)
}

func (r *LoanRepository) ListByAccount(ctx context.Context, accountNumber string) ([]*loanDomain.Loan, error) {
	var rows []loanRow
	err := r.db.WithContext(ctx).
		Where("account_number = ?", r.codec.Encode(accountNumber)).
		Order("loan_number ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return r.decodeAll(rows)
}

func (r *LoanRepository) List(ctx context.Context) (map[string][]*loanDomain.Loan, error) {
	var rows []loanRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	loans, err := r.decodeAll(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]*loanDomain.Loan)
	for _, l := range loans {
		out[l.AccountNumber] = append(out[l.AccountNumber], l)
	}
	return out, nil
}

func (r *LoanRepository) decodeAll(rows []loanRow) ([]*loanDomain.Loan, error) {
	out := make([]*loanDomain.Loan, 0, len(rows))
	for i := range rows {
		l, err := fromLoanRow(r.codec, &rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, nil
}

func (r *LoanRepository) MaxLoanNumber(ctx context.Context, accountNumber string) (int, error) {
	var n int
	row := r.db.WithContext(ctx).Model(&loanRow{}).
		Select("COALESCE(MAX(loan_number), 0)").
		Where("account_number = ?", r.codec.Encode(accountNumber)).
		Row()
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *LoanRepository) Resolve(ctx context.Context, accountNumber string, loanNumber int, to loanDomain.State) error {
	if !to.Terminal() {
		return fmt.Errorf("resolve to %s: %w", to, loanDomain.ErrCannotPerform)
	}
	res := r.one(ctx, accountNumber, loanNumber).
		Where("pending = ?", encodeBool(r.codec, true)).
		Updates(map[string]any{
			"pending":  encodeBool(r.codec, false),
			"declined": encodeBool(r.codec, to == loanDomain.StateDeclined),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, accountNumber, loanNumber); err != nil {
			return err
		}
		return loanDomain.ErrAlreadyResolved
	}
	return nil
}

func (r *LoanRepository) Delete(ctx context.Context, accountNumber string, loanNumber int) error {
	res := r.db.WithContext(ctx).
		Where("account_number = ? AND loan_number = ? AND pending = ?",
			r.codec.Encode(accountNumber), loanNumber, encodeBool(r.codec, false)).
		Delete(&loanRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := r.Get(ctx, accountNumber, loanNumber); err != nil {
			return err
		}
		return loanDomain.ErrStillPending
	}
	return nil
}

func (r *LoanRepository) DeleteByAccount(ctx context.Context, accountNumber string) error {
	return r.db.WithContext(ctx).
		Where("account_number = ?", r.codec.Encode(accountNumber)).
		Delete(&loanRow{}).Error
}

func (r *LoanRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&loanRow{}).Error
}
