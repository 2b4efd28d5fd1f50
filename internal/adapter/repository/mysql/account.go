package mysql

import (
	"context"
	"errors"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/infrastructure/codec"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type AccountRepository struct {
	db    *gorm.DB
	codec codec.Codec
}

var _ account.Repository = (*AccountRepository)(nil)

func NewAccountRepository(db *gorm.DB, c codec.Codec) *AccountRepository {
	return &AccountRepository{db: db, codec: c}
}

func (r *AccountRepository) byNumber(ctx context.Context, accountNumber string) *gorm.DB {
	return r.db.WithContext(ctx).Model(&clientRow{}).
		Where("account_number = ?", r.codec.Encode(accountNumber))
}

func (r *AccountRepository) exists(ctx context.Context, accountNumber string) (bool, error) {
	var n int64
	if err := r.byNumber(ctx, accountNumber).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *AccountRepository) Create(ctx context.Context, a *account.Account) error {
	found, err := r.exists(ctx, a.AccountNumber)
	if err != nil {
		return err
	}
	if found {
		return account.ErrDuplicate
	}

	row := toClientRow(r.codec, a)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account.ErrDuplicate
		}
		return err
	}
	a.CreatedAt, a.UpdatedAt = row.CreatedAt, row.UpdatedAt
	return nil
}

func (r *AccountRepository) GetByAccountNumber(ctx context.Context, accountNumber string) (*account.Account, error) {
	var row clientRow
	err := r.byNumber(ctx, accountNumber).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, account.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromClientRow(r.codec, &row)
}

func (r *AccountRepository) List(ctx context.Context) (map[string]*account.Account, error) {
	var rows []clientRow
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*account.Account, len(rows))
	for i := range rows {
		a, err := fromClientRow(r.codec, &rows[i])
		if err != nil {
			return nil, err
		}
		out[a.AccountNumber] = a
	}
	return out, nil
}

func (r *AccountRepository) Delete(ctx context.Context, accountNumber string) error {
	res := r.db.WithContext(ctx).
		Where("account_number = ?", r.codec.Encode(accountNumber)).
		Delete(&clientRow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return account.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Where("1 = 1").Delete(&clientRow{}).Error
}

func (r *AccountRepository) UpdateBalance(ctx context.Context, accountNumber string, newBalance decimal.Decimal, expectedVersion uint64) error {
	if newBalance.IsNegative() {
		return account.ErrInsufficientFunds
	}
	res := r.byNumber(ctx, accountNumber).
		Where("version = ?", expectedVersion).
		Updates(map[string]any{
			"savings": r.codec.Encode(newBalance.String()),
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missOr(ctx, accountNumber, account.ErrStale)
	}
	return nil
}

func (r *AccountRepository) UpdateAttempts(ctx context.Context, accountNumber string, expected, attempts int) error {
	if attempts < 0 || attempts > account.MaxAttempts {
		return account.ErrInvalid
	}
	if expected == attempts {
		// MySQL reports 0 affected rows for a no-op write
		a, err := r.GetByAccountNumber(ctx, accountNumber)
		if err != nil {
			return err
		}
		if a.RemainingAttempts != expected {
			return account.ErrStale
		}
		return nil
	}
	res := r.byNumber(ctx, accountNumber).
		Where("attempts = ?", expected).
		Update("attempts", attempts)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return r.missOr(ctx, accountNumber, account.ErrStale)
	}
	return nil
}

func (r *AccountRepository) DecrementAttempts(ctx context.Context, accountNumber string) (int, error) {
	res := r.byNumber(ctx, accountNumber).
		Where("attempts > 0").
		Update("attempts", gorm.Expr("attempts - 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, r.missOr(ctx, accountNumber, account.ErrLocked)
	}
	var row clientRow
	if err := r.byNumber(ctx, accountNumber).Select("attempts").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, account.ErrNotFound
		}
		return 0, err
	}
	return row.Attempts, nil
}

// missOr tells a vanished row apart from a failed condition.
func (r *AccountRepository) missOr(ctx context.Context, accountNumber string, condErr error) error {
	found, err := r.exists(ctx, accountNumber)
	if err != nil {
		return err
	}
	if !found {
		return account.ErrNotFound
	}
	return condErr
}
