package mysql

import (
	"testing"
	"time"

	"atm-ledger/internal/domain/account"
	"atm-ledger/internal/infrastructure/codec"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// openTestDB creates an in-memory sqlite DB with both tables migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// one connection, otherwise every new conn sees a fresh :memory: db
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Migrate(db); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func testCodec(t *testing.T) codec.Codec {
	t.Helper()
	c, err := codec.New([]byte("test-secret-0123456789abcdef"))
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return c
}

func makeAccount(number string, balance int64) *account.Account {
	return &account.Account{
		AccountNumber: number,
		PIN:           "123456",
		Holder: account.Holder{
			FirstName: "Peter",
			LastName:  "Arceo",
			Gender:    account.GenderMale,
			Address:   "Bayombong",
			BirthDate: time.Date(2000, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		Balance:           decimal.NewFromInt(balance),
		RemainingAttempts: account.MaxAttempts,
	}
}
