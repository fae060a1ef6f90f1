package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalance_WalletBalance(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 收入（排除 source=borrow）− 支出 + 借入 = 1000 − 300 + 200
	mock.ExpectQuery("SELECT .* FROM `incomes`").
		WillReturnRows(sumRow("1000.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").
		WillReturnRows(sumRow("300.00"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").
		WillReturnRows(sumRow("200.00"))

	balance, err := NewBalance(db).WalletBalance(1, nil, nil)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("900.00")), "got %s", balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalance_WalletBalance_Empty(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))

	balance, err := NewBalance(db).WalletBalance(1, nil, nil)
	require.NoError(t, err)
	assert.True(t, balance.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalance_SavingsBalance(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `savings`").
		WithArgs(uint(1), "saved").
		WillReturnRows(sumRow("500.00"))
	mock.ExpectQuery("SELECT .* FROM `savings`").
		WithArgs(uint(1), "spent").
		WillReturnRows(sumRow("120.50"))

	balance, err := NewBalance(db).SavingsBalance(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("379.50")), "got %s", balance)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBalance_PoolBalance_InvalidPool(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	_, err := NewBalance(db).PoolBalance(1, "checking")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestBalance_ReconcileWallet_Repairs(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("800.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("100.00"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	// 缓存行与重算结果不一致，应被修正
	mock.ExpectQuery("SELECT .* FROM `wallets`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
			AddRow(1, 1, "650.00", time.Now(), time.Now()))
	mock.ExpectExec("UPDATE `wallets`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	balance, err := NewBalance(db).ReconcileWallet(1)
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.RequireFromString("700.00")), "got %s", balance)
	require.NoError(t, mock.ExpectationsWereMet())
}
