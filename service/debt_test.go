package service

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebt_CreateBorrow_Wallet(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `borrows`").WillReturnResult(sqlmock.NewResult(1, 1))
	// 入钱包只同步缓存，审计收入不再重复计入
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("100.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	borrow, err := NewDebt(db).CreateBorrow(1, BorrowInput{
		Person:      "张三",
		Amount:      decimal.RequireFromString("500.00"),
		Destination: "wallet",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", borrow.Status)
	assert.True(t, borrow.RemainingAmount.Equal(borrow.Amount))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_CreateBorrow_Savings(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `borrows`").WillReturnResult(sqlmock.NewResult(1, 1))
	// 入储蓄生成储蓄存入流水，不碰钱包缓存
	mock.ExpectExec("INSERT INTO `savings`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	_, err := NewDebt(db).CreateBorrow(1, BorrowInput{
		Person:      "张三",
		Amount:      decimal.RequireFromString("500.00"),
		Destination: "savings",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_CreateBorrow_Invalid(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	var verr *ValidationError

	_, err := NewDebt(db).CreateBorrow(1, BorrowInput{
		Person: "张三", Amount: decimal.Zero, Destination: "wallet",
	})
	require.ErrorAs(t, err, &verr)

	_, err = NewDebt(db).CreateBorrow(1, BorrowInput{
		Person: "张三", Amount: decimal.RequireFromString("10.00"), Destination: "checking",
	})
	require.ErrorAs(t, err, &verr)

	_, err = NewDebt(db).CreateBorrow(1, BorrowInput{
		Person: "  ", Amount: decimal.RequireFromString("10.00"), Destination: "wallet",
	})
	require.ErrorAs(t, err, &verr)
}

func TestDebt_CreateLend_InsufficientWallet(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("30.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectRollback()

	_, err := NewDebt(db).CreateLend(1, LendInput{
		Person: "李四",
		Amount: decimal.RequireFromString("100.00"),
		Source: "wallet",
	})
	var berr *InsufficientBalanceError
	require.ErrorAs(t, err, &berr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_CreateLend_Wallet(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("1000.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectExec("INSERT INTO `lends`").WillReturnResult(sqlmock.NewResult(1, 1))
	// 借出出账落支出流水，类别固定为 lend
	mock.ExpectExec("INSERT INTO `expenses`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("1000.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	lend, err := NewDebt(db).CreateLend(1, LendInput{
		Person: "李四",
		Amount: decimal.RequireFromString("100.00"),
		Source: "wallet",
	})
	require.NoError(t, err)
	assert.Equal(t, "pending", lend.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_DeleteBorrow_Wallet(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows`").
		WillReturnRows(borrowRow(3, "张三", "500.00", "200.00", "wallet", "pending"))
	// 子还款记录级联删除（软删除）
	mock.ExpectExec("UPDATE `repayments`").WillReturnResult(sqlmock.NewResult(0, 2))
	// 冲销钱包缓存
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("800.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `borrows`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewDebt(db).DeleteBorrow(1, 3)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_DeleteLend_WalletRefund(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `lends`").
		WillReturnRows(lendRow(7, "李四", "300.00", "300.00", "wallet", "pending"))
	mock.ExpectExec("UPDATE `repayments`").WillReturnResult(sqlmock.NewResult(0, 0))
	// 出账退回钱包：冲销收入 + 缓存增加
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("100.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `lends`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewDebt(db).DeleteLend(1, 7)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_UpdateBorrow_AmountRecomputesRemaining(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	// 原借入 500，已还 200（剩余 300）；金额改为 400 → 剩余 = 400 − 200 = 200
	mock.ExpectQuery("SELECT .* FROM `borrows`").
		WillReturnRows(borrowRow(3, "张三", "500.00", "300.00", "wallet", "pending"))
	// 金额减少 100，钱包缓存同步扣减
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("600.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `borrows`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT .* FROM `borrows`").
		WillReturnRows(borrowRow(3, "张三", "400.00", "200.00", "wallet", "pending"))
	mock.ExpectCommit()

	amount := decimal.RequireFromString("400.00")
	borrow, err := NewDebt(db).UpdateBorrow(1, 3, DebtUpdate{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, borrow.RemainingAmount.Equal(decimal.RequireFromString("200.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDebt_GetBorrow_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `borrows`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewDebt(db).GetBorrow(1, 99)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
