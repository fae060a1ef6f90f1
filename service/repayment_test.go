package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrowRow(id uint, person, amount, remaining, destination, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "person", "amount", "remaining_amount",
		"destination", "status", "description", "date", "created_at", "updated_at",
	}).AddRow(id, 1, person, amount, remaining, destination, status, "", time.Now(), time.Now(), time.Now())
}

func lendRow(id uint, person, amount, remaining, source, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "person", "amount", "remaining_amount",
		"source", "status", "note", "date", "created_at", "updated_at",
	}).AddRow(id, 1, person, amount, remaining, source, status, "", time.Now(), time.Now(), time.Now())
}

func TestRepayments_Apply_BorrowWallet(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(borrowRow(3, "张三", "500.00", "500.00", "wallet", "pending"))
	// 钱包余额校验
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("1000.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("500.00"))
	// 还款支出流水 + 缓存扣减
	mock.ExpectExec("INSERT INTO `expenses`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("1500.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	// 部分还款：剩余 500−200=300，状态保持 pending
	mock.ExpectExec("UPDATE `borrows`").
		WithArgs("300", "pending", sqlmock.AnyArg(), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `repayments`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repayment, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: TargetBorrow, ID: 3},
		RepaymentInput{Amount: decimal.RequireFromString("200.00"), Pool: "wallet"})
	require.NoError(t, err)
	require.NotNil(t, repayment.BorrowID)
	assert.Equal(t, uint(3), *repayment.BorrowID)
	assert.Equal(t, "偿还 张三 的借款", repayment.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepayments_Apply_LendSavings_Settles(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `lends` .*FOR UPDATE").
		WillReturnRows(lendRow(7, "李四", "300.00", "100.00", "savings", "pending"))
	// 收还款是进账，不做余额校验，直接落储蓄存入
	mock.ExpectExec("INSERT INTO `savings`").WillReturnResult(sqlmock.NewResult(1, 1))
	// 还清最后 100：剩余归零且状态同步置为 settled
	mock.ExpectExec("UPDATE `lends`").
		WithArgs("0", "settled", sqlmock.AnyArg(), 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `repayments`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	repayment, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: TargetLend, ID: 7},
		RepaymentInput{Amount: decimal.RequireFromString("100.00"), Pool: "savings"})
	require.NoError(t, err)
	require.NotNil(t, repayment.LendID)
	assert.Equal(t, "收到 李四 的还款", repayment.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepayments_Apply_Overpayment(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(borrowRow(3, "张三", "500.00", "50.00", "wallet", "pending"))
	mock.ExpectRollback()

	_, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: TargetBorrow, ID: 3},
		RepaymentInput{Amount: decimal.RequireFromString("80.00"), Pool: "wallet"})
	var oerr *OverpaymentError
	require.ErrorAs(t, err, &oerr)
	assert.True(t, oerr.Remaining.Equal(decimal.RequireFromString("50.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepayments_Apply_InsufficientBalance(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(borrowRow(3, "张三", "500.00", "500.00", "wallet", "pending"))
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("10.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectRollback()

	_, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: TargetBorrow, ID: 3},
		RepaymentInput{Amount: decimal.RequireFromString("100.00"), Pool: "wallet"})
	var berr *InsufficientBalanceError
	require.ErrorAs(t, err, &berr)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepayments_Apply_NotFound(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: TargetBorrow, ID: 99},
		RepaymentInput{Amount: decimal.RequireFromString("10.00"), Pool: "wallet"})
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepayments_Apply_InvalidKind(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	_, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: "mortgage", ID: 1},
		RepaymentInput{Amount: decimal.RequireFromString("10.00"), Pool: "wallet"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRepayments_Apply_ZeroAmount(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(borrowRow(3, "张三", "500.00", "500.00", "wallet", "pending"))
	mock.ExpectRollback()

	_, err := NewRepayments(db).Apply(1,
		RepaymentTarget{Kind: TargetBorrow, ID: 3},
		RepaymentInput{Amount: decimal.Zero, Pool: "wallet"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.NoError(t, mock.ExpectationsWereMet())
}
