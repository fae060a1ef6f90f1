package service

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walletRow(balance string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "balance", "created_at", "updated_at"}).
		AddRow(1, 1, balance, time.Now(), time.Now())
}

func TestRecorder_CreateIncome_SalarySweep(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	// 钱包既有余额 150，工资入账前应先归集
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("150.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	// 归集转出：负数收入 + 缓存扣减
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("150.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	// 等额储蓄存入
	mock.ExpectExec("INSERT INTO `savings`").WillReturnResult(sqlmock.NewResult(1, 1))
	// 工资本体入账
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("0.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	income, err := NewRecorder(db).CreateIncome(1, IncomeInput{
		Amount:      decimal.RequireFromString("5000.00"),
		Source:      "salary",
		Destination: "wallet",
	})
	require.NoError(t, err)
	assert.True(t, income.Amount.Equal(decimal.RequireFromString("5000.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateIncome_SalaryEmptyWallet_NoSweep(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	// 钱包余额为 0，不触发归集
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("0.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := NewRecorder(db).CreateIncome(1, IncomeInput{
		Amount:      decimal.RequireFromString("5000.00"),
		Source:      "Salary", // 大小写不敏感
		Destination: "wallet",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateIncome_NonSalary_NoSweep(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 非工资收入入钱包：只落收入流水和缓存加款，不查余额、不归集
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("100.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := NewRecorder(db).CreateIncome(1, IncomeInput{
		Amount:      decimal.RequireFromString("200.00"),
		Source:      "bonus",
		Destination: "wallet",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateIncome_SavingsDestination_CreditsSavings(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 入储蓄池的收入必须同步生成储蓄存入记录，
	// 否则储蓄余额（只从 savings 表推导）不会计入这笔存款
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `savings`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	income, err := NewRecorder(db).CreateIncome(1, IncomeInput{
		Amount:      decimal.RequireFromString("200.00"),
		Source:      "bonus",
		Destination: "savings",
	})
	require.NoError(t, err)
	assert.Equal(t, "savings", income.Destination)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateIncome_NegativeAmount(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	_, err := NewRecorder(db).CreateIncome(1, IncomeInput{
		Amount:      decimal.RequireFromString("-10.00"),
		Source:      "salary",
		Destination: "wallet",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRecorder_CreateIncome_InvalidPool(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	_, err := NewRecorder(db).CreateIncome(1, IncomeInput{
		Amount:      decimal.RequireFromString("10.00"),
		Source:      "bonus",
		Destination: "checking",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRecorder_CreateExpense_InsufficientBalance(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("50.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectRollback()

	_, err := NewRecorder(db).CreateExpense(1, ExpenseInput{
		Amount:   decimal.RequireFromString("80.00"),
		Category: "餐饮",
	})
	var berr *InsufficientBalanceError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "wallet", berr.Pool)
	assert.True(t, berr.Available.Equal(decimal.RequireFromString("50.00")))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateExpense_Succeeds(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("500.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectExec("INSERT INTO `expenses`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("500.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	expense, err := NewRecorder(db).CreateExpense(1, ExpenseInput{
		Amount:   decimal.RequireFromString("80.00"),
		Category: "餐饮",
	})
	require.NoError(t, err)
	assert.Equal(t, "餐饮", expense.Category)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateSaving_SpendRequiresBalance(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `savings`").WillReturnRows(sumRow("30.00"))
	mock.ExpectQuery("SELECT .* FROM `savings`").WillReturnRows(sumRow("0"))
	mock.ExpectRollback()

	_, err := NewRecorder(db).CreateSaving(1, SavingInput{
		Amount: decimal.RequireFromString("100.00"),
		Type:   "spend",
	})
	var berr *InsufficientBalanceError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, "savings", berr.Pool)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder_CreateSaving_InvalidType(t *testing.T) {
	db, _, cleanup := setupMockDB(t)
	defer cleanup()

	_, err := NewRecorder(db).CreateSaving(1, SavingInput{
		Amount: decimal.RequireFromString("100.00"),
		Type:   "withdraw",
	})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
}
