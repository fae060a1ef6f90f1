package api

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func borrowRow(id uint, person, amount, remaining, destination, status string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "user_id", "person", "amount", "remaining_amount",
		"destination", "status", "description", "date", "created_at", "updated_at",
	}).AddRow(id, 1, person, amount, remaining, destination, status, "", time.Now(), time.Now(), time.Now())
}

func TestBorrowHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 借入落账 + 钱包缓存加款 + 审计收入
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `borrows`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT .* FROM `wallets`").WillReturnRows(walletRow("100.00"))
	mock.ExpectExec("UPDATE `wallets`").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `incomes`").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/borrows", NewBorrowHandler().Create)

	body := `{"person":"张三","amount":500,"destination":"wallet","date":"2024-01-15"}`
	req := httptest.NewRequest("POST", "/borrows", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "创建成功", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowHandler_Create_InvalidPool(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/borrows", NewBorrowHandler().Create)

	// oneof 校验在绑定阶段直接拒绝
	body := `{"person":"张三","amount":500,"destination":"checking"}`
	req := httptest.NewRequest("POST", "/borrows", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestBorrowHandler_Repay_Overpayment(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 剩余 50，还 80 被拒绝
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(borrowRow(3, "张三", "500.00", "50.00", "wallet", "pending"))
	mock.ExpectRollback()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/borrows/:id/repayments", NewBorrowHandler().Repay)

	body := `{"amount":80,"pool":"wallet"}`
	req := httptest.NewRequest("POST", "/borrows/3/repayments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp["message"], "超出剩余未还金额")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowHandler_Repay_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM `borrows` .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{}))
	mock.ExpectRollback()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/borrows/:id/repayments", NewBorrowHandler().Repay)

	body := `{"amount":80,"pool":"wallet"}`
	req := httptest.NewRequest("POST", "/borrows/99/repayments", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowHandler_Get_NotFound(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `borrows`").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/borrows/:id", NewBorrowHandler().Get)

	req := httptest.NewRequest("GET", "/borrows/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBorrowHandler_Get_InvalidID(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/borrows/:id", NewBorrowHandler().Get)

	req := httptest.NewRequest("GET", "/borrows/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
