package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardHandler_WalletBalance(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 收入 1000 − 支出 300 + 借入 200 = 900
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("1000.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("300.00"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("200.00"))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard/wallet", NewDashboardHandler().WalletBalance)

	req := httptest.NewRequest("GET", "/dashboard/wallet", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "900", data["balance"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDashboardHandler_Summary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 钱包余额三项求和
	mock.ExpectQuery("SELECT .* FROM `incomes`").WillReturnRows(sumRow("1000.00"))
	mock.ExpectQuery("SELECT .* FROM `expenses`").WillReturnRows(sumRow("300.00"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("200.00"))
	// 储蓄余额两项求和
	mock.ExpectQuery("SELECT .* FROM `savings`").WillReturnRows(sumRow("500.00"))
	mock.ExpectQuery("SELECT .* FROM `savings`").WillReturnRows(sumRow("100.00"))
	// 借入/借出在两池的总额
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("200.00"))
	mock.ExpectQuery("SELECT .* FROM `borrows`").WillReturnRows(sumRow("0"))
	mock.ExpectQuery("SELECT .* FROM `lends`").WillReturnRows(sumRow("50.00"))
	mock.ExpectQuery("SELECT .* FROM `lends`").WillReturnRows(sumRow("0"))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/dashboard/summary", NewDashboardHandler().Summary)

	req := httptest.NewRequest("GET", "/dashboard/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "900", data["wallet_balance"])
	assert.Equal(t, "400", data["savings_balance"])
	assert.Equal(t, "200", data["borrow_wallet"])
	assert.Equal(t, "50", data["lend_wallet"])
	require.NoError(t, mock.ExpectationsWereMet())
}
