package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"trackify/config"
	"trackify/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// disabledCache returns a stats cache that never talks to redis, so handler
// tests exercise the database path.
func disabledCache() *service.StatsCache {
	return service.NewStatsCache(&config.RedisConfig{Enabled: false})
}

func transactionColumns() []string {
	return []string{
		"id", "user_id", "amount", "type", "category", "note",
		"date", "created_at", "updated_at", "deleted_at",
	}
}

func TestTransactionHandler_Create(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler(disabledCache()).Create)

	body := `{"amount":49.99,"type":"expense","category":"Food & Dining","note":"lunch","date":"2025-01-15T12:30:00Z"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Transaction added successfully", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 49.99, data["amount"])
	assert.Equal(t, "expense", data["type"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_DateDefaultsToNow(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler(disabledCache()).Create)

	body := `{"amount":1200,"type":"income","category":"Salary"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 201, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	date, err := time.Parse(time.RFC3339, data["date"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), date, time.Minute)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Create_InvalidType(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler(disabledCache()).Create)

	body := `{"amount":10,"type":"transfer","category":"Other"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, `Type must be either "income" or "expense"`, resp["message"])
}

func TestTransactionHandler_Create_NonPositiveAmount(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.POST("/transactions", NewTransactionHandler(disabledCache()).Create)

	body := `{"amount":0,"type":"expense","category":"Other"}`
	req := httptest.NewRequest("POST", "/transactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_List(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(11, 1, 49.99, "expense", "Food & Dining", "lunch", time.Now(), time.Now(), time.Now(), nil).
			AddRow(12, 1, 1200.00, "income", "Salary", "", time.Now(), time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?page=2&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	list := data["list"].([]interface{})
	assert.Len(t, list, 2)

	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(2), pagination["currentPage"])
	assert.Equal(t, float64(3), pagination["totalPages"])
	assert.Equal(t, float64(25), pagination["total"])
	assert.Equal(t, true, pagination["hasNextPage"])
	assert.Equal(t, true, pagination["hasPrevPage"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_PagePastEnd(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?page=9&limit=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	// an empty page, not an error, and the real total is preserved
	assert.Len(t, data["list"].([]interface{}), 0)
	pagination := data["pagination"].(map[string]interface{})
	assert.Equal(t, float64(5), pagination["total"])
	assert.Equal(t, false, pagination["hasNextPage"])
	assert.Equal(t, true, pagination["hasPrevPage"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_InvalidTypeFilter(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?type=transfer", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestTransactionHandler_List_CategorySubstringFilter(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	// mixed-case input becomes a lower-cased substring pattern
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE user_id = \\? AND LOWER\\(category\\) LIKE \\?").
		WithArgs(1, "%food%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT .* FROM `transactions` WHERE user_id = \\? AND LOWER\\(category\\) LIKE \\?").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(11, 1, 49.99, "expense", "Food & Dining", "lunch", time.Now(), time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?category=FoOd", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	require.Len(t, data["list"].([]interface{}), 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_EmptyCategoryParamIsNoFilter(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	// no LIKE clause at all, as the anchored pattern proves
	mock.ExpectQuery("^SELECT count\\(\\*\\) FROM `transactions` WHERE user_id = \\? AND `transactions`\\.`deleted_at` IS NULL$").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(11, 1, 49.99, "expense", "Food & Dining", "lunch", time.Now(), time.Now(), time.Now(), nil).
			AddRow(12, 1, 1200.00, "income", "Salary", "", time.Now(), time.Now(), time.Now(), nil))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?category=", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Len(t, data["list"].([]interface{}), 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_UnknownSortFallsBackToDate(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT .* FROM `transactions` .*ORDER BY date DESC").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	// an arbitrary column name never reaches the ORDER BY clause
	req := httptest.NewRequest("GET", "/transactions?sortBy=password", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_SortByCreatedAt(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery("SELECT .* FROM `transactions` .*ORDER BY created_at ASC").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?sortBy=createdAt&sortOrder=asc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_LimitCappedAt100(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(150))
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions?limit=500", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	pagination := resp["data"].(map[string]interface{})["pagination"].(map[string]interface{})
	assert.Equal(t, float64(100), pagination["limit"])
	assert.Equal(t, float64(2), pagination["totalPages"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_List_CountError(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT count").
		WillReturnError(errors.New("connection lost"))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions", NewTransactionHandler(disabledCache()).List)

	req := httptest.NewRequest("GET", "/transactions", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 500, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Stats(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT type, COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"type", "total", "count"}).
			AddRow("income", 5000.0, 3).
			AddRow("expense", 1250.5, 7))
	mock.ExpectQuery("SELECT category, SUM").
		WillReturnRows(sqlmock.NewRows([]string{"category", "total", "count"}).
			AddRow("Salary", 5000.0, 3).
			AddRow("Food & Dining", 800.5, 5).
			AddRow("Transportation", 450.0, 2))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions/stats", NewTransactionHandler(disabledCache()).Stats)

	req := httptest.NewRequest("GET", "/transactions/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})

	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, 5000.0, stats["income"])
	assert.Equal(t, 1250.5, stats["expense"])
	assert.Equal(t, 3749.5, stats["balance"])
	assert.Equal(t, float64(10), stats["totalTransactions"])

	top := data["topCategories"].([]interface{})
	require.Len(t, top, 3)
	first := top[0].(map[string]interface{})
	assert.Equal(t, "Salary", first["category"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Stats_NoTransactions(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT type, COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"type", "total", "count"}))
	mock.ExpectQuery("SELECT category, SUM").
		WillReturnRows(sqlmock.NewRows([]string{"category", "total", "count"}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/transactions/stats", NewTransactionHandler(disabledCache()).Stats)

	req := httptest.NewRequest("GET", "/transactions/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	stats := data["stats"].(map[string]interface{})
	assert.Equal(t, float64(0), stats["income"])
	assert.Equal(t, float64(0), stats["expense"])
	assert.Equal(t, float64(0), stats["balance"])
	assert.Len(t, data["topCategories"].([]interface{}), 0)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Update(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(11, 1, 49.99, "expense", "Food & Dining", "lunch", time.Now(), time.Now(), time.Now(), nil))

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.PUT("/transactions/:id", NewTransactionHandler(disabledCache()).Update)

	body := `{"amount":75.00,"type":"expense","category":"Shopping","note":"shoes"}`
	req := httptest.NewRequest("PUT", "/transactions/11", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Transaction updated successfully", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, 75.0, data["amount"])
	assert.Equal(t, "Shopping", data["category"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Update_NotOwned(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	// the id exists but belongs to someone else, so the scoped lookup is empty
	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()))

	router := gin.New()
	router.Use(setUserIDMiddleware(2))
	router.PUT("/transactions/:id", NewTransactionHandler(disabledCache()).Update)

	body := `{"amount":75.00,"type":"expense","category":"Shopping"}`
	req := httptest.NewRequest("PUT", "/transactions/11", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Transaction not found", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	mock.ExpectQuery("SELECT .* FROM `transactions`").
		WillReturnRows(sqlmock.NewRows(transactionColumns()).
			AddRow(11, 1, 49.99, "expense", "Food & Dining", "lunch", time.Now(), time.Now(), time.Now(), nil))

	// soft delete
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `transactions`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/transactions/:id", NewTransactionHandler(disabledCache()).Delete)

	req := httptest.NewRequest("DELETE", "/transactions/11", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Transaction deleted successfully", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionHandler_Delete_InvalidID(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()
	testConfig(t)

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.DELETE("/transactions/:id", NewTransactionHandler(disabledCache()).Delete)

	req := httptest.NewRequest("DELETE", "/transactions/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
