package api

import (
	"strconv"
	"strings"
	"time"

	"trackify/database"
	"trackify/middleware"
	"trackify/models"
	"trackify/service"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves transaction CRUD, listing and statistics.
type TransactionHandler struct {
	cache *service.StatsCache
}

// NewTransactionHandler creates a transaction handler. cache may be a
// disabled StatsCache; it is never nil-checked by callers.
func NewTransactionHandler(cache *service.StatsCache) *TransactionHandler {
	return &TransactionHandler{cache: cache}
}

// TransactionRequest is the create/update payload. Update is a full replace
// of the mutable fields.
type TransactionRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0" example:"49.99"`
	Type     string  `json:"type" binding:"required" example:"expense"`
	Category string  `json:"category" binding:"required" example:"Food & Dining"`
	Note     string  `json:"note" binding:"max=255" example:"lunch"`
	Date     string  `json:"date" example:"2025-01-15T12:30:00Z"`
}

// TransactionListRequest is the list query string.
type TransactionListRequest struct {
	Page      int    `form:"page" example:"1"`
	Limit     int    `form:"limit" example:"10"`
	Type      string `form:"type" example:"expense"`
	Category  string `form:"category" example:"food"`
	SortBy    string `form:"sortBy" example:"date"`
	SortOrder string `form:"sortOrder" example:"desc"`
}

// sortColumns whitelists sortable fields against injection.
var sortColumns = map[string]string{
	"date":      "date",
	"amount":    "amount",
	"category":  "category",
	"createdAt": "created_at",
}

// parseDate accepts RFC3339 or a plain date; empty means "now".
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", s, time.Local)
}

// validateTransactionRequest normalizes and checks the shared payload rules.
func validateTransactionRequest(req *TransactionRequest) string {
	if !models.ValidTransactionType(req.Type) {
		return `Type must be either "income" or "expense"`
	}
	req.Category = strings.TrimSpace(req.Category)
	if req.Category == "" {
		return "Category must not be empty"
	}
	return ""
}

// Create adds a transaction for the caller.
// @Summary Create transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "transaction payload"
// @Success 201 {object} Response{data=models.Transaction}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Amount, type, and category are required"))
		return
	}
	if msg := validateTransactionRequest(&req); msg != "" {
		BadRequest(c, msg)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "Invalid date format, expected RFC3339 or YYYY-MM-DD")
		return
	}

	tx := models.Transaction{
		UserID:   userID,
		Amount:   req.Amount,
		Type:     req.Type,
		Category: req.Category,
		Note:     req.Note,
		Date:     date,
	}
	if err := database.DB.Create(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to create transaction"))
		return
	}

	h.cache.Invalidate(c.Request.Context(), userID)
	Created(c, "Transaction added successfully", tx)
}

// List returns a filtered, sorted page of the caller's transactions.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "page, 1-based" default(1)
// @Param limit query int false "page size" default(10)
// @Param type query string false "income or expense"
// @Param category query string false "category substring, case-insensitive"
// @Param sortBy query string false "date | amount | category | createdAt" default(date)
// @Param sortOrder query string false "asc | desc" default(desc)
// @Success 200 {object} Response{data=PageResponse{list=[]models.Transaction}}
// @Failure 401 {object} Response
// @Router /api/transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req TransactionListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid query parameters"))
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.Limit <= 0 {
		req.Limit = 10
	}
	if req.Limit > 100 {
		req.Limit = 100
	}

	query := database.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if req.Type != "" {
		if !models.ValidTransactionType(req.Type) {
			BadRequest(c, `Type must be either "income" or "expense"`)
			return
		}
		query = query.Where("type = ?", req.Type)
	}
	// An empty category means no filter, not "match empty string".
	if req.Category != "" {
		query = query.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(req.Category)+"%")
	}

	column, ok := sortColumns[req.SortBy]
	if !ok {
		column = "date"
	}
	direction := "DESC"
	if strings.EqualFold(req.SortOrder, "asc") {
		direction = "ASC"
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to list transactions"))
		return
	}

	var transactions []models.Transaction
	offset := (req.Page - 1) * req.Limit
	if err := query.Order(column + " " + direction).
		Offset(offset).Limit(req.Limit).
		Find(&transactions).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to list transactions"))
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	Success(c, PageResponse{
		List:       transactions,
		Pagination: NewPagination(req.Page, req.Limit, total),
	})
}

// StatsSummary totals the caller's transactions by type.
type StatsSummary struct {
	Income            float64 `json:"income"`
	Expense           float64 `json:"expense"`
	Balance           float64 `json:"balance"`
	TotalTransactions int64   `json:"totalTransactions"`
}

// CategoryStat is one row of the top-categories ranking.
type CategoryStat struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// StatsResponse is the stats endpoint payload.
type StatsResponse struct {
	Stats         StatsSummary   `json:"stats"`
	TopCategories []CategoryStat `json:"topCategories"`
}

// Stats aggregates the caller's transactions: per-type totals, the running
// balance and the top 5 categories by summed amount. Served from the redis
// cache when enabled.
// @Summary Transaction statistics
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=StatsResponse}
// @Failure 401 {object} Response
// @Router /api/transactions/stats [get]
func (h *TransactionHandler) Stats(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	ctx := c.Request.Context()

	var cached StatsResponse
	if h.cache.Get(ctx, userID, &cached) {
		Success(c, cached)
		return
	}

	type typeRow struct {
		Type  string
		Total float64
		Count int64
	}
	var byType []typeRow
	if err := database.DB.Model(&models.Transaction{}).
		Select("type, COALESCE(SUM(amount), 0) as total, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("type").
		Scan(&byType).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to compute statistics"))
		return
	}

	// Users with no transactions get all-zero stats, not an error.
	var summary StatsSummary
	for _, row := range byType {
		switch row.Type {
		case models.TypeIncome:
			summary.Income = row.Total
		case models.TypeExpense:
			summary.Expense = row.Total
		}
		summary.TotalTransactions += row.Count
	}
	summary.Balance = summary.Income - summary.Expense

	topCategories := make([]CategoryStat, 0, 5)
	if err := database.DB.Model(&models.Transaction{}).
		Select("category, SUM(amount) as total, COUNT(*) as count").
		Where("user_id = ?", userID).
		Group("category").
		Order("total DESC").
		Limit(5).
		Scan(&topCategories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to compute statistics"))
		return
	}

	resp := StatsResponse{Stats: summary, TopCategories: topCategories}
	h.cache.Set(ctx, userID, resp)
	Success(c, resp)
}

// Update replaces the mutable fields of one of the caller's transactions.
// A transaction owned by someone else is reported as not found.
// @Summary Update transaction
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Param request body TransactionRequest true "transaction payload"
// @Success 200 {object} Response{data=models.Transaction}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "Invalid transaction ID")
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Amount, type, and category are required"))
		return
	}
	if msg := validateTransactionRequest(&req); msg != "" {
		BadRequest(c, msg)
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		BadRequest(c, "Invalid date format, expected RFC3339 or YYYY-MM-DD")
		return
	}

	// Owner scoping: a wrong owner looks identical to a missing record.
	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "Transaction not found")
		return
	}

	tx.Amount = req.Amount
	tx.Type = req.Type
	tx.Category = req.Category
	tx.Note = req.Note
	tx.Date = date

	if err := database.DB.Save(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to update transaction"))
		return
	}

	h.cache.Invalidate(c.Request.Context(), userID)
	SuccessWithMessage(c, "Transaction updated successfully", tx)
}

// Delete removes one of the caller's transactions.
// @Summary Delete transaction
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param id path int true "transaction id"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "Invalid transaction ID")
		return
	}

	var tx models.Transaction
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		NotFound(c, "Transaction not found")
		return
	}

	if err := database.DB.Delete(&tx).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to delete transaction"))
		return
	}

	h.cache.Invalidate(c.Request.Context(), userID)
	SuccessWithMessage(c, "Transaction deleted successfully", nil)
}
