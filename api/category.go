package api

import (
	"errors"
	"strconv"
	"strings"

	"trackify/database"
	"trackify/middleware"
	"trackify/models"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
)

// CategoryHandler serves user-owned category CRUD and defaults seeding.
type CategoryHandler struct{}

// NewCategoryHandler creates a category handler.
func NewCategoryHandler() *CategoryHandler {
	return &CategoryHandler{}
}

// isDuplicateName reports whether err is the MySQL duplicate-key error on the
// per-user name index. The pre-insert lookup cannot see soft-deleted rows,
// which still occupy the index, so the INSERT itself is the last line of
// defense against a reused name.
func isDuplicateName(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}

// CategoryRequest is the create/update payload.
type CategoryRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100" example:"Groceries"`
	Type  string `json:"type" binding:"required" example:"expense"`
	Color string `json:"color" binding:"omitempty,max=20" example:"#EF4444"`
	Icon  string `json:"icon" binding:"omitempty,max=10" example:"🛒"`
}

// List returns the caller's categories, optionally filtered by type, sorted
// by name.
// @Summary List categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param type query string false "income or expense"
// @Success 200 {object} Response{data=[]models.Category}
// @Failure 401 {object} Response
// @Router /api/categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	query := database.DB.Where("user_id = ?", userID)
	if t := c.Query("type"); t != "" {
		if !models.ValidTransactionType(t) {
			BadRequest(c, `Type must be either "income" or "expense"`)
			return
		}
		query = query.Where("type = ?", t)
	}

	var categories []models.Category
	if err := query.Order("name ASC").Find(&categories).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to list categories"))
		return
	}
	if categories == nil {
		categories = []models.Category{}
	}
	Success(c, categories)
}

// Get returns one of the caller's categories by id.
// @Summary Get category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response{data=models.Category}
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "Invalid category ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "Category not found")
		return
	}
	Success(c, category)
}

// Create adds a category for the caller. Names are unique per user.
// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "category payload"
// @Success 201 {object} Response{data=models.Category}
// @Failure 400 {object} Response "validation error or duplicate name"
// @Failure 401 {object} Response
// @Router /api/categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Name and type are required"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "Name must not be empty")
		return
	}
	if !models.ValidTransactionType(req.Type) {
		BadRequest(c, `Type must be either "income" or "expense"`)
		return
	}

	var existing models.Category
	if err := database.DB.Where("user_id = ? AND name = ?", userID, req.Name).
		First(&existing).Error; err == nil {
		BadRequest(c, "Category with this name already exists")
		return
	}

	category := models.Category{
		UserID: userID,
		Name:   req.Name,
		Type:   req.Type,
		Color:  req.Color,
		Icon:   req.Icon,
	}
	if err := database.DB.Create(&category).Error; err != nil {
		if isDuplicateName(err) {
			BadRequest(c, "Category with this name already exists")
			return
		}
		InternalError(c, SafeErrorMessage(err, "Failed to create category"))
		return
	}
	Created(c, "Category created successfully", category)
}

// Update modifies one of the caller's categories.
// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Param request body CategoryRequest true "category payload"
// @Success 200 {object} Response{data=models.Category}
// @Failure 400 {object} Response "validation error or duplicate name"
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "Invalid category ID")
		return
	}

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Name and type are required"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		BadRequest(c, "Name must not be empty")
		return
	}
	if !models.ValidTransactionType(req.Type) {
		BadRequest(c, `Type must be either "income" or "expense"`)
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "Category not found")
		return
	}

	// Renaming must not collide with another of the caller's categories.
	if req.Name != category.Name {
		var existing models.Category
		if err := database.DB.Where("user_id = ? AND name = ? AND id <> ?", userID, req.Name, category.ID).
			First(&existing).Error; err == nil {
			BadRequest(c, "Category with this name already exists")
			return
		}
	}

	category.Name = req.Name
	category.Type = req.Type
	if req.Color != "" {
		category.Color = req.Color
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}

	if err := database.DB.Save(&category).Error; err != nil {
		if isDuplicateName(err) {
			BadRequest(c, "Category with this name already exists")
			return
		}
		InternalError(c, SafeErrorMessage(err, "Failed to update category"))
		return
	}
	SuccessWithMessage(c, "Category updated successfully", category)
}

// Delete removes one of the caller's categories.
// @Summary Delete category
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path int true "category id"
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		BadRequest(c, "Invalid category ID")
		return
	}

	var category models.Category
	if err := database.DB.Where("id = ? AND user_id = ?", id, userID).First(&category).Error; err != nil {
		NotFound(c, "Category not found")
		return
	}

	if err := database.DB.Delete(&category).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to delete category"))
		return
	}
	SuccessWithMessage(c, "Category deleted successfully", nil)
}

// CreateDefaults seeds the standard category set for the caller and returns
// the full list afterwards. Existing names are skipped so the endpoint can be
// retried.
// @Summary Seed default categories
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 201 {object} Response{data=[]models.Category}
// @Failure 401 {object} Response
// @Router /api/categories/defaults [post]
func (h *CategoryHandler) CreateDefaults(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var existing []models.Category
	if err := database.DB.Where("user_id = ?", userID).Find(&existing).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to seed categories"))
		return
	}
	taken := make(map[string]bool, len(existing))
	for _, cat := range existing {
		taken[cat.Name] = true
	}

	var toCreate []models.Category
	for _, cat := range models.DefaultCategories() {
		if taken[cat.Name] {
			continue
		}
		cat.UserID = userID
		cat.IsDefault = true
		toCreate = append(toCreate, cat)
	}
	if len(toCreate) > 0 {
		if err := database.DB.Create(&toCreate).Error; err != nil {
			// A soft-deleted category still holds its name in the unique
			// index, so a default by that name conflicts on insert.
			if isDuplicateName(err) {
				BadRequest(c, "Category with this name already exists")
				return
			}
			InternalError(c, SafeErrorMessage(err, "Failed to seed categories"))
			return
		}
	}

	var all []models.Category
	if err := database.DB.Where("user_id = ?", userID).Order("name ASC").Find(&all).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to seed categories"))
		return
	}
	Created(c, "Default categories created", all)
}
