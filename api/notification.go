package api

import (
	"trackify/database"
	"trackify/middleware"
	"trackify/models"

	"github.com/gin-gonic/gin"
)

// NotificationHandler serves per-user in-app notifications.
type NotificationHandler struct{}

// NewNotificationHandler creates a notification handler.
func NewNotificationHandler() *NotificationHandler {
	return &NotificationHandler{}
}

// NotificationRequest is the create payload.
type NotificationRequest struct {
	Type    string `json:"type" binding:"required" example:"info"`
	Title   string `json:"title" binding:"required,max=100" example:"Budget alert"`
	Message string `json:"message" binding:"max=255" example:"You spent 80% of your budget"`
}

// List returns the caller's 50 most recent notifications, newest first.
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=[]models.Notification}
// @Failure 401 {object} Response
// @Router /api/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var notifications []models.Notification
	if err := database.DB.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(50).
		Find(&notifications).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to list notifications"))
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	Success(c, notifications)
}

// MarkAllRead flips every unread notification of the caller to read.
// @Summary Mark all notifications read
// @Tags notifications
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response
// @Failure 401 {object} Response
// @Router /api/notifications/mark-all-read [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", userID, false).
		Update("read", true).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to mark notifications read"))
		return
	}
	SuccessWithMessage(c, "All notifications marked as read", nil)
}

// Create adds a notification for the caller. Kept for testing and demo use.
// @Summary Create notification
// @Tags notifications
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NotificationRequest true "notification payload"
// @Success 201 {object} Response{data=models.Notification}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/notifications [post]
func (h *NotificationHandler) Create(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var req NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Type and title are required"))
		return
	}
	if !models.ValidNotificationType(req.Type) {
		BadRequest(c, "Type must be one of success, warning, error, info")
		return
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    req.Type,
		Title:   req.Title,
		Message: req.Message,
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to create notification"))
		return
	}
	Created(c, "Notification created", notification)
}
