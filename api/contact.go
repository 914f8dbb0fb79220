package api

import (
	"trackify/database"
	"trackify/models"
	"trackify/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ContactHandler serves the public contact form.
type ContactHandler struct {
	emailService *service.EmailService
}

// NewContactHandler creates a contact handler.
func NewContactHandler(emailService *service.EmailService) *ContactHandler {
	return &ContactHandler{emailService: emailService}
}

// ContactRequest is the contact form payload.
type ContactRequest struct {
	Name    string `json:"name" binding:"required,max=100" example:"Ravi"`
	Email   string `json:"email" binding:"required,email" example:"ravi@example.com"`
	Message string `json:"message" binding:"required" example:"Hello!"`
}

// Submit stores a contact message and, when the email service is enabled,
// forwards it to the site owner. Mail delivery is best-effort and never
// fails the request.
// @Summary Submit contact message
// @Tags contact
// @Accept json
// @Produce json
// @Param request body ContactRequest true "contact payload"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Router /api/contact [post]
func (h *ContactHandler) Submit(c *gin.Context) {
	var req ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "All fields are required")
		return
	}

	msg := models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
	}
	if err := database.DB.Create(&msg).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to send message"))
		return
	}

	go func() {
		if err := h.emailService.SendContactNotification(req.Name, req.Email, req.Message); err != nil {
			logrus.Debugf("contact notification not sent: %v", err)
		}
	}()

	Created(c, "Message sent successfully", nil)
}
