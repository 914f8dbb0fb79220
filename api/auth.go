package api

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"trackify/config"
	"trackify/database"
	"trackify/middleware"
	"trackify/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler serves registration, login and profile management.
type AuthHandler struct {
	cfg *config.Config
}

// NewAuthHandler creates an auth handler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username   string `json:"username" binding:"required,min=3,max=50" example:"ravi"`
	Email      string `json:"email" binding:"required,email" example:"ravi@example.com"`
	Password   string `json:"password" binding:"required,min=6,max=72" example:"secret123"`
	ProfilePic string `json:"profilePic" example:"https://example.com/me.png"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"ravi@example.com"`
	Password string `json:"password" binding:"required" example:"secret123"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates a new account.
// @Summary Register
// @Description Create an account. Email and username must both be unused. Returns a bearer token valid for 7 days.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "registration payload"
// @Success 201 {object} Response{data=AuthResponse}
// @Failure 400 {object} Response "validation error or duplicate email/username"
// @Router /api/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request"))
		return
	}

	// Both email and username are unique.
	var existing models.User
	if err := database.DB.Where("email = ? OR username = ?", req.Email, req.Username).
		First(&existing).Error; err == nil {
		BadRequest(c, "User with this email or username already exists")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		InternalError(c, "Failed to hash password")
		return
	}

	user := models.User{
		Username:   req.Username,
		Email:      req.Email,
		Password:   string(hashed),
		ProfilePic: req.ProfilePic,
	}
	if err := database.DB.Create(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to create user"))
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "Failed to generate token")
		return
	}

	Created(c, "User created successfully", AuthResponse{Token: token, User: user})
}

// Login authenticates by email and password.
// @Summary Login
// @Description Authenticate and receive a bearer token. Unknown email and wrong password are indistinguishable.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "login payload"
// @Success 200 {object} Response{data=AuthResponse}
// @Failure 401 {object} Response "invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, SafeErrorMessage(err, "Invalid request"))
		return
	}

	// The same generic message for unknown email and wrong password, so the
	// endpoint cannot be used to enumerate accounts.
	var user models.User
	if err := database.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		Unauthorized(c, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		Unauthorized(c, "Invalid credentials")
		return
	}

	token, err := middleware.GenerateToken(user.ID, user.Username, h.cfg.JWT.ExpireTime)
	if err != nil {
		InternalError(c, "Failed to generate token")
		return
	}

	SuccessWithMessage(c, "Login successful", AuthResponse{Token: token, User: user})
}

// Me returns the current user's profile.
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		Unauthorized(c, "Authentication required")
		return
	}
	Success(c, user)
}

// UpdateProfile updates profile fields and, optionally, the profile picture.
// The picture arrives either as an uploaded file or as a URL form field; a
// previously stored local file is removed before the new value is persisted.
// Concurrent updates are last-write-wins.
// @Summary Update profile
// @Tags auth
// @Accept mpfd
// @Produce json
// @Security BearerAuth
// @Param fullName formData string false "full name"
// @Param age formData int false "age"
// @Param gender formData string false "gender"
// @Param phone formData string false "phone"
// @Param profilePic formData file false "profile picture upload"
// @Success 200 {object} Response{data=models.User}
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/auth/profile [put]
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "User not found")
		return
	}

	if v := c.PostForm("fullName"); v != "" {
		user.FullName = v
	}
	if v := c.PostForm("age"); v != "" {
		age, err := strconv.Atoi(v)
		if err != nil || age < 0 {
			BadRequest(c, "Invalid age")
			return
		}
		user.Age = age
	}
	if v := c.PostForm("gender"); v != "" {
		user.Gender = v
	}
	if v := c.PostForm("phone"); v != "" {
		user.Phone = v
	}

	if file, err := c.FormFile("profilePic"); err == nil {
		url, err := h.saveProfilePic(c, file)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		h.removeLocalPic(&user)
		user.ProfilePic = url
	} else if v, ok := c.GetPostForm("profilePic"); ok {
		// URL update; an empty value clears the picture.
		h.removeLocalPic(&user)
		user.ProfilePic = v
	}

	if err := database.DB.Save(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to update profile"))
		return
	}

	SuccessWithMessage(c, "Profile updated successfully", user)
}

// UploadProfilePic stores an uploaded image and returns its public URL. Kept
// public so the register form can upload before an account exists.
// @Summary Upload profile picture
// @Tags auth
// @Accept mpfd
// @Produce json
// @Param profilePic formData file true "image file"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /api/auth/upload-profile-pic [post]
func (h *AuthHandler) UploadProfilePic(c *gin.Context) {
	file, err := c.FormFile("profilePic")
	if err != nil {
		BadRequest(c, "No file uploaded")
		return
	}

	url, err := h.saveProfilePic(c, file)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	SuccessWithMessage(c, "Profile picture uploaded successfully", gin.H{
		"profilePicUrl": url,
	})
}

// DeleteProfilePic removes the stored picture file (when local) and clears
// the field.
// @Summary Delete profile picture
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} Response{data=models.User}
// @Failure 401 {object} Response
// @Router /api/auth/profile-pic [delete]
func (h *AuthHandler) DeleteProfilePic(c *gin.Context) {
	userID := middleware.GetCurrentUserID(c)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		NotFound(c, "User not found")
		return
	}

	h.removeLocalPic(&user)
	user.ProfilePic = ""

	if err := database.DB.Save(&user).Error; err != nil {
		InternalError(c, SafeErrorMessage(err, "Failed to delete profile picture"))
		return
	}

	SuccessWithMessage(c, "Profile picture deleted successfully", user)
}

// allowed image extensions for profile pictures
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// saveProfilePic validates and stores an uploaded image under the upload dir
// and returns its /uploads URL path.
func (h *AuthHandler) saveProfilePic(c *gin.Context, file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return "", fmt.Errorf("unsupported file type %q, expected an image", ext)
	}
	if file.Size > h.cfg.Server.MaxUploadMB*1024*1024 {
		return "", fmt.Errorf("file too large, limit is %d MB", h.cfg.Server.MaxUploadMB)
	}

	if err := os.MkdirAll(h.cfg.Server.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare upload directory: %w", err)
	}

	filename := fmt.Sprintf("profilePic-%d%s", time.Now().UnixNano(), ext)
	if err := c.SaveUploadedFile(file, filepath.Join(h.cfg.Server.UploadDir, filename)); err != nil {
		return "", fmt.Errorf("save uploaded file: %w", err)
	}
	return "/uploads/" + filename, nil
}

// removeLocalPic deletes the user's current picture from disk if it is a
// locally stored upload. Externally hosted URLs are left alone.
func (h *AuthHandler) removeLocalPic(user *models.User) {
	if !user.HasLocalProfilePic() {
		return
	}
	// Base guards against path segments smuggled into the stored value.
	path := filepath.Join(h.cfg.Server.UploadDir, filepath.Base(user.ProfilePic))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("remove old profile picture %s: %v", path, err)
	}
}
