package middleware

import (
	"errors"
	"strings"
	"time"

	"trackify/config"
	"trackify/database"
	"trackify/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

var jwtSecret []byte

// Claims carried in every issued token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// InitJWT sets the signing secret from configuration. Must be called before
// any token is generated or parsed.
func InitJWT(cfg *config.Config) {
	jwtSecret = []byte(cfg.JWT.Secret)
}

// GenerateToken issues a signed HS256 token for the given user.
func GenerateToken(userID uint, username string, expire time.Duration) (string, error) {
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expire)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

// ParseToken validates a token string and returns its claims.
func ParseToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

// JWTAuth guards a route group with bearer-token authentication. A missing,
// malformed or expired token, or a token whose user no longer exists, aborts
// the request with 401. On success the resolved user is attached to the
// request context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
			abortUnauthorized(c, "Invalid authorization header")
			return
		}

		claims, err := ParseToken(strings.TrimSpace(parts[1]))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		// The token may outlive the account; reject if the user is gone.
		var user models.User
		if err := database.DB.First(&user, claims.UserID).Error; err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("userID", user.ID)
		c.Set("currentUser", &user)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(401, gin.H{
		"code":    401,
		"message": message,
	})
	c.Abort()
}

// GetCurrentUserID returns the authenticated user's id, or 0 outside an
// authenticated context.
func GetCurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get("userID"); ok {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetCurrentUser returns the user record resolved by JWTAuth, or nil.
func GetCurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get("currentUser"); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
