package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User account model. Accounts are soft-deleted only, never removed.
type User struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Username   string         `json:"username" gorm:"uniqueIndex;size:50;not null"`
	Email      string         `json:"email" gorm:"uniqueIndex;size:100;not null"`
	Password   string         `json:"-" gorm:"size:255;not null"`
	FullName   string         `json:"fullName" gorm:"size:100"`
	Age        int            `json:"age"`
	Gender     string         `json:"gender" gorm:"size:20"`
	Phone      string         `json:"phone" gorm:"size:30"`
	ProfilePic string         `json:"profilePic" gorm:"size:255"` // local /uploads path or external URL
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName sets the table name.
func (User) TableName() string {
	return "users"
}

// HasLocalProfilePic reports whether the stored picture lives on this server's
// disk (as opposed to an externally hosted URL).
func (u *User) HasLocalProfilePic() bool {
	return strings.HasPrefix(u.ProfilePic, "/uploads/")
}
