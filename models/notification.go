package models

import "time"

// Notification severities.
const (
	NotificationSuccess = "success"
	NotificationWarning = "warning"
	NotificationError   = "error"
	NotificationInfo    = "info"
)

// ValidNotificationType reports whether t is a known severity.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationSuccess, NotificationWarning, NotificationError, NotificationInfo:
		return true
	}
	return false
}

// Notification is a per-user in-app message.
type Notification struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;not null"`
	Type      string    `json:"type" gorm:"size:10;not null"`
	Title     string    `json:"title" gorm:"size:100;not null"`
	Message   string    `json:"message" gorm:"size:255"`
	Read      bool      `json:"read" gorm:"default:false;index"`
	CreatedAt time.Time `json:"createdAt"`
	User      User      `json:"-" gorm:"foreignKey:UserID"`
}

// TableName sets the table name.
func (Notification) TableName() string {
	return "notifications"
}
