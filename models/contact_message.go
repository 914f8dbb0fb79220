package models

import "time"

// ContactMessage stores a public contact-form submission. Write-only from the
// API's point of view.
type ContactMessage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null"`
	Email     string    `json:"email" gorm:"size:100;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"createdAt"`
}

// TableName sets the table name.
func (ContactMessage) TableName() string {
	return "contact_messages"
}
