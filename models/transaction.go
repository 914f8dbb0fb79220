package models

import (
	"time"

	"gorm.io/gorm"
)

// Transaction types. The type is a closed enum, not a free-form string.
const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

// ValidTransactionType reports whether t is one of the two known types.
func ValidTransactionType(t string) bool {
	return t == TypeIncome || t == TypeExpense
}

// Transaction is a single income or expense record owned by one user.
type Transaction struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"index;not null"`
	Amount    float64        `json:"amount" gorm:"type:decimal(10,2);not null"`
	Type      string         `json:"type" gorm:"size:10;not null;index"`
	Category  string         `json:"category" gorm:"size:100;not null"`
	Note      string         `json:"note" gorm:"size:255"`
	Date      time.Time      `json:"date" gorm:"not null;index"` // defaults to creation time when omitted
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName sets the table name.
func (Transaction) TableName() string {
	return "transactions"
}
