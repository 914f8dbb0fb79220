package models

import (
	"time"

	"gorm.io/gorm"
)

// Category is a user-owned transaction label. Names are unique per user.
type Category struct {
	ID        uint           `json:"id" gorm:"primaryKey"`
	UserID    uint           `json:"userId" gorm:"uniqueIndex:idx_user_category;not null"`
	Name      string         `json:"name" gorm:"uniqueIndex:idx_user_category;size:100;not null"`
	Type      string         `json:"type" gorm:"size:10;not null"` // income or expense
	Color     string         `json:"color" gorm:"size:20;default:#3B82F6"`
	Icon      string         `json:"icon" gorm:"size:10;default:💰"`
	IsDefault bool           `json:"isDefault" gorm:"default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
	User      User           `json:"-" gorm:"foreignKey:UserID"`
}

// TableName sets the table name.
func (Category) TableName() string {
	return "categories"
}

// DefaultCategories returns the seed set created for a new user via the
// defaults endpoint. Colors match the client palette.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Type: TypeIncome, Color: "#10B981", Icon: "💰"},
		{Name: "Freelance", Type: TypeIncome, Color: "#3B82F6", Icon: "💼"},
		{Name: "Investment", Type: TypeIncome, Color: "#8B5CF6", Icon: "📈"},
		{Name: "Gift", Type: TypeIncome, Color: "#F59E0B", Icon: "🎁"},
		{Name: "Food & Dining", Type: TypeExpense, Color: "#EF4444", Icon: "🍽️"},
		{Name: "Transportation", Type: TypeExpense, Color: "#06B6D4", Icon: "🚗"},
		{Name: "Shopping", Type: TypeExpense, Color: "#EC4899", Icon: "🛍️"},
		{Name: "Bills & Utilities", Type: TypeExpense, Color: "#F97316", Icon: "⚡"},
		{Name: "Entertainment", Type: TypeExpense, Color: "#8B5CF6", Icon: "🎬"},
		{Name: "Healthcare", Type: TypeExpense, Color: "#10B981", Icon: "🏥"},
		{Name: "Education", Type: TypeExpense, Color: "#3B82F6", Icon: "📚"},
		{Name: "Housing", Type: TypeExpense, Color: "#F59E0B", Icon: "🏠"},
	}
}
