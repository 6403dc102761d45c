package models

import "time"

// Category groups menu products for display and sales reporting
type Category struct {
	ID          uint      `gorm:"primary_key" json:"id"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Icon        string    `gorm:"default:'bi-tag'" json:"icon"`
	SortOrder   int       `gorm:"column:sort_order" json:"order"`
	Active      bool      `gorm:"default:true" json:"active"`
	Products    []Product `gorm:"foreignkey:CategoryID" json:"-"`
}

// TableName sets the table name for Category
func (Category) TableName() string {
	return "categories"
}
