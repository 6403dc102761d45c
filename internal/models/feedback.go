package models

import "time"

// Feedback is a customer rating for a completed order. Ratings feed the
// loyalty profile's running average.
type Feedback struct {
	ID        uint      `gorm:"primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	OrderID   uint      `gorm:"not null" json:"orderId"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
}

// TableName sets the table name for Feedback
func (Feedback) TableName() string {
	return "feedback"
}
