package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// CustomizationPrefs is a TEXT column holding, per customization axis, a
// frequency table of the choices a customer has made.
type CustomizationPrefs map[string]map[string]int

// Value converts the preference table to a JSON string for storage
func (p CustomizationPrefs) Value() (driver.Value, error) {
	if len(p) == 0 {
		return "{}", nil
	}
	return json.Marshal(p)
}

// Scan converts the database value back to a preference table
func (p *CustomizationPrefs) Scan(value interface{}) error {
	return jsonScan(value, p)
}

// CustomerProfile accumulates a customer's ordering history into loyalty
// aggregates. Profiles are keyed by the exact customer name as entered at
// checkout.
type CustomerProfile struct {
	ID               uint               `gorm:"primary_key" json:"id"`
	CreatedAt        time.Time          `json:"-"`
	UpdatedAt        time.Time          `json:"-"`
	CustomerName     string             `gorm:"not null;unique_index" json:"customerName"`
	FavoriteCategory string             `json:"favoriteCategory"`
	LastOrderDate    *time.Time         `json:"lastOrderDate"`
	OrderCount       int                `gorm:"default:0" json:"orderCount"`
	TotalSpent       float64            `gorm:"default:0" json:"totalSpent"`
	AvgOrderRating   *float64           `json:"avgOrderRating"`
	CategoryCounts   CounterMap         `gorm:"type:text" json:"-"`
	Customizations   CustomizationPrefs `gorm:"column:preferred_customizations;type:text" json:"-"`
}

// TableName sets the table name for CustomerProfile
func (CustomerProfile) TableName() string {
	return "customer_profiles"
}
