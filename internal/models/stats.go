package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// ProductSales accumulates popularity figures for one product within a day.
type ProductSales struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Total float64 `json:"total"`
}

// ProductSalesMap is a TEXT column mapping product id (as a string key, the
// historical JSON format) to its cumulative sales figures.
type ProductSalesMap map[string]*ProductSales

// Value converts the map to a JSON string for storage
func (m ProductSalesMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan converts the database value back to a map
func (m *ProductSalesMap) Scan(value interface{}) error {
	return jsonScan(value, m)
}

// CategorySales accumulates revenue for one category within a day.
type CategorySales struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

// CategorySalesMap is a TEXT column mapping category id to revenue figures.
type CategorySalesMap map[string]*CategorySales

// Value converts the map to a JSON string for storage
func (m CategorySalesMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan converts the database value back to a map
func (m *CategorySalesMap) Scan(value interface{}) error {
	return jsonScan(value, m)
}

// CounterMap is a TEXT column holding a string-keyed frequency table. It backs
// the hourly order distribution (keys "0".."23") and the per-category order
// quantity tally on customer profiles.
type CounterMap map[string]int

// Value converts the map to a JSON string for storage
func (m CounterMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan converts the database value back to a map
func (m *CounterMap) Scan(value interface{}) error {
	return jsonScan(value, m)
}

// DailyStats holds one calendar day's sales aggregates. Rows are created
// lazily on the first completed order of the day and mutated incrementally;
// a full rebuild replays all completed orders from scratch.
type DailyStats struct {
	ID            uint             `gorm:"primary_key" json:"id"`
	CreatedAt     time.Time        `json:"-"`
	UpdatedAt     time.Time        `json:"-"`
	Date          time.Time        `gorm:"type:date;unique_index" json:"date"`
	TotalSales    float64          `gorm:"default:0" json:"total_sales"`
	OrderCount    int              `gorm:"default:0" json:"order_count"`
	AvgOrderValue float64          `gorm:"default:0" json:"avg_order_value"`
	PopularItems  ProductSalesMap  `gorm:"type:text" json:"popular_items"`
	CategorySales CategorySalesMap `gorm:"type:text" json:"category_sales"`
	PeakHours     CounterMap       `gorm:"type:text" json:"peak_hours"`
}

// TableName sets the table name for DailyStats
func (DailyStats) TableName() string {
	return "sales_stats"
}

// DateOf truncates t to its calendar date in UTC, the canonical key for a
// DailyStats row.
func DateOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
