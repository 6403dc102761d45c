package models

import "time"

// InventoryItem represents one ingredient in stock. Quantity is a physical
// measure in Unit; it must never go negative through a committed deduction.
type InventoryItem struct {
	ID           uint       `gorm:"primary_key" json:"id"`
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
	Name         string     `gorm:"not null" json:"name"`
	Quantity     float64    `gorm:"not null;default:0" json:"quantity"`
	Unit         string     `gorm:"not null" json:"unit"`
	MinimumStock float64    `gorm:"not null;default:10" json:"minimum_stock"`
	LastRestock  *time.Time `json:"last_restock"`
	Category     string     `json:"category"`
}

// TableName sets the table name for InventoryItem
func (InventoryItem) TableName() string {
	return "inventory_items"
}

// NeedsRestock reports whether the item has fallen to or below its
// minimum stock threshold.
func (i *InventoryItem) NeedsRestock() bool {
	return i.Quantity <= i.MinimumStock
}
