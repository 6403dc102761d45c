package models

import "time"

// Product represents a sellable menu item. Stock is a denormalized counter
// kept for display; the authoritative constraint on selling a product is the
// ingredient inventory referenced through its recipe entries.
type Product struct {
	ID          uint          `gorm:"primary_key" json:"id"`
	CreatedAt   time.Time     `json:"-"`
	UpdatedAt   time.Time     `json:"-"`
	Name        string        `gorm:"not null" json:"name"`
	Description string        `gorm:"type:text" json:"description"`
	Image       string        `gorm:"type:text" json:"image"`
	Price       float64       `gorm:"not null" json:"price"`
	CategoryID  uint          `gorm:"not null" json:"category_id"`
	Category    *Category     `json:"category,omitempty"`
	Available   bool          `gorm:"default:true" json:"available"`
	Stock       int           `gorm:"default:0" json:"stock"`
	Ingredients []RecipeEntry `gorm:"foreignkey:ProductID" json:"-"`
}

// TableName sets the table name for Product
func (Product) TableName() string {
	return "products"
}

// RecipeEntry links a product to one ingredient it consumes and the quantity
// consumed per unit of product sold. The full set of entries is the recipe map.
type RecipeEntry struct {
	ID          uint           `gorm:"primary_key" json:"id"`
	ProductID   uint           `gorm:"not null" json:"product_id"`
	InventoryID uint           `gorm:"not null" json:"inventory_id"`
	Quantity    float64        `gorm:"not null" json:"quantity"`
	Ingredient  *InventoryItem `gorm:"foreignkey:InventoryID" json:"-"`
}

// TableName sets the table name for RecipeEntry
func (RecipeEntry) TableName() string {
	return "recipe_entries"
}
