package recipe

import (
	"fmt"

	"github.com/jinzhu/gorm"

	"grillhouse/internal/models"
)

// Requirements computes, for a set of order lines, the total quantity of each
// distinct ingredient the order consumes: recipe quantity × line quantity,
// summed across lines sharing an ingredient. Products without recipe entries
// contribute nothing.
func Requirements(tx *gorm.DB, items []models.OrderItem) (map[uint]float64, error) {
	required := make(map[uint]float64)
	for _, item := range items {
		var entries []models.RecipeEntry
		if err := tx.Where("product_id = ?", item.ProductID).Find(&entries).Error; err != nil {
			return nil, fmt.Errorf("loading recipe for product %d: %w", item.ProductID, err)
		}
		for _, entry := range entries {
			required[entry.InventoryID] += entry.Quantity * float64(item.Quantity)
		}
	}
	return required, nil
}

// Replace swaps a product's recipe for a new set of ingredient requirements.
func Replace(db *gorm.DB, productID uint, entries []models.RecipeEntry) error {
	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	if err := tx.Where("product_id = ?", productID).Delete(&models.RecipeEntry{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	for i := range entries {
		entries[i].ProductID = productID
		if err := tx.Create(&entries[i]).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}
