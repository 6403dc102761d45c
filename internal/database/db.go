package database

import (
	"fmt"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"grillhouse/internal/models"
)

// Open connects to the database using the given GORM dialect ("sqlite3" or
// "postgres") and connection string.
func Open(dialect, url string) (*gorm.DB, error) {
	db, err := gorm.Open(dialect, url)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", dialect, err)
	}
	return db, nil
}

// Migrate creates and updates all required tables, then ensures default
// data exists.
func Migrate(db *gorm.DB) error {
	db = db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.RecipeEntry{},
		&models.InventoryItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.DailyStats{},
		&models.CustomerProfile{},
		&models.Feedback{},
	)
	if db.Error != nil {
		return db.Error
	}
	return seedDefaultData(db)
}

// seedDefaultData ensures the default menu categories exist
func seedDefaultData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Category{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Category{
		{Name: "Burgers", Icon: "bi-egg-fried", SortOrder: 1, Active: true},
		{Name: "Sides", Icon: "bi-basket", SortOrder: 2, Active: true},
		{Name: "Drinks", Icon: "bi-cup-straw", SortOrder: 3, Active: true},
		{Name: "Desserts", Icon: "bi-cake", SortOrder: 4, Active: true},
	}
	for i := range defaults {
		if err := db.Create(&defaults[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
