package ledger

import (
	"errors"
	"fmt"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"grillhouse/internal/models"
)

// ErrNegativeStock is returned when a deduction would drive an ingredient's
// quantity below zero. Callers pre-validate with SufficientFor; this is the
// ledger's own final check.
var ErrNegativeStock = errors.New("deduction would make stock negative")

// Ledger is the authoritative store of ingredient stock levels and restock
// thresholds. Mutating operations that are part of an order transition take
// the caller's transaction so that stock changes commit or roll back together
// with the order.
type Ledger struct {
	db  *gorm.DB
	log logrus.FieldLogger
}

// New creates a ledger over db.
func New(db *gorm.DB, log logrus.FieldLogger) *Ledger {
	return &Ledger{db: db, log: log}
}

// Create registers a new ingredient. Name and unit are required and quantity
// and minimum stock must be non-negative.
func (l *Ledger) Create(item *models.InventoryItem) error {
	if item.Name == "" {
		return errors.New("inventory item name is required")
	}
	if item.Unit == "" {
		return errors.New("inventory item unit is required")
	}
	if item.Quantity < 0 {
		return errors.New("inventory item quantity must not be negative")
	}
	if item.MinimumStock < 0 {
		return errors.New("inventory item minimum stock must not be negative")
	}
	now := time.Now().UTC()
	item.LastRestock = &now
	return l.db.Create(item).Error
}

// List returns all inventory items.
func (l *Ledger) List() ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := l.db.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Restock adds qty to the item's quantity and stamps the restock time.
// Negative input is rejected; restocking never reduces stock.
func (l *Ledger) Restock(id uint, qty float64) (*models.InventoryItem, error) {
	if qty < 0 {
		return nil, errors.New("restock quantity must not be negative")
	}
	var item models.InventoryItem
	if err := l.db.Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	item.Quantity += qty
	item.LastRestock = &now
	if err := l.db.Save(&item).Error; err != nil {
		return nil, err
	}
	l.log.WithFields(logrus.Fields{
		"item":     item.Name,
		"quantity": item.Quantity,
	}).Info("inventory restocked")
	return &item, nil
}

// SufficientFor reports whether the ingredient's current quantity covers the
// required amount, reading through tx.
func (l *Ledger) SufficientFor(tx *gorm.DB, id uint, required float64) (bool, error) {
	var item models.InventoryItem
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		return false, err
	}
	return item.Quantity >= required, nil
}

// Shortfalls checks a set of ingredient requirements against current stock
// and returns the names of every ingredient that cannot be covered. An empty
// result means the whole requirement set is satisfiable.
func (l *Ledger) Shortfalls(tx *gorm.DB, required map[uint]float64) ([]string, error) {
	var short []string
	for id, qty := range required {
		var item models.InventoryItem
		if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
			return nil, fmt.Errorf("loading ingredient %d: %w", id, err)
		}
		if item.Quantity < qty {
			short = append(short, item.Name)
		}
	}
	return short, nil
}

// Deduct subtracts qty from the ingredient's stock within tx. The deduction
// is refused with ErrNegativeStock if it would drive the quantity negative.
func (l *Ledger) Deduct(tx *gorm.DB, id uint, qty float64) error {
	var item models.InventoryItem
	if err := tx.Where("id = ?", id).First(&item).Error; err != nil {
		return err
	}
	if item.Quantity < qty {
		return fmt.Errorf("%s: %w", item.Name, ErrNegativeStock)
	}
	item.Quantity -= qty
	if err := tx.Save(&item).Error; err != nil {
		return err
	}
	if item.NeedsRestock() {
		l.log.WithFields(logrus.Fields{
			"item":     item.Name,
			"quantity": item.Quantity,
			"unit":     item.Unit,
		}).Warn("ingredient at or below restock threshold")
	}
	return nil
}

// LowStockCount returns the number of items at or below their restock
// threshold.
func (l *Ledger) LowStockCount() (int, error) {
	var count int64
	err := l.db.Model(&models.InventoryItem{}).
		Where("quantity <= minimum_stock").
		Count(&count).Error
	return int(count), err
}
