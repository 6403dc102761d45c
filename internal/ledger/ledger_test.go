package ledger

import (
	"errors"
	"testing"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"grillhouse/internal/database"
	"grillhouse/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	db.DB().SetMaxOpenConns(1)
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testLedger(t *testing.T) (*Ledger, *gorm.DB) {
	db := openTestDB(t)
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return New(db, log), db
}

func TestCreateValidation(t *testing.T) {
	l, _ := testLedger(t)

	cases := []struct {
		name string
		item models.InventoryItem
	}{
		{"missing name", models.InventoryItem{Unit: "kg"}},
		{"missing unit", models.InventoryItem{Name: "Flour"}},
		{"negative quantity", models.InventoryItem{Name: "Flour", Unit: "kg", Quantity: -1}},
		{"negative minimum", models.InventoryItem{Name: "Flour", Unit: "kg", MinimumStock: -1}},
	}
	for _, tc := range cases {
		item := tc.item
		if err := l.Create(&item); err == nil {
			t.Errorf("Create() with %s did not fail", tc.name)
		}
	}
}

func TestCreateStampsRestockTime(t *testing.T) {
	l, _ := testLedger(t)

	item := models.InventoryItem{Name: "Beef Patty", Unit: "pc", Quantity: 10, MinimumStock: 2}
	if err := l.Create(&item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if item.ID == 0 {
		t.Error("Create() did not assign an id")
	}
	if item.LastRestock == nil {
		t.Error("Create() did not stamp the restock time")
	}
}

func TestRestock(t *testing.T) {
	l, _ := testLedger(t)

	item := models.InventoryItem{Name: "Buns", Unit: "pc", Quantity: 5, MinimumStock: 10}
	if err := l.Create(&item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := l.Restock(item.ID, 20)
	if err != nil {
		t.Fatalf("Restock() error = %v", err)
	}
	if updated.Quantity != 25 {
		t.Errorf("quantity after restock = %v, want 25", updated.Quantity)
	}
	if updated.LastRestock == nil {
		t.Error("Restock() did not stamp the restock time")
	}

	if _, err := l.Restock(item.ID, -3); err == nil {
		t.Error("Restock() accepted a negative quantity")
	}
}

func TestDeductRefusesNegativeStock(t *testing.T) {
	l, db := testLedger(t)

	item := models.InventoryItem{Name: "Cheese", Unit: "slice", Quantity: 4, MinimumStock: 1}
	if err := l.Create(&item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := l.Deduct(db, item.ID, 5)
	if !errors.Is(err, ErrNegativeStock) {
		t.Fatalf("Deduct() error = %v, want ErrNegativeStock", err)
	}

	var reloaded models.InventoryItem
	if err := db.Where("id = ?", item.ID).First(&reloaded).Error; err != nil {
		t.Fatalf("reloading item: %v", err)
	}
	if reloaded.Quantity != 4 {
		t.Errorf("quantity after refused deduction = %v, want 4", reloaded.Quantity)
	}
}

func TestDeductAndSufficientFor(t *testing.T) {
	l, db := testLedger(t)

	item := models.InventoryItem{Name: "Lettuce", Unit: "g", Quantity: 100, MinimumStock: 20}
	if err := l.Create(&item); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	ok, err := l.SufficientFor(db, item.ID, 60)
	if err != nil || !ok {
		t.Fatalf("SufficientFor(60) = %v, %v, want true", ok, err)
	}

	if err := l.Deduct(db, item.ID, 60); err != nil {
		t.Fatalf("Deduct() error = %v", err)
	}

	ok, err = l.SufficientFor(db, item.ID, 60)
	if err != nil {
		t.Fatalf("SufficientFor() error = %v", err)
	}
	if ok {
		t.Error("SufficientFor(60) = true after deduction left 40")
	}
}

func TestShortfalls(t *testing.T) {
	l, db := testLedger(t)

	patty := models.InventoryItem{Name: "Beef Patty", Unit: "pc", Quantity: 4, MinimumStock: 2}
	bun := models.InventoryItem{Name: "Bun", Unit: "pc", Quantity: 50, MinimumStock: 10}
	for _, item := range []*models.InventoryItem{&patty, &bun} {
		if err := l.Create(item); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	short, err := l.Shortfalls(db, map[uint]float64{patty.ID: 8, bun.ID: 4})
	if err != nil {
		t.Fatalf("Shortfalls() error = %v", err)
	}
	if len(short) != 1 || short[0] != "Beef Patty" {
		t.Errorf("Shortfalls() = %v, want [Beef Patty]", short)
	}

	short, err = l.Shortfalls(db, map[uint]float64{patty.ID: 4, bun.ID: 4})
	if err != nil {
		t.Fatalf("Shortfalls() error = %v", err)
	}
	if len(short) != 0 {
		t.Errorf("Shortfalls() = %v, want none", short)
	}
}

func TestLowStockCount(t *testing.T) {
	l, _ := testLedger(t)

	items := []models.InventoryItem{
		{Name: "Ketchup", Unit: "ml", Quantity: 5, MinimumStock: 10},
		{Name: "Mustard", Unit: "ml", Quantity: 100, MinimumStock: 10},
		{Name: "Pickles", Unit: "g", Quantity: 10, MinimumStock: 10},
	}
	for i := range items {
		if err := l.Create(&items[i]); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	count, err := l.LowStockCount()
	if err != nil {
		t.Fatalf("LowStockCount() error = %v", err)
	}
	if count != 2 {
		t.Errorf("LowStockCount() = %d, want 2", count)
	}
}
