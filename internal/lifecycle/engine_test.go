package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grillhouse/internal/database"
	"grillhouse/internal/ledger"
	"grillhouse/internal/loyalty"
	"grillhouse/internal/models"
	"grillhouse/internal/stats"
)

// capturePublisher records published event names for assertions.
type capturePublisher struct {
	events []string
}

func (p *capturePublisher) Publish(event string, payload interface{}) {
	p.events = append(p.events, event)
}

type fixture struct {
	db        *gorm.DB
	engine    *Engine
	publisher *capturePublisher
	burgers   models.Category
	patty     models.InventoryItem
	burger    models.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := database.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.DB().SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	publisher := &capturePublisher{}
	inventoryLedger := ledger.New(db, log)
	salesStats := stats.New(db, log)
	loyaltyEngine := loyalty.New(db, log)
	engine := New(db, inventoryLedger, salesStats, loyaltyEngine, publisher, nil, log)

	f := &fixture{db: db, engine: engine, publisher: publisher}

	require.NoError(t, db.Where("name = ?", "Burgers").First(&f.burgers).Error)

	// Beef Patty starts at 10, each burger consumes 2.
	f.patty = models.InventoryItem{Name: "Beef Patty", Unit: "pc", Quantity: 10, MinimumStock: 2}
	require.NoError(t, db.Create(&f.patty).Error)

	f.burger = models.Product{Name: "Classic Burger", Price: 8.5, CategoryID: f.burgers.ID, Available: true}
	require.NoError(t, db.Create(&f.burger).Error)
	require.NoError(t, db.Create(&models.RecipeEntry{
		ProductID:   f.burger.ID,
		InventoryID: f.patty.ID,
		Quantity:    2,
	}).Error)

	return f
}

func (f *fixture) pattyQuantity(t *testing.T) float64 {
	t.Helper()
	var item models.InventoryItem
	require.NoError(t, f.db.Where("id = ?", f.patty.ID).First(&item).Error)
	return item.Quantity
}

func (f *fixture) placeOrder(t *testing.T, customer string, qty int) *models.Order {
	t.Helper()
	order, err := f.engine.CreateOrder(CreateOrderRequest{
		CustomerName: customer,
		Items:        []CreateOrderItem{{ProductID: f.burger.ID, Quantity: qty}},
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderUnknownProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.CreateOrder(CreateOrderRequest{
		CustomerName: "Bob",
		Items:        []CreateOrderItem{{ProductID: 9999, Quantity: 1}},
	})
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, uint(9999), unavailable.ProductID)
	assert.Empty(t, unavailable.Name)
}

func TestCreateOrderUnavailableProduct(t *testing.T) {
	f := newFixture(t)

	offMenu := models.Product{Name: "Seasonal Special", Price: 12, CategoryID: f.burgers.ID, Available: false}
	require.NoError(t, f.db.Create(&offMenu).Error)

	_, err := f.engine.CreateOrder(CreateOrderRequest{
		CustomerName: "Bob",
		Items:        []CreateOrderItem{{ProductID: offMenu.ID, Quantity: 1}},
	})
	var unavailable *ProductUnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "Seasonal Special", unavailable.Name)
}

func TestCreateOrderPublishesEvents(t *testing.T) {
	f := newFixture(t)

	f.placeOrder(t, "Alice", 1)
	assert.Equal(t, []string{EventNewOrder, EventOrderUpdate}, f.publisher.events)
}

func TestTransitionInvalidStatus(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 1)

	for _, label := range []string{"cancelled", "done", ""} {
		_, err := f.engine.Transition(order.ID, label)
		assert.ErrorIs(t, err, ErrInvalidStatus, "label %q", label)
	}

	var reloaded models.Order
	require.NoError(t, f.db.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
}

func TestPreparingDeductsExactRequirements(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 3)

	result, err := f.engine.Transition(order.ID, "preparing")
	require.NoError(t, err)
	assert.Empty(t, result.Advisory)
	assert.Equal(t, models.OrderStatusPreparing, result.Order.Status)
	assert.NotNil(t, result.Order.PreparingAt)

	// 3 burgers × 2 patties leaves 10 − 6 = 4.
	assert.Equal(t, 4.0, f.pattyQuantity(t))
}

func TestPreparingInsufficientInventoryLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)

	first := f.placeOrder(t, "Alice", 3)
	_, err := f.engine.Transition(first.ID, "preparing")
	require.NoError(t, err)
	require.Equal(t, 4.0, f.pattyQuantity(t))

	// A 4th-burger order needs 8 patties but only 4 remain.
	second := f.placeOrder(t, "Bob", 4)
	_, err = f.engine.Transition(second.ID, "preparing")

	var insufficient *InsufficientInventoryError
	require.ErrorAs(t, err, &insufficient)
	assert.Contains(t, insufficient.Ingredients, "Beef Patty")

	assert.Equal(t, 4.0, f.pattyQuantity(t), "stock must be untouched after rejection")

	var reloaded models.Order
	require.NoError(t, f.db.Where("id = ?", second.ID).First(&reloaded).Error)
	assert.Equal(t, models.OrderStatusPending, reloaded.Status)
	assert.Nil(t, reloaded.PreparingAt)
}

func TestNonPreparingTransitionsNeverTouchInventory(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 3)

	for _, label := range []string{"accepted", "ready", "completed"} {
		_, err := f.engine.Transition(order.ID, label)
		require.NoError(t, err)
	}
	assert.Equal(t, 10.0, f.pattyQuantity(t))
}

func TestTimestampsMatchTransitionHistory(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 1)

	_, err := f.engine.Transition(order.ID, "accepted")
	require.NoError(t, err)
	result, err := f.engine.Transition(order.ID, "preparing")
	require.NoError(t, err)

	got := result.Order
	assert.NotNil(t, got.AcceptedAt)
	assert.NotNil(t, got.PreparingAt)
	assert.Nil(t, got.ReadyAt, "unreached status must have no timestamp")
	assert.Nil(t, got.CompletedAt, "unreached status must have no timestamp")
	assert.False(t, got.PreparingAt.Before(*got.AcceptedAt))
}

func TestCompletionFeedsStatsAndLoyalty(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 2)

	result, err := f.engine.Transition(order.ID, "completed")
	require.NoError(t, err)
	require.Empty(t, result.Advisory)

	var daily models.DailyStats
	require.NoError(t, f.db.Where("date = ?", models.DateOf(time.Now().UTC())).First(&daily).Error)
	assert.Equal(t, 1, daily.OrderCount)
	assert.InDelta(t, 17.0, daily.TotalSales, 1e-9)
	assert.InDelta(t, daily.TotalSales/float64(daily.OrderCount), daily.AvgOrderValue, 1e-9)

	var profile models.CustomerProfile
	require.NoError(t, f.db.Where("customer_name = ?", "Alice").First(&profile).Error)
	assert.Equal(t, 1, profile.OrderCount)
	assert.InDelta(t, 17.0, profile.TotalSpent, 1e-9)
	assert.Equal(t, "Burgers", profile.FavoriteCategory)

	assert.Contains(t, f.publisher.events, EventStatusChanged)
}

func TestCompletionPicksUpEarlierFeedbackRating(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 1)

	require.NoError(t, f.db.Create(&models.Feedback{OrderID: order.ID, Rating: 4}).Error)

	_, err := f.engine.Transition(order.ID, "completed")
	require.NoError(t, err)

	var profile models.CustomerProfile
	require.NoError(t, f.db.Where("customer_name = ?", "Alice").First(&profile).Error)
	require.NotNil(t, profile.AvgOrderRating)
	assert.InDelta(t, 4.0, *profile.AvgOrderRating, 1e-9)
}

func TestAdvisoryFailureDoesNotFailTransition(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t, "Alice", 1)

	// Sabotage the stats table so aggregation fails after commit.
	require.NoError(t, f.db.DropTable(&models.DailyStats{}).Error)

	result, err := f.engine.Transition(order.ID, "completed")
	require.NoError(t, err, "advisory failure must not surface as the transition error")
	assert.Equal(t, models.OrderStatusCompleted, result.Order.Status)
	assert.NotEmpty(t, result.Advisory)

	var reloaded models.Order
	require.NoError(t, f.db.Where("id = ?", order.ID).First(&reloaded).Error)
	assert.Equal(t, models.OrderStatusCompleted, reloaded.Status)
}

func TestTransitionUnknownOrder(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.Transition(12345, "accepted")
	assert.True(t, gorm.IsRecordNotFoundError(errors.Unwrap(err)) || gorm.IsRecordNotFoundError(err))
}
