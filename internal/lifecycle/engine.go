package lifecycle

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"grillhouse/internal/ledger"
	"grillhouse/internal/loyalty"
	"grillhouse/internal/models"
	"grillhouse/internal/monitoring"
	"grillhouse/internal/recipe"
	"grillhouse/internal/stats"
)

// Event names published to displays after a committed state change.
const (
	EventNewOrder      = "new_order"
	EventOrderUpdate   = "order_update"
	EventStatusChanged = "order_status_changed"
)

// EventPublisher relays a named event with a JSON-serializable order snapshot
// to connected displays. Delivery is best-effort; publication happens after
// commit and its failure never unwinds the commit.
type EventPublisher interface {
	Publish(event string, payload interface{})
}

// Engine owns the order state machine: it validates and executes status
// transitions, gates entry into preparation on ingredient sufficiency, and
// fans completed orders out to the sales and loyalty aggregates.
type Engine struct {
	db        *gorm.DB
	ledger    *ledger.Ledger
	stats     *stats.Aggregator
	loyalty   *loyalty.Engine
	publisher EventPublisher
	metrics   *monitoring.Metrics
	log       logrus.FieldLogger

	// Serializes order/inventory mutation so concurrent transitions cannot
	// interleave their check-then-deduct sequences.
	mu sync.Mutex
}

// New wires a lifecycle engine. publisher may be nil when no displays are
// attached (tests, batch tools).
func New(db *gorm.DB, l *ledger.Ledger, s *stats.Aggregator, ly *loyalty.Engine, publisher EventPublisher, metrics *monitoring.Metrics, log logrus.FieldLogger) *Engine {
	return &Engine{
		db:        db,
		ledger:    l,
		stats:     s,
		loyalty:   ly,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

// CreateOrderItem is one requested order line.
type CreateOrderItem struct {
	ProductID      uint                    `json:"productId"`
	Quantity       int                     `json:"quantity"`
	Customizations models.CustomizationBag `json:"customizations"`
}

// CreateOrderRequest is a checkout request.
type CreateOrderRequest struct {
	CustomerName  string            `json:"customerName" binding:"required"`
	CustomerPhone string            `json:"customerPhone"`
	Items         []CreateOrderItem `json:"items" binding:"required"`
}

// CreateOrder validates the request against the catalog and persists the
// order with its lines in one transaction. The new order starts pending and
// new_order/order_update events carry its snapshot to displays.
func (e *Engine) CreateOrder(req CreateOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, errors.New("order must contain at least one item")
	}

	order := models.Order{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Status:        models.OrderStatusPending,
	}

	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	for _, line := range req.Items {
		if line.Quantity <= 0 {
			tx.Rollback()
			return nil, fmt.Errorf("quantity for product %d must be positive", line.ProductID)
		}
		var product models.Product
		if err := tx.Where("id = ?", line.ProductID).First(&product).Error; err != nil {
			tx.Rollback()
			if gorm.IsRecordNotFoundError(err) {
				return nil, &ProductUnavailableError{ProductID: line.ProductID}
			}
			return nil, err
		}
		if !product.Available {
			tx.Rollback()
			return nil, &ProductUnavailableError{ProductID: product.ID, Name: product.Name}
		}

		encoded, err := models.EncodeCustomizations(line.Customizations)
		if err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("encoding customizations for product %d: %w", line.ProductID, err)
		}
		item := models.OrderItem{
			OrderID:        order.ID,
			ProductID:      product.ID,
			Quantity:       line.Quantity,
			Customizations: encoded,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	created, err := e.loadOrder(order.ID)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"order":    created.ID,
		"customer": created.CustomerName,
		"items":    len(created.Items),
	}).Info("order created")
	if e.metrics != nil {
		e.metrics.OrdersCreated.Inc()
	}
	e.publish(EventNewOrder, created.View())
	e.publish(EventOrderUpdate, created.View())

	return created, nil
}

// TransitionResult distinguishes the committed primary outcome from the
// advisory side effects. Advisory holds any stats/loyalty aggregation errors;
// they are logged and reported but never fail the transition.
type TransitionResult struct {
	Order    *models.Order
	Advisory []error
}

// Transition moves the order to the target status. The pending→preparing
// transition is gated on ingredient sufficiency and deducts stock atomically
// with the status change; every other transition leaves inventory untouched.
// On success the new status's timestamp slot is stamped and a status_changed
// event carries the updated snapshot to displays.
func (e *Engine) Transition(orderID uint, target string) (*TransitionResult, error) {
	status := models.OrderStatus(target)
	if !models.KnownStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, target)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	order, err := e.loadOrder(orderID)
	if err != nil {
		return nil, err
	}

	e.log.WithFields(logrus.Fields{
		"order": order.ID,
		"from":  order.Status,
		"to":    status,
	}).Info("transitioning order")

	tx := e.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if status == models.OrderStatusPreparing && order.Status == models.OrderStatusPending {
		if err := e.reserveIngredients(tx, order); err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	order.Status = status
	order.RecordStatusTime(status, time.Now().UTC())
	if err := tx.Set("gorm:save_associations", false).Save(order).Error; err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
		if n, err := e.ledger.LowStockCount(); err == nil {
			e.metrics.LowStockItems.Set(float64(n))
		}
	}
	e.publish(EventStatusChanged, order.View())

	result := &TransitionResult{Order: order}
	if status == models.OrderStatusCompleted {
		result.Advisory = e.recordCompletion(order)
	}
	return result, nil
}

// reserveIngredients performs the all-or-nothing inventory gate: every
// distinct ingredient the order needs is checked first, and only a fully
// satisfiable order deducts anything.
func (e *Engine) reserveIngredients(tx *gorm.DB, order *models.Order) error {
	required, err := recipe.Requirements(tx, order.Items)
	if err != nil {
		return err
	}

	short, err := e.ledger.Shortfalls(tx, required)
	if err != nil {
		return err
	}
	if len(short) > 0 {
		e.log.WithFields(logrus.Fields{
			"order":       order.ID,
			"ingredients": short,
		}).Error("insufficient inventory for order")
		if e.metrics != nil {
			e.metrics.InventoryRejections.Inc()
		}
		return &InsufficientInventoryError{Ingredients: short}
	}

	for id, qty := range required {
		if err := e.ledger.Deduct(tx, id, qty); err != nil {
			return err
		}
	}
	return nil
}

// recordCompletion feeds the completed order to the sales and loyalty
// aggregates. These updates are advisory: failures are logged and returned
// alongside the committed order, never as the transition's error.
func (e *Engine) recordCompletion(order *models.Order) []error {
	var advisory []error

	if err := e.stats.RecordCompletedOrder(order); err != nil {
		e.log.WithError(err).WithField("order", order.ID).Error("sales stats update failed")
		advisory = append(advisory, fmt.Errorf("sales stats: %w", err))
	}

	rating := e.pendingRating(order.ID)
	if err := e.loyalty.RecordOrder(order.CustomerName, order, rating); err != nil {
		e.log.WithError(err).WithField("order", order.ID).Error("loyalty profile update failed")
		advisory = append(advisory, fmt.Errorf("loyalty profile: %w", err))
	}

	if e.metrics != nil {
		for range advisory {
			e.metrics.AdvisoryFailures.Inc()
		}
	}
	return advisory
}

// pendingRating returns the rating from feedback already left for the order,
// if any. Feedback that arrives later is applied through the loyalty engine
// directly.
func (e *Engine) pendingRating(orderID uint) *float64 {
	var fb models.Feedback
	err := e.db.Where("order_id = ?", orderID).Order("created_at asc").First(&fb).Error
	if err != nil {
		return nil
	}
	rating := float64(fb.Rating)
	return &rating
}

func (e *Engine) loadOrder(id uint) (*models.Order, error) {
	var order models.Order
	err := e.db.Where("id = ?", id).
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (e *Engine) publish(event string, payload interface{}) {
	if e.publisher != nil {
		e.publisher.Publish(event, payload)
	}
}
