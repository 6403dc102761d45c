package stats

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"grillhouse/internal/models"
)

// Aggregator folds completed orders into per-day sales statistics. Recording
// is incremental and deliberately NOT idempotent: feeding the same order twice
// double-counts. Rebuild exists to repair any drift from scratch.
type Aggregator struct {
	db  *gorm.DB
	log logrus.FieldLogger
	mu  sync.Mutex
}

// New creates an aggregator over db.
func New(db *gorm.DB, log logrus.FieldLogger) *Aggregator {
	return &Aggregator{db: db, log: log}
}

// RecordCompletedOrder folds one completed order into the stats row for its
// creation date, creating the row on first sight. The order's items must be
// loaded with their products and categories.
func (a *Aggregator) RecordCompletedOrder(order *models.Order) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.record(a.db, order)
}

func (a *Aggregator) record(db *gorm.DB, order *models.Order) error {
	date := models.DateOf(order.CreatedAt)

	var stats models.DailyStats
	err := db.Where("date = ?", date).First(&stats).Error
	if gorm.IsRecordNotFoundError(err) {
		stats = models.DailyStats{
			Date:          date,
			PopularItems:  models.ProductSalesMap{},
			CategorySales: models.CategorySalesMap{},
			PeakHours:     models.CounterMap{},
		}
		if err := db.Create(&stats).Error; err != nil {
			return fmt.Errorf("creating stats row for %s: %w", date.Format("2006-01-02"), err)
		}
		a.log.WithField("date", date.Format("2006-01-02")).Info("created new daily stats row")
	} else if err != nil {
		return err
	}
	if stats.PopularItems == nil {
		stats.PopularItems = models.ProductSalesMap{}
	}
	if stats.CategorySales == nil {
		stats.CategorySales = models.CategorySalesMap{}
	}
	if stats.PeakHours == nil {
		stats.PeakHours = models.CounterMap{}
	}

	stats.TotalSales += order.Total()
	stats.OrderCount++
	stats.AvgOrderValue = stats.TotalSales / float64(stats.OrderCount)

	for _, item := range order.Items {
		if item.Product == nil {
			continue
		}
		revenue := item.Product.Price * float64(item.Quantity)

		itemKey := strconv.FormatUint(uint64(item.ProductID), 10)
		popular, ok := stats.PopularItems[itemKey]
		if !ok {
			popular = &models.ProductSales{Name: item.Product.Name}
			stats.PopularItems[itemKey] = popular
		}
		popular.Count += item.Quantity
		popular.Total += revenue

		if item.Product.Category != nil {
			catKey := strconv.FormatUint(uint64(item.Product.CategoryID), 10)
			cat, ok := stats.CategorySales[catKey]
			if !ok {
				cat = &models.CategorySales{Name: item.Product.Category.Name}
				stats.CategorySales[catKey] = cat
			}
			cat.Total += revenue
		}
	}

	hour := strconv.Itoa(order.CreatedAt.UTC().Hour())
	stats.PeakHours[hour]++

	if err := db.Save(&stats).Error; err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"date":        date.Format("2006-01-02"),
		"total_sales": stats.TotalSales,
		"order_count": stats.OrderCount,
	}).Debug("daily stats updated")
	return nil
}

// Rebuild clears all statistics and replays every completed order in creation
// order. Orders that fail to aggregate are skipped; their errors are collected
// and returned together once the replay finishes.
func (a *Aggregator) Rebuild() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.db.Delete(&models.DailyStats{}).Error; err != nil {
		return fmt.Errorf("clearing stats: %w", err)
	}

	var orders []models.Order
	err := a.db.Where("status = ?", models.OrderStatusCompleted).
		Order("created_at asc").
		Preload("Items").
		Preload("Items.Product").
		Preload("Items.Product.Category").
		Find(&orders).Error
	if err != nil {
		return fmt.Errorf("loading completed orders: %w", err)
	}
	a.log.WithField("orders", len(orders)).Info("rebuilding sales statistics")

	var failures *multierror.Error
	for i := range orders {
		if err := a.record(a.db, &orders[i]); err != nil {
			a.log.WithError(err).WithField("order", orders[i].ID).Error("failed to replay order into stats")
			failures = multierror.Append(failures, fmt.Errorf("order %d: %w", orders[i].ID, err))
		}
	}
	return failures.ErrorOrNil()
}

// Daily returns the stats row for the given date, lazily creating an empty
// row for it so dashboards always have something to show.
func (a *Aggregator) Daily(date time.Time) (*models.DailyStats, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	day := models.DateOf(date)
	var stats models.DailyStats
	err := a.db.Where("date = ?", day).First(&stats).Error
	if gorm.IsRecordNotFoundError(err) {
		stats = models.DailyStats{
			Date:          day,
			PopularItems:  models.ProductSalesMap{},
			CategorySales: models.CategorySalesMap{},
			PeakHours:     models.CounterMap{},
		}
		if err := a.db.Create(&stats).Error; err != nil {
			return nil, err
		}
		return &stats, nil
	}
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// Weekly returns the stats rows for the seven days ending at end, oldest
// first.
func (a *Aggregator) Weekly(end time.Time) ([]models.DailyStats, error) {
	to := models.DateOf(end)
	from := to.AddDate(0, 0, -7)

	var rows []models.DailyStats
	err := a.db.Where("date BETWEEN ? AND ?", from, to).
		Order("date asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
