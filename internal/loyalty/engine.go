package loyalty

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"grillhouse/internal/models"
)

// Scoring weights for recommendations.
const (
	categoryMatchScore = 5
	customizationScore = 2
)

// highCustomizationCategory is the category whose products carry the
// customization axes a returning customer is likely to care about.
const highCustomizationCategory = "burgers"

// customizationAxes are the axes considered when boosting products from the
// high-customization category.
var customizationAxes = map[string]bool{
	"patty":  true,
	"extras": true,
}

// Engine accumulates per-customer preference profiles from orders and
// produces ranked menu recommendations. Profiles are keyed by the exact
// customer name; no normalization is applied.
type Engine struct {
	db  *gorm.DB
	log logrus.FieldLogger
	mu  sync.Mutex
}

// New creates a loyalty engine over db.
func New(db *gorm.DB, log logrus.FieldLogger) *Engine {
	return &Engine{db: db, log: log}
}

// RecordOrder folds one order into the customer's profile, creating the
// profile on first sight. The order's items must be loaded with products and
// categories. A non-nil rating updates the running average using the
// post-increment order count.
func (e *Engine) RecordOrder(customerName string, order *models.Order, rating *float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile, err := e.locateOrCreate(customerName)
	if err != nil {
		return err
	}

	created := order.CreatedAt
	profile.LastOrderDate = &created
	profile.OrderCount++
	profile.TotalSpent += order.Total()

	e.foldCategories(profile, order)
	e.foldCustomizations(profile, order)

	if rating != nil {
		if profile.AvgOrderRating == nil {
			avg := *rating
			profile.AvgOrderRating = &avg
		} else {
			avg := (*profile.AvgOrderRating*float64(profile.OrderCount-1) + *rating) / float64(profile.OrderCount)
			profile.AvgOrderRating = &avg
		}
	}

	return e.db.Save(profile).Error
}

// RecordRating applies a rating that arrived after the order was already
// folded into the profile. The running average is updated over the current
// order count.
func (e *Engine) RecordRating(customerName string, rating float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	profile, err := e.locateOrCreate(customerName)
	if err != nil {
		return err
	}
	if profile.AvgOrderRating == nil || profile.OrderCount <= 1 {
		profile.AvgOrderRating = &rating
	} else {
		avg := (*profile.AvgOrderRating*float64(profile.OrderCount-1) + rating) / float64(profile.OrderCount)
		profile.AvgOrderRating = &avg
	}
	return e.db.Save(profile).Error
}

func (e *Engine) locateOrCreate(customerName string) (*models.CustomerProfile, error) {
	var profile models.CustomerProfile
	err := e.db.Where("customer_name = ?", customerName).First(&profile).Error
	if gorm.IsRecordNotFoundError(err) {
		profile = models.CustomerProfile{
			CustomerName:   customerName,
			CategoryCounts: models.CounterMap{},
			Customizations: models.CustomizationPrefs{},
		}
		if err := e.db.Create(&profile).Error; err != nil {
			return nil, fmt.Errorf("creating profile for %q: %w", customerName, err)
		}
		return &profile, nil
	}
	if err != nil {
		return nil, err
	}
	if profile.CategoryCounts == nil {
		profile.CategoryCounts = models.CounterMap{}
	}
	if profile.Customizations == nil {
		profile.Customizations = models.CustomizationPrefs{}
	}
	return &profile, nil
}

// foldCategories adds the order's per-category quantities to the cumulative
// tally and recomputes the favorite category: highest cumulative quantity,
// ties broken by lexicographic category name.
func (e *Engine) foldCategories(profile *models.CustomerProfile, order *models.Order) {
	for _, item := range order.Items {
		if item.Product == nil || item.Product.Category == nil {
			continue
		}
		profile.CategoryCounts[item.Product.Category.Name] += item.Quantity
	}

	best := ""
	bestCount := 0
	for name, count := range profile.CategoryCounts {
		if count > bestCount || (count == bestCount && count > 0 && name < best) {
			best = name
			bestCount = count
		}
	}
	if bestCount > 0 {
		profile.FavoriteCategory = best
	}
}

// foldCustomizations adds each line's customization choices to the frequency
// table. List-valued axes count each element; scalar axes count the value's
// string form. Malformed bags are skipped, never fatal.
func (e *Engine) foldCustomizations(profile *models.CustomerProfile, order *models.Order) {
	for _, item := range order.Items {
		bag, err := models.DecodeCustomizations(item.Customizations)
		if err != nil {
			e.log.WithError(err).WithField("order", order.ID).Warn("skipping malformed customization payload")
			continue
		}
		for axis, value := range bag {
			choices := profile.Customizations[axis]
			if choices == nil {
				choices = map[string]int{}
				profile.Customizations[axis] = choices
			}
			switch v := value.(type) {
			case []string:
				for _, choice := range v {
					choices[choice]++
				}
			case []interface{}:
				for _, choice := range v {
					choices[fmt.Sprint(choice)]++
				}
			default:
				choices[fmt.Sprint(v)]++
			}
		}
	}
}

// Summary is the loyalty profile as reported to clients.
type Summary struct {
	OrderCount       int        `json:"orderCount"`
	AverageRating    *float64   `json:"averageRating"`
	FavoriteCategory string     `json:"favoriteCategory,omitempty"`
	LastOrderDate    *time.Time `json:"lastOrderDate"`
}

// Stats returns the customer's loyalty summary. An unknown customer yields
// zero values rather than an error.
func (e *Engine) Stats(customerName string) (Summary, error) {
	var profile models.CustomerProfile
	err := e.db.Where("customer_name = ?", customerName).First(&profile).Error
	if gorm.IsRecordNotFoundError(err) {
		return Summary{}, nil
	}
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{
		OrderCount:       profile.OrderCount,
		FavoriteCategory: profile.FavoriteCategory,
		LastOrderDate:    profile.LastOrderDate,
	}
	if profile.AvgOrderRating != nil {
		rounded := math.Round(*profile.AvgOrderRating*10) / 10
		summary.AverageRating = &rounded
	}
	return summary, nil
}

// Recommend ranks the available catalog for the customer and returns the top
// entries. Without a favorite category the catalog is returned in ascending
// ID order, truncated to limit.
func (e *Engine) Recommend(customerName string, limit int) ([]models.Product, error) {
	var catalog []models.Product
	err := e.db.Where("available = ?", true).
		Order("id asc").
		Preload("Category").
		Find(&catalog).Error
	if err != nil {
		return nil, err
	}

	var profile models.CustomerProfile
	err = e.db.Where("customer_name = ?", customerName).First(&profile).Error
	if err != nil && !gorm.IsRecordNotFoundError(err) {
		return nil, err
	}

	if profile.FavoriteCategory == "" {
		if len(catalog) > limit {
			catalog = catalog[:limit]
		}
		return catalog, nil
	}

	sort.SliceStable(catalog, func(i, j int) bool {
		return e.score(&profile, &catalog[i]) > e.score(&profile, &catalog[j])
	})
	if len(catalog) > limit {
		catalog = catalog[:limit]
	}
	return catalog, nil
}

func (e *Engine) score(profile *models.CustomerProfile, product *models.Product) int {
	if product.Category == nil {
		return 0
	}
	score := 0
	if product.Category.Name == profile.FavoriteCategory {
		score += categoryMatchScore
	}
	if len(profile.Customizations) > 0 && strings.EqualFold(product.Category.Name, highCustomizationCategory) {
		for axis := range profile.Customizations {
			if customizationAxes[axis] {
				score += customizationScore
				break
			}
		}
	}
	return score
}
