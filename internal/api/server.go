package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"
	"github.com/sirupsen/logrus"

	"grillhouse/internal/ledger"
	"grillhouse/internal/lifecycle"
	"grillhouse/internal/loyalty"
	"grillhouse/internal/realtime"
	"grillhouse/internal/stats"
)

// Server is the HTTP surface over the order, catalog, inventory, stats and
// loyalty components.
type Server struct {
	Router    *gin.Engine
	db        *gorm.DB
	lifecycle *lifecycle.Engine
	ledger    *ledger.Ledger
	stats     *stats.Aggregator
	loyalty   *loyalty.Engine
	hub       *realtime.Hub
	log       logrus.FieldLogger
}

// NewServer wires the router. hub may be nil when no realtime endpoint is
// wanted (tests).
func NewServer(db *gorm.DB, lc *lifecycle.Engine, ld *ledger.Ledger, sa *stats.Aggregator, ly *loyalty.Engine, hub *realtime.Hub, log logrus.FieldLogger) *Server {
	s := &Server{
		Router:    gin.Default(),
		db:        db,
		lifecycle: lc,
		ledger:    ld,
		stats:     sa,
		loyalty:   ly,
		hub:       hub,
		log:       log,
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.hub != nil {
		s.Router.GET("/ws", s.hub.HandleWS)
	}

	api := s.Router.Group("/api")
	{
		// Order lifecycle
		api.GET("/orders", s.ListOrders)
		api.POST("/orders", s.CreateOrder)
		api.PUT("/orders/:id/status", s.UpdateOrderStatus)
		api.POST("/orders/:id/feedback", s.CreateFeedback)

		// Menu catalog
		api.GET("/products", s.ListAvailableProducts)
		api.GET("/products/all", s.ListAllProducts)
		api.GET("/products/ingredients", s.ListProductIngredients)
		api.POST("/products", s.CreateProduct)
		api.PUT("/products/:id", s.UpdateProduct)
		api.DELETE("/products/:id", s.DeleteProduct)
		api.POST("/products/:id/ingredients", s.ReplaceProductIngredients)

		// Categories
		api.GET("/categories", s.ListCategories)
		api.POST("/categories", s.CreateCategory)
		api.PUT("/categories/:id", s.UpdateCategory)
		api.DELETE("/categories/:id", s.DeleteCategory)

		// Inventory
		api.GET("/inventory", s.ListInventory)
		api.POST("/inventory", s.CreateInventoryItem)
		api.PUT("/inventory/:id/stock", s.RestockInventoryItem)

		// Sales statistics
		api.GET("/stats/daily", s.DailyStats)
		api.GET("/stats/weekly", s.WeeklyStats)
		api.POST("/stats/regenerate", s.RegenerateStats)

		// Loyalty
		api.GET("/recommendations", s.Recommendations)
		api.GET("/loyalty/stats/:customer_name", s.LoyaltyStats)
	}
}
