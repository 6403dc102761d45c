package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"grillhouse/internal/models"
)

// ListInventory returns every inventory item plus a count of items at or
// below their restock threshold.
func (s *Server) ListInventory(c *gin.Context) {
	items, err := s.ledger.List()
	if err != nil {
		s.log.WithError(err).Error("failed to list inventory")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	lowStock := 0
	for i := range items {
		if items[i].NeedsRestock() {
			lowStock++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"items":         items,
		"lowStockCount": lowStock,
		"totalItems":    len(items),
	})
}

type inventoryItemRequest struct {
	Name         string  `json:"name" binding:"required"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit" binding:"required"`
	MinimumStock float64 `json:"minimum_stock"`
	Category     string  `json:"category"`
}

// CreateInventoryItem registers a new ingredient.
func (s *Server) CreateInventoryItem(c *gin.Context) {
	var req inventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item := models.InventoryItem{
		Name:         req.Name,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		MinimumStock: req.MinimumStock,
		Category:     req.Category,
	}
	if err := s.ledger.Create(&item); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

type restockRequest struct {
	Quantity float64 `json:"quantity"`
}

// RestockInventoryItem adds stock to an ingredient and stamps the restock
// time.
func (s *Server) RestockInventoryItem(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory item id"})
		return
	}

	var req restockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.ledger.Restock(uint(id), req.Quantity)
	if err != nil {
		if gorm.IsRecordNotFoundError(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           item.ID,
		"quantity":     item.Quantity,
		"last_restock": item.LastRestock,
	})
}
