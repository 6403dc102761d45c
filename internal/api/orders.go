package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/gorm"

	"grillhouse/internal/lifecycle"
	"grillhouse/internal/models"
)

// ListOrders returns every order with its items, newest first.
func (s *Server) ListOrders(c *gin.Context) {
	var orders []models.Order
	err := s.db.Order("created_at desc").
		Preload("Items").
		Preload("Items.Product").
		Find(&orders).Error
	if err != nil {
		s.log.WithError(err).Error("failed to list orders")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, orders[i].View())
	}
	c.JSON(http.StatusOK, views)
}

// CreateOrder handles checkout. Stats and loyalty are not touched here; they
// are fed when the order completes.
func (s *Server) CreateOrder(c *gin.Context) {
	var req lifecycle.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, err := s.lifecycle.CreateOrder(req)
	if err != nil {
		var unavailable *lifecycle.ProductUnavailableError
		if errors.As(err, &unavailable) {
			status := http.StatusBadRequest
			if unavailable.Name == "" {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": unavailable.Error()})
			return
		}
		s.log.WithError(err).Error("failed to create order")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order.View())
}

type statusUpdateRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus drives the order state machine. Inventory failures and
// unknown status labels are client errors; the order is untouched in both
// cases.
func (s *Server) UpdateOrderStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := s.lifecycle.Transition(uint(id), req.Status)
	if err != nil {
		var insufficient *lifecycle.InsufficientInventoryError
		switch {
		case errors.Is(err, lifecycle.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.As(err, &insufficient):
			c.JSON(http.StatusBadRequest, gin.H{"error": insufficient.Error()})
		case gorm.IsRecordNotFoundError(err):
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		default:
			s.log.WithError(err).Error("failed to update order status")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, result.Order.View())
}

type feedbackRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// CreateFeedback stores a rating for an order. For already-completed orders
// the rating flows into the customer's loyalty average immediately; otherwise
// it is picked up when the order completes.
func (s *Server) CreateFeedback(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "rating must be between 1 and 5"})
		return
	}

	var order models.Order
	if err := s.db.Where("id = ?", id).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	fb := models.Feedback{
		OrderID: order.ID,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.db.Create(&fb).Error; err != nil {
		s.log.WithError(err).Error("failed to store feedback")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if order.Status == models.OrderStatusCompleted {
		if err := s.loyalty.RecordRating(order.CustomerName, float64(req.Rating)); err != nil {
			// Advisory: the feedback row is already stored.
			s.log.WithError(err).WithField("order", order.ID).Error("failed to apply rating to loyalty profile")
		}
	}

	c.JSON(http.StatusOK, fb)
}
