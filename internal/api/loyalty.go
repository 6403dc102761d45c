package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const defaultRecommendationLimit = 3

// Recommendations returns a personalized ranking of the available menu for
// the named customer.
func (s *Server) Recommendations(c *gin.Context) {
	customerName := c.Query("customer_name")
	if customerName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Customer name is required"})
		return
	}

	products, err := s.loyalty.Recommend(customerName, defaultRecommendationLimit)
	if err != nil {
		s.log.WithError(err).Error("failed to compute recommendations")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": products})
}

// LoyaltyStats returns the customer's loyalty summary; unknown customers get
// zero values.
func (s *Server) LoyaltyStats(c *gin.Context) {
	summary, err := s.loyalty.Stats(c.Param("customer_name"))
	if err != nil {
		s.log.WithError(err).Error("failed to load loyalty stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}
