package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// DailyStats returns today's sales aggregates.
func (s *Server) DailyStats(c *gin.Context) {
	stats, err := s.stats.Daily(time.Now().UTC())
	if err != nil {
		s.log.WithError(err).Error("failed to load daily stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// WeeklyStats returns the trailing seven days of sales aggregates.
func (s *Server) WeeklyStats(c *gin.Context) {
	rows, err := s.stats.Weekly(time.Now().UTC())
	if err != nil {
		s.log.WithError(err).Error("failed to load weekly stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

// RegenerateStats rebuilds all sales statistics from the completed order
// history. Per-order replay failures are reported but do not abort the
// rebuild.
func (s *Server) RegenerateStats(c *gin.Context) {
	if err := s.stats.Rebuild(); err != nil {
		s.log.WithError(err).Error("stats rebuild finished with errors")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sales statistics regenerated successfully"})
}
