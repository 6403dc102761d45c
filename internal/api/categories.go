package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"grillhouse/internal/models"
)

// ListCategories returns all categories in display order.
func (s *Server) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := s.db.Order("sort_order asc").Find(&categories).Error; err != nil {
		s.log.WithError(err).Error("failed to list categories")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, categories)
}

type categoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"order"`
	Active      *bool  `json:"active"`
}

// CreateCategory registers a new menu category.
func (s *Server) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category := models.Category{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
		SortOrder:   req.SortOrder,
		Active:      true,
	}
	if category.Icon == "" {
		category.Icon = "bi-tag"
	}
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.db.Create(&category).Error; err != nil {
		s.log.WithError(err).Error("failed to create category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, category)
}

// UpdateCategory replaces a category's fields, leaving omitted ones alone.
func (s *Server) UpdateCategory(c *gin.Context) {
	var category models.Category
	if err := s.db.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	category.Name = req.Name
	if req.Description != "" {
		category.Description = req.Description
	}
	if req.Icon != "" {
		category.Icon = req.Icon
	}
	if req.SortOrder != 0 {
		category.SortOrder = req.SortOrder
	}
	if req.Active != nil {
		category.Active = *req.Active
	}

	if err := s.db.Save(&category).Error; err != nil {
		s.log.WithError(err).Error("failed to update category")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory removes a category.
func (s *Server) DeleteCategory(c *gin.Context) {
	var category models.Category
	if err := s.db.Where("id = ?", c.Param("id")).First(&category).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if err := s.db.Delete(&category).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
}
