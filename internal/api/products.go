package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"grillhouse/internal/models"
	"grillhouse/internal/recipe"
)

// ListAvailableProducts returns the customer-facing menu: available products
// with their categories.
func (s *Server) ListAvailableProducts(c *gin.Context) {
	var products []models.Product
	err := s.db.Where("available = ?", true).Preload("Category").Find(&products).Error
	if err != nil {
		s.log.WithError(err).Error("failed to list products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

// ListAllProducts returns every product for the admin panel, available or not.
func (s *Server) ListAllProducts(c *gin.Context) {
	var products []models.Product
	if err := s.db.Preload("Category").Find(&products).Error; err != nil {
		s.log.WithError(err).Error("failed to list all products")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, products)
}

type productRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	CategoryID  uint    `json:"category" binding:"required"`
	Available   *bool   `json:"available"`
	Stock       int     `json:"stock"`
}

// CreateProduct registers a new menu product.
func (s *Server) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	product := models.Product{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		CategoryID:  req.CategoryID,
		Available:   true,
		Stock:       req.Stock,
	}
	if req.Available != nil {
		product.Available = *req.Available
	}

	if err := s.db.Create(&product).Error; err != nil {
		s.log.WithError(err).Error("failed to create product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.db.Preload("Category").First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

// UpdateProduct replaces a product's fields.
func (s *Server) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := s.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must not be negative"})
		return
	}

	product.Name = req.Name
	product.Description = req.Description
	product.Image = req.Image
	product.Price = req.Price
	product.CategoryID = req.CategoryID
	product.Stock = req.Stock
	if req.Available != nil {
		product.Available = *req.Available
	}

	if err := s.db.Save(&product).Error; err != nil {
		s.log.WithError(err).Error("failed to update product")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.db.Preload("Category").First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product and its recipe entries.
func (s *Server) DeleteProduct(c *gin.Context) {
	var product models.Product
	if err := s.db.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := s.db.Where("product_id = ?", product.ID).Delete(&models.RecipeEntry{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if err := s.db.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted successfully"})
}

type productIngredientsView struct {
	ID          uint                 `json:"id"`
	Name        string               `json:"name"`
	Stock       int                  `json:"stock"`
	Ingredients []ingredientLineView `json:"ingredients"`
}

type ingredientLineView struct {
	ID       uint    `json:"id"`
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// ListProductIngredients returns the full recipe map for the admin panel.
func (s *Server) ListProductIngredients(c *gin.Context) {
	var products []models.Product
	err := s.db.Preload("Ingredients").Preload("Ingredients.Ingredient").Find(&products).Error
	if err != nil {
		s.log.WithError(err).Error("failed to list product ingredients")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	views := make([]productIngredientsView, 0, len(products))
	for _, p := range products {
		view := productIngredientsView{
			ID:          p.ID,
			Name:        p.Name,
			Stock:       p.Stock,
			Ingredients: []ingredientLineView{},
		}
		for _, entry := range p.Ingredients {
			line := ingredientLineView{
				ID:       entry.InventoryID,
				Quantity: entry.Quantity,
			}
			if entry.Ingredient != nil {
				line.Name = entry.Ingredient.Name
				line.Unit = entry.Ingredient.Unit
			}
			view.Ingredients = append(view.Ingredients, line)
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, views)
}

type replaceIngredientsRequest struct {
	Ingredients []struct {
		IngredientID uint    `json:"ingredientId" binding:"required"`
		Quantity     float64 `json:"quantity" binding:"required"`
	} `json:"ingredients" binding:"required"`
}

// ReplaceProductIngredients swaps a product's recipe for the submitted set.
func (s *Server) ReplaceProductIngredients(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}
	var product models.Product
	if err := s.db.Where("id = ?", id).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req replaceIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries := make([]models.RecipeEntry, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		entries = append(entries, models.RecipeEntry{
			InventoryID: ing.IngredientID,
			Quantity:    ing.Quantity,
		})
	}

	if err := recipe.Replace(s.db, product.ID, entries); err != nil {
		s.log.WithError(err).Error("failed to replace product ingredients")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Ingredients updated successfully"})
}
