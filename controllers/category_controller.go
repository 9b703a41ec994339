package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CategoryController struct {
	service CategoryServiceAPI
}

func NewCategoryController(service CategoryServiceAPI) *CategoryController {
	return &CategoryController{service: service}
}

type categoryRequest struct {
	Name string `json:"name" binding:"required"`
}

// GetCategories returns all categories sorted by name.
func (cc *CategoryController) GetCategories(c *gin.Context) {
	categories, svcErr := cc.service.ListCategories(c.Request.Context())
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (cc *CategoryController) CreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	category, svcErr := cc.service.CreateCategory(c.Request.Context(), req.Name)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusCreated, category)
}

func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := cc.service.UpdateCategory(c.Request.Context(), categoryID, req.Name); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category updated"})
}

func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	categoryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
		return
	}

	if svcErr := cc.service.DeleteCategory(c.Request.Context(), categoryID); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
