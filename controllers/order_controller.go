package controllers

import (
	"net/http"
	"strconv"

	"github.com/RafalSprengel/restaurant-pos-backend/middleware"
	"github.com/RafalSprengel/restaurant-pos-backend/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderController backs the staff order panel.
type OrderController struct {
	service OrderServiceAPI
}

func NewOrderController(service OrderServiceAPI) *OrderController {
	return &OrderController{service: service}
}

// GetOrders returns paginated orders, optionally filtered by status.
func (oc *OrderController) GetOrders(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	status := models.OrderStatus(c.Query("status"))

	result, svcErr := oc.service.ListOrders(c.Request.Context(), page, limit, status)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetOrderByID returns a single order with its embedded snapshots.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	order, svcErr := oc.service.GetOrder(c.Request.Context(), orderID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// UpdateOrderStatus applies a manual staff status change.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order ID format"})
		return
	}

	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	if svcErr := oc.service.UpdateStatus(c.Request.Context(), orderID, req.Status); svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	staffID, _ := middleware.GetUserID(c)
	zap.L().Info("Order status updated by staff",
		zap.String("order_id", orderID.String()),
		zap.String("status", string(req.Status)),
		zap.String("staff_id", staffID),
	)
	c.JSON(http.StatusOK, gin.H{"message": "Order status updated"})
}

// parsePaginationParams extracts and validates pagination parameters.
func parsePaginationParams(c *gin.Context) (int, int) {
	const maxLimit = 100

	page := 1
	limit := 10

	if p, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limit = l
		if limit > maxLimit {
			limit = maxLimit
		}
	}
	return page, limit
}
