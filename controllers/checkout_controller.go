package controllers

import (
	"net/http"

	"github.com/RafalSprengel/restaurant-pos-backend/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CheckoutController struct {
	checkout CheckoutAPI
	gateway  services.PaymentGateway
}

func NewCheckoutController(checkout CheckoutAPI, gateway services.PaymentGateway) *CheckoutController {
	return &CheckoutController{checkout: checkout, gateway: gateway}
}

// CreateSession converts the client cart into a persisted order and a hosted
// checkout redirect URL.
func (cc *CheckoutController) CreateSession(c *gin.Context) {
	var req services.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	url, svcErr := cc.checkout.CreateSession(c.Request.Context(), &req)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

// SessionStatus returns the state of a hosted checkout session and the
// correlated order id carried in its metadata.
func (cc *CheckoutController) SessionStatus(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id query parameter is required"})
		return
	}

	sess, err := cc.gateway.RetrieveSession(c.Request.Context(), sessionID)
	if err != nil {
		zap.L().Warn("Failed to retrieve checkout session", zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve session"})
		return
	}

	response := gin.H{
		"status":        sess.Status,
		"paymentStatus": sess.PaymentStatus,
		"orderId":       sess.Metadata["orderId"],
	}
	if sess.CustomerDetails != nil {
		response["customer"] = gin.H{
			"email": sess.CustomerDetails.Email,
			"name":  sess.CustomerDetails.Name,
		}
	}
	c.JSON(http.StatusOK, response)
}
