package routes

import (
	"github.com/RafalSprengel/restaurant-pos-backend/controllers"
	"github.com/RafalSprengel/restaurant-pos-backend/middleware"
	"github.com/gin-gonic/gin"
)

type Controllers struct {
	Products   *controllers.ProductController
	Categories *controllers.CategoryController
	Checkout   *controllers.CheckoutController
	Webhook    *controllers.WebhookController
	Orders     *controllers.OrderController
	Customers  *controllers.CustomerController
}

// RegisterRoutes wires the public menu/checkout surface, the Stripe webhook
// and the staff panel.
func RegisterRoutes(r *gin.Engine, c Controllers, jwtSecret []byte, checkoutLimiter gin.HandlerFunc) {
	r.GET("/products", c.Products.GetProducts)
	r.GET("/products/:id", c.Products.GetProductByID)
	r.GET("/categories", c.Categories.GetCategories)

	checkout := r.Group("/checkout")
	checkout.POST("/session", checkoutLimiter, c.Checkout.CreateSession)
	checkout.GET("/session-status", c.Checkout.SessionStatus)

	// Stripe webhook (no auth; the signature is the credential)
	r.POST("/stripe/webhook", c.Webhook.StripeWebhook)

	admin := r.Group("/admin")
	admin.Use(middleware.RequireRole(jwtSecret, "admin"))
	{
		admin.POST("/products", c.Products.CreateProduct)
		admin.PUT("/products/:id", c.Products.UpdateProduct)
		admin.DELETE("/products/:id", c.Products.DeleteProduct)
		admin.GET("/products/:id/upload-url", c.Products.GetUploadURL)

		admin.POST("/categories", c.Categories.CreateCategory)
		admin.PUT("/categories/:id", c.Categories.UpdateCategory)
		admin.DELETE("/categories/:id", c.Categories.DeleteCategory)

		admin.GET("/orders", c.Orders.GetOrders)
		admin.GET("/orders/:id", c.Orders.GetOrderByID)
		admin.PATCH("/orders/:id/status", c.Orders.UpdateOrderStatus)

		admin.GET("/customers", c.Customers.GetCustomers)
		admin.GET("/customers/:id", c.Customers.GetCustomerByID)
	}
}
