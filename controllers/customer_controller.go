package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CustomerController backs the staff customer panel.
type CustomerController struct {
	service CustomerServiceAPI
}

func NewCustomerController(service CustomerServiceAPI) *CustomerController {
	return &CustomerController{service: service}
}

// GetCustomers returns paginated customers, optionally filtered by an email
// substring.
func (cc *CustomerController) GetCustomers(c *gin.Context) {
	page, limit := parsePaginationParams(c)
	emailQuery := strings.TrimSpace(c.Query("email"))

	result, svcErr := cc.service.ListCustomers(c.Request.Context(), page, limit, emailQuery)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetCustomerByID returns a single customer record.
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	customer, svcErr := cc.service.GetCustomer(c.Request.Context(), customerID)
	if svcErr != nil {
		c.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
		return
	}
	c.JSON(http.StatusOK, customer)
}
