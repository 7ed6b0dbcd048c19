package infrastructure

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"b2b-orders/internal/customers/application"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/middleware"
)

// HTTPHandler handles HTTP requests for customers
type HTTPHandler struct {
	useCase *application.CustomerUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(useCase *application.CustomerUseCase) *HTTPHandler {
	return &HTTPHandler{useCase: useCase}
}

// RegisterRoutes registers the customer routes
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id/active", h.SetActive)
	}
}

// CreateCustomerRequest is the request body for opening a customer account
type CreateCustomerRequest struct {
	CompanyName  string `json:"company_name" binding:"required"`
	ContactEmail string `json:"contact_email" binding:"required,email"`
	AgentRef     string `json:"agent_ref"`
}

// SetActiveRequest is the request body for opening or closing an account
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// CreateCustomer handles POST /customers
func (h *HTTPHandler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	customer, err := h.useCase.CreateCustomer(c.Request.Context(), application.CreateCustomerInput{
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		AgentRef:     req.AgentRef,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"data":     toWire(customer),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// GetCustomer handles GET /customers/:id
func (h *HTTPHandler) GetCustomer(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}

	customer, err := h.useCase.GetCustomer(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toWire(customer),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

// SetActive handles PUT /customers/:id/active
func (h *HTTPHandler) SetActive(c *gin.Context) {
	id, ok := customerID(c)
	if !ok {
		return
	}
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	customer, err := h.useCase.SetActive(c.Request.Context(), id, *req.Active)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":     toWire(customer),
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func customerID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.Error(errors.NewValidation("invalid customer id", nil))
		return 0, false
	}
	return uint(id), true
}
