package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	customersv1 "b2b-orders/api/customers/v1"
	ordersv1 "b2b-orders/api/orders/v1"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/middleware"
)

// Handler handles all gateway HTTP requests
type Handler struct {
	customersClient customersv1.CustomerServiceClient
	ordersClient    ordersv1.OrderServiceClient
}

// NewHandler creates a new gateway handler
func NewHandler(customersClient customersv1.CustomerServiceClient, ordersClient ordersv1.OrderServiceClient) *Handler {
	return &Handler{
		customersClient: customersClient,
		ordersClient:    ordersClient,
	}
}

// RegisterRoutes registers all gateway routes. Every route needs a signed-in
// back-office user; the group must already run the Identity middleware.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireAuth())

	// Customers endpoints
	customers := r.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
	}

	// Orders endpoints
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PATCH("/:id/status", h.SetStatus)
		orders.POST("/:id/cancel", h.CancelOrder)
		orders.POST("/:id/restore", h.RestoreOrder)
	}
}

// =============================================================================
// Request/Response DTOs
// =============================================================================

// CreateCustomerRequest represents the request body for opening a customer account
type CreateCustomerRequest struct {
	CompanyName  string `json:"company_name" binding:"required" example:"Acme Retail"`
	ContactEmail string `json:"contact_email" binding:"required,email" example:"buyer@acme.com"`
	AgentRef     string `json:"agent_ref" example:"agent-7"`
}

// StatusRequest represents the request body for an explicit status change
type StatusRequest struct {
	Status string `json:"status" binding:"required" example:"Confirmed"`
	Reason string `json:"reason" example:"checked with the customer"`
}

// LifecycleRequest represents the request body for cancel and restore
type LifecycleRequest struct {
	Reason    string `json:"reason" example:"duplicate order"`
	Confirmed bool   `json:"confirmed" example:"true"`
}

// SuccessResponse is the standard success response
type SuccessResponse struct {
	Data    interface{} `json:"data"`
	TraceID string      `json:"trace_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error   ErrorBody `json:"error"`
	TraceID string    `json:"trace_id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// ErrorBody contains error details
type ErrorBody struct {
	Code    string      `json:"code" example:"VALIDATION_ERROR"`
	Message string      `json:"message" example:"Invalid request body"`
	Details interface{} `json:"details,omitempty"`
}

func (h *Handler) success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{
		Data:    data,
		TraceID: c.GetString(middleware.TraceIDKey),
	})
}

func pathID(c *gin.Context, what string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.Error(errors.NewValidation("invalid "+what+" id", nil))
		return 0, false
	}
	return id, true
}

func actor(c *gin.Context) string {
	id, _ := auth.FromContext(c.Request.Context())
	return id.Actor()
}

// =============================================================================
// Customers Handlers
// =============================================================================

// CreateCustomer opens a new customer account
// @Summary Create a customer
// @Description Open a B2B customer account
// @Tags customers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} SuccessResponse{data=customersv1.Customer} "Customer created successfully"
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 409 {object} ErrorResponse "Email already exists"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/customers [post]
func (h *Handler) CreateCustomer(c *gin.Context) {
	var req CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	msg, err := customersv1.EncodeCreateCustomerRequest(&customersv1.CreateCustomerRequest{
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		AgentRef:     req.AgentRef,
	})
	if err != nil {
		c.Error(errors.NewInternal("failed to encode request", err))
		return
	}

	resp, err := h.customersClient.CreateCustomer(c.Request.Context(), msg)
	if err != nil {
		c.Error(errors.FromGRPCStatus(err))
		return
	}
	h.customer(c, http.StatusCreated, resp)
}

// GetCustomer retrieves a customer by ID
// @Summary Get a customer by ID
// @Description Retrieve a customer with its order statistics
// @Tags customers
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} SuccessResponse{data=customersv1.Customer} "Customer retrieved successfully"
// @Failure 400 {object} ErrorResponse "Invalid customer ID"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/customers/{id} [get]
func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "customer")
	if !ok {
		return
	}

	resp, err := h.customersClient.GetCustomer(c.Request.Context(), wrapperspb.UInt64(id))
	if err != nil {
		c.Error(errors.FromGRPCStatus(err))
		return
	}
	h.customer(c, http.StatusOK, resp)
}

func (h *Handler) customer(c *gin.Context, status int, resp *structpb.Struct) {
	customer, err := customersv1.DecodeCustomer(resp)
	if err != nil {
		c.Error(errors.NewInternal("failed to decode customer", err))
		return
	}
	h.success(c, status, customer)
}

// =============================================================================
// Orders Handlers
// =============================================================================

// ListOrders lists a customer's orders
// @Summary List a customer's orders
// @Description List the orders of one customer, newest first
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param customer query string true "Customer reference"
// @Success 200 {object} SuccessResponse{data=[]ordersv1.Order} "Orders retrieved successfully"
// @Failure 400 {object} ErrorResponse "Missing customer reference"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders [get]
func (h *Handler) ListOrders(c *gin.Context) {
	resp, err := h.ordersClient.ListOrders(c.Request.Context(), wrapperspb.String(c.Query("customer")))
	if err != nil {
		c.Error(errors.FromGRPCStatus(err))
		return
	}

	list, err := ordersv1.Decode[ordersv1.OrderList](resp)
	if err != nil {
		c.Error(errors.NewInternal("failed to decode orders", err))
		return
	}
	if list.Orders == nil {
		list.Orders = []ordersv1.Order{}
	}
	h.success(c, http.StatusOK, list.Orders)
}

// GetOrder retrieves an order by ID
// @Summary Get an order by ID
// @Description Retrieve an order with its items and status history
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Success 200 {object} SuccessResponse{data=ordersv1.Order} "Order retrieved successfully"
// @Failure 400 {object} ErrorResponse "Invalid order ID"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders/{id} [get]
func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}

	resp, err := h.ordersClient.GetOrder(c.Request.Context(), wrapperspb.UInt64(id))
	if err != nil {
		c.Error(errors.FromGRPCStatus(err))
		return
	}
	h.order(c, resp)
}

// SetStatus changes an order's status
// @Summary Change an order's status
// @Description Move an order between Unconfirmed and Confirmed. Cancellation has its own endpoint.
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Param request body StatusRequest true "Status change request"
// @Success 200 {object} SuccessResponse{data=ordersv1.Order} "Status changed"
// @Failure 400 {object} ErrorResponse "Validation error"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Transition not allowed"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders/{id}/status [patch]
func (h *Handler) SetStatus(c *gin.Context) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	msg, err := ordersv1.Encode(&ordersv1.StatusRequest{
		ID:     id,
		Status: req.Status,
		Actor:  actor(c),
		Reason: req.Reason,
	})
	if err != nil {
		c.Error(errors.NewInternal("failed to encode request", err))
		return
	}

	resp, err := h.ordersClient.SetStatus(c.Request.Context(), msg)
	if err != nil {
		c.Error(errors.FromGRPCStatus(err))
		return
	}
	h.order(c, resp)
}

// CancelOrder cancels an order
// @Summary Cancel an order
// @Description Cancel an order. The request must carry confirmed=true.
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Param request body LifecycleRequest true "Cancel request"
// @Success 200 {object} SuccessResponse{data=ordersv1.Order} "Order cancelled"
// @Failure 400 {object} ErrorResponse "Validation error or not confirmed"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Order already cancelled"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders/{id}/cancel [post]
func (h *Handler) CancelOrder(c *gin.Context) {
	h.lifecycle(c, h.ordersClient.CancelOrder)
}

// RestoreOrder restores a cancelled order
// @Summary Restore a cancelled order
// @Description Return a cancelled order to Unconfirmed. The request must carry confirmed=true.
// @Tags orders
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Order ID"
// @Param request body LifecycleRequest true "Restore request"
// @Success 200 {object} SuccessResponse{data=ordersv1.Order} "Order restored"
// @Failure 400 {object} ErrorResponse "Validation error or not confirmed"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Order not found"
// @Failure 409 {object} ErrorResponse "Order is not cancelled"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /api/v1/orders/{id}/restore [post]
func (h *Handler) RestoreOrder(c *gin.Context) {
	h.lifecycle(c, h.ordersClient.RestoreOrder)
}

type lifecycleCall func(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)

func (h *Handler) lifecycle(c *gin.Context, call lifecycleCall) {
	id, ok := pathID(c, "order")
	if !ok {
		return
	}
	var req LifecycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return
	}

	msg, err := ordersv1.Encode(&ordersv1.LifecycleRequest{
		ID:        id,
		Actor:     actor(c),
		Reason:    req.Reason,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		c.Error(errors.NewInternal("failed to encode request", err))
		return
	}

	resp, err := call(c.Request.Context(), msg)
	if err != nil {
		c.Error(errors.FromGRPCStatus(err))
		return
	}
	h.order(c, resp)
}

func (h *Handler) order(c *gin.Context, resp *structpb.Struct) {
	order, err := ordersv1.Decode[ordersv1.Order](resp)
	if err != nil {
		c.Error(errors.NewInternal("failed to decode order", err))
		return
	}
	h.success(c, http.StatusOK, order)
}
