package infrastructure

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	ordersv1 "b2b-orders/api/orders/v1"
	"b2b-orders/internal/orders/application"
	"b2b-orders/internal/orders/domain"
	"b2b-orders/pkg/auth"
	"b2b-orders/pkg/errors"
	"b2b-orders/pkg/middleware"
)

// HTTPHandler handles HTTP requests for the catalog, the cart and orders
type HTTPHandler struct {
	catalog *application.CatalogUseCase
	carts   *application.CartUseCase
	orders  *application.OrderUseCase
}

// NewHTTPHandler creates a new HTTP handler
func NewHTTPHandler(catalog *application.CatalogUseCase, carts *application.CartUseCase, orders *application.OrderUseCase) *HTTPHandler {
	return &HTTPHandler{catalog: catalog, carts: carts, orders: orders}
}

// RegisterRoutes registers the ordering routes. The group must already run
// the Identity middleware.
func (h *HTTPHandler) RegisterRoutes(r *gin.RouterGroup) {
	catalog := r.Group("/catalog")
	{
		catalog.GET("", h.ListCatalog)
		catalog.GET("/:id", h.GetCatalogEntry)
	}

	cart := r.Group("/cart")
	{
		cart.GET("", h.GetCart)
		cart.DELETE("", h.ClearCart)
		cart.POST("/merge", middleware.RequireAuth(), h.MergeCart)
		cart.POST("/apply-quantity", h.ApplyQuantity)
		cart.POST("/colors/select-all", h.SelectAllColors)
		cart.POST("/items", h.AddToCart)
		cart.PATCH("/items/:id", h.UpdateLineItem)
		cart.DELETE("/items/:id", h.RemoveFromCart)
		cart.POST("/items/:id/increment", h.IncrementSets)
		cart.POST("/items/:id/decrement", h.DecrementSets)
		cart.PUT("/items/:id/sets", h.SetSets)
		cart.PUT("/items/:id/sizes/:size", h.SetSizeCount)
		cart.POST("/items/:id/colors/toggle", h.ToggleColor)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", h.SubmitCart)
		orders.POST("/quick", h.QuickOrder)
		orders.GET("", middleware.RequireAuth(), h.ListOrders)
		orders.GET("/:id", middleware.RequireAuth(), h.GetOrder)
		orders.PATCH("/:id/status", middleware.RequireAuth(), h.SetStatus)
		orders.POST("/:id/cancel", middleware.RequireAuth(), h.CancelOrder)
		orders.POST("/:id/restore", middleware.RequireAuth(), h.RestoreOrder)
	}
}

// CatalogItemResponse is one catalog entry with its availability
type CatalogItemResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	ImageURL      string   `json:"image_url,omitempty"`
	Colors        []string `json:"colors"`
	Sizes         []string `json:"sizes,omitempty"`
	ClosingStock  int      `json:"closing_stock"`
	ProductionQty int      `json:"production_qty"`
	Available     int      `json:"available"`
	StockLevel    string   `json:"stock_level"`
	UnitPrice     *float64 `json:"unit_price,omitempty"`
}

func toCatalogResponse(item application.CatalogItem) CatalogItemResponse {
	e := item.Entry
	return CatalogItemResponse{
		ID:            e.ID,
		Name:          e.Name,
		ImageURL:      e.ImageURL,
		Colors:        e.Colors,
		Sizes:         e.Sizes,
		ClosingStock:  e.ClosingStock,
		ProductionQty: e.ProductionQty,
		Available:     item.Available,
		StockLevel:    string(item.StockLevel),
		UnitPrice:     e.UnitPrice,
	}
}

// CartResponse is the caller's cart with its totals
type CartResponse struct {
	Items          []*domain.LineItem   `json:"items"`
	TotalLineItems int                  `json:"total_line_items"`
	TotalSets      int                  `json:"total_sets"`
	TotalPieces    int                  `json:"total_pieces"`
	Outcome        *domain.Outcome      `json:"outcome,omitempty"`
	Outcomes       []domain.ItemOutcome `json:"outcomes,omitempty"`
}

func toCartResponse(out *application.CartOutput) CartResponse {
	return CartResponse{
		Items:          out.Cart.Items,
		TotalLineItems: out.TotalLineItems,
		TotalSets:      out.TotalSets,
		TotalPieces:    out.TotalPieces,
		Outcome:        out.Outcome,
		Outcomes:       out.Outcomes,
	}
}

// AddToCartRequest is the request body for adding a selection to the cart
type AddToCartRequest struct {
	ID      string         `json:"id" binding:"required"`
	Colors  []string       `json:"colors"`
	Sets    int            `json:"sets"`
	PerSize map[string]int `json:"per_size"`
}

func (r AddToCartRequest) input() application.AddToCartInput {
	return application.AddToCartInput{
		EntryID: r.ID,
		Colors:  r.Colors,
		Sets:    r.Sets,
		PerSize: r.PerSize,
	}
}

// QuantityRequest carries a typed quantity. Value is taken as the buyer
// typed it: a number or a string, garbage reads as zero.
type QuantityRequest struct {
	Value json.RawMessage `json:"value"`
}

func (r QuantityRequest) raw() string {
	return strings.Trim(strings.TrimSpace(string(r.Value)), `"`)
}

// ToggleColorRequest names the color to toggle
type ToggleColorRequest struct {
	Color string `json:"color" binding:"required"`
}

// SelectAllRequest turns every color of every line item on or off
type SelectAllRequest struct {
	Enable bool `json:"enable"`
}

// ApplyQuantityRequest sets every line item to the same quantity
type ApplyQuantityRequest struct {
	Value int `json:"value"`
}

// SubmitOrderRequest is the request body for ordering the cart
type SubmitOrderRequest struct {
	CustomerRef string `json:"customer_ref" binding:"required"`
	AgentRef    string `json:"agent_ref"`
	Source      string `json:"source"`
}

func (r SubmitOrderRequest) input() application.SubmitCartInput {
	return application.SubmitCartInput{
		CustomerRef: r.CustomerRef,
		AgentRef:    r.AgentRef,
		Source:      r.Source,
	}
}

// QuickOrderRequest orders one selection without the cart
type QuickOrderRequest struct {
	AddToCartRequest
	SubmitOrderRequest
}

// StatusRequest is the request body for an explicit status change
type StatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// LifecycleRequest is the request body for cancel and restore
type LifecycleRequest struct {
	Reason    string `json:"reason"`
	Confirmed bool   `json:"confirmed"`
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"data":     data,
		"trace_id": c.GetString(middleware.TraceIDKey),
	})
}

func identity(c *gin.Context) auth.Identity {
	id, ok := auth.FromContext(c.Request.Context())
	if !ok {
		return auth.Anonymous(c.GetHeader(middleware.SessionIDHeader))
	}
	return id
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.Error(errors.NewValidation("invalid request body", err.Error()))
		return false
	}
	return true
}

func orderID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		c.Error(errors.NewValidation("invalid order id", nil))
		return 0, false
	}
	return uint(id), true
}

// ListCatalog handles GET /catalog
func (h *HTTPHandler) ListCatalog(c *gin.Context) {
	items, err := h.catalog.List(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]CatalogItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toCatalogResponse(item))
	}
	respond(c, http.StatusOK, out)
}

// GetCatalogEntry handles GET /catalog/:id
func (h *HTTPHandler) GetCatalogEntry(c *gin.Context) {
	item, err := h.catalog.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toCatalogResponse(*item))
}

// cartResult writes a cart use case result
func cartResult(c *gin.Context, out *application.CartOutput, err error) {
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toCartResponse(out))
}

// GetCart handles GET /cart
func (h *HTTPHandler) GetCart(c *gin.Context) {
	out, err := h.carts.GetCart(c.Request.Context(), identity(c))
	cartResult(c, out, err)
}

// AddToCart handles POST /cart/items
func (h *HTTPHandler) AddToCart(c *gin.Context) {
	var req AddToCartRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.carts.AddToCart(c.Request.Context(), identity(c), req.input())
	cartResult(c, out, err)
}

// UpdateLineItem handles PATCH /cart/items/:id
func (h *HTTPHandler) UpdateLineItem(c *gin.Context) {
	var patch domain.LineItemPatch
	if !bind(c, &patch) {
		return
	}
	out, err := h.carts.UpdateLineItem(c.Request.Context(), identity(c), c.Param("id"), patch)
	cartResult(c, out, err)
}

// RemoveFromCart handles DELETE /cart/items/:id
func (h *HTTPHandler) RemoveFromCart(c *gin.Context) {
	out, err := h.carts.RemoveFromCart(c.Request.Context(), identity(c), c.Param("id"))
	cartResult(c, out, err)
}

// IncrementSets handles POST /cart/items/:id/increment
func (h *HTTPHandler) IncrementSets(c *gin.Context) {
	out, err := h.carts.IncrementSets(c.Request.Context(), identity(c), c.Param("id"))
	cartResult(c, out, err)
}

// DecrementSets handles POST /cart/items/:id/decrement
func (h *HTTPHandler) DecrementSets(c *gin.Context) {
	out, err := h.carts.DecrementSets(c.Request.Context(), identity(c), c.Param("id"))
	cartResult(c, out, err)
}

// SetSets handles PUT /cart/items/:id/sets
func (h *HTTPHandler) SetSets(c *gin.Context) {
	var req QuantityRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.carts.SetSets(c.Request.Context(), identity(c), c.Param("id"), req.raw())
	cartResult(c, out, err)
}

// SetSizeCount handles PUT /cart/items/:id/sizes/:size
func (h *HTTPHandler) SetSizeCount(c *gin.Context) {
	var req QuantityRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.carts.SetSizeCount(c.Request.Context(), identity(c), c.Param("id"), c.Param("size"), req.raw())
	cartResult(c, out, err)
}

// ToggleColor handles POST /cart/items/:id/colors/toggle
func (h *HTTPHandler) ToggleColor(c *gin.Context) {
	var req ToggleColorRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.carts.ToggleColor(c.Request.Context(), identity(c), c.Param("id"), req.Color)
	cartResult(c, out, err)
}

// SelectAllColors handles POST /cart/colors/select-all
func (h *HTTPHandler) SelectAllColors(c *gin.Context) {
	var req SelectAllRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.carts.SelectAllColors(c.Request.Context(), identity(c), req.Enable)
	cartResult(c, out, err)
}

// ApplyQuantity handles POST /cart/apply-quantity
func (h *HTTPHandler) ApplyQuantity(c *gin.Context) {
	var req ApplyQuantityRequest
	if !bind(c, &req) {
		return
	}
	out, err := h.carts.ApplyToAll(c.Request.Context(), identity(c), req.Value)
	cartResult(c, out, err)
}

// ClearCart handles DELETE /cart
func (h *HTTPHandler) ClearCart(c *gin.Context) {
	if err := h.carts.ClearCart(c.Request.Context(), identity(c)); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MergeCart handles POST /cart/merge
func (h *HTTPHandler) MergeCart(c *gin.Context) {
	out, err := h.carts.MergeSessionCart(c.Request.Context(), identity(c))
	cartResult(c, out, err)
}

// SubmitCart handles POST /orders
func (h *HTTPHandler) SubmitCart(c *gin.Context) {
	var req SubmitOrderRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.orders.SubmitCart(c.Request.Context(), identity(c), req.input())
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, toWireOrder(order))
}

// QuickOrder handles POST /orders/quick
func (h *HTTPHandler) QuickOrder(c *gin.Context) {
	var req QuickOrderRequest
	if !bind(c, &req) {
		return
	}

	out, err := h.orders.QuickOrder(c.Request.Context(), application.QuickOrderInput{
		AddToCartInput:  req.AddToCartRequest.input(),
		SubmitCartInput: req.SubmitOrderRequest.input(),
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"order":   toWireOrder(out.Order),
		"outcome": out.Outcome,
	})
}

// GetOrder handles GET /orders/:id
func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	order, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toWireOrder(order))
}

// ListOrders handles GET /orders?customer=
func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Query("customer"))
	if err != nil {
		c.Error(err)
		return
	}

	out := make([]ordersv1.Order, 0, len(orders))
	for _, o := range orders {
		out = append(out, toWireOrder(o))
	}
	respond(c, http.StatusOK, out)
}

// SetStatus handles PATCH /orders/:id/status
func (h *HTTPHandler) SetStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req StatusRequest
	if !bind(c, &req) {
		return
	}

	order, err := h.orders.SetStatus(c.Request.Context(), application.SetStatusInput{
		ID:     id,
		Status: req.Status,
		Actor:  identity(c).Actor(),
		Reason: req.Reason,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toWireOrder(order))
}

// CancelOrder handles POST /orders/:id/cancel
func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	h.lifecycle(c, h.orders.CancelOrder)
}

// RestoreOrder handles POST /orders/:id/restore
func (h *HTTPHandler) RestoreOrder(c *gin.Context) {
	h.lifecycle(c, h.orders.RestoreOrder)
}

func (h *HTTPHandler) lifecycle(c *gin.Context, apply func(ctx context.Context, input application.LifecycleInput) (*domain.Order, error)) {
	id, ok := orderID(c)
	if !ok {
		return
	}
	var req LifecycleRequest
	if !bind(c, &req) {
		return
	}

	order, err := apply(c.Request.Context(), application.LifecycleInput{
		ID:        id,
		Actor:     identity(c).Actor(),
		Reason:    req.Reason,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		c.Error(err)
		return
	}
	respond(c, http.StatusOK, toWireOrder(order))
}
