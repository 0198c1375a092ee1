package handler

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/application/shipping"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/dto"
)

// StorefrontOrders reads storefront orders and writes tracking
// information back to them
type StorefrontOrders interface {
	ListOrders(ctx context.Context, fulfillmentStatus string, limit int) ([]shipping.StorefrontOrder, error)
	GetOrder(ctx context.Context, orderID string) (json.RawMessage, error)
	FulfillOrder(ctx context.Context, orderID, trackingNumber string) (*shipping.FulfillResult, error)
}

// StorefrontHandler serves the admin tool's storefront endpoints under
// /shopify
type StorefrontHandler struct {
	orders StorefrontOrders
	logger *zap.Logger
}

// NewStorefrontHandler creates a new StorefrontHandler
func NewStorefrontHandler(orders StorefrontOrders, logger *zap.Logger) *StorefrontHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StorefrontHandler{orders: orders, logger: logger}
}

// RegisterRoutes registers storefront routes under /shopify
func (h *StorefrontHandler) RegisterRoutes(rg *gin.RouterGroup) {
	shopify := rg.Group("/shopify")
	shopify.GET("/orders", h.Orders)
	shopify.GET("/order/:id", h.Order)
	shopify.POST("/fulfill", h.Fulfill)
}

// Orders lists storefront orders, unfulfilled ones by default
func (h *StorefrontHandler) Orders(c *gin.Context) {
	status := c.DefaultQuery("status", "unfulfilled")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	orders, err := h.orders.ListOrders(c.Request.Context(), status, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}

// Order returns one storefront order verbatim
func (h *StorefrontHandler) Order(c *gin.Context) {
	order, err := h.orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"order": order})
}

// Fulfill writes a tracking number back to a storefront order and
// notifies the customer
func (h *StorefrontHandler) Fulfill(c *gin.Context) {
	var req dto.FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, shipping.ErrOrderInfoUnavailable.Error())
		return
	}

	result, err := h.orders.FulfillOrder(c.Request.Context(), string(req.ShopifyOrderID), req.TrackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"fulfillment_id": result.FulfillmentID,
		"message":        result.Message,
	})
}
