package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/application/shipping"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/warehouse"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/dto"
)

// WarehouseBrowser answers the admin tool's warehouse-wide queries
type WarehouseBrowser interface {
	RecentPackages(ctx context.Context) ([]warehouse.PackageRecord, error)
	OrdersToday(ctx context.Context) ([]warehouse.OrderRecord, error)
}

// ShipmentManager creates, confirms and cancels outbound orders
type ShipmentManager interface {
	CreateShipment(ctx context.Context, req shipping.ShipmentRequest) (*shipping.ShipmentResult, error)
	ConfirmShipment(ctx context.Context, customerOrderID string) error
	CancelShipment(ctx context.Context, customerOrderID string) error
}

// WarehouseHandler serves the admin tool's warehouse endpoints under
// /jpd: recent packages, today's orders and the outbound order
// lifecycle
type WarehouseHandler struct {
	browser   WarehouseBrowser
	shipments ShipmentManager
	logger    *zap.Logger
}

// NewWarehouseHandler creates a new WarehouseHandler
func NewWarehouseHandler(browser WarehouseBrowser, shipments ShipmentManager, logger *zap.Logger) *WarehouseHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WarehouseHandler{browser: browser, shipments: shipments, logger: logger}
}

// RegisterRoutes registers warehouse routes under /jpd
func (h *WarehouseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	jpd := rg.Group("/jpd")
	jpd.GET("/packages", h.Packages)
	jpd.GET("/orders", h.Orders)
	jpd.POST("/create_order", h.CreateOrder)
	jpd.POST("/confirm_order", h.ConfirmOrder)
	jpd.POST("/cancel_order", h.CancelOrder)
}

// Packages lists packages received at the warehouse since the start of
// the current month
func (h *WarehouseHandler) Packages(c *gin.Context) {
	packages, err := h.browser.RecentPackages(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"packages": packages})
}

// Orders lists outbound orders created today
func (h *WarehouseHandler) Orders(c *gin.Context) {
	orders, err := h.browser.OrdersToday(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}

// CreateOrder creates an outbound order. A duplicate order ID is not a
// failure; the existing order is returned instead.
func (h *WarehouseHandler) CreateOrder(c *gin.Context) {
	var req shipping.ShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, "創建失敗")
		return
	}

	result, err := h.shipments.CreateShipment(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"order_id":  result.OrderID,
		"logis_num": result.LogisNum,
		"message":   result.Message,
	})
}

// ConfirmOrder marks an outbound order as ready to ship
func (h *WarehouseHandler) ConfirmOrder(c *gin.Context) {
	id, ok := h.orderID(c, shipping.ErrConfirmFailed.Error())
	if !ok {
		return
	}
	if err := h.shipments.ConfirmShipment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "確定發貨成功"})
}

// CancelOrder cancels an outbound order that has not shipped yet
func (h *WarehouseHandler) CancelOrder(c *gin.Context) {
	id, ok := h.orderID(c, shipping.ErrCancelFailed.Error())
	if !ok {
		return
	}
	if err := h.shipments.CancelShipment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"message": "訂單取消成功"})
}

// orderID binds the order action body, answering the failure itself on
// a malformed request
func (h *WarehouseHandler) orderID(c *gin.Context, failure string) (string, bool) {
	var req dto.OrderActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, failure)
		return "", false
	}
	return req.CustomerOrderID, true
}
