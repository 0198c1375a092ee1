package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/application/membership"
	"github.com/omishoninjp-sys/helpshipping/internal/domain/member"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/dto"
)

// AdminDirectory is the membership surface the admin endpoints need
type AdminDirectory interface {
	VerifyAdmin(password string) bool
	Members(ctx context.Context) (*membership.MemberList, error)
	SetShippingRate(ctx context.Context, customerGID string, rate int) error
}

// AdminHandler serves the admin panel: password check, the member
// overview and per-member shipping rates
type AdminHandler struct {
	directory AdminDirectory
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(directory AdminDirectory, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{directory: directory, logger: logger}
}

// RegisterRoutes registers admin routes under /admin
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin")
	admin.POST("/verify", h.Verify)
	admin.GET("/members", h.Members)
	admin.POST("/shipping_rate", h.SetShippingRate)
}

// Verify checks the admin password
func (h *AdminHandler) Verify(c *gin.Context) {
	var req dto.AdminVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, "密碼錯誤")
		return
	}
	if !h.directory.VerifyAdmin(req.Password) {
		respondFail(c, "密碼錯誤")
		return
	}
	respondOK(c, gin.H{})
}

// Members lists every customer holding a member code, with the next
// free code for assignment
func (h *AdminHandler) Members(c *gin.Context) {
	list, err := h.directory.Members(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{
		"members":               list.Members,
		"total":                 list.Total,
		"max_number":            list.MaxNumber,
		"next_g_code":           list.NextCode,
		"default_shipping_rate": list.DefaultRate,
	})
}

// SetShippingRate stores a member's per-kg shipping rate on the
// customer metafield
func (h *AdminHandler) SetShippingRate(c *gin.Context) {
	var req dto.ShippingRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, "缺少客戶 ID")
		return
	}
	if req.CustomerGID == "" {
		respondFail(c, "缺少客戶 ID")
		return
	}

	rate, err := member.ParseRate(string(req.ShippingRate))
	if err != nil {
		respondFail(c, err.Error())
		return
	}

	if err := h.directory.SetShippingRate(c.Request.Context(), req.CustomerGID, rate); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"shipping_rate": rate})
}
