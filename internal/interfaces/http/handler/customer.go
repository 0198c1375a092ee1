package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/application/membership"
	"github.com/omishoninjp-sys/helpshipping/internal/application/shipping"
	"github.com/omishoninjp-sys/helpshipping/internal/domain/member"
	"github.com/omishoninjp-sys/helpshipping/internal/interfaces/http/dto"
)

// MemberDirectory verifies storefront customers by member code
type MemberDirectory interface {
	VerifyCustomer(ctx context.Context, code member.Code, password string) (*membership.Customer, error)
}

// PackageForecaster announces packages and answers member package and
// order queries
type PackageForecaster interface {
	CreateForecast(ctx context.Context, code member.Code, packages []shipping.ForecastPackageInput) *shipping.ForecastBatch
	ListPackages(ctx context.Context, code member.Code) ([]shipping.PackageSummary, error)
	ListOrders(ctx context.Context, code member.Code) ([]shipping.OrderSummary, error)
}

// CustomerHandler serves the member-facing endpoints: login, package
// forecasting and the member's own package and order lists
type CustomerHandler struct {
	directory MemberDirectory
	forecasts PackageForecaster
	logger    *zap.Logger
}

// NewCustomerHandler creates a new CustomerHandler
func NewCustomerHandler(directory MemberDirectory, forecasts PackageForecaster, logger *zap.Logger) *CustomerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CustomerHandler{directory: directory, forecasts: forecasts, logger: logger}
}

// RegisterRoutes registers customer routes
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/verify_customer", h.VerifyCustomer)
	rg.POST("/forecast", h.Forecast)
	rg.GET("/packages", h.Packages)
	rg.GET("/orders", h.Orders)
}

// VerifyCustomer authenticates a member: the member code plus the phone
// number on file as password
func (h *CustomerHandler) VerifyCustomer(c *gin.Context) {
	var req dto.VerifyCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, "請輸入會員編號")
		return
	}
	if req.CustomerID == "" {
		respondFail(c, "請輸入會員編號")
		return
	}
	if req.Password == "" {
		respondFail(c, "請輸入密碼")
		return
	}

	code, err := member.ParseCode(req.CustomerID)
	if err != nil {
		respondFail(c, membership.ErrMemberNotFound.Error())
		return
	}

	customer, err := h.directory.VerifyCustomer(c.Request.Context(), code, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, gin.H{"customer": customer})
}

// Forecast announces one or more inbound packages to the warehouse.
// Packages fail individually; the response carries every outcome.
func (h *CustomerHandler) Forecast(c *gin.Context) {
	var req dto.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondFail(c, "缺少客戶編號")
		return
	}
	if req.CustomerID == "" {
		respondFail(c, "缺少客戶編號")
		return
	}
	code, err := member.ParseCode(req.GCode)
	if err != nil {
		respondFail(c, "缺少客戶編號")
		return
	}
	if len(req.Packages) == 0 {
		respondFail(c, "請至少填寫一個包裹")
		return
	}

	batch := h.forecasts.CreateForecast(c.Request.Context(), code, req.Packages)
	c.JSON(http.StatusOK, batch)
}

// Packages lists the member's packages at the warehouse
func (h *CustomerHandler) Packages(c *gin.Context) {
	code, ok := h.memberCode(c)
	if !ok {
		return
	}

	packages, err := h.forecasts.ListPackages(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"packages": packages})
}

// Orders lists the member's outbound orders
func (h *CustomerHandler) Orders(c *gin.Context) {
	code, ok := h.memberCode(c)
	if !ok {
		return
	}

	orders, err := h.forecasts.ListOrders(c.Request.Context(), code)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"orders": orders})
}

// memberCode extracts and validates the member code from the query
// string, answering the failure itself when it is missing or malformed
func (h *CustomerHandler) memberCode(c *gin.Context) (member.Code, bool) {
	var q dto.MemberQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondFail(c, "缺少會員編號")
		return "", false
	}
	if q.Code() == "" {
		respondFail(c, "缺少會員編號")
		return "", false
	}
	code, err := member.ParseCode(q.Code())
	if err != nil {
		respondFail(c, "缺少會員編號")
		return "", false
	}
	return code, true
}
