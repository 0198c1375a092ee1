package dto

import "github.com/omishoninjp-sys/helpshipping/internal/application/shipping"

// VerifyCustomerRequest authenticates a member by code and phone number
type VerifyCustomerRequest struct {
	CustomerID string `json:"customer_id"`
	Password   string `json:"password"`
}

// ForecastRequest announces one or more inbound packages. CustomerID
// is the storefront customer ID, numeric or string depending on the
// frontend; it is required but the forecast itself keys on GCode.
type ForecastRequest struct {
	CustomerID shipping.FlexNumber             `json:"customer_id"`
	GCode      string                          `json:"g_code"`
	Packages   []shipping.ForecastPackageInput `json:"packages"`
}

// MemberQuery selects a member on list endpoints. CustomerID is the
// legacy alias some frontends still send.
type MemberQuery struct {
	GCode      string `form:"g_code" binding:"omitempty,gcode"`
	CustomerID string `form:"customer_id" binding:"omitempty,gcode"`
}

// Code returns whichever member code field was provided
func (q *MemberQuery) Code() string {
	if q.GCode != "" {
		return q.GCode
	}
	return q.CustomerID
}

// AdminVerifyRequest checks the admin password
type AdminVerifyRequest struct {
	Password string `json:"password"`
}

// ShippingRateRequest sets a member's per-kg shipping rate. The rate
// arrives as a number or string and is validated downstream.
type ShippingRateRequest struct {
	CustomerGID  string              `json:"customer_gid"`
	ShippingRate shipping.FlexNumber `json:"shipping_rate"`
}

// OrderActionRequest confirms or cancels an outbound order
type OrderActionRequest struct {
	CustomerOrderID string `json:"customer_order_id"`
}

// FulfillRequest writes a tracking number back to a storefront order
type FulfillRequest struct {
	ShopifyOrderID shipping.FlexNumber `json:"shopify_order_id"`
	TrackingNumber string              `json:"tracking_number"`
}
