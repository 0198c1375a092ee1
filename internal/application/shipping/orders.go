package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// User-facing storefront order errors
var (
	ErrOrderInfoUnavailable = errors.New("無法取得訂單資訊")
	ErrNothingToFulfill     = errors.New("找不到可出貨的訂單項目（可能已出貨）")
)

// placeholderNames are the throwaway strings customers type into the
// recipient field at checkout; they never identify a real person
var placeholderNames = map[string]struct{}{
	"本人":    {},
	"本人本人":  {},
	"本人 本人": {},
	"同上":    {},
	"同收件人":  {},
	"test":  {},
	"測試":    {},
	".":     {},
	"-":     {},
	"":      {},
}

// StorefrontAPI is the slice of the storefront client the order
// services use. Satisfied by *storefront.Client.
type StorefrontAPI interface {
	Get(ctx context.Context, endpoint string) ([]byte, error)
	Post(ctx context.Context, endpoint string, body any) ([]byte, error)
}

// FulfillmentConfig controls the tracking info written back to the
// storefront when an order ships
type FulfillmentConfig struct {
	CarrierName         string
	TrackingURLTemplate string // %s is replaced with the tracking number
}

// OrderLineItem is one purchased item on a storefront order
type OrderLineItem struct {
	Title        string `json:"title"`
	VariantTitle string `json:"variant_title"`
	Quantity     int    `json:"quantity"`
	Price        string `json:"price"`
	SKU          string `json:"sku"`
}

// StorefrontOrder is an order row shaped for the admin tool
type StorefrontOrder struct {
	ID                int64           `json:"id"`
	OrderNumber       int             `json:"order_number"`
	Name              string          `json:"name"`
	CreatedAt         string          `json:"created_at"`
	TotalPrice        string          `json:"total_price"`
	Currency          string          `json:"currency"`
	FulfillmentStatus string          `json:"fulfillment_status"`
	CustomerName      string          `json:"customer_name"`
	Phone             string          `json:"phone"`
	Address           string          `json:"address"`
	LineItems         []OrderLineItem `json:"line_items"`
}

// FulfillResult reports a successful tracking write-back
type FulfillResult struct {
	FulfillmentID int64  `json:"fulfillment_id"`
	Message       string `json:"message"`
}

// OrderService reads storefront orders and writes shipping information
// back to them
type OrderService struct {
	api    StorefrontAPI
	cfg    FulfillmentConfig
	logger *zap.Logger
}

// NewOrderService creates the storefront order service
func NewOrderService(api StorefrontAPI, cfg FulfillmentConfig, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{api: api, cfg: cfg, logger: logger}
}

// restAddress is the subset of a storefront address the listing needs
type restAddress struct {
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Province  string `json:"province"`
	City      string `json:"city"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2"`
}

type restOrder struct {
	ID                int64        `json:"id"`
	OrderNumber       int          `json:"order_number"`
	Name              string       `json:"name"`
	CreatedAt         string       `json:"created_at"`
	TotalPrice        string       `json:"total_price"`
	Currency          string       `json:"currency"`
	FulfillmentStatus string       `json:"fulfillment_status"`
	ContactEmail      string       `json:"contact_email"`
	ShippingAddress   *restAddress `json:"shipping_address"`
	BillingAddress    *restAddress `json:"billing_address"`
	Customer          *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"customer"`
	LineItems []struct {
		Title        string `json:"title"`
		VariantTitle string `json:"variant_title"`
		Quantity     int    `json:"quantity"`
		Price        string `json:"price"`
		SKU          string `json:"sku"`
	} `json:"line_items"`
}

// ListOrders fetches storefront orders filtered by fulfillment status
func (s *OrderService) ListOrders(ctx context.Context, fulfillmentStatus string, limit int) ([]StorefrontOrder, error) {
	if fulfillmentStatus == "" {
		fulfillmentStatus = "unfulfilled"
	}
	if limit <= 0 {
		limit = 50
	}

	body, err := s.api.Get(ctx, fmt.Sprintf("orders.json?status=any&fulfillment_status=%s&limit=%d", url.QueryEscape(fulfillmentStatus), limit))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Orders []restOrder     `json:"orders"`
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shipping: failed to decode orders: %w", err)
	}
	if resp.Orders == nil {
		if len(resp.Errors) > 0 {
			return nil, errors.New(string(resp.Errors))
		}
		return nil, ErrOrderInfoUnavailable
	}

	orders := make([]StorefrontOrder, 0, len(resp.Orders))
	for _, o := range resp.Orders {
		shipping := o.ShippingAddress
		if shipping == nil {
			shipping = &restAddress{}
		}

		status := o.FulfillmentStatus
		if status == "" {
			status = "unfulfilled"
		}

		items := make([]OrderLineItem, 0, len(o.LineItems))
		for _, li := range o.LineItems {
			items = append(items, OrderLineItem{
				Title:        li.Title,
				VariantTitle: li.VariantTitle,
				Quantity:     li.Quantity,
				Price:        li.Price,
				SKU:          li.SKU,
			})
		}

		orders = append(orders, StorefrontOrder{
			ID:                o.ID,
			OrderNumber:       o.OrderNumber,
			Name:              o.Name,
			CreatedAt:         o.CreatedAt,
			TotalPrice:        o.TotalPrice,
			Currency:          o.Currency,
			FulfillmentStatus: status,
			CustomerName:      recipientName(&o),
			Phone:             shipping.Phone,
			Address:           joinAddress(shipping),
			LineItems:         items,
		})
	}
	return orders, nil
}

// GetOrder fetches one order and returns it unshaped
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (json.RawMessage, error) {
	body, err := s.api.Get(ctx, fmt.Sprintf("orders/%s.json", orderID))
	if err != nil {
		return nil, err
	}

	var resp struct {
		Order json.RawMessage `json:"order"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("shipping: failed to decode order: %w", err)
	}
	if len(resp.Order) == 0 {
		return nil, errors.New("Order not found")
	}
	return resp.Order, nil
}

// FulfillOrder writes the tracking number back to the storefront. The
// first fulfillment order still open (or in progress) receives the
// fulfillment; the customer is notified.
func (s *OrderService) FulfillOrder(ctx context.Context, orderID, trackingNumber string) (*FulfillResult, error) {
	body, err := s.api.Get(ctx, fmt.Sprintf("orders/%s/fulfillment_orders.json", orderID))
	if err != nil {
		return nil, err
	}

	var fos struct {
		FulfillmentOrders []struct {
			ID     int64  `json:"id"`
			Status string `json:"status"`
		} `json:"fulfillment_orders"`
	}
	if err := json.Unmarshal(body, &fos); err != nil || fos.FulfillmentOrders == nil {
		return nil, ErrOrderInfoUnavailable
	}

	for _, fo := range fos.FulfillmentOrders {
		if fo.Status != "open" && fo.Status != "in_progress" {
			continue
		}

		payload := map[string]any{
			"fulfillment": map[string]any{
				"line_items_by_fulfillment_order": []map[string]any{
					{"fulfillment_order_id": fo.ID},
				},
				"tracking_info": map[string]any{
					"number":  trackingNumber,
					"company": s.cfg.CarrierName,
					"url":     fmt.Sprintf(s.cfg.TrackingURLTemplate, trackingNumber),
				},
				"notify_customer": true,
			},
		}

		respBody, err := s.api.Post(ctx, "fulfillments.json", payload)
		if err != nil {
			return nil, err
		}

		var resp struct {
			Fulfillment *struct {
				ID int64 `json:"id"`
			} `json:"fulfillment"`
			Errors json.RawMessage `json:"errors"`
		}
		if err := json.Unmarshal(respBody, &resp); err != nil {
			return nil, fmt.Errorf("回寫失敗: %v", err)
		}
		if resp.Fulfillment == nil {
			detail := string(resp.Errors)
			if detail == "" {
				detail = string(respBody)
			}
			return nil, fmt.Errorf("回寫失敗: %s", detail)
		}

		s.logger.Info("tracking written back",
			zap.String("order_id", orderID),
			zap.String("tracking_number", trackingNumber),
			zap.Int64("fulfillment_id", resp.Fulfillment.ID),
		)
		return &FulfillResult{
			FulfillmentID: resp.Fulfillment.ID,
			Message:       "出貨資訊已回寫 Shopify",
		}, nil
	}

	return nil, ErrNothingToFulfill
}

// recipientName picks the best recipient name across the address and
// customer records, skipping checkout placeholder strings
func recipientName(o *restOrder) string {
	shipping := o.ShippingAddress
	if shipping == nil {
		shipping = &restAddress{}
	}
	billing := o.BillingAddress
	if billing == nil {
		billing = &restAddress{}
	}

	shippingName := strings.TrimSpace(shipping.Name)
	shippingCombined := strings.TrimSpace(strings.TrimSpace(shipping.LastName) + strings.TrimSpace(shipping.FirstName))

	customerCombined := ""
	if o.Customer != nil {
		customerCombined = strings.TrimSpace(strings.TrimSpace(o.Customer.LastName) + strings.TrimSpace(o.Customer.FirstName))
	}
	billingName := strings.TrimSpace(billing.Name)

	for _, candidate := range []string{shippingName, shippingCombined, customerCombined, billingName} {
		if _, placeholder := placeholderNames[candidate]; !placeholder {
			return candidate
		}
	}

	// nothing usable: fall back to whatever exists, placeholder or not
	for _, candidate := range []string{shippingName, shippingCombined, customerCombined} {
		if candidate != "" {
			return candidate
		}
	}
	return "N/A"
}

// joinAddress flattens the address fields into one display line
func joinAddress(a *restAddress) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.Province, a.City, a.Address1, a.Address2} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
