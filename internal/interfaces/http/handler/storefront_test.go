package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omishoninjp-sys/helpshipping/internal/application/shipping"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/storefront"
)

type fakeOrders struct {
	orders []shipping.StorefrontOrder
	order  json.RawMessage
	result *shipping.FulfillResult
	err    error

	gotStatus   string
	gotLimit    int
	gotOrderID  string
	gotTracking string
}

func (f *fakeOrders) ListOrders(_ context.Context, fulfillmentStatus string, limit int) ([]shipping.StorefrontOrder, error) {
	f.gotStatus = fulfillmentStatus
	f.gotLimit = limit
	return f.orders, f.err
}

func (f *fakeOrders) GetOrder(_ context.Context, orderID string) (json.RawMessage, error) {
	f.gotOrderID = orderID
	return f.order, f.err
}

func (f *fakeOrders) FulfillOrder(_ context.Context, orderID, trackingNumber string) (*shipping.FulfillResult, error) {
	f.gotOrderID = orderID
	f.gotTracking = trackingNumber
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func storefrontRouter(orders *fakeOrders) *gin.Engine {
	r := gin.New()
	NewStorefrontHandler(orders, nil).RegisterRoutes(r.Group("/api"))
	return r
}

func TestStorefrontOrders(t *testing.T) {
	t.Run("defaults to unfulfilled", func(t *testing.T) {
		orders := &fakeOrders{orders: []shipping.StorefrontOrder{
			{ID: 9001, Name: "#1001", CustomerName: "王小明"},
		}}
		r := storefrontRouter(orders)

		w := getJSON(r, "/api/shopify/orders")

		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Len(t, body["orders"], 1)
		assert.Equal(t, "unfulfilled", orders.gotStatus)
		assert.Equal(t, 50, orders.gotLimit)
	})

	t.Run("status and limit pass through", func(t *testing.T) {
		orders := &fakeOrders{}
		r := storefrontRouter(orders)

		getJSON(r, "/api/shopify/orders?status=any&limit=10")

		assert.Equal(t, "any", orders.gotStatus)
		assert.Equal(t, 10, orders.gotLimit)
	})

	t.Run("storefront unreachable answers 502", func(t *testing.T) {
		r := storefrontRouter(&fakeOrders{err: storefront.ErrUnavailable})

		w := getJSON(r, "/api/shopify/orders")

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func TestStorefrontOrder(t *testing.T) {
	t.Run("order detail passes through verbatim", func(t *testing.T) {
		orders := &fakeOrders{order: json.RawMessage(`{"id":9001,"name":"#1001"}`)}
		r := storefrontRouter(orders)

		w := getJSON(r, "/api/shopify/order/9001")

		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		order := body["order"].(map[string]any)
		assert.Equal(t, "#1001", order["name"])
		assert.Equal(t, "9001", orders.gotOrderID)
	})

	t.Run("unknown order", func(t *testing.T) {
		r := storefrontRouter(&fakeOrders{err: shipping.ErrOrderInfoUnavailable})

		w := getJSON(r, "/api/shopify/order/404")

		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "無法取得訂單資訊", body["error"])
	})
}

func TestFulfill(t *testing.T) {
	t.Run("tracking written back", func(t *testing.T) {
		orders := &fakeOrders{result: &shipping.FulfillResult{
			FulfillmentID: 777,
			Message:       "出貨資訊已回寫 Shopify",
		}}
		r := storefrontRouter(orders)

		w := postJSON(t, r, "/api/shopify/fulfill", gin.H{
			"shopify_order_id": 9001,
			"tracking_number":  "SG777",
		})

		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(777), body["fulfillment_id"])
		assert.Equal(t, "出貨資訊已回寫 Shopify", body["message"])
		assert.Equal(t, "9001", orders.gotOrderID)
		assert.Equal(t, "SG777", orders.gotTracking)
	})

	t.Run("nothing left to fulfill", func(t *testing.T) {
		r := storefrontRouter(&fakeOrders{err: shipping.ErrNothingToFulfill})

		w := postJSON(t, r, "/api/shopify/fulfill", gin.H{
			"shopify_order_id": "9001",
			"tracking_number":  "SG777",
		})

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "找不到可出貨的訂單項目（可能已出貨）", body["error"])
	})
}
