package shipping

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStorefront maps endpoints to canned response bodies
type fakeStorefront struct {
	getResponses map[string]string
	getCalls     []string
	postResponse string
	postCalls    []map[string]any
}

func (f *fakeStorefront) Get(ctx context.Context, endpoint string) ([]byte, error) {
	f.getCalls = append(f.getCalls, endpoint)
	return []byte(f.getResponses[endpoint]), nil
}

func (f *fakeStorefront) Post(ctx context.Context, endpoint string, body any) ([]byte, error) {
	raw, _ := json.Marshal(body)
	var m map[string]any
	json.Unmarshal(raw, &m)
	f.postCalls = append(f.postCalls, m)
	return []byte(f.postResponse), nil
}

func testFulfillmentConfig() FulfillmentConfig {
	return FulfillmentConfig{
		CarrierName:         "SG 速貴專線",
		TrackingURLTemplate: "https://www.sgxpress.com/query/?logic_num=%s",
	}
}

func TestListStorefrontOrders(t *testing.T) {
	t.Run("shapes orders and resolves recipient names", func(t *testing.T) {
		api := &fakeStorefront{getResponses: map[string]string{
			"orders.json?status=any&fulfillment_status=unfulfilled&limit=50": `{"orders": [
				{
					"id": 111, "order_number": 1001, "name": "#1001",
					"created_at": "2026-03-01T00:00:00+09:00",
					"total_price": "3500", "currency": "JPY",
					"fulfillment_status": null,
					"shipping_address": {
						"name": "本人", "first_name": "小明", "last_name": "王",
						"phone": "0912345678",
						"province": "台北市", "city": "信義區", "address1": "信義路五段7號", "address2": ""
					},
					"customer": {"first_name": "小明", "last_name": "王"},
					"line_items": [
						{"title": "保健食品", "variant_title": "30粒", "quantity": 2, "price": "1500", "sku": "HF-30"}
					]
				}
			]}`,
		}}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		orders, err := svc.ListOrders(context.Background(), "", 0)
		require.NoError(t, err)
		require.Len(t, orders, 1)

		order := orders[0]
		assert.Equal(t, int64(111), order.ID)
		assert.Equal(t, "#1001", order.Name)
		assert.Equal(t, "unfulfilled", order.FulfillmentStatus)
		// "本人" is a placeholder, so the name falls through to last+first
		assert.Equal(t, "王小明", order.CustomerName)
		assert.Equal(t, "台北市 信義區 信義路五段7號", order.Address)
		require.Len(t, order.LineItems, 1)
		assert.Equal(t, "保健食品", order.LineItems[0].Title)
		assert.Equal(t, 2, order.LineItems[0].Quantity)
	})

	t.Run("API error body surfaces", func(t *testing.T) {
		api := &fakeStorefront{getResponses: map[string]string{
			"orders.json?status=any&fulfillment_status=unfulfilled&limit=50": `{"errors": "[API] Invalid API key"}`,
		}}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		_, err := svc.ListOrders(context.Background(), "", 0)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid API key")
	})

	t.Run("fulfillment status is URL-escaped", func(t *testing.T) {
		api := &fakeStorefront{getResponses: map[string]string{
			"orders.json?status=any&fulfillment_status=fulfilled%26limit%3D250&limit=50": `{"orders": []}`,
		}}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		orders, err := svc.ListOrders(context.Background(), "fulfilled&limit=250", 0)
		require.NoError(t, err)
		assert.Empty(t, orders)
		require.Len(t, api.getCalls, 1)
		assert.Equal(t, "orders.json?status=any&fulfillment_status=fulfilled%26limit%3D250&limit=50", api.getCalls[0])
	})
}

func TestRecipientName(t *testing.T) {
	tests := []struct {
		name  string
		order restOrder
		want  string
	}{
		{
			name: "shipping name wins when valid",
			order: restOrder{
				ShippingAddress: &restAddress{Name: "王小明", FirstName: "x", LastName: "y"},
			},
			want: "王小明",
		},
		{
			name: "placeholder shipping name falls to combined",
			order: restOrder{
				ShippingAddress: &restAddress{Name: "同上", FirstName: "小明", LastName: "王"},
			},
			want: "王小明",
		},
		{
			name: "customer record as third choice",
			order: restOrder{
				ShippingAddress: &restAddress{Name: "test"},
				Customer: &struct {
					FirstName string `json:"first_name"`
					LastName  string `json:"last_name"`
				}{FirstName: "小華", LastName: "林"},
			},
			want: "林小華",
		},
		{
			name: "billing name as last resort",
			order: restOrder{
				ShippingAddress: &restAddress{Name: "測試"},
				BillingAddress:  &restAddress{Name: "陳大文"},
			},
			want: "陳大文",
		},
		{
			name:  "nothing usable",
			order: restOrder{},
			want:  "N/A",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recipientName(&tt.order))
		})
	}
}

func TestGetOrder(t *testing.T) {
	api := &fakeStorefront{getResponses: map[string]string{
		"orders/111.json": `{"order": {"id": 111, "name": "#1001"}}`,
	}}
	svc := NewOrderService(api, testFulfillmentConfig(), nil)

	order, err := svc.GetOrder(context.Background(), "111")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 111, "name": "#1001"}`, string(order))

	_, err = svc.GetOrder(context.Background(), "404")
	assert.Error(t, err)
}

func TestFulfillOrder(t *testing.T) {
	t.Run("fulfills the first open sub-order", func(t *testing.T) {
		api := &fakeStorefront{
			getResponses: map[string]string{
				"orders/111/fulfillment_orders.json": `{"fulfillment_orders": [
					{"id": 1, "status": "closed"},
					{"id": 2, "status": "open"},
					{"id": 3, "status": "open"}
				]}`,
			},
			postResponse: `{"fulfillment": {"id": 900}}`,
		}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		result, err := svc.FulfillOrder(context.Background(), "111", "SG123")
		require.NoError(t, err)
		assert.Equal(t, int64(900), result.FulfillmentID)

		require.Len(t, api.postCalls, 1)
		fulfillment := api.postCalls[0]["fulfillment"].(map[string]any)

		lineItems := fulfillment["line_items_by_fulfillment_order"].([]any)
		require.Len(t, lineItems, 1)
		assert.Equal(t, float64(2), lineItems[0].(map[string]any)["fulfillment_order_id"])

		tracking := fulfillment["tracking_info"].(map[string]any)
		assert.Equal(t, "SG123", tracking["number"])
		assert.Equal(t, "SG 速貴專線", tracking["company"])
		assert.Equal(t, "https://www.sgxpress.com/query/?logic_num=SG123", tracking["url"])
		assert.Equal(t, true, fulfillment["notify_customer"])
	})

	t.Run("in_progress also qualifies", func(t *testing.T) {
		api := &fakeStorefront{
			getResponses: map[string]string{
				"orders/111/fulfillment_orders.json": `{"fulfillment_orders": [{"id": 5, "status": "in_progress"}]}`,
			},
			postResponse: `{"fulfillment": {"id": 901}}`,
		}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		result, err := svc.FulfillOrder(context.Background(), "111", "SG124")
		require.NoError(t, err)
		assert.Equal(t, int64(901), result.FulfillmentID)
	})

	t.Run("nothing open", func(t *testing.T) {
		api := &fakeStorefront{
			getResponses: map[string]string{
				"orders/111/fulfillment_orders.json": `{"fulfillment_orders": [{"id": 1, "status": "closed"}]}`,
			},
		}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		_, err := svc.FulfillOrder(context.Background(), "111", "SG123")
		assert.ErrorIs(t, err, ErrNothingToFulfill)
	})

	t.Run("missing fulfillment orders key", func(t *testing.T) {
		api := &fakeStorefront{
			getResponses: map[string]string{
				"orders/111/fulfillment_orders.json": `{"errors": "Not Found"}`,
			},
		}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		_, err := svc.FulfillOrder(context.Background(), "111", "SG123")
		assert.ErrorIs(t, err, ErrOrderInfoUnavailable)
	})

	t.Run("rejected fulfillment surfaces detail", func(t *testing.T) {
		api := &fakeStorefront{
			getResponses: map[string]string{
				"orders/111/fulfillment_orders.json": `{"fulfillment_orders": [{"id": 2, "status": "open"}]}`,
			},
			postResponse: `{"errors": {"base": ["Tracking company invalid"]}}`,
		}
		svc := NewOrderService(api, testFulfillmentConfig(), nil)

		_, err := svc.FulfillOrder(context.Background(), "111", "SG123")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Tracking company invalid")
	})
}
