package warehouse

import (
	"context"
	"encoding/json"
)

// DeclareItem is one customs declaration line inside a package
type DeclareItem struct {
	ProductName      string `json:"product_name"`
	ProductNameLocal string `json:"product_name_local"`
	ProductNum       int    `json:"product_num"`
	ProductPrice     int    `json:"product_price"`
	ProductURL       string `json:"product_url,omitempty"`
}

// ForecastPackage announces one inbound package before it reaches the
// warehouse. LocalLogisNum is the caller-assigned tracking key.
type ForecastPackage struct {
	LocalLogisNum string        `json:"local_logis_num"`
	ClientCID     string        `json:"client_cid"`
	ClientPID     string        `json:"client_pid"`
	ClientDate    string        `json:"client_date"`
	WarehouseID   int           `json:"warehouse_id"`
	ProductName   string        `json:"product_name"`
	ProductNum    int           `json:"product_num"`
	ProductPrice  int           `json:"product_price"`
	DeclareList   []DeclareItem `json:"declare_list"`
}

// ForecastResult is one per-package entry in a TForecastPackage response
type ForecastResult struct {
	PackageID FlexID `json:"package_id"`
	Msg       string `json:"msg"`
}

// SearchFilter narrows TSearchPackages / TSearchOrders queries.
// Zero-valued fields are omitted from the request.
type SearchFilter struct {
	ClientCID       string `json:"client_cid,omitempty"`
	CustomerOrderID string `json:"customer_order_id,omitempty"`
	StockDateFrom   string `json:"stock_date_from,omitempty"`
	CreateDate      string `json:"create_date,omitempty"`
}

// PackageRecord is one package row from TSearchPackages
type PackageRecord struct {
	PackageID     FlexID          `json:"package_id"`
	LocalLogisNum string          `json:"local_logis_num"`
	ClientPID     string          `json:"client_pid"`
	StatusName    string          `json:"status_name"`
	StatusID      FlexID          `json:"status_id"`
	Weight        FlexID          `json:"weight"`
	ProductName   string          `json:"product_name"`
	ProductNum    FlexID          `json:"product_num"`
	CreateDate    string          `json:"create_date"`
	InDate        string          `json:"in_date"`
	DeclareList   json.RawMessage `json:"declare_list"`
}

// OrderRecord is one outbound order row from TSearchOrders
type OrderRecord struct {
	OrderID         FlexID `json:"order_id"`
	CustomerOrderID string `json:"customer_order_id"`
	LogisNum        string `json:"logis_num"`
	StatusName      string `json:"status_name"`
	Recipient       string `json:"recipient"`
	CreateDate      string `json:"create_date"`
	Weight          FlexID `json:"weight"`
	DelivFee        FlexID `json:"deliv_fee"`
}

// OrderPackage attaches one forecast or stocked package to an order
type OrderPackage struct {
	PackageID   int           `json:"package_id"`
	DeclareList []DeclareItem `json:"declare_list"`
}

// OrderRequest is the TCreateOrder payload. Area 3 is Taiwan; the
// create_* flags are the literal "y"/"n" strings the API expects.
type OrderRequest struct {
	CustomerOrderID string         `json:"customer_order_id"`
	DelivID         int            `json:"deliv_id"`
	Recipient       string         `json:"recipient"`
	IDIssure        string         `json:"id_issure"`
	Area            int            `json:"area"`
	Addr1           string         `json:"addr1"`
	Addr2           string         `json:"addr2"`
	Addr3           string         `json:"addr3"`
	Addr4           string         `json:"addr4"`
	Tel             string         `json:"tel"`
	Memo            string         `json:"memo"`
	CreateOrderPDF  string         `json:"create_order_pdf"`
	WarehouseID     int            `json:"warehouse_id"`
	CreatePackage   string         `json:"create_package"`
	CreateSender    string         `json:"create_sender"`
	Packages        []OrderPackage `json:"packages"`
}

// OrderResult is the TCreateOrder success payload
type OrderResult struct {
	OrderID  FlexID `json:"order_id"`
	LogisNum string `json:"logis_num"`
	Msg      string `json:"msg"`
}

// ForecastPackages announces inbound packages (TForecastPackage)
func (c *Client) ForecastPackages(ctx context.Context, packages []ForecastPackage) (*Envelope, error) {
	return c.Call(ctx, OpForecastPackage, map[string]any{"packages": packages})
}

// SearchPackages queries packages matching the filter (TSearchPackages)
func (c *Client) SearchPackages(ctx context.Context, filter SearchFilter) (*Envelope, error) {
	return c.Call(ctx, OpSearchPackages, filter)
}

// SearchOrders queries outbound orders matching the filter (TSearchOrders)
func (c *Client) SearchOrders(ctx context.Context, filter SearchFilter) (*Envelope, error) {
	return c.Call(ctx, OpSearchOrders, filter)
}

// CreateOrder creates an outbound shipping order (TCreateOrder)
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (*Envelope, error) {
	return c.Call(ctx, OpCreateOrder, order)
}

// ConfirmOrder releases an order for shipping (TConfirmOrder)
func (c *Client) ConfirmOrder(ctx context.Context, customerOrderID string) (*Envelope, error) {
	return c.Call(ctx, OpConfirmOrder, map[string]any{"customer_order_id": customerOrderID})
}

// DeleteOrder cancels an order before it ships (TDeleteOrder)
func (c *Client) DeleteOrder(ctx context.Context, customerOrderID string) (*Envelope, error) {
	return c.Call(ctx, OpDeleteOrder, map[string]any{"customer_order_id": customerOrderID})
}
