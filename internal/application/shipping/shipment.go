package shipping

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/warehouse"
)

// Shipment creation modes
const (
	ModeWarehouse = "warehouse" // ship packages already stocked at the warehouse
	ModeSelf      = "self"      // forecast the package first, then ship it
)

// duplicateOrderMarker is the substring the warehouse puts in the error
// message when an order with the same customer_order_id already exists
const duplicateOrderMarker = "已存在"

// User-facing shipment errors
var (
	ErrPackagesRequired = errors.New("倉庫代發模式需要選擇已入庫的包裹")
	ErrConfirmFailed    = errors.New("確定發貨失敗")
	ErrCancelFailed     = errors.New("取消訂單失敗")
)

// DeclareInput is one customs declaration line from the admin tool
type DeclareInput struct {
	ProductName      string     `json:"product_name"`
	ProductNameLocal string     `json:"product_name_local"`
	ProductNum       FlexNumber `json:"product_num"`
	ProductPrice     FlexNumber `json:"product_price"`
}

// ShipmentRequest creates one outbound order. In warehouse mode
// PackageIDs selects stocked packages; in self mode a forecast is
// created on the fly under the customer order ID.
type ShipmentRequest struct {
	Mode            string         `json:"mode"`
	CustomerOrderID string         `json:"customer_order_id"`
	Recipient       string         `json:"recipient"`
	Address         string         `json:"address"`
	Phone           string         `json:"phone"`
	Memo            string         `json:"memo"`
	PackageIDs      []int          `json:"package_ids"`
	DeclareList     []DeclareInput `json:"declare_list"`
}

// ShipmentResult reports the created (or already existing) order
type ShipmentResult struct {
	OrderID  string `json:"order_id"`
	LogisNum string `json:"logis_num"`
	Message  string `json:"message"`
}

// ShipmentService creates, confirms and cancels outbound orders
type ShipmentService struct {
	api    WarehouseAPI
	logger *zap.Logger
	now    func() time.Time
}

// NewShipmentService creates the shipment service
func NewShipmentService(api WarehouseAPI, logger *zap.Logger) *ShipmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ShipmentService{api: api, logger: logger, now: time.Now}
}

// CreateShipment creates an outbound order. Re-submitting an order the
// warehouse already knows is not an error: the existing order is looked
// up and returned as a success.
func (s *ShipmentService) CreateShipment(ctx context.Context, req ShipmentRequest) (*ShipmentResult, error) {
	declareList, totalNum, totalPrice, err := buildDeclareList(req.DeclareList)
	if err != nil {
		return nil, err
	}

	var packageIDs []int
	if req.Mode == ModeWarehouse {
		if len(req.PackageIDs) == 0 {
			return nil, ErrPackagesRequired
		}
		packageIDs = req.PackageIDs
	} else {
		packageIDs, err = s.forecastForOrder(ctx, req, declareList, totalNum, totalPrice)
		if err != nil {
			return nil, err
		}
	}

	orderPackages := make([]warehouse.OrderPackage, 0, len(packageIDs))
	for _, pid := range packageIDs {
		orderPackages = append(orderPackages, warehouse.OrderPackage{
			PackageID:   pid,
			DeclareList: declareList,
		})
	}

	env, err := s.api.CreateOrder(ctx, warehouse.OrderRequest{
		CustomerOrderID: req.CustomerOrderID,
		DelivID:         s.api.DelivID(),
		Recipient:       req.Recipient,
		IDIssure:        "",
		Area:            3, // Taiwan
		Addr1:           req.Address,
		Tel:             req.Phone,
		Memo:            req.Memo,
		CreateOrderPDF:  "y",
		WarehouseID:     s.api.WarehouseID(),
		CreatePackage:   "n",
		CreateSender:    "y",
		Packages:        orderPackages,
	})
	if err != nil {
		return nil, err
	}

	if env.Succeeded() {
		var result warehouse.OrderResult
		if err := env.DataObject(&result); err != nil {
			return nil, fmt.Errorf("shipping: failed to decode order result: %w", err)
		}
		s.logger.Info("order created",
			zap.String("customer_order_id", req.CustomerOrderID),
			zap.String("logis_num", result.LogisNum),
		)
		return &ShipmentResult{
			OrderID:  result.OrderID.String(),
			LogisNum: result.LogisNum,
			Message:  "運單創建成功",
		}, nil
	}

	if env.Valid() {
		// request accepted but the operation itself failed
		if detail := remoteDetail(env); detail != "" {
			return nil, errors.New(detail)
		}
		return nil, errors.New("創建失敗")
	}

	if env.HasErrorContaining(duplicateOrderMarker) {
		return s.lookupExisting(ctx, req.CustomerOrderID)
	}

	return nil, errors.New(strings.Join(env.ErrorMessages(), "; "))
}

// forecastForOrder announces the package under the customer order ID so
// a self-shipped parcel can be attached to the order
func (s *ShipmentService) forecastForOrder(ctx context.Context, req ShipmentRequest, declareList []warehouse.DeclareItem, totalNum, totalPrice int) ([]int, error) {
	productName := fallbackProductName
	if len(declareList) > 0 {
		productName = declareList[0].ProductName
	}

	env, err := s.api.ForecastPackages(ctx, []warehouse.ForecastPackage{{
		LocalLogisNum: req.CustomerOrderID,
		ClientCID:     req.CustomerOrderID,
		ClientPID:     req.CustomerOrderID,
		ClientDate:    s.now().Format("2006-01-02 15:04:05"),
		WarehouseID:   s.api.WarehouseID(),
		ProductName:   productName,
		ProductNum:    totalNum,
		ProductPrice:  totalPrice,
		DeclareList:   declareList,
	}})
	if err != nil {
		return nil, fmt.Errorf("預報包裹失敗: %w", err)
	}

	if !env.Valid() {
		return nil, fmt.Errorf("預報包裹失敗: %s", strings.Join(env.ErrorMessages(), "; "))
	}
	if !env.Succeeded() {
		detail := remoteDetail(env)
		if detail == "" {
			detail = "未知錯誤"
		}
		return nil, fmt.Errorf("預報包裹失敗: %s", detail)
	}

	var results []warehouse.ForecastResult
	if err := env.DataList(&results); err != nil {
		return nil, fmt.Errorf("預報包裹失敗: %v", err)
	}

	packageIDs := make([]int, 0, len(results))
	for _, r := range results {
		if pid := r.PackageID.Int(); pid != 0 {
			packageIDs = append(packageIDs, pid)
		}
	}
	if len(packageIDs) == 0 {
		return nil, errors.New("預報包裹失敗：未取得 package_id")
	}
	return packageIDs, nil
}

// lookupExisting resolves a duplicate submission to the order already
// on file
func (s *ShipmentService) lookupExisting(ctx context.Context, customerOrderID string) (*ShipmentResult, error) {
	result := &ShipmentResult{Message: "此運單已存在，無需重複建立"}

	env, err := s.api.SearchOrders(ctx, warehouse.SearchFilter{CustomerOrderID: customerOrderID})
	if err == nil && env.Valid() {
		var orders []warehouse.OrderRecord
		if decodeErr := env.DataList(&orders); decodeErr == nil && len(orders) > 0 {
			result.OrderID = orders[0].OrderID.String()
			result.LogisNum = orders[0].LogisNum
		}
	}

	s.logger.Info("order already exists",
		zap.String("customer_order_id", customerOrderID),
		zap.String("logis_num", result.LogisNum),
	)
	return result, nil
}

// ConfirmShipment releases the order for shipping
func (s *ShipmentService) ConfirmShipment(ctx context.Context, customerOrderID string) error {
	env, err := s.api.ConfirmOrder(ctx, customerOrderID)
	if err != nil {
		return err
	}
	if !env.Succeeded() {
		return ErrConfirmFailed
	}
	s.logger.Info("order confirmed", zap.String("customer_order_id", customerOrderID))
	return nil
}

// CancelShipment cancels an order that has not shipped yet
func (s *ShipmentService) CancelShipment(ctx context.Context, customerOrderID string) error {
	env, err := s.api.DeleteOrder(ctx, customerOrderID)
	if err != nil {
		return err
	}
	if !env.Succeeded() {
		return ErrCancelFailed
	}
	s.logger.Info("order cancelled", zap.String("customer_order_id", customerOrderID))
	return nil
}

// buildDeclareList converts declared items, coercing loosely-typed
// quantities and prices
func buildDeclareList(items []DeclareInput) ([]warehouse.DeclareItem, int, int, error) {
	declareList := make([]warehouse.DeclareItem, 0, len(items))
	totalNum := 0
	totalPrice := 0

	for _, item := range items {
		qty, err := item.ProductNum.IntValue(1)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("數量格式錯誤: %v", err)
		}
		price, err := item.ProductPrice.IntValue(100)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("價格格式錯誤: %v", err)
		}

		name := item.ProductName
		if name == "" {
			name = fallbackProductName
		}
		nameLocal := item.ProductNameLocal
		if nameLocal == "" {
			nameLocal = name
		}

		declareList = append(declareList, warehouse.DeclareItem{
			ProductName:      name,
			ProductNameLocal: nameLocal,
			ProductNum:       qty,
			ProductPrice:     price,
		})
		totalNum += qty
		totalPrice += price * qty
	}

	return declareList, totalNum, totalPrice, nil
}
