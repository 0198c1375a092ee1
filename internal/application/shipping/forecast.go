package shipping

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omishoninjp-sys/helpshipping/internal/domain/member"
	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/warehouse"
)

// ErrQueryFailed carries the user-facing message for rejected lookups
var ErrQueryFailed = errors.New("查詢失敗")

// fallbackProductName stands in for items forecast without a name
const fallbackProductName = "商品"

// WarehouseAPI is the slice of the warehouse client the shipping
// services use. Satisfied by *warehouse.Client.
type WarehouseAPI interface {
	WarehouseID() int
	DelivID() int
	ForecastPackages(ctx context.Context, packages []warehouse.ForecastPackage) (*warehouse.Envelope, error)
	SearchPackages(ctx context.Context, filter warehouse.SearchFilter) (*warehouse.Envelope, error)
	SearchOrders(ctx context.Context, filter warehouse.SearchFilter) (*warehouse.Envelope, error)
	CreateOrder(ctx context.Context, order warehouse.OrderRequest) (*warehouse.Envelope, error)
	ConfirmOrder(ctx context.Context, customerOrderID string) (*warehouse.Envelope, error)
	DeleteOrder(ctx context.Context, customerOrderID string) (*warehouse.Envelope, error)
}

// ForecastItem is one declared item inside a customer forecast
type ForecastItem struct {
	Name     string     `json:"name"`
	Quantity FlexNumber `json:"quantity"`
	Price    FlexNumber `json:"price"`
	URL      string     `json:"url"`
}

// ForecastPackageInput is one package a customer announces
type ForecastPackageInput struct {
	ClientPID string         `json:"client_pid"`
	Items     []ForecastItem `json:"items"`
}

// ForecastOutcome is the per-package result of a forecast batch
type ForecastOutcome struct {
	Success       bool   `json:"success"`
	LocalLogisNum string `json:"local_logis_num"`
	PackageID     string `json:"package_id,omitempty"`
	Message       string `json:"message,omitempty"`
	Error         string `json:"error,omitempty"`
}

// ForecastBatch collects per-package outcomes; Success is true only
// when every package was accepted
type ForecastBatch struct {
	Success bool              `json:"success"`
	Results []ForecastOutcome `json:"results"`
}

// PackageSummary is a package row shaped for the customer UI
type PackageSummary struct {
	PackageID     string          `json:"package_id"`
	LocalLogisNum string          `json:"local_logis_num"`
	ClientPID     string          `json:"client_pid"`
	Status        string          `json:"status"`
	StatusID      string          `json:"status_id"`
	Weight        string          `json:"weight"`
	ProductName   string          `json:"product_name"`
	ProductNum    string          `json:"product_num"`
	CreateDate    string          `json:"create_date"`
	InDate        string          `json:"in_date"`
	DeclareList   json.RawMessage `json:"declare_list"`
}

// OrderSummary is an outbound order row shaped for the customer UI
type OrderSummary struct {
	OrderID         string `json:"order_id"`
	CustomerOrderID string `json:"customer_order_id"`
	LogisNum        string `json:"logis_num"`
	Status          string `json:"status"`
	Recipient       string `json:"recipient"`
	CreateDate      string `json:"create_date"`
	Weight          string `json:"weight"`
	DelivFee        string `json:"deliv_fee"`
}

// ForecastService announces inbound packages and answers package and
// order queries for verified members
type ForecastService struct {
	api    WarehouseAPI
	logger *zap.Logger
	now    func() time.Time
}

// NewForecastService creates the forecast service
func NewForecastService(api WarehouseAPI, logger *zap.Logger) *ForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ForecastService{api: api, logger: logger, now: time.Now}
}

// CreateForecast announces each package separately so one rejected
// package does not sink the rest of the batch. The tracking key is
// {code}-{timestamp}-{index}, index starting at 1.
func (s *ForecastService) CreateForecast(ctx context.Context, code member.Code, packages []ForecastPackageInput) *ForecastBatch {
	batch := &ForecastBatch{Success: true, Results: make([]ForecastOutcome, 0, len(packages))}

	for idx, pkg := range packages {
		timestamp := s.now().Format("20060102150405")
		localLogisNum := fmt.Sprintf("%s-%s-%d", code, timestamp, idx+1)

		outcome := s.forecastOne(ctx, code, localLogisNum, pkg)
		if !outcome.Success {
			batch.Success = false
		}
		batch.Results = append(batch.Results, outcome)
	}

	return batch
}

func (s *ForecastService) forecastOne(ctx context.Context, code member.Code, localLogisNum string, pkg ForecastPackageInput) ForecastOutcome {
	fail := func(msg string) ForecastOutcome {
		s.logger.Warn("forecast rejected",
			zap.String("local_logis_num", localLogisNum),
			zap.String("reason", msg),
		)
		return ForecastOutcome{LocalLogisNum: localLogisNum, Error: msg}
	}

	declareList := make([]warehouse.DeclareItem, 0, len(pkg.Items))
	totalNum := 0
	totalPrice := 0

	for _, item := range pkg.Items {
		qty, err := item.Quantity.IntValue(1)
		if err != nil {
			return fail(fmt.Sprintf("數量格式錯誤: %v", err))
		}
		price, err := item.Price.IntValue(0)
		if err != nil {
			return fail(fmt.Sprintf("價格格式錯誤: %v", err))
		}

		name := item.Name
		if name == "" {
			name = fallbackProductName
		}

		declareList = append(declareList, warehouse.DeclareItem{
			ProductName:      name,
			ProductNameLocal: name,
			ProductNum:       qty,
			ProductPrice:     price,
			ProductURL:       item.URL,
		})
		totalNum += qty
		totalPrice += price * qty
	}

	productName := fallbackProductName
	if len(declareList) > 0 {
		productName = declareList[0].ProductName
	}

	clientPID := pkg.ClientPID
	if clientPID == "" {
		clientPID = localLogisNum
	}

	env, err := s.api.ForecastPackages(ctx, []warehouse.ForecastPackage{{
		LocalLogisNum: localLogisNum,
		ClientCID:     code.String(),
		ClientPID:     clientPID,
		ClientDate:    s.now().Format("2006-01-02 15:04:05"),
		WarehouseID:   s.api.WarehouseID(),
		ProductName:   productName,
		ProductNum:    totalNum,
		ProductPrice:  totalPrice,
		DeclareList:   declareList,
	}})
	if err != nil {
		return fail(fmt.Sprintf("預報失敗: %v", err))
	}

	if env.Succeeded() {
		var results []warehouse.ForecastResult
		if decodeErr := env.DataList(&results); decodeErr == nil && len(results) > 0 {
			msg := results[0].Msg
			if msg == "" {
				msg = "預報成功"
			}
			return ForecastOutcome{
				Success:       true,
				LocalLogisNum: localLogisNum,
				PackageID:     results[0].PackageID.String(),
				Message:       msg,
			}
		}
		return ForecastOutcome{Success: true, LocalLogisNum: localLogisNum, Message: "預報成功"}
	}

	if detail := remoteDetail(env); detail != "" {
		return fail("預報失敗: " + detail)
	}
	return fail("預報失敗")
}

// remoteDetail extracts the most useful failure detail from an envelope
func remoteDetail(env *warehouse.Envelope) string {
	if !env.Valid() {
		return strings.Join(env.ErrorMessages(), "; ")
	}
	var data struct {
		Msg string `json:"msg"`
	}
	if err := env.DataObject(&data); err == nil {
		return data.Msg
	}
	return ""
}

// ListPackages returns a member's packages shaped for display
func (s *ForecastService) ListPackages(ctx context.Context, code member.Code) ([]PackageSummary, error) {
	env, err := s.api.SearchPackages(ctx, warehouse.SearchFilter{ClientCID: code.String()})
	if err != nil {
		return nil, err
	}
	if !env.Valid() {
		return nil, ErrQueryFailed
	}

	var records []warehouse.PackageRecord
	if err := env.DataList(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	packages := make([]PackageSummary, 0, len(records))
	for _, r := range records {
		status := r.StatusName
		if status == "" {
			status = "未知"
		}
		weight := r.Weight.String()
		if weight == "" {
			weight = "0"
		}
		packages = append(packages, PackageSummary{
			PackageID:     r.PackageID.String(),
			LocalLogisNum: r.LocalLogisNum,
			ClientPID:     r.ClientPID,
			Status:        status,
			StatusID:      r.StatusID.String(),
			Weight:        weight,
			ProductName:   r.ProductName,
			ProductNum:    r.ProductNum.String(),
			CreateDate:    r.CreateDate,
			InDate:        r.InDate,
			DeclareList:   r.DeclareList,
		})
	}
	return packages, nil
}

// ListOrders returns a member's outbound orders shaped for display
func (s *ForecastService) ListOrders(ctx context.Context, code member.Code) ([]OrderSummary, error) {
	env, err := s.api.SearchOrders(ctx, warehouse.SearchFilter{ClientCID: code.String()})
	if err != nil {
		return nil, err
	}
	if !env.Valid() {
		return nil, ErrQueryFailed
	}

	var records []warehouse.OrderRecord
	if err := env.DataList(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}

	orders := make([]OrderSummary, 0, len(records))
	for _, r := range records {
		orders = append(orders, OrderSummary{
			OrderID:         r.OrderID.String(),
			CustomerOrderID: r.CustomerOrderID,
			LogisNum:        r.LogisNum,
			Status:          r.StatusName,
			Recipient:       r.Recipient,
			CreateDate:      r.CreateDate,
			Weight:          r.Weight.String(),
			DelivFee:        r.DelivFee.String(),
		})
	}
	return orders, nil
}

// RecentPackages lists packages stocked since the start of the current
// month, for the admin tool
func (s *ForecastService) RecentPackages(ctx context.Context) ([]warehouse.PackageRecord, error) {
	monthStart := time.Date(s.now().Year(), s.now().Month(), 1, 0, 0, 0, 0, s.now().Location())

	env, err := s.api.SearchPackages(ctx, warehouse.SearchFilter{
		StockDateFrom: monthStart.Format("2006-01-02 15:04:05"),
	})
	if err != nil {
		return nil, err
	}
	if !env.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, strings.Join(env.ErrorMessages(), "; "))
	}

	var records []warehouse.PackageRecord
	if err := env.DataList(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return records, nil
}

// OrdersToday lists outbound orders created today, for the admin tool
func (s *ForecastService) OrdersToday(ctx context.Context) ([]warehouse.OrderRecord, error) {
	env, err := s.api.SearchOrders(ctx, warehouse.SearchFilter{
		CreateDate: s.now().Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}
	if !env.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrQueryFailed, strings.Join(env.ErrorMessages(), "; "))
	}

	var records []warehouse.OrderRecord
	if err := env.DataList(&records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQueryFailed, err)
	}
	return records, nil
}
