package shipping

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/omishoninjp-sys/helpshipping/internal/infrastructure/warehouse"
)

// fakeWarehouse records requests and replays canned envelopes
type fakeWarehouse struct {
	forecastEnvs  []*warehouse.Envelope
	forecastErr   error
	forecastCalls [][]warehouse.ForecastPackage

	searchPackagesEnv     *warehouse.Envelope
	searchPackagesFilters []warehouse.SearchFilter

	searchOrdersEnv     *warehouse.Envelope
	searchOrdersFilters []warehouse.SearchFilter

	createEnv   *warehouse.Envelope
	createCalls []warehouse.OrderRequest

	confirmEnv *warehouse.Envelope
	deleteEnv  *warehouse.Envelope
}

func (f *fakeWarehouse) WarehouseID() int { return 1 }
func (f *fakeWarehouse) DelivID() int     { return 40 }

func (f *fakeWarehouse) ForecastPackages(ctx context.Context, packages []warehouse.ForecastPackage) (*warehouse.Envelope, error) {
	f.forecastCalls = append(f.forecastCalls, packages)
	if f.forecastErr != nil {
		return nil, f.forecastErr
	}
	env := f.forecastEnvs[0]
	if len(f.forecastEnvs) > 1 {
		f.forecastEnvs = f.forecastEnvs[1:]
	}
	return env, nil
}

func (f *fakeWarehouse) SearchPackages(ctx context.Context, filter warehouse.SearchFilter) (*warehouse.Envelope, error) {
	f.searchPackagesFilters = append(f.searchPackagesFilters, filter)
	return f.searchPackagesEnv, nil
}

func (f *fakeWarehouse) SearchOrders(ctx context.Context, filter warehouse.SearchFilter) (*warehouse.Envelope, error) {
	f.searchOrdersFilters = append(f.searchOrdersFilters, filter)
	return f.searchOrdersEnv, nil
}

func (f *fakeWarehouse) CreateOrder(ctx context.Context, order warehouse.OrderRequest) (*warehouse.Envelope, error) {
	f.createCalls = append(f.createCalls, order)
	return f.createEnv, nil
}

func (f *fakeWarehouse) ConfirmOrder(ctx context.Context, customerOrderID string) (*warehouse.Envelope, error) {
	return f.confirmEnv, nil
}

func (f *fakeWarehouse) DeleteOrder(ctx context.Context, customerOrderID string) (*warehouse.Envelope, error) {
	return f.deleteEnv, nil
}

// envFromJSON decodes a raw envelope literal for test fixtures
func envFromJSON(t *testing.T, raw string) *warehouse.Envelope {
	t.Helper()
	var env warehouse.Envelope
	require.NoError(t, json.Unmarshal([]byte(raw), &env))
	return &env
}

func successEnv(t *testing.T, data string) *warehouse.Envelope {
	t.Helper()
	return envFromJSON(t, `{"OperationResult": {"Request": {"IsValid": "True"}, "Result": {"Result": "SUCCESS", "Data": `+data+`}}}`)
}

func invalidEnv(t *testing.T, message string) *warehouse.Envelope {
	t.Helper()
	return envFromJSON(t, `{"OperationResult": {"Request": {"IsValid": "False", "Errors": {"Error": {"Code": "E01", "Message": "`+message+`"}}}}}`)
}

func failedEnv(t *testing.T, msg string) *warehouse.Envelope {
	t.Helper()
	return envFromJSON(t, `{"OperationResult": {"Request": {"IsValid": "True"}, "Result": {"Result": "FAILURE", "Data": {"msg": "`+msg+`"}}}}`)
}
