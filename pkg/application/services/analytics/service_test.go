package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lararachidi/agent-supply-chain/pkg/application/services/rawmaterial"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/repositories/memory"
)

var monday = time.Date(2022, 11, 28, 0, 0, 0, 0, time.UTC)

func line(in, out string, qty entities.Quantity) *entities.BOMLine {
	return &entities.BOMLine{MaterialIn: entities.MaterialID(in), MaterialOut: entities.MaterialID(out), QtyPer: qty}
}

func newTestService(t *testing.T, prices ...*entities.ListPrice) *Service {
	t.Helper()
	ctx := context.Background()

	bom := []*entities.BOMLine{
		line("component_1", "syringe_1", 2),
		line("raw_1", "component_1", 3),
		line("raw_2", "syringe_1", 1),
		line("component_1", "vial_1", 1),
		line("raw_1", "vial_1", 4),
	}
	bomRepo := memory.NewBOMRepository(len(bom))
	require.NoError(t, bomRepo.LoadBOMLines(ctx, bom))

	demandRepo := memory.NewDemandRepository()
	require.NoError(t, demandRepo.LoadDemand(ctx, []*entities.DemandRecord{
		{Product: "syringe_1", Wholesaler: "Wholesaler_2", Date: monday.AddDate(0, 0, 7), Demand: 3},
		{Product: "syringe_1", Wholesaler: "Wholesaler_1", Date: monday.AddDate(0, 0, 7), Demand: 5},
		{Product: "syringe_1", Wholesaler: "Wholesaler_1", Date: monday, Demand: 4},
		{Product: "vial_1", Wholesaler: "Wholesaler_1", Date: monday, Demand: 9},
	}))

	out := memory.NewOutputRepository()
	require.NoError(t, out.ReplaceForecasts(ctx, []entities.ForecastPoint{
		{Product: "syringe_1", Wholesaler: "Wholesaler_1", Date: monday.AddDate(0, 0, 14), Demand: 6},
		{Product: "syringe_1", Wholesaler: "Wholesaler_2", Date: monday.AddDate(0, 0, 14), Demand: 2},
	}, nil))

	network := memory.NewNetworkRepository()
	require.NoError(t, network.LoadListPrices(ctx, prices))

	whereUsed := rawmaterial.NewService(bomRepo, out, out, nil)
	return NewService(demandRepo, out, network, whereUsed, nil)
}

func TestService_LookupProductDemand(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.LookupProductDemand(context.Background(), "syringe_1", "")
	require.NoError(t, err)
	require.Len(t, result.Historical, 3)
	assert.Equal(t, entities.Quantity(12), result.Total)
	assert.Equal(t, monday, result.Historical[0].Date)
	assert.Equal(t, "Wholesaler_1", result.Historical[1].Wholesaler)
	assert.Len(t, result.Forecast, 2)
}

func TestService_LookupProductDemandByWholesaler(t *testing.T) {
	svc := newTestService(t)

	result, err := svc.LookupProductDemand(context.Background(), "syringe_1", "Wholesaler_2")
	require.NoError(t, err)
	require.Len(t, result.Historical, 1)
	assert.Equal(t, entities.Quantity(3), result.Total)
	require.Len(t, result.Forecast, 1)
	assert.Equal(t, entities.Quantity(2), result.Forecast[0].Demand)
}

func TestService_LookupProductDemandNotFound(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.LookupProductDemand(context.Background(), "ampoule_1", "")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = svc.LookupProductDemand(context.Background(), "vial_1", "Wholesaler_7")
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = svc.LookupProductDemand(context.Background(), "", "")
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

func TestService_RevenueRisk(t *testing.T) {
	svc := newTestService(t,
		&entities.ListPrice{Product: "syringe_1", Price: decimal.RequireFromString("12.50")},
		&entities.ListPrice{Product: "vial_1", Price: decimal.RequireFromString("20.10")},
	)

	risk, err := svc.RevenueRisk(context.Background(), "raw_1", 13)
	require.NoError(t, err)
	require.Len(t, risk.Exposures, 2)

	// syringe_1 needs 6 raw_1 per unit, vial_1 needs 7
	assert.Equal(t, entities.MaterialID("vial_1"), risk.Exposures[0].Product)
	assert.Equal(t, entities.Quantity(7), risk.Exposures[0].RawPerUnit)
	assert.Equal(t, entities.Quantity(2), risk.Exposures[0].LostUnits)
	assert.Equal(t, "40.2", risk.Exposures[0].RevenueAtRisk.String())

	assert.Equal(t, entities.MaterialID("syringe_1"), risk.Exposures[1].Product)
	assert.Equal(t, entities.Quantity(3), risk.Exposures[1].LostUnits)
	assert.Equal(t, "37.5", risk.Exposures[1].RevenueAtRisk.String())

	assert.Equal(t, "40.2", risk.MaxExposure.String())
}

func TestService_RevenueRiskMissingPrice(t *testing.T) {
	svc := newTestService(t, &entities.ListPrice{Product: "syringe_1", Price: decimal.NewFromInt(10)})

	risk, err := svc.RevenueRisk(context.Background(), "raw_2", 5)
	require.NoError(t, err)
	require.Len(t, risk.Exposures, 1)
	assert.Equal(t, "50", risk.MaxExposure.String())

	risk, err = svc.RevenueRisk(context.Background(), "raw_1", 1)
	require.NoError(t, err)
	require.Len(t, risk.Exposures, 2)
	assert.Equal(t, entities.MaterialID("syringe_1"), risk.Exposures[0].Product)
	assert.True(t, risk.Exposures[1].MissingPrice)
	assert.True(t, risk.Exposures[1].RevenueAtRisk.IsZero())
}

func TestService_RevenueRiskInvalid(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.RevenueRisk(context.Background(), "raw_1", 0)
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, err = svc.RevenueRisk(context.Background(), "syringe_1", 3)
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, err = svc.RevenueRisk(context.Background(), "unobtainium", 3)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
