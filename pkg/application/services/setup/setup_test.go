package setup

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lararachidi/agent-supply-chain/pkg/application/services/rawmaterial"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/services"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/repositories/memory"
)

func smallConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		Seed:                7,
		Plants:              2,
		Products:            12,
		DistributionCenters: 2,
		MinWholesalers:      2,
		MaxWholesalers:      3,
		Weeks:               10,
		StartDate:           "2022-11-28",
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := Generate(smallConfig())
	require.NoError(t, err)
	b, err := Generate(smallConfig())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := smallConfig()
	other.Seed = 8
	c, err := Generate(other)
	require.NoError(t, err)
	assert.NotEqual(t, a.Demand, c.Demand)
}

func TestGenerate_Shape(t *testing.T) {
	ds, err := Generate(smallConfig())
	require.NoError(t, err)

	wholesalers := len(ds.Assignments)
	assert.GreaterOrEqual(t, wholesalers, 4)
	assert.LessOrEqual(t, wholesalers, 6)
	assert.Len(t, ds.Demand, 12*wholesalers*10)
	assert.Len(t, ds.Supply, 12*2)
	assert.Len(t, ds.Costs, 12*2*2)
	assert.Len(t, ds.Prices, 12)

	assert.Equal(t, entities.MaterialID("syringe_1"), ds.Prices[0].Product)
	assert.Equal(t, entities.MaterialID("syringe_2"), ds.Prices[10].Product)
	assert.Equal(t, "Wholesaler_1", ds.Assignments[0].Wholesaler)
	assert.Equal(t, "Distribution_Center_1", ds.Assignments[0].DistributionCenter)

	for _, d := range ds.Demand {
		assert.GreaterOrEqual(t, int64(d.Demand), int64(0))
	}
	for _, c := range ds.Costs {
		assert.GreaterOrEqual(t, c.Cost, 1.0)
		assert.LessOrEqual(t, c.Cost, 20.0)
	}
	for _, p := range ds.Prices {
		assert.True(t, p.Price.IsPositive())
	}
	for _, l := range ds.BOM {
		assert.GreaterOrEqual(t, int64(l.QtyPer), int64(1))
		assert.LessOrEqual(t, int64(l.QtyPer), int64(4))
	}
}

func TestGenerate_BOMIsValid(t *testing.T) {
	ds, err := Generate(smallConfig())
	require.NoError(t, err)

	lines := make([]entities.BOMLine, len(ds.BOM))
	for i, l := range ds.BOM {
		lines[i] = *l
	}
	result := services.NewBOMValidator().ValidateBOM(lines)
	assert.True(t, result.IsValid(), result.Errors)

	components := make(map[entities.MaterialID]int)
	for _, l := range ds.BOM {
		if l.MaterialOut == "syringe_1" && l.MaterialIn[:4] == "comp" {
			components[l.MaterialIn]++
		}
	}
	assert.GreaterOrEqual(t, len(components), 2)
	assert.LessOrEqual(t, len(components), 4)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.MaxWholesalers = 1
	_, err := Generate(cfg)
	require.Error(t, err)
}

func newTestService(reset Resetter) (*Service, *memory.DemandRepository, *memory.NetworkRepository, *memory.BOMRepository) {
	demand := memory.NewDemandRepository()
	network := memory.NewNetworkRepository()
	bom := memory.NewBOMRepository(0)
	return NewService(demand, network, bom, reset, nil), demand, network, bom
}

func TestService_Generate(t *testing.T) {
	ctx := context.Background()
	resets := 0
	svc, demand, network, bom := newTestService(ResetFunc(func(context.Context) error {
		resets++
		return nil
	}))

	result, err := svc.Generate(ctx, smallConfig(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, resets)
	assert.True(t, result.ValidationOK)
	assert.Equal(t, 12, result.Products)
	assert.Equal(t, 2, result.Plants)
	assert.Equal(t, 2, result.DCs)

	all, err := demand.GetAllDemand(ctx)
	require.NoError(t, err)
	assert.Len(t, all, result.DemandRows)

	costs, err := network.GetTransportCosts(ctx)
	require.NoError(t, err)
	assert.Len(t, costs, result.CostRows)

	lines, err := bom.GetAllBOMLines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, result.BOMLines)
}

func TestService_ResetFailure(t *testing.T) {
	svc, _, _, _ := newTestService(ResetFunc(func(context.Context) error { return errors.New("locked") }))
	_, err := svc.Generate(context.Background(), smallConfig(), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to reset tables")
}

func TestService_LoadRejectsCycles(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	ds := &Dataset{BOM: []*entities.BOMLine{
		{MaterialIn: "component_1", MaterialOut: "syringe_1", QtyPer: 1},
		{MaterialIn: "syringe_1", MaterialOut: "component_1", QtyPer: 1},
	}}
	_, err := svc.Load(context.Background(), ds, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOM validation failed")
}

func TestService_LoadTwiceWithoutReset(t *testing.T) {
	ctx := context.Background()
	svc, demand, network, bom := newTestService(nil)
	ds := &Dataset{
		Demand: []*entities.DemandRecord{
			{Product: "syringe_1", SKU: "SKU-0001", Wholesaler: "Wholesaler_1", Date: time.Date(2022, 11, 28, 0, 0, 0, 0, time.UTC), Demand: 12},
		},
		Assignments: []*entities.WholesalerAssignment{
			{DistributionCenter: "Distribution_Center_1", Wholesaler: "Wholesaler_1"},
		},
		BOM: []*entities.BOMLine{
			{MaterialIn: "component_1", MaterialOut: "syringe_1", QtyPer: 2},
			{MaterialIn: "raw_1", MaterialOut: "component_1", QtyPer: 3},
			{MaterialIn: "raw_2", MaterialOut: "syringe_1", QtyPer: 1},
		},
		Supply: []*entities.PlantSupply{
			{Product: "syringe_1", Plant: "plant_1", Supply: 100},
		},
		Costs: []*entities.TransportCost{
			{Product: "syringe_1", Plant: "plant_1", DistributionCenter: "Distribution_Center_1", Cost: 4.5},
		},
		Prices: []*entities.ListPrice{
			{Product: "syringe_1", Price: decimal.RequireFromString("12.5")},
		},
	}

	out := memory.NewOutputRepository()
	require.NoError(t, out.ReplaceForecasts(ctx, nil, []entities.DCDemand{
		{Product: "syringe_1", DistributionCenter: "Distribution_Center_1", Demand: 5},
	}))
	derive := rawmaterial.NewService(bom, out, out, nil)

	_, err := svc.Load(ctx, ds, false)
	require.NoError(t, err)
	first, err := derive.Derive(ctx)
	require.NoError(t, err)

	_, err = svc.Load(ctx, ds, false)
	require.NoError(t, err)
	second, err := derive.Derive(ctx)
	require.NoError(t, err)

	lines, err := bom.GetAllBOMLines(ctx)
	require.NoError(t, err)
	assert.Len(t, lines, 3)
	assert.Equal(t, first.Requirements, second.Requirements)
	assert.Equal(t, []entities.RawMaterialRequirement{
		{Raw: "raw_1", Demand: 30},
		{Raw: "raw_2", Demand: 5},
	}, second.Requirements)

	history, err := demand.GetAllDemand(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
	costs, err := network.GetTransportCosts(ctx)
	require.NoError(t, err)
	assert.Len(t, costs, 1)
	assignments, err := network.GetAssignments(ctx)
	require.NoError(t, err)
	assert.Len(t, assignments, 1)
}

func TestService_Import(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		DemandFile:        "product,sku,wholesaler,date,demand\nsyringe_1,SKU-0001,Wholesaler_1,2022-11-28,12\nsyringe_1,SKU-0001,Wholesaler_7,2022-12-05,9\n",
		AssignmentFile:    "distribution_center,wholesaler\nDistribution_Center_1,Wholesaler_1\n",
		BOMFile:           "material_in,material_out,qty\ncomponent_1,syringe_1,2\nraw_1,component_1,3\n",
		PlantSupplyFile:   "product,plant,supply\nsyringe_1,plant_1,100\n",
		TransportCostFile: "product,plant,distribution_center,cost\nsyringe_1,plant_1,Distribution_Center_1,4.5\n",
		ListPriceFile:     "product,price\nsyringe_1,12.50\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}

	svc, _, network, _ := newTestService(nil)
	result, err := svc.Import(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, 2, result.DemandRows)
	assert.Equal(t, 2, result.BOMLines)
	assert.False(t, result.ValidationOK, "Wholesaler_7 has no distribution center")

	prices, err := network.GetListPrices(context.Background())
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, "12.5", prices[0].Price.String())
}

func TestService_ImportMissingFile(t *testing.T) {
	svc, _, _, _ := newTestService(nil)
	_, err := svc.Import(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load demand")
}
