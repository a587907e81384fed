package testing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/repositories/memory"
)

// Monday is the first week of the sample demand history
var Monday = time.Date(2024, 11, 4, 0, 0, 0, 0, time.UTC)

// TestData holds loaded repositories for a sample network
type TestData struct {
	BOM     *memory.BOMRepository
	Demand  *memory.DemandRepository
	Network *memory.NetworkRepository
	Output  *memory.OutputRepository
}

// BuildPharmaTestData builds a two product network:
//
//	syringe_1 <- 2 x component_1 <- 3 x raw_1
//	syringe_1 <- 1 x raw_2
//	vial_1    <- 1 x component_1, 4 x raw_1
//
// with two plants, two distribution centers and three wholesalers. vial_1 has
// no list price.
func BuildPharmaTestData() *TestData {
	ctx := context.Background()
	data := &TestData{
		BOM:     memory.NewBOMRepository(5),
		Demand:  memory.NewDemandRepository(),
		Network: memory.NewNetworkRepository(),
		Output:  memory.NewOutputRepository(),
	}

	bom := []*entities.BOMLine{
		mustCreateBOMLine("component_1", "syringe_1", 2),
		mustCreateBOMLine("raw_1", "component_1", 3),
		mustCreateBOMLine("raw_2", "syringe_1", 1),
		mustCreateBOMLine("component_1", "vial_1", 1),
		mustCreateBOMLine("raw_1", "vial_1", 4),
	}
	must(data.BOM.LoadBOMLines(ctx, bom))

	var demand []*entities.DemandRecord
	for week := 0; week < 3; week++ {
		date := Monday.AddDate(0, 0, 7*week)
		demand = append(demand,
			&entities.DemandRecord{Product: "syringe_1", SKU: "SKU-0001", Wholesaler: "Wholesaler_1", Date: date, Demand: entities.Quantity(4 + week)},
			&entities.DemandRecord{Product: "syringe_1", SKU: "SKU-0001", Wholesaler: "Wholesaler_2", Date: date, Demand: 3},
			&entities.DemandRecord{Product: "vial_1", SKU: "SKU-0002", Wholesaler: "Wholesaler_3", Date: date, Demand: 9},
		)
	}
	must(data.Demand.LoadDemand(ctx, demand))

	must(data.Network.LoadAssignments(ctx, []*entities.WholesalerAssignment{
		{DistributionCenter: "Distribution_Center_1", Wholesaler: "Wholesaler_1"},
		{DistributionCenter: "Distribution_Center_1", Wholesaler: "Wholesaler_3"},
		{DistributionCenter: "Distribution_Center_2", Wholesaler: "Wholesaler_2"},
	}))
	must(data.Network.LoadPlantSupply(ctx, []*entities.PlantSupply{
		{Product: "syringe_1", Plant: "plant_1", Supply: 60},
		{Product: "syringe_1", Plant: "plant_2", Supply: 60},
		{Product: "vial_1", Plant: "plant_1", Supply: 40},
	}))
	var costs []*entities.TransportCost
	for _, product := range []entities.MaterialID{"syringe_1", "vial_1"} {
		costs = append(costs,
			&entities.TransportCost{Product: product, Plant: "plant_1", DistributionCenter: "Distribution_Center_1", Cost: 1},
			&entities.TransportCost{Product: product, Plant: "plant_1", DistributionCenter: "Distribution_Center_2", Cost: 10},
			&entities.TransportCost{Product: product, Plant: "plant_2", DistributionCenter: "Distribution_Center_1", Cost: 8},
			&entities.TransportCost{Product: product, Plant: "plant_2", DistributionCenter: "Distribution_Center_2", Cost: 2},
		)
	}
	must(data.Network.LoadTransportCosts(ctx, costs))
	must(data.Network.LoadListPrices(ctx, []*entities.ListPrice{
		{Product: "syringe_1", Price: decimal.RequireFromString("9.99")},
	}))

	return data
}

func mustCreateBOMLine(in, out entities.MaterialID, qty entities.Quantity) *entities.BOMLine {
	line, err := entities.NewBOMLine(in, out, qty)
	if err != nil {
		panic(err)
	}
	return line
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
