package csv

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoader_LoadBOM(t *testing.T) {
	path := writeFile(t, "bom.csv", "material_in,material_out,qty\nbarrel_1,syringe_1,1\nplastic_1,barrel_1,2\n")

	lines, err := NewLoader().LoadBOM(path)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "plastic_1", string(lines[1].MaterialIn))
	assert.EqualValues(t, 2, lines[1].QtyPer)
}

func TestLoader_LoadBOM_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{"header only", "material_in,material_out,qty\n", "must have header and at least one data row"},
		{"bad header", "in,out,qty\na,b,1\n", "header mismatch"},
		{"bad qty", "material_in,material_out,qty\na,b,x\n", "row 2: invalid qty: x"},
		{"self loop", "material_in,material_out,qty\na,a,1\n", "row 2: material in and material out cannot be the same"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, "bom.csv", tc.content)
			_, err := NewLoader().LoadBOM(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoader_LoadDemand(t *testing.T) {
	path := writeFile(t, "demand.csv",
		"product,sku,wholesaler,date,demand\n"+
			"syringe_1,SYR-001,Wholesaler_1,2023-01-02,12\n"+
			"syringe_1,SYR-001,Wholesaler_1,2023-01-09,15\n")

	demand, err := NewLoader().LoadDemand(path)
	require.NoError(t, err)
	require.Len(t, demand, 2)
	assert.Equal(t, "Wholesaler_1", demand[0].Wholesaler)
	assert.Equal(t, 2023, demand[1].Date.Year())
	assert.EqualValues(t, 15, demand[1].Demand)

	bad := writeFile(t, "bad.csv", "product,sku,wholesaler,date,demand\nsyringe_1,S,W,01/02/2023,1\n")
	_, err = NewLoader().LoadDemand(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date format")
}

func TestLoader_LoadAssignments_RejectsDoubleAssignment(t *testing.T) {
	path := writeFile(t, "mapping.csv",
		"distribution_center,wholesaler\nDistribution_Center_1,Wholesaler_1\nDistribution_Center_2,Wholesaler_1\n")

	_, err := NewLoader().LoadAssignments(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already assigned to Distribution_Center_1")
}

func TestLoader_LoadNetworkTables(t *testing.T) {
	loader := NewLoader()

	supply, err := loader.LoadPlantSupply(writeFile(t, "supply.csv", "product,plant,supply\nvial_1,plant_1,500\n"))
	require.NoError(t, err)
	assert.EqualValues(t, 500, supply[0].Supply)

	costs, err := loader.LoadTransportCosts(writeFile(t, "cost.csv",
		"product,plant,distribution_center,cost\nvial_1,plant_1,Distribution_Center_1,1.25\n"))
	require.NoError(t, err)
	assert.InDelta(t, 1.25, costs[0].Cost, 1e-9)

	prices, err := loader.LoadListPrices(writeFile(t, "prices.csv", "product,price\nvial_1,19.99\n"))
	require.NoError(t, err)
	assert.Equal(t, "19.99", prices[0].Price.String())

	_, err = loader.LoadListPrices(writeFile(t, "prices.csv", "product,price\nvial_1,-1\n"))
	require.Error(t, err)
}
