package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

func sampleTransport() *dto.TransportResult {
	plant, dc := "plant_1", "distribution_center_1"
	shipped := entities.Quantity(40)
	return &dto.TransportResult{
		Recommendations: []entities.ShipmentRecommendation{
			{Product: "syringe_1", Plant: &plant, DistributionCenter: &dc, QtyShipped: &shipped},
			{Product: "vial_1"},
		},
		Optimal:    1,
		Infeasible: []entities.MaterialID{"vial_1"},
		TotalCost:  decimal.RequireFromString("130"),
	}
}

func TestWrite_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "transport", sampleTransport(), Config{Format: FormatText}))

	out := buf.String()
	assert.Contains(t, out, "Optimal Products: 1")
	assert.Contains(t, out, "Total Cost: 130.00")
	assert.Contains(t, out, "Infeasible: [vial_1]")
	assert.Contains(t, out, "shipment_recommendations")
	assert.Contains(t, out, "distribution_center_1")
}

func TestWrite_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "transport", sampleTransport(), Config{Format: FormatJSON}))

	var decoded struct {
		Recommendations []map[string]interface{} `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Recommendations, 2)
	assert.Nil(t, decoded.Recommendations[1]["plant"])
	assert.Nil(t, decoded.Recommendations[1]["qty_shipped"])
}

func TestWrite_CSVToWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "transport", sampleTransport(), Config{Format: FormatCSV}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"product", "plant", "distribution_center", "qty_shipped"},
		{"syringe_1", "plant_1", "distribution_center_1", "40"},
		{"vial_1", "", "", ""},
	}, rows)
}

func TestWrite_CSVToDirectory(t *testing.T) {
	dir := t.TempDir()
	risk := &entities.RevenueRisk{
		Raw:       "raw_1",
		Shortfall: 13,
		Exposures: []entities.ProductExposure{
			{Product: "vial_1", RawPerUnit: 4, LostUnits: 4, ListPrice: decimal.RequireFromString("10.05"), RevenueAtRisk: decimal.RequireFromString("40.2")},
			{Product: "nail_1", RawPerUnit: 1, LostUnits: 13, MissingPrice: true},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "risk", risk, Config{Format: FormatCSV, OutputDir: dir}))

	f, err := os.Open(filepath.Join(dir, "risk_revenue_risk.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"vial_1", "4", "4", "10.05", "40.20"}, rows[1])
	assert.Equal(t, "n/a", rows[2][3])
}

func TestWrite_CSVRequiresRows(t *testing.T) {
	err := Write(&bytes.Buffer{}, "emails", &dto.EmailIndexResult{Emails: 3}, Config{Format: FormatCSV})
	assert.Error(t, err)
}

func TestWrite_UnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, "x", sampleTransport(), Config{Format: "xml"})
	assert.ErrorContains(t, err, "unsupported output format")
}

func TestWrite_GenieAnswerText(t *testing.T) {
	answer := &dto.GenieAnswer{
		Question:  "which emails mention delays?",
		Tool:      "query_unstructured_emails",
		Arguments: map[string]string{"query": "delays"},
		Source:    "rules",
		Result: []entities.EmailMatch{
			{Date: time.Date(2023, 1, 2, 3, 4, 5, 0, time.UTC), Content: "Subject: delays\n\nBody", Score: 0.5},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, "ask", answer, Config{}))

	out := buf.String()
	assert.Contains(t, out, "tool: query_unstructured_emails (rules)")
	assert.Contains(t, out, "2023-01-02 03:04:05")
	assert.Contains(t, out, "Subject: delays Body")
}
