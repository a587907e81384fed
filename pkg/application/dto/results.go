package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// SetupResult summarizes the tables written by setup or import
type SetupResult struct {
	Products     int  `json:"products"`
	Plants       int  `json:"plants"`
	DCs          int  `json:"distribution_centers"`
	Wholesalers  int  `json:"wholesalers"`
	DemandRows   int  `json:"demand_rows"`
	BOMLines     int  `json:"bom_lines"`
	SupplyRows   int  `json:"supply_rows"`
	CostRows     int  `json:"cost_rows"`
	PriceRows    int  `json:"price_rows"`
	ValidationOK bool `json:"validation_ok"`
}

// ForecastResult contains the output of a forecast run
type ForecastResult struct {
	Series         int                      `json:"series"`
	Points         []entities.ForecastPoint `json:"points"`
	DCDemand       []entities.DCDemand      `json:"dc_demand"`
	Methods        map[string]int           `json:"methods"`
	UnmappedSeries int                      `json:"unmapped_series"`
	MeanRMSE       float64                  `json:"mean_rmse"`
	ProcessingTime time.Duration            `json:"processing_time"`
}

// RawMaterialResult contains derived raw material demand
type RawMaterialResult struct {
	Requirements    []entities.RawMaterialRequirement         `json:"requirements"`
	FinishedDemand  map[entities.MaterialID]entities.Quantity `json:"finished_demand"`
	UnknownProducts []entities.MaterialID                     `json:"unknown_products,omitempty"`
	ProcessingTime  time.Duration                             `json:"processing_time"`
}

// TransportResult contains the shipment plans of every product
type TransportResult struct {
	Plans           []entities.ProductShipmentPlan    `json:"plans"`
	Recommendations []entities.ShipmentRecommendation `json:"recommendations"`
	Optimal         int                               `json:"optimal"`
	Infeasible      []entities.MaterialID             `json:"infeasible,omitempty"`
	Skipped         []entities.MaterialID             `json:"skipped,omitempty"`
	TotalCost       decimal.Decimal                   `json:"total_cost"`
	ProcessingTime  time.Duration                     `json:"processing_time"`
}

// EmailIndexResult summarizes email generation and indexing
type EmailIndexResult struct {
	Emails  int    `json:"emails"`
	Indexed int    `json:"indexed"`
	Skipped int    `json:"skipped"`
	Model   string `json:"model"`
}

// ProductDemand is the answer of lookup_product_demand
type ProductDemand struct {
	Product    entities.MaterialID      `json:"product"`
	Wholesaler string                   `json:"wholesaler,omitempty"`
	Historical []entities.DemandRecord  `json:"historical"`
	Forecast   []entities.ForecastPoint `json:"forecast"`
	Total      entities.Quantity        `json:"total_historical"`
}

// GenieAnswer is the answer of ask_genie_pharma_gsc
type GenieAnswer struct {
	Question  string            `json:"question"`
	Tool      string            `json:"tool"`
	Arguments map[string]string `json:"arguments"`
	Source    string            `json:"source"`
	Result    interface{}       `json:"result"`
}

// StageReport records one pipeline stage execution
type StageReport struct {
	RunID    string        `json:"run_id"`
	Stage    string        `json:"stage"`
	Status   string        `json:"status"`
	Detail   string        `json:"detail"`
	Duration time.Duration `json:"duration"`
}

// PipelineReport contains the outcome of a full pipeline run
type PipelineReport struct {
	Stages      []StageReport      `json:"stages"`
	Setup       *SetupResult       `json:"setup,omitempty"`
	Forecast    *ForecastResult    `json:"forecast,omitempty"`
	RawMaterial *RawMaterialResult `json:"raw_material,omitempty"`
	Transport   *TransportResult   `json:"transport,omitempty"`
	Emails      *EmailIndexResult  `json:"emails,omitempty"`
}
