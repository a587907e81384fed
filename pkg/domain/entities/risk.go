package entities

import "github.com/shopspring/decimal"

// ProductExposure is the revenue at risk for one finished product when a raw
// material falls short
type ProductExposure struct {
	Product       MaterialID      `json:"product"`
	RawPerUnit    Quantity        `json:"raw_per_unit"`
	LostUnits     Quantity        `json:"lost_units"`
	ListPrice     decimal.Decimal `json:"list_price"`
	RevenueAtRisk decimal.Decimal `json:"revenue_at_risk"`
	MissingPrice  bool            `json:"missing_price,omitempty"`
}

// RevenueRisk is the result of a revenue risk query for a raw material shortfall
type RevenueRisk struct {
	Raw         MaterialID        `json:"raw"`
	Shortfall   Quantity          `json:"shortfall"`
	Exposures   []ProductExposure `json:"exposures"`
	MaxExposure decimal.Decimal   `json:"max_exposure"`
}
