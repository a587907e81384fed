package entities

import (
	"fmt"
	"time"
)

// DemandRecord is one week of historical demand of a product at a wholesaler
type DemandRecord struct {
	Product    MaterialID `json:"product"`
	SKU        string     `json:"sku"`
	Wholesaler string     `json:"wholesaler"`
	Date       time.Time  `json:"date"`
	Demand     Quantity   `json:"demand"`
}

// NewDemandRecord creates a validated DemandRecord
func NewDemandRecord(product MaterialID, sku, wholesaler string, date time.Time, demand Quantity) (*DemandRecord, error) {
	if product == "" {
		return nil, fmt.Errorf("product cannot be empty")
	}
	if wholesaler == "" {
		return nil, fmt.Errorf("wholesaler cannot be empty")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date cannot be zero")
	}
	if demand < 0 {
		return nil, fmt.Errorf("demand cannot be negative, got %d", demand)
	}

	return &DemandRecord{
		Product:    product,
		SKU:        sku,
		Wholesaler: wholesaler,
		Date:       date,
		Demand:     demand,
	}, nil
}

// SeriesKey identifies one demand series
type SeriesKey struct {
	Product    MaterialID
	Wholesaler string
}

// String renders the key as product/wholesaler
func (k SeriesKey) String() string {
	return fmt.Sprintf("%s/%s", k.Product, k.Wholesaler)
}

// ForecastPoint is a forecasted weekly demand of a product at a wholesaler
type ForecastPoint struct {
	Product    MaterialID `json:"product"`
	Wholesaler string     `json:"wholesaler"`
	Date       time.Time  `json:"date"`
	Demand     Quantity   `json:"demand"`
}

// DCDemand is forecasted demand of a product aggregated per distribution center
type DCDemand struct {
	Product            MaterialID `json:"product"`
	DistributionCenter string     `json:"distribution_center"`
	Demand             Quantity   `json:"demand"`
}

// RawMaterialRequirement is the derived demand for a raw material
type RawMaterialRequirement struct {
	Raw    MaterialID `json:"raw"`
	Demand Quantity   `json:"demand"`
}
