package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// WholesalerAssignment maps a wholesaler to the single distribution center that serves it
type WholesalerAssignment struct {
	DistributionCenter string `json:"distribution_center"`
	Wholesaler         string `json:"wholesaler"`
}

// PlantSupply is the maximum quantity of a product a plant can produce and ship
type PlantSupply struct {
	Product MaterialID `json:"product"`
	Plant   string     `json:"plant"`
	Supply  Quantity   `json:"supply"`
}

// NewPlantSupply creates a validated PlantSupply
func NewPlantSupply(product MaterialID, plant string, supply Quantity) (*PlantSupply, error) {
	if product == "" {
		return nil, fmt.Errorf("product cannot be empty")
	}
	if plant == "" {
		return nil, fmt.Errorf("plant cannot be empty")
	}
	if supply < 0 {
		return nil, fmt.Errorf("supply cannot be negative, got %d", supply)
	}
	return &PlantSupply{Product: product, Plant: plant, Supply: supply}, nil
}

// TransportCost is the unit cost of shipping a product from a plant to a distribution center
type TransportCost struct {
	Product            MaterialID `json:"product"`
	Plant              string     `json:"plant"`
	DistributionCenter string     `json:"distribution_center"`
	Cost               float64    `json:"cost"`
}

// NewTransportCost creates a validated TransportCost
func NewTransportCost(product MaterialID, plant, dc string, cost float64) (*TransportCost, error) {
	if product == "" {
		return nil, fmt.Errorf("product cannot be empty")
	}
	if plant == "" {
		return nil, fmt.Errorf("plant cannot be empty")
	}
	if dc == "" {
		return nil, fmt.Errorf("distribution center cannot be empty")
	}
	if cost < 0 {
		return nil, fmt.Errorf("cost cannot be negative, got %g", cost)
	}
	return &TransportCost{Product: product, Plant: plant, DistributionCenter: dc, Cost: cost}, nil
}

// ListPrice is the selling price of one unit of a finished product
type ListPrice struct {
	Product MaterialID      `json:"product"`
	Price   decimal.Decimal `json:"price"`
}

// NewListPrice creates a validated ListPrice
func NewListPrice(product MaterialID, price decimal.Decimal) (*ListPrice, error) {
	if product == "" {
		return nil, fmt.Errorf("product cannot be empty")
	}
	if !price.IsPositive() {
		return nil, fmt.Errorf("price must be positive, got %s", price)
	}
	return &ListPrice{Product: product, Price: price}, nil
}
