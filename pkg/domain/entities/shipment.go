package entities

import "github.com/shopspring/decimal"

// ShipmentRecommendation is the optimal quantity of a product to ship on one
// plant to distribution center route. Plant, DistributionCenter and
// QtyShipped are nil when the product's transport problem had no optimal
// solution.
type ShipmentRecommendation struct {
	Product            MaterialID `json:"product"`
	Plant              *string    `json:"plant"`
	DistributionCenter *string    `json:"distribution_center"`
	QtyShipped         *Quantity  `json:"qty_shipped"`
}

// IsOptimal reports whether the row comes from a solved problem
func (s ShipmentRecommendation) IsOptimal() bool {
	return s.Plant != nil && s.DistributionCenter != nil && s.QtyShipped != nil
}

// ProductShipmentPlan summarizes the optimal plan of one product
type ProductShipmentPlan struct {
	Product   MaterialID               `json:"product"`
	Status    string                   `json:"status"`
	TotalCost decimal.Decimal          `json:"total_cost"`
	Routes    []ShipmentRecommendation `json:"routes"`
}
