package entities

import "fmt"

// BOMLine is one edge of the bill of materials: producing one unit of
// MaterialOut consumes QtyPer units of MaterialIn.
type BOMLine struct {
	MaterialIn  MaterialID `json:"material_in"`
	MaterialOut MaterialID `json:"material_out"`
	QtyPer      Quantity   `json:"qty"`
}

// NewBOMLine creates a validated BOMLine
func NewBOMLine(materialIn, materialOut MaterialID, qtyPer Quantity) (*BOMLine, error) {
	if materialIn == "" {
		return nil, fmt.Errorf("material in cannot be empty")
	}
	if materialOut == "" {
		return nil, fmt.Errorf("material out cannot be empty")
	}
	if materialIn == materialOut {
		return nil, fmt.Errorf("material in and material out cannot be the same: %s", materialIn)
	}
	if qtyPer <= 0 {
		return nil, fmt.Errorf("quantity per must be positive, got %d", qtyPer)
	}

	return &BOMLine{
		MaterialIn:  materialIn,
		MaterialOut: materialOut,
		QtyPer:      qtyPer,
	}, nil
}

// MaterialUsage is the cumulative quantity of one material needed per unit of
// another, summed over every BOM path between them.
type MaterialUsage struct {
	Product  MaterialID `json:"product"`
	Raw      MaterialID `json:"raw"`
	QtyPer   Quantity   `json:"qty_per_unit"`
	MinLevel int        `json:"min_level"`
}
