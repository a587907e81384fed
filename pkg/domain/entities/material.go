package entities

import "fmt"

// MaterialID identifies a node of the bill of materials: a finished product,
// an intermediate component or a raw material.
type MaterialID string

// Quantity represents an integer quantity of discrete units
type Quantity int64

// MaterialKind classifies a material by its position in the BOM graph
type MaterialKind int

const (
	FinishedProduct MaterialKind = iota
	Intermediate
	RawMaterial
)

// String method for MaterialKind enum
func (k MaterialKind) String() string {
	switch k {
	case FinishedProduct:
		return "FinishedProduct"
	case Intermediate:
		return "Intermediate"
	case RawMaterial:
		return "RawMaterial"
	default:
		return "Unknown"
	}
}

// ParseMaterialKind parses the String form of a MaterialKind
func ParseMaterialKind(s string) (MaterialKind, error) {
	switch s {
	case "FinishedProduct":
		return FinishedProduct, nil
	case "Intermediate":
		return Intermediate, nil
	case "RawMaterial":
		return RawMaterial, nil
	default:
		return FinishedProduct, fmt.Errorf("invalid material kind: %s", s)
	}
}
