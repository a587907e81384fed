package repositories

import (
	"context"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// BOMRepository provides access to Bill of Materials data
type BOMRepository interface {
	// LoadBOMLines replaces every stored line with lines.
	LoadBOMLines(ctx context.Context, lines []*entities.BOMLine) error
	GetAllBOMLines(ctx context.Context) ([]*entities.BOMLine, error)

	// GetInputs returns the lines consumed to produce one unit of material.
	GetInputs(ctx context.Context, material entities.MaterialID) ([]*entities.BOMLine, error)

	// GetConsumers returns the lines of every material that consumes material.
	GetConsumers(ctx context.Context, material entities.MaterialID) ([]*entities.BOMLine, error)
}
