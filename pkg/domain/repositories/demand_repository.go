package repositories

import (
	"context"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// DemandRepository provides access to historical demand data
type DemandRepository interface {
	// LoadDemand replaces the stored history with records.
	LoadDemand(ctx context.Context, records []*entities.DemandRecord) error
	GetDemand(ctx context.Context, product entities.MaterialID) ([]*entities.DemandRecord, error)
	GetAllDemand(ctx context.Context) ([]*entities.DemandRecord, error)
}
