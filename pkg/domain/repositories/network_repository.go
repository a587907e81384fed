package repositories

import (
	"context"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// NetworkRepository provides access to the static supply network: the
// distribution center mapping, plant supply, transport costs and list prices.
// Each Load call replaces the contents of its table.
type NetworkRepository interface {
	LoadAssignments(ctx context.Context, assignments []*entities.WholesalerAssignment) error
	GetAssignments(ctx context.Context) ([]*entities.WholesalerAssignment, error)

	LoadPlantSupply(ctx context.Context, supply []*entities.PlantSupply) error
	GetPlantSupply(ctx context.Context) ([]*entities.PlantSupply, error)

	LoadTransportCosts(ctx context.Context, costs []*entities.TransportCost) error
	GetTransportCosts(ctx context.Context) ([]*entities.TransportCost, error)

	LoadListPrices(ctx context.Context, prices []*entities.ListPrice) error
	GetListPrices(ctx context.Context) ([]*entities.ListPrice, error)
}
