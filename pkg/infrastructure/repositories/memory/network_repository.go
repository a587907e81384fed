package memory

import (
	"context"
	"sync"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// NetworkRepository provides in-memory storage of the supply network tables
type NetworkRepository struct {
	mu          sync.RWMutex
	assignments []entities.WholesalerAssignment
	supply      []entities.PlantSupply
	costs       []entities.TransportCost
	prices      []entities.ListPrice
}

// NewNetworkRepository creates a new in-memory network repository
func NewNetworkRepository() *NetworkRepository {
	return &NetworkRepository{}
}

// Verify interface compliance
var _ repositories.NetworkRepository = (*NetworkRepository)(nil)

func (r *NetworkRepository) LoadAssignments(ctx context.Context, assignments []*entities.WholesalerAssignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.assignments = r.assignments[:0]
	for _, a := range assignments {
		r.assignments = append(r.assignments, *a)
	}
	return nil
}

func (r *NetworkRepository) GetAssignments(ctx context.Context) ([]*entities.WholesalerAssignment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pointers(r.assignments), nil
}

func (r *NetworkRepository) LoadPlantSupply(ctx context.Context, supply []*entities.PlantSupply) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.supply = r.supply[:0]
	for _, s := range supply {
		r.supply = append(r.supply, *s)
	}
	return nil
}

func (r *NetworkRepository) GetPlantSupply(ctx context.Context) ([]*entities.PlantSupply, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pointers(r.supply), nil
}

func (r *NetworkRepository) LoadTransportCosts(ctx context.Context, costs []*entities.TransportCost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.costs = r.costs[:0]
	for _, c := range costs {
		r.costs = append(r.costs, *c)
	}
	return nil
}

func (r *NetworkRepository) GetTransportCosts(ctx context.Context) ([]*entities.TransportCost, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pointers(r.costs), nil
}

func (r *NetworkRepository) LoadListPrices(ctx context.Context, prices []*entities.ListPrice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prices = r.prices[:0]
	for _, p := range prices {
		r.prices = append(r.prices, *p)
	}
	return nil
}

func (r *NetworkRepository) GetListPrices(ctx context.Context) ([]*entities.ListPrice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return pointers(r.prices), nil
}

// pointers copies values so callers cannot mutate repository state
func pointers[T any](values []T) []*T {
	out := make([]*T, 0, len(values))
	for i := range values {
		v := values[i]
		out = append(out, &v)
	}
	return out
}
