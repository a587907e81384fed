package memory

import (
	"context"
	"sync"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// DemandRepository provides in-memory demand storage
type DemandRepository struct {
	mu      sync.RWMutex
	demands []entities.DemandRecord
	byProd  map[entities.MaterialID][]int
}

// NewDemandRepository creates a new in-memory demand repository
func NewDemandRepository() *DemandRepository {
	return &DemandRepository{
		demands: []entities.DemandRecord{},
		byProd:  make(map[entities.MaterialID][]int),
	}
}

// Verify interface compliance
var _ repositories.DemandRepository = (*DemandRepository)(nil)

// LoadDemand replaces the stored demand history with records
func (r *DemandRepository) LoadDemand(ctx context.Context, records []*entities.DemandRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.demands = make([]entities.DemandRecord, 0, len(records))
	r.byProd = make(map[entities.MaterialID][]int)
	for _, record := range records {
		r.byProd[record.Product] = append(r.byProd[record.Product], len(r.demands))
		r.demands = append(r.demands, *record)
	}
	return nil
}

// GetDemand returns the demand records of one product
func (r *DemandRepository) GetDemand(ctx context.Context, product entities.MaterialID) ([]*entities.DemandRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	indexes := r.byProd[product]
	demands := make([]*entities.DemandRecord, 0, len(indexes))
	for _, i := range indexes {
		d := r.demands[i]
		demands = append(demands, &d)
	}
	return demands, nil
}

// GetAllDemand returns all demand records
func (r *DemandRepository) GetAllDemand(ctx context.Context) ([]*entities.DemandRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	demands := make([]*entities.DemandRecord, 0, len(r.demands))
	for i := range r.demands {
		d := r.demands[i]
		demands = append(demands, &d)
	}
	return demands, nil
}
