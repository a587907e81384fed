package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// BOMRepository provides an index-based in-memory BOM storage implementation
type BOMRepository struct {
	mu              sync.RWMutex
	bomLines        []entities.BOMLine
	inputIndexes    map[entities.MaterialID][]int
	consumerIndexes map[entities.MaterialID][]int
}

// NewBOMRepository creates an in-memory BOM repository
func NewBOMRepository(expectedBOMLines int) *BOMRepository {
	return &BOMRepository{
		bomLines:        make([]entities.BOMLine, 0, expectedBOMLines),
		inputIndexes:    make(map[entities.MaterialID][]int),
		consumerIndexes: make(map[entities.MaterialID][]int),
	}
}

// Verify interface compliance
var _ repositories.BOMRepository = (*BOMRepository)(nil)

// LoadBOMLines replaces the stored BOM with lines
func (r *BOMRepository) LoadBOMLines(ctx context.Context, lines []*entities.BOMLine) error {
	for _, line := range lines {
		if line == nil {
			return fmt.Errorf("nil BOM line")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.bomLines = make([]entities.BOMLine, 0, len(lines))
	r.inputIndexes = make(map[entities.MaterialID][]int)
	r.consumerIndexes = make(map[entities.MaterialID][]int)
	for _, line := range lines {
		r.add(*line)
	}
	return nil
}

// AddBOMLine adds a BOM line to the repository
func (r *BOMRepository) AddBOMLine(line entities.BOMLine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.add(line)
}

func (r *BOMRepository) add(line entities.BOMLine) {
	index := len(r.bomLines)
	r.bomLines = append(r.bomLines, line)
	r.inputIndexes[line.MaterialOut] = append(r.inputIndexes[line.MaterialOut], index)
	r.consumerIndexes[line.MaterialIn] = append(r.consumerIndexes[line.MaterialIn], index)
}

// GetInputs returns all BOM lines consumed by material
func (r *BOMRepository) GetInputs(ctx context.Context, material entities.MaterialID) ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.linesAt(r.inputIndexes[material]), nil
}

// GetConsumers returns all BOM lines that consume material
func (r *BOMRepository) GetConsumers(ctx context.Context, material entities.MaterialID) ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.linesAt(r.consumerIndexes[material]), nil
}

// GetAllBOMLines returns all BOM lines
func (r *BOMRepository) GetAllBOMLines(ctx context.Context) ([]*entities.BOMLine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lines := make([]*entities.BOMLine, 0, len(r.bomLines))
	for i := range r.bomLines {
		line := r.bomLines[i]
		lines = append(lines, &line)
	}
	return lines, nil
}

func (r *BOMRepository) linesAt(indexes []int) []*entities.BOMLine {
	lines := make([]*entities.BOMLine, 0, len(indexes))
	for _, index := range indexes {
		line := r.bomLines[index]
		lines = append(lines, &line)
	}
	return lines
}
