package memory

import (
	"context"
	"fmt"
	"testing"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

func TestBOMRepository_LoadAndGetInputs(t *testing.T) {
	ctx := context.Background()
	repo := NewBOMRepository(10)

	bomLine := &entities.BOMLine{MaterialIn: "barrel_1", MaterialOut: "syringe_1", QtyPer: 2}
	if err := repo.LoadBOMLines(ctx, []*entities.BOMLine{bomLine}); err != nil {
		t.Fatalf("Failed to load BOM line: %v", err)
	}

	lines, err := repo.GetInputs(ctx, "syringe_1")
	if err != nil {
		t.Fatalf("Failed to get BOM lines: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("Expected 1 BOM line, got %d", len(lines))
	}

	retrieved := lines[0]
	if retrieved.MaterialIn != bomLine.MaterialIn {
		t.Errorf("Expected material in %s, got %s", bomLine.MaterialIn, retrieved.MaterialIn)
	}
	if retrieved.QtyPer != bomLine.QtyPer {
		t.Errorf("Expected quantity %d, got %d", bomLine.QtyPer, retrieved.QtyPer)
	}

	// Returned lines are copies
	retrieved.QtyPer = 99
	again, _ := repo.GetInputs(ctx, "syringe_1")
	if again[0].QtyPer != 2 {
		t.Errorf("Expected repository state to be unchanged, got qty %d", again[0].QtyPer)
	}
}

func TestBOMRepository_GetConsumers(t *testing.T) {
	ctx := context.Background()
	repo := NewBOMRepository(10)

	repo.AddBOMLine(entities.BOMLine{MaterialIn: "plastic_1", MaterialOut: "barrel_1", QtyPer: 2})
	repo.AddBOMLine(entities.BOMLine{MaterialIn: "plastic_1", MaterialOut: "plunger_1", QtyPer: 1})
	repo.AddBOMLine(entities.BOMLine{MaterialIn: "rubber_1", MaterialOut: "plunger_1", QtyPer: 1})

	consumers, err := repo.GetConsumers(ctx, "plastic_1")
	if err != nil {
		t.Fatalf("GetConsumers failed: %v", err)
	}
	if len(consumers) != 2 {
		t.Fatalf("Expected 2 consumers of plastic_1, got %d", len(consumers))
	}

	none, err := repo.GetConsumers(ctx, "unknown")
	if err != nil {
		t.Fatalf("GetConsumers failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no consumers for unknown material, got %d", len(none))
	}
}

func TestBOMRepository_LargeDataset(t *testing.T) {
	ctx := context.Background()
	repo := NewBOMRepository(1000)

	for i := 0; i < 1000; i++ {
		repo.AddBOMLine(entities.BOMLine{
			MaterialIn:  entities.MaterialID(fmt.Sprintf("raw_%d", i%50)),
			MaterialOut: entities.MaterialID(fmt.Sprintf("component_%d", i/10)),
			QtyPer:      entities.Quantity(1 + i%3),
		})
	}

	all, err := repo.GetAllBOMLines(ctx)
	if err != nil {
		t.Fatalf("GetAllBOMLines failed: %v", err)
	}
	if len(all) != 1000 {
		t.Errorf("Expected 1000 lines, got %d", len(all))
	}

	inputs, _ := repo.GetInputs(ctx, "component_42")
	if len(inputs) != 10 {
		t.Errorf("Expected 10 inputs for component_42, got %d", len(inputs))
	}

	consumers, _ := repo.GetConsumers(ctx, "raw_7")
	if len(consumers) != 20 {
		t.Errorf("Expected 20 consumers for raw_7, got %d", len(consumers))
	}
}
