package rawmaterial

import (
	"context"
	"fmt"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// Direction selects which BOM lines the traverser follows
type Direction int

const (
	// Down follows inputs: from a product towards its raw materials
	Down Direction = iota
	// Up follows consumers: from a raw material towards finished products
	Up
)

// BOMNodeContext provides context information during BOM traversal
type BOMNodeContext struct {
	Material entities.MaterialID
	Kind     entities.MaterialKind
	// Quantity is the cumulative quantity relating this node to the root
	// along the current path.
	Quantity entities.Quantity
	Level    int
	Path     []entities.MaterialID
}

// BOMNodeVisitor defines the interface for processing nodes during BOM traversal
type BOMNodeVisitor interface {
	// VisitNode is called for each node in the BOM structure
	// Returns data to be passed to children and whether to continue traversal
	VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (interface{}, bool, error)

	// ProcessChildren is called after visiting all children
	// Receives the node context, data from VisitNode, and results from children
	ProcessChildren(
		ctx context.Context,
		nodeCtx BOMNodeContext,
		nodeData interface{},
		childResults []interface{},
	) (interface{}, error)
}

// BOMTraverser walks the BOM depth first in either direction
type BOMTraverser struct {
	bomRepo repositories.BOMRepository
}

// NewBOMTraverser creates a new BOM traverser
func NewBOMTraverser(bomRepo repositories.BOMRepository) *BOMTraverser {
	return &BOMTraverser{bomRepo: bomRepo}
}

// TraverseBOM performs BOM traversal from material using the visitor pattern
func (bt *BOMTraverser) TraverseBOM(
	ctx context.Context,
	material entities.MaterialID,
	quantity entities.Quantity,
	direction Direction,
	visitor BOMNodeVisitor,
) (interface{}, error) {
	return bt.traverse(ctx, material, quantity, 0, nil, direction, visitor)
}

func (bt *BOMTraverser) traverse(
	ctx context.Context,
	material entities.MaterialID,
	quantity entities.Quantity,
	level int,
	path []entities.MaterialID,
	direction Direction,
	visitor BOMNodeVisitor,
) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, seen := range path {
		if seen == material {
			return nil, fmt.Errorf("%w: %s revisited via %v", ErrCycle, material, path)
		}
	}

	inputs, err := bt.bomRepo.GetInputs(ctx, material)
	if err != nil {
		return nil, fmt.Errorf("failed to get inputs of %s: %w", material, err)
	}
	consumers, err := bt.bomRepo.GetConsumers(ctx, material)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumers of %s: %w", material, err)
	}

	path = append(path[:len(path):len(path)], material)
	nodeCtx := BOMNodeContext{
		Material: material,
		Kind:     kindOf(len(inputs), len(consumers)),
		Quantity: quantity,
		Level:    level,
		Path:     path,
	}

	// Visit this node
	nodeData, shouldContinue, err := visitor.VisitNode(ctx, nodeCtx)
	if err != nil {
		return nil, fmt.Errorf("failed to visit node %s: %w", material, err)
	}
	if !shouldContinue {
		return visitor.ProcessChildren(ctx, nodeCtx, nodeData, nil)
	}

	next := inputs
	if direction == Up {
		next = consumers
	}

	childResults := make([]interface{}, 0, len(next))
	for _, line := range next {
		child := line.MaterialIn
		if direction == Up {
			child = line.MaterialOut
		}
		childResult, err := bt.traverse(ctx, child, line.QtyPer*quantity, level+1, path, direction, visitor)
		if err != nil {
			return nil, fmt.Errorf("failed to traverse %s: %w", child, err)
		}
		childResults = append(childResults, childResult)
	}

	// Let visitor process the children results
	return visitor.ProcessChildren(ctx, nodeCtx, nodeData, childResults)
}

func kindOf(inputs, consumers int) entities.MaterialKind {
	switch {
	case inputs == 0:
		return entities.RawMaterial
	case consumers == 0:
		return entities.FinishedProduct
	default:
		return entities.Intermediate
	}
}
