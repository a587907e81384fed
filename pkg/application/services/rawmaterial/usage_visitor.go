package rawmaterial

import (
	"context"
	"sort"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// UsageVisitor collects the terminal nodes of a traversal with their
// cumulative quantities. Walking Down from a product it collects raw
// materials; walking Up from a raw material it collects finished products.
type UsageVisitor struct {
	root     entities.MaterialID
	terminal entities.MaterialKind
	usage    map[entities.MaterialID]*entities.MaterialUsage
}

// NewUsageVisitor creates a visitor for a traversal rooted at root in direction
func NewUsageVisitor(root entities.MaterialID, direction Direction) *UsageVisitor {
	terminal := entities.RawMaterial
	if direction == Up {
		terminal = entities.FinishedProduct
	}
	return &UsageVisitor{
		root:     root,
		terminal: terminal,
		usage:    make(map[entities.MaterialID]*entities.MaterialUsage),
	}
}

// VisitNode records terminal nodes other than the root
func (v *UsageVisitor) VisitNode(ctx context.Context, nodeCtx BOMNodeContext) (interface{}, bool, error) {
	if nodeCtx.Level == 0 || nodeCtx.Kind != v.terminal {
		return nil, true, nil
	}

	u, ok := v.usage[nodeCtx.Material]
	if !ok {
		u = &entities.MaterialUsage{MinLevel: nodeCtx.Level}
		if v.terminal == entities.RawMaterial {
			u.Product, u.Raw = v.root, nodeCtx.Material
		} else {
			u.Product, u.Raw = nodeCtx.Material, v.root
		}
		v.usage[nodeCtx.Material] = u
	}
	u.QtyPer += nodeCtx.Quantity
	if nodeCtx.Level < u.MinLevel {
		u.MinLevel = nodeCtx.Level
	}
	return nil, false, nil
}

// ProcessChildren has nothing to combine: results accumulate on the visitor
func (v *UsageVisitor) ProcessChildren(ctx context.Context, nodeCtx BOMNodeContext, nodeData interface{}, childResults []interface{}) (interface{}, error) {
	return nil, nil
}

// Usage returns the collected usages sorted by the terminal material
func (v *UsageVisitor) Usage() []entities.MaterialUsage {
	out := make([]entities.MaterialUsage, 0, len(v.usage))
	for _, u := range v.usage {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if v.terminal == entities.RawMaterial {
			return out[i].Raw < out[j].Raw
		}
		return out[i].Product < out[j].Product
	})
	return out
}
