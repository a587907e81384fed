package rawmaterial

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// ErrCycle is returned when the BOM cannot be ordered topologically
var ErrCycle = errors.New("bom contains a cycle")

// BOMGraph is the BOM as a weighted directed graph. Edges run from the
// consuming material to its input, weighted by the quantity per unit.
type BOMGraph struct {
	g     *simple.WeightedDirectedGraph
	ids   map[entities.MaterialID]int64
	names []entities.MaterialID
	order []graph.Node
}

// NewBOMGraph builds the graph and its topological order. Duplicate lines for
// the same pair add up.
func NewBOMGraph(lines []*entities.BOMLine) (*BOMGraph, error) {
	materials := make(map[entities.MaterialID]struct{})
	for _, l := range lines {
		materials[l.MaterialIn] = struct{}{}
		materials[l.MaterialOut] = struct{}{}
	}
	names := make([]entities.MaterialID, 0, len(materials))
	for m := range materials {
		names = append(names, m)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	bg := &BOMGraph{
		g:     simple.NewWeightedDirectedGraph(0, 0),
		ids:   make(map[entities.MaterialID]int64, len(names)),
		names: names,
	}
	for i, name := range names {
		bg.ids[name] = int64(i)
		bg.g.AddNode(simple.Node(i))
	}

	for _, l := range lines {
		if l.MaterialIn == l.MaterialOut {
			return nil, fmt.Errorf("%w: %s consumes itself", ErrCycle, l.MaterialIn)
		}
		from, to := bg.ids[l.MaterialOut], bg.ids[l.MaterialIn]
		w := float64(l.QtyPer)
		if e := bg.g.WeightedEdge(from, to); e != nil {
			w += e.Weight()
		}
		bg.g.SetWeightedEdge(simple.WeightedEdge{F: simple.Node(from), T: simple.Node(to), W: w})
	}

	order, err := topo.SortStabilized(bg.g, byID)
	if err != nil {
		var cycles topo.Unorderable
		if errors.As(err, &cycles) {
			return nil, fmt.Errorf("%w: %s", ErrCycle, bg.describe(cycles))
		}
		return nil, fmt.Errorf("failed to sort bom: %w", err)
	}
	bg.order = order
	return bg, nil
}

func byID(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

func (bg *BOMGraph) describe(cycles topo.Unorderable) string {
	parts := make([]string, 0, len(cycles))
	for _, component := range cycles {
		byID(component)
		ids := make([]string, len(component))
		for i, n := range component {
			ids[i] = string(bg.names[n.ID()])
		}
		parts = append(parts, "["+strings.Join(ids, ", ")+"]")
	}
	return strings.Join(parts, " ")
}

// Has reports whether the material appears in the BOM
func (bg *BOMGraph) Has(m entities.MaterialID) bool {
	_, ok := bg.ids[m]
	return ok
}

// Kind classifies a material by its position in the graph
func (bg *BOMGraph) Kind(m entities.MaterialID) (entities.MaterialKind, bool) {
	id, ok := bg.ids[m]
	if !ok {
		return entities.FinishedProduct, false
	}
	return bg.kindOf(id), true
}

func (bg *BOMGraph) kindOf(id int64) entities.MaterialKind {
	switch {
	case bg.g.From(id).Len() == 0:
		return entities.RawMaterial
	case bg.g.To(id).Len() == 0:
		return entities.FinishedProduct
	default:
		return entities.Intermediate
	}
}

// Materials returns every material of the given kind, sorted
func (bg *BOMGraph) Materials(kind entities.MaterialKind) []entities.MaterialID {
	var out []entities.MaterialID
	for i, name := range bg.names {
		if bg.kindOf(int64(i)) == kind {
			out = append(out, name)
		}
	}
	return out
}

// Propagate pushes demand from consumers to their inputs in topological
// order and returns the accumulated demand of every material.
func (bg *BOMGraph) Propagate(seed map[entities.MaterialID]entities.Quantity) map[entities.MaterialID]entities.Quantity {
	demand := make([]entities.Quantity, len(bg.names))
	for m, q := range seed {
		if id, ok := bg.ids[m]; ok {
			demand[id] += q
		}
	}

	for _, n := range bg.order {
		parent := demand[n.ID()]
		if parent == 0 {
			continue
		}
		inputs := bg.g.From(n.ID())
		for inputs.Next() {
			child := inputs.Node().ID()
			qty := entities.Quantity(bg.g.WeightedEdge(n.ID(), child).Weight())
			demand[child] += parent * qty
		}
	}

	out := make(map[entities.MaterialID]entities.Quantity, len(demand))
	for i, q := range demand {
		out[bg.names[i]] = q
	}
	return out
}
