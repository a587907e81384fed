package setup

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

var families = []string{
	"syringe", "vial", "nail", "ampoule", "catheter",
	"bandage", "glove", "scalpel", "inhaler", "tablet",
}

const weeksPerYear = 52

// Dataset holds every input table of the supply network
type Dataset struct {
	Demand      []*entities.DemandRecord
	Assignments []*entities.WholesalerAssignment
	BOM         []*entities.BOMLine
	Supply      []*entities.PlantSupply
	Costs       []*entities.TransportCost
	Prices      []*entities.ListPrice
}

// Generate builds a synthetic supply network. The same configuration always
// yields the same dataset.
func Generate(cfg config.GeneratorConfig) (*Dataset, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generator config: %w", err)
	}
	start, err := cfg.Start()
	if err != nil {
		return nil, err
	}

	g := &generator{
		cfg:   cfg,
		start: start,
		rng:   rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
	}
	ds := &Dataset{}

	products := g.products()
	wholesalers := g.assignments(ds)
	expected := g.demand(ds, products, wholesalers)
	g.bom(ds, products)
	g.network(ds, products, expected)
	return ds, nil
}

type generator struct {
	cfg   config.GeneratorConfig
	start time.Time
	rng   *rand.Rand
}

func (g *generator) uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: g.rng}.Rand()
}

func (g *generator) intBetween(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *generator) products() []entities.MaterialID {
	out := make([]entities.MaterialID, g.cfg.Products)
	for i := range out {
		out[i] = entities.MaterialID(fmt.Sprintf("%s_%d", families[i%len(families)], i/len(families)+1))
	}
	return out
}

// assignments gives every distribution center its own block of wholesalers
func (g *generator) assignments(ds *Dataset) []string {
	var wholesalers []string
	for dc := 1; dc <= g.cfg.DistributionCenters; dc++ {
		n := g.intBetween(g.cfg.MinWholesalers, g.cfg.MaxWholesalers)
		for i := 0; i < n; i++ {
			w := fmt.Sprintf("Wholesaler_%d", len(wholesalers)+1)
			wholesalers = append(wholesalers, w)
			ds.Assignments = append(ds.Assignments, &entities.WholesalerAssignment{
				DistributionCenter: fmt.Sprintf("Distribution_Center_%d", dc),
				Wholesaler:         w,
			})
		}
	}
	return wholesalers
}

// demand writes one weekly series per product and wholesaler: a level with a
// linear trend and yearly seasonality, sampled with Poisson noise. It returns
// the expected weekly demand of every product at the end of the history.
func (g *generator) demand(ds *Dataset, products []entities.MaterialID, wholesalers []string) map[entities.MaterialID]float64 {
	expected := make(map[entities.MaterialID]float64, len(products))
	for i, product := range products {
		sku := fmt.Sprintf("SKU-%04d", i+1)
		scale := g.uniform(0.5, 2)
		for _, w := range wholesalers {
			level := scale * g.uniform(5, 40)
			slope := level * g.uniform(-0.05, 0.1) / weeksPerYear
			amplitude := level * g.uniform(0.1, 0.3)
			phase := g.uniform(0, 2*math.Pi)
			noise := distuv.Normal{Mu: 0, Sigma: 0.05 * level, Src: g.rng}

			var mean float64
			for t := 0; t < g.cfg.Weeks; t++ {
				mean = level + slope*float64(t) +
					amplitude*math.Sin(2*math.Pi*float64(t)/weeksPerYear+phase) + noise.Rand()
				lambda := math.Max(mean, 0.1)
				qty := distuv.Poisson{Lambda: lambda, Src: g.rng}.Rand()
				ds.Demand = append(ds.Demand, &entities.DemandRecord{
					Product:    product,
					SKU:        sku,
					Wholesaler: w,
					Date:       g.start.AddDate(0, 0, 7*t),
					Demand:     entities.Quantity(qty),
				})
			}
			expected[product] += math.Max(mean, 0) + amplitude
		}
	}
	return expected
}

// bom gives every product 2 to 4 components of 1 to 3 raw materials each.
// Components are occasionally shared between products and raw materials are
// drawn from a pool shared by all products.
func (g *generator) bom(ds *Dataset, products []entities.MaterialID) {
	rawPool := max(len(products), 10)
	var components []entities.MaterialID
	qty := func() entities.Quantity { return entities.Quantity(g.intBetween(1, 4)) }

	for _, product := range products {
		children := make(map[entities.MaterialID]bool)
		for c := g.intBetween(2, 4); c > 0; c-- {
			if len(components) > 0 && g.rng.Float64() < 0.2 {
				shared := components[g.rng.IntN(len(components))]
				if !children[shared] {
					children[shared] = true
					ds.BOM = append(ds.BOM, &entities.BOMLine{MaterialIn: shared, MaterialOut: product, QtyPer: qty()})
					continue
				}
			}

			component := entities.MaterialID(fmt.Sprintf("component_%d", len(components)+1))
			components = append(components, component)
			children[component] = true
			ds.BOM = append(ds.BOM, &entities.BOMLine{MaterialIn: component, MaterialOut: product, QtyPer: qty()})

			for _, r := range g.rng.Perm(rawPool)[:g.intBetween(1, 3)] {
				ds.BOM = append(ds.BOM, &entities.BOMLine{
					MaterialIn:  entities.MaterialID(fmt.Sprintf("raw_%d", r+1)),
					MaterialOut: component,
					QtyPer:      qty(),
				})
			}
		}

		if g.rng.Float64() < 0.3 {
			raw := entities.MaterialID(fmt.Sprintf("raw_%d", g.rng.IntN(rawPool)+1))
			ds.BOM = append(ds.BOM, &entities.BOMLine{MaterialIn: raw, MaterialOut: product, QtyPer: qty()})
		}
	}
}

// network sizes plant supply so that every product can cover twice its
// expected weekly demand, and draws transport costs and list prices
func (g *generator) network(ds *Dataset, products []entities.MaterialID, expected map[entities.MaterialID]float64) {
	plants := g.cfg.Plants
	for _, product := range products {
		for p := 1; p <= plants; p++ {
			plant := fmt.Sprintf("plant_%d", p)
			supply := math.Ceil(expected[product] * 2 / float64(plants) * g.uniform(1, 1.6))
			ds.Supply = append(ds.Supply, &entities.PlantSupply{
				Product: product,
				Plant:   plant,
				Supply:  entities.Quantity(supply),
			})
			for dc := 1; dc <= g.cfg.DistributionCenters; dc++ {
				ds.Costs = append(ds.Costs, &entities.TransportCost{
					Product:            product,
					Plant:              plant,
					DistributionCenter: fmt.Sprintf("Distribution_Center_%d", dc),
					Cost:               math.Round(g.uniform(1, 20)*100) / 100,
				})
			}
		}
		ds.Prices = append(ds.Prices, &entities.ListPrice{
			Product: product,
			Price:   decimal.NewFromFloat(g.uniform(5, 200)).Round(2),
		})
	}
}
