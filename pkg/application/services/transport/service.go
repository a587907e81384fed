package transport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
)

// Plan statuses
const (
	StatusOptimal    = "optimal"
	StatusInfeasible = "infeasible"
	StatusFailed     = "failed"
)

// Service solves one transport problem per product
type Service struct {
	networkRepo  repositories.NetworkRepository
	forecastRepo repositories.ForecastRepository
	shipmentRepo repositories.ShipmentRepository
	cfg          config.TransportConfig
	log          logger.Logger
	metrics      metrics.Sink
}

// NewService creates a new transport service
func NewService(
	networkRepo repositories.NetworkRepository,
	forecastRepo repositories.ForecastRepository,
	shipmentRepo repositories.ShipmentRepository,
	cfg config.TransportConfig,
	log logger.Logger,
	sink metrics.Sink,
) *Service {
	return &Service{
		networkRepo:  networkRepo,
		forecastRepo: forecastRepo,
		shipmentRepo: shipmentRepo,
		cfg:          cfg,
		log:          logger.OrNop(log),
		metrics:      metrics.OrNop(sink),
	}
}

// productInputs gathers the rows of one product across the three input tables
type productInputs struct {
	costs  map[string]map[string]float64
	supply map[string]entities.Quantity
	demand map[string]entities.Quantity
}

// Run solves every product with costs, supply and forecasted demand
// and stores the shipment recommendations, overwriting the previous run.
func (s *Service) Run(ctx context.Context) (*dto.TransportResult, error) {
	start := time.Now()

	inputs, err := s.loadInputs(ctx)
	if err != nil {
		return nil, err
	}

	result := &dto.TransportResult{TotalCost: decimal.Zero}
	var products []entities.MaterialID
	for product, in := range inputs {
		if len(in.costs) == 0 || len(in.supply) == 0 || len(in.demand) == 0 {
			result.Skipped = append(result.Skipped, product)
			continue
		}
		products = append(products, product)
	}
	sort.Slice(products, func(i, j int) bool { return products[i] < products[j] })
	sort.Slice(result.Skipped, func(i, j int) bool { return result.Skipped[i] < result.Skipped[j] })
	if len(result.Skipped) > 0 {
		s.log.Warnf("skipping %d products without costs, supply or demand: %v", len(result.Skipped), result.Skipped)
	}

	plans := make([]entities.ProductShipmentPlan, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i, product := range products {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			plans[i] = s.solveProduct(product, inputs[product])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, plan := range plans {
		switch plan.Status {
		case StatusOptimal:
			result.Optimal++
			result.TotalCost = result.TotalCost.Add(plan.TotalCost)
		default:
			result.Infeasible = append(result.Infeasible, plan.Product)
		}
		result.Recommendations = append(result.Recommendations, plan.Routes...)
	}
	result.Plans = plans

	if err := s.shipmentRepo.ReplaceShipments(ctx, result.Recommendations); err != nil {
		return nil, fmt.Errorf("failed to store shipment recommendations: %w", err)
	}

	result.ProcessingTime = time.Since(start)
	s.log.Infof("optimized %d products: %d optimal, %d without solution, total cost %s",
		len(products), result.Optimal, len(result.Infeasible), result.TotalCost.StringFixed(2))
	return result, nil
}

func (s *Service) loadInputs(ctx context.Context) (map[entities.MaterialID]*productInputs, error) {
	costs, err := s.networkRepo.GetTransportCosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load transport costs: %w", err)
	}
	supply, err := s.networkRepo.GetPlantSupply(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load plant supply: %w", err)
	}
	demand, err := s.forecastRepo.GetDCDemand(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecasted demand: %w", err)
	}

	inputs := make(map[entities.MaterialID]*productInputs)
	get := func(p entities.MaterialID) *productInputs {
		in, ok := inputs[p]
		if !ok {
			in = &productInputs{
				costs:  make(map[string]map[string]float64),
				supply: make(map[string]entities.Quantity),
				demand: make(map[string]entities.Quantity),
			}
			inputs[p] = in
		}
		return in
	}
	for _, c := range costs {
		in := get(c.Product)
		if in.costs[c.Plant] == nil {
			in.costs[c.Plant] = make(map[string]float64)
		}
		in.costs[c.Plant][c.DistributionCenter] = c.Cost
	}
	for _, sp := range supply {
		get(sp.Product).supply[sp.Plant] += sp.Supply
	}
	for _, d := range demand {
		get(d.Product).demand[d.DistributionCenter] += d.Demand
	}
	return inputs, nil
}

// buildProblem orders plants and distribution centers by name. Every plant
// must have a cost to every distribution center.
func buildProblem(in *productInputs) (Problem, error) {
	var p Problem
	plantSet := make(map[string]struct{})
	dcSet := make(map[string]struct{})
	for plant, row := range in.costs {
		plantSet[plant] = struct{}{}
		for dc := range row {
			dcSet[dc] = struct{}{}
		}
	}
	for dc := range in.demand {
		if _, ok := dcSet[dc]; !ok && in.demand[dc] > 0 {
			return p, fmt.Errorf("no route to %s", dc)
		}
	}
	p.Plants = sortedKeys(plantSet)
	p.DCs = sortedKeys(dcSet)

	for _, plant := range p.Plants {
		row := make([]float64, len(p.DCs))
		for j, dc := range p.DCs {
			c, ok := in.costs[plant][dc]
			if !ok {
				return p, fmt.Errorf("missing cost from %s to %s", plant, dc)
			}
			row[j] = c
		}
		p.Cost = append(p.Cost, row)
		p.Supply = append(p.Supply, float64(in.supply[plant]))
	}
	for _, dc := range p.DCs {
		p.Demand = append(p.Demand, float64(in.demand[dc]))
	}
	return p, nil
}

func (s *Service) solveProduct(product entities.MaterialID, in *productInputs) entities.ProductShipmentPlan {
	plan := entities.ProductShipmentPlan{Product: product, TotalCost: decimal.Zero}

	problem, err := buildProblem(in)
	var sol *Solution
	if err == nil {
		sol, err = Solve(problem, s.cfg.Tolerance)
	}
	if err != nil {
		plan.Status = StatusFailed
		if errors.Is(err, ErrInfeasible) {
			plan.Status = StatusInfeasible
		}
		s.metrics.RecordLPSolve(plan.Status)
		s.log.Warnf("no optimal shipment plan for %s: %v", product, err)
		plan.Routes = []entities.ShipmentRecommendation{{Product: product}}
		return plan
	}

	plan.Status = StatusOptimal
	s.metrics.RecordLPSolve(plan.Status)
	for i, plant := range problem.Plants {
		for j, dc := range problem.DCs {
			qty := entities.Quantity(sol.Shipped[i][j])
			plan.Routes = append(plan.Routes, entities.ShipmentRecommendation{
				Product:            product,
				Plant:              &plant,
				DistributionCenter: &dc,
				QtyShipped:         &qty,
			})
			plan.TotalCost = plan.TotalCost.Add(decimal.NewFromFloat(problem.Cost[i][j]).Mul(decimal.NewFromInt(int64(qty))))
		}
	}
	return plan
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
