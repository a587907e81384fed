package setup

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/services"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/repositories/csv"
)

// Input file names read by Import
const (
	DemandFile        = "product_demand_historical.csv"
	AssignmentFile    = "distribution_center_to_wholesaler_mapping.csv"
	BOMFile           = "bom.csv"
	PlantSupplyFile   = "plant_supply.csv"
	TransportCostFile = "transport_cost.csv"
	ListPriceFile     = "list_prices.csv"
)

// Resetter drops and recreates every managed table
type Resetter interface {
	Reset(ctx context.Context) error
}

// ResetFunc adapts a function to Resetter
type ResetFunc func(ctx context.Context) error

func (f ResetFunc) Reset(ctx context.Context) error { return f(ctx) }

// Service populates the input tables
type Service struct {
	demandRepo  repositories.DemandRepository
	networkRepo repositories.NetworkRepository
	bomRepo     repositories.BOMRepository
	resetter    Resetter
	validator   *services.BOMValidator
	log         logger.Logger
}

// NewService creates a new setup service. resetter may be nil when the
// repositories cannot be reset.
func NewService(
	demandRepo repositories.DemandRepository,
	networkRepo repositories.NetworkRepository,
	bomRepo repositories.BOMRepository,
	resetter Resetter,
	log logger.Logger,
) *Service {
	return &Service{
		demandRepo:  demandRepo,
		networkRepo: networkRepo,
		bomRepo:     bomRepo,
		resetter:    resetter,
		validator:   services.NewBOMValidator(),
		log:         logger.OrNop(log),
	}
}

// Generate writes a synthetic dataset
func (s *Service) Generate(ctx context.Context, cfg config.GeneratorConfig, reset bool) (*dto.SetupResult, error) {
	ds, err := Generate(cfg)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, ds, reset)
}

// Import reads the input tables from CSV files in dir and writes them
func (s *Service) Import(ctx context.Context, dir string, reset bool) (*dto.SetupResult, error) {
	loader := csv.NewLoader()
	ds := &Dataset{}
	var err error

	if ds.Demand, err = loader.LoadDemand(filepath.Join(dir, DemandFile)); err != nil {
		return nil, fmt.Errorf("failed to load demand: %w", err)
	}
	if ds.Assignments, err = loader.LoadAssignments(filepath.Join(dir, AssignmentFile)); err != nil {
		return nil, fmt.Errorf("failed to load distribution center mapping: %w", err)
	}
	if ds.BOM, err = loader.LoadBOM(filepath.Join(dir, BOMFile)); err != nil {
		return nil, fmt.Errorf("failed to load BOM: %w", err)
	}
	if ds.Supply, err = loader.LoadPlantSupply(filepath.Join(dir, PlantSupplyFile)); err != nil {
		return nil, fmt.Errorf("failed to load plant supply: %w", err)
	}
	if ds.Costs, err = loader.LoadTransportCosts(filepath.Join(dir, TransportCostFile)); err != nil {
		return nil, fmt.Errorf("failed to load transport costs: %w", err)
	}
	if ds.Prices, err = loader.LoadListPrices(filepath.Join(dir, ListPriceFile)); err != nil {
		return nil, fmt.Errorf("failed to load list prices: %w", err)
	}
	return s.Load(ctx, ds, reset)
}

// Load validates ds and writes it to the repositories. A BOM with cycles is
// rejected; reference problems are logged and reported in the result.
func (s *Service) Load(ctx context.Context, ds *Dataset, reset bool) (*dto.SetupResult, error) {
	lines := make([]entities.BOMLine, len(ds.BOM))
	for i, l := range ds.BOM {
		lines[i] = *l
	}
	bomCheck := s.validator.ValidateBOM(lines)
	if bomCheck.HasCycles {
		return nil, fmt.Errorf("BOM validation failed: %v", bomCheck.Errors)
	}
	refCheck := s.validator.ValidateReferences(lines, referencedProducts(ds), demandWholesalers(ds), derefAssignments(ds))
	for _, msg := range append(bomCheck.Errors, refCheck.Errors...) {
		s.log.Warnf("validation: %s", msg)
	}

	if reset {
		if s.resetter == nil {
			s.log.Warnf("reset requested but the repositories cannot be reset")
		} else if err := s.resetter.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset tables: %w", err)
		}
	}

	if err := s.demandRepo.LoadDemand(ctx, ds.Demand); err != nil {
		return nil, fmt.Errorf("failed to store demand: %w", err)
	}
	if err := s.networkRepo.LoadAssignments(ctx, ds.Assignments); err != nil {
		return nil, fmt.Errorf("failed to store distribution center mapping: %w", err)
	}
	if err := s.bomRepo.LoadBOMLines(ctx, ds.BOM); err != nil {
		return nil, fmt.Errorf("failed to store BOM: %w", err)
	}
	if err := s.networkRepo.LoadPlantSupply(ctx, ds.Supply); err != nil {
		return nil, fmt.Errorf("failed to store plant supply: %w", err)
	}
	if err := s.networkRepo.LoadTransportCosts(ctx, ds.Costs); err != nil {
		return nil, fmt.Errorf("failed to store transport costs: %w", err)
	}
	if err := s.networkRepo.LoadListPrices(ctx, ds.Prices); err != nil {
		return nil, fmt.Errorf("failed to store list prices: %w", err)
	}

	result := summarize(ds)
	result.ValidationOK = bomCheck.IsValid() && refCheck.IsValid()
	s.log.Infof("loaded %d products, %d demand rows and %d BOM lines", result.Products, result.DemandRows, result.BOMLines)
	return result, nil
}

func summarize(ds *Dataset) *dto.SetupResult {
	products := make(map[entities.MaterialID]bool)
	plants := make(map[string]bool)
	dcs := make(map[string]bool)
	for _, p := range ds.Prices {
		products[p.Product] = true
	}
	for _, d := range ds.Demand {
		products[d.Product] = true
	}
	for _, s := range ds.Supply {
		plants[s.Plant] = true
	}
	for _, a := range ds.Assignments {
		dcs[a.DistributionCenter] = true
	}
	return &dto.SetupResult{
		Products:    len(products),
		Plants:      len(plants),
		DCs:         len(dcs),
		Wholesalers: len(ds.Assignments),
		DemandRows:  len(ds.Demand),
		BOMLines:    len(ds.BOM),
		SupplyRows:  len(ds.Supply),
		CostRows:    len(ds.Costs),
		PriceRows:   len(ds.Prices),
	}
}

func referencedProducts(ds *Dataset) []entities.MaterialID {
	var out []entities.MaterialID
	for _, d := range ds.Demand {
		out = append(out, d.Product)
	}
	for _, s := range ds.Supply {
		out = append(out, s.Product)
	}
	for _, c := range ds.Costs {
		out = append(out, c.Product)
	}
	for _, p := range ds.Prices {
		out = append(out, p.Product)
	}
	return out
}

func demandWholesalers(ds *Dataset) []string {
	out := make([]string, len(ds.Demand))
	for i, d := range ds.Demand {
		out[i] = d.Wholesaler
	}
	return out
}

func derefAssignments(ds *Dataset) []entities.WholesalerAssignment {
	out := make([]entities.WholesalerAssignment, len(ds.Assignments))
	for i, a := range ds.Assignments {
		out[i] = *a
	}
	return out
}
