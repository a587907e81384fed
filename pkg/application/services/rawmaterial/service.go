package rawmaterial

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
)

// Service derives raw material demand and answers BOM usage queries
type Service struct {
	bomRepo      repositories.BOMRepository
	forecastRepo repositories.ForecastRepository
	rawRepo      repositories.RawMaterialRepository
	traverser    *BOMTraverser
	log          logger.Logger
}

// NewService creates a new raw material service
func NewService(
	bomRepo repositories.BOMRepository,
	forecastRepo repositories.ForecastRepository,
	rawRepo repositories.RawMaterialRepository,
	log logger.Logger,
) *Service {
	return &Service{
		bomRepo:      bomRepo,
		forecastRepo: forecastRepo,
		rawRepo:      rawRepo,
		traverser:    NewBOMTraverser(bomRepo),
		log:          logger.OrNop(log),
	}
}

// Derive propagates the forecasted distribution center demand through the
// BOM and stores the demand of every raw material.
func (s *Service) Derive(ctx context.Context) (*dto.RawMaterialResult, error) {
	start := time.Now()

	lines, err := s.bomRepo.GetAllBOMLines(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load bom: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("bom is empty")
	}
	g, err := NewBOMGraph(lines)
	if err != nil {
		return nil, err
	}

	dcDemand, err := s.forecastRepo.GetDCDemand(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load forecasted demand: %w", err)
	}

	seed := make(map[entities.MaterialID]entities.Quantity)
	for _, d := range dcDemand {
		seed[d.Product] += d.Demand
	}

	var unknown []entities.MaterialID
	for product := range seed {
		if !g.Has(product) {
			unknown = append(unknown, product)
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return unknown[i] < unknown[j] })
	if len(unknown) > 0 {
		s.log.Warnf("%d forecasted products have no bom and contribute no raw material demand: %v", len(unknown), unknown)
	}

	demand := g.Propagate(seed)
	raws := g.Materials(entities.RawMaterial)
	reqs := make([]entities.RawMaterialRequirement, 0, len(raws))
	for _, raw := range raws {
		reqs = append(reqs, entities.RawMaterialRequirement{Raw: raw, Demand: demand[raw]})
	}

	if err := s.rawRepo.ReplaceRawMaterialDemand(ctx, reqs); err != nil {
		return nil, fmt.Errorf("failed to store raw material demand: %w", err)
	}
	s.log.Infof("derived demand for %d raw materials from %d products", len(reqs), len(seed))

	return &dto.RawMaterialResult{
		Requirements:    reqs,
		FinishedDemand:  seed,
		UnknownProducts: unknown,
		ProcessingTime:  time.Since(start),
	}, nil
}

// Kind classifies a material by its BOM lines
func (s *Service) Kind(ctx context.Context, material entities.MaterialID) (entities.MaterialKind, error) {
	inputs, err := s.bomRepo.GetInputs(ctx, material)
	if err != nil {
		return entities.FinishedProduct, fmt.Errorf("failed to get inputs of %s: %w", material, err)
	}
	consumers, err := s.bomRepo.GetConsumers(ctx, material)
	if err != nil {
		return entities.FinishedProduct, fmt.Errorf("failed to get consumers of %s: %w", material, err)
	}
	if len(inputs) == 0 && len(consumers) == 0 {
		return entities.FinishedProduct, fmt.Errorf("material %s: %w", material, repositories.ErrNotFound)
	}
	return kindOf(len(inputs), len(consumers)), nil
}

// RawFromProduct returns every raw material reachable from product with the
// quantity needed per unit of product, summed over all BOM paths.
func (s *Service) RawFromProduct(ctx context.Context, product entities.MaterialID) ([]entities.MaterialUsage, error) {
	kind, err := s.Kind(ctx, product)
	if err != nil {
		return nil, err
	}
	if kind == entities.RawMaterial {
		return nil, fmt.Errorf("%s is a raw material: %w", product, entities.ErrInvalidArgument)
	}
	return s.usage(ctx, product, Down)
}

// ProductFromRaw returns every finished product that consumes raw, directly or
// through intermediates, with the quantity of raw needed per unit of product.
func (s *Service) ProductFromRaw(ctx context.Context, raw entities.MaterialID) ([]entities.MaterialUsage, error) {
	kind, err := s.Kind(ctx, raw)
	if err != nil {
		return nil, err
	}
	if kind == entities.FinishedProduct {
		return nil, fmt.Errorf("%s is a finished product: %w", raw, entities.ErrInvalidArgument)
	}
	return s.usage(ctx, raw, Up)
}

func (s *Service) usage(ctx context.Context, root entities.MaterialID, direction Direction) ([]entities.MaterialUsage, error) {
	visitor := NewUsageVisitor(root, direction)
	if _, err := s.traverser.TraverseBOM(ctx, root, 1, direction, visitor); err != nil {
		return nil, err
	}
	return visitor.Usage(), nil
}
