package analytics

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
)

// WhereUsed resolves the finished products that consume a raw material
type WhereUsed interface {
	ProductFromRaw(ctx context.Context, raw entities.MaterialID) ([]entities.MaterialUsage, error)
}

// Service answers demand and revenue questions over the managed tables
type Service struct {
	demandRepo   repositories.DemandRepository
	forecastRepo repositories.ForecastRepository
	networkRepo  repositories.NetworkRepository
	whereUsed    WhereUsed
	log          logger.Logger
}

// NewService creates a new analytics service
func NewService(
	demandRepo repositories.DemandRepository,
	forecastRepo repositories.ForecastRepository,
	networkRepo repositories.NetworkRepository,
	whereUsed WhereUsed,
	log logger.Logger,
) *Service {
	return &Service{
		demandRepo:   demandRepo,
		forecastRepo: forecastRepo,
		networkRepo:  networkRepo,
		whereUsed:    whereUsed,
		log:          logger.OrNop(log),
	}
}

// LookupProductDemand returns the historical demand of product, restricted to
// wholesaler when it is not empty, together with its forecast points.
func (s *Service) LookupProductDemand(ctx context.Context, product entities.MaterialID, wholesaler string) (*dto.ProductDemand, error) {
	if product == "" {
		return nil, fmt.Errorf("product cannot be empty: %w", entities.ErrInvalidArgument)
	}

	records, err := s.demandRepo.GetDemand(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to get demand of %s: %w", product, err)
	}
	points, err := s.forecastRepo.GetForecasts(ctx, product)
	if err != nil {
		return nil, fmt.Errorf("failed to get forecasts of %s: %w", product, err)
	}

	result := &dto.ProductDemand{
		Product:    product,
		Wholesaler: wholesaler,
		Historical: make([]entities.DemandRecord, 0, len(records)),
		Forecast:   make([]entities.ForecastPoint, 0, len(points)),
	}
	for _, r := range records {
		if wholesaler != "" && r.Wholesaler != wholesaler {
			continue
		}
		result.Historical = append(result.Historical, *r)
		result.Total += r.Demand
	}
	for _, p := range points {
		if wholesaler != "" && p.Wholesaler != wholesaler {
			continue
		}
		result.Forecast = append(result.Forecast, p)
	}

	if len(result.Historical) == 0 {
		if wholesaler != "" {
			return nil, fmt.Errorf("demand of %s at %s: %w", product, wholesaler, repositories.ErrNotFound)
		}
		return nil, fmt.Errorf("demand of %s: %w", product, repositories.ErrNotFound)
	}

	sort.SliceStable(result.Historical, func(i, j int) bool {
		a, b := result.Historical[i], result.Historical[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Wholesaler < b.Wholesaler
	})
	return result, nil
}

// RevenueRisk estimates the revenue lost by every finished product using raw
// when shortfall units of raw are missing. A product needing q units of raw
// per unit loses ceil(shortfall / q) units of sales.
func (s *Service) RevenueRisk(ctx context.Context, raw entities.MaterialID, shortfall entities.Quantity) (*entities.RevenueRisk, error) {
	if shortfall <= 0 {
		return nil, fmt.Errorf("shortfall must be positive, got %d: %w", shortfall, entities.ErrInvalidArgument)
	}

	usage, err := s.whereUsed.ProductFromRaw(ctx, raw)
	if err != nil {
		return nil, err
	}
	prices, err := s.networkRepo.GetListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get list prices: %w", err)
	}
	priceOf := make(map[entities.MaterialID]decimal.Decimal, len(prices))
	for _, p := range prices {
		priceOf[p.Product] = p.Price
	}

	risk := &entities.RevenueRisk{
		Raw:         raw,
		Shortfall:   shortfall,
		Exposures:   make([]entities.ProductExposure, 0, len(usage)),
		MaxExposure: decimal.Zero,
	}
	var missing []entities.MaterialID
	for _, u := range usage {
		lost := ceilDiv(shortfall, u.QtyPer)
		exposure := entities.ProductExposure{
			Product:       u.Product,
			RawPerUnit:    u.QtyPer,
			LostUnits:     lost,
			ListPrice:     decimal.Zero,
			RevenueAtRisk: decimal.Zero,
		}
		if price, ok := priceOf[u.Product]; ok {
			exposure.ListPrice = price
			exposure.RevenueAtRisk = price.Mul(decimal.NewFromInt(int64(lost)))
		} else {
			exposure.MissingPrice = true
			missing = append(missing, u.Product)
		}
		if exposure.RevenueAtRisk.GreaterThan(risk.MaxExposure) {
			risk.MaxExposure = exposure.RevenueAtRisk
		}
		risk.Exposures = append(risk.Exposures, exposure)
	}
	if len(missing) > 0 {
		s.log.Warnf("no list price for %v, reporting zero revenue at risk", missing)
	}

	sort.SliceStable(risk.Exposures, func(i, j int) bool {
		a, b := risk.Exposures[i], risk.Exposures[j]
		if c := a.RevenueAtRisk.Cmp(b.RevenueAtRisk); c != 0 {
			return c > 0
		}
		return a.Product < b.Product
	})
	return risk, nil
}

func ceilDiv(a, b entities.Quantity) entities.Quantity {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
