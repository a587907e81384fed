package forecast

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
)

const week = 7 * 24 * time.Hour

// Service forecasts demand per product and wholesaler and aggregates it per
// distribution center
type Service struct {
	demandRepo   repositories.DemandRepository
	networkRepo  repositories.NetworkRepository
	forecastRepo repositories.ForecastRepository
	cfg          config.ForecastConfig
	log          logger.Logger
	metrics      metrics.Sink
}

// NewService creates a new forecast service
func NewService(
	demandRepo repositories.DemandRepository,
	networkRepo repositories.NetworkRepository,
	forecastRepo repositories.ForecastRepository,
	cfg config.ForecastConfig,
	log logger.Logger,
	sink metrics.Sink,
) *Service {
	return &Service{
		demandRepo:   demandRepo,
		networkRepo:  networkRepo,
		forecastRepo: forecastRepo,
		cfg:          cfg,
		log:          logger.OrNop(log),
		metrics:      metrics.OrNop(sink),
	}
}

type series struct {
	key    entities.SeriesKey
	last   time.Time
	values []float64
}

type seriesForecast struct {
	fit    Fit
	points []entities.ForecastPoint
}

// Run fits every series, stores the forecast points and the distribution
// center aggregates, overwriting the previous run.
func (s *Service) Run(ctx context.Context) (*dto.ForecastResult, error) {
	start := time.Now()

	records, err := s.demandRepo.GetAllDemand(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load demand: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no historical demand to forecast")
	}
	assignments, err := s.networkRepo.GetAssignments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load distribution center mapping: %w", err)
	}
	dcOf := make(map[string]string, len(assignments))
	for _, a := range assignments {
		dcOf[a.Wholesaler] = a.DistributionCenter
	}

	all := groupSeries(records)
	s.metrics.SetForecastSeries(len(all))
	s.log.Infof("forecasting %d series, horizon %d weeks", len(all), s.cfg.HorizonWeeks)

	results := make([]seriesForecast, len(all))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sf, err := s.forecastSeries(all[i])
			if err != nil {
				return fmt.Errorf("failed to forecast %s: %w", all[i].key, err)
			}
			results[i] = sf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result := &dto.ForecastResult{
		Series:  len(all),
		Methods: make(map[string]int),
	}
	dcTotals := make(map[entities.MaterialID]map[string]entities.Quantity)
	var rmse []float64
	for i, sf := range results {
		result.Methods[string(sf.fit.Method)]++
		if sf.fit.Method != MethodMean {
			rmse = append(rmse, sf.fit.RMSE)
		}
		result.Points = append(result.Points, sf.points...)

		key := all[i].key
		dc, ok := dcOf[key.Wholesaler]
		if !ok {
			result.UnmappedSeries++
			s.log.Warnf("wholesaler %s is not mapped to a distribution center, %s excluded from aggregates", key.Wholesaler, key)
			continue
		}
		if dcTotals[key.Product] == nil {
			dcTotals[key.Product] = make(map[string]entities.Quantity)
		}
		for _, p := range sf.points {
			dcTotals[key.Product][dc] += p.Demand
		}
	}
	result.DCDemand = flattenDCTotals(dcTotals)
	if len(rmse) > 0 {
		result.MeanRMSE = stat.Mean(rmse, nil)
	}

	if err := s.forecastRepo.ReplaceForecasts(ctx, result.Points, result.DCDemand); err != nil {
		return nil, fmt.Errorf("failed to store forecasts: %w", err)
	}

	result.ProcessingTime = time.Since(start)
	s.log.Infof("forecast complete: %d points, %d dc aggregates in %s", len(result.Points), len(result.DCDemand), result.ProcessingTime.Round(time.Millisecond))
	return result, nil
}

func (s *Service) forecastSeries(sr series) (seriesForecast, error) {
	fit := FitSeries(sr.values, s.cfg.SeasonLength)
	values := fit.Forecast(s.cfg.HorizonWeeks)

	points := make([]entities.ForecastPoint, len(values))
	for h, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return seriesForecast{}, fmt.Errorf("non finite forecast at step %d", h+1)
		}
		points[h] = entities.ForecastPoint{
			Product:    sr.key.Product,
			Wholesaler: sr.key.Wholesaler,
			Date:       sr.last.Add(time.Duration(h+1) * week),
			Demand:     entities.Quantity(math.Round(v)),
		}
	}
	s.log.Debugw("series fitted", map[string]any{
		"series": sr.key.String(),
		"method": fit.Method,
		"alpha":  fit.Alpha,
		"beta":   fit.Beta,
		"gamma":  fit.Gamma,
		"rmse":   fit.RMSE,
	})
	return seriesForecast{fit: fit, points: points}, nil
}

// groupSeries splits records into date ordered series sorted by key
func groupSeries(records []*entities.DemandRecord) []series {
	byKey := make(map[entities.SeriesKey][]*entities.DemandRecord)
	for _, r := range records {
		key := entities.SeriesKey{Product: r.Product, Wholesaler: r.Wholesaler}
		byKey[key] = append(byKey[key], r)
	}

	out := make([]series, 0, len(byKey))
	for key, recs := range byKey {
		sort.Slice(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
		values := make([]float64, len(recs))
		for i, r := range recs {
			values[i] = float64(r.Demand)
		}
		out = append(out, series{key: key, last: recs[len(recs)-1].Date, values: values})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].key.Product != out[j].key.Product {
			return out[i].key.Product < out[j].key.Product
		}
		return out[i].key.Wholesaler < out[j].key.Wholesaler
	})
	return out
}

func flattenDCTotals(totals map[entities.MaterialID]map[string]entities.Quantity) []entities.DCDemand {
	var out []entities.DCDemand
	for product, byDC := range totals {
		for dc, q := range byDC {
			out = append(out, entities.DCDemand{Product: product, DistributionCenter: dc, Demand: q})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Product != out[j].Product {
			return out[i].Product < out[j].Product
		}
		return out[i].DistributionCenter < out[j].DistributionCenter
	})
	return out
}
