package repositories

import (
	"context"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// ForecastRepository stores forecasted demand. Replace overwrites previous runs.
type ForecastRepository interface {
	ReplaceForecasts(ctx context.Context, points []entities.ForecastPoint, dcDemand []entities.DCDemand) error
	GetForecasts(ctx context.Context, product entities.MaterialID) ([]entities.ForecastPoint, error)
	GetDCDemand(ctx context.Context) ([]entities.DCDemand, error)
}

// RawMaterialRepository stores derived raw material demand
type RawMaterialRepository interface {
	ReplaceRawMaterialDemand(ctx context.Context, reqs []entities.RawMaterialRequirement) error
	GetRawMaterialDemand(ctx context.Context) ([]entities.RawMaterialRequirement, error)
}

// ShipmentRepository stores shipment recommendations
type ShipmentRepository interface {
	ReplaceShipments(ctx context.Context, recs []entities.ShipmentRecommendation) error
	GetShipments(ctx context.Context) ([]entities.ShipmentRecommendation, error)
}
