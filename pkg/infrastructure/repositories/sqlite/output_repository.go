package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// OutputRepo stores the tables written by the pipeline stages. Every Replace
// method overwrites the previous run atomically.
type OutputRepo struct {
	db *sql.DB
}

// NewOutputRepo creates a new OutputRepo.
func NewOutputRepo(db *sql.DB) *OutputRepo {
	return &OutputRepo{db: db}
}

var (
	_ repositories.ForecastRepository    = (*OutputRepo)(nil)
	_ repositories.RawMaterialRepository = (*OutputRepo)(nil)
	_ repositories.ShipmentRepository    = (*OutputRepo)(nil)
)

func (r *OutputRepo) ReplaceForecasts(ctx context.Context, points []entities.ForecastPoint, dcDemand []entities.DCDemand) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_demand_forecasted`); err != nil {
			return fmt.Errorf("clearing forecasts: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_demand_forecasted_dc`); err != nil {
			return fmt.Errorf("clearing dc forecasts: %w", err)
		}
		for _, p := range points {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_demand_forecasted (product, wholesaler, date, demand)
				VALUES (?, ?, ?, ?)`, string(p.Product), p.Wholesaler, p.Date.Format(dateLayout), int64(p.Demand)); err != nil {
				return fmt.Errorf("inserting forecast for %s/%s: %w", p.Product, p.Wholesaler, err)
			}
		}
		for _, d := range dcDemand {
			if _, err := tx.ExecContext(ctx, `INSERT INTO product_demand_forecasted_dc (product, distribution_center, demand)
				VALUES (?, ?, ?)`, string(d.Product), d.DistributionCenter, int64(d.Demand)); err != nil {
				return fmt.Errorf("inserting dc forecast for %s/%s: %w", d.Product, d.DistributionCenter, err)
			}
		}
		return nil
	})
}

func (r *OutputRepo) GetForecasts(ctx context.Context, product entities.MaterialID) ([]entities.ForecastPoint, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product, wholesaler, date, demand FROM product_demand_forecasted
		WHERE product = ? ORDER BY wholesaler, date`, string(product))
	if err != nil {
		return nil, fmt.Errorf("querying forecasts: %w", err)
	}
	defer rows.Close()

	var out []entities.ForecastPoint
	for rows.Next() {
		var (
			p    entities.ForecastPoint
			date string
			qty  int64
		)
		if err := rows.Scan(&p.Product, &p.Wholesaler, &date, &qty); err != nil {
			return nil, fmt.Errorf("scanning forecast: %w", err)
		}
		if p.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parsing forecast date %q: %w", date, err)
		}
		p.Demand = entities.Quantity(qty)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *OutputRepo) GetDCDemand(ctx context.Context) ([]entities.DCDemand, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product, distribution_center, demand FROM product_demand_forecasted_dc
		ORDER BY product, distribution_center`)
	if err != nil {
		return nil, fmt.Errorf("querying dc forecasts: %w", err)
	}
	defer rows.Close()

	var out []entities.DCDemand
	for rows.Next() {
		var (
			d   entities.DCDemand
			qty int64
		)
		if err := rows.Scan(&d.Product, &d.DistributionCenter, &qty); err != nil {
			return nil, fmt.Errorf("scanning dc forecast: %w", err)
		}
		d.Demand = entities.Quantity(qty)
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *OutputRepo) ReplaceRawMaterialDemand(ctx context.Context, reqs []entities.RawMaterialRequirement) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM raw_material_demand`); err != nil {
			return fmt.Errorf("clearing raw material demand: %w", err)
		}
		for _, req := range reqs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO raw_material_demand (raw, demand) VALUES (?, ?)`,
				string(req.Raw), int64(req.Demand)); err != nil {
				return fmt.Errorf("inserting raw material demand for %s: %w", req.Raw, err)
			}
		}
		return nil
	})
}

func (r *OutputRepo) GetRawMaterialDemand(ctx context.Context) ([]entities.RawMaterialRequirement, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT raw, demand FROM raw_material_demand ORDER BY raw`)
	if err != nil {
		return nil, fmt.Errorf("querying raw material demand: %w", err)
	}
	defer rows.Close()

	var out []entities.RawMaterialRequirement
	for rows.Next() {
		var (
			req entities.RawMaterialRequirement
			qty int64
		)
		if err := rows.Scan(&req.Raw, &qty); err != nil {
			return nil, fmt.Errorf("scanning raw material demand: %w", err)
		}
		req.Demand = entities.Quantity(qty)
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *OutputRepo) ReplaceShipments(ctx context.Context, recs []entities.ShipmentRecommendation) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM shipment_recommendations`); err != nil {
			return fmt.Errorf("clearing shipments: %w", err)
		}
		for _, s := range recs {
			if _, err := tx.ExecContext(ctx, `INSERT INTO shipment_recommendations
				(product, plant, distribution_center, qty_shipped) VALUES (?, ?, ?, ?)`,
				string(s.Product), nullableString(s.Plant), nullableString(s.DistributionCenter),
				nullableInt64(s.QtyShipped)); err != nil {
				return fmt.Errorf("inserting shipment for %s: %w", s.Product, err)
			}
		}
		return nil
	})
}

func (r *OutputRepo) GetShipments(ctx context.Context) ([]entities.ShipmentRecommendation, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product, plant, distribution_center, qty_shipped
		FROM shipment_recommendations ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("querying shipments: %w", err)
	}
	defer rows.Close()

	var out []entities.ShipmentRecommendation
	for rows.Next() {
		var (
			s         entities.ShipmentRecommendation
			plant, dc sql.NullString
			qty       sql.NullInt64
		)
		if err := rows.Scan(&s.Product, &plant, &dc, &qty); err != nil {
			return nil, fmt.Errorf("scanning shipment: %w", err)
		}
		if plant.Valid {
			s.Plant = &plant.String
		}
		if dc.Valid {
			s.DistributionCenter = &dc.String
		}
		if qty.Valid {
			q := entities.Quantity(qty.Int64)
			s.QtyShipped = &q
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
