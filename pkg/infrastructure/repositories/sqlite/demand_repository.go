package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// DemandRepo implements DemandRepository over product_demand_historical
type DemandRepo struct {
	db *sql.DB
}

// NewDemandRepo creates a new DemandRepo.
func NewDemandRepo(db *sql.DB) *DemandRepo {
	return &DemandRepo{db: db}
}

var _ repositories.DemandRepository = (*DemandRepo)(nil)

func (r *DemandRepo) LoadDemand(ctx context.Context, records []*entities.DemandRecord) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM product_demand_historical`); err != nil {
			return fmt.Errorf("clearing demand: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT OR REPLACE INTO product_demand_historical
			(product, sku, wholesaler, date, demand) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing demand insert: %w", err)
		}
		defer stmt.Close()

		for _, d := range records {
			if _, err := stmt.ExecContext(ctx, string(d.Product), d.SKU, d.Wholesaler, d.Date.Format(dateLayout), int64(d.Demand)); err != nil {
				return fmt.Errorf("inserting demand for %s: %w", d.Product, err)
			}
		}
		return nil
	})
}

func (r *DemandRepo) GetDemand(ctx context.Context, product entities.MaterialID) ([]*entities.DemandRecord, error) {
	return r.query(ctx, `SELECT product, sku, wholesaler, date, demand FROM product_demand_historical
		WHERE product = ? ORDER BY wholesaler, date`, string(product))
}

func (r *DemandRepo) GetAllDemand(ctx context.Context) ([]*entities.DemandRecord, error) {
	return r.query(ctx, `SELECT product, sku, wholesaler, date, demand FROM product_demand_historical
		ORDER BY product, wholesaler, date`)
}

func (r *DemandRepo) query(ctx context.Context, query string, args ...any) ([]*entities.DemandRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying demand: %w", err)
	}
	defer rows.Close()

	var out []*entities.DemandRecord
	for rows.Next() {
		var (
			d    entities.DemandRecord
			date string
			qty  int64
		)
		if err := rows.Scan(&d.Product, &d.SKU, &d.Wholesaler, &date, &qty); err != nil {
			return nil, fmt.Errorf("scanning demand: %w", err)
		}
		d.Date, err = time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing demand date %q: %w", date, err)
		}
		d.Demand = entities.Quantity(qty)
		out = append(out, &d)
	}
	return out, rows.Err()
}
