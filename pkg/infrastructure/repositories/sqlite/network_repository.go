package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// NetworkRepo implements NetworkRepository over the mapping, plant_supply,
// transport_cost and list_prices tables
type NetworkRepo struct {
	db *sql.DB
}

// NewNetworkRepo creates a new NetworkRepo.
func NewNetworkRepo(db *sql.DB) *NetworkRepo {
	return &NetworkRepo{db: db}
}

var _ repositories.NetworkRepository = (*NetworkRepo)(nil)

func (r *NetworkRepo) LoadAssignments(ctx context.Context, assignments []*entities.WholesalerAssignment) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM distribution_center_to_wholesaler_mapping`); err != nil {
			return fmt.Errorf("clearing assignments: %w", err)
		}
		for _, a := range assignments {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO distribution_center_to_wholesaler_mapping
				(distribution_center, wholesaler) VALUES (?, ?)`, a.DistributionCenter, a.Wholesaler); err != nil {
				return fmt.Errorf("inserting mapping for %s: %w", a.Wholesaler, err)
			}
		}
		return nil
	})
}

func (r *NetworkRepo) GetAssignments(ctx context.Context) ([]*entities.WholesalerAssignment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT distribution_center, wholesaler
		FROM distribution_center_to_wholesaler_mapping ORDER BY distribution_center, wholesaler`)
	if err != nil {
		return nil, fmt.Errorf("querying mapping: %w", err)
	}
	defer rows.Close()

	var out []*entities.WholesalerAssignment
	for rows.Next() {
		var a entities.WholesalerAssignment
		if err := rows.Scan(&a.DistributionCenter, &a.Wholesaler); err != nil {
			return nil, fmt.Errorf("scanning mapping: %w", err)
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (r *NetworkRepo) LoadPlantSupply(ctx context.Context, supply []*entities.PlantSupply) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM plant_supply`); err != nil {
			return fmt.Errorf("clearing plant supply: %w", err)
		}
		for _, s := range supply {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO plant_supply (product, plant, supply) VALUES (?, ?, ?)`,
				string(s.Product), s.Plant, int64(s.Supply)); err != nil {
				return fmt.Errorf("inserting supply for %s/%s: %w", s.Product, s.Plant, err)
			}
		}
		return nil
	})
}

func (r *NetworkRepo) GetPlantSupply(ctx context.Context) ([]*entities.PlantSupply, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product, plant, supply FROM plant_supply ORDER BY product, plant`)
	if err != nil {
		return nil, fmt.Errorf("querying plant supply: %w", err)
	}
	defer rows.Close()

	var out []*entities.PlantSupply
	for rows.Next() {
		var (
			s   entities.PlantSupply
			qty int64
		)
		if err := rows.Scan(&s.Product, &s.Plant, &qty); err != nil {
			return nil, fmt.Errorf("scanning plant supply: %w", err)
		}
		s.Supply = entities.Quantity(qty)
		out = append(out, &s)
	}
	return out, rows.Err()
}

func (r *NetworkRepo) LoadTransportCosts(ctx context.Context, costs []*entities.TransportCost) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transport_cost`); err != nil {
			return fmt.Errorf("clearing transport costs: %w", err)
		}
		for _, c := range costs {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO transport_cost
				(product, plant, distribution_center, cost) VALUES (?, ?, ?, ?)`,
				string(c.Product), c.Plant, c.DistributionCenter, c.Cost); err != nil {
				return fmt.Errorf("inserting transport cost for %s/%s: %w", c.Product, c.Plant, err)
			}
		}
		return nil
	})
}

func (r *NetworkRepo) GetTransportCosts(ctx context.Context) ([]*entities.TransportCost, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product, plant, distribution_center, cost
		FROM transport_cost ORDER BY product, plant, distribution_center`)
	if err != nil {
		return nil, fmt.Errorf("querying transport cost: %w", err)
	}
	defer rows.Close()

	var out []*entities.TransportCost
	for rows.Next() {
		var c entities.TransportCost
		if err := rows.Scan(&c.Product, &c.Plant, &c.DistributionCenter, &c.Cost); err != nil {
			return nil, fmt.Errorf("scanning transport cost: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *NetworkRepo) LoadListPrices(ctx context.Context, prices []*entities.ListPrice) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM list_prices`); err != nil {
			return fmt.Errorf("clearing list prices: %w", err)
		}
		for _, p := range prices {
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO list_prices (product, price) VALUES (?, ?)`,
				string(p.Product), p.Price.String()); err != nil {
				return fmt.Errorf("inserting list price for %s: %w", p.Product, err)
			}
		}
		return nil
	})
}

func (r *NetworkRepo) GetListPrices(ctx context.Context) ([]*entities.ListPrice, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT product, price FROM list_prices ORDER BY product`)
	if err != nil {
		return nil, fmt.Errorf("querying list prices: %w", err)
	}
	defer rows.Close()

	var out []*entities.ListPrice
	for rows.Next() {
		var (
			p     entities.ListPrice
			price string
		)
		if err := rows.Scan(&p.Product, &price); err != nil {
			return nil, fmt.Errorf("scanning list price: %w", err)
		}
		p.Price, err = decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parsing list price %q for %s: %w", price, p.Product, err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}
