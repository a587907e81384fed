package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// BOMRepo implements BOMRepository over the bom table
type BOMRepo struct {
	db *sql.DB
}

// NewBOMRepo creates a new BOMRepo.
func NewBOMRepo(db *sql.DB) *BOMRepo {
	return &BOMRepo{db: db}
}

var _ repositories.BOMRepository = (*BOMRepo)(nil)

func (r *BOMRepo) LoadBOMLines(ctx context.Context, lines []*entities.BOMLine) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM bom`); err != nil {
			return fmt.Errorf("clearing bom: %w", err)
		}
		for _, l := range lines {
			if _, err := tx.ExecContext(ctx, `INSERT INTO bom (material_in, material_out, qty) VALUES (?, ?, ?)`,
				string(l.MaterialIn), string(l.MaterialOut), int64(l.QtyPer)); err != nil {
				return fmt.Errorf("inserting bom line %s -> %s: %w", l.MaterialIn, l.MaterialOut, err)
			}
		}
		return nil
	})
}

func (r *BOMRepo) GetAllBOMLines(ctx context.Context) ([]*entities.BOMLine, error) {
	return r.query(ctx, `SELECT material_in, material_out, qty FROM bom ORDER BY material_out, material_in`)
}

func (r *BOMRepo) GetInputs(ctx context.Context, material entities.MaterialID) ([]*entities.BOMLine, error) {
	return r.query(ctx, `SELECT material_in, material_out, qty FROM bom WHERE material_out = ? ORDER BY material_in`, string(material))
}

func (r *BOMRepo) GetConsumers(ctx context.Context, material entities.MaterialID) ([]*entities.BOMLine, error) {
	return r.query(ctx, `SELECT material_in, material_out, qty FROM bom WHERE material_in = ? ORDER BY material_out`, string(material))
}

func (r *BOMRepo) query(ctx context.Context, query string, args ...any) ([]*entities.BOMLine, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying bom: %w", err)
	}
	defer rows.Close()

	var out []*entities.BOMLine
	for rows.Next() {
		var (
			l   entities.BOMLine
			qty int64
		)
		if err := rows.Scan(&l.MaterialIn, &l.MaterialOut, &qty); err != nil {
			return nil, fmt.Errorf("scanning bom line: %w", err)
		}
		l.QtyPer = entities.Quantity(qty)
		out = append(out, &l)
	}
	return out, rows.Err()
}
