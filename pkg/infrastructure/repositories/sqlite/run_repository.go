package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// RunRepo records pipeline stage executions in pipeline_runs
type RunRepo struct {
	db *sql.DB
}

// NewRunRepo creates a new RunRepo.
func NewRunRepo(db *sql.DB) *RunRepo {
	return &RunRepo{db: db}
}

var _ repositories.RunRepository = (*RunRepo)(nil)

func (r *RunRepo) StartRun(ctx context.Context, run *repositories.PipelineRun) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO pipeline_runs (id, stage, started_at, status, detail)
		VALUES (?, ?, ?, ?, ?)`, run.ID, run.Stage, run.StartedAt.UTC().Format(runTimeLayout), run.Status, run.Detail)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func (r *RunRepo) FinishRun(ctx context.Context, id string, status, detail string, finishedAt time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE pipeline_runs SET status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		status, detail, finishedAt.UTC().Format(runTimeLayout), id)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s: %w", id, repositories.ErrNotFound)
	}
	return nil
}

func (r *RunRepo) ListRuns(ctx context.Context, limit int) ([]*repositories.PipelineRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.QueryContext(ctx, `SELECT id, stage, started_at, finished_at, status, detail
		FROM pipeline_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []*repositories.PipelineRun
	for rows.Next() {
		var (
			run      repositories.PipelineRun
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&run.ID, &run.Stage, &started, &finished, &run.Status, &run.Detail); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if run.StartedAt, err = time.Parse(runTimeLayout, started); err != nil {
			return nil, fmt.Errorf("parsing run start %q: %w", started, err)
		}
		run.FinishedAt = parseNullableTime(finished, runTimeLayout)
		out = append(out, &run)
	}
	return out, rows.Err()
}
