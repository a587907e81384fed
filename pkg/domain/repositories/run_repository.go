package repositories

import (
	"context"
	"time"
)

// PipelineRun records one execution of a pipeline stage
type PipelineRun struct {
	ID         string
	Stage      string
	StartedAt  time.Time
	FinishedAt *time.Time
	Status     string
	Detail     string
}

// RunRepository records pipeline stage executions
type RunRepository interface {
	StartRun(ctx context.Context, run *PipelineRun) error
	FinishRun(ctx context.Context, id string, status, detail string, finishedAt time.Time) error
	ListRuns(ctx context.Context, limit int) ([]*PipelineRun, error)
}
