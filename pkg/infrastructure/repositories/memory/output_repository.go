package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// OutputRepository keeps the derived tables of a pipeline run in memory
type OutputRepository struct {
	mu         sync.RWMutex
	forecasts  []entities.ForecastPoint
	dcDemand   []entities.DCDemand
	raw        []entities.RawMaterialRequirement
	shipments  []entities.ShipmentRecommendation
	emails     []entities.Email
	embeddings map[time.Time]entities.EmailEmbedding
	runs       []*repositories.PipelineRun
}

// NewOutputRepository creates an empty in-memory output repository
func NewOutputRepository() *OutputRepository {
	return &OutputRepository{embeddings: make(map[time.Time]entities.EmailEmbedding)}
}

// Verify interface compliance
var (
	_ repositories.ForecastRepository    = (*OutputRepository)(nil)
	_ repositories.RawMaterialRepository = (*OutputRepository)(nil)
	_ repositories.ShipmentRepository    = (*OutputRepository)(nil)
	_ repositories.EmailRepository       = (*OutputRepository)(nil)
	_ repositories.RunRepository         = (*OutputRepository)(nil)
)

func (r *OutputRepository) ReplaceForecasts(ctx context.Context, points []entities.ForecastPoint, dcDemand []entities.DCDemand) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forecasts = append([]entities.ForecastPoint(nil), points...)
	r.dcDemand = append([]entities.DCDemand(nil), dcDemand...)
	return nil
}

func (r *OutputRepository) GetForecasts(ctx context.Context, product entities.MaterialID) ([]entities.ForecastPoint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entities.ForecastPoint
	for _, p := range r.forecasts {
		if p.Product == product {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *OutputRepository) GetDCDemand(ctx context.Context) ([]entities.DCDemand, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.DCDemand(nil), r.dcDemand...), nil
}

func (r *OutputRepository) ReplaceRawMaterialDemand(ctx context.Context, reqs []entities.RawMaterialRequirement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.raw = append([]entities.RawMaterialRequirement(nil), reqs...)
	return nil
}

func (r *OutputRepository) GetRawMaterialDemand(ctx context.Context) ([]entities.RawMaterialRequirement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.RawMaterialRequirement(nil), r.raw...), nil
}

func (r *OutputRepository) ReplaceShipments(ctx context.Context, recs []entities.ShipmentRecommendation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shipments = append([]entities.ShipmentRecommendation(nil), recs...)
	return nil
}

func (r *OutputRepository) GetShipments(ctx context.Context) ([]entities.ShipmentRecommendation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.ShipmentRecommendation(nil), r.shipments...), nil
}

func (r *OutputRepository) ReplaceEmails(ctx context.Context, emails []entities.Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append([]entities.Email(nil), emails...)
	r.embeddings = make(map[time.Time]entities.EmailEmbedding)
	return nil
}

func (r *OutputRepository) GetEmails(ctx context.Context) ([]entities.Email, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]entities.Email(nil), r.emails...), nil
}

func (r *OutputRepository) SaveEmbeddings(ctx context.Context, embeddings []entities.EmailEmbedding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range embeddings {
		r.embeddings[e.Date] = e
	}
	return nil
}

func (r *OutputRepository) GetEmbeddings(ctx context.Context) ([]entities.EmailEmbedding, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.EmailEmbedding, 0, len(r.embeddings))
	for _, e := range r.embeddings {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *OutputRepository) StartRun(ctx context.Context, run *repositories.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *run
	r.runs = append(r.runs, &cp)
	return nil
}

func (r *OutputRepository) FinishRun(ctx context.Context, id string, status, detail string, finishedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID == id {
			run.Status = status
			run.Detail = detail
			run.FinishedAt = &finishedAt
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *OutputRepository) ListRuns(ctx context.Context, limit int) ([]*repositories.PipelineRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*repositories.PipelineRun, 0, len(r.runs))
	for i := len(r.runs) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		cp := *r.runs[i]
		out = append(out, &cp)
	}
	return out, nil
}
