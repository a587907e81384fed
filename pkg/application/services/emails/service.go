package emails

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
)

// Service generates distribution center emails and searches them by similarity
type Service struct {
	repo     repositories.EmailRepository
	embedder Embedder
	cfg      config.EmailsConfig
	log      logger.Logger
}

// NewService creates a new email service
func NewService(repo repositories.EmailRepository, embedder Embedder, cfg config.EmailsConfig, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		embedder: embedder,
		cfg:      cfg,
		log:      logger.OrNop(log),
	}
}

// Generate replaces the stored emails with a freshly generated set. The
// vector index is cleared with them.
func (s *Service) Generate(ctx context.Context) (int, error) {
	emails := NewGenerator(s.cfg.Seed).Generate(s.cfg.Count)
	if err := s.repo.ReplaceEmails(ctx, emails); err != nil {
		return 0, fmt.Errorf("failed to store emails: %w", err)
	}
	s.log.Infof("generated %d emails", len(emails))
	return len(emails), nil
}

// Index embeds every stored email that has no vector from the current model
func (s *Service) Index(ctx context.Context) (*dto.EmailIndexResult, error) {
	emails, err := s.repo.GetEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get emails: %w", err)
	}
	existing, err := s.repo.GetEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get email index: %w", err)
	}

	model := s.embedder.Model()
	indexed := make(map[time.Time]bool, len(existing))
	for _, e := range existing {
		if e.Model == model {
			indexed[e.Date.UTC()] = true
		}
	}

	result := &dto.EmailIndexResult{Emails: len(emails), Model: model}
	var batch []entities.EmailEmbedding
	for _, email := range emails {
		if indexed[email.Date.UTC()] {
			result.Skipped++
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vec, err := s.embedder.Embed(ctx, email.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to embed email of %s: %w", email.Date.Format(time.RFC3339), err)
		}
		batch = append(batch, entities.EmailEmbedding{Date: email.Date, Vector: vec, Model: model})
	}

	if len(batch) > 0 {
		if err := s.repo.SaveEmbeddings(ctx, batch); err != nil {
			return nil, fmt.Errorf("failed to store email index: %w", err)
		}
	}
	result.Indexed = len(batch)
	s.log.Infof("indexed %d emails with %s, %d already indexed", result.Indexed, model, result.Skipped)
	return result, nil
}

// Search returns the k emails most similar to query by cosine similarity,
// best first. k <= 0 uses the configured default.
func (s *Service) Search(ctx context.Context, query string, k int) ([]entities.EmailMatch, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query cannot be empty: %w", entities.ErrInvalidArgument)
	}
	if k <= 0 {
		k = s.cfg.TopK
	}

	embeddings, err := s.repo.GetEmbeddings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get email index: %w", err)
	}
	model := s.embedder.Model()
	candidates := embeddings[:0:0]
	for _, e := range embeddings {
		if e.Model == model {
			candidates = append(candidates, e)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("email index for %s: %w", model, repositories.ErrNotFound)
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	emails, err := s.repo.GetEmails(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get emails: %w", err)
	}
	content := make(map[time.Time]string, len(emails))
	for _, e := range emails {
		content[e.Date.UTC()] = e.Content
	}

	matches := make([]entities.EmailMatch, 0, len(candidates))
	for _, e := range candidates {
		text, ok := content[e.Date.UTC()]
		if !ok {
			continue
		}
		matches = append(matches, entities.EmailMatch{
			Date:    e.Date,
			Content: text,
			Score:   cosine(queryVec, e.Vector),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Date.Before(matches[j].Date)
	})
	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

func cosine(a, b []float64) float64 {
	if len(a) != len(b) {
		return 0
	}
	na, nb := floats.Norm(a, 2), floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}
