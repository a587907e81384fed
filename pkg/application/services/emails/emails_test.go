package emails

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/repositories/memory"
)

func TestGenerator_Deterministic(t *testing.T) {
	a := NewGenerator(42).Generate(50)
	b := NewGenerator(42).Generate(50)
	assert.Equal(t, a, b)

	c := NewGenerator(7).Generate(50)
	assert.NotEqual(t, a, c)
}

func TestGenerator_Emails(t *testing.T) {
	emails := NewGenerator(42).Generate(200)
	require.Len(t, emails, 200)

	seen := make(map[time.Time]bool)
	for i, e := range emails {
		assert.False(t, seen[e.Date], "duplicate date %s", e.Date)
		seen[e.Date] = true
		assert.False(t, e.Date.Before(windowStart))
		assert.False(t, e.Date.After(windowEnd))
		if i > 0 {
			assert.False(t, e.Date.Before(emails[i-1].Date))
		}

		assert.True(t, strings.HasPrefix(e.Content, "Subject: Delivery Delays: Distribution Center "))
		assert.Contains(t, e.Content, "Date: "+e.Date.Format("2006-01-02T15:04:05-07:00"))
		assert.Contains(t, e.Content, "units of syringe_1")
		assert.True(t, strings.HasSuffix(e.Content, "Supply Chain Optimization Manager"))
		assert.NotContains(t, e.Content, "{")
	}
}

func TestHashingEmbedder(t *testing.T) {
	_, err := NewHashingEmbedder(4)
	require.Error(t, err)

	e, err := NewHashingEmbedder(64)
	require.NoError(t, err)
	assert.Equal(t, "hashing-64", e.Model())

	v, err := e.Embed(context.Background(), "Route 33C saves two days")
	require.NoError(t, err)
	require.Len(t, v, 64)
	assert.InDelta(t, 1.0, floats.Norm(v, 2), 1e-9)

	same, err := e.Embed(context.Background(), "route 33c SAVES two days!")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cosine(v, same), 1e-9)

	empty, err := e.Embed(context.Background(), "  ")
	require.NoError(t, err)
	assert.Zero(t, floats.Norm(empty, 2))
}

func newTestService(t *testing.T) (*Service, *memory.OutputRepository) {
	t.Helper()
	embedder, err := NewHashingEmbedder(256)
	require.NoError(t, err)
	repo := memory.NewOutputRepository()
	cfg := config.EmailsConfig{Count: 20, Seed: 42, Embedder: "hashing", Dimensions: 256, TopK: 2}
	return NewService(repo, embedder, cfg, nil), repo
}

func TestService_GenerateAndIndex(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	n, err := svc.Generate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, n)

	result, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Indexed)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, "hashing-256", result.Model)

	again, err := svc.Index(ctx)
	require.NoError(t, err)
	assert.Zero(t, again.Indexed)
	assert.Equal(t, 20, again.Skipped)

	embeddings, err := repo.GetEmbeddings(ctx)
	require.NoError(t, err)
	assert.Len(t, embeddings, 20)
}

func TestService_Search(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	base := time.Date(2023, 1, 2, 9, 0, 0, 0, time.UTC)
	require.NoError(t, repo.ReplaceEmails(ctx, []entities.Email{
		{Date: base, Content: "pallet of gloves delayed at customs"},
		{Date: base.Add(time.Hour), Content: "syringe_1 stockout at Distribution Center 3"},
		{Date: base.Add(2 * time.Hour), Content: "invoice for vial crimper_2"},
	}))
	_, err := svc.Index(ctx)
	require.NoError(t, err)

	matches, err := svc.Search(ctx, "syringe_1 stockout", 0)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, base.Add(time.Hour), matches[0].Date)
	assert.Greater(t, matches[0].Score, matches[1].Score)

	all, err := svc.Search(ctx, "syringe_1 stockout", 10)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestService_SearchErrors(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Search(ctx, "delays", 3)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	_, err = svc.Search(ctx, " ", 3)
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

type fakeClient struct {
	vec []float64
	err error
}

func (f *fakeClient) Generate(context.Context, string, string) (string, error) { return "", nil }
func (f *fakeClient) Embed(context.Context, string) ([]float64, error)        { return f.vec, f.err }
func (f *fakeClient) EmbeddingModel() string                                  { return "nomic-embed-text" }

func TestLLMEmbedder(t *testing.T) {
	e := NewLLMEmbedder(&fakeClient{vec: []float64{1, 0}})
	assert.Equal(t, "nomic-embed-text", e.Model())
	v, err := e.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, v)

	boom := errors.New("boom")
	_, err = NewLLMEmbedder(&fakeClient{err: boom}).Embed(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}
