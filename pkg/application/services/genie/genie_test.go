package genie

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/llm"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
)

type fakeBOM struct {
	kinds map[entities.MaterialID]entities.MaterialKind
}

func (f *fakeBOM) Kind(_ context.Context, m entities.MaterialID) (entities.MaterialKind, error) {
	k, ok := f.kinds[m]
	if !ok {
		return entities.FinishedProduct, repositories.ErrNotFound
	}
	return k, nil
}

func (f *fakeBOM) RawFromProduct(_ context.Context, p entities.MaterialID) ([]entities.MaterialUsage, error) {
	return []entities.MaterialUsage{{Product: p, Raw: "raw_1", QtyPer: 6}}, nil
}

func (f *fakeBOM) ProductFromRaw(_ context.Context, r entities.MaterialID) ([]entities.MaterialUsage, error) {
	return []entities.MaterialUsage{{Product: "syringe_1", Raw: r, QtyPer: 6}}, nil
}

type fakeDemand struct{}

func (fakeDemand) LookupProductDemand(_ context.Context, p entities.MaterialID, w string) (*dto.ProductDemand, error) {
	return &dto.ProductDemand{Product: p, Wholesaler: w}, nil
}

func (fakeDemand) RevenueRisk(_ context.Context, r entities.MaterialID, s entities.Quantity) (*entities.RevenueRisk, error) {
	if s <= 0 {
		return nil, entities.ErrInvalidArgument
	}
	return &entities.RevenueRisk{Raw: r, Shortfall: s, MaxExposure: decimal.NewFromInt(10)}, nil
}

type fakeEmails struct {
	lastQuery string
	lastK     int
}

func (f *fakeEmails) Search(_ context.Context, q string, k int) ([]entities.EmailMatch, error) {
	f.lastQuery, f.lastK = q, k
	return []entities.EmailMatch{{Content: "delays", Score: 0.9}}, nil
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Generate(context.Context, string, string) (string, error) {
	f.calls++
	return f.response, f.err
}
func (f *fakeLLM) Embed(context.Context, string) ([]float64, error) { return nil, nil }
func (f *fakeLLM) EmbeddingModel() string                           { return "test" }

func newToolbox(sink metrics.Sink) (*Toolbox, *fakeEmails) {
	bom := &fakeBOM{kinds: map[entities.MaterialID]entities.MaterialKind{
		"syringe_1":   entities.FinishedProduct,
		"component_4": entities.Intermediate,
		"raw_3":       entities.RawMaterial,
	}}
	emails := &fakeEmails{}
	return NewToolbox(bom, fakeDemand{}, emails, sink), emails
}

func TestService_AskRules(t *testing.T) {
	tools, _ := newToolbox(nil)
	svc := NewService(tools, nil, nil, nil)

	tests := []struct {
		question string
		tool     Tool
		args     map[string]string
	}{
		{"What raw materials go into syringe_1?", ToolRawFromProduct, map[string]string{"product": "syringe_1"}},
		{"Which products use Raw_3?", ToolProductFromRaw, map[string]string{"raw": "raw_3"}},
		{"What does component_4 need?", ToolRawFromProduct, map[string]string{"product": "component_4"}},
		{"Revenue risk if we are short 500 units of raw_3", ToolRevenueRisk, map[string]string{"raw": "raw_3", "shortfall": "500"}},
		{"Show demand for syringe_1 at Wholesaler 12", ToolLookupProductDemand, map[string]string{"product": "syringe_1", "wholesaler": "Wholesaler_12"}},
		{"forecast of syringe_1", ToolLookupProductDemand, map[string]string{"product": "syringe_1"}},
		{"Any delays reported at Distribution_Center_2?", ToolQueryEmails, map[string]string{"query": "Any delays reported at Distribution_Center_2?"}},
		{"Tell me about unknown_9", ToolQueryEmails, map[string]string{"query": "Tell me about unknown_9"}},
	}
	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			answer, err := svc.Ask(context.Background(), tt.question)
			require.NoError(t, err)
			assert.Equal(t, string(tt.tool), answer.Tool)
			assert.Equal(t, tt.args, answer.Arguments)
			assert.Equal(t, SourceRules, answer.Source)
			assert.NotNil(t, answer.Result)
		})
	}
}

func TestService_AskLLM(t *testing.T) {
	tools, emails := newToolbox(nil)
	client := &fakeLLM{response: "```json\n{\"tool\": \"query_unstructured_emails\", \"arguments\": {\"query\": \"route 33C\", \"k\": 3}}\n```"}
	svc := NewService(tools, client, nil, nil)

	answer, err := svc.Ask(context.Background(), "which emails mention route 33C?")
	require.NoError(t, err)
	assert.Equal(t, SourceLLM, answer.Source)
	assert.Equal(t, string(ToolQueryEmails), answer.Tool)
	assert.Equal(t, "route 33C", emails.lastQuery)
	assert.Equal(t, 3, emails.lastK)
}

func TestService_AskFallsBackWhenLLMFails(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeLLM
	}{
		{"unavailable", &fakeLLM{err: llm.ErrOllamaUnavailable}},
		{"not json", &fakeLLM{response: "I think product_from_raw"}},
		{"unknown tool", &fakeLLM{response: `{"tool": "drop_tables", "arguments": {}}`}},
		{"missing argument", &fakeLLM{response: `{"tool": "revenue_risk", "arguments": {"raw": "raw_3"}}`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tools, _ := newToolbox(nil)
			svc := NewService(tools, tt.client, nil, nil)

			answer, err := svc.Ask(context.Background(), "which products use raw_3")
			require.NoError(t, err)
			assert.Equal(t, 1, tt.client.calls)
			assert.Equal(t, SourceRules, answer.Source)
			assert.Equal(t, string(ToolProductFromRaw), answer.Tool)
		})
	}
}

func TestService_AskEmptyQuestion(t *testing.T) {
	tools, _ := newToolbox(nil)
	_, err := NewService(tools, nil, nil, nil).Ask(context.Background(), "   ")
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)
}

func TestToolbox_Call(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSink(reg)
	require.NoError(t, err)
	tools, _ := newToolbox(sink)
	ctx := context.Background()

	result, err := tools.Call(ctx, ToolRevenueRisk, map[string]string{"raw": "raw_3", "shortfall": "40"})
	require.NoError(t, err)
	risk, ok := result.(*entities.RevenueRisk)
	require.True(t, ok)
	assert.Equal(t, entities.Quantity(40), risk.Shortfall)

	_, err = tools.Call(ctx, ToolRevenueRisk, map[string]string{"raw": "raw_3", "shortfall": "lots"})
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, err = tools.Call(ctx, ToolRevenueRisk, map[string]string{"raw": "raw_3", "shortfall": "-2"})
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, err = tools.Call(ctx, ToolRawFromProduct, map[string]string{})
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	_, err = tools.Call(ctx, Tool("drop_tables"), nil)
	assert.ErrorIs(t, err, ErrUnknownTool)

	_, err = tools.Call(ctx, ToolQueryEmails, map[string]string{"query": "delays", "k": "x"})
	assert.ErrorIs(t, err, entities.ErrInvalidArgument)

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "supplychain_query_functions_total"))
}

func TestStringArgs(t *testing.T) {
	out := stringArgs(map[string]interface{}{"shortfall": float64(500), "raw": "raw_3", "k": nil, "flag": true})
	assert.Equal(t, map[string]string{"shortfall": "500", "raw": "raw_3", "flag": "true"}, out)
}
