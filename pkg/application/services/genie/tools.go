package genie

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
)

// ErrUnknownTool is returned when a tool name is not registered
var ErrUnknownTool = errors.New("unknown tool")

// Tool names a query function exposed to agents
type Tool string

const (
	ToolRawFromProduct      Tool = "raw_from_product"
	ToolProductFromRaw      Tool = "product_from_raw"
	ToolRevenueRisk         Tool = "revenue_risk"
	ToolLookupProductDemand Tool = "lookup_product_demand"
	ToolQueryEmails         Tool = "query_unstructured_emails"
	ToolAsk                 Tool = "ask_genie_pharma_gsc"
)

// BOMQueries answers bill of materials questions
type BOMQueries interface {
	Kind(ctx context.Context, material entities.MaterialID) (entities.MaterialKind, error)
	RawFromProduct(ctx context.Context, product entities.MaterialID) ([]entities.MaterialUsage, error)
	ProductFromRaw(ctx context.Context, raw entities.MaterialID) ([]entities.MaterialUsage, error)
}

// DemandQueries answers demand and revenue questions
type DemandQueries interface {
	LookupProductDemand(ctx context.Context, product entities.MaterialID, wholesaler string) (*dto.ProductDemand, error)
	RevenueRisk(ctx context.Context, raw entities.MaterialID, shortfall entities.Quantity) (*entities.RevenueRisk, error)
}

// EmailSearch finds emails similar to a query
type EmailSearch interface {
	Search(ctx context.Context, query string, k int) ([]entities.EmailMatch, error)
}

type argSpec struct {
	name     string
	required bool
}

// toolArgs lists the arguments every callable tool accepts
var toolArgs = map[Tool][]argSpec{
	ToolRawFromProduct:      {{name: "product", required: true}},
	ToolProductFromRaw:      {{name: "raw", required: true}},
	ToolRevenueRisk:         {{name: "raw", required: true}, {name: "shortfall", required: true}},
	ToolLookupProductDemand: {{name: "product", required: true}, {name: "wholesaler"}},
	ToolQueryEmails:         {{name: "query", required: true}, {name: "k"}},
}

// Toolbox exposes the query functions and records a metric for every call
type Toolbox struct {
	bom     BOMQueries
	demand  DemandQueries
	emails  EmailSearch
	metrics metrics.Sink
}

// NewToolbox creates a toolbox over the query services
func NewToolbox(bom BOMQueries, demand DemandQueries, emails EmailSearch, sink metrics.Sink) *Toolbox {
	return &Toolbox{bom: bom, demand: demand, emails: emails, metrics: metrics.OrNop(sink)}
}

// Kind classifies a material without recording a query
func (t *Toolbox) Kind(ctx context.Context, material entities.MaterialID) (entities.MaterialKind, error) {
	return t.bom.Kind(ctx, material)
}

func (t *Toolbox) RawFromProduct(ctx context.Context, product entities.MaterialID) ([]entities.MaterialUsage, error) {
	usage, err := t.bom.RawFromProduct(ctx, product)
	t.metrics.RecordQuery(string(ToolRawFromProduct), err)
	return usage, err
}

func (t *Toolbox) ProductFromRaw(ctx context.Context, raw entities.MaterialID) ([]entities.MaterialUsage, error) {
	usage, err := t.bom.ProductFromRaw(ctx, raw)
	t.metrics.RecordQuery(string(ToolProductFromRaw), err)
	return usage, err
}

func (t *Toolbox) RevenueRisk(ctx context.Context, raw entities.MaterialID, shortfall entities.Quantity) (*entities.RevenueRisk, error) {
	risk, err := t.demand.RevenueRisk(ctx, raw, shortfall)
	t.metrics.RecordQuery(string(ToolRevenueRisk), err)
	return risk, err
}

func (t *Toolbox) LookupProductDemand(ctx context.Context, product entities.MaterialID, wholesaler string) (*dto.ProductDemand, error) {
	demand, err := t.demand.LookupProductDemand(ctx, product, wholesaler)
	t.metrics.RecordQuery(string(ToolLookupProductDemand), err)
	return demand, err
}

func (t *Toolbox) QueryEmails(ctx context.Context, query string, k int) ([]entities.EmailMatch, error) {
	matches, err := t.emails.Search(ctx, query, k)
	t.metrics.RecordQuery(string(ToolQueryEmails), err)
	return matches, err
}

// Call runs tool with string arguments
func (t *Toolbox) Call(ctx context.Context, tool Tool, args map[string]string) (interface{}, error) {
	if err := validateArgs(tool, args); err != nil {
		return nil, err
	}

	switch tool {
	case ToolRawFromProduct:
		return t.RawFromProduct(ctx, entities.MaterialID(args["product"]))
	case ToolProductFromRaw:
		return t.ProductFromRaw(ctx, entities.MaterialID(args["raw"]))
	case ToolRevenueRisk:
		shortfall, err := strconv.ParseInt(args["shortfall"], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("shortfall %q is not an integer: %w", args["shortfall"], entities.ErrInvalidArgument)
		}
		return t.RevenueRisk(ctx, entities.MaterialID(args["raw"]), entities.Quantity(shortfall))
	case ToolLookupProductDemand:
		return t.LookupProductDemand(ctx, entities.MaterialID(args["product"]), args["wholesaler"])
	case ToolQueryEmails:
		k := 0
		if raw := args["k"]; raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("k %q is not an integer: %w", raw, entities.ErrInvalidArgument)
			}
			k = n
		}
		return t.QueryEmails(ctx, args["query"], k)
	}
	return nil, fmt.Errorf("%s: %w", tool, ErrUnknownTool)
}

func validateArgs(tool Tool, args map[string]string) error {
	params, ok := toolArgs[tool]
	if !ok {
		return fmt.Errorf("%s: %w", tool, ErrUnknownTool)
	}
	for _, p := range params {
		if p.required && args[p.name] == "" {
			return fmt.Errorf("%s requires %s: %w", tool, p.name, entities.ErrInvalidArgument)
		}
	}
	return nil
}
