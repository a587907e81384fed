package genie

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lararachidi/agent-supply-chain/pkg/application/dto"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/llm"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/metrics"
)

// Answer sources
const (
	SourceLLM   = "llm"
	SourceRules = "rules"
)

var (
	materialRe   = regexp.MustCompile(`\b[a-z][a-z0-9]*(?:_[a-z0-9]+)*_[0-9]+\b`)
	wholesalerRe = regexp.MustCompile(`\bwholesaler[_ ]([0-9]+)\b`)
	numberRe     = regexp.MustCompile(`\b[0-9]+\b`)

	// network node names that match materialRe
	nodePrefixes = []string{"wholesaler_", "distribution_center_", "plant_"}
)

// Service answers natural language questions by picking and running one
// query function
type Service struct {
	tools   *Toolbox
	client  llm.Client
	log     logger.Logger
	metrics metrics.Sink
}

// NewService creates a genie. A nil client routes every question with the
// keyword rules.
func NewService(tools *Toolbox, client llm.Client, log logger.Logger, sink metrics.Sink) *Service {
	return &Service{
		tools:   tools,
		client:  client,
		log:     logger.OrNop(log),
		metrics: metrics.OrNop(sink),
	}
}

// toolChoice is the JSON the model must produce
type toolChoice struct {
	Tool      string                 `json:"tool"`
	Arguments map[string]interface{} `json:"arguments"`
}

// Ask picks a query function for question, runs it and returns its result
func (s *Service) Ask(ctx context.Context, question string) (*dto.GenieAnswer, error) {
	answer, err := s.ask(ctx, question)
	s.metrics.RecordQuery(string(ToolAsk), err)
	return answer, err
}

func (s *Service) ask(ctx context.Context, question string) (*dto.GenieAnswer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty: %w", entities.ErrInvalidArgument)
	}

	answer := &dto.GenieAnswer{Question: question}
	if s.client != nil {
		tool, args, err := s.chooseWithLLM(ctx, question)
		if err == nil {
			answer.Tool, answer.Arguments, answer.Source = string(tool), args, SourceLLM
		} else {
			s.log.Warnf("llm tool choice failed, using keyword rules: %v", err)
		}
	}
	if answer.Source == "" {
		tool, args := s.route(ctx, question)
		answer.Tool, answer.Arguments, answer.Source = string(tool), args, SourceRules
	}
	s.log.Debugw("genie routed question", map[string]any{"tool": answer.Tool, "source": answer.Source})

	result, err := s.tools.Call(ctx, Tool(answer.Tool), answer.Arguments)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", answer.Tool, err)
	}
	answer.Result = result
	return answer, nil
}

func (s *Service) chooseWithLLM(ctx context.Context, question string) (Tool, map[string]string, error) {
	raw, err := s.client.Generate(ctx, toolSystemPrompt, question)
	if err != nil {
		return "", nil, err
	}
	choice, err := llm.ExtractJSON[toolChoice](raw, validateChoice)
	if err != nil {
		return "", nil, err
	}
	return Tool(choice.Tool), stringArgs(choice.Arguments), nil
}

func validateChoice(c toolChoice) error {
	return validateArgs(Tool(c.Tool), stringArgs(c.Arguments))
}

func stringArgs(in map[string]interface{}) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		switch val := v.(type) {
		case nil:
		case string:
			out[k] = val
		case float64:
			out[k] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[k] = fmt.Sprint(val)
		}
	}
	return out
}

// route picks a tool from keywords and identifiers in question
func (s *Service) route(ctx context.Context, question string) (Tool, map[string]string) {
	text := strings.ToLower(question)

	var wholesaler string
	if m := wholesalerRe.FindStringSubmatch(text); m != nil {
		wholesaler = "Wholesaler_" + m[1]
	}
	stripped := wholesalerRe.ReplaceAllString(text, " ")

	var material string
	for _, candidate := range materialRe.FindAllString(stripped, -1) {
		if !isNetworkNode(candidate) {
			material = candidate
			break
		}
	}
	stripped = materialRe.ReplaceAllString(stripped, " ")
	number := numberRe.FindString(stripped)

	if material != "" {
		if number != "" && containsAny(text, "revenue", "risk", "shortfall", "short") {
			return ToolRevenueRisk, map[string]string{"raw": material, "shortfall": number}
		}
		if containsAny(text, "demand", "forecast", "sales", "sold") {
			args := map[string]string{"product": material}
			if wholesaler != "" {
				args["wholesaler"] = wholesaler
			}
			return ToolLookupProductDemand, args
		}
		if kind, err := s.tools.Kind(ctx, entities.MaterialID(material)); err == nil {
			if kind == entities.RawMaterial {
				return ToolProductFromRaw, map[string]string{"raw": material}
			}
			return ToolRawFromProduct, map[string]string{"product": material}
		}
	}
	return ToolQueryEmails, map[string]string{"query": question}
}

func isNetworkNode(id string) bool {
	for _, prefix := range nodePrefixes {
		if strings.HasPrefix(id, prefix) {
			return true
		}
	}
	return false
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
