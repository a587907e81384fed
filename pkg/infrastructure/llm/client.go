package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/config"
	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/logger"
)

// Client provides text generation and embeddings from a language model.
type Client interface {
	// Generate sends a prompt and returns the raw text response.
	Generate(ctx context.Context, system, prompt string) (string, error)

	// Embed returns the embedding vector of text.
	Embed(ctx context.Context, text string) ([]float64, error)

	// EmbeddingModel names the model behind Embed.
	EmbeddingModel() string
}

// OllamaClient implements Client using the Ollama HTTP API.
type OllamaClient struct {
	cfg  config.LLMConfig
	http *http.Client
	log  logger.Logger
}

var _ Client = (*OllamaClient)(nil)

// NewOllamaClient creates a Client that talks to an Ollama instance.
func NewOllamaClient(cfg config.LLMConfig, log logger.Logger) *OllamaClient {
	return &OllamaClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
		log: logger.OrNop(log),
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	System  string          `json:"system,omitempty"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Format  string          `json:"format,omitempty"`
	Options generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
}

type embeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (c *OllamaClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	body := generateRequest{
		Model:   c.cfg.Model,
		System:  system,
		Prompt:  prompt,
		Format:  "json",
		Options: generateOptions{Temperature: 0.1},
	}
	var resp generateResponse
	if err := c.call(ctx, "/api/generate", body, &resp); err != nil {
		return "", err
	}
	return resp.Response, nil
}

func (c *OllamaClient) Embed(ctx context.Context, text string) ([]float64, error) {
	var resp embeddingResponse
	if err := c.call(ctx, "/api/embeddings", embeddingRequest{Model: c.cfg.EmbeddingModel, Prompt: text}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", ErrInvalidOutput)
	}
	return resp.Embedding, nil
}

func (c *OllamaClient) EmbeddingModel() string {
	return c.cfg.EmbeddingModel
}

// call posts body to path with retries and decodes the JSON reply into out.
func (c *OllamaClient) call(ctx context.Context, path string, body, out any) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout())
	defer cancel()

	var lastErr error
	attempts := 1 + c.cfg.MaxRetries
	for i := 0; i < attempts; i++ {
		err := c.doRequest(ctx, path, body, out)
		if err == nil {
			c.log.Debugw("llm call", map[string]any{"path": path, "latency_ms": time.Since(start).Milliseconds()})
			return nil
		}
		lastErr = err

		// Don't retry on context cancellation/timeout
		if ctx.Err() != nil {
			break
		}
	}

	c.log.Warnf("llm call to %s failed after %s: %v", path, time.Since(start).Round(time.Millisecond), lastErr)
	if ctx.Err() != nil {
		return ErrTimeout
	}
	if isConnectionError(lastErr) {
		return ErrOllamaUnavailable
	}
	return fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (c *OllamaClient) doRequest(ctx context.Context, path string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func isConnectionError(err error) bool {
	var netErr *net.OpError
	return errors.As(err, &netErr)
}
