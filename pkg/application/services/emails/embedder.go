package emails

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"

	"gonum.org/v1/gonum/floats"

	"github.com/lararachidi/agent-supply-chain/pkg/infrastructure/llm"
)

// Embedder turns text into a vector for similarity search
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	// Model identifies the vector space. Vectors from different models are
	// never compared.
	Model() string
}

// HashingEmbedder projects lowercase word and word-pair tokens onto a fixed
// number of buckets and L2-normalizes the counts
type HashingEmbedder struct {
	dims int
}

var _ Embedder = (*HashingEmbedder)(nil)

// NewHashingEmbedder creates a feature hashing embedder with dims buckets
func NewHashingEmbedder(dims int) (*HashingEmbedder, error) {
	if dims < 8 {
		return nil, fmt.Errorf("dimensions must be at least 8, got %d", dims)
	}
	return &HashingEmbedder{dims: dims}, nil
}

func (e *HashingEmbedder) Model() string {
	return fmt.Sprintf("hashing-%d", e.dims)
}

func (e *HashingEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dims)
	tokens := tokenize(text)
	for i, tok := range tokens {
		e.add(vec, tok)
		if i > 0 {
			e.add(vec, tokens[i-1]+" "+tok)
		}
	}
	if norm := floats.Norm(vec, 2); norm > 0 {
		floats.Scale(1/norm, vec)
	}
	return vec, nil
}

// add increments the bucket of token, with a sign taken from a second hash
// bit so that collisions cancel out on average
func (e *HashingEmbedder) add(vec []float64, token string) {
	h := fnv.New64a()
	h.Write([]byte(token))
	sum := h.Sum64()
	idx := int(sum % uint64(e.dims))
	if sum>>63 == 1 {
		vec[idx]--
	} else {
		vec[idx]++
	}
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// LLMEmbedder delegates to the embeddings endpoint of a language model
type LLMEmbedder struct {
	client llm.Client
}

var _ Embedder = (*LLMEmbedder)(nil)

// NewLLMEmbedder wraps client
func NewLLMEmbedder(client llm.Client) *LLMEmbedder {
	return &LLMEmbedder{client: client}
}

func (e *LLMEmbedder) Model() string {
	return e.client.EmbeddingModel()
}

func (e *LLMEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	vec, err := e.client.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	return vec, nil
}
