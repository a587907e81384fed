package repositories

import (
	"context"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
)

// EmailRepository stores unstructured emails and their vector index
type EmailRepository interface {
	ReplaceEmails(ctx context.Context, emails []entities.Email) error
	GetEmails(ctx context.Context) ([]entities.Email, error)

	SaveEmbeddings(ctx context.Context, embeddings []entities.EmailEmbedding) error
	GetEmbeddings(ctx context.Context) ([]entities.EmailEmbedding, error)
}
