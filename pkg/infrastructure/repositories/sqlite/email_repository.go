package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lararachidi/agent-supply-chain/pkg/domain/entities"
	"github.com/lararachidi/agent-supply-chain/pkg/domain/repositories"
)

// EmailRepo stores the email table and its vector index
type EmailRepo struct {
	db *sql.DB
}

// NewEmailRepo creates a new EmailRepo.
func NewEmailRepo(db *sql.DB) *EmailRepo {
	return &EmailRepo{db: db}
}

var _ repositories.EmailRepository = (*EmailRepo)(nil)

// ReplaceEmails overwrites the email table and drops the now stale index
func (r *EmailRepo) ReplaceEmails(ctx context.Context, emails []entities.Email) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM email_content_index`); err != nil {
			return fmt.Errorf("clearing email index: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM emails_distribution_center_to_wholesaler`); err != nil {
			return fmt.Errorf("clearing emails: %w", err)
		}
		for _, e := range emails {
			if _, err := tx.ExecContext(ctx, `INSERT INTO emails_distribution_center_to_wholesaler (date, content)
				VALUES (?, ?)`, e.Date.UTC().Format(time.RFC3339), e.Content); err != nil {
				return fmt.Errorf("inserting email %s: %w", e.Date.Format(time.RFC3339), err)
			}
		}
		return nil
	})
}

func (r *EmailRepo) GetEmails(ctx context.Context) ([]entities.Email, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, content FROM emails_distribution_center_to_wholesaler ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("querying emails: %w", err)
	}
	defer rows.Close()

	var out []entities.Email
	for rows.Next() {
		var (
			e    entities.Email
			date string
		)
		if err := rows.Scan(&date, &e.Content); err != nil {
			return nil, fmt.Errorf("scanning email: %w", err)
		}
		if e.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("parsing email date %q: %w", date, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EmailRepo) SaveEmbeddings(ctx context.Context, embeddings []entities.EmailEmbedding) error {
	return withinTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, emb := range embeddings {
			vec, err := json.Marshal(emb.Vector)
			if err != nil {
				return fmt.Errorf("encoding vector: %w", err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO email_content_index (date, vector, model)
				VALUES (?, ?, ?)`, emb.Date.UTC().Format(time.RFC3339), string(vec), emb.Model); err != nil {
				return fmt.Errorf("inserting embedding %s: %w", emb.Date.Format(time.RFC3339), err)
			}
		}
		return nil
	})
}

func (r *EmailRepo) GetEmbeddings(ctx context.Context) ([]entities.EmailEmbedding, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT date, vector, model FROM email_content_index ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("querying email index: %w", err)
	}
	defer rows.Close()

	var out []entities.EmailEmbedding
	for rows.Next() {
		var (
			emb       entities.EmailEmbedding
			date, vec string
		)
		if err := rows.Scan(&date, &vec, &emb.Model); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		if emb.Date, err = time.Parse(time.RFC3339, date); err != nil {
			return nil, fmt.Errorf("parsing embedding date %q: %w", date, err)
		}
		if err := json.Unmarshal([]byte(vec), &emb.Vector); err != nil {
			return nil, fmt.Errorf("decoding vector for %s: %w", date, err)
		}
		out = append(out, emb)
	}
	return out, rows.Err()
}
