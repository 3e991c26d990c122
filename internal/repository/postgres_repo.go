package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/epeers/portools/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSummaryRepository stores derived views as JSONB rows
type PostgresSummaryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSummaryRepository creates a new PostgresSummaryRepository
func NewPostgresSummaryRepository(pool *pgxpool.Pool) *PostgresSummaryRepository {
	return &PostgresSummaryRepository{pool: pool}
}

// PutSummary overwrites the row for (id, view)
func (r *PostgresSummaryRepository) PutSummary(ctx context.Context, doc *models.SummaryDocument) error {
	body, err := json.Marshal(doc.GroupToSummary)
	if err != nil {
		return fmt.Errorf("failed to encode %s summary for portfolio %d: %w", doc.View, doc.ID, err)
	}
	query := `
		INSERT INTO portfolio_summary (portfolio_id, view_kind, group_to_summary, updated)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (portfolio_id, view_kind)
		DO UPDATE SET group_to_summary = EXCLUDED.group_to_summary, updated = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, int64(doc.ID), string(doc.View), body); err != nil {
		return fmt.Errorf("failed to put %s summary for portfolio %d: %w", doc.View, doc.ID, err)
	}
	return nil
}

// GetSummary retrieves one derived view
func (r *PostgresSummaryRepository) GetSummary(ctx context.Context, id uint32, view models.ViewKind) (*models.SummaryDocument, error) {
	query := `
		SELECT group_to_summary
		FROM portfolio_summary
		WHERE portfolio_id = $1 AND view_kind = $2
	`
	var body []byte
	err := r.pool.QueryRow(ctx, query, int64(id), string(view)).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSummaryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s summary for portfolio %d: %w", view, id, err)
	}
	doc := &models.SummaryDocument{ID: id, View: view}
	if err := json.Unmarshal(body, &doc.GroupToSummary); err != nil {
		return nil, fmt.Errorf("failed to decode %s summary for portfolio %d: %w", view, id, err)
	}
	return doc, nil
}

// PostgresCheckpointRepository stores resume tokens. Writes run with
// synchronous_commit on so a token is durable before PutCheckpoint returns.
type PostgresCheckpointRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCheckpointRepository creates a new PostgresCheckpointRepository
func NewPostgresCheckpointRepository(pool *pgxpool.Pool) *PostgresCheckpointRepository {
	return &PostgresCheckpointRepository{pool: pool}
}

// GetCheckpoint returns nil when the consumer has never stored a token
func (r *PostgresCheckpointRepository) GetCheckpoint(ctx context.Context, consumerID string) (models.ResumeToken, error) {
	query := `SELECT resume_token FROM stream_checkpoint WHERE consumer_id = $1`
	var token []byte
	err := r.pool.QueryRow(ctx, query, consumerID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checkpoint for %s: %w", consumerID, err)
	}
	if len(token) == 0 {
		return nil, nil
	}
	return models.ResumeToken(token), nil
}

// PutCheckpoint upserts the consumer's token
func (r *PostgresCheckpointRepository) PutCheckpoint(ctx context.Context, consumerID string, token models.ResumeToken) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SET LOCAL synchronous_commit TO on`); err != nil {
		return fmt.Errorf("failed to set synchronous_commit: %w", err)
	}
	query := `
		INSERT INTO stream_checkpoint (consumer_id, resume_token, updated)
		VALUES ($1, $2, NOW())
		ON CONFLICT (consumer_id)
		DO UPDATE SET resume_token = EXCLUDED.resume_token, updated = NOW()
	`
	if _, err := tx.Exec(ctx, query, consumerID, []byte(token)); err != nil {
		return fmt.Errorf("failed to put checkpoint for %s: %w", consumerID, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit checkpoint for %s: %w", consumerID, err)
	}
	return nil
}

// MigratePostgres creates the summary and checkpoint tables if they do not exist
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS portfolio_summary (
			portfolio_id     BIGINT      NOT NULL,
			view_kind        TEXT        NOT NULL,
			group_to_summary JSONB       NOT NULL,
			updated          TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (portfolio_id, view_kind)
		)`,
		`CREATE TABLE IF NOT EXISTS stream_checkpoint (
			consumer_id  TEXT PRIMARY KEY,
			resume_token BYTEA,
			updated      TIMESTAMPTZ NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}
