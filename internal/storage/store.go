package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/celerybridge/celerybridge-go/internal/domain"
)

// Store persists submissions in Postgres (source of truth).
type Store struct{ db *pgxpool.Pool }

func New(db *pgxpool.Pool) *Store { return &Store{db} }

// InsertSubmission creates a pending submission row and returns it.
func (s *Store) InsertSubmission(ctx context.Context, url string, isCompetitor bool) (*domain.Submission, error) {
	id := uuid.NewString()
	row := s.db.QueryRow(ctx, `insert into submissions(id, url, status, is_competitor_product)
values ($1, $2, 'pending', $3)
returning id, url, status, is_competitor_product, created_at, updated_at`,
		id, url, isCompetitor,
	)
	var sub domain.Submission
	if err := row.Scan(&sub.ID, &sub.URL, &sub.Status, &sub.IsCompetitorProduct, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, errors.Wrap(err, "insert submission")
	}
	return &sub, nil
}

// GetSubmission fetches one submission by id.
func (s *Store) GetSubmission(ctx context.Context, id string) (*domain.Submission, error) {
	row := s.db.QueryRow(ctx, `select id, url, status, is_competitor_product, created_at, updated_at
from submissions where id = $1`, id)
	var sub domain.Submission
	if err := row.Scan(&sub.ID, &sub.URL, &sub.Status, &sub.IsCompetitorProduct, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return nil, errors.Wrapf(err, "get submission %s", id)
	}
	return &sub, nil
}

// UpdateStatus flips a submission's status.
func (s *Store) UpdateStatus(ctx context.Context, id string, status domain.Status) error {
	_, err := s.db.Exec(ctx, `update submissions set status = $2, updated_at = now() where id = $1`,
		id, status)
	return errors.Wrapf(err, "update submission %s status", id)
}

// PendingSubmissions returns the newest submissions still waiting for a task,
// capped to limit. The daemon consumes this in small batches.
func (s *Store) PendingSubmissions(ctx context.Context, limit int) ([]domain.Submission, error) {
	rows, err := s.db.Query(ctx, `select id, url, status, is_competitor_product, created_at, updated_at
from submissions where status = 'pending'
order by created_at desc limit $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list pending submissions")
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		if err := rows.Scan(&sub.ID, &sub.URL, &sub.Status, &sub.IsCompetitorProduct, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, errors.Wrap(err, "scan pending submission")
		}
		out = append(out, sub)
	}
	return out, errors.Wrap(rows.Err(), "list pending submissions")
}
