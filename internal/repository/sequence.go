package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// SequenceRepository backs the display-id generator with an atomically
// incremented per-day-per-scope counter row. The upsert makes concurrent
// callers serialize on the row; two requests can never observe the same
// value.
type SequenceRepository struct {
	db *sql.DB
}

func NewSequenceRepository(db *sql.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

func (r *SequenceRepository) Next(ctx context.Context, scope, day string) (int64, error) {
	var seq int64
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO daily_sequences (scope, day, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (scope, day) DO UPDATE SET seq = daily_sequences.seq + 1
		RETURNING seq`,
		scope, day,
	).Scan(&seq)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("Next: no sequence row returned")
		}
		return 0, fmt.Errorf("Next: %w", err)
	}
	return seq, nil
}
