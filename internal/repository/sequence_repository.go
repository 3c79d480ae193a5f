package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// SequenceRepository reserves monotonically increasing numbers for
// business-id generation. The increment is a single atomic statement so
// concurrent creations cannot observe the same value.
type SequenceRepository struct {
	db *sqlx.DB
}

// NewSequenceRepository constructs a SequenceRepository.
func NewSequenceRepository(db *sqlx.DB) *SequenceRepository {
	return &SequenceRepository{db: db}
}

// Next reserves and returns the next value of the named sequence,
// creating the sequence at 1 on first use.
func (r *SequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	const query = `INSERT INTO id_sequences (name, value) VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET value = id_sequences.value + 1
        RETURNING value`
	var value int64
	if err := r.db.GetContext(ctx, &value, query, name); err != nil {
		return 0, fmt.Errorf("next sequence %s: %w", name, err)
	}
	return value, nil
}
