package database

import (
	"context"
	"fmt"

	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

// DistanceRepository persists DTW distances between a reference company and
// every other company.
type DistanceRepository struct {
	pool DatabasePool
}

func NewDistanceRepository(pool DatabasePool) *DistanceRepository {
	return &DistanceRepository{pool: pool}
}

func (r *DistanceRepository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS series_distance (
			reference VARCHAR(50) NOT NULL,
			symbol VARCHAR(50) NOT NULL,
			distance FLOAT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (reference, symbol)
		)`
	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to ensure series_distance schema: %w", err)
	}
	return nil
}

func (r *DistanceRepository) Upsert(ctx context.Context, reference, symbol string, distance float64) error {
	query := `
		INSERT INTO series_distance (reference, symbol, distance, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (reference, symbol) DO UPDATE
		SET distance = EXCLUDED.distance,
			updated_at = NOW()`

	if _, err := r.pool.Exec(ctx, query, reference, symbol, distance); err != nil {
		return fmt.Errorf("failed to upsert distance %s->%s: %w", reference, symbol, err)
	}
	return nil
}

// Nearest returns the companies closest to reference, excluding itself.
func (r *DistanceRepository) Nearest(ctx context.Context, reference string, limit int) ([]models.SeriesDistance, error) {
	query := `
		SELECT reference, symbol, distance, updated_at
		FROM series_distance
		WHERE reference = $1 AND symbol <> $1
		ORDER BY distance ASC, symbol
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, reference, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query distances: %w", err)
	}
	defer rows.Close()

	var results []models.SeriesDistance
	for rows.Next() {
		var d models.SeriesDistance
		if err := rows.Scan(&d.Reference, &d.Symbol, &d.Distance, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan distance: %w", err)
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distances: %w", err)
	}

	return results, nil
}
