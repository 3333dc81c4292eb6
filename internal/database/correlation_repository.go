package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/irfndi/fundamentals-ai-go/internal/models"
	"github.com/irfndi/fundamentals-ai-go/internal/utils"
	"github.com/irfndi/fundamentals-ai-go/pkg/changecode"
)

// CorrelationOrder selects the sort order of CorrelationRepository.List.
type CorrelationOrder string

const (
	OrderByCorrelation     CorrelationOrder = "correlation_all"
	OrderByConsecutiveOnes CorrelationOrder = "consecutive_ones"
	OrderBySymbol          CorrelationOrder = "symbol"
)

var correlationOrderClauses = map[CorrelationOrder]string{
	OrderByCorrelation:     "correlation_all DESC, symbol",
	OrderByConsecutiveOnes: "consecutive_ones DESC, symbol",
	OrderBySymbol:          "symbol",
}

// ParseCorrelationOrder validates a requested sort order. Empty means
// OrderByCorrelation.
func ParseCorrelationOrder(s string) (CorrelationOrder, error) {
	if s == "" {
		return OrderByCorrelation, nil
	}
	order := CorrelationOrder(strings.ToLower(s))
	if _, ok := correlationOrderClauses[order]; !ok {
		return "", utils.NewFieldError("order", fmt.Sprintf("unsupported order %q", s))
	}
	return order, nil
}

const correlationColumns = `symbol, revenue, market_cap, roic,
	correlation_all, correlation_rev_roic, correlation_rev_cap, correlation_roic_cap,
	consecutive_ones, updated_at`

// CorrelationRepository persists per-company change codes and correlation
// scores in company_correlation.
type CorrelationRepository struct {
	pool DatabasePool
}

func NewCorrelationRepository(pool DatabasePool) *CorrelationRepository {
	return &CorrelationRepository{pool: pool}
}

// EnsureSchema creates the results table, or adds updated_at to a table
// created by an older deployment.
func (r *CorrelationRepository) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS company_correlation (
			symbol TEXT PRIMARY KEY,
			revenue INTEGER[],
			market_cap INTEGER[],
			roic INTEGER[],
			correlation_all FLOAT,
			correlation_rev_roic FLOAT,
			correlation_rev_cap FLOAT,
			correlation_roic_cap FLOAT,
			consecutive_ones INT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`ALTER TABLE company_correlation ADD COLUMN IF NOT EXISTS updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()`,
	}
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to ensure company_correlation schema: %w", err)
		}
	}
	return nil
}

// Upsert inserts or replaces the row for row.Symbol.
func (r *CorrelationRepository) Upsert(ctx context.Context, row *models.CompanyCorrelation) error {
	query := `
		INSERT INTO company_correlation (
			symbol, revenue, market_cap, roic,
			correlation_all, correlation_rev_roic, correlation_rev_cap, correlation_roic_cap,
			consecutive_ones, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (symbol) DO UPDATE
		SET revenue = EXCLUDED.revenue,
			market_cap = EXCLUDED.market_cap,
			roic = EXCLUDED.roic,
			correlation_all = EXCLUDED.correlation_all,
			correlation_rev_roic = EXCLUDED.correlation_rev_roic,
			correlation_rev_cap = EXCLUDED.correlation_rev_cap,
			correlation_roic_cap = EXCLUDED.correlation_roic_cap,
			consecutive_ones = EXCLUDED.consecutive_ones,
			updated_at = NOW()`

	_, err := r.pool.Exec(ctx, query,
		row.Symbol,
		changecode.Ints(row.Revenue),
		changecode.Ints(row.MarketCap),
		changecode.Ints(row.ROIC),
		row.All,
		row.RevenueROIC,
		row.RevenueCap,
		row.ROICCap,
		row.ConsecutiveOnes,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert correlation for %s: %w", row.Symbol, err)
	}
	return nil
}

// Get returns the stored row for symbol.
func (r *CorrelationRepository) Get(ctx context.Context, symbol string) (*models.CompanyCorrelation, error) {
	query := `SELECT ` + correlationColumns + ` FROM company_correlation WHERE symbol = $1`

	row, err := scanCorrelation(r.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("correlation %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get correlation %s: %w", symbol, err)
	}
	return row, nil
}

// List returns up to limit rows in the given order.
func (r *CorrelationRepository) List(ctx context.Context, limit int, order CorrelationOrder) ([]models.CompanyCorrelation, error) {
	clause, ok := correlationOrderClauses[order]
	if !ok {
		return nil, fmt.Errorf("unsupported order %q", order)
	}

	query := `SELECT ` + correlationColumns + ` FROM company_correlation ORDER BY ` + clause + ` LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list correlations: %w", err)
	}
	defer rows.Close()

	var results []models.CompanyCorrelation
	for rows.Next() {
		row, err := scanCorrelation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan correlation: %w", err)
		}
		results = append(results, *row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating correlations: %w", err)
	}

	return results, nil
}

func scanCorrelation(row pgx.Row) (*models.CompanyCorrelation, error) {
	var (
		result                   models.CompanyCorrelation
		revenue, marketCap, roic []int32
	)
	err := row.Scan(
		&result.Symbol,
		&revenue,
		&marketCap,
		&roic,
		&result.All,
		&result.RevenueROIC,
		&result.RevenueCap,
		&result.ROICCap,
		&result.ConsecutiveOnes,
		&result.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if result.Revenue, err = changecode.FromInts(revenue); err != nil {
		return nil, err
	}
	if result.MarketCap, err = changecode.FromInts(marketCap); err != nil {
		return nil, err
	}
	if result.ROIC, err = changecode.FromInts(roic); err != nil {
		return nil, err
	}
	return &result, nil
}
