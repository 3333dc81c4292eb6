package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

// metricPaths maps each metric to its JSONB path inside companies.data.
// Queries only ever interpolate values from this map.
var metricPaths = map[models.Metric]string{
	models.MetricRevenue:   `COALESCE(data->'financials'->'quarterly'->'revenue', '[]'::jsonb)`,
	models.MetricMarketCap: `COALESCE(data->'financials'->'quarterly'->'market_cap', '[]'::jsonb)`,
	models.MetricROIC:      `COALESCE(data->'financials'->'quarterly'->'roic', '[]'::jsonb)`,
}

const companyColumns = `
	data->>'qfs_symbol_v2' AS symbol,
	COALESCE(data->'metadata'->>'sector', '') AS sector,
	COALESCE(data->'financials'->'quarterly'->'revenue', '[]'::jsonb) AS revenue,
	COALESCE(data->'financials'->'quarterly'->'market_cap', '[]'::jsonb) AS market_cap,
	COALESCE(data->'financials'->'quarterly'->'roic', '[]'::jsonb) AS roic`

// CompanyRepository reads company documents from the companies table, whose
// data column holds the raw JSONB fundamentals export.
type CompanyRepository struct {
	pool DatabasePool
}

func NewCompanyRepository(pool DatabasePool) *CompanyRepository {
	return &CompanyRepository{pool: pool}
}

// ListSymbols returns every distinct company symbol.
func (r *CompanyRepository) ListSymbols(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT data->>'qfs_symbol_v2' AS symbol
		FROM companies
		WHERE data->>'qfs_symbol_v2' IS NOT NULL
		ORDER BY symbol`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating symbols: %w", err)
	}

	return symbols, nil
}

// GetCompany loads the three quarterly series of one company.
func (r *CompanyRepository) GetCompany(ctx context.Context, symbol string) (*models.Company, error) {
	query := `SELECT` + companyColumns + `
		FROM companies
		WHERE data->>'qfs_symbol_v2' = $1
		LIMIT 1`

	company, err := scanCompany(r.pool.QueryRow(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get company %s: %w", symbol, err)
	}
	if company.DecodeErr != nil {
		return nil, fmt.Errorf("failed to get company %s: %w", symbol, company.DecodeErr)
	}

	return company, nil
}

// GetMetric loads a single quarterly series of one company.
func (r *CompanyRepository) GetMetric(ctx context.Context, symbol string, metric models.Metric) (models.QuarterlySeries, error) {
	path, ok := metricPaths[metric]
	if !ok {
		return nil, fmt.Errorf("unsupported metric %q", metric)
	}

	query := `SELECT ` + path + ` FROM companies WHERE data->>'qfs_symbol_v2' = $1 LIMIT 1`

	var raw []byte
	if err := r.pool.QueryRow(ctx, query, symbol).Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("company %s: %w", symbol, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get %s for %s: %w", metric, symbol, err)
	}

	return decodeSeries(raw)
}

// ListCompanies loads every company with a symbol, one row per symbol.
// A row whose series cannot be decoded is still returned, with DecodeErr
// set, so that batch callers can report it per company.
func (r *CompanyRepository) ListCompanies(ctx context.Context) ([]models.Company, error) {
	query := `SELECT DISTINCT ON (data->>'qfs_symbol_v2')` + companyColumns + `
		FROM companies
		WHERE data->>'qfs_symbol_v2' IS NOT NULL
		ORDER BY data->>'qfs_symbol_v2'`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	var companies []models.Company
	for rows.Next() {
		company, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company: %w", err)
		}
		companies = append(companies, *company)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating companies: %w", err)
	}

	return companies, nil
}

func scanCompany(row pgx.Row) (*models.Company, error) {
	var (
		company                     models.Company
		revenue, marketCap, roicRaw []byte
	)
	if err := row.Scan(&company.Symbol, &company.Sector, &revenue, &marketCap, &roicRaw); err != nil {
		return nil, err
	}

	fields := []struct {
		name   string
		raw    []byte
		target *models.QuarterlySeries
	}{
		{"revenue", revenue, &company.Revenue},
		{"market_cap", marketCap, &company.MarketCap},
		{"roic", roicRaw, &company.ROIC},
	}
	for _, f := range fields {
		series, err := decodeSeries(f.raw)
		if err != nil {
			if company.DecodeErr == nil {
				company.DecodeErr = fmt.Errorf("%s of %s: %w", f.name, company.Symbol, err)
			}
			continue
		}
		*f.target = series
	}

	return &company, nil
}

// decodeSeries parses a JSONB array of numbers and nulls.
func decodeSeries(raw []byte) (models.QuarterlySeries, error) {
	if len(raw) == 0 {
		return models.QuarterlySeries{}, nil
	}
	var series models.QuarterlySeries
	if err := json.Unmarshal(raw, &series); err != nil {
		return nil, fmt.Errorf("invalid quarterly series: %w", err)
	}
	if series == nil {
		series = models.QuarterlySeries{}
	}
	return series, nil
}
