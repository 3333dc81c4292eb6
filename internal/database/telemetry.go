package database

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/irfndi/fundamentals-ai-go/internal/logging"
)

// TracedPool wraps a DatabasePool with a span and a debug log line per call.
type TracedPool struct {
	pool   DatabasePool
	tracer trace.Tracer
	logger *logging.StandardLogger
}

// NewTracedPool wraps pool. logger may be nil.
func NewTracedPool(pool DatabasePool, logger *logging.StandardLogger) *TracedPool {
	return &TracedPool{
		pool:   pool,
		tracer: otel.Tracer("fundamentals-ai-go/database"),
		logger: logger,
	}
}

func (p *TracedPool) start(ctx context.Context, op, sql string) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, "db."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", statementVerb(sql)),
			attribute.String("db.statement", sql),
		),
	)
}

func (p *TracedPool) finish(span trace.Span, op, sql string, start time.Time, rows int64, err error) {
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
	if p.logger != nil {
		p.logger.LogDatabaseOperation(op+" "+statementVerb(sql), statementTable(sql), time.Since(start).Milliseconds(), rows)
	}
}

// Query executes a query that returns rows.
func (p *TracedPool) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	start := time.Now()
	ctx, span := p.start(ctx, "query", sql)
	rows, err := p.pool.Query(ctx, sql, args...)
	p.finish(span, "query", sql, start, -1, err)
	return rows, err
}

// QueryRow executes a query that is expected to return at most one row.
func (p *TracedPool) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	start := time.Now()
	ctx, span := p.start(ctx, "query_row", sql)
	row := p.pool.QueryRow(ctx, sql, args...)
	p.finish(span, "query_row", sql, start, -1, nil)
	return row
}

// Exec executes a query without returning rows.
func (p *TracedPool) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	start := time.Now()
	ctx, span := p.start(ctx, "exec", sql)
	tag, err := p.pool.Exec(ctx, sql, args...)
	p.finish(span, "exec", sql, start, tag.RowsAffected(), err)
	return tag, err
}

// statementVerb returns the leading SQL keyword, e.g. SELECT.
func statementVerb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}

// statementTable returns the first table named after FROM, INTO, TABLE or UPDATE.
func statementTable(sql string) string {
	fields := strings.Fields(sql)
	for i := 0; i < len(fields)-1; i++ {
		switch strings.ToUpper(fields[i]) {
		case "FROM", "INTO", "UPDATE":
			return strings.Trim(fields[i+1], "(;")
		case "TABLE":
			next := i + 1
			// CREATE TABLE IF NOT EXISTS name / ALTER TABLE name
			if strings.EqualFold(fields[next], "IF") && next+3 < len(fields) {
				next += 3
			}
			return strings.Trim(fields[next], "(;")
		}
	}
	return ""
}
