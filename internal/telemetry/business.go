package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BusinessTracer wraps span creation for the analysis jobs so their attribute
// names stay consistent across services.
type BusinessTracer struct {
	tracer trace.Tracer
}

// NewBusinessTracer creates a BusinessTracer on the global provider.
func NewBusinessTracer() *BusinessTracer {
	return &BusinessTracer{tracer: GetBusinessTracer()}
}

// NewBusinessTracerWith creates a BusinessTracer on an explicit tracer.
func NewBusinessTracerWith(tracer trace.Tracer) *BusinessTracer {
	return &BusinessTracer{tracer: tracer}
}

// BatchResult summarizes one run of a batch job.
type BatchResult struct {
	Processed int
	Failed    int
	Skipped   int
}

// TraceCorrelationBatch starts a span for a correlation recompute over all companies.
func (bt *BusinessTracer) TraceCorrelationBatch(ctx context.Context, trigger string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "correlation_batch",
		trace.WithAttributes(attribute.String("job.trigger", trigger)),
	)
}

// TraceSimilarityRun starts a span for a DTW similarity run against a reference symbol.
func (bt *BusinessTracer) TraceSimilarityRun(ctx context.Context, reference string, quarters int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "similarity_run",
		trace.WithAttributes(
			attribute.String("similarity.reference", reference),
			attribute.Int("similarity.quarters", quarters),
		),
	)
}

// TraceCompanyAnalysis starts a span for a single company computation.
func (bt *BusinessTracer) TraceCompanyAnalysis(ctx context.Context, operation, symbol string) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "company_"+operation,
		trace.WithAttributes(attribute.String("company.symbol", symbol)),
	)
}

// TraceNotification starts a span for an outgoing Telegram message.
func (bt *BusinessTracer) TraceNotification(ctx context.Context, kind string, items int) (context.Context, trace.Span) {
	return bt.tracer.Start(ctx, "notification_"+kind,
		trace.WithAttributes(attribute.Int("notification.items", items)),
	)
}

// RecordBatchResult adds the batch outcome to span and marks it failed when
// every processed company failed.
func (bt *BusinessTracer) RecordBatchResult(span trace.Span, result BatchResult) {
	span.SetAttributes(
		attribute.Int("batch.processed", result.Processed),
		attribute.Int("batch.failed", result.Failed),
		attribute.Int("batch.skipped", result.Skipped),
	)
	if result.Failed > 0 && result.Failed == result.Processed {
		span.SetStatus(codes.Error, "all companies failed")
		return
	}
	span.SetStatus(codes.Ok, "")
}

// RecordNotificationResult records the outcome of a Telegram alert.
func (bt *BusinessTracer) RecordNotificationResult(span trace.Span, success bool, err error) {
	span.SetAttributes(attribute.Bool("notification.success", success))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}
