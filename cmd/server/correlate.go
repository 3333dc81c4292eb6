package main

import (
	"context"
	"fmt"

	"github.com/irfndi/fundamentals-ai-go/internal/metrics"
	"github.com/irfndi/fundamentals-ai-go/internal/models"
)

// runCorrelate performs one correlation batch and one similarity run, then
// exits. It is meant for cron-style deployments without the HTTP server.
func runCorrelate() error {
	ctx := context.Background()

	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close(ctx)

	app := newApplication(rt, metrics.New())
	return recomputeAll(ctx, app)
}

// recomputeAll runs the correlation batch and then the similarity run,
// printing each report.
func recomputeAll(ctx context.Context, app *application) error {
	report, err := app.correlationJob.Run(ctx, "cli")
	if err != nil {
		return fmt.Errorf("correlation batch: %w", err)
	}
	printReport(report)

	report, err = app.similarity.Run(ctx, "", "cli")
	if err != nil {
		return fmt.Errorf("similarity run: %w", err)
	}
	printReport(report)
	return nil
}

func printReport(r *models.JobReport) {
	fmt.Printf("%s: processed=%d skipped=%d failed=%d alerts=%d duration=%s\n",
		r.Job, r.Processed, r.Skipped, r.Failed, r.Alerts, r.Duration())
	for _, e := range r.Errors {
		fmt.Printf("  %s\n", e)
	}
}
