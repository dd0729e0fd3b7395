package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName scopes the instruments of this service
const MeterName = "github.com/fieldsales/backend"

// Attribute keys
var (
	AttrKind    = attribute.Key("kind")
	AttrOutcome = attribute.Key("outcome")
	AttrPeriod  = attribute.Key("period")
)

// SalesMetrics counts what uploads stored and which reports were served.
// It satisfies the metrics hooks of the ingest and report services.
type SalesMetrics struct {
	recordRows    metric.Int64Counter
	referenceRows metric.Int64Counter
	reports       metric.Int64Counter
	reportSeconds metric.Float64Histogram
}

// NewSalesMetrics registers the instruments on meter
func NewSalesMetrics(meter metric.Meter) (*SalesMetrics, error) {
	var (
		m   SalesMetrics
		err error
	)
	if m.recordRows, err = meter.Int64Counter("fieldsales.sales.rows",
		metric.WithDescription("Sales rows received, by outcome (admitted or duplicate)"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create sales row counter: %w", err)
	}
	if m.referenceRows, err = meter.Int64Counter("fieldsales.reference.rows",
		metric.WithDescription("Reference rows received, by kind and outcome (upserted or rejected)"),
		metric.WithUnit("{row}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create reference row counter: %w", err)
	}
	if m.reports, err = meter.Int64Counter("fieldsales.reports",
		metric.WithDescription("Reports requested, by kind, period and outcome"),
		metric.WithUnit("{report}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create report counter: %w", err)
	}
	if m.reportSeconds, err = meter.Float64Histogram("fieldsales.report.duration",
		metric.WithDescription("Time spent building a report"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return nil, fmt.Errorf("failed to create report duration histogram: %w", err)
	}
	return &m, nil
}

// RecordsUploaded counts the outcome of one sales upload
func (m *SalesMetrics) RecordsUploaded(ctx context.Context, admitted int64, duplicates int) {
	m.recordRows.Add(ctx, admitted, metric.WithAttributes(AttrOutcome.String("admitted")))
	m.recordRows.Add(ctx, int64(duplicates), metric.WithAttributes(AttrOutcome.String("duplicate")))
}

// ReferencesUploaded counts the outcome of one reference upload
func (m *SalesMetrics) ReferencesUploaded(ctx context.Context, kind string, upserted int64, rejected int) {
	m.referenceRows.Add(ctx, upserted, metric.WithAttributes(AttrKind.String(kind), AttrOutcome.String("upserted")))
	m.referenceRows.Add(ctx, int64(rejected), metric.WithAttributes(AttrKind.String(kind), AttrOutcome.String("rejected")))
}

// ReportBuilt counts one report request and its build time
func (m *SalesMetrics) ReportBuilt(ctx context.Context, kind, period string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(AttrKind.String(kind), AttrPeriod.String(period), AttrOutcome.String(outcome))
	m.reports.Add(ctx, 1, attrs)
	m.reportSeconds.Record(ctx, elapsed.Seconds(), attrs)
}
