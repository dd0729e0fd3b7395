package report

import (
	"context"
	"fmt"
	"time"

	"github.com/fieldsales/backend/internal/domain/report"
	"github.com/fieldsales/backend/internal/domain/sales"
	"github.com/fieldsales/backend/internal/domain/shared"
	"github.com/fieldsales/backend/internal/infrastructure/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("github.com/fieldsales/backend/internal/application/report")

// Report kinds reported to Metrics
const (
	KindChannel   = "channel"
	KindModel     = "model"
	KindMarket    = "market"
	KindDashboard = "dashboard"
)

// Metrics records every report request
type Metrics interface {
	ReportBuilt(ctx context.Context, kind, period string, elapsed time.Duration, err error)
}

type noMetrics struct{}

func (noMetrics) ReportBuilt(context.Context, string, string, time.Duration, error) {}

// ReportRequest carries the query parameters shared by every report
type ReportRequest struct {
	Code       string
	TDFormat   string
	DataFormat string
	StartDate  string
	EndDate    string
}

func (r ReportRequest) windowRequest(period report.Period) report.WindowRequest {
	return report.WindowRequest{Period: period, StartDate: r.StartDate, EndDate: r.EndDate}
}

// ServiceOption configures a ReportService
type ServiceOption func(*ReportService)

// WithLocation sets the business location calendar days are taken in
func WithLocation(loc *time.Location) ServiceOption {
	return func(s *ReportService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics sets the report counters
func WithMetrics(m Metrics) ServiceOption {
	return func(s *ReportService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithPeriodDays sets the month length used by required-pace metrics
func WithPeriodDays(days int) ServiceOption {
	return func(s *ReportService) {
		s.periodDays = days
	}
}

// ReportService builds the sales reports. Every report is read-only: it
// loads the records of its windows, aggregates them in memory and derives
// the KPI columns.
type ReportService struct {
	records    sales.RecordRepository
	references sales.ModelReferenceRepository
	targets    sales.ChannelTargetRepository
	roles      *RoleFilterResolver
	loc        *time.Location
	now        func() time.Time
	periodDays int
	metrics    Metrics
	logger     *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	records sales.RecordRepository,
	references sales.ModelReferenceRepository,
	targets sales.ChannelTargetRepository,
	roles *RoleFilterResolver,
	zapLogger *zap.Logger,
	opts ...ServiceOption,
) *ReportService {
	if zapLogger == nil {
		zapLogger = zap.NewNop()
	}
	s := &ReportService{
		records:    records,
		references: references,
		targets:    targets,
		roles:      roles,
		loc:        time.UTC,
		now:        time.Now,
		periodDays: report.ChannelPeriodDays,
		metrics:    noMetrics{},
		logger:     zapLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// observe opens the span of one report build. The returned func ends it and
// records the outcome held in *errp.
func (s *ReportService) observe(ctx context.Context, kind string, req ReportRequest) (context.Context, func(errp *error)) {
	started := time.Now()
	ctx, span := tracer.Start(ctx, "report."+kind)
	span.SetAttributes(
		attribute.String("report.kind", kind),
		attribute.String("report.period", req.TDFormat),
		attribute.String("report.data_format", req.DataFormat),
	)
	return ctx, func(errp *error) {
		if err := *errp; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ReportBuilt(ctx, kind, req.TDFormat, time.Since(started), *errp)
	}
}

func (s *ReportService) resolveWindow(req ReportRequest) (report.Window, error) {
	period, err := report.ParsePeriod(req.TDFormat)
	if err != nil {
		return report.Window{}, err
	}
	return report.ResolveWindow(req.windowRequest(period), s.now(), s.loc)
}

// windowRecords holds the records of the current and prior ranges of a window
type windowRecords struct {
	current []*sales.Record
	prior   []*sales.Record
}

// ftd returns the current records that fall on the window's end day
func (wr windowRecords) ftd(w report.Window) []*sales.Record {
	q := sales.RecordQuery{From: w.FTD.From, To: w.FTD.To}
	var out []*sales.Record
	for _, r := range wr.current {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (s *ReportService) loadWindow(ctx context.Context, w report.Window, salesType sales.SalesType, scope *sales.Scope) (windowRecords, error) {
	current, err := s.records.FindInRange(ctx, sales.RecordQuery{
		From: w.Current.From, To: w.Current.To, SalesType: salesType, Scope: scope,
	})
	if err != nil {
		return windowRecords{}, fmt.Errorf("failed to load current records: %w", err)
	}
	prior, err := s.records.FindInRange(ctx, sales.RecordQuery{
		From: w.Prior.From, To: w.Prior.To, SalesType: salesType, Scope: scope,
	})
	if err != nil {
		return windowRecords{}, fmt.Errorf("failed to load prior records: %w", err)
	}
	return windowRecords{current: current, prior: prior}, nil
}

// BuildChannelReport returns the channel-wise report of the employee's
// subtree over Sell Out records. Volume or value is chosen by DataFormat.
func (s *ReportService) BuildChannelReport(ctx context.Context, req ReportRequest) (_ *report.Report, err error) {
	ctx, done := s.observe(ctx, KindChannel, req)
	defer done(&err)

	filter, err := s.roles.Resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	measure, err := report.ParseMeasure(req.DataFormat, report.MeasureValue)
	if err != nil {
		return nil, err
	}
	w, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	recs, err := s.loadWindow(ctx, w, sales.SalesTypeSellOut, filter.Scope())
	if err != nil {
		return nil, err
	}
	targets, err := s.targets.FindForScope(ctx, sales.PeriodStartOf(w.Current.To), *filter.Scope())
	if err != nil {
		return nil, fmt.Errorf("failed to load channel targets: %w", err)
	}

	rep := report.BuildChannelReport(report.ChannelInput{
		Window:     w,
		Measure:    measure,
		Current:    report.Aggregate(recs.current, report.DimOutletType, measure),
		Prior:      report.Aggregate(recs.prior, report.DimOutletType, measure),
		FTD:        report.Aggregate(recs.ftd(w), report.DimOutletType, measure),
		Targets:    targets,
		PeriodDays: s.periodDays,
	})

	logger.For(ctx, s.logger).Debug("Channel report built",
		zap.String("level", string(filter.Level)),
		zap.String("period", string(w.Period)),
		zap.String("measure", string(measure)),
		zap.Int("current_records", len(recs.current)),
		zap.Int("prior_records", len(recs.prior)),
		zap.Int("targets", len(targets)),
	)
	return rep, nil
}

// BuildModelReport returns the model-wise report of the employee's subtree.
// It is volume based; reference rows are those of the month of the window's
// end day.
func (s *ReportService) BuildModelReport(ctx context.Context, req ReportRequest) (_ *report.Report, err error) {
	ctx, done := s.observe(ctx, KindModel, req)
	defer done(&err)

	filter, err := s.roles.Resolve(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	w, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	recs, err := s.loadWindow(ctx, w, sales.SalesTypeSellOut, filter.Scope())
	if err != nil {
		return nil, err
	}
	refs, err := s.references.FindByPeriod(ctx, sales.PeriodStartOf(w.Current.To))
	if err != nil {
		return nil, fmt.Errorf("failed to load model references: %w", err)
	}

	rep := report.BuildModelReport(report.ModelInput{
		Window:     w,
		References: refs,
		Current:    report.Aggregate(recs.current, report.DimModelCode, report.MeasureVolume),
		Prior:      report.Aggregate(recs.prior, report.DimModelCode, report.MeasureVolume),
		FTD:        report.Aggregate(recs.ftd(w), report.DimModelCode, report.MeasureVolume),
	})

	logger.For(ctx, s.logger).Debug("Model report built",
		zap.String("period", string(w.Period)),
		zap.Int("references", len(refs)),
		zap.Int("rows", len(rep.Rows)),
	)
	return rep, nil
}

// BuildMarketReport returns the market-wide channel report. It is not
// scoped to an employee. MTD compares against the LMTD columns carried on
// the current rows; YTD runs a second pass over last year.
func (s *ReportService) BuildMarketReport(ctx context.Context, req ReportRequest) (_ *report.Report, err error) {
	ctx, done := s.observe(ctx, KindMarket, req)
	defer done(&err)

	measure, err := report.ParseMeasure(req.DataFormat, report.MeasureValue)
	if err != nil {
		return nil, err
	}
	w, err := s.resolveWindow(req)
	if err != nil {
		return nil, err
	}

	current, err := s.records.FindInRange(ctx, sales.RecordQuery{From: w.Current.From, To: w.Current.To})
	if err != nil {
		return nil, fmt.Errorf("failed to load current records: %w", err)
	}
	if len(current) == 0 {
		return nil, shared.NewDomainError("NOT_FOUND", "Data not found")
	}

	in := report.MarketInput{
		Window:  w,
		Current: report.Aggregate(current, report.DimChannel, measure),
	}
	if w.Period == report.PeriodYTD {
		prior, err := s.records.FindInRange(ctx, sales.RecordQuery{From: w.Prior.From, To: w.Prior.To})
		if err != nil {
			return nil, fmt.Errorf("failed to load prior records: %w", err)
		}
		in.Prior = report.Aggregate(prior, report.DimChannel, measure)
	}

	return report.BuildMarketReport(in), nil
}

// BuildDashboard returns the sell-in and sell-out tiles of the employee's
// subtree
func (s *ReportService) BuildDashboard(ctx context.Context, req ReportRequest) (_ report.Dashboard, err error) {
	ctx, done := s.observe(ctx, KindDashboard, req)
	defer done(&err)

	filter, err := s.roles.Resolve(ctx, req.Code)
	if err != nil {
		return report.Dashboard{}, err
	}
	measure, err := report.ParseMeasure(req.DataFormat, report.MeasureValue)
	if err != nil {
		return report.Dashboard{}, err
	}
	w, err := s.resolveWindow(req)
	if err != nil {
		return report.Dashboard{}, err
	}

	recs, err := s.loadWindow(ctx, w, "", filter.Scope())
	if err != nil {
		return report.Dashboard{}, err
	}

	return report.BuildDashboard(report.DashboardInput{
		Current: report.Aggregate(recs.current, report.DimSalesType, measure),
		Prior:   report.Aggregate(recs.prior, report.DimSalesType, measure),
	}), nil
}

// Employee returns the directory entry of code
func (s *ReportService) Employee(ctx context.Context, code string) (*sales.Employee, error) {
	return s.roles.Employee(ctx, code)
}
