package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"fruitdash/internal/dataprocessing"
	"fruitdash/internal/infrastructure"
	apiv1 "fruitdash/pkg/contracts/api/v1"
	"fruitdash/pkg/contracts/domain"
)

// Pipeline targets, used as the "target" metric and span attribute
const (
	TargetChart   = "chart"
	TargetTable   = "table"
	TargetRecords = "records"
)

// DashboardService runs the filter pipeline over the loaded dataset and
// shapes its output for the view layer
type DashboardService struct {
	dataset atomic.Pointer[dataprocessing.Dataset]
	tracer  trace.Tracer
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger
}

// DashboardOption customizes a DashboardService
type DashboardOption func(*DashboardService)

// WithTracer sets the tracer used for pipeline spans
func WithTracer(tracer trace.Tracer) DashboardOption {
	return func(s *DashboardService) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithMetrics sets the instruments pipeline invocations are recorded on
func WithMetrics(metrics *infrastructure.DashboardMetrics) DashboardOption {
	return func(s *DashboardService) { s.metrics = metrics }
}

// NewDashboardService creates a service with no dataset attached
func NewDashboardService(logger *slog.Logger, opts ...DashboardOption) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	s := &DashboardService{
		tracer: noop.NewTracerProvider().Tracer(""),
		logger: infrastructure.WithComponent(logger, "dashboard_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach publishes the loaded dataset. The dataset is read-only from here on.
func (s *DashboardService) Attach(ds *dataprocessing.Dataset) {
	s.dataset.Store(ds)
	s.logger.Info("Dataset attached",
		slog.Int("historical_rows", ds.Len(domain.ModeHistorical)),
		slog.Int("forecast_rows", ds.Len(domain.ModeForecast)))
}

// Loaded reports whether a dataset is attached
func (s *DashboardService) Loaded() bool {
	return s.dataset.Load() != nil
}

// Stats returns the record count of each mode; zero before Attach
func (s *DashboardService) Stats() map[string]int {
	ds := s.dataset.Load()
	return map[string]int{
		string(domain.ModeHistorical): ds.Len(domain.ModeHistorical),
		string(domain.ModeForecast):   ds.Len(domain.ModeForecast),
	}
}

// Years returns the selectable years of mode
func (s *DashboardService) Years(ctx context.Context, mode domain.Mode) ([]int, error) {
	return s.dataset.Load().AvailableYears(mode)
}

// Records runs the pipeline once and returns its raw output
func (s *DashboardService) Records(ctx context.Context, sel domain.Selection) (domain.FilterResult, error) {
	return s.filter(ctx, s.dataset.Load(), sel, TargetRecords)
}

// View runs the pipeline for the chart and for the table and assembles the
// screen. Empty selections are reported through Empty and Prompt, not as
// errors.
func (s *DashboardService) View(ctx context.Context, req apiv1.DashboardRequest) (*domain.DashboardView, error) {
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMode, req.Mode)
	}

	ctx, span := s.tracer.Start(ctx, "dashboard.view",
		trace.WithAttributes(attribute.String("dashboard.mode", string(mode))))
	defer span.End()

	ds := s.dataset.Load()
	years, err := ds.AvailableYears(mode)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return nil, err
	}

	chart, err := s.filter(ctx, ds, req.ChartSelection(mode), TargetChart)
	if err != nil {
		return nil, err
	}
	table, err := s.filter(ctx, ds, req.TableSelection(mode), TargetTable)
	if err != nil {
		return nil, err
	}

	view := &domain.DashboardView{
		Mode:            mode,
		AvailableYears:  years,
		SelectedYears:   selectedYears(mode, req.Years, years),
		AvailableFruits: chart.AvailableFruits,
		ChartFruits:     intersect(req.Fruits, chart.AvailableFruits),
		TableFruits:     intersect(req.TableFruits, table.AvailableFruits),
		Chart:           buildChart(chart.Records),
		Table:           buildTable(table.Records),
	}

	noYears := mode == domain.ModeHistorical && len(view.SelectedYears) == 0
	if view.Chart.Empty {
		view.Chart.Prompt = domain.PromptSelectChartFruits
		if noYears {
			view.Chart.Prompt = domain.PromptSelectYears
		}
	}
	if view.Table.Empty {
		view.Table.Prompt = domain.PromptSelectTableFruits
		if noYears {
			view.Table.Prompt = domain.PromptSelectYears
		}
	}

	return view, nil
}

// filter runs one pipeline invocation inside its own span
func (s *DashboardService) filter(ctx context.Context, ds *dataprocessing.Dataset, sel domain.Selection, target string) (domain.FilterResult, error) {
	ctx, span := s.tracer.Start(ctx, "dashboard.filter", trace.WithAttributes(
		attribute.String("dashboard.mode", string(sel.Mode)),
		attribute.String("dashboard.target", target),
		attribute.Int("dashboard.years", len(sel.Years)),
		attribute.Int("dashboard.fruits", len(sel.Fruits)),
	))
	defer span.End()

	start := time.Now()
	result, err := ds.Filter(sel)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "Filter failed",
			slog.String("mode", string(sel.Mode)),
			slog.String("target", target),
			slog.String("error", err.Error()))
		return domain.FilterResult{}, err
	}

	span.SetAttributes(
		attribute.Int("dashboard.records", len(result.Records)),
		attribute.Bool("dashboard.empty", result.Empty()),
	)
	s.metrics.RecordFilterInvocation(ctx, string(sel.Mode), target, result.Empty(), time.Since(start))

	s.logger.DebugContext(ctx, "Filter applied",
		slog.String("mode", string(sel.Mode)),
		slog.String("target", target),
		slog.Int("records", len(result.Records)),
		slog.Int("available_fruits", len(result.AvailableFruits)))

	return result, nil
}

// buildChart groups records, already ordered by year, into one panel per
// year and one series per fruit. Points are ordered by month, then by
// source order.
func buildChart(records []domain.DemandRecord) domain.ChartView {
	chart := domain.ChartView{Panels: []domain.YearPanel{}, Empty: len(records) == 0}

	for start := 0; start < len(records); {
		year := records[start].Year
		end := start
		for end < len(records) && records[end].Year == year {
			end++
		}
		chart.Panels = append(chart.Panels, domain.YearPanel{
			Year:   year,
			Series: buildSeries(records[start:end]),
		})
		start = end
	}

	return chart
}

func buildSeries(records []domain.DemandRecord) []domain.FruitSeries {
	byFruit := make(map[string][]domain.Point)
	for _, r := range records {
		byFruit[r.FruitType] = append(byFruit[r.FruitType], domain.Point{Month: r.Month, Quantity: r.Quantity})
	}

	fruits := make([]string, 0, len(byFruit))
	for f := range byFruit {
		fruits = append(fruits, f)
	}
	slices.Sort(fruits)

	series := make([]domain.FruitSeries, 0, len(fruits))
	for _, f := range fruits {
		points := byFruit[f]
		slices.SortStableFunc(points, func(a, b domain.Point) int { return a.Month - b.Month })
		series = append(series, domain.FruitSeries{Fruit: f, Points: points})
	}
	return series
}

func buildTable(records []domain.DemandRecord) domain.TableView {
	rows := make([]domain.TableRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, domain.TableRow{
			Year:      r.Year,
			Month:     r.Month,
			FruitType: r.FruitType,
			Quantity:  r.Quantity,
		})
	}
	return domain.TableView{Rows: rows, Empty: len(rows) == 0}
}

// selectedYears echoes the requested years that exist, ascending. Forecast
// mode always shows its single year.
func selectedYears(mode domain.Mode, requested, available []int) []int {
	if mode == domain.ModeForecast {
		return available
	}
	out := make([]int, 0, len(requested))
	for _, y := range available {
		if slices.Contains(requested, y) {
			out = append(out, y)
		}
	}
	return out
}

// intersect keeps the selected values still offered as options, in option order
func intersect(selected, options []string) []string {
	out := make([]string, 0, len(selected))
	for _, o := range options {
		if slices.Contains(selected, o) {
			out = append(out, o)
		}
	}
	return out
}
