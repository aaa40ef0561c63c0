package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	apierrors "fruitdash/internal/errors"
	"fruitdash/pkg/contracts/domain"
)

// SourceFile locates one source file
type SourceFile struct {
	Path  string
	Sheet string
}

// LoaderConfig configures a Loader
type LoaderConfig struct {
	Historical   SourceFile
	Forecast     SourceFile
	ForecastYear int
}

// LoadObserver receives per-source load statistics
type LoadObserver interface {
	RecordSourceLoaded(ctx context.Context, source string, rows int, elapsed time.Duration)
}

// Loader reads and normalizes the historical and forecast sources
type Loader struct {
	cfg      LoaderConfig
	logger   *slog.Logger
	observer LoadObserver
}

// LoaderOption customizes a Loader
type LoaderOption func(*Loader)

// WithLoadObserver reports each loaded source to o
func WithLoadObserver(o LoadObserver) LoaderOption {
	return func(l *Loader) { l.observer = o }
}

// NewLoader creates a loader for cfg
func NewLoader(cfg LoaderConfig, logger *slog.Logger, opts ...LoaderOption) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loader{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "loader")),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads both sources concurrently and returns the immutable dataset.
// Any failure is returned as a single load error; no partial dataset is
// produced.
func (l *Loader) Load(ctx context.Context) (*Dataset, error) {
	var historical, forecast []domain.DemandRecord

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := l.LoadSource(gctx, domain.SourceHistorical)
		historical = records
		return err
	})
	g.Go(func() error {
		records, err := l.LoadSource(gctx, domain.SourceForecast)
		forecast = records
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "Dataset loaded",
		slog.Int("historical_rows", len(historical)),
		slog.Int("forecast_rows", len(forecast)),
		slog.Int("forecast_year", l.cfg.ForecastYear))

	return NewDataset(historical, forecast, l.cfg.ForecastYear), nil
}

// LoadSource reads and normalizes a single source
func (l *Loader) LoadSource(ctx context.Context, source domain.Source) ([]domain.DemandRecord, error) {
	schema, err := SchemaFor(source)
	if err != nil {
		return nil, apierrors.NewLoadError("cannot load source", err).WithContext("source", string(source))
	}

	file := l.cfg.Historical
	if source == domain.SourceForecast {
		file = l.cfg.Forecast
	}

	start := time.Now()
	records, err := l.load(ctx, schema, file)
	if err != nil {
		l.logger.ErrorContext(ctx, "Failed to load source",
			slog.String("source", string(source)),
			slog.String("path", file.Path),
			slog.String("error", err.Error()))
		return nil, err
	}

	elapsed := time.Since(start)
	if l.observer != nil {
		l.observer.RecordSourceLoaded(ctx, string(source), len(records), elapsed)
	}
	l.logger.InfoContext(ctx, "Source loaded",
		slog.String("source", string(source)),
		slog.String("path", file.Path),
		slog.Int("rows", len(records)),
		slog.Duration("elapsed", elapsed))

	return records, nil
}

func (l *Loader) load(ctx context.Context, schema Schema, file SourceFile) ([]domain.DemandRecord, error) {
	fail := func(msg string, cause error) *apierrors.AppError {
		return apierrors.NewLoadError(msg, cause).
			WithContext("source", string(schema.Source)).
			WithContext("path", file.Path)
	}

	if err := ctx.Err(); err != nil {
		return nil, fail("load cancelled", err)
	}

	if _, err := os.Stat(file.Path); err != nil {
		return nil, fail("source file not found", err)
	}

	rows, err := readRows(file.Path, file.Sheet)
	if err != nil {
		appErr := fail("cannot read source", err)
		if errors.Is(err, errSheetNotFound) {
			appErr.WithContext("sheet", file.Sheet)
		}
		return nil, appErr
	}
	if len(rows) == 0 {
		return nil, fail("source has no header row", nil)
	}

	cols, err := schema.resolveHeader(rows[0])
	if err != nil {
		appErr := fail("invalid header", err)
		var colErr *columnError
		if errors.As(err, &colErr) {
			appErr.WithContext("row", 1).WithContext("column", string(colErr.field))
		}
		return nil, appErr
	}

	records := make([]domain.DemandRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		// Spreadsheet row numbers are 1-based and the header is row 1.
		rowNum := i + 2

		rec, field, err := l.normalizeRow(schema, cols, row)
		if err != nil {
			return nil, fail("invalid value", err).
				WithContext("row", rowNum).
				WithContext("column", string(field))
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, fail("source has no data rows", nil)
	}

	return records, nil
}

// normalizeRow converts one raw row. On failure it reports the field that
// could not be coerced.
func (l *Loader) normalizeRow(schema Schema, cols columnMap, row []string) (domain.DemandRecord, Field, error) {
	var rec domain.DemandRecord
	var err error

	if rec.Month, err = normalizeMonth(cell(row, cols[FieldMonth])); err != nil {
		return rec, FieldMonth, err
	}
	if rec.FruitType, err = normalizeFruit(cell(row, cols[FieldFruitType])); err != nil {
		return rec, FieldFruitType, err
	}
	if rec.Quantity, err = normalizeQuantity(cell(row, cols[FieldQuantity]), schema.Quantity); err != nil {
		return rec, FieldQuantity, err
	}

	switch {
	case schema.YearRequired:
		if rec.Year, err = normalizeYear(cell(row, cols[FieldYear])); err != nil {
			return rec, FieldYear, err
		}
	case cols.has(FieldYear):
		// Forecast sources may carry a year column, but it must agree
		// with the configured forecast year on every row.
		if rec.Year, err = normalizeYear(cell(row, cols[FieldYear])); err != nil {
			return rec, FieldYear, err
		}
		if rec.Year != l.cfg.ForecastYear {
			return rec, FieldYear, fmt.Errorf("forecast year %d does not match expected %d", rec.Year, l.cfg.ForecastYear)
		}
	default:
		rec.Year = l.cfg.ForecastYear
	}

	return rec, "", nil
}
