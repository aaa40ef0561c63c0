package dataprocessing

import (
	"slices"

	"fruitdash/pkg/contracts/domain"
)

// Dataset holds the two normalized record sets. It is immutable after
// construction and safe for concurrent use.
type Dataset struct {
	historical   []domain.DemandRecord
	forecast     []domain.DemandRecord
	forecastYear int
}

// NewDataset copies the given record sets into a new Dataset
func NewDataset(historical, forecast []domain.DemandRecord, forecastYear int) *Dataset {
	return &Dataset{
		historical:   slices.Clone(historical),
		forecast:     slices.Clone(forecast),
		forecastYear: forecastYear,
	}
}

// ForecastYear returns the single year every forecast record belongs to
func (d *Dataset) ForecastYear() int {
	return d.forecastYear
}

// Len returns the number of records of mode, or 0 for an unknown mode
func (d *Dataset) Len(mode domain.Mode) int {
	if d == nil {
		return 0
	}
	rows, err := d.table(mode)
	if err != nil {
		return 0
	}
	return len(rows)
}

// Records returns a copy of the full record set for mode
func (d *Dataset) Records(mode domain.Mode) ([]domain.DemandRecord, error) {
	if d == nil {
		return nil, ErrDatasetNotLoaded
	}
	rows, err := d.table(mode)
	if err != nil {
		return nil, err
	}
	return slices.Clone(rows), nil
}

// AvailableYears returns the selectable years of mode in ascending order.
// Forecast mode always has exactly the forecast year.
func (d *Dataset) AvailableYears(mode domain.Mode) ([]int, error) {
	if d == nil {
		return nil, ErrDatasetNotLoaded
	}

	switch mode {
	case domain.ModeForecast:
		return []int{d.forecastYear}, nil
	case domain.ModeHistorical:
		years := make([]int, 0, 8)
		for _, r := range d.historical {
			years = append(years, r.Year)
		}
		slices.Sort(years)
		return slices.Compact(years), nil
	default:
		return nil, ErrUnknownMode
	}
}

// table selects the base record set by mode without copying
func (d *Dataset) table(mode domain.Mode) ([]domain.DemandRecord, error) {
	switch mode {
	case domain.ModeHistorical:
		return d.historical, nil
	case domain.ModeForecast:
		return d.forecast, nil
	default:
		return nil, ErrUnknownMode
	}
}
