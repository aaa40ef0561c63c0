package dataprocessing

import (
	"errors"
	"slices"

	"fruitdash/pkg/contracts/domain"
)

var (
	// ErrDatasetNotLoaded is returned when filtering before a dataset exists.
	// It is distinct from an empty result.
	ErrDatasetNotLoaded = errors.New("dataset not loaded")
	// ErrUnknownMode is returned for a mode other than historical or forecast
	ErrUnknownMode = errors.New("unknown mode")
)

// Filter applies sel to the dataset.
//
// Historical mode keeps rows whose year is selected; no selected years
// yields nothing. Forecast mode ignores years. AvailableFruits lists the
// distinct fruits left after year filtering, sorted, whatever fruits are
// selected. No selected fruits yields no records. Records are ordered by
// year, keeping source order within a year.
func (d *Dataset) Filter(sel domain.Selection) (domain.FilterResult, error) {
	if d == nil {
		return domain.FilterResult{}, ErrDatasetNotLoaded
	}

	base, err := d.table(sel.Mode)
	if err != nil {
		return domain.FilterResult{}, err
	}

	scoped := base
	if sel.Mode == domain.ModeHistorical {
		scoped = filterByYears(base, sel.Years)
	}

	result := domain.FilterResult{
		Records:         filterByFruits(scoped, sel.Fruits),
		AvailableFruits: distinctFruits(scoped),
	}

	slices.SortStableFunc(result.Records, func(a, b domain.DemandRecord) int {
		return a.Year - b.Year
	})

	return result, nil
}

func filterByYears(rows []domain.DemandRecord, years []int) []domain.DemandRecord {
	if len(years) == 0 {
		return nil
	}
	keep := make(map[int]struct{}, len(years))
	for _, y := range years {
		keep[y] = struct{}{}
	}

	out := make([]domain.DemandRecord, 0, len(rows))
	for _, r := range rows {
		if _, ok := keep[r.Year]; ok {
			out = append(out, r)
		}
	}
	return out
}

// filterByFruits always returns a fresh, non-nil slice
func filterByFruits(rows []domain.DemandRecord, fruits []string) []domain.DemandRecord {
	out := make([]domain.DemandRecord, 0)
	if len(fruits) == 0 {
		return out
	}
	keep := make(map[string]struct{}, len(fruits))
	for _, f := range fruits {
		keep[f] = struct{}{}
	}

	for _, r := range rows {
		if _, ok := keep[r.FruitType]; ok {
			out = append(out, r)
		}
	}
	return out
}

func distinctFruits(rows []domain.DemandRecord) []string {
	fruits := make([]string, 0, 8)
	for _, r := range rows {
		fruits = append(fruits, r.FruitType)
	}
	slices.Sort(fruits)
	return slices.Compact(fruits)
}
