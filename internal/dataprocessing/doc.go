// Package dataprocessing loads the fruit demand spreadsheets and filters
// them for display.
//
// # Loading
//
// A Loader reads the historical sales source and the demand forecast source
// (xlsx or csv), resolves their headers through per-field aliases and
// normalizes every row into a domain.DemandRecord:
//
//   - month is cast to an integer and must lie in [1,12]
//   - historical quantities are truncated toward zero
//   - forecast quantities are rounded half to even (12.5 becomes 12)
//   - forecast rows are stamped with the configured forecast year
//
// Any missing file, missing column or uncoercible value aborts the whole
// load with a single LOAD AppError carrying source, path, row and column.
//
//	loader := dataprocessing.NewLoader(dataprocessing.LoaderConfig{
//	    Historical:   dataprocessing.SourceSpec{Path: "data/2018-2024.xlsx"},
//	    Forecast:     dataprocessing.SourceSpec{Path: "data/forecast_2025.xlsx"},
//	    ForecastYear: 2025,
//	}, logger)
//	dataset, err := loader.Load(ctx)
//
// # Filtering
//
// Dataset.Filter is a pure function of a domain.Selection. An empty year or
// fruit selection yields an empty result rather than everything; callers
// render a prompt in that case. A nil dataset yields ErrDatasetNotLoaded.
package dataprocessing
