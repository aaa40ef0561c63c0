package services

import "fruitdash/internal/dataprocessing"

// Dashboard service errors
var (
	// ErrDatasetNotLoaded means no dataset has been attached yet. It is not
	// an empty selection.
	ErrDatasetNotLoaded = dataprocessing.ErrDatasetNotLoaded

	// ErrUnknownMode means the requested mode is neither historical nor forecast
	ErrUnknownMode = dataprocessing.ErrUnknownMode
)
