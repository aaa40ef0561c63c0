package domain

import (
	"fmt"
	"strings"
)

// Mode selects which record set the dashboard reads from
type Mode string

const (
	ModeHistorical Mode = "historical"
	ModeForecast   Mode = "forecast"
)

// ParseMode converts a query value into a Mode. An empty value means historical.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeHistorical:
		return ModeHistorical, nil
	case ModeForecast:
		return ModeForecast, nil
	default:
		return "", fmt.Errorf("unknown mode %q", s)
	}
}

// Valid reports whether m is one of the known modes
func (m Mode) Valid() bool {
	return m == ModeHistorical || m == ModeForecast
}

// Source identifies which spreadsheet a record set came from
type Source string

const (
	SourceHistorical Source = "historical"
	SourceForecast   Source = "forecast"
)

// DemandRecord is one normalized row of either record set.
// Quantity is kilograms for historical rows and rounded predicted kilograms
// for forecast rows.
type DemandRecord struct {
	Year      int    `json:"year" validate:"required"`
	Month     int    `json:"month" validate:"min=1,max=12"`
	FruitType string `json:"fruit_type" validate:"required"`
	Quantity  int    `json:"y" validate:"min=0"`
}

// Selection is the user-settable input of the filter pipeline
type Selection struct {
	Mode   Mode     `json:"mode"`
	Years  []int    `json:"years"`
	Fruits []string `json:"fruits"`
}

// FilterResult is the output of the filter pipeline
type FilterResult struct {
	Records         []DemandRecord `json:"records"`
	AvailableFruits []string       `json:"available_fruits"`
}

// Empty reports whether the selection produced no rows
func (r FilterResult) Empty() bool {
	return len(r.Records) == 0
}
