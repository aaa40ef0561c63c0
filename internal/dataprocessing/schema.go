package dataprocessing

import (
	"fmt"
	"strings"

	"fruitdash/pkg/contracts/domain"
)

// Field is a logical column of the normalized record schema
type Field string

const (
	FieldYear      Field = "year"
	FieldMonth     Field = "month"
	FieldFruitType Field = "fruit_type"
	FieldQuantity  Field = "quantity"
)

// Header aliases accepted for each field, compared case-insensitively after
// trimming. Quantity aliases depend on the source.
var (
	yearAliases      = []string{"year", "년도"}
	monthAliases     = []string{"month", "월"}
	fruitTypeAliases = []string{"fruit_type", "fruittype", "fruit", "과일종류"}

	historicalQuantityAliases = []string{"sales_kg", "판매량(kg)"}
	forecastQuantityAliases   = []string{"predicted_demand", "예상수요량"}
)

// QuantityRule converts a parsed quantity to its integer form
type QuantityRule int

const (
	// QuantityTruncate drops the fractional part
	QuantityTruncate QuantityRule = iota
	// QuantityRoundHalfEven rounds to the nearest integer, ties to even
	QuantityRoundHalfEven
)

func (r QuantityRule) String() string {
	switch r {
	case QuantityTruncate:
		return "truncate"
	case QuantityRoundHalfEven:
		return "round_half_even"
	default:
		return fmt.Sprintf("QuantityRule(%d)", int(r))
	}
}

// Schema describes how one source maps onto DemandRecord
type Schema struct {
	Source       domain.Source
	YearRequired bool
	Quantity     QuantityRule
	aliases      map[Field][]string
}

// HistoricalSchema is the schema of the historical sales source
func HistoricalSchema() Schema {
	return Schema{
		Source:       domain.SourceHistorical,
		YearRequired: true,
		Quantity:     QuantityTruncate,
		aliases: map[Field][]string{
			FieldYear:      yearAliases,
			FieldMonth:     monthAliases,
			FieldFruitType: fruitTypeAliases,
			FieldQuantity:  historicalQuantityAliases,
		},
	}
}

// ForecastSchema is the schema of the demand forecast source. Its year
// column is optional.
func ForecastSchema() Schema {
	return Schema{
		Source:       domain.SourceForecast,
		YearRequired: false,
		Quantity:     QuantityRoundHalfEven,
		aliases: map[Field][]string{
			FieldYear:      yearAliases,
			FieldMonth:     monthAliases,
			FieldFruitType: fruitTypeAliases,
			FieldQuantity:  forecastQuantityAliases,
		},
	}
}

// SchemaFor returns the schema of source
func SchemaFor(source domain.Source) (Schema, error) {
	switch source {
	case domain.SourceHistorical:
		return HistoricalSchema(), nil
	case domain.SourceForecast:
		return ForecastSchema(), nil
	default:
		return Schema{}, fmt.Errorf("unknown source %q", source)
	}
}

// columnMap maps each resolved field to its zero-based column index
type columnMap map[Field]int

func (c columnMap) has(f Field) bool {
	_, ok := c[f]
	return ok
}

// resolveHeader locates every field of the schema in header. A required
// field that is missing, or a field named by two columns, is an error
// naming the offending field.
func (s Schema) resolveHeader(header []string) (columnMap, error) {
	cols := make(columnMap, len(s.aliases))

	for i, raw := range header {
		name := normalizeHeader(raw)
		if name == "" {
			continue
		}
		for field, aliases := range s.aliases {
			if !matchesAlias(name, aliases) {
				continue
			}
			if prev, dup := cols[field]; dup {
				return nil, &columnError{field: field, msg: fmt.Sprintf("duplicate column for %s (columns %d and %d)", field, prev+1, i+1)}
			}
			cols[field] = i
		}
	}

	for _, field := range s.requiredFields() {
		if !cols.has(field) {
			return nil, &columnError{field: field, msg: fmt.Sprintf("missing required column %s (accepted headers: %s)", field, strings.Join(s.aliases[field], ", "))}
		}
	}

	return cols, nil
}

func (s Schema) requiredFields() []Field {
	fields := []Field{FieldMonth, FieldFruitType, FieldQuantity}
	if s.YearRequired {
		fields = append([]Field{FieldYear}, fields...)
	}
	return fields
}

type columnError struct {
	field Field
	msg   string
}

func (e *columnError) Error() string { return e.msg }

func normalizeHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
}

func matchesAlias(name string, aliases []string) bool {
	for _, alias := range aliases {
		if name == alias {
			return true
		}
	}
	return false
}
