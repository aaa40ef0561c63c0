// Package api contains API contract definitions for the fruit demand dashboard.
// Version v1 represents the current stable API version.
package api

import (
	"fruitdash/pkg/contracts/domain"
)

// DashboardRequest is the parsed form of a dashboard query or WebSocket message.
// Fruits drive the chart, TableFruits drive the table; the two are independent.
type DashboardRequest struct {
	Mode        string   `json:"mode" validate:"omitempty,oneof=historical forecast"`
	Years       []int    `json:"years" validate:"dive,min=1,max=9999"`
	Fruits      []string `json:"fruits" validate:"dive,fruit"`
	TableFruits []string `json:"table_fruits" validate:"dive,fruit"`
}

// RecordsRequest is the parsed form of a single pipeline query
type RecordsRequest struct {
	Mode   string   `json:"mode" validate:"omitempty,oneof=historical forecast"`
	Years  []int    `json:"years" validate:"dive,min=1,max=9999"`
	Fruits []string `json:"fruits" validate:"dive,fruit"`
}

// ChartSelection returns the selection that drives the chart
func (r DashboardRequest) ChartSelection(mode domain.Mode) domain.Selection {
	return domain.Selection{Mode: mode, Years: r.Years, Fruits: r.Fruits}
}

// TableSelection returns the selection that drives the table
func (r DashboardRequest) TableSelection(mode domain.Mode) domain.Selection {
	return domain.Selection{Mode: mode, Years: r.Years, Fruits: r.TableFruits}
}

// Selection converts the request into a pipeline selection
func (r RecordsRequest) Selection(mode domain.Mode) domain.Selection {
	return domain.Selection{Mode: mode, Years: r.Years, Fruits: r.Fruits}
}
