package http

import (
	"context"

	apiv1 "fruitdash/pkg/contracts/api/v1"
	"fruitdash/pkg/contracts/domain"
)

// DashboardServiceInterface is the slice of the dashboard service the
// handlers depend on
type DashboardServiceInterface interface {
	View(ctx context.Context, req apiv1.DashboardRequest) (*domain.DashboardView, error)
	Records(ctx context.Context, sel domain.Selection) (domain.FilterResult, error)
	Years(ctx context.Context, mode domain.Mode) ([]int, error)
}
