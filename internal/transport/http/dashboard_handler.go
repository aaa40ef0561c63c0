package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "fruitdash/internal/errors"
	mw "fruitdash/internal/middleware"
	"fruitdash/internal/services"
	apiv1 "fruitdash/pkg/contracts/api/v1"
	"fruitdash/pkg/contracts/domain"
)

// Query parameter names
const (
	ParamMode       = "mode"
	ParamYear       = "year"
	ParamFruit      = "fruit"
	ParamTableFruit = "table_fruit"
)

var modes = []string{string(domain.ModeHistorical), string(domain.ModeForecast)}

// DashboardHandler serves the JSON API over the filter pipeline
type DashboardHandler struct {
	service      DashboardServiceInterface
	validator    *mw.Validator
	query        *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		validator:    validator,
		query:        mw.NewQueryParamValidator(),
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the API routes as a standalone router
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes adds the API routes to r
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/dashboard", h.GetDashboard)
	r.Get("/records", h.GetRecords)
	r.Get("/years", h.GetYears)
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseDashboardRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.DebugContext(r.Context(), "dashboard view served",
		slog.String("request_id", mw.GetRequestID(r.Context())),
		slog.String("mode", string(view.Mode)),
		slog.Int("panels", len(view.Chart.Panels)),
		slog.Int("rows", len(view.Table.Rows)),
	)

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   view,
	})
}

// GetRecords handles GET /api/records
func (h *DashboardHandler) GetRecords(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseRecordsRequest(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	mode, _ := domain.ParseMode(req.Mode)
	result, err := h.service.Records(r.Context(), req.Selection(mode))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   result,
		"count":  len(result.Records),
	})
}

// GetYears handles GET /api/years
func (h *DashboardHandler) GetYears(w http.ResponseWriter, r *http.Request) {
	mode, err := h.query.Enum(r, ParamMode, modes, string(domain.ModeHistorical))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	years, err := h.service.Years(r.Context(), domain.Mode(mode))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"mode": mode, "years": years},
	})
}

// parseDashboardRequest reads a full dashboard selection from the query
func (h *DashboardHandler) parseDashboardRequest(r *http.Request) (apiv1.DashboardRequest, error) {
	return parseDashboardQuery(r, h.query, h.validator)
}

func (h *DashboardHandler) parseRecordsRequest(r *http.Request) (apiv1.RecordsRequest, error) {
	years, err := h.query.Ints(r, ParamYear)
	if err != nil {
		return apiv1.RecordsRequest{}, err
	}
	req := apiv1.RecordsRequest{
		Mode:   strings.ToLower(strings.TrimSpace(r.URL.Query().Get(ParamMode))),
		Years:  years,
		Fruits: h.query.Strings(r, ParamFruit),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return apiv1.RecordsRequest{}, err
	}
	return req, nil
}

// parseDashboardQuery is shared by the JSON and HTML handlers
func parseDashboardQuery(r *http.Request, query *mw.QueryParamValidator, validator *mw.Validator) (apiv1.DashboardRequest, error) {
	years, err := query.Ints(r, ParamYear)
	if err != nil {
		return apiv1.DashboardRequest{}, err
	}
	req := apiv1.DashboardRequest{
		Mode:        strings.ToLower(strings.TrimSpace(r.URL.Query().Get(ParamMode))),
		Years:       years,
		Fruits:      query.Strings(r, ParamFruit),
		TableFruits: query.Strings(r, ParamTableFruit),
	}
	if err := validator.ValidateStruct(req); err != nil {
		return apiv1.DashboardRequest{}, err
	}
	return req, nil
}

// mapServiceError translates service sentinels into API errors
func mapServiceError(err error) error {
	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		return apierrors.ErrDataNotLoaded
	case errors.Is(err, services.ErrUnknownMode):
		return apierrors.ErrValidation(ParamMode, "mode must be one of: historical, forecast")
	default:
		return err
	}
}
