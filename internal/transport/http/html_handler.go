package http

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	apierrors "fruitdash/internal/errors"
	mw "fruitdash/internal/middleware"
	"fruitdash/pkg/contracts"
	"fruitdash/pkg/contracts/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// chartJSURL is the charting library the page loads; it must stay within the
// CSP allowed by middleware.SecureHeaders.
const chartJSURL = mw.ChartCDN + "/npm/chart.js@4.4.1/dist/chart.umd.min.js"

var dashboardTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"hasInt":    slices.Contains[[]int, int],
	"hasString": slices.Contains[[]string, string],
}).ParseFS(templateFS, "templates/dashboard.html"))

// pageData is the template input
type pageData struct {
	Title      string
	Version    string
	ChartJSURL string
	Modes      []domain.Mode
	View       *domain.DashboardView
}

// HTMLHandler renders the server-side dashboard page
type HTMLHandler struct {
	service      DashboardServiceInterface
	validator    *mw.Validator
	query        *mw.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewHTMLHandler creates a new HTML page handler
func NewHTMLHandler(service DashboardServiceInterface, validator *mw.Validator, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *HTMLHandler {
	return &HTMLHandler{
		service:      service,
		validator:    validator,
		query:        mw.NewQueryParamValidator(),
		logger:       logger.With(slog.String("component", "html_handler")),
		errorHandler: errorHandler,
	}
}

// ServeDashboard handles GET /
func (h *HTMLHandler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	req, err := parseDashboardQuery(r, h.query, h.validator)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.View(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	// Render into a buffer so a template failure still yields a clean problem
	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, pageData{
		Title:      "Fruit Demand Dashboard",
		Version:    contracts.Version,
		ChartJSURL: chartJSURL,
		Modes:      []domain.Mode{domain.ModeHistorical, domain.ModeForecast},
		View:       view,
	}); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render dashboard", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}
