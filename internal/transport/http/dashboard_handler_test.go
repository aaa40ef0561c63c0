package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apierrors "fruitdash/internal/errors"
	mw "fruitdash/internal/middleware"
	"fruitdash/internal/services"
	"fruitdash/internal/shared/testutil"
	apiv1 "fruitdash/pkg/contracts/api/v1"
	"fruitdash/pkg/contracts/domain"
)

// MockDashboardService is a mock implementation of DashboardServiceInterface
type MockDashboardService struct {
	mock.Mock
}

func (m *MockDashboardService) View(ctx context.Context, req apiv1.DashboardRequest) (*domain.DashboardView, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DashboardView), args.Error(1)
}

func (m *MockDashboardService) Records(ctx context.Context, sel domain.Selection) (domain.FilterResult, error) {
	args := m.Called(sel)
	return args.Get(0).(domain.FilterResult), args.Error(1)
}

func (m *MockDashboardService) Years(ctx context.Context, mode domain.Mode) ([]int, error) {
	args := m.Called(mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int), args.Error(1)
}

func newTestRouter(t *testing.T, svc DashboardServiceInterface) chi.Router {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	eh := apierrors.NewErrorHandler(logger, false)
	v := mw.NewValidator(logger)

	r := chi.NewRouter()
	r.Get("/", NewHTMLHandler(svc, v, logger, eh).ServeDashboard)
	r.Mount("/api", NewDashboardHandler(svc, v, logger, eh).Routes())
	return r
}

func serve(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func sampleView() *domain.DashboardView {
	return &domain.DashboardView{
		Mode:            domain.ModeHistorical,
		AvailableYears:  []int{2018, 2019},
		SelectedYears:   []int{2019},
		AvailableFruits: []string{"Apple", "Pear"},
		ChartFruits:     []string{"Apple"},
		Chart: domain.ChartView{Panels: []domain.YearPanel{{
			Year: 2019,
			Series: []domain.FruitSeries{{
				Fruit:  "Apple",
				Points: []domain.Point{{Month: 1, Quantity: 120}},
			}},
		}}},
		Table: domain.TableView{Empty: true, Prompt: domain.PromptSelectTableFruits},
	}
}

func TestDashboardHandler_GetDashboard(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		setupMock  func(*MockDashboardService)
		wantStatus int
		wantType   string
	}{
		{
			name:   "selection parsed from repeated params",
			target: "/api/dashboard?mode=Historical&year=2019,2020&year=2018&fruit=Apple&table_fruit=Pear&table_fruit=Kiwi",
			setupMock: func(m *MockDashboardService) {
				m.On("View", apiv1.DashboardRequest{
					Mode:        "historical",
					Years:       []int{2019, 2020, 2018},
					Fruits:      []string{"Apple"},
					TableFruits: []string{"Pear", "Kiwi"},
				}).Return(sampleView(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "comma inside a fruit name",
			target: "/api/dashboard?mode=forecast&fruit=apple%2C%20fuji",
			setupMock: func(m *MockDashboardService) {
				m.On("View", apiv1.DashboardRequest{
					Mode:   "forecast",
					Fruits: []string{"apple, fuji"},
				}).Return(sampleView(), nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "empty selection is not an error",
			target: "/api/dashboard",
			setupMock: func(m *MockDashboardService) {
				m.On("View", apiv1.DashboardRequest{}).Return(&domain.DashboardView{
					Mode:  domain.ModeHistorical,
					Chart: domain.ChartView{Empty: true, Prompt: domain.PromptSelectYears},
					Table: domain.TableView{Empty: true, Prompt: domain.PromptSelectYears},
				}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "unknown mode",
			target:     "/api/dashboard?mode=nowcast",
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:       "non integer year",
			target:     "/api/dashboard?year=twenty",
			setupMock:  func(m *MockDashboardService) {},
			wantStatus: http.StatusBadRequest,
			wantType:   apierrors.TypeValidation,
		},
		{
			name:   "dataset not loaded",
			target: "/api/dashboard?mode=forecast",
			setupMock: func(m *MockDashboardService) {
				m.On("View", mock.Anything).Return(nil, services.ErrDatasetNotLoaded)
			},
			wantStatus: http.StatusServiceUnavailable,
			wantType:   apierrors.TypeDataNotLoaded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			tt.setupMock(svc)

			w := serve(newTestRouter(t, svc), tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeBody(t, w)
			if tt.wantType != "" {
				assert.Equal(t, tt.wantType, body["type"])
			} else {
				assert.Equal(t, "success", body["status"])
				assert.Contains(t, body, "data")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDashboardHandler_GetDashboard_EmptyView(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("View", apiv1.DashboardRequest{}).Return(&domain.DashboardView{
		Mode:  domain.ModeHistorical,
		Chart: domain.ChartView{Empty: true, Prompt: domain.PromptSelectYears},
		Table: domain.TableView{Empty: true, Prompt: domain.PromptSelectYears},
	}, nil)

	w := serve(newTestRouter(t, svc), "/api/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeBody(t, w)["data"].(map[string]interface{})
	chart := data["chart"].(map[string]interface{})
	assert.Equal(t, true, chart["empty"])
	assert.Equal(t, domain.PromptSelectYears, chart["prompt"])
}

func TestDashboardHandler_GetRecords(t *testing.T) {
	svc := new(MockDashboardService)
	svc.On("Records", domain.Selection{
		Mode:   domain.ModeForecast,
		Fruits: []string{"Apple"},
	}).Return(domain.FilterResult{
		Records:         []domain.DemandRecord{{Year: 2025, Month: 1, FruitType: "Apple", Quantity: 12}},
		AvailableFruits: []string{"Apple", "Pear"},
	}, nil)

	w := serve(newTestRouter(t, svc), "/api/records?mode=forecast&fruit=Apple")

	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, float64(1), body["count"])
	data := body["data"].(map[string]interface{})
	records := data["records"].([]interface{})
	require.Len(t, records, 1)
	assert.Equal(t, float64(12), records[0].(map[string]interface{})["y"])
	svc.AssertExpectations(t)
}

func TestDashboardHandler_GetRecords_InvalidFruit(t *testing.T) {
	svc := new(MockDashboardService)

	w := serve(newTestRouter(t, svc), "/api/records?fruit=%00")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Records", mock.Anything)
}

func TestDashboardHandler_GetYears(t *testing.T) {
	tests := []struct {
		name       string
		target     string
		mode       domain.Mode
		years      []int
		wantStatus int
	}{
		{name: "default historical", target: "/api/years", mode: domain.ModeHistorical, years: []int{2018, 2019}, wantStatus: http.StatusOK},
		{name: "forecast", target: "/api/years?mode=forecast", mode: domain.ModeForecast, years: []int{2025}, wantStatus: http.StatusOK},
		{name: "unknown mode", target: "/api/years?mode=x", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDashboardService)
			if tt.years != nil {
				svc.On("Years", tt.mode).Return(tt.years, nil)
			}

			w := serve(newTestRouter(t, svc), tt.target)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				data := decodeBody(t, w)["data"].(map[string]interface{})
				assert.Equal(t, string(tt.mode), data["mode"])
				assert.Len(t, data["years"], len(tt.years))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestMapServiceError(t *testing.T) {
	assert.Equal(t, apierrors.ErrDataNotLoaded, mapServiceError(services.ErrDatasetNotLoaded))

	var apiErr *apierrors.APIError
	require.ErrorAs(t, mapServiceError(services.ErrUnknownMode), &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	other := assert.AnError
	assert.Equal(t, other, mapServiceError(other))
}
