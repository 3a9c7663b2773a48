package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/riskscope/internal/analysis"
	"github.com/wonny/riskscope/internal/api/handlers"
	"github.com/wonny/riskscope/internal/contracts"
	"github.com/wonny/riskscope/internal/external/yahoo"
	"github.com/wonny/riskscope/internal/telemetry"
	"github.com/wonny/riskscope/pkg/config"
	"github.com/wonny/riskscope/pkg/logger"
)

type stubProvider struct {
	series map[string]contracts.PriceSeries
	errs   map[string]error
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) FetchPrices(ctx context.Context, ticker string, from, to time.Time) (contracts.PriceSeries, error) {
	if err, ok := p.errs[ticker]; ok {
		return nil, err
	}
	if s, ok := p.series[ticker]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", yahoo.ErrUnknownSymbol, ticker)
}

func wave(n int, phase float64) contracts.PriceSeries {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make(contracts.PriceSeries, n)
	for i := range out {
		out[i] = contracts.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Price: 100 + 0.1*float64(i) + 8*math.Sin(float64(i)/9+phase),
		}
	}
	return out
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		Env:      "test",
		LogLevel: "error",
		Analysis: config.AnalysisConfig{
			TradingDays:     252,
			RollingWindow:   20,
			ConfidenceLevel: 0.95,
			InitialCapital:  100000,
			Benchmark:       "^GSPC",
		},
	}
	provider := &stubProvider{
		series: map[string]contracts.PriceSeries{
			"AAPL":  wave(120, 0),
			"^GSPC": wave(120, 0.5),
		},
		errs: map[string]error{
			"DOWN": errors.New("connection reset"),
			"BAD":  fmt.Errorf("%w: non-positive price", contracts.ErrInvalidSeries),
		},
	}

	metrics := telemetry.New()
	runner := analysis.NewRunner(cfg, logger.Nop(), provider, nil, metrics)
	router := NewRouter(handlers.NewAnalysisHandler(runner, logger.Nop()), metrics, nil, logger.Nop())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string) (int, map[string]interface{}) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/health")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestHealth_Checks(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus string
	}{
		{
			name: "all healthy",
			checks: map[string]HealthCheck{
				"redis":    func(context.Context) (interface{}, error) { return nil, nil },
				"postgres": func(context.Context) (interface{}, error) { return map[string]int{"total_conns": 2}, nil },
			},
			wantStatus: "ok",
		},
		{
			name: "redis down",
			checks: map[string]HealthCheck{
				"redis":    func(context.Context) (interface{}, error) { return nil, errors.New("connection refused") },
				"postgres": func(context.Context) (interface{}, error) { return nil, nil },
			},
			wantStatus: "degraded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := analysis.NewRunner(&config.Config{}, logger.Nop(), &stubProvider{}, nil, nil)
			router := NewRouter(handlers.NewAnalysisHandler(runner, logger.Nop()), nil, tt.checks, logger.Nop())
			srv := httptest.NewServer(router)
			defer srv.Close()

			status, body := getJSON(t, srv.URL+"/health")
			assert.Equal(t, http.StatusOK, status)
			assert.Equal(t, tt.wantStatus, body["status"])

			checks := body["checks"].(map[string]interface{})
			require.Len(t, checks, len(tt.checks))
			for name := range tt.checks {
				assert.Contains(t, checks, name)
			}
		})
	}
}

func TestMetricsNotMountedWithoutRegistry(t *testing.T) {
	runner := analysis.NewRunner(&config.Config{}, logger.Nop(), &stubProvider{}, nil, nil)
	srv := httptest.NewServer(NewRouter(handlers.NewAnalysisHandler(runner, logger.Nop()), nil, nil, logger.Nop()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetAnalysis(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/api/analysis/aapl?start=2024-01-01&end=2024-05-01")
	require.Equal(t, http.StatusOK, status, body)
	assert.Equal(t, true, body["success"])

	data := body["data"].(map[string]interface{})
	assert.Equal(t, "AAPL", data["ticker"])
	assert.Equal(t, "2024-01-01", data["start_date"])
	assert.EqualValues(t, 120, data["observations"])
	assert.NotNil(t, data["market_sensitivity"])

	formatted := body["formatted"].(map[string]interface{})
	growth := formatted["growth"].(map[string]interface{})
	assert.Contains(t, growth["total_return"], "%")
}

func TestGetAnalysis_Text(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/analysis/AAPL?start=2024-01-01&end=2024-05-01&format=text")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/plain"))

	text, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(text), "STOCK ANALYSIS DATA")
	assert.Contains(t, string(text), "Ticker: AAPL\nPeriod: 2024-01-01 to 2024-05-01\n")
}

func TestGetAnalysis_Errors(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"bad start", "/api/analysis/AAPL?start=01/02/2024", http.StatusBadRequest},
		{"start after end", "/api/analysis/AAPL?start=2024-05-01&end=2024-01-01", http.StatusBadRequest},
		{"start and lookback", "/api/analysis/AAPL?start=2024-01-01&lookback=1y", http.StatusBadRequest},
		{"bad capital", "/api/analysis/AAPL?start=2024-01-01&end=2024-05-01&capital=lots", http.StatusBadRequest},
		{"negative capital", "/api/analysis/AAPL?start=2024-01-01&end=2024-05-01&capital=-5", http.StatusBadRequest},
		{"unknown ticker", "/api/analysis/NOPE?start=2024-01-01&end=2024-05-01", http.StatusNotFound},
		{"provider down", "/api/analysis/DOWN?start=2024-01-01&end=2024-05-01", http.StatusBadGateway},
		{"invalid series", "/api/analysis/BAD?start=2024-01-01&end=2024-05-01", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getJSON(t, srv.URL+tt.path)
			assert.Equal(t, tt.status, status, body)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetDrawdowns(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL + "/api/analysis/AAPL/drawdowns?start=2024-01-01&end=2024-05-01"

	status, body := getJSON(t, base+"&sort=depth&limit=1")
	require.Equal(t, http.StatusOK, status, body)
	assert.EqualValues(t, 1, body["count"])
	assert.GreaterOrEqual(t, body["total"].(float64), 1.0)

	episodes := body["episodes"].([]interface{})
	require.Len(t, episodes, 1)
	worst := body["highlights"].(map[string]interface{})["worst_drawdown"].(map[string]interface{})
	assert.Equal(t, worst["peak_date"], episodes[0].(map[string]interface{})["peak_date"])

	status, body = getJSON(t, base+"&sort=recent&limit=0")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, body["total"], body["count"])

	status, _ = getJSON(t, base+"&sort=sideways")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getJSON(t, base+"&limit=-1")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGetSimulation(t *testing.T) {
	srv := newTestServer(t)

	status, body := getJSON(t, srv.URL+"/api/analysis/AAPL/simulation?start=2024-01-01&end=2024-05-01&capital=5000&curve=false")
	require.Equal(t, http.StatusOK, status, body)

	data := body["data"].(map[string]interface{})
	assert.EqualValues(t, 5000, data["initial_investment"])
	assert.Nil(t, data["value_curve"])

	formatted := body["formatted"].(map[string]interface{})
	assert.Equal(t, "5000.00", formatted["initial_investment"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	status, _ := getJSON(t, srv.URL+"/api/analysis/AAPL?start=2024-01-01&end=2024-05-01")
	require.Equal(t, http.StatusOK, status)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `riskscope_analysis_runs_total{outcome="ok"} 1`)
}
