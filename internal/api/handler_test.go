package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mr1hm/go-climate-risk/internal/ingestion"
	"github.com/mr1hm/go-climate-risk/internal/models"
	"github.com/mr1hm/go-climate-risk/internal/notify"
	"github.com/mr1hm/go-climate-risk/internal/pipeline"
	"github.com/mr1hm/go-climate-risk/internal/table"
)

// mockSource implements DatasetSource for testing
type mockSource struct {
	snap      *ingestion.Snapshot
	err       error
	reloadErr error
	reloads   int
}

func (m *mockSource) Current() (*ingestion.Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snap, nil
}

func (m *mockSource) Reload(ctx context.Context) (*ingestion.Snapshot, error) {
	m.reloads++
	if m.reloadErr != nil {
		return nil, m.reloadErr
	}
	return m.snap, nil
}

func testSnapshot() *ingestion.Snapshot {
	events := table.New(
		[]string{"Country", "Disaster Type", "Start Year", "Start Month", "Start Day", "End Year", "End Month", "End Day", "Total Deaths", "Total Affected", "Total Damage, Adjusted ('000 US$)"},
		[][]string{
			{"Germany", "Flood", "2021", "7", "12", "2021", "7", "20", "196", "1000", "45000000"},
			{"Germany", "Storm", "2022", "2", "17", "2022", "2", "19", "5", "200", "1500000"},
			{"France", "Wildfire", "2019", "8", "1", "2019", "8", "9", "0", "3000", "20000"},
			{"France", "Earthquake", "2019", "11", "11", "2019", "11", "11", "0", "40", "50000"},
			{"Japan", "Earthquake", "2011", "3", "11", "2011", "3", "11", "19000", "400000", "200000000"},
		},
	)
	portfolio := table.New(
		[]string{"country", "policy_count", "total_insured_value_eur_billion", "annual_premium_eur_million", "market_share_percent"},
		[][]string{
			{"Germany", "1200000", "450.5", "820", "4.2"},
			{"France", "900000", "300", "610", "3.1"},
		},
	)
	premium := table.New(
		[]string{"event_type", "annual_premium_eur_million"},
		[][]string{{"Flood", "300"}, {"Hurricane", "210"}},
	)

	return &ingestion.Snapshot{
		LoadID:    "load-1",
		InputHash: pipeline.Hash(events, portfolio, premium),
		LoadedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		Dataset:   pipeline.Prepare(events, portfolio, premium),
	}
}

func setupTestRouter(source DatasetSource, broadcaster *notify.Broadcaster) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(source, broadcaster)
	handler.RegisterRoutes(router)
	return router
}

func get(t *testing.T, router *gin.Engine, url string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", url, nil)
	router.ServeHTTP(w, req)
	return w
}

type eventsResponse struct {
	Total  int                  `json:"total"`
	Events []models.MergedEvent `json:"events"`
}

func TestHealth(t *testing.T) {
	router := setupTestRouter(&mockSource{err: ingestion.ErrNoDataset}, nil)

	w := get(t, router, "/health")
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["status"] != "ok" {
		t.Errorf("expected status ok, got %s", resp["status"])
	}
}

func TestGetEvents_ReturnsMergedRows(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/events")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp eventsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if resp.Total != 4 {
		t.Errorf("expected 4 merged events, got %d", resp.Total)
	}
	for _, e := range resp.Events {
		if e.Country == "Japan" {
			t.Errorf("events outside the portfolio must not be served")
		}
		if e.MarketSharePercent == 0 {
			t.Errorf("expected portfolio fields on event %d", e.EventID)
		}
	}
}

func TestGetEvents_SelectionFilters(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	tests := []struct {
		query string
		want  int
	}{
		{"country=Germany", 2},
		{"country=All+Europe", 4},
		{"from=2020&to=2025", 2},
		{"coverage=covered", 3},
		{"coverage=uncovered", 1},
		{"peril=Hurricane", 1},
		{"month=7", 1},
		{"country=France&coverage=covered", 1},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := get(t, router, "/api/events?"+tt.query)
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			var resp eventsResponse
			json.Unmarshal(w.Body.Bytes(), &resp)
			if resp.Total != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, resp.Total)
			}
		})
	}
}

func TestGetEvents_Pagination(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/events?limit=3&offset=2")
	var resp eventsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Total != 4 {
		t.Errorf("expected total 4, got %d", resp.Total)
	}
	if len(resp.Events) != 2 {
		t.Errorf("expected 2 events on the last page, got %d", len(resp.Events))
	}

	w = get(t, router, "/api/events?offset=50")
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Events) != 0 {
		t.Errorf("expected an empty page past the end, got %d", len(resp.Events))
	}
}

func TestGetEvents_SortBySeverity(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/events?sort=severity")
	var resp eventsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)

	for i := 1; i < len(resp.Events); i++ {
		if resp.Events[i].Severity > resp.Events[i-1].Severity {
			t.Fatalf("events not sorted by severity at %d", i)
		}
	}
}

func TestGetEvents_BadRequests(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	for _, query := range []string{
		"limit=0",
		"limit=5000",
		"offset=-1",
		"from=abc",
		"from=2020&to=2000",
		"month=13",
	} {
		t.Run(query, func(t *testing.T) {
			w := get(t, router, "/api/events?"+query)
			if w.Code != http.StatusBadRequest {
				t.Errorf("expected status 400, got %d", w.Code)
			}
		})
	}
}

func TestNoDatasetLoaded(t *testing.T) {
	router := setupTestRouter(&mockSource{err: ingestion.ErrNoDataset}, nil)

	for _, url := range []string{"/api/events", "/api/portfolio", "/api/analytics/summary", "/api/dataset"} {
		w := get(t, router, url)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected status 503, got %d", url, w.Code)
		}
	}
}

func TestGetMap_ReturnsGeoJSON(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/map")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	contentType := w.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/geo+json") {
		t.Errorf("expected content-type application/geo+json, got %s", contentType)
	}

	var fc FeatureCollection
	if err := json.Unmarshal(w.Body.Bytes(), &fc); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}

	if fc.Type != "FeatureCollection" {
		t.Errorf("expected type FeatureCollection, got %s", fc.Type)
	}
	if len(fc.Features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(fc.Features))
	}

	france := fc.Features[0]
	if france.Properties["country"] != "France" {
		t.Errorf("expected France first, got %v", france.Properties["country"])
	}
	if france.Geometry.Coordinates[0] != 2.2137 || france.Geometry.Coordinates[1] != 46.2276 {
		t.Errorf("expected [lon, lat] coordinates, got %v", france.Geometry.Coordinates)
	}
}

func TestAnalyticsEndpoints(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	for _, url := range []string{
		"/api/analytics/countries",
		"/api/analytics/seasonality",
		"/api/analytics/trend",
		"/api/analytics/perils",
		"/api/analytics/perils/yearly",
		"/api/analytics/growth",
		"/api/analytics/summary?country=Germany",
		"/api/analytics/correlations",
		"/api/analytics/top?n=2",
		"/api/analytics/distribution",
		"/api/portfolio",
		"/api/perils",
	} {
		t.Run(url, func(t *testing.T) {
			w := get(t, router, url)
			if w.Code != http.StatusOK {
				t.Errorf("expected status 200, got %d: %s", w.Code, w.Body.String())
			}
			if !json.Valid(w.Body.Bytes()) {
				t.Errorf("invalid JSON body")
			}
		})
	}
}

func TestGetSummary_UsesSelection(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/analytics/summary?country=France")
	var resp struct {
		TotalEvents int `json:"total_events"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.TotalEvents != 2 {
		t.Errorf("expected 2 French events, got %d", resp.TotalEvents)
	}
}

func TestGetTop_InvalidN(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/analytics/top?n=zero")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

func TestGetDeepDive(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/countries/Germany/deep-dive")
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Country              string  `json:"country"`
		TotalEvents          int     `json:"total_events"`
		EstimatedInsuredLoss float64 `json:"estimated_insured_loss_million_usd"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp.Country != "Germany" || resp.TotalEvents != 2 {
		t.Errorf("unexpected deep dive: %+v", resp)
	}
	if resp.EstimatedInsuredLoss <= 0 {
		t.Errorf("expected a positive estimated insured loss, got %f", resp.EstimatedInsuredLoss)
	}

	w = get(t, router, "/api/countries/Japan/deep-dive")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404 for a country outside the portfolio, got %d", w.Code)
	}
}

func TestGetDataset(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/dataset")
	var resp map[string]any
	json.Unmarshal(w.Body.Bytes(), &resp)

	if resp["load_id"] != "load-1" {
		t.Errorf("expected load_id load-1, got %v", resp["load_id"])
	}
	if resp["events"] != float64(4) || resp["merged"] != float64(4) {
		t.Errorf("unexpected counts: events=%v merged=%v", resp["events"], resp["merged"])
	}
	if resp["min_year"] != float64(2019) || resp["max_year"] != float64(2022) {
		t.Errorf("unexpected year bounds: %v-%v", resp["min_year"], resp["max_year"])
	}
}

func TestReload(t *testing.T) {
	source := &mockSource{snap: testSnapshot()}
	router := setupTestRouter(source, nil)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/reload", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if source.reloads != 1 {
		t.Errorf("expected 1 reload, got %d", source.reloads)
	}

	source.reloadErr = errors.New("portfolio missing")
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/api/reload", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestStream_Disabled(t *testing.T) {
	router := setupTestRouter(&mockSource{snap: testSnapshot()}, nil)

	w := get(t, router, "/api/stream")
	if w.Code != http.StatusNotImplemented {
		t.Errorf("expected status 501, got %d", w.Code)
	}
}

func TestStream_DeliversReloadNotices(t *testing.T) {
	b := notify.NewBroadcaster()
	defer b.Close()

	srv := httptest.NewServer(setupTestRouter(&mockSource{snap: testSnapshot()}, b))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", srv.URL+"/api/stream", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("failed to open stream: %v", err)
	}
	defer resp.Body.Close()

	for b.SubscriberCount() == 0 {
		time.Sleep(5 * time.Millisecond)
	}
	b.Broadcast(models.ReloadNotice{LoadID: "load-2", EventCount: 4})

	scanner := bufio.NewScanner(resp.Body)
	var sawEvent, sawData bool
	for scanner.Scan() {
		line := scanner.Text()
		if line == "event:reload" {
			sawEvent = true
		}
		if strings.HasPrefix(line, "data:") && strings.Contains(line, "load-2") {
			sawData = true
			break
		}
	}

	if !sawEvent || !sawData {
		t.Errorf("expected a reload event carrying load-2")
	}
}
