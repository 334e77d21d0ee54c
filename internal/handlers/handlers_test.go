package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_service_finder/internal/catalog"
	"github.com/akozadaev/go_service_finder/internal/llm"
	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/models"
	"github.com/akozadaev/go_service_finder/internal/search"
)

type stubRecommender struct {
	enabled bool
	text    string
	err     error
	calls   int
}

func (s *stubRecommender) Enabled() bool { return s.enabled }

func (s *stubRecommender) Recommend(_ context.Context, _ models.QueryContext, _ []models.RankedResult) (string, error) {
	s.calls++
	return s.text, s.err
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func testCatalog() *catalog.Catalog {
	return catalog.New([]models.ServiceRecord{
		{
			ID: "1", Name: "Quick Plumbers", Category: "Plumber", City: "Hyderabad",
			Address: "Road 1, Madhapur, Hyderabad", Phone: "9876543210",
			Price: intPtr(400), Rating: floatPtr(4.5),
			Coordinates: &models.GeoPoint{Lat: 17.40, Lon: 78.47},
		},
		{
			ID: "2", Name: "Pipe Masters", Category: "Plumber", City: "Hyderabad",
			Address: "Road 2, Kondapur, Hyderabad", Phone: "9876500000",
			Price:       intPtr(600),
			Coordinates: &models.GeoPoint{Lat: 17.41, Lon: 78.48},
		},
	})
}

func newTestRouter(t *testing.T, rec Recommender) (*mux.Router, *Handlers) {
	t.Helper()
	log := logger.NewTestLogger(t)
	cat := testCatalog()
	normalizer := search.NewNormalizer(search.NormalizerOptions{DefaultLimit: 10, MaxLimit: 50})
	retriever := search.NewRetriever(cat, nil, nil, time.Second, log)
	pipeline := search.NewPipeline(normalizer, retriever, 50, log)

	h := NewHandlers(pipeline, cat, rec, log)
	h.now = func() time.Time { return time.Unix(1700000000, 0).UTC() }

	router := mux.NewRouter()
	h.Register(router)
	return router, h
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthCheck(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","services":2}`, rec.Body.String())
}

func TestSearchServices(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/services/search", models.SearchRequest{
		Query: "plumber under 500",
		Lat:   floatPtr(17.40),
		Lon:   floatPtr(78.47),
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Results []struct {
			Service      models.ServiceRecord `json:"service"`
			DistanceText string               `json:"distance_text"`
			Links        models.ContactLinks  `json:"links"`
		} `json:"results"`
		Total    int  `json:"total"`
		Fallback bool `json:"fallback"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Fallback)
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "1", resp.Results[0].Service.ID)
	assert.Equal(t, "0.0 km away", resp.Results[0].DistanceText)
	assert.Equal(t, "tel:9876543210", resp.Results[0].Links.Call)
}

func TestSearchServices_BadRequests(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/services/search", models.SearchRequest{Query: "plumber", MaxPrice: intPtr(-1)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"max_price"`)

	req := httptest.NewRequest(http.MethodPost, "/services/search", bytes.NewBufferString("{"))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.JSONEq(t, `{"error":"Invalid request body"}`, resp.Body.String())
}

func TestChat_Conversational(t *testing.T) {
	recommender := &stubRecommender{enabled: true}
	router, _ := newTestRouter(t, recommender)

	rec := do(t, router, http.MethodPost, "/chat", models.ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Conversational)
	assert.Contains(t, resp.Reply, "Hello")
	assert.Empty(t, resp.Results)
	assert.Zero(t, recommender.calls)
}

func TestChat_SearchWithRecommendation(t *testing.T) {
	recommender := &stubRecommender{enabled: true, text: "Quick Plumbers is the best pick."}
	router, _ := newTestRouter(t, recommender)

	rec := do(t, router, http.MethodPost, "/chat", models.ChatRequest{Message: "plumber in Hyderabad"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Reply          string        `json:"reply"`
		Conversational bool          `json:"conversational"`
		Results        []interface{} `json:"results"`
		Recommendation string        `json:"recommendation"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Conversational)
	assert.Len(t, resp.Results, 2)
	assert.Equal(t, "Found 2 services matching your request.", resp.Reply)
	assert.Equal(t, "Quick Plumbers is the best pick.", resp.Recommendation)
	assert.Equal(t, 1, recommender.calls)
}

func TestChat_RecommendationFallback(t *testing.T) {
	recommender := &stubRecommender{enabled: true, err: llm.ErrRateLimited}
	router, _ := newTestRouter(t, recommender)

	rec := do(t, router, http.MethodPost, "/chat", models.ChatRequest{Message: "plumber in Hyderabad"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, llm.RateLimitText, resp.Recommendation)
}

func TestChat_NoResults(t *testing.T) {
	recommender := &stubRecommender{enabled: true}
	router, _ := newTestRouter(t, recommender)

	rec := do(t, router, http.MethodPost, "/chat", models.ChatRequest{Message: "dentist in Pune"})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Reply, "No services found")
	assert.Zero(t, recommender.calls)
}

func TestChat_EmptyMessage(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/chat", models.ChatRequest{Message: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportResults(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodPost, "/services/export", models.SearchRequest{
		Query: "plumber",
		Lat:   floatPtr(17.41),
		Lon:   floatPtr(78.48),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="service_results_1700000000.json"`, rec.Header().Get("Content-Disposition"))

	var doc struct {
		SearchQuery     string                   `json:"search_query"`
		TotalServices   int                      `json:"total_services"`
		ExportTimestamp string                   `json:"export_timestamp"`
		Services        []map[string]interface{} `json:"services"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "plumber", doc.SearchQuery)
	assert.Equal(t, 2, doc.TotalServices)
	assert.Equal(t, "2023-11-14 22:13:20", doc.ExportTimestamp)

	require.Len(t, doc.Services, 2)
	// ближайший сервис первым, с оценкой и расстоянием
	first := doc.Services[0]
	assert.Equal(t, "2", first["service"].(map[string]interface{})["id"])
	assert.Contains(t, first, "similarity_score")
	assert.Equal(t, 0.0, first["distance_km"])
	assert.Contains(t, doc.Services[1], "distance_km")
}

func TestGetService(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/services/2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var svc models.ServiceRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &svc))
	assert.Equal(t, "Pipe Masters", svc.Name)

	rec = do(t, router, http.MethodGet, "/services/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDictionaries(t *testing.T) {
	router, _ := newTestRouter(t, nil)

	rec := do(t, router, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var categories []models.Category
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &categories))
	assert.NotEmpty(t, categories)

	rec = do(t, router, http.MethodGet, "/cities", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cities []models.City
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cities))
	require.NotEmpty(t, cities)
	names := make([]string, len(cities))
	for i, c := range cities {
		names[i] = c.Name
	}
	assert.True(t, sort.StringsAreSorted(names), "cities must be sorted by name")
	assert.Contains(t, names, "Madhapur")

	rec = do(t, router, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_services":2,"categories":["Plumber"],"cities":["Hyderabad"]}`, rec.Body.String())
}
