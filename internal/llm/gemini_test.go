package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/models"
)

func sampleResults() []models.RankedResult {
	price, rating, dist := 400, 4.5, 1.25
	return []models.RankedResult{
		{
			Service: models.ServiceRecord{
				ID: "1", Name: "Quick Plumbers", Category: "Plumber", City: "Hyderabad",
				Price: &price, Rating: &rating,
			},
			DistanceKm: &dist,
		},
		{Service: models.ServiceRecord{ID: "2", Name: "Flow Fix", Category: "Plumber"}},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc, rpm int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		APIKey:            "test-key",
		Model:             "gemini-1.5-pro",
		BaseURL:           srv.URL,
		Timeout:           time.Second,
		RequestsPerMinute: rpm,
	}, srv.Client(), logger.NewTestLogger(t))
}

func TestClient_Recommend(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-1.5-pro:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Contents, 1)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "Quick Plumbers")

		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [
			{"text": "<p>Try <b>Quick Plumbers</b>:   closest &amp; cheapest.</p>"}
		]}}]}`))
	}, 10)

	text, err := c.Recommend(context.Background(), models.QueryContext{RawText: "plumber"}, sampleResults())
	require.NoError(t, err)
	assert.Equal(t, "Try Quick Plumbers: closest & cheapest.", text)
}

func TestClient_RateLimitedByAPI(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, 10)

	_, err := c.Recommend(context.Background(), models.QueryContext{RawText: "x"}, sampleResults())
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, RateLimitText, FallbackText(err))
}

func TestClient_LocalRateLimit(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"candidates": [{"content": {"parts": [{"text": "ok"}]}}]}`))
	}, 1)

	_, err := c.Recommend(context.Background(), models.QueryContext{RawText: "x"}, sampleResults())
	require.NoError(t, err)

	_, err = c.Recommend(context.Background(), models.QueryContext{RawText: "x"}, sampleResults())
	assert.True(t, errors.Is(err, ErrRateLimited))
	assert.Equal(t, 1, calls)
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{name: "server error", handler: func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "internal", http.StatusInternalServerError)
		}},
		{name: "no candidates", handler: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"candidates": []}`))
		}},
		{name: "bad json", handler: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, 10)
			_, err := c.Recommend(context.Background(), models.QueryContext{RawText: "x"}, sampleResults())
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrRateLimited))
			assert.Equal(t, UnavailableText, FallbackText(err))
		})
	}
}

func TestClient_DisabledAndEmpty(t *testing.T) {
	c := NewClient(Config{}, nil, logger.NewNoOpLogger())
	assert.False(t, c.Enabled())
	_, err := c.Recommend(context.Background(), models.QueryContext{}, sampleResults())
	assert.True(t, errors.Is(err, ErrDisabled))

	enabled := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Fatal("must not be called")
	}, 10)
	text, err := enabled.Recommend(context.Background(), models.QueryContext{}, nil)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestBuildPrompt(t *testing.T) {
	maxPrice := 500
	prompt := BuildPrompt(models.QueryContext{
		RawText:      "plumber under 500",
		CategoryHint: "Plumber",
		CityHint:     "Hyderabad",
		MaxPrice:     &maxPrice,
	}, sampleResults())

	assert.Contains(t, prompt, "User Query: plumber under 500")
	assert.Contains(t, prompt, "Applied Filters: Category: Plumber. Location: Hyderabad. Max price: ₹500.")
	assert.Contains(t, prompt, "- Quick Plumbers (Plumber) in Hyderabad - Price: ₹400, Rating: 4.5, Distance: 1.2 km")
	assert.Contains(t, prompt, "- Flow Fix (Plumber) in N/A - Price: N/A, Rating: N/A\n")
	assert.True(t, strings.Contains(prompt, "no HTML"))
}

func TestCleanReply(t *testing.T) {
	in := "```text\n<div>Line one</div>\n\n\n\n  Line\t\ttwo  \n```"
	assert.Equal(t, "Line one\n\nLine two", CleanReply(in))
}
