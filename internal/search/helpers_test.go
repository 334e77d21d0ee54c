package search

import (
	"context"
	"sync"
	"time"

	"github.com/akozadaev/go_service_finder/internal/catalog"
	"github.com/akozadaev/go_service_finder/internal/models"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func point(lat, lon float64) *models.GeoPoint {
	return &models.GeoPoint{Lat: lat, Lon: lon}
}

func service(id, category, city string, price *int, rating *float64, coords *models.GeoPoint) models.ServiceRecord {
	return models.ServiceRecord{
		ID:          id,
		Name:        category + " " + id,
		Category:    category,
		City:        city,
		Phone:       "9876543210",
		Address:     "Road " + id + ", " + city,
		Price:       price,
		Rating:      rating,
		Coordinates: coords,
	}
}

// exampleCatalog - две записи из описания поведения конвейера.
func exampleCatalog() *catalog.Catalog {
	return catalog.New([]models.ServiceRecord{
		service("1", "Plumber", "Hyderabad", intPtr(400), floatPtr(4.5), point(17.40, 78.47)),
		service("2", "Plumber", "Hyderabad", intPtr(600), nil, point(17.41, 78.48)),
	})
}

func numberedCatalog(n int) *catalog.Catalog {
	records := make([]models.ServiceRecord, n)
	for i := range records {
		id := string(rune('a' + i))
		records[i] = service(id, "Electrician", "Pune", nil, nil, nil)
	}
	return catalog.New(records)
}

func ranked(records ...models.ServiceRecord) []models.RankedResult {
	out := make([]models.RankedResult, len(records))
	for i, r := range records {
		out[i] = models.RankedResult{Service: r, SimilarityScore: float64(len(records) - i)}
	}
	return out
}

func ids(results []models.RankedResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Service.ID
	}
	return out
}

type fakeIndex struct {
	mu       sync.Mutex
	matches  []models.Match
	err      error
	delay    time.Duration
	calls    int
	lastText string
	lastK    int
}

func (f *fakeIndex) Query(ctx context.Context, text string, k int) ([]models.Match, error) {
	f.mu.Lock()
	f.calls++
	f.lastText = text
	f.lastK = k
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.matches, f.err
}

func (f *fakeIndex) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
