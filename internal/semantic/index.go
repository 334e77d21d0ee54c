// Package semantic связывает модель эмбеддингов с векторным хранилищем
// и предоставляет векторный индекс для ретривера.
package semantic

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/models"
)

// Embedder превращает текст в вектор.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorSearcher ищет ближайшие векторы и возвращает id записей каталога.
type VectorSearcher interface {
	SearchVector(ctx context.Context, vector []float32, k int) ([]models.Match, error)
}

// Index - векторный индекс поверх модели эмбеддингов и хранилища.
type Index struct {
	embedder Embedder
	searcher VectorSearcher
}

// NewIndex создает индекс.
func NewIndex(embedder Embedder, searcher VectorSearcher) *Index {
	return &Index{embedder: embedder, searcher: searcher}
}

// Query возвращает до k пар (id, score) в порядке убывания сходства.
func (i *Index) Query(ctx context.Context, text string, k int) ([]models.Match, error) {
	vector, err := i.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	matches, err := i.searcher.SearchVector(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}
	return matches, nil
}

// DocumentText собирает текст записи для эмбеддинга. Пустые поля пропускаются.
func DocumentText(rec models.ServiceRecord) string {
	parts := make([]string, 0, 6)
	add := func(label, value string) {
		if value = strings.TrimSpace(value); value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("Service", rec.Name)
	add("Category", rec.Category)
	add("Address", rec.Address)
	add("City", rec.City)
	if rec.Rating != nil {
		add("Rating", strconv.FormatFloat(*rec.Rating, 'f', -1, 64))
	}
	if rec.Price != nil {
		add("Price", "₹"+strconv.Itoa(*rec.Price))
	}
	return strings.Join(parts, " | ")
}

// EmbedRecords строит эмбеддинги для всех записей. Ошибка на любой записи прерывает работу.
func EmbedRecords(ctx context.Context, embedder Embedder, records []models.ServiceRecord, log logger.Logger) ([]models.IndexedService, error) {
	out := make([]models.IndexedService, 0, len(records))
	for i, rec := range records {
		doc := DocumentText(rec)
		vector, err := embedder.Embed(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("embed record %s: %w", rec.ID, err)
		}
		out = append(out, models.IndexedService{Record: rec, Document: doc, Embedding: vector})

		if (i+1)%50 == 0 {
			log.Info("embedding progress", map[string]interface{}{"done": i + 1, "total": len(records)})
		}
	}
	return out, nil
}
