package search

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/akozadaev/go_service_finder/internal/cache"
	"github.com/akozadaev/go_service_finder/internal/catalog"
	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/metrics"
	"github.com/akozadaev/go_service_finder/internal/models"
)

// VectorIndex - внешний индекс семантического поиска: по тексту возвращает
// упорядоченные пары (id, score).
type VectorIndex interface {
	Query(ctx context.Context, text string, k int) ([]models.Match, error)
}

// MatchCache кэширует ответы индекса. Промах обозначается cache.ErrCacheMiss.
type MatchCache interface {
	GetMatches(ctx context.Context, text string, k int) ([]models.Match, error)
	SetMatches(ctx context.Context, text string, k int, matches []models.Match) error
}

// Причины перехода на каталог.
const (
	FallbackNoIndex    = "no_index"
	FallbackError      = "error"
	FallbackTimeout    = "timeout"
	FallbackEmpty      = "empty"
	FallbackUnknownIDs = "unknown_ids"
)

// Retrieval - результат этапа получения кандидатов.
type Retrieval struct {
	Results  []models.RankedResult
	Fallback bool
	Reason   string // причина fallback, пусто при ответе индекса
	Cached   bool
}

// Retriever получает кандидатов из векторного индекса и сопоставляет их с каталогом.
// Ошибки индекса наружу не возвращаются.
type Retriever struct {
	catalog *catalog.Catalog
	index   VectorIndex
	cache   MatchCache
	timeout time.Duration
	log     logger.Logger
}

// NewRetriever создает ретривер. index и matchCache могут быть nil.
func NewRetriever(cat *catalog.Catalog, index VectorIndex, matchCache MatchCache, timeout time.Duration, log logger.Logger) *Retriever {
	return &Retriever{
		catalog: cat,
		index:   index,
		cache:   matchCache,
		timeout: timeout,
		log:     log,
	}
}

// Retrieve возвращает до topK кандидатов в порядке убывания релевантности.
// topK <= 0 означает весь каталог. Если индекс недоступен, отвечает ошибкой,
// не укладывается в таймаут или не вернул ни одной известной записи, возвращаются
// первые topK записей каталога в порядке загрузки с оценкой 0.
func (r *Retriever) Retrieve(ctx context.Context, text string, topK int) Retrieval {
	if topK <= 0 {
		topK = r.catalog.Len()
	}
	if r.index == nil {
		return r.fallback(FallbackNoIndex, topK, nil)
	}

	if matches, ok := r.cachedMatches(ctx, text, topK); ok {
		if results := r.resolve(matches, topK); len(results) > 0 {
			return Retrieval{Results: results, Cached: true}
		}
	}

	matches, err := r.query(ctx, text, topK)
	if err != nil {
		reason := FallbackError
		if errors.Is(err, context.DeadlineExceeded) {
			reason = FallbackTimeout
		}
		return r.fallback(reason, topK, err)
	}
	if len(matches) == 0 {
		return r.fallback(FallbackEmpty, topK, nil)
	}

	results := r.resolve(matches, topK)
	if len(results) == 0 {
		return r.fallback(FallbackUnknownIDs, topK,
			fmt.Errorf("%w: none of %d returned ids are in the catalog", ErrRetrievalUnavailable, len(matches)))
	}

	r.storeMatches(ctx, text, topK, matches)
	return Retrieval{Results: results}
}

func (r *Retriever) query(ctx context.Context, text string, topK int) ([]models.Match, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	matches, err := r.index.Query(ctx, text, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, err)
	}
	// индекс мог ответить успешно, но уже после дедлайна
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("%w: %w", ErrRetrievalUnavailable, ctxErr)
	}
	return matches, nil
}

// resolve сопоставляет id с каталогом, пропуская неизвестные, повторяющиеся и
// записи с некорректной оценкой. Порядок индекса сохраняется.
func (r *Retriever) resolve(matches []models.Match, topK int) []models.RankedResult {
	results := make([]models.RankedResult, 0, min(len(matches), topK))
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if len(results) == topK {
			break
		}
		if seen[m.ID] || math.IsNaN(m.Score) || math.IsInf(m.Score, 0) {
			continue
		}
		rec, ok := r.catalog.Get(m.ID)
		if !ok {
			r.log.Debug("index returned unknown id", map[string]interface{}{"id": m.ID})
			continue
		}
		seen[m.ID] = true
		results = append(results, models.RankedResult{Service: rec, SimilarityScore: m.Score})
	}
	return results
}

func (r *Retriever) fallback(reason string, topK int, err error) Retrieval {
	metrics.RetrievalFallbacks.WithLabelValues(reason).Inc()
	fields := map[string]interface{}{"reason": reason, "top_k": topK}
	if err != nil {
		fields["error"] = err
	}
	r.log.Warn("vector index unavailable, falling back to catalog", fields)

	return Retrieval{Results: unscored(r.catalog.First(topK)), Fallback: true, Reason: reason}
}

// Scan возвращает весь каталог в порядке загрузки с оценкой 0. Конвейер фильтрует
// по нему, когда индекс недоступен, чтобы записи за пределами topK оставались доступны.
func (r *Retriever) Scan() []models.RankedResult {
	return unscored(r.catalog.All())
}

func unscored(records []models.ServiceRecord) []models.RankedResult {
	results := make([]models.RankedResult, len(records))
	for i, rec := range records {
		results[i] = models.RankedResult{Service: rec, SimilarityScore: 0}
	}
	return results
}

func (r *Retriever) cachedMatches(ctx context.Context, text string, topK int) ([]models.Match, bool) {
	if r.cache == nil {
		return nil, false
	}
	matches, err := r.cache.GetMatches(ctx, text, topK)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.log.Warn("retrieval cache read failed", map[string]interface{}{"error": err})
		}
		return nil, false
	}
	return matches, true
}

func (r *Retriever) storeMatches(ctx context.Context, text string, topK int, matches []models.Match) {
	if r.cache == nil {
		return
	}
	if err := r.cache.SetMatches(ctx, text, topK, matches); err != nil {
		r.log.Warn("retrieval cache write failed", map[string]interface{}{"error": err})
	}
}
