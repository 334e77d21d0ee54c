package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/metrics"
	"github.com/akozadaev/go_service_finder/internal/models"
)

// Исходы поиска для метрик.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeEmpty    = "empty"
	OutcomeInvalid  = "invalid"
)

// Result - итог работы конвейера по одному запросу.
type Result struct {
	Query          models.QueryContext
	Results        []models.RankedResult
	Fallback       bool
	FallbackReason string
}

// Cards возвращает результаты в виде карточек для ответа API.
func (r *Result) Cards() []models.ServiceCard {
	return Cards(r.Results, r.Query.UserCoordinates)
}

// Pipeline связывает этапы Normalizer → Retriever → Filter → RankByDistance → Format.
// Состояния между запросами не хранит.
type Pipeline struct {
	normalizer    *Normalizer
	retriever     *Retriever
	candidatePool int
	log           logger.Logger
}

// NewPipeline создает конвейер. candidatePool - сколько кандидатов запрашивать у индекса
// до фильтрации; не меньше лимита результатов запроса.
func NewPipeline(normalizer *Normalizer, retriever *Retriever, candidatePool int, log logger.Logger) *Pipeline {
	return &Pipeline{
		normalizer:    normalizer,
		retriever:     retriever,
		candidatePool: candidatePool,
		log:           log,
	}
}

// Normalizer возвращает нормализатор конвейера.
func (p *Pipeline) Normalizer() *Normalizer {
	return p.normalizer
}

// Search выполняет полный поиск по запросу API. Возвращает ошибку только для
// некорректных границ запроса (ErrInvalidQueryBounds).
func (p *Pipeline) Search(ctx context.Context, req models.SearchRequest) (*Result, error) {
	start := time.Now()
	qc, err := p.normalizer.NormalizeRequest(req)
	metrics.ObserveStage("normalize", start)
	if err != nil {
		metrics.SearchRequests.WithLabelValues(OutcomeInvalid).Inc()
		var be *BoundsError
		if errors.As(err, &be) {
			p.log.Debug("rejected search request", map[string]interface{}{"field": be.Field, "reason": be.Reason})
		}
		return nil, err
	}
	return p.Run(ctx, qc), nil
}

// Run выполняет этапы после нормализации.
func (p *Pipeline) Run(ctx context.Context, qc models.QueryContext) *Result {
	k := max(p.candidatePool, qc.ResultLimit)

	start := time.Now()
	retrieval := p.retriever.Retrieve(ctx, searchText(qc), k)
	metrics.ObserveStage("retrieve", start)

	candidates := retrieval.Results
	if retrieval.Fallback {
		candidates = p.retriever.Scan()
	}

	start = time.Now()
	filtered := Filter(candidates, qc)
	metrics.ObserveStage("filter", start)

	start = time.Now()
	ranked := RankByDistance(filtered, qc.UserCoordinates)
	metrics.ObserveStage("rank", start)

	start = time.Now()
	results := Format(ranked, qc.ResultLimit)
	metrics.ObserveStage("format", start)

	outcome := OutcomeOK
	switch {
	case len(results) == 0:
		outcome = OutcomeEmpty
	case retrieval.Fallback:
		outcome = OutcomeFallback
	}
	metrics.SearchRequests.WithLabelValues(outcome).Inc()

	p.log.Info("search completed", map[string]interface{}{
		"query":      qc.RawText,
		"category":   qc.CategoryHint,
		"city":       qc.CityHint,
		"candidates": len(candidates),
		"filtered":   len(filtered),
		"returned":   len(results),
		"fallback":   retrieval.Fallback,
		"cached":     retrieval.Cached,
	})

	return &Result{
		Query:          qc,
		Results:        results,
		Fallback:       retrieval.Fallback,
		FallbackReason: retrieval.Reason,
	}
}

// searchText - текст для векторного индекса. Если пользователь задал только категорию,
// ищем по ее названию.
func searchText(qc models.QueryContext) string {
	if text := strings.TrimSpace(qc.SearchText()); text != "" {
		return text
	}
	return qc.CategoryHint
}
