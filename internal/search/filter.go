package search

import (
	"strings"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// Filter оставляет кандидатов, удовлетворяющих всем заданным подсказкам, в исходном порядке.
// Запись без цены проходит фильтр по цене, запись без рейтинга не проходит фильтр по рейтингу.
func Filter(candidates []models.RankedResult, qc models.QueryContext) []models.RankedResult {
	out := make([]models.RankedResult, 0, len(candidates))
	for _, c := range candidates {
		if Matches(c.Service, qc) {
			out = append(out, c)
		}
	}
	return out
}

// Matches проверяет одну запись против подсказок запроса.
func Matches(rec models.ServiceRecord, qc models.QueryContext) bool {
	if hint := strings.TrimSpace(qc.CategoryHint); hint != "" {
		if !strings.EqualFold(strings.TrimSpace(rec.Category), hint) {
			return false
		}
	}
	if hint := strings.TrimSpace(qc.CityHint); hint != "" {
		if !strings.Contains(strings.ToLower(rec.City), strings.ToLower(hint)) {
			return false
		}
	}
	if qc.MaxPrice != nil && rec.Price != nil && *rec.Price > *qc.MaxPrice {
		return false
	}
	if qc.MinRating != nil {
		if rec.Rating == nil || *rec.Rating < *qc.MinRating {
			return false
		}
	}
	return true
}
