package search

import (
	"math"
	"sort"

	"github.com/akozadaev/go_service_finder/internal/geo"
	"github.com/akozadaev/go_service_finder/internal/models"
)

// RankByDistance проставляет расстояние до пользователя и сортирует по возрастанию.
// Записи без координат получают +Inf и оказываются в конце. Сортировка устойчивая:
// при равных расстояниях сохраняется порядок по релевантности. Без координат
// пользователя порядок не меняется. Входной срез не изменяется.
func RankByDistance(results []models.RankedResult, user *models.GeoPoint) []models.RankedResult {
	out := make([]models.RankedResult, len(results))
	copy(out, results)
	if user == nil {
		return out
	}

	for i := range out {
		d := math.Inf(1)
		if c := out[i].Service.Coordinates; c != nil {
			d = geo.Haversine(*user, *c)
		}
		out[i].DistanceKm = &d
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	return out
}
