package search

import (
	"fmt"

	"github.com/akozadaev/go_service_finder/internal/contact"
	"github.com/akozadaev/go_service_finder/internal/models"
)

// Format обрезает результаты до limit. Если результатов меньше, возвращаются все.
func Format(ranked []models.RankedResult, limit int) []models.RankedResult {
	if limit < 0 {
		limit = 0
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	out := make([]models.RankedResult, limit)
	copy(out, ranked[:limit])
	return out
}

// Cards превращает результаты в карточки для отображения: текст расстояния, цена и ссылки.
func Cards(results []models.RankedResult, user *models.GeoPoint) []models.ServiceCard {
	cards := make([]models.ServiceCard, len(results))
	for i, r := range results {
		cards[i] = models.ServiceCard{
			RankedResult: r,
			DistanceText: distanceText(r, user),
			PriceText:    priceText(r.Service.Price),
			Links:        contact.Links(r.Service, user),
		}
	}
	return cards
}

func distanceText(r models.RankedResult, user *models.GeoPoint) string {
	if user == nil {
		return ""
	}
	if !r.HasKnownDistance() {
		return "Distance unknown"
	}
	return fmt.Sprintf("%.1f km away", *r.DistanceKm)
}

func priceText(price *int) string {
	if price == nil {
		return ""
	}
	return fmt.Sprintf("₹%d", *price)
}
