// Package export формирует JSON выгрузку результатов поиска.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// TimestampLayout - формат времени выгрузки.
const TimestampLayout = "2006-01-02 15:04:05"

// Document - содержимое файла выгрузки.
type Document struct {
	SearchQuery     string                `json:"search_query"`
	TotalServices   int                   `json:"total_services"`
	ExportTimestamp string                `json:"export_timestamp"`
	Services        []models.RankedResult `json:"services"`
}

// NewDocument собирает выгрузку из результатов в порядке ранжирования,
// вместе с оценкой релевантности и расстоянием.
func NewDocument(query string, results []models.RankedResult, now time.Time) Document {
	services := make([]models.RankedResult, len(results))
	copy(services, results)
	return Document{
		SearchQuery:     query,
		TotalServices:   len(services),
		ExportTimestamp: now.Format(TimestampLayout),
		Services:        services,
	}
}

// Filename возвращает имя файла выгрузки.
func Filename(now time.Time) string {
	return fmt.Sprintf("service_results_%d.json", now.Unix())
}

// Marshal сериализует выгрузку с отступами.
func (d Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return data, nil
}
