// Package storage содержит хранилища сервиса: векторные индексы в Elasticsearch
// и Qdrant, справочники в PostgreSQL.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// ErrServiceNotFound - запись отсутствует в индексе.
var ErrServiceNotFound = errors.New("service not found")

// ElasticsearchStorage хранит записи каталога с эмбеддингами и выполняет kNN поиск.
// Bulk, get и search идут прямым HTTP запросом. kNN поиск использует синтаксис
// Elasticsearch 8 (секция knn верхнего уровня) и с OpenSearch не совместим.
type ElasticsearchStorage struct {
	client     *elasticsearch.Client // Официальный клиент Elasticsearch
	index      string                // Имя индекса сервисов
	httpClient *http.Client          // HTTP клиент для прямых запросов
	baseURL    string                // Базовый URL Elasticsearch
}

// NewElasticsearchStorageWithURL создает хранилище с указанным URL и HTTP клиентом.
// Если httpClient nil, используется http.DefaultClient.
func NewElasticsearchStorageWithURL(client *elasticsearch.Client, index, baseURL string, httpClient *http.Client) *ElasticsearchStorage {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &ElasticsearchStorage{
		client:     client,
		index:      index,
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// serviceDocument - документ индекса: поля записи, точка для geo запросов, текст и вектор.
type serviceDocument struct {
	models.ServiceRecord
	Location  *models.GeoPoint `json:"location,omitempty"`
	Document  string           `json:"document"`
	Embedding []float32        `json:"embedding"`
}

func newServiceDocument(s models.IndexedService) serviceDocument {
	return serviceDocument{
		ServiceRecord: s.Record,
		Location:      s.Record.Coordinates,
		Document:      s.Document,
		Embedding:     s.Embedding,
	}
}

// ServiceIndexMapping возвращает маппинг индекса сервисов для векторов размерности dims.
func ServiceIndexMapping(dims int) string {
	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":          map[string]interface{}{"type": "keyword"},
				"name":        map[string]interface{}{"type": "text"},
				"category":    map[string]interface{}{"type": "keyword"},
				"address":     map[string]interface{}{"type": "text"},
				"city":        map[string]interface{}{"type": "keyword"},
				"phone":       map[string]interface{}{"type": "keyword", "index": false},
				"rating":      map[string]interface{}{"type": "float"},
				"price":       map[string]interface{}{"type": "integer"},
				"coordinates": map[string]interface{}{"type": "object", "enabled": false},
				"location":    map[string]interface{}{"type": "geo_point"},
				"document":    map[string]interface{}{"type": "text"},
				"embedding": map[string]interface{}{
					"type":       "dense_vector",
					"dims":       dims,
					"index":      true,
					"similarity": "cosine",
				},
			},
		},
	}
	data, _ := json.Marshal(mapping)
	return string(data)
}

// CreateIndex создает индекс с заданным маппингом.
// Если индекс уже существует, функция возвращает nil без ошибки.
func (es *ElasticsearchStorage) CreateIndex(ctx context.Context, mappingJSON string) error {
	res, err := es.client.Indices.Exists([]string{es.index}, es.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = es.client.Indices.Create(
		es.index,
		es.client.Indices.Create.WithBody(strings.NewReader(mappingJSON)),
		es.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error creating index: %s", string(body))
	}

	return nil
}

// DeleteIndex удаляет индекс. Отсутствующий индекс не считается ошибкой.
func (es *ElasticsearchStorage) DeleteIndex(ctx context.Context) error {
	res, err := es.client.Indices.Delete([]string{es.index}, es.client.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to delete index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error deleting index: %s", string(body))
	}
	return nil
}

// IndexService индексирует одну запись. Существующий документ с тем же id заменяется.
func (es *ElasticsearchStorage) IndexService(ctx context.Context, service models.IndexedService) error {
	body, err := json.Marshal(newServiceDocument(service))
	if err != nil {
		return fmt.Errorf("failed to marshal service: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      es.index,
		DocumentID: service.Record.ID,
		Body:       bytes.NewReader(body),
		Refresh:    "true",
	}

	res, err := req.Do(ctx, es.client)
	if err != nil {
		return fmt.Errorf("failed to index service: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error indexing service: %s", string(body))
	}

	return nil
}

// BulkIndexServices индексирует записи одним запросом Bulk API.
func (es *ElasticsearchStorage) BulkIndexServices(ctx context.Context, services []models.IndexedService) error {
	if len(services) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, s := range services {
		meta := map[string]interface{}{
			"index": map[string]interface{}{
				"_index": es.index,
				"_id":    s.Record.ID,
			},
		}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("failed to encode meta: %w", err)
		}
		if err := enc.Encode(newServiceDocument(s)); err != nil {
			return fmt.Errorf("failed to encode service: %w", err)
		}
	}

	url := fmt.Sprintf("%s/_bulk?refresh=true", es.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-ndjson")

	res, err := es.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to bulk index: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("error bulk indexing: status %d, body: %s", res.StatusCode, string(body))
	}

	var result struct {
		Errors bool `json:"errors"`
		Items  []map[string]struct {
			ID     string          `json:"_id"`
			Status int             `json:"status"`
			Error  json.RawMessage `json:"error,omitempty"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if result.Errors {
		failed := []string{}
		for _, item := range result.Items {
			for _, op := range item {
				if op.Status >= 400 {
					failed = append(failed, op.ID)
				}
			}
		}
		return fmt.Errorf("bulk indexing failed for %d documents: %s", len(failed), strings.Join(failed, ", "))
	}

	return nil
}

// GetService получает запись по id. Возвращает ErrServiceNotFound, если документа нет.
func (es *ElasticsearchStorage) GetService(ctx context.Context, id string) (*models.ServiceRecord, error) {
	url := fmt.Sprintf("%s/%s/_doc/%s", es.baseURL, es.index, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	res, err := es.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get service: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrServiceNotFound
	}
	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("error getting service: status %d, body: %s", res.StatusCode, string(body))
	}

	var result struct {
		Found  bool                 `json:"found"`
		Source models.ServiceRecord `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.Found {
		return nil, ErrServiceNotFound
	}

	return &result.Source, nil
}

// SearchVector выполняет kNN поиск по полю embedding и возвращает id с оценками.
func (es *ElasticsearchStorage) SearchVector(ctx context.Context, vector []float32, k int) ([]models.Match, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(buildKNNQuery(vector, k)); err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	url := fmt.Sprintf("%s/%s/_search", es.baseURL, es.index)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := es.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("error searching: status %d, body: %s", res.StatusCode, string(body))
	}

	var result struct {
		Hits struct {
			Hits []struct {
				ID    string  `json:"_id"`
				Score float64 `json:"_score"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	matches := make([]models.Match, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		matches = append(matches, models.Match{ID: hit.ID, Score: hit.Score})
	}
	return matches, nil
}

// buildKNNQuery строит запрос kNN Elasticsearch 8 по полю embedding. num_candidates не меньше 100.
func buildKNNQuery(vector []float32, k int) map[string]interface{} {
	if k <= 0 {
		k = 10
	}
	return map[string]interface{}{
		"size":    k,
		"_source": false,
		"knn": map[string]interface{}{
			"field":          "embedding",
			"query_vector":   vector,
			"k":              k,
			"num_candidates": max(k*2, 100),
		},
	}
}
