// Package handlers содержит HTTP обработчики REST API поиска локальных сервисов.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/akozadaev/go_service_finder/internal/catalog"
	"github.com/akozadaev/go_service_finder/internal/chat"
	"github.com/akozadaev/go_service_finder/internal/export"
	"github.com/akozadaev/go_service_finder/internal/llm"
	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/models"
	"github.com/akozadaev/go_service_finder/internal/search"
)

const maxBodyBytes = 1 << 20

// Recommender формирует текстовую рекомендацию по результатам поиска.
type Recommender interface {
	Enabled() bool
	Recommend(ctx context.Context, qc models.QueryContext, results []models.RankedResult) (string, error)
}

// Handlers содержит зависимости для обработки HTTP запросов.
type Handlers struct {
	pipeline    *search.Pipeline
	catalog     *catalog.Catalog
	recommender Recommender // может быть nil
	log         logger.Logger
	now         func() time.Time
}

// NewHandlers создает новый экземпляр Handlers.
func NewHandlers(pipeline *search.Pipeline, cat *catalog.Catalog, recommender Recommender, log logger.Logger) *Handlers {
	return &Handlers{
		pipeline:    pipeline,
		catalog:     cat,
		recommender: recommender,
		log:         log,
		now:         time.Now,
	}
}

// Register регистрирует маршруты API в роутере.
func (h *Handlers) Register(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/services/search", h.SearchServices).Methods(http.MethodPost)
	router.HandleFunc("/services/export", h.ExportResults).Methods(http.MethodPost)
	router.HandleFunc("/services/{id}", h.GetService).Methods(http.MethodGet)
	router.HandleFunc("/chat", h.Chat).Methods(http.MethodPost)
	router.HandleFunc("/categories", h.GetCategories).Methods(http.MethodGet)
	router.HandleFunc("/cities", h.GetCities).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.GetStats).Methods(http.MethodGet)
}

// SearchServices обрабатывает POST запрос на поиск сервисов.
// Эндпоинт: POST /services/search
//
// @Summary      Найти сервисы
// @Description  Нормализует запрос, получает кандидатов из векторного индекса (или каталога при его недоступности), фильтрует по категории, городу, цене и рейтингу и сортирует по расстоянию до пользователя.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request  body      models.SearchRequest  true  "Поисковый запрос"
// @Success      200      {object}  models.SearchResponse
// @Failure      400      {object}  map[string]string  "Неверный запрос"
// @Router       /services/search [post]
func (h *Handlers) SearchServices(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.pipeline.Search(r.Context(), req)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	cards := result.Cards()
	h.writeJSON(w, http.StatusOK, models.SearchResponse{
		Query:    result.Query,
		Results:  cards,
		Total:    len(cards),
		Fallback: result.Fallback,
	})
}

// Chat обрабатывает сообщение чата: на приветствия и благодарности отвечает сразу,
// остальное ищет и дополняет рекомендацией LLM.
// Эндпоинт: POST /chat
//
// @Summary      Сообщение ассистенту
// @Description  Распознает разговорные реплики, иначе выполняет поиск и добавляет рекомендацию.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Param        request  body      models.ChatRequest  true  "Сообщение пользователя"
// @Success      200      {object}  models.ChatResponse
// @Failure      400      {object}  map[string]string  "Неверный запрос"
// @Router       /chat [post]
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if !h.decode(w, r, &req) {
		return
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		h.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if chat.IsConversational(message) {
		h.writeJSON(w, http.StatusOK, models.ChatResponse{
			Reply:          chat.Reply(message),
			Conversational: true,
		})
		return
	}

	searchReq := req.SearchRequest
	searchReq.Query = message
	result, err := h.pipeline.Search(r.Context(), searchReq)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	resp := models.ChatResponse{Results: result.Cards()}
	if len(result.Results) == 0 {
		resp.Reply = "No services found matching your criteria. Try adjusting the filters or describing what you need differently."
		h.writeJSON(w, http.StatusOK, resp)
		return
	}

	resp.Reply = fmt.Sprintf("Found %d services matching your request.", len(result.Results))
	if h.recommender != nil && h.recommender.Enabled() {
		text, err := h.recommender.Recommend(r.Context(), result.Query, result.Results)
		if err != nil {
			text = llm.FallbackText(err)
		}
		resp.Recommendation = text
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// ExportResults выполняет поиск и отдает результаты файлом JSON.
// Эндпоинт: POST /services/export
//
// @Summary      Выгрузить результаты поиска
// @Description  Возвращает результаты поиска в виде JSON файла с запросом, количеством и временем выгрузки.
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        request  body      models.SearchRequest  true  "Поисковый запрос"
// @Success      200      {object}  export.Document
// @Failure      400      {object}  map[string]string  "Неверный запрос"
// @Failure      500      {object}  map[string]string  "Внутренняя ошибка сервера"
// @Router       /services/export [post]
func (h *Handlers) ExportResults(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !h.decode(w, r, &req) {
		return
	}

	result, err := h.pipeline.Search(r.Context(), req)
	if err != nil {
		h.writeSearchError(w, err)
		return
	}

	now := h.now()
	data, err := export.NewDocument(req.Query, result.Results, now).Marshal()
	if err != nil {
		h.log.Error("error building export", map[string]interface{}{"error": err})
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(now)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.log.Warn("error writing export", map[string]interface{}{"error": err})
	}
}

// GetService возвращает запись каталога по идентификатору.
// Эндпоинт: GET /services/{id}
//
// @Summary      Получить сервис
// @Description  Возвращает карточку сервиса из каталога по идентификатору
// @Tags         services
// @Produce      json
// @Param        id   path      string  true  "Идентификатор сервиса"
// @Success      200  {object}  models.ServiceRecord
// @Failure      404  {object}  map[string]string  "Сервис не найден"
// @Router       /services/{id} [get]
func (h *Handlers) GetService(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rec, ok := h.catalog.Get(id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "Service not found")
		return
	}
	h.writeJSON(w, http.StatusOK, rec)
}

// GetCategories возвращает словарь категорий с ключевыми словами.
// Эндпоинт: GET /categories
//
// @Summary      Список категорий
// @Tags         dictionaries
// @Produce      json
// @Success      200  {array}   models.Category
// @Router       /categories [get]
func (h *Handlers) GetCategories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.pipeline.Normalizer().Categories())
}

// GetCities возвращает справочник городов и районов с координатами, по алфавиту.
// Эндпоинт: GET /cities
//
// @Summary      Список городов
// @Tags         dictionaries
// @Produce      json
// @Success      200  {array}   models.City
// @Router       /cities [get]
func (h *Handlers) GetCities(w http.ResponseWriter, r *http.Request) {
	gazetteer := h.pipeline.Normalizer().Gazetteer()
	names := gazetteer.SortedNames()
	cities := make([]models.City, 0, len(names))
	for _, name := range names {
		if c, ok := gazetteer.City(name); ok {
			cities = append(cities, c)
		}
	}
	h.writeJSON(w, http.StatusOK, cities)
}

// GetStats возвращает статистику каталога.
// Эндпоинт: GET /stats
//
// @Summary      Статистика каталога
// @Tags         dictionaries
// @Produce      json
// @Success      200  {object}  models.CatalogStats
// @Router       /stats [get]
func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.catalog.Stats())
}

// HealthCheck обрабатывает GET запрос на проверку работоспособности сервиса.
// Эндпоинт: GET /health
//
// @Summary      Проверка работоспособности сервиса
// @Description  Возвращает статус сервиса и размер загруженного каталога.
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"services": h.catalog.Len(),
	})
}

func (h *Handlers) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.log.Debug("invalid request body", map[string]interface{}{"error": err, "path": r.URL.Path})
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func (h *Handlers) writeSearchError(w http.ResponseWriter, err error) {
	var be *search.BoundsError
	if errors.As(err, &be) {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": be.Error(),
			"field": be.Field,
		})
		return
	}
	h.log.Error("error searching services", map[string]interface{}{"error": err})
	h.writeError(w, http.StatusInternalServerError, "Internal server error")
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn("error encoding response", map[string]interface{}{"error": err})
	}
}
