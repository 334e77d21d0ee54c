// @title           Local Service Finder API
// @version         1.0
// @description     REST API для поиска локальных сервисов. Запрос на естественном языке нормализуется, кандидаты берутся из векторного индекса, фильтруются и сортируются по расстоянию до пользователя.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.email  akozadaev@inbox.ru
// @contact.url    https://github.com/akozadaev/go_service_finder

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /

// @schemes   http https
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/akozadaev/go_service_finder/docs" // swagger docs
	"github.com/akozadaev/go_service_finder/internal/cache"
	"github.com/akozadaev/go_service_finder/internal/catalog"
	"github.com/akozadaev/go_service_finder/internal/config"
	"github.com/akozadaev/go_service_finder/internal/geo"
	"github.com/akozadaev/go_service_finder/internal/handlers"
	"github.com/akozadaev/go_service_finder/internal/llm"
	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/metrics"
	"github.com/akozadaev/go_service_finder/internal/models"
	"github.com/akozadaev/go_service_finder/internal/search"
	"github.com/akozadaev/go_service_finder/internal/semantic"
	"github.com/akozadaev/go_service_finder/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()

	cat, report, err := catalog.LoadFile(cfg.CatalogPath, log)
	if err != nil {
		log.Error("error loading catalog", map[string]interface{}{"error": err, "path": cfg.CatalogPath})
		os.Exit(1)
	}
	metrics.CatalogRecords.Set(float64(report.Loaded))

	// Исходящие HTTP запросы (эмбеддинги, Elasticsearch, Gemini) трассируются через otelhttp
	httpClient := &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	index, closeIndex := newVectorIndex(cfg, httpClient, log)
	defer closeIndex()

	var matchCache search.MatchCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
			Prefix:   cache.DefaultPrefix,
		})
		if err != nil {
			log.Warn("redis unavailable, retrieval cache disabled", map[string]interface{}{"error": err})
		} else {
			defer rc.Close()
			matchCache = rc
			log.Info("connected to redis", map[string]interface{}{"addr": cfg.RedisAddr})
		}
	}

	categories, gazetteer := loadDictionaries(ctx, cfg, log)

	normalizer := search.NewNormalizer(search.NormalizerOptions{
		Categories:   categories,
		Gazetteer:    gazetteer,
		DefaultLimit: cfg.DefaultResultLimit,
		MaxLimit:     cfg.MaxResultLimit,
	})
	retriever := search.NewRetriever(cat, index, matchCache, cfg.RetrievalTimeout, log)
	pipeline := search.NewPipeline(normalizer, retriever, cfg.CandidatePool, log)

	recommender := llm.NewClient(llm.Config{
		APIKey:            cfg.GeminiAPIKey,
		Model:             cfg.GeminiModel,
		BaseURL:           cfg.GeminiURL,
		Timeout:           cfg.LLMTimeout,
		RequestsPerMinute: cfg.LLMRequestsPerMinute,
	}, httpClient, log)
	if !recommender.Enabled() {
		log.Info("GEMINI_API_KEY is not set, recommendations disabled", nil)
	}

	h := handlers.NewHandlers(pipeline, cat, recommender, log)

	// Настройка роутера
	router := mux.NewRouter()
	h.Register(router)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	// Настройка CORS
	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.AppPort,
		Handler:      otelhttp.NewHandler(router, "service-finder"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("server starting", map[string]interface{}{"port": cfg.AppPort, "backend": cfg.VectorBackend})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", map[string]interface{}{"error": err})
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", map[string]interface{}{"error": err})
		return
	}

	log.Info("server exited", nil)
}

// newVectorIndex собирает векторный индекс выбранного бэкенда. При ошибке конфигурации
// возвращает nil: поиск продолжит работать по каталогу.
func newVectorIndex(cfg *config.Config, httpClient *http.Client, log logger.Logger) (search.VectorIndex, func()) {
	embedder := semantic.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, httpClient)

	switch cfg.VectorBackend {
	case config.BackendElasticsearch:
		esClient, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses:         []string{cfg.ElasticsearchURL},
			Transport:         httpClient.Transport,
			DisableMetaHeader: true,
		})
		if err != nil {
			log.Warn("error creating elasticsearch client, using catalog fallback", map[string]interface{}{"error": err})
			return nil, func() {}
		}
		es := storage.NewElasticsearchStorageWithURL(esClient, cfg.ElasticsearchIndex, cfg.ElasticsearchURL, httpClient)
		log.Info("elasticsearch vector index configured", map[string]interface{}{"url": cfg.ElasticsearchURL, "index": cfg.ElasticsearchIndex})
		return semantic.NewIndex(embedder, es), func() {}

	case config.BackendQdrant:
		qs, err := storage.NewQdrantStorage(cfg.QdrantAddr, cfg.QdrantCollection)
		if err != nil {
			log.Warn("error creating qdrant client, using catalog fallback", map[string]interface{}{"error": err})
			return nil, func() {}
		}
		log.Info("qdrant vector index configured", map[string]interface{}{"addr": cfg.QdrantAddr, "collection": cfg.QdrantCollection})
		return semantic.NewIndex(embedder, qs), func() { _ = qs.Close() }

	default:
		log.Info("vector index disabled, using catalog order", nil)
		return nil, func() {}
	}
}

// loadDictionaries возвращает словарь категорий и справочник городов. Если включен PostgreSQL,
// категории из базы заменяют встроенные, а города дополняют встроенный справочник.
func loadDictionaries(ctx context.Context, cfg *config.Config, log logger.Logger) ([]models.Category, *geo.Gazetteer) {
	categories := search.DefaultCategories()
	gazetteer := geo.DefaultGazetteer()
	if !cfg.PostgresEnabled {
		return categories, gazetteer
	}

	pg, err := storage.NewPostgresStorage(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Warn("postgres unavailable, using built-in dictionaries", map[string]interface{}{"error": err})
		return categories, gazetteer
	}
	defer pg.Close()

	if dbCategories, err := pg.GetCategories(ctx); err != nil {
		log.Warn("error loading categories", map[string]interface{}{"error": err})
	} else if len(dbCategories) > 0 {
		categories = dbCategories
	}

	if dbCities, err := pg.GetCities(ctx); err != nil {
		log.Warn("error loading cities", map[string]interface{}{"error": err})
	} else {
		gazetteer = gazetteer.Merge(dbCities)
	}

	log.Info("dictionaries loaded from postgres", map[string]interface{}{
		"categories": len(categories),
		"cities":     len(gazetteer.Names()),
	})
	return categories, gazetteer
}
