package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/akozadaev/go_service_finder/internal/cache"
	"github.com/akozadaev/go_service_finder/internal/catalog"
	"github.com/akozadaev/go_service_finder/internal/config"
	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/models"
	"github.com/akozadaev/go_service_finder/internal/semantic"
	"github.com/akozadaev/go_service_finder/internal/storage"
)

func main() {
	recreate := flag.Bool("recreate", false, "удалить индекс Elasticsearch перед загрузкой")
	serviceID := flag.String("id", "", "переиндексировать одну запись каталога в Elasticsearch")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.NewStructured(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync() //nolint:errcheck

	ctx := context.Background()
	if *serviceID != "" {
		err = runSingle(ctx, cfg, *serviceID, log)
	} else {
		err = run(ctx, cfg, *recreate, log)
	}
	if err != nil {
		log.Error("indexing failed", map[string]interface{}{"error": err})
		os.Exit(1)
	}
	log.Info("indexing completed successfully", nil)
}

func run(ctx context.Context, cfg *config.Config, recreate bool, log logger.Logger) error {
	cat, _, err := catalog.LoadFile(cfg.CatalogPath, log)
	if err != nil {
		return err
	}

	embedder := semantic.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, nil)
	log.Info("embedding catalog", map[string]interface{}{"records": cat.Len(), "model": cfg.EmbeddingModel})

	services, err := semantic.EmbedRecords(ctx, embedder, cat.All(), log)
	if err != nil {
		return err
	}

	switch cfg.VectorBackend {
	case config.BackendElasticsearch:
		err = indexElasticsearch(ctx, cfg, services, recreate, log)
	case config.BackendQdrant:
		err = indexQdrant(ctx, cfg, services, log)
	default:
		log.Warn("VECTOR_BACKEND is none, nothing to index", nil)
		return nil
	}
	if err != nil {
		return err
	}

	flushCache(ctx, cfg, log)
	return nil
}

func newElasticsearchStorage(cfg *config.Config) (*storage.ElasticsearchStorage, error) {
	esClient, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:         []string{cfg.ElasticsearchURL},
		DisableMetaHeader: true,
	})
	if err != nil {
		return nil, err
	}
	return storage.NewElasticsearchStorageWithURL(esClient, cfg.ElasticsearchIndex, cfg.ElasticsearchURL, http.DefaultClient), nil
}

func indexElasticsearch(ctx context.Context, cfg *config.Config, services []models.IndexedService, recreate bool, log logger.Logger) error {
	es, err := newElasticsearchStorage(cfg)
	if err != nil {
		return err
	}
	if recreate {
		if err := es.DeleteIndex(ctx); err != nil {
			return err
		}
		log.Info("elasticsearch index deleted", map[string]interface{}{"index": cfg.ElasticsearchIndex})
	}
	if err := es.CreateIndex(ctx, storage.ServiceIndexMapping(cfg.EmbeddingDims)); err != nil {
		return err
	}

	log.Info("indexing services", map[string]interface{}{"count": len(services), "index": cfg.ElasticsearchIndex})
	return es.BulkIndexServices(ctx, services)
}

func indexQdrant(ctx context.Context, cfg *config.Config, services []models.IndexedService, log logger.Logger) error {
	qs, err := storage.NewQdrantStorage(cfg.QdrantAddr, cfg.QdrantCollection)
	if err != nil {
		return err
	}
	defer qs.Close()

	if err := qs.EnsureCollection(ctx, cfg.EmbeddingDims); err != nil {
		return err
	}

	log.Info("upserting services", map[string]interface{}{"count": len(services), "collection": cfg.QdrantCollection})
	return qs.UpsertServices(ctx, services)
}

// serviceIndex - операции с одним документом индекса.
type serviceIndex interface {
	GetService(ctx context.Context, id string) (*models.ServiceRecord, error)
	IndexService(ctx context.Context, service models.IndexedService) error
}

// runSingle переиндексирует одну запись каталога, не трогая остальные документы.
func runSingle(ctx context.Context, cfg *config.Config, id string, log logger.Logger) error {
	if cfg.VectorBackend != config.BackendElasticsearch {
		return fmt.Errorf("single record reindex requires VECTOR_BACKEND=%s", config.BackendElasticsearch)
	}

	cat, _, err := catalog.LoadFile(cfg.CatalogPath, log)
	if err != nil {
		return err
	}
	es, err := newElasticsearchStorage(cfg)
	if err != nil {
		return err
	}

	embedder := semantic.NewOllamaEmbedder(cfg.OllamaURL, cfg.EmbeddingModel, nil)
	if err := reindexService(ctx, es, embedder, cat, id, log); err != nil {
		return err
	}

	flushCache(ctx, cfg, log)
	return nil
}

func reindexService(ctx context.Context, index serviceIndex, embedder semantic.Embedder, cat *catalog.Catalog, id string, log logger.Logger) error {
	rec, ok := cat.Get(id)
	if !ok {
		return fmt.Errorf("service %q is not in the catalog", id)
	}

	action := "replaced"
	if _, err := index.GetService(ctx, id); errors.Is(err, storage.ErrServiceNotFound) {
		action = "created"
	} else if err != nil {
		return fmt.Errorf("failed to check indexed service: %w", err)
	}

	services, err := semantic.EmbedRecords(ctx, embedder, []models.ServiceRecord{rec}, log)
	if err != nil {
		return err
	}
	if err := index.IndexService(ctx, services[0]); err != nil {
		return err
	}

	log.Info("service reindexed", map[string]interface{}{"id": id, "action": action})
	return nil
}

// flushCache сбрасывает кэш ответов индекса: после переиндексации они устарели.
func flushCache(ctx context.Context, cfg *config.Config, log logger.Logger) {
	if cfg.RedisAddr == "" {
		return
	}
	rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
		Prefix:   cache.DefaultPrefix,
	})
	if err != nil {
		log.Warn("redis unavailable, cache not flushed", map[string]interface{}{"error": err})
		return
	}
	defer rc.Close()

	n, err := rc.Flush(ctx)
	if err != nil {
		log.Warn("error flushing retrieval cache", map[string]interface{}{"error": err})
		return
	}
	log.Info("retrieval cache flushed", map[string]interface{}{"keys": n})
}
