// Package config предоставляет загрузку конфигурации приложения из переменных окружения и .env.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Поддерживаемые бэкенды векторного индекса.
const (
	BackendElasticsearch = "elasticsearch"
	BackendQdrant        = "qdrant"
	BackendNone          = "none"
)

// Config содержит все параметры конфигурации приложения.
// Значения загружаются из переменных окружения с fallback на значения по умолчанию.
type Config struct {
	AppPort   string // Порт для HTTP сервера
	LogLevel  string // debug, info, warn, error
	LogFormat string // json или console

	CatalogPath string // Путь к JSON файлу каталога

	VectorBackend      string // elasticsearch, qdrant или none
	ElasticsearchURL   string // URL для подключения к Elasticsearch
	ElasticsearchIndex string // Имя индекса с эмбеддингами сервисов
	QdrantAddr         string // gRPC адрес Qdrant
	QdrantCollection   string // Имя коллекции Qdrant
	OllamaURL          string // URL сервиса эмбеддингов Ollama
	EmbeddingModel     string // Модель эмбеддингов
	EmbeddingDims      int    // Размерность векторов

	PostgresEnabled  bool   // Загружать ли справочники из PostgreSQL
	PostgresHost     string // Хост PostgreSQL
	PostgresPort     string // Порт PostgreSQL
	PostgresUser     string // Пользователь PostgreSQL
	PostgresPassword string // Пароль PostgreSQL
	PostgresDB       string // Имя базы данных PostgreSQL

	RedisAddr     string        // Адрес Redis; пустое значение отключает кэш
	RedisPassword string        // Пароль Redis
	RedisDB       int           // Номер базы Redis
	CacheTTL      time.Duration // Время жизни кэша результатов поиска

	GeminiAPIKey         string        // Ключ API; пустое значение отключает LLM
	GeminiModel          string        // Модель Gemini
	GeminiURL            string        // Базовый URL Generative Language API
	LLMTimeout           time.Duration // Таймаут вызова LLM
	LLMRequestsPerMinute int           // Локальный лимит запросов к LLM

	RetrievalTimeout   time.Duration // Таймаут запроса к векторному индексу
	CandidatePool      int           // Сколько кандидатов запрашивать у индекса
	DefaultResultLimit int           // Количество результатов по умолчанию
	MaxResultLimit     int           // Максимально допустимое количество результатов
}

// PostgresDSN возвращает строку подключения к PostgreSQL.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresDB,
	)
}

// Load загружает конфигурацию из .env (если файл есть) и переменных окружения.
// Если переменная не установлена, используется значение по умолчанию.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:   v.GetString("APP_PORT"),
		LogLevel:  strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat: strings.ToLower(v.GetString("LOG_FORMAT")),

		CatalogPath: v.GetString("CATALOG_PATH"),

		VectorBackend:      strings.ToLower(v.GetString("VECTOR_BACKEND")),
		ElasticsearchURL:   v.GetString("ELASTICSEARCH_URL"),
		ElasticsearchIndex: v.GetString("ELASTICSEARCH_INDEX"),
		QdrantAddr:         v.GetString("QDRANT_ADDR"),
		QdrantCollection:   v.GetString("QDRANT_COLLECTION"),
		OllamaURL:          v.GetString("OLLAMA_URL"),
		EmbeddingModel:     v.GetString("EMBEDDING_MODEL"),
		EmbeddingDims:      v.GetInt("EMBEDDING_DIMS"),

		PostgresEnabled:  v.GetBool("POSTGRES_ENABLED"),
		PostgresHost:     v.GetString("POSTGRES_HOST"),
		PostgresPort:     v.GetString("POSTGRES_PORT"),
		PostgresUser:     v.GetString("POSTGRES_USER"),
		PostgresPassword: v.GetString("POSTGRES_PASSWORD"),
		PostgresDB:       v.GetString("POSTGRES_DB"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),

		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		GeminiModel:          v.GetString("GEMINI_MODEL"),
		GeminiURL:            v.GetString("GEMINI_URL"),
		LLMTimeout:           v.GetDuration("LLM_TIMEOUT"),
		LLMRequestsPerMinute: v.GetInt("LLM_REQUESTS_PER_MINUTE"),

		RetrievalTimeout:   v.GetDuration("RETRIEVAL_TIMEOUT"),
		CandidatePool:      v.GetInt("CANDIDATE_POOL"),
		DefaultResultLimit: v.GetInt("DEFAULT_RESULT_LIMIT"),
		MaxResultLimit:     v.GetInt("MAX_RESULT_LIMIT"),
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CATALOG_PATH", "data/services.json")

	v.SetDefault("VECTOR_BACKEND", BackendElasticsearch)
	v.SetDefault("ELASTICSEARCH_URL", "http://localhost:9200")
	v.SetDefault("ELASTICSEARCH_INDEX", "services")
	v.SetDefault("QDRANT_ADDR", "localhost:6334")
	v.SetDefault("QDRANT_COLLECTION", "services")
	v.SetDefault("OLLAMA_URL", "http://localhost:11434")
	v.SetDefault("EMBEDDING_MODEL", "nomic-embed-text")
	v.SetDefault("EMBEDDING_DIMS", 768)

	v.SetDefault("POSTGRES_ENABLED", false)
	v.SetDefault("POSTGRES_HOST", "localhost")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "finder_user")
	v.SetDefault("POSTGRES_PASSWORD", "finder_pass")
	v.SetDefault("POSTGRES_DB", "service_finder")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", 10*time.Minute)

	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-1.5-pro")
	v.SetDefault("GEMINI_URL", "https://generativelanguage.googleapis.com")
	v.SetDefault("LLM_TIMEOUT", 15*time.Second)
	v.SetDefault("LLM_REQUESTS_PER_MINUTE", 30)

	v.SetDefault("RETRIEVAL_TIMEOUT", 2*time.Second)
	v.SetDefault("CANDIDATE_POOL", 50)
	v.SetDefault("DEFAULT_RESULT_LIMIT", 10)
	v.SetDefault("MAX_RESULT_LIMIT", 50)
}

func validate(cfg *Config) error {
	switch cfg.VectorBackend {
	case BackendElasticsearch, BackendQdrant, BackendNone:
	default:
		return fmt.Errorf("unknown VECTOR_BACKEND %q", cfg.VectorBackend)
	}
	if cfg.CatalogPath == "" {
		return errors.New("CATALOG_PATH is required")
	}
	if cfg.EmbeddingDims <= 0 {
		return errors.New("EMBEDDING_DIMS must be positive")
	}
	if cfg.CandidatePool <= 0 {
		return errors.New("CANDIDATE_POOL must be positive")
	}
	if cfg.DefaultResultLimit <= 0 || cfg.MaxResultLimit <= 0 {
		return errors.New("result limits must be positive")
	}
	if cfg.DefaultResultLimit > cfg.MaxResultLimit {
		return fmt.Errorf("DEFAULT_RESULT_LIMIT (%d) > MAX_RESULT_LIMIT (%d)", cfg.DefaultResultLimit, cfg.MaxResultLimit)
	}
	if cfg.RetrievalTimeout <= 0 || cfg.LLMTimeout <= 0 {
		return errors.New("timeouts must be positive")
	}
	if cfg.LLMRequestsPerMinute <= 0 {
		return errors.New("LLM_REQUESTS_PER_MINUTE must be positive")
	}
	return nil
}
