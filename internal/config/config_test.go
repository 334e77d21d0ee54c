package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, BackendElasticsearch, cfg.VectorBackend)
	assert.Equal(t, "services", cfg.ElasticsearchIndex)
	assert.Equal(t, 768, cfg.EmbeddingDims)
	assert.Equal(t, 10, cfg.DefaultResultLimit)
	assert.Equal(t, 2*time.Second, cfg.RetrievalTimeout)
	assert.Empty(t, cfg.RedisAddr)
	assert.False(t, cfg.PostgresEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("VECTOR_BACKEND", "QDRANT")
	t.Setenv("RETRIEVAL_TIMEOUT", "500ms")
	t.Setenv("CANDIDATE_POOL", "80")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("POSTGRES_ENABLED", "true")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, BackendQdrant, cfg.VectorBackend)
	assert.Equal(t, 500*time.Millisecond, cfg.RetrievalTimeout)
	assert.Equal(t, 80, cfg.CandidatePool)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.True(t, cfg.PostgresEnabled)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown backend", "VECTOR_BACKEND", "milvus"},
		{"zero pool", "CANDIDATE_POOL", "0"},
		{"default above max", "DEFAULT_RESULT_LIMIT", "500"},
		{"zero dims", "EMBEDDING_DIMS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost:     "db",
		PostgresPort:     "5433",
		PostgresUser:     "u",
		PostgresPassword: "p",
		PostgresDB:       "finder",
	}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=finder sslmode=disable", cfg.PostgresDSN())
}
