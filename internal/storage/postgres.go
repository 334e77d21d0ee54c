package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// PostgresStorage читает справочники категорий и городов из PostgreSQL.
type PostgresStorage struct {
	db *sql.DB // Подключение к базе данных PostgreSQL
}

// NewPostgresStorage создает новый экземпляр PostgresStorage и устанавливает подключение к БД.
// DSN должен быть в формате: "host=... port=... user=... password=... dbname=... sslmode=..."
func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewPostgresStorageFromDB(db), nil
}

// NewPostgresStorageFromDB оборачивает уже открытое подключение.
func NewPostgresStorageFromDB(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Close закрывает подключение к базе данных PostgreSQL.
func (ps *PostgresStorage) Close() error {
	return ps.db.Close()
}

// GetCategories возвращает категории сервисов с ключевыми словами для нормализатора.
// Порядок задается колонкой priority, затем именем.
func (ps *PostgresStorage) GetCategories(ctx context.Context) ([]models.Category, error) {
	query := `SELECT name, keywords FROM service_categories ORDER BY priority, name`

	rows, err := ps.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query service categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		var keywords pq.StringArray
		if err := rows.Scan(&c.Name, &keywords); err != nil {
			return nil, fmt.Errorf("failed to scan service category: %w", err)
		}
		c.Keywords = []string(keywords)
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return categories, nil
}

// GetCities возвращает города и районы с координатами центра.
// Для районов parent_city содержит название города.
func (ps *PostgresStorage) GetCities(ctx context.Context) ([]models.City, error) {
	query := `SELECT name, parent_city, lat, lon FROM cities ORDER BY parent_city NULLS LAST, name`

	rows, err := ps.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cities: %w", err)
	}
	defer rows.Close()

	var cities []models.City
	for rows.Next() {
		var c models.City
		var parent sql.NullString
		if err := rows.Scan(&c.Name, &parent, &c.Coordinates.Lat, &c.Coordinates.Lon); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		if parent.Valid {
			c.Parent = parent.String
		}
		if !c.Coordinates.Valid() {
			return nil, fmt.Errorf("city %q has invalid coordinates", c.Name)
		}
		cities = append(cities, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return cities, nil
}
