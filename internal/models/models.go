package models

import (
	"encoding/json"
	"math"
	"strings"
)

// ServiceRecord представляет одну карточку сервиса из каталога.
// Каталог загружается один раз при старте и после этого не изменяется.
type ServiceRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Address     string    `json:"address"`
	City        string    `json:"city"`
	Phone       string    `json:"phone"`
	Rating      *float64  `json:"rating,omitempty"`      // 0.0-5.0, может отсутствовать
	Price       *int      `json:"price,omitempty"`       // одно репрезентативное значение в рупиях
	Coordinates *GeoPoint `json:"coordinates,omitempty"` // может отсутствовать
}

// GeoPoint представляет географические координаты
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid проверяет, что координаты лежат в допустимых диапазонах.
func (p GeoPoint) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// QueryContext описывает один пользовательский запрос после нормализации.
// Создается на каждый запрос и нигде не сохраняется.
type QueryContext struct {
	RawText         string    `json:"raw_text"`
	CategoryHint    string    `json:"category_hint,omitempty"`
	CityHint        string    `json:"city_hint,omitempty"`
	MaxPrice        *int      `json:"max_price,omitempty"`
	MinRating       *float64  `json:"min_rating,omitempty"`
	UserCoordinates *GeoPoint `json:"user_coordinates,omitempty"`
	ResultLimit     int       `json:"result_limit"`
	Expansions      []string  `json:"expansions,omitempty"` // синонимы для векторного поиска
}

// SearchText возвращает текст, который уходит во внешний векторный индекс:
// исходный запрос плюс синонимы.
func (q QueryContext) SearchText() string {
	if len(q.Expansions) == 0 {
		return q.RawText
	}
	return q.RawText + " " + strings.Join(q.Expansions, " ")
}

// IndexedService - запись каталога, подготовленная для векторного хранилища.
type IndexedService struct {
	Record    ServiceRecord
	Document  string // текст, по которому построен эмбеддинг
	Embedding []float32
}

// Match - пара (id, score), которую возвращает векторный индекс.
type Match struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}

// RankedResult - запись каталога с оценкой релевантности и расстоянием.
// Исходный ServiceRecord не изменяется.
type RankedResult struct {
	Service         ServiceRecord `json:"service"`
	SimilarityScore float64       `json:"similarity_score"`
	DistanceKm      *float64      `json:"distance_km,omitempty"` // +Inf для записей без координат
}

// HasKnownDistance сообщает, посчитано ли конечное расстояние.
func (r RankedResult) HasKnownDistance() bool {
	return r.DistanceKm != nil && !math.IsInf(*r.DistanceKm, 0) && !math.IsNaN(*r.DistanceKm)
}

// MarshalJSON убирает бесконечное расстояние: encoding/json не умеет +Inf.
func (r RankedResult) MarshalJSON() ([]byte, error) {
	type plain RankedResult
	out := plain(r)
	if !r.HasKnownDistance() {
		out.DistanceKm = nil
	}
	return json.Marshal(out)
}

// SearchRequest представляет запрос на поиск сервисов
type SearchRequest struct {
	Query     string   `json:"query"`
	Category  string   `json:"category,omitempty"`
	City      string   `json:"city,omitempty"`
	MaxPrice  *int     `json:"max_price,omitempty"`
	MinRating *float64 `json:"min_rating,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Location  string   `json:"location,omitempty"` // название города, если координат нет
	Limit     *int     `json:"limit,omitempty"`
}

// ContactLinks содержит ссылки для звонка, WhatsApp и навигации
type ContactLinks struct {
	Call       string `json:"call,omitempty"`
	WhatsApp   string `json:"whatsapp,omitempty"`
	Maps       string `json:"maps,omitempty"`
	Directions string `json:"directions,omitempty"`
}

// ServiceCard - результат поиска в виде, удобном для отображения
type ServiceCard struct {
	RankedResult
	DistanceText string       `json:"distance_text,omitempty"`
	PriceText    string       `json:"price_text,omitempty"`
	Links        ContactLinks `json:"links"`
}

// MarshalJSON нужен, потому что встроенный RankedResult иначе перехватил бы сериализацию.
func (c ServiceCard) MarshalJSON() ([]byte, error) {
	type card struct {
		Service         ServiceRecord `json:"service"`
		SimilarityScore float64       `json:"similarity_score"`
		DistanceKm      *float64      `json:"distance_km,omitempty"`
		DistanceText    string        `json:"distance_text,omitempty"`
		PriceText       string        `json:"price_text,omitempty"`
		Links           ContactLinks  `json:"links"`
	}
	out := card{
		Service:         c.Service,
		SimilarityScore: c.SimilarityScore,
		DistanceText:    c.DistanceText,
		PriceText:       c.PriceText,
		Links:           c.Links,
	}
	if c.HasKnownDistance() {
		out.DistanceKm = c.DistanceKm
	}
	return json.Marshal(out)
}

// SearchResponse представляет ответ с результатами поиска
type SearchResponse struct {
	Query    QueryContext  `json:"query"`
	Results  []ServiceCard `json:"results"`
	Total    int           `json:"total"`
	Fallback bool          `json:"fallback"` // true, если векторный индекс был недоступен
}

// ChatRequest представляет сообщение пользователя в чате
type ChatRequest struct {
	SearchRequest
	Message string `json:"message"`
}

// ChatResponse представляет ответ ассистента
type ChatResponse struct {
	Reply          string        `json:"reply"`
	Conversational bool          `json:"conversational"`
	Results        []ServiceCard `json:"results,omitempty"`
	Recommendation string        `json:"recommendation,omitempty"`
}

// Category представляет категорию сервиса из справочника
type Category struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

// City представляет город или район с координатами центра.
// Для района Parent содержит название города, к которому он относится.
type City struct {
	Name        string   `json:"name"`
	Parent      string   `json:"parent,omitempty"`
	Coordinates GeoPoint `json:"coordinates"`
}

// CatalogStats содержит статистику каталога
type CatalogStats struct {
	TotalServices int      `json:"total_services"`
	Categories    []string `json:"categories"`
	Cities        []string `json:"cities"`
}
