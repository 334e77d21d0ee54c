// Package search реализует конвейер поиска сервисов: нормализация запроса,
// получение кандидатов, фильтрация, ранжирование по расстоянию и форматирование.
package search

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/akozadaev/go_service_finder/internal/geo"
	"github.com/akozadaev/go_service_finder/internal/models"
)

type hintKind int

const (
	hintCategory hintKind = iota
	hintCity
	hintMaxPrice
	hintMinRating
)

// rule - одно правило извлечения подсказки: шаблон и функция, которая переносит
// совпадение в QueryContext. apply возвращает false, если значение не подошло,
// и тогда проверяются следующие правила того же типа.
type rule struct {
	kind    hintKind
	pattern *regexp.Regexp
	apply   func(m []string, qc *models.QueryContext) bool
}

var (
	pricePattern = regexp.MustCompile(
		`(?i)\b(?:under|below|less than|within|upto|up to|cheaper than|max(?:imum)?)\s*(?:rs\.?|₹|inr)?\s*(\d[\d,]*)`)
	ratingFloorPattern = regexp.MustCompile(
		`(?i)\b(?:above|over|at least|atleast|minimum|min|more than)\s*(\d(?:\.\d+)?)\s*\+?\s*(?:stars?|rating)`)
	ratingPlusPattern = regexp.MustCompile(
		`(?i)\b(\d(?:\.\d+)?)\s*(?:\+\s*stars?|stars?\s*(?:and above|and up|or more|\+))`)
)

// NormalizerOptions задает словари и лимиты нормализатора. Нулевые значения заменяются встроенными.
type NormalizerOptions struct {
	Categories   []models.Category
	Gazetteer    *geo.Gazetteer
	DefaultLimit int
	MaxLimit     int
}

// Normalizer извлекает из текста запроса категорию, город, потолок цены и минимальный рейтинг.
// Правила проверяются по порядку, для каждого типа подсказки берется первое совпадение.
type Normalizer struct {
	rules        []rule
	categories   []models.Category
	gazetteer    *geo.Gazetteer
	defaultLimit int
	maxLimit     int
}

// NewNormalizer строит таблицу правил из словаря категорий и справочника городов.
func NewNormalizer(opts NormalizerOptions) *Normalizer {
	if len(opts.Categories) == 0 {
		opts.Categories = DefaultCategories()
	}
	if opts.Gazetteer == nil {
		opts.Gazetteer = geo.DefaultGazetteer()
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 10
	}
	if opts.MaxLimit < opts.DefaultLimit {
		opts.MaxLimit = opts.DefaultLimit
	}

	n := &Normalizer{
		categories:   opts.Categories,
		gazetteer:    opts.Gazetteer,
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
	}
	for _, c := range opts.Categories {
		if r, ok := keywordRule(hintCategory, c.Name, append([]string{c.Name}, c.Keywords...)); ok {
			n.rules = append(n.rules, r)
		}
	}
	for _, c := range opts.Gazetteer.Cities() {
		hint := c.Name
		if c.Parent != "" {
			hint = c.Parent
		}
		if r, ok := keywordRule(hintCity, hint, []string{c.Name}); ok {
			n.rules = append(n.rules, r)
		}
	}
	n.rules = append(n.rules,
		rule{kind: hintMaxPrice, pattern: pricePattern, apply: applyMaxPrice},
		rule{kind: hintMinRating, pattern: ratingFloorPattern, apply: applyMinRating},
		rule{kind: hintMinRating, pattern: ratingPlusPattern, apply: applyMinRating},
	)
	return n
}

// Categories возвращает словарь категорий.
func (n *Normalizer) Categories() []models.Category {
	out := make([]models.Category, len(n.categories))
	copy(out, n.categories)
	return out
}

// Gazetteer возвращает справочник городов.
func (n *Normalizer) Gazetteer() *geo.Gazetteer {
	return n.gazetteer
}

// keywordRule собирает правило, срабатывающее на любое из слов целиком.
func keywordRule(kind hintKind, value string, words []string) (rule, bool) {
	alts := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		alts = append(alts, regexp.QuoteMeta(strings.ToLower(w)))
	}
	if len(alts) == 0 || strings.TrimSpace(value) == "" {
		return rule{}, false
	}
	pattern := regexp.MustCompile(`(?i)\b(?:` + strings.Join(alts, "|") + `)\b`)

	return rule{
		kind:    kind,
		pattern: pattern,
		apply: func(_ []string, qc *models.QueryContext) bool {
			if kind == hintCategory {
				qc.CategoryHint = value
			} else {
				qc.CityHint = value
			}
			return true
		},
	}, true
}

func applyMaxPrice(m []string, qc *models.QueryContext) bool {
	v, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil || v < 0 {
		return false
	}
	qc.MaxPrice = &v
	return true
}

func applyMinRating(m []string, qc *models.QueryContext) bool {
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v < 0 || v > 5 {
		return false
	}
	qc.MinRating = &v
	return true
}

// Normalize разбирает свободный текст. Ошибок не бывает: если подсказка не найдена,
// соответствующее поле остается пустым.
func (n *Normalizer) Normalize(raw string) models.QueryContext {
	qc := models.QueryContext{
		RawText:     raw,
		ResultLimit: n.defaultLimit,
	}

	found := make(map[hintKind]bool, 4)
	for _, r := range n.rules {
		if found[r.kind] {
			continue
		}
		m := r.pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		if r.apply(m, &qc) {
			found[r.kind] = true
		}
	}

	qc.Expansions = expansions(raw)
	return qc
}

func expansions(raw string) []string {
	lower := strings.ToLower(raw)
	for _, s := range defaultSynonyms {
		if strings.Contains(lower, s.key) {
			out := make([]string, len(s.terms))
			copy(out, s.terms)
			return out
		}
	}
	return nil
}

// NormalizeRequest нормализует текст запроса и накладывает явно заданные поля:
// фильтры из интерфейса, координаты пользователя и лимит. Явные поля важнее
// подсказок из текста. Значения вне допустимых границ возвращают *BoundsError.
func (n *Normalizer) NormalizeRequest(req models.SearchRequest) (models.QueryContext, error) {
	text := strings.TrimSpace(req.Query)
	category := explicitFilter(req.Category)
	if text == "" && category == "" {
		return models.QueryContext{}, boundsErr("query", "must not be empty")
	}

	qc := n.Normalize(text)
	if category != "" {
		qc.CategoryHint = category
	}
	if city := explicitFilter(req.City); city != "" {
		qc.CityHint = city
	}

	if req.MaxPrice != nil {
		if *req.MaxPrice < 0 {
			return models.QueryContext{}, boundsErr("max_price", "must not be negative, got %d", *req.MaxPrice)
		}
		v := *req.MaxPrice
		qc.MaxPrice = &v
	}

	if req.MinRating != nil {
		v := *req.MinRating
		if math.IsNaN(v) || v < 0 || v > 5 {
			return models.QueryContext{}, boundsErr("min_rating", "must be between 0 and 5, got %v", v)
		}
		qc.MinRating = &v
	}

	switch {
	case req.Lat != nil && req.Lon != nil:
		if *req.Lat < -90 || *req.Lat > 90 {
			return models.QueryContext{}, boundsErr("lat", "must be between -90 and 90, got %v", *req.Lat)
		}
		if *req.Lon < -180 || *req.Lon > 180 {
			return models.QueryContext{}, boundsErr("lon", "must be between -180 and 180, got %v", *req.Lon)
		}
		qc.UserCoordinates = &models.GeoPoint{Lat: *req.Lat, Lon: *req.Lon}
	case req.Lat != nil || req.Lon != nil:
		return models.QueryContext{}, boundsErr("coordinates", "lat and lon must be set together")
	case strings.TrimSpace(req.Location) != "":
		c, ok := n.gazetteer.City(req.Location)
		if !ok {
			return models.QueryContext{}, boundsErr("location", "unknown location %q", req.Location)
		}
		p := c.Coordinates
		qc.UserCoordinates = &p
	}

	if req.Limit != nil {
		if *req.Limit <= 0 {
			return models.QueryContext{}, boundsErr("limit", "must be positive, got %d", *req.Limit)
		}
		if *req.Limit > n.maxLimit {
			return models.QueryContext{}, boundsErr("limit", "must not exceed %d, got %d", n.maxLimit, *req.Limit)
		}
		qc.ResultLimit = *req.Limit
	}

	return qc, nil
}

// explicitFilter отбрасывает пустые значения и "All" из выпадающих списков.
func explicitFilter(v string) string {
	v = strings.TrimSpace(v)
	if strings.EqualFold(v, "all") {
		return ""
	}
	return v
}
