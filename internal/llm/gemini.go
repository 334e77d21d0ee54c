// Package llm формирует текстовые рекомендации по найденным сервисам через Gemini API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/akozadaev/go_service_finder/internal/logger"
	"github.com/akozadaev/go_service_finder/internal/metrics"
	"github.com/akozadaev/go_service_finder/internal/models"
)

var (
	// ErrRateLimited - превышен локальный лимит запросов или API ответил 429.
	ErrRateLimited = errors.New("llm rate limit reached")
	// ErrDisabled - ключ API не задан.
	ErrDisabled = errors.New("llm is disabled")
)

// Тексты, которые пользователь видит вместо рекомендации при ошибке.
const (
	RateLimitText   = "Rate Limit Reached - Too many requests. Please wait a moment before trying again."
	UnavailableText = "AI Response Error - Unable to generate recommendations at the moment."
)

// FallbackText возвращает текст для пользователя по ошибке Recommend.
func FallbackText(err error) string {
	if errors.Is(err, ErrRateLimited) {
		return RateLimitText
	}
	return UnavailableText
}

// Config содержит параметры клиента Gemini.
type Config struct {
	APIKey            string
	Model             string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerMinute int
}

// Client вызывает generateContent. Безопасен для конкурентного использования.
type Client struct {
	cfg     Config
	http    *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

// NewClient создает клиент. Если httpClient nil, используется http.DefaultClient.
func NewClient(cfg Config, httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		cfg:     cfg,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute),
		log:     log,
	}
}

// Enabled сообщает, задан ли ключ API.
func (c *Client) Enabled() bool {
	return c != nil && c.cfg.APIKey != ""
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// Recommend возвращает короткую рекомендацию по результатам поиска. Для пустого
// списка результатов возвращает пустую строку без обращения к API.
func (c *Client) Recommend(ctx context.Context, qc models.QueryContext, results []models.RankedResult) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	if len(results) == 0 {
		return "", nil
	}
	if !c.limiter.Allow() {
		metrics.LLMRequests.WithLabelValues("rate_limited").Inc()
		return "", ErrRateLimited
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	text, err := c.generate(ctx, BuildPrompt(qc, results))
	switch {
	case errors.Is(err, ErrRateLimited):
		metrics.LLMRequests.WithLabelValues("rate_limited").Inc()
		return "", err
	case err != nil:
		metrics.LLMRequests.WithLabelValues("error").Inc()
		c.log.Warn("llm request failed", map[string]interface{}{"error": err, "model": c.cfg.Model})
		return "", err
	}

	metrics.LLMRequests.WithLabelValues("ok").Inc()
	return CleanReply(text), nil
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: []content{{Parts: []part{{Text: prompt}}}}})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.Model), url.QueryEscape(c.cfg.APIKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusTooManyRequests {
		return "", ErrRateLimited
	}
	if res.StatusCode >= 400 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return "", fmt.Errorf("gemini: status %d, body: %s", res.StatusCode, string(msg))
	}

	var out generateResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", errors.New("gemini: empty response")
	}
	return sb.String(), nil
}

// BuildPrompt собирает текст запроса к модели: вопрос пользователя, примененные
// фильтры и по строке на каждый найденный сервис.
func BuildPrompt(qc models.QueryContext, results []models.RankedResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "User Query: %s\n", qc.RawText)

	sb.WriteString("Applied Filters:")
	if qc.CategoryHint != "" {
		fmt.Fprintf(&sb, " Category: %s.", qc.CategoryHint)
	}
	if qc.CityHint != "" {
		fmt.Fprintf(&sb, " Location: %s.", qc.CityHint)
	}
	if qc.MaxPrice != nil {
		fmt.Fprintf(&sb, " Max price: ₹%d.", *qc.MaxPrice)
	}
	if qc.MinRating != nil {
		fmt.Fprintf(&sb, " Min rating: %.1f.", *qc.MinRating)
	}
	sb.WriteString("\n\nFound Services:\n")

	for _, r := range results {
		s := r.Service
		price, rating := "N/A", "N/A"
		if s.Price != nil {
			price = fmt.Sprintf("₹%d", *s.Price)
		}
		if s.Rating != nil {
			rating = fmt.Sprintf("%.1f", *s.Rating)
		}
		fmt.Fprintf(&sb, "- %s (%s) in %s - Price: %s, Rating: %s", s.Name, s.Category, orNA(s.City), price, rating)
		if r.HasKnownDistance() {
			fmt.Fprintf(&sb, ", Distance: %.1f km", *r.DistanceKm)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\nProvide a helpful text recommendation for the user based on their query and the services found. " +
		"Be concise and practical. Include specific service recommendations with reasons why they're good choices.\n" +
		"IMPORTANT: Return only plain text, no HTML, no markdown formatting, no code blocks. Just natural language text.\n")
	return sb.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

var (
	htmlTag    = regexp.MustCompile(`(?s)<[^>]*>`)
	codeFence  = regexp.MustCompile("```[a-zA-Z]*")
	spaceRun   = regexp.MustCompile(`[ \t]+`)
	blankLines = regexp.MustCompile(`\n{3,}`)
)

// CleanReply убирает из ответа модели HTML теги, ограждения кода и лишние пробелы.
func CleanReply(s string) string {
	s = htmlTag.ReplaceAllString(s, "")
	s = codeFence.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = spaceRun.ReplaceAllString(s, " ")

	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(l)
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
