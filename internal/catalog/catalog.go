// Package catalog загружает и хранит неизменяемый каталог сервисов.
package catalog

import (
	"sort"
	"strings"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// Catalog - каталог сервисов в порядке загрузки. После создания не изменяется,
// поэтому может читаться из разных горутин без блокировок.
type Catalog struct {
	records []models.ServiceRecord
	byID    map[string]int
}

// New создает каталог. Для повторяющихся id остается первая запись.
func New(records []models.ServiceRecord) *Catalog {
	c := &Catalog{
		records: make([]models.ServiceRecord, 0, len(records)),
		byID:    make(map[string]int, len(records)),
	}
	for _, r := range records {
		if _, dup := c.byID[r.ID]; dup {
			continue
		}
		c.byID[r.ID] = len(c.records)
		c.records = append(c.records, r)
	}
	return c
}

// Len возвращает количество записей.
func (c *Catalog) Len() int {
	return len(c.records)
}

// Get возвращает запись по id.
func (c *Catalog) Get(id string) (models.ServiceRecord, bool) {
	i, ok := c.byID[id]
	if !ok {
		return models.ServiceRecord{}, false
	}
	return c.records[i], true
}

// First возвращает первые n записей в порядке загрузки (все, если n <= 0 или больше размера).
func (c *Catalog) First(n int) []models.ServiceRecord {
	if n <= 0 || n > len(c.records) {
		n = len(c.records)
	}
	out := make([]models.ServiceRecord, n)
	copy(out, c.records[:n])
	return out
}

// All возвращает копию всех записей.
func (c *Catalog) All() []models.ServiceRecord {
	return c.First(0)
}

// Categories возвращает уникальные категории по алфавиту.
func (c *Catalog) Categories() []string {
	return uniqueSorted(c.records, func(r models.ServiceRecord) string { return r.Category })
}

// Cities возвращает уникальные города по алфавиту.
func (c *Catalog) Cities() []string {
	return uniqueSorted(c.records, func(r models.ServiceRecord) string { return r.City })
}

// Stats возвращает статистику каталога.
func (c *Catalog) Stats() models.CatalogStats {
	return models.CatalogStats{
		TotalServices: c.Len(),
		Categories:    c.Categories(),
		Cities:        c.Cities(),
	}
}

func uniqueSorted(records []models.ServiceRecord, key func(models.ServiceRecord) string) []string {
	seen := make(map[string]bool)
	out := []string{}
	for _, r := range records {
		v := strings.TrimSpace(key(r))
		if v == "" || seen[strings.ToLower(v)] {
			continue
		}
		seen[strings.ToLower(v)] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
