// Package geo содержит расчет расстояний и справочник координат городов.
package geo

import (
	"math"
	"sort"
	"strings"

	"github.com/akozadaev/go_service_finder/internal/models"
)

// EarthRadiusKm - радиус Земли, используемый формулой гаверсинуса.
const EarthRadiusKm = 6371.0

// Haversine возвращает расстояние по большому кругу между двумя точками в километрах.
func Haversine(a, b models.GeoPoint) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	// ошибки округления могут дать h чуть больше 1
	h = math.Min(1, h)

	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// Gazetteer сопоставляет названия городов и районов с координатами их центров.
// После создания не изменяется и безопасен для конкурентного чтения.
type Gazetteer struct {
	byName map[string]models.City
	names  []string // в порядке добавления, для словаря нормализатора
}

// NewGazetteer создает справочник из списка городов. Более поздние записи
// с тем же названием заменяют координаты ранних.
func NewGazetteer(cities []models.City) *Gazetteer {
	g := &Gazetteer{byName: make(map[string]models.City, len(cities))}
	for _, c := range cities {
		key := strings.ToLower(strings.TrimSpace(c.Name))
		if key == "" {
			continue
		}
		if _, exists := g.byName[key]; !exists {
			g.names = append(g.names, c.Name)
		}
		g.byName[key] = c
	}
	return g
}

// DefaultGazetteer возвращает встроенный справочник городов Индии и районов Хайдарабада.
func DefaultGazetteer() *Gazetteer {
	return NewGazetteer(DefaultCities())
}

// Merge возвращает новый справочник, в котором extra дополняют и переопределяют текущие записи.
func (g *Gazetteer) Merge(extra []models.City) *Gazetteer {
	all := g.Cities()
	all = append(all, extra...)
	return NewGazetteer(all)
}

// City ищет город или район по точному названию без учета регистра.
// Для района запись содержит родительский город.
func (g *Gazetteer) City(name string) (models.City, bool) {
	c, ok := g.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// Names возвращает названия в порядке добавления.
func (g *Gazetteer) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Cities возвращает все записи в порядке добавления.
func (g *Gazetteer) Cities() []models.City {
	out := make([]models.City, 0, len(g.names))
	for _, n := range g.names {
		out = append(out, g.byName[strings.ToLower(n)])
	}
	return out
}

// SortedNames возвращает названия в алфавитном порядке.
func (g *Gazetteer) SortedNames() []string {
	out := g.Names()
	sort.Strings(out)
	return out
}
