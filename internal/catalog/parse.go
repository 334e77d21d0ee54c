package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/akozadaev/go_service_finder/internal/models"
)

var (
	numberPattern      = regexp.MustCompile(`\d+(?:\.\d+)?`)
	leadingNumber      = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)`)
	currencyNoiseStrip = strings.NewReplacer("₹", " ", ",", "", "INR", " ", "Rs.", " ", "Rs", " ", "rs.", " ", "rs", " ", "/-", " ")
)

// ParsePrice разбирает цену из числа или строки вида "₹500", "Rs. 1,500".
// ok == false означает, что цены нет: пусто, не число, отрицательное значение
// или диапазон ("₹300 - ₹500"), правило сворачивания которого не определено.
func ParsePrice(raw interface{}) (int, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return 0, false
		}
		return int(math.Round(v)), true
	case int:
		if v < 0 {
			return 0, false
		}
		return v, true
	case string:
		cleaned := strings.TrimSpace(currencyNoiseStrip.Replace(v))
		if strings.HasPrefix(cleaned, "-") {
			return 0, false
		}
		numbers := numberPattern.FindAllString(cleaned, -1)
		if len(numbers) != 1 {
			return 0, false
		}
		f, err := strconv.ParseFloat(numbers[0], 64)
		if err != nil {
			return 0, false
		}
		return int(math.Round(f)), true
	default:
		return 0, false
	}
}

// ParseRating разбирает рейтинг из числа или строки ("4.5", "4.5/5", "4.2 stars").
// Значения вне [0, 5] считаются отсутствующими.
func ParseRating(raw interface{}) (float64, bool) {
	var f float64
	switch v := raw.(type) {
	case nil:
		return 0, false
	case float64:
		f = v
	case int:
		f = float64(v)
	case string:
		m := leadingNumber.FindStringSubmatch(v)
		if m == nil {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 0 || f > 5 {
		return 0, false
	}
	return f, true
}

// maxExactID - наибольший модуль целого, которое float64 из JSON представляет точно.
const maxExactID = 1 << 53

// ParseID приводит идентификатор к строке. Числовые id записываются десятичной строкой;
// дробные и слишком большие по модулю числа считаются некорректными.
func ParseID(raw interface{}) (string, bool) {
	switch v := raw.(type) {
	case string:
		id := strings.TrimSpace(v)
		return id, id != ""
	case float64:
		if v != math.Trunc(v) || math.Abs(v) > maxExactID {
			return "", false
		}
		return strconv.FormatInt(int64(v), 10), true
	case int:
		return strconv.Itoa(v), true
	default:
		return "", false
	}
}

func parseFloat(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// ParseCoordinates читает lat/lon из плоских полей или вложенного объекта coordinates.
// Координаты считаются заданными, только если обе компоненты корректны.
func ParseCoordinates(raw map[string]interface{}) (models.GeoPoint, bool) {
	latRaw, lonRaw := raw["lat"], raw["lon"]
	if nested, ok := raw["coordinates"].(map[string]interface{}); ok && latRaw == nil && lonRaw == nil {
		latRaw, lonRaw = nested["lat"], nested["lon"]
	}

	lat, ok := parseFloat(latRaw)
	if !ok {
		return models.GeoPoint{}, false
	}
	lon, ok := parseFloat(lonRaw)
	if !ok {
		return models.GeoPoint{}, false
	}
	p := models.GeoPoint{Lat: lat, Lon: lon}
	return p, p.Valid()
}

func stringField(raw map[string]interface{}, key string) string {
	switch v := raw[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
